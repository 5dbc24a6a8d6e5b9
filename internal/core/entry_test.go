package core

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext(t *testing.T) {
	t.Parallel()

	ctx := NewContext("b", 1, slog.String("a", "x"), Field{Key: "c", Value: true}, "dangling")
	require.Len(t, ctx, 4)
	assert.Equal(t, "b", ctx[0].Key)
	assert.Equal(t, "a", ctx[1].Key)
	assert.Equal(t, "x", ctx[1].Value)
	assert.Equal(t, "c", ctx[2].Key)
	assert.Equal(t, "!BADKEY", ctx[3].Key)
	assert.Nil(t, NewContext())
}

func TestContext_MarshalKeepsOrder(t *testing.T) {
	t.Parallel()

	ctx := NewContext("zeta", 1, "alpha", "two", "mid", []int{3})
	data, err := json.Marshal(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"two","mid":[3]}`, string(data))

	var back Context
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 3)
	assert.Equal(t, "zeta", back[0].Key)
	assert.Equal(t, "alpha", back[1].Key)
	assert.Equal(t, "mid", back[2].Key)
}

func TestContext_UnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	var c Context
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &c))
}

func TestContextFromMap_Sorted(t *testing.T) {
	t.Parallel()

	ctx := ContextFromMap(map[string]any{"b": 2, "a": 1})
	require.Len(t, ctx, 2)
	assert.Equal(t, "a", ctx[0].Key)
	v, ok := ctx.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, ctx.Map())
}

func TestLogEntry_JSONLine(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)
	entry := LogEntry{Time: ts, Level: LevelInfo, Message: "hi", Context: NewContext("k", "v")}

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2025-03-04 05:06:07","level":"INFO","message":"hi","context":{"k":"v"}}`, string(data))

	var back LogEntry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Time.Equal(ts))
	assert.Equal(t, LevelInfo, back.Level)
	assert.Equal(t, "hi", back.Message)
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	t.Parallel()
	e := LogEntry{
		Time:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local),
		Level:   LevelError,
		Message: "a < b && c > d",
		Context: NewContext("tag", "<x/>"),
	}
	got, err := Marshal(e)
	require.NoError(t, err)
	assert.Equal(t,
		`{"timestamp":"2026-03-01 12:00:00","level":"ERROR","message":"a < b && c > d","context":{"tag":"<x/>"}}`,
		string(got))

	plain, err := Marshal("ü & ß")
	require.NoError(t, err)
	assert.Equal(t, `"ü & ß"`, string(plain))
}

func TestCloneEntries(t *testing.T) {
	t.Parallel()
	src := []LogEntry{
		NewLogEntry(LevelInfo, "a", NewContext("k", "v")),
		NewLogEntry(LevelInfo, "b", nil),
	}
	out := CloneEntries(src)
	require.Len(t, out, 2)
	out[0].Context[0].Value = "changed"
	out[0].Context = append(out[0].Context, Field{Key: "extra"})

	assert.Equal(t, NewContext("k", "v"), src[0].Context)
	assert.Nil(t, out[1].Context)
	assert.Empty(t, CloneEntries(nil))
}

func TestLogEntry_EmptyContextIsObject(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(NewLogEntry(LevelDebug, "x", nil))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]any{}, raw["context"])
}
