package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// TimestampLayout is the fixed timestamp format written by sinks.
const TimestampLayout = "2006-01-02 15:04:05"

// Field is a single context key/value pair.
type Field struct {
	Key   string
	Value any
}

// Context is an ordered mapping of keys to values. It marshals to a JSON
// object that keeps insertion order.
type Context []Field

// NewContext builds a Context from alternating key/value arguments, in the
// same shape slog accepts. A slog.Attr is taken as one pair. A trailing key
// without value is stored under "!BADKEY", as slog does.
func NewContext(args ...any) Context {
	if len(args) == 0 {
		return nil
	}
	ctx := make(Context, 0, len(args)/2+1)
	for len(args) > 0 {
		switch k := args[0].(type) {
		case slog.Attr:
			ctx = append(ctx, Field{Key: k.Key, Value: k.Value.Any()})
			args = args[1:]
		case string:
			if len(args) == 1 {
				ctx = append(ctx, Field{Key: "!BADKEY", Value: k})
				args = args[1:]
				continue
			}
			ctx = append(ctx, Field{Key: k, Value: args[1]})
			args = args[2:]
		case Field:
			ctx = append(ctx, k)
			args = args[1:]
		default:
			ctx = append(ctx, Field{Key: "!BADKEY", Value: k})
			args = args[1:]
		}
	}
	return ctx
}

// ContextFromMap converts a map into a Context. Go maps carry no order, so
// keys are sorted to keep output stable.
func ContextFromMap(m map[string]any) Context {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ctx := make(Context, 0, len(keys))
	for _, k := range keys {
		ctx = append(ctx, Field{Key: k, Value: m[k]})
	}
	return ctx
}

// Get returns the first value stored under key.
func (c Context) Get(key string) (any, bool) {
	for _, f := range c {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Map returns the context as a plain map. Later duplicates win.
func (c Context) Map() map[string]any {
	m := make(map[string]any, len(c))
	for _, f := range c {
		m[f.Key] = f.Value
	}
	return m
}

// Args flattens the context back into slog-style key/value arguments.
func (c Context) Args() []any {
	args := make([]any, 0, len(c)*2)
	for _, f := range c {
		args = append(args, f.Key, f.Value)
	}
	return args
}

// Clone returns a copy that shares no backing array with c.
func (c Context) Clone() Context {
	if c == nil {
		return nil
	}
	out := make(Context, len(c))
	copy(out, c)
	return out
}

// Marshal is json.Marshal without HTML escaping, so messages such as
// "<nil>" or "a & b" are written as-is.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// MarshalJSON writes the context as an object in insertion order. An empty
// context is written as {}.
func (c Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := Marshal(f.Value)
		if err != nil {
			val, _ = Marshal(fmt.Sprintf("%v", f.Value))
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping the key order found in data.
func (c *Context) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("context: expected object, got %v", tok)
	}
	var out Context
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("context: expected key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out = append(out, Field{Key: key, Value: v})
	}
	*c = out
	return nil
}

// LogEntry is one captured log record. Entries are never modified after
// creation.
type LogEntry struct {
	Time    time.Time
	Level   Level
	Message string
	Context Context
}

// NewLogEntry stamps a new entry with the current local time.
func NewLogEntry(level Level, message string, ctx Context) LogEntry {
	return LogEntry{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Context: ctx,
	}
}

// CloneEntries copies entries together with their contexts, so callers of a
// snapshot cannot reach the stored values.
func CloneEntries(entries []LogEntry) []LogEntry {
	out := make([]LogEntry, len(entries))
	for i, e := range entries {
		e.Context = e.Context.Clone()
		out[i] = e
	}
	return out
}

type logEntryJSON struct {
	Timestamp string  `json:"timestamp"`
	Level     Level   `json:"level"`
	Message   string  `json:"message"`
	Context   Context `json:"context"`
}

// MarshalJSON writes the persisted line format.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	ctx := e.Context
	if ctx == nil {
		ctx = Context{}
	}
	return Marshal(logEntryJSON{
		Timestamp: e.Time.Format(TimestampLayout),
		Level:     e.Level,
		Message:   e.Message,
		Context:   ctx,
	})
}

// UnmarshalJSON parses one persisted line. The timestamp is read in local
// time, matching how it was written.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var raw logEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ts, err := time.ParseInLocation(TimestampLayout, raw.Timestamp, time.Local)
	if err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}
	e.Time = ts
	e.Level = raw.Level
	e.Message = raw.Message
	e.Context = raw.Context
	return nil
}
