package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Notice", LevelNotice},
		{"warning", LevelWarning},
		{"error", LevelError},
		{"critical", LevelCritical},
		{"aLeRt", LevelAlert},
		{"emergency", LevelEmergency},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "bogus-level", "warn", " info", "fatal"} {
		_, err := ParseLevel(in)
		require.Error(t, err, in)
		assert.True(t, IsCategory(err, ErrCatValidation))
		assert.True(t, HasCode(err, CodeInvalidLogLevel))
	}
}

func TestLevel_RankAndLower(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, LevelDebug.Rank())
	assert.Equal(t, 7, LevelEmergency.Rank())
	assert.Equal(t, -1, Level("TRACE").Rank())
	assert.Equal(t, "critical", LevelCritical.Lower())
}
