package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"Debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run("level_"+tc.level, func(t *testing.T) {
			require.Equal(t, tc.want, Log{Level: tc.level}.SlogLevel())
		})
	}
}
