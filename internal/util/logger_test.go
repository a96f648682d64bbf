package util

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		verbose  int
		expected LogLevel
	}{
		{"verbose_1_error", 1, ErrorLevel},
		{"verbose_2_warn", 2, WarnLevel},
		{"verbose_3_info", 3, InfoLevel},
		{"verbose_4_debug", 4, DebugLevel},
		{"verbose_5_trace", 5, TraceLevel},
		{"verbose_0_clamped_to_1", 0, ErrorLevel},
		{"verbose_100_clamped_to_5", 100, TraceLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelFromVerbose(tt.verbose))
		})
	}
}

func TestZerologLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.TraceLevel, ZerologLevel(TraceLevel))
	assert.Equal(t, zerolog.ErrorLevel, ZerologLevel(ErrorLevel))
	assert.Equal(t, zerolog.InfoLevel, ZerologLevel(42), "unknown levels must fall back to info")
}

func TestGetLogger_ComponentField(t *testing.T) {
	var buf bytes.Buffer
	InitializeLogger(InfoLevel, &buf)

	logger := GetLogger("Store")
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "component=Store")
}
