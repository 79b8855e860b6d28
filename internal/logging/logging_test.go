package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/calvinalkan/school-reports/internal/logging"
)

func Test_ParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"", zapcore.WarnLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := logging.ParseLevel("loud")
	require.ErrorIs(t, err, logging.ErrInvalidLevel)
}

func Test_New_Filters_By_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log, err := logging.New(&buf, "info")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("report exported", zap.String("format", "csv"), zap.String("path", "/tmp/x.csv"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "report exported")
	assert.Contains(t, out, `"format": "csv"`)
}

func Test_New_Rejects_Unknown_Level(t *testing.T) {
	t.Parallel()

	_, err := logging.New(&bytes.Buffer{}, "verbose")
	require.ErrorIs(t, err, logging.ErrInvalidLevel)
}
