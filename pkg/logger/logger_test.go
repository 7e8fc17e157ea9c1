package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T, level string) *bytes.Buffer {
	var buf bytes.Buffer
	Initialize(Config{Level: level, Format: "json", Service: "foodgram-test", Output: &buf})
	t.Cleanup(func() {
		Initialize(Config{Level: "info", Format: "json", Output: &bytes.Buffer{}})
	})
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	buf := captureJSON(t, "info")

	Debug("hidden")
	Info("recipe created", Fields{"recipe_id": 7})
	WithContext(Fields{"request_id": "abc"}).Error("save failed", errors.New("disk full"))

	entries := lines(t, buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "recipe created", entries[0]["message"])
	assert.Equal(t, float64(7), entries[0]["recipe_id"])
	assert.Equal(t, "foodgram-test", entries[0]["service"])
	assert.Contains(t, entries[0]["caller"], "logger_test.go")

	assert.Equal(t, "error", entries[1]["level"])
	assert.Equal(t, "abc", entries[1]["request_id"])
	assert.Equal(t, "disk full", entries[1]["error"])
}
