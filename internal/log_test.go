package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"DEBUG", LogLevelDebug, true},
		{" trace ", LogLevelTrace, true},
		{"warn", LogLevelWarn, true},
		{"verbose", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLogLevel(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LogLevelDebug, &buf)

	l.Debug("removed %s", "A-C")
	l.Trace("ci %s", "A,C|B")
	l.Warn("budget")

	assert.Equal(t, "[DEBUG] removed A-C\n[WARN] budget\n", buf.String())
	assert.Equal(t, LogLevelDebug, l.GetLevel())
}
