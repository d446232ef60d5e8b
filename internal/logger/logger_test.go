package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/jsongram/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"", "info"},
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input).String())
		})
	}
}

func TestNew_FileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(&config.LoggingConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	l.WithCommand("compile").WithFields(map[string]interface{}{"rules": 7}).Debugw("compiled", "root", "root")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"msg":"compiled"`)
	assert.Contains(t, line, `"command":"compile"`)
	assert.Contains(t, line, `"rules":7`)
	assert.Contains(t, line, `"level":"debug"`)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	l, err := New(&config.LoggingConfig{Level: "error", Format: "json", Output: path})
	require.NoError(t, err)
	l.WithRequest("abc").Infow("dropped")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(data)))
}

func TestDefaultsDoNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		NewDefault().Debug("x")
		NewNop().WithRequest("id").Info("y")
	})
}
