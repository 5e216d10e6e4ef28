package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qms/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	dev := DefaultConfig()
	assert.Equal(t, "info", dev.Level)
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "stdout", dev.Output)
	assert.Equal(t, defaultTimeFormat, dev.TimeFormat)
}

func TestFromAppConfig(t *testing.T) {
	cfg := FromAppConfig(config.LogConfig{Level: "debug", Format: "json", Output: "stderr"})
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.Equal(t, defaultTimeFormat, cfg.TimeFormat)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "nil config", cfg: nil},
		{name: "default", cfg: DefaultConfig()},
		{name: "json stdout", cfg: &Config{Level: "info", Format: "json", Output: "stdout"}},
		{name: "stderr debug", cfg: &Config{Level: "debug", Format: "json", Output: "stderr"}},
		{name: "unknown level", cfg: &Config{Level: "verbose"}, wantErr: true},
		{name: "unwritable file", cfg: &Config{Output: filepath.Join(t.TempDir(), "missing", "qms.log")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qms.log")
	log, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("supplier imported", zap.String("code", "V001"))
	log.Debug("filtered out")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "supplier imported", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "V001", entry["code"])
	assert.Contains(t, entry, "caller")
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log, err := New(&Config{Level: "debug", Format: "json", Output: filepath.Join(t.TempDir(), "qms.log")}, core)
	require.NoError(t, err)

	log.Info("only primary")
	log.Warn("both outputs")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "both outputs", logs.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"", zapcore.InfoLevel},
		{"INFO", zapcore.InfoLevel},
		{"warning", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestSync_Nop(t *testing.T) {
	assert.NoError(t, Sync(zap.NewNop()))
}
