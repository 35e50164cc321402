package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zap.AtomicLevel{
		"debug":   zap.NewAtomicLevelAt(zap.DebugLevel),
		"":        zap.NewAtomicLevelAt(zap.InfoLevel),
		"INFO":    zap.NewAtomicLevelAt(zap.InfoLevel),
		"warning": zap.NewAtomicLevelAt(zap.WarnLevel),
		"error":   zap.NewAtomicLevelAt(zap.ErrorLevel),
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want.Level(), got.Level(), in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSetup_FileOutput(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	for _, rotate := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "logs", "dynchan.log")
		logger, err := Setup(config.LogConfig{
			Level:    "debug",
			Format:   "json",
			Outputs:  []string{path},
			Rotation: config.RotationConfig{Enable: rotate, MaxSizeMB: 1},
		})
		require.NoError(t, err)

		logger.Named("registry").Info("service enabled", zap.String("key", "0x1001"))
		_ = logger.Sync()

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		line := string(data)
		assert.True(t, strings.Contains(line, `"msg":"service enabled"`), line)
		assert.True(t, strings.Contains(line, `"logger":"registry"`), line)
		assert.True(t, strings.Contains(line, `"key":"0x1001"`), line)
	}
}

func TestSetup_LevelFilters(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	path := filepath.Join(t.TempDir(), "warn.log")
	logger, err := Setup(config.LogConfig{Level: "warn", Format: "json", Outputs: []string{path}})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestSetup_RejectsBadLevel(t *testing.T) {
	_, err := Setup(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
