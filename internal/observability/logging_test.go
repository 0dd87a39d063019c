package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/apprentice/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg, "battleserver")
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg, "")
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg, "battleserver")
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg, "battleserver")
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg, "battleserver")
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestRemoteLogger_AddsAddress(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	RemoteLogger(zap.New(core), "10.0.0.7:5123").Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "10.0.0.7:5123", entries[0].ContextMap()["remote_addr"])
}

func TestBattleLogger_ScopesSession(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	BattleLogger(zap.New(core), "3f2a", "The Crypt").Info("battle started")
	BattleLogger(zap.New(core), "9c1d", "").Info("battle started")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, map[string]interface{}{"session_id": "3f2a", "encounter": "The Crypt"}, entries[0].ContextMap())
	assert.Equal(t, map[string]interface{}{"session_id": "9c1d"}, entries[1].ContextMap())
}
