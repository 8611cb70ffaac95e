package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"Error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZapLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core), "chat")

	logger.Info("resolved", "drug", "aspirin")
	logger.Warn("slow", "elapsed", "2s")
	logger.Named("engine").Debug("trace")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "resolved", entries[0].Message)
	assert.Equal(t, "aspirin", entries[0].ContextMap()["drug"])
	assert.Equal(t, "chat", entries[0].ContextMap()["service"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "engine", entries[2].LoggerName)
}

func TestNewLoggerInTestEnvIsNoOp(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	_, ok := NewLogger("x").(*NoOpLogger)
	assert.True(t, ok)
}

func TestBuildZap(t *testing.T) {
	l, err := BuildZap("production", "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
