package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestLoggerEmitsFields(t *testing.T) {
	log, logs := observed(zapcore.DebugLevel)

	log.Info("dataset loaded",
		String("source", "file"),
		Int("compounds", 412),
		Float64("dose", 10.5),
		Bool("cached", true),
		Duration("elapsed", 30*time.Millisecond),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "dataset loaded", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "file", fields["source"])
	assert.Equal(t, int64(412), fields["compounds"])
	assert.Equal(t, 10.5, fields["dose"])
	assert.Equal(t, true, fields["cached"])
}

func TestLoggerLevelFiltering(t *testing.T) {
	log, logs := observed(zapcore.WarnLevel)

	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("kept")
	log.Error("kept")

	assert.Equal(t, 2, logs.Len())
}

func TestWithAttachesFields(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	child := log.With(String("session", "abc"))
	child.Info("filtered")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["session"])
}

func TestErrField(t *testing.T) {
	log, logs := observed(zapcore.InfoLevel)

	log.Error("load failed", Err(errors.New("boom")))
	log.Error("nil error", Err(nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "<nil>", entries[1].ContextMap()["error"])
}

func TestNewLoggerDefaults(t *testing.T) {
	log, err := NewLogger(Config{})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	// Must be safe to call and chain.
	log.Info("ignored")
	log.With(String("k", "v")).Named("sub").Debug("ignored")
}

func TestDefaultLogger(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	log, logs := observed(zapcore.InfoLevel)
	SetDefault(log)
	Default().Info("via default")
	assert.Equal(t, 1, logs.Len())

	// nil is ignored.
	SetDefault(nil)
	assert.Equal(t, log, Default())
}
