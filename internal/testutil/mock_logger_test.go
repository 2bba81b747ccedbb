package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toxscope/toxscope/internal/infrastructure/monitoring/logging"
)

func TestMockLoggerRecordsMessages(t *testing.T) {
	ml := NewMockLogger()

	ml.Info("started", logging.Int("port", 8080))
	ml.Warn("slow request")
	ml.Error("failed")

	msgs := ml.GetMessages()
	assert.Len(t, msgs, 3)
	assert.Equal(t, "info", msgs[0].Level)
	assert.Equal(t, "started", msgs[0].Message)

	assert.True(t, ml.HasMessage("warn", "slow request"))
	assert.False(t, ml.HasMessage("error", "slow request"))

	assert.Equal(t, 8080, ml.FieldValue("info", "started", "port"))
	assert.Nil(t, ml.FieldValue("info", "started", "missing"))
}

func TestMockLoggerClear(t *testing.T) {
	ml := NewMockLogger()
	ml.Info("one")
	ml.Clear()
	assert.Empty(t, ml.GetMessages())
}

func TestMockLoggerImplementsLogger(t *testing.T) {
	var _ logging.Logger = NewMockLogger()

	ml := NewMockLogger()
	assert.Same(t, logging.Logger(ml), ml.With(logging.String("k", "v")))
	assert.Same(t, logging.Logger(ml), ml.Named("sub"))
}
