package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWhatsmeowLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewWhatsmeowLogger(zap.New(core), "whatsapp")

	l.Infof("connected as %s", "256700")
	l.Sub("Client").Warnf("retrying %d", 2)

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "connected as 256700", entries[0].Message)
	assert.Equal(t, "whatsapp", entries[0].LoggerName)
	assert.Equal(t, "retrying 2", entries[1].Message)
	assert.Equal(t, "whatsapp.Client", entries[1].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
