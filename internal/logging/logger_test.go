package logging

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("loud")
	assert.Error(t, err)
}

func TestRunID(t *testing.T) {
	assert.Empty(t, RunID(context.Background()))

	ctx := NewRunContext(context.Background())
	id := RunID(ctx)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	assert.NotEqual(t, id, RunID(NewRunContext(context.Background())))
	assert.NotNil(t, Nop().WithRunID(ctx))
}
