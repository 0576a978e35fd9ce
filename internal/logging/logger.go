package logging

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type runIDKey struct{}

type Logger struct {
	*zap.Logger
}

// NewLogger builds a console logger writing to stderr at the given level.
func NewLogger(level string) (*Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	config.DisableCaller = true
	config.EncoderConfig.TimeKey = ""
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop()}
}

// NewRunContext tags ctx with a fresh run ID.
func NewRunContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, runIDKey{}, uuid.New().String())
}

// RunID returns the run ID stored in ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func (l *Logger) WithRunID(ctx context.Context) *zap.Logger {
	if id := RunID(ctx); id != "" {
		return l.With(zap.String("run_id", id))
	}
	return l.Logger
}
