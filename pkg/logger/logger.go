// Package logger is a zap-backed structured logger that picks up request
// identity (trace, request and caller ids) from the context at each call.
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	appctx "tidewater/internal/core/context"
)

// Field names added from the context.
const (
	FieldTraceID   = "trace_id"
	FieldRequestID = "request_id"
	FieldCaller    = "caller"
	FieldService   = "service"
)

type Config struct {
	Level       string // debug, info, warn, error; unknown values mean info
	Development bool
	OutputPaths []string
	// Service is attached to every entry when set.
	Service string
}

type Logger struct {
	*zap.SugaredLogger
}

// New builds a JSON logger, or a colored console logger in development.
func New(cfg Config) (*Logger, error) {
	zcfg := productionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if level, err := zapcore.ParseLevel(cfg.Level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(level)
	} else {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if len(cfg.OutputPaths) > 0 {
		zcfg.OutputPaths = cfg.OutputPaths
	}
	if cfg.Service != "" {
		zcfg.InitialFields = map[string]any{FieldService: cfg.Service}
	}

	z, err := zcfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return FromZap(z), nil
}

func productionConfig() zap.Config {
	c := zap.NewProductionConfig()
	c.OutputPaths = []string{"stdout"}
	c.EncoderConfig.TimeKey = "ts"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return c
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{z.Sugar()}
}

func Nop() *Logger {
	return FromZap(zap.NewNop())
}

var fallback = sync.OnceValue(func() *Logger {
	z, err := productionConfig().Build(zap.AddCallerSkip(1))
	if err != nil {
		return Nop()
	}
	return FromZap(z)
})

// Default is used when no logger was put into the context.
func Default() *Logger { return fallback() }

// WithContext returns l annotated with the trace and caller found in ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	fields := contextFields(ctx)
	if len(fields) == 0 {
		return l
	}
	return &Logger{l.SugaredLogger.With(fields...)}
}

func contextFields(ctx context.Context) []any {
	var fields []any
	if t := appctx.GetTrace(ctx); t != nil {
		fields = append(fields, FieldTraceID, t.TraceID, FieldRequestID, t.RequestID)
	}
	if c := appctx.GetCaller(ctx); c != nil {
		fields = append(fields, FieldCaller, c.Subject)
	}
	return fields
}

type ctxKey struct{}

// WithLogger stores the base logger. Context fields are added on every read,
// so the caller set by authentication later in the chain still shows up.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func FromContext(ctx context.Context) *Logger {
	l, ok := ctx.Value(ctxKey{}).(*Logger)
	if !ok {
		l = Default()
	}
	return l.WithContext(ctx)
}

func Debug(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Debugw(msg, kv...) }
func Info(ctx context.Context, msg string, kv ...any)  { FromContext(ctx).Infow(msg, kv...) }
func Warn(ctx context.Context, msg string, kv ...any)  { FromContext(ctx).Warnw(msg, kv...) }
func Error(ctx context.Context, msg string, kv ...any) { FromContext(ctx).Errorw(msg, kv...) }
