package logging

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger 基于 zap 的 Logger 实现
type ZapLogger struct {
	l *zap.Logger
}

// NewZapLogger 包装已有的 zap.Logger
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{l: l}
}

// NewZapProductionLogger 以 zap 生产配置创建 Logger
func NewZapProductionLogger(level Level) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return NewZapLogger(l), nil
}

// Zap 返回底层 zap.Logger
func (z *ZapLogger) Zap() *zap.Logger { return z.l }

// Sync 刷新缓冲日志
func (z *ZapLogger) Sync() error { return z.l.Sync() }

func (z *ZapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.l.Debug(msg, toZapFields(fields)...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.l.Info(msg, toZapFields(fields)...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.l.Warn(msg, toZapFields(fields)...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.l.Error(msg, toZapFields(fields)...)
}

func (z *ZapLogger) WithFields(fields ...Field) Logger {
	return &ZapLogger{l: z.l.With(toZapFields(fields)...)}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}
