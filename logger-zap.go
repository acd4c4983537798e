//go:build !tinygo

package dutyradio

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger adapts a zap SugaredLogger to the package Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger builds a structured console logger at the given level
// ("debug", "info", "warn", "error"; anything else means debug). Install it
// with SetLogger for richer output than the stdlib default.
func NewZapLogger(level string) Logger {
	var lvl zapcore.Level
	switch level {
	case "info":
		lvl = zapcore.InfoLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		zap.NewAtomicLevelAt(lvl),
	)
	return &zapLogger{s: zap.New(core).Sugar()}
}

func (l *zapLogger) Debug(msg string) { l.s.Debug(msg) }
func (l *zapLogger) Info(msg string)  { l.s.Info(msg) }
func (l *zapLogger) Warn(msg string)  { l.s.Warn(msg) }
func (l *zapLogger) Error(msg string) { l.s.Error(msg) }
