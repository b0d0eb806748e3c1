package log

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options tune the logger returned by New.
type Options struct {
	// Verbose tees info-level records to Stderr.
	Verbose bool
	Stderr  io.Writer
}

// New builds a zap logger writing debug records to sink.
func New(sink *DebugLogger, opts Options) *zap.Logger {
	fileEnc := zap.NewDevelopmentEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(fileEnc), sink, zapcore.DebugLevel),
	}

	if opts.Verbose && opts.Stderr != nil {
		termEnc := zap.NewDevelopmentEncoderConfig()
		termEnc.TimeKey = ""
		termEnc.CallerKey = ""
		termEnc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(termEnc),
			zapcore.Lock(zapcore.AddSync(opts.Stderr)),
			zapcore.InfoLevel,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
