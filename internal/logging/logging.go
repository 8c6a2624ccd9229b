// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a JSON logger at level ("debug", "info", "warn", "error").
// Output goes to file when set, appended, and to stderr otherwise. The
// returned func flushes and closes the output; call it before exiting.
func New(level, file string) (*zap.Logger, func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	l, err := NewWriter(level, out)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return l, func() {
		_ = l.Sync()
		closeFn()
	}, nil
}

// NewWriter creates a JSON logger at level writing to w.
func NewWriter(level string, w io.Writer) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		zapLevel,
	)
	return zap.New(core, zap.AddCaller()), nil
}

// WithSession tags every entry of l with a session id.
func WithSession(l *zap.Logger, id string) *zap.Logger {
	return l.With(zap.String("session", id))
}
