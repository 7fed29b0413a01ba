// Package logging builds the zap logger carried by the vault handle.
package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel overrides the level passed to New.
const EnvLevel = "KVC_LOG_LEVEL"

// New returns a console logger writing to w at level ("debug", "info",
// "warn", "error"). Unknown levels fall back to warn.
func New(level string, w io.Writer) *zap.Logger {
	if env := os.Getenv(EnvLevel); env != "" {
		level = env
	}
	lvl := zapcore.WarnLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = zapcore.WarnLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(lvl),
	)
	return zap.New(core).Named("kvc")
}

// Nop is the default logger for handles built without one.
func Nop() *zap.Logger { return zap.NewNop() }
