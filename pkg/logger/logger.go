// Package logger is the structured logger used by cmd/sdjwtutil and
// pkg/sdjwtconfig. The library packages (pkg/sdjwt, pkg/sdjwtvc,
// pkg/validator, pkg/trust) do not log.
package logger

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log wraps a logr.Logger so callers depend on an interface-shaped type
// rather than importing zap directly.
type Log struct {
	logr.Logger
}

// New builds a named logger: production config (JSON, no color) or
// development config (colorized level, human-friendly) depending on
// production, writing to <logPath>/<name>.log when logPath is set and to
// stderr otherwise.
func New(name, logPath string, production bool) (*Log, error) {
	var zc zap.Config
	if production {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zc.DisableCaller = true
	zc.DisableStacktrace = true

	if logPath != "" {
		if err := os.MkdirAll(logPath, fs.ModeDir); err != nil {
			return nil, err
		}
		zc.OutputPaths = []string{filepath.Join(logPath, fmt.Sprintf("%s.log", name))}
	}

	z, err := zc.Build()
	if err != nil {
		return nil, err
	}

	return &Log{Logger: zapr.NewLogger(z).WithName(name)}, nil
}

// NewSimple builds a logger from the global zap logger; for tests and
// short-lived tools that don't need New's output-path plumbing.
func NewSimple(name string) *Log {
	return &Log{Logger: zapr.NewLogger(zap.L().Named(name))}
}

// New returns a named child logger carrying l's sink and level.
func (l *Log) New(name string) *Log {
	return &Log{Logger: l.WithName(name)}
}

// Info logs at verbosity 0.
func (l *Log) Info(msg string, args ...any) {
	l.Logger.V(0).WithValues(args...).Info(msg)
}

// Debug logs at verbosity 1.
func (l *Log) Debug(msg string, args ...any) {
	l.Logger.V(1).WithValues(args...).Info(msg)
}

// Trace logs at verbosity 2.
func (l *Log) Trace(msg string, args ...any) {
	l.Logger.V(2).WithValues(args...).Info(msg)
}
