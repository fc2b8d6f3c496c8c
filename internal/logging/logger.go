// Package logging builds the logr.Logger handed to the core packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Levels lists the accepted level strings in increasing severity.
var Levels = []string{"debug", "info", "warn", "error"}

// ParseLevel maps a level string to its zap level. An empty string means info.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q (expected %s)", level, strings.Join(Levels, ", "))
	}
}

// New returns a logger writing to stderr at the given level.
func New(level string) (logr.Logger, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter returns a logger writing to w. Debug level switches to the
// human readable development encoder.
func NewWithWriter(level string, w io.Writer) (logr.Logger, error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return logr.Logger{}, err
	}

	atomic := zap.NewAtomicLevelAt(zapLevel)
	opts := crzap.Options{
		Development: zapLevel == zapcore.DebugLevel,
		Level:       &atomic,
		DestWriter:  w,
	}
	return crzap.New(crzap.UseFlagOptions(&opts)).WithName("stackablectl"), nil
}
