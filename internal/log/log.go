// Package log provides the process-wide logger behind a small interface.
package log

import (
	"sync"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

// Config controls the single initialization point for the logger.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Filename receives a rotating copy of the log stream when non-empty.
	Filename string
	// Pattern and Time control line layout; zero values use the defaults.
	Pattern string
	Time    string
}

var (
	mu     sync.Mutex
	logger Logger
)

// GetLogger returns the process logger. Before Init runs it falls back to a
// console logger at info level, so library code and tests never see nil.
func GetLogger() Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = newAdapter(&Config{Level: "info"})
	}
	return logger
}

// Init configures the process logger. Each call replaces the current
// logger, including the console fallback installed by GetLogger.
func Init(cfg *Config) error {
	mu.Lock()
	defer mu.Unlock()
	l := newAdapter(cfg)
	logger = l
	return nil
}
