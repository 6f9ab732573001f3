// Package jlog is the runner's logging wrapper. It keeps a single
// process-wide logrus.Logger behind a small functional API, the same shape
// as the teacher pack's logger.SafeLogger: callers never import logrus
// directly, so the backing implementation (and its output target, level,
// and formatter) stays centralized here.
package jlog

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu     sync.Mutex
	logger = newDefault()
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.WarnLevel)

	return l
}

// SetVerbose raises the log level to Info, matching the CLI's -v/--verbose
// flag.
func SetVerbose() {
	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(logrus.InfoLevel)
}

// SetDebug raises the log level to Debug, matching the CLI's --debug flag.
// --debug takes precedence over --verbose when both are given.
func SetDebug() {
	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(logrus.DebugLevel)
}

func Debugf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	logger.Errorf(format, args...)
}
