// Package logging provides pre-configured component loggers for shellstore.
//
// The store's error contract is warn-and-continue (see the coordinator
// package): swallowed failures must still be visible somewhere, and this
// package is that somewhere. Level defaults to warn so embedding
// applications stay quiet unless something actually went wrong; set
// SHELLSTORE_LOG_LEVEL=debug to watch the full persist/notify pipeline.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// NewLogger returns the logger for a component, creating it on first use.
// Loggers are singletons per component name.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if entry, exists := loggers[component]; exists {
		return entry
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	levelStr := "warn"
	if env := os.Getenv("SHELLSTORE_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	if os.Getenv("SHELLSTORE_LOG_FORMAT") == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}
