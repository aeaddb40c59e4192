// Package logger provides the structured logger shared by the CMS server
// and its HTTP layer: a zap sugared logger behind a process-wide singleton.
package logger

import (
	"sync"
)

// Textual log levels accepted by Get.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

// Get returns the singleton logger, configuring it with the provided level
// on the first call. Later calls ignore the level and return the same
// instance, so every package logs through one core.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}
