package logger

import (
	"sync"
)

// Log levels accepted in configuration.
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

// Get returns a singleton logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level
// and return the already initialized instance.
func Get(level string) *Logger {
	once.Do(func() {
		globalLogger = newZapLogger(level)
	})
	return globalLogger
}

// SetLevel changes the level of the singleton after configuration is loaded.
// It is a no-op before Get.
func SetLevel(level string) {
	if globalLogger == nil || globalLogger.level == nil {
		return
	}
	globalLogger.level.SetLevel(toZapLevel(level))
}
