package logger

import (
	"log"
	"strings"
	"sync/atomic"
)

// Level controls which messages are emitted.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var minLevel atomic.Int32

func init() {
	minLevel.Store(int32(LevelInfo))
}

// SetLevel sets the minimum level from a config string ("debug", "info",
// "warn", "error"). Unknown values fall back to info.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		minLevel.Store(int32(LevelDebug))
	case "warn", "warning":
		minLevel.Store(int32(LevelWarn))
	case "error":
		minLevel.Store(int32(LevelError))
	default:
		minLevel.Store(int32(LevelInfo))
	}
}

// Info logs informational messages
func Info(format string, args ...interface{}) {
	if minLevel.Load() <= int32(LevelInfo) {
		log.Printf("INFO: "+format, args...)
	}
}

// Warn logs warning messages
func Warn(format string, args ...interface{}) {
	if minLevel.Load() <= int32(LevelWarn) {
		log.Printf("WARN: "+format, args...)
	}
}

// Error logs error messages
func Error(format string, args ...interface{}) {
	if minLevel.Load() <= int32(LevelError) {
		log.Printf("ERROR: "+format, args...)
	}
}

// Debug logs debug messages
func Debug(format string, args ...interface{}) {
	if minLevel.Load() <= int32(LevelDebug) {
		log.Printf("DEBUG: "+format, args...)
	}
}
