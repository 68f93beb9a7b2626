// Package logger provides a minimal leveled logger for soundmark.
//
// It writes timestamped lines to stderr. There is no dependency on a
// structured-logging library: the teacher this project is adapted from
// hand-rolled the same small wrapper, and nothing downstream needs more
// than level + message.
package logger

import (
	"fmt"
	"log"
	"os"
)

var std = log.New(os.Stderr, "", log.LstdFlags)

// Info logs an informational message.
func Info(msg string) {
	std.Println("[INFO] " + msg)
}

// Infof logs a formatted informational message.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Debug logs a diagnostic message useful only while developing.
func Debug(msg string) {
	std.Println("[DEBUG] " + msg)
}

// Debugf logs a formatted diagnostic message.
func Debugf(format string, args ...any) {
	Debug(fmt.Sprintf(format, args...))
}

// Error logs an error. A nil error is a no-op.
func Error(err error) {
	if err == nil {
		return
	}
	std.Println("[ERROR] " + err.Error())
}

// Errorf logs a formatted error message.
func Errorf(format string, args ...any) {
	std.Println("[ERROR] " + fmt.Sprintf(format, args...))
}
