// Package logging is SAGE's structured logging façade over
// github.com/yanun0323/logs. The background components (the audit log's
// flush/sync paths, obs.RuntimeStats) log through this package rather
// than importing logs directly, so the call sites stay one layer removed
// from the concrete logging library. The cmd/* binaries print their
// start-up errors and shutdown summaries with the standard library's
// log package instead. Nothing on ADE's tick path, RME's evaluate path,
// or the ring's push/pop path calls into this package.
package logging

import "github.com/yanun0323/logs"

// Infof logs a formatted informational message.
func Infof(format string, args ...any) {
	logs.Infof(format, args...)
}

// Info logs an informational message.
func Info(args ...any) {
	logs.Info(args...)
}

// Warnf logs a formatted warning.
func Warnf(format string, args ...any) {
	logs.Warnf(format, args...)
}

// Warn logs a warning.
func Warn(args ...any) {
	logs.Warn(args...)
}

// Errorf logs a formatted error.
func Errorf(format string, args ...any) {
	logs.Errorf(format, args...)
}

// Error logs an error.
func Error(args ...any) {
	logs.Error(args...)
}

// Debugf logs a formatted debug message, typically suppressed outside
// development builds.
func Debugf(format string, args ...any) {
	logs.Debugf(format, args...)
}
