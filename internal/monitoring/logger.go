// Package monitoring carries the swappable diagnostic logger the
// optimizer and run manager write through.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to
// log.Printf; tests mute it and embedding callers may redirect it.
var Logf func(format string, v ...any) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		Logf = func(string, ...any) {}
		return
	}
	Logf = f
}
