package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetQuiet mutes (or restores) the package logger. The sampling CLI uses this
// for the -quiet flag so scripted runs emit only the output file paths.
func SetQuiet(quiet bool) {
	if quiet {
		SetLogger(nil)
		return
	}
	SetLogger(log.Printf)
}
