// Package tlog provides the leveled, structured loggers used throughout
// nuts: package-level Debug/Info/Warn/Fatal "loggers" that behave like
// *log.Logger but are backed by logrus so output can be switched to JSON,
// filtered by level, or redirected by the cmd/nuts CLI.
package tlog

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a single named severity stream. It exposes the familiar
// Printf/Println surface of *log.Logger so call sites read exactly
// like plain logging, while actually going through logrus underneath.
type Logger struct {
	level  logrus.Level
	entry  *logrus.Entry
	prefix string
}

func newLogger(base *logrus.Logger, level logrus.Level, prefix string) *Logger {
	return &Logger{level: level, entry: logrus.NewEntry(base), prefix: prefix}
}

func (l *Logger) log(s string) {
	l.entry.Log(l.level, l.prefix, s)
}

// Printf formats according to a format specifier and logs the result.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.log(fmt.Sprintf(format, args...))
}

// Println logs its arguments space-separated, like log.Println.
func (l *Logger) Println(args ...interface{}) {
	l.log(fmt.Sprintln(args...))
}

// Enabled reports whether this stream would actually produce output at
// the logger's current level.
func (l *Logger) Enabled() bool {
	return base.IsLevelEnabled(l.level)
}

var base = logrus.New()

var (
	// Debug carries verbose, per-block diagnostics (cipher backend
	// selection, block acquire/release, tree descent). Silent by default.
	Debug = newLogger(base, logrus.DebugLevel, "")
	// Info carries container/archive lifecycle events (create, open,
	// migrate, append, scan start/end).
	Info = newLogger(base, logrus.InfoLevel, "")
	// Warn carries recoverable anomalies (short read retried, stale
	// header slot skipped).
	Warn = newLogger(base, logrus.WarnLevel, "")
	// Fatal carries unrecoverable setup errors. Unlike log.Fatal it does
	// not call os.Exit itself; callers that want that still decide it
	// explicitly, keeping logging separate from process-exit control flow.
	Fatal = newLogger(base, logrus.FatalLevel, "")
)

func init() {
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	base.SetLevel(logrus.InfoLevel)
}

// SetLevel adjusts which streams actually emit output. The cmd/nuts CLI
// calls this once at startup when its --verbose flag is set.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// SetOutput redirects all streams, primarily for tests that want to
// assert on log content instead of writing to stderr.
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}
