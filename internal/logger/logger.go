// Package logger provides levelled logging for the geostamp commands.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields are structured log fields.
type Fields = logrus.Fields

var log = newLogger(os.Stderr)

func newLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetOutput sets the output of the logger.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// SetLevel sets the log level by name (debug, info, warn, error).
// Unknown names select info.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// WithFields returns an entry logging fields with each message.
func WithFields(f Fields) *logrus.Entry {
	return log.WithFields(f)
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}
