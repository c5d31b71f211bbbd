// Package logger provides the prefixed, leveled logger shared by every
// package in this module.
package logger

import (
	"io"
	"os"
	"sync"

	prefixed "github.com/chappjc/logrus-prefix"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Entry tagged with the owning package's prefix.
type Logger struct {
	*logrus.Entry
}

var (
	mu      sync.Mutex
	loggers = make(map[string]*Logger)
)

// GetLogger returns the singleton Logger for the given prefix, creating it
// (and its backing *logrus.Logger) on first use.
func GetLogger(prefix string) *Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[prefix]; ok {
		return l
	}
	base := logrus.New()
	base.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp: true,
	})
	entry := base.WithField("prefix", prefix)
	l := &Logger{Entry: entry}
	loggers[prefix] = l
	return l
}

// WithFile additionally appends every log line written through l to the file
// at path, at every level, using lfshook.
func WithFile(l *Logger, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	writers := lfshook.WriterMap{}
	for _, level := range logrus.AllLevels {
		writers[level] = f
	}
	l.Logger.AddHook(lfshook.NewHook(writers, &logrus.TextFormatter{FullTimestamp: true}))
	return nil
}

// WithNoStdOutErr silences the logger's usual stdout/stderr output, leaving
// only hooks (e.g. a file sink installed via WithFile) to receive log lines.
func WithNoStdOutErr(l *Logger) {
	l.Logger.SetOutput(io.Discard)
}
