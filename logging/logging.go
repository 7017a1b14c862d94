// Copyright 2026 The Gometrics Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package logging provides the logger interface used throughout the
// library, with a logrus-backed default implementation.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Level log level for Logger
type Level uint8

const (
	// Error error log level
	Error Level = iota
	// Warn warn log level
	Warn
	// Info info log level
	Info
	// Debug debug log level
	Debug
)

// Logger provides interface for logger implementations.
type Logger interface {
	Debug(fmt string, a ...any)
	Info(fmt string, a ...any)
	Error(fmt string, a ...any)
	Warn(fmt string, a ...any)

	WithFields(map[string]any) Logger

	GetLevel() Level
	SetLevel(Level)
}

// StandardLogger is the default logger implementation.
type StandardLogger struct {
	logger *logrus.Logger
	fields map[string]any
}

// New returns a new standard logger.
func New() *StandardLogger {
	return &StandardLogger{
		logger: logrus.New(),
	}
}

// WithFields provides additional fields to include in log output.
func (l *StandardLogger) WithFields(fields map[string]any) Logger {
	cp := *l
	cp.fields = make(map[string]any)
	for k, v := range l.fields {
		cp.fields[k] = v
	}
	for k, v := range fields {
		cp.fields[k] = v
	}
	return &cp
}

// SetOutput sets the underlying logrus output.
func (l *StandardLogger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// SetFormatter sets the underlying logrus formatter.
func (l *StandardLogger) SetFormatter(formatter logrus.Formatter) {
	l.logger.SetFormatter(formatter)
}

// SetLevel sets the logging level.
func (l *StandardLogger) SetLevel(level Level) {
	var logrusLevel logrus.Level
	switch level {
	case Debug:
		logrusLevel = logrus.DebugLevel
	case Info:
		logrusLevel = logrus.InfoLevel
	case Warn:
		logrusLevel = logrus.WarnLevel
	default:
		logrusLevel = logrus.ErrorLevel
	}
	l.logger.SetLevel(logrusLevel)
}

// GetLevel returns the logging level.
func (l *StandardLogger) GetLevel() Level {
	switch l.logger.GetLevel() {
	case logrus.DebugLevel:
		return Debug
	case logrus.InfoLevel:
		return Info
	case logrus.WarnLevel:
		return Warn
	default:
		return Error
	}
}

// Debug logs at debug level.
func (l *StandardLogger) Debug(fmt string, a ...any) {
	l.entry().Debugf(fmt, a...)
}

// Info logs at info level.
func (l *StandardLogger) Info(fmt string, a ...any) {
	l.entry().Infof(fmt, a...)
}

// Error logs at error level.
func (l *StandardLogger) Error(fmt string, a ...any) {
	l.entry().Errorf(fmt, a...)
}

// Warn logs at warn level.
func (l *StandardLogger) Warn(fmt string, a ...any) {
	l.entry().Warnf(fmt, a...)
}

func (l *StandardLogger) entry() *logrus.Entry {
	return l.logger.WithFields(logrus.Fields(l.fields))
}

// NoOpLogger logging implementation that does nothing.
type NoOpLogger struct {
	level Level
}

// NewNoOpLogger instantiates new NoOpLogger.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{level: Info}
}

// WithFields is a no-op.
func (l *NoOpLogger) WithFields(map[string]any) Logger {
	return l
}

// Debug is a no-op.
func (*NoOpLogger) Debug(string, ...any) {}

// Info is a no-op.
func (*NoOpLogger) Info(string, ...any) {}

// Error is a no-op.
func (*NoOpLogger) Error(string, ...any) {}

// Warn is a no-op.
func (*NoOpLogger) Warn(string, ...any) {}

// SetLevel stores the level.
func (l *NoOpLogger) SetLevel(level Level) {
	l.level = level
}

// GetLevel returns the stored level.
func (l *NoOpLogger) GetLevel() Level {
	return l.level
}
