// Copyright (c) 2025-2026 SearchGate Inc. All rights reserved.

package gosearchgate

import (
	"context"
	"io"

	rlog "github.com/sirupsen/logrus"
)

type contextKey string

// LogJobIDKey is the context key of the async job id attached to log entries.
const LogJobIDKey contextKey = "LOG_JOB_ID"

// LogConnectionIDKey is the context key of the connection id attached to log
// entries.
const LogConnectionIDKey contextKey = "LOG_CONNECTION_ID"

var logKeys = [...]contextKey{LogJobIDKey, LogConnectionIDKey}

// GatewayLogger is the logging interface used throughout the gateway. It
// abstracts away the underlying logging mechanism.
type GatewayLogger interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debug(args ...interface{})
	Info(args ...interface{})
	Error(args ...interface{})
	WithContext(ctx context.Context) *rlog.Entry
	SetLogLevel(level string) error
	SetOutput(output io.Writer)
}

type defaultLogger struct {
	inner *rlog.Logger
}

// CreateDefaultLogger returns a new logger with the default configuration.
// It does not modify global state; pass the result to SetLogger to install
// it.
func CreateDefaultLogger() GatewayLogger {
	var rLogger = rlog.New()
	return &defaultLogger{inner: rLogger}
}

var logger = CreateDefaultLogger()

func init() {
	_ = logger.SetLogLevel("error")
}

// SetLogger installs a new logger for the gateway.
func SetLogger(inLogger GatewayLogger) {
	logger = inLogger
}

// GetLogger returns the logger currently in use.
func GetLogger() GatewayLogger {
	return logger
}

func (log *defaultLogger) SetLogLevel(level string) error {
	actualLevel, err := rlog.ParseLevel(level)
	if err != nil {
		return err
	}
	log.inner.SetLevel(actualLevel)
	return nil
}

func (log *defaultLogger) SetOutput(output io.Writer) {
	log.inner.SetOutput(output)
}

func (log *defaultLogger) WithContext(ctx context.Context) *rlog.Entry {
	return log.inner.WithFields(context2Fields(ctx))
}

func (log *defaultLogger) Tracef(format string, args ...interface{}) {
	log.inner.Tracef(format, args...)
}

func (log *defaultLogger) Debugf(format string, args ...interface{}) {
	log.inner.Debugf(format, args...)
}

func (log *defaultLogger) Infof(format string, args ...interface{}) {
	log.inner.Infof(format, args...)
}

func (log *defaultLogger) Warnf(format string, args ...interface{}) {
	log.inner.Warnf(format, args...)
}

func (log *defaultLogger) Errorf(format string, args ...interface{}) {
	log.inner.Errorf(format, args...)
}

func (log *defaultLogger) Debug(args ...interface{}) {
	log.inner.Debug(args...)
}

func (log *defaultLogger) Info(args ...interface{}) {
	log.inner.Info(args...)
}

func (log *defaultLogger) Error(args ...interface{}) {
	log.inner.Error(args...)
}

func context2Fields(ctx context.Context) rlog.Fields {
	fields := rlog.Fields{}
	if ctx == nil {
		return fields
	}
	for i := 0; i < len(logKeys); i++ {
		if ctx.Value(logKeys[i]) != nil {
			fields[string(logKeys[i])] = ctx.Value(logKeys[i])
		}
	}
	return fields
}
