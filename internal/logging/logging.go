/*
DESCRIPTION
  logging.go provides a structured logger interface in the style consumed
  throughout this module, along with a zap/lumberjack backed implementation.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package logging provides the Logger interface used across the hevc
// module, and a zap-backed implementation with optional lumberjack log
// rotation.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level describes a minimum severity for log output.
type Level int8

// Severity levels, lowest to highest.
const (
	DebugLevel Level = iota
	InfoLevel
	WarningLevel
	ErrorLevel
)

// Logger is the structured logging interface used by the hevc parser and
// the hevcparse command. Each method takes a short message followed by
// alternating key/value pairs, e.g. Debug("parsed sps", "id", sps.ID).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warning(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
	SetLevel(l Level)
}

// zapLogger adapts *zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	s    *zap.SugaredLogger
	lvl  zap.AtomicLevel
}

// New returns a Logger that writes to stderr.
func New() Logger {
	return newWithSink(zapcore.AddSync(os.Stderr))
}

// NewFile returns a Logger that writes to a rotating log file at path using
// lumberjack, in addition to stderr.
func NewFile(path string, maxSizeMB, maxBackups, maxAgeDays int) Logger {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}
	sink := zapcore.NewMultiWriteSyncer(
		zapcore.AddSync(os.Stderr),
		zapcore.AddSync(rotator),
	)
	return newWithSink(sink)
}

func newWithSink(sink zapcore.WriteSyncer) Logger {
	atom := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), sink, atom)
	l := zap.New(core).Sugar()
	return &zapLogger{s: l, lvl: atom}
}

func (z *zapLogger) Debug(msg string, args ...interface{})   { z.s.Debugw(msg, args...) }
func (z *zapLogger) Info(msg string, args ...interface{})    { z.s.Infow(msg, args...) }
func (z *zapLogger) Warning(msg string, args ...interface{}) { z.s.Warnw(msg, args...) }
func (z *zapLogger) Error(msg string, args ...interface{})   { z.s.Errorw(msg, args...) }
func (z *zapLogger) Fatal(msg string, args ...interface{})   { z.s.Fatalw(msg, args...) }

func (z *zapLogger) SetLevel(l Level) {
	switch l {
	case DebugLevel:
		z.lvl.SetLevel(zapcore.DebugLevel)
	case InfoLevel:
		z.lvl.SetLevel(zapcore.InfoLevel)
	case WarningLevel:
		z.lvl.SetLevel(zapcore.WarnLevel)
	case ErrorLevel:
		z.lvl.SetLevel(zapcore.ErrorLevel)
	}
}

// noop is a Logger that discards everything; used as the zero-value default
// so a Parser constructed without options never nil-derefs on l.Debug(...).
type noop struct{}

// Noop returns a Logger that discards all messages.
func Noop() Logger { return noop{} }

func (noop) Debug(string, ...interface{})   {}
func (noop) Info(string, ...interface{})    {}
func (noop) Warning(string, ...interface{}) {}
func (noop) Error(string, ...interface{})   {}
func (noop) Fatal(string, ...interface{})   {}
func (noop) SetLevel(Level)                 {}
