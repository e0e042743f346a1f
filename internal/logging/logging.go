// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

// Package logging builds the zap logger elmterm threads through the
// transport and terminal layers, grounded on bingwumeihuo-car-gateway's
// cmd/server/main.go zap+lumberjack core construction. Every status and
// error annotation spec.md §7 describes passes through this logger in
// addition to being rendered to the terminal — two independent sinks for
// the same event.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures logger construction, filled in from CLI flags.
type Options struct {
	// File, when non-empty, routes logs through a rotating lumberjack
	// writer instead of stderr.
	File  string
	Level string // debug|info|warn|error
}

// New builds a *zap.SugaredLogger per opts. An empty File logs
// human-readable output to stderr (development-friendly, matching the
// teacher's REPL-facing tools); a non-empty File switches to JSON logs
// through lumberjack, matching the gateway's production posture.
func New(opts Options) *zap.SugaredLogger {
	level := parseLevel(opts.Level)

	if opts.File == "" {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			zap.NewAtomicLevelAt(level),
		)
		return zap.New(core).Sugar()
	}

	writeSyncer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	})
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		writeSyncer,
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core).Sugar()
}

func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zap.InfoLevel
	}
	return level
}
