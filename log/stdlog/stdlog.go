// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package stdlog

import (
	"io"
	"log"
	"os"

	dlog "github.com/yinyancute2022/dshp/log"
)

func Default() *Logger {
	return &Logger{
		log:   log.Default(),
		level: dlog.InfoLevel,
	}
}

// Option is a function that modifies the Logger.
type Option func(*Logger)

func WithLevel(l dlog.Level) Option {
	return func(sl *Logger) {
		sl.level = l
	}
}

func New(cfg *dlog.Config, opts ...Option) *Logger {
	var w io.Writer = os.Stderr
	if cfg.File != nil {
		w = cfg.File
	}

	l := &Logger{
		log:   log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.LUTC),
		level: cfg.Level,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Logger implements the dshp log.Logger interface using the standard log package.
type Logger struct {
	log   *log.Logger
	name  string
	level dlog.Level

	errorPfx string
	infoPfx  string
	debugPfx string
}

func (sl Logger) Named(name string, opts ...Option) *Logger { //nolint:gocritic // we pass by value to get a copy
	sl.name = name

	if name != "" {
		name = "[" + name + "] "
	}

	sl.errorPfx = name + "[ERROR] "
	sl.infoPfx = name + "[INFO] "
	sl.debugPfx = name + "[DEBUG] "

	for _, opt := range opts {
		opt(&sl)
	}

	return &sl
}

func (sl *Logger) Errorf(format string, args ...any) {
	if sl.level < dlog.ErrorLevel {
		return
	}
	sl.log.Printf(sl.errorPfx+format, args...)
}

func (sl *Logger) Infof(format string, args ...any) {
	if sl.level < dlog.InfoLevel {
		return
	}
	sl.log.Printf(sl.infoPfx+format, args...)
}

func (sl *Logger) Debugf(format string, args ...any) {
	if sl.level < dlog.DebugLevel {
		return
	}
	sl.log.Printf(sl.debugPfx+format, args...)
}

// Unwrap returns the underlying log.Logger pointer.
func (sl *Logger) Unwrap() *log.Logger {
	return sl.log
}
