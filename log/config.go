// Copyright 2024-2026 The dshp Authors, all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"os"
)

// Config is a configuration for the loggers.
type Config struct {
	File  *os.File
	Level Level
}

func DefaultConfig() *Config {
	return &Config{
		File:  nil,
		Level: InfoLevel,
	}
}

type Level int32

// Levels start from 1 to avoid zero value in help printer.
const (
	ErrorLevel Level = 1 + iota
	InfoLevel
	DebugLevel
)

func (l Level) String() string {
	return [3]string{"error", "info", "debug"}[l-1]
}

func ParseLevel(s string) (Level, error) {
	switch s {
	case "error":
		return ErrorLevel, nil
	case "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	default:
		return 0, fmt.Errorf("invalid log level: %q", s)
	}
}
