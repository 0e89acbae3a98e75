// Copyright 2025 The Mdref Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log configures the global structured logger.
//
// mdref is quiet by default: everything below the warn level is discarded
// unless --verbose raises the level. Logs go to stderr so they never mix
// with reported findings on stdout.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the global logger.
type Config struct {
	// Level is the minimum level to emit. Leave nil to default to warn,
	// overridable through MDREF_LOG_LEVEL.
	Level  *zerolog.Level
	Output io.Writer // defaults to os.Stderr
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure initialises the global zerolog logger exactly once.
func Configure(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(resolveLevel(cfg))
		zerolog.TimeFieldFormat = time.RFC3339

		writer := cfg.Output
		if writer == nil {
			writer = os.Stderr
		}
		base = zerolog.New(writer).With().Timestamp().Logger()
	})
}

// resolveLevel picks the effective log level. The zero zerolog.Level is
// debug, so an unset level must be a nil pointer rather than a sentinel
// value.
func resolveLevel(cfg Config) zerolog.Level {
	if cfg.Level != nil {
		return *cfg.Level
	}
	level := zerolog.WarnLevel
	if env := os.Getenv("MDREF_LOG_LEVEL"); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	return level
}

// Base returns the configured base logger instance.
func Base() *zerolog.Logger {
	Configure(Config{})
	return &base
}

// WithComponent returns a child logger annotated with the given component
// name. The pointer return allows chaining level methods directly.
func WithComponent(component string) *zerolog.Logger {
	l := Base().With().Str("component", component).Logger()
	return &l
}
