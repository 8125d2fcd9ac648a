// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the settings of the asm6502 command, read from an
// optional TOML file.
package config

import (
	"os"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/beevik/asm6502/asm"
)

// Symbol table output formats
const (
	SymbolsText = "text"
	SymbolsJSON = "json"
	SymbolsYAML = "yaml"
)

// Config is the assembler configuration.
type Config struct {
	// MaxPasses is the number of resolution passes attempted before
	// assembly gives up.
	MaxPasses int `toml:"max_passes"`

	// Origin is the initial location counter.
	Origin int `toml:"origin"`

	// Output is the object code file written when a single source file is
	// assembled. Each source file gets its own ".bin" file otherwise.
	Output string `toml:"output"`

	// SymbolsFormat selects how the symbol table is printed: text, json or
	// yaml.
	SymbolsFormat string `toml:"symbols_format"`

	// LogLevel is a logrus level name.
	LogLevel string `toml:"log_level"`

	// Jobs is the number of source files assembled concurrently.
	Jobs int `toml:"jobs"`

	// SourceMap enables writing a ".map" file next to each object file.
	SourceMap bool `toml:"source_map"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxPasses:     asm.DefaultMaxPasses,
		Output:        "a.out",
		SymbolsFormat: SymbolsText,
		LogLevel:      logrus.InfoLevel.String(),
		Jobs:          runtime.NumCPU(),
	}
}

// Load reads a TOML configuration file on top of the defaults. Keys the
// configuration does not know about are an error.
func Load(path string) (*Config, error) {
	c := Default()

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading configuration file %s", path)
	}

	md, err := toml.Decode(string(contents), c)
	if err != nil {
		return nil, errors.Wrapf(err, "error decoding configuration file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("unknown keys in configuration file %s: %s", path, strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration file %s", path)
	}
	return c, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.MaxPasses < 1 {
		return errors.Errorf("max_passes must be at least 1, got %d", c.MaxPasses)
	}
	if c.Origin < 0 || c.Origin > 0xffff {
		return errors.Errorf("origin $%X is outside the 64K address space", c.Origin)
	}
	if c.Jobs < 1 {
		return errors.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	switch c.SymbolsFormat {
	case SymbolsText, SymbolsJSON, SymbolsYAML:
	default:
		return errors.Errorf("unknown symbols format %q", c.SymbolsFormat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured logrus level.
func (c *Config) Level() (logrus.Level, error) {
	l, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return l, errors.Wrap(err, "invalid log_level")
	}
	return l, nil
}
