// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asm6502.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 32, c.MaxPasses)
	assert.Equal(t, "a.out", c.Output)
	assert.Equal(t, SymbolsText, c.SymbolsFormat)
	assert.GreaterOrEqual(t, c.Jobs, 1)

	l, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
max_passes = 8
origin = 0xc000
output = "game.bin"
symbols_format = "yaml"
log_level = "debug"
jobs = 2
source_map = true
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		MaxPasses:     8,
		Origin:        0xc000,
		Output:        "game.bin",
		SymbolsFormat: SymbolsYAML,
		LogLevel:      "debug",
		Jobs:          2,
		SourceMap:     true,
	}, c)
}

func TestLoadKeepsDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "source_map = true\n"))
	require.NoError(t, err)
	assert.True(t, c.SourceMap)
	assert.Equal(t, Default().MaxPasses, c.MaxPasses)
	assert.Equal(t, "a.out", c.Output)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		contents string
		msg      string
	}{
		{"max_pass = 3\n", "unknown keys"},
		{"max_passes = \"many\"\n", "error decoding"},
		{"max_passes = 0\n", "max_passes must be at least 1"},
		{"origin = 0x10000\n", "outside the 64K address space"},
		{"jobs = 0\n", "jobs must be at least 1"},
		{"symbols_format = \"xml\"\n", "unknown symbols format"},
		{"log_level = \"chatty\"\n", "invalid log_level"},
	}
	for _, tt := range tests {
		_, err := Load(writeConfig(t, tt.contents))
		require.Error(t, err, tt.contents)
		assert.Contains(t, err.Error(), tt.msg, tt.contents)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading configuration file")
}
