// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand(strings.NewReader(stdin), &out, &errOut)
	root.SetArgs(append([]string{}, args...))
	err = root.Execute()
	return out.String(), errOut.String(), err
}

const program = `
        * = $c000
start:  ldx #0
loop:   lda msg,x
        beq done
        inx
        bne loop
done:   rts
msg:    .byte "hi", 0
`

func TestAssembleOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prog.asm", program)
	out := filepath.Join(dir, "prog.out")

	_, _, err := execute(t, "", "-o", out, "--source-map", src)
	require.NoError(t, err)

	code, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0xa2, 0x00,
		0xbd, 0x0b, 0xc0,
		0xf0, 0x03,
		0xe8,
		0xd0, 0xf8,
		0x60,
		'h', 'i', 0x00,
	}, code)

	_, err = os.Stat(filepath.Join(dir, "prog.map"))
	assert.NoError(t, err)
}

func TestAssembleStdout(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prog.asm", "lda #1\nrts\n")

	stdout, _, err := execute(t, "", "-o", "-", src)
	require.NoError(t, err)
	assert.Equal(t, "\xa9\x01\x60", stdout)
}

func TestPrintSymbols(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prog.asm", program)
	out := filepath.Join(dir, "prog.bin")

	stdout, _, err := execute(t, "", "-o", out, "-s", src)
	require.NoError(t, err)
	assert.Equal(t, ""+
		"$C00A: done\n"+
		"$C002: loop\n"+
		"$C00B: msg\n"+
		"$C000: start\n", stdout)

	stdout, _, err = execute(t, "", "-o", out, "-s", "--symbols-format", "json", src)
	require.NoError(t, err)
	var table symbolTable
	require.NoError(t, json.Unmarshal([]byte(stdout), &table))
	assert.Equal(t, 0xc00b, table.Symbols["msg"])

	stdout, _, err = execute(t, "", "-o", out, "-s", "--symbols-format", "yaml", src)
	require.NoError(t, err)
	table = symbolTable{}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &table))
	assert.Equal(t, 0xc002, table.Symbols["loop"])
}

func TestListingAndAST(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prog.asm", "* = $0600\nlda #1\n.byte 1,2,3,4\n")
	out := filepath.Join(dir, "prog.bin")

	stdout, _, err := execute(t, "", "-o", out, "--print-ast", "--listing", src)
	require.NoError(t, err)
	assert.Contains(t, stdout, "   2  lda #$1\n")
	assert.Contains(t, stdout, "0600-   A9 01       lda #$1\n")
	assert.Contains(t, stdout, "0602-   01 02 03    .byte $1, $2, $3, $4\n")
	assert.Contains(t, stdout, "0605-*  04\n")
}

func TestMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.asm", "nop\n")
	b := writeFile(t, dir, "b.s", "rts\n")

	_, _, err := execute(t, "", "-j", "2", a, b)
	require.NoError(t, err)

	code, err := os.ReadFile(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xea}, code)
	code, err = os.ReadFile(filepath.Join(dir, "b.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60}, code)
}

func TestErrorsCollected(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.asm", "nop\n")
	bad1 := writeFile(t, dir, "bad1.asm", "lda #\nlda (\n")
	bad2 := writeFile(t, dir, "bad2.asm", "jmp nowhere\n")

	_, _, err := execute(t, "", bad1, good, bad2)
	require.Error(t, err)

	lines := strings.Split(err.Error(), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], bad1+": syntax error: line 1"))
	assert.True(t, strings.HasPrefix(lines[1], bad1+": syntax error: line 2"))
	assert.True(t, strings.HasPrefix(lines[2], bad2+": "))
	assert.Contains(t, lines[2], "nowhere")

	_, err = os.Stat(filepath.Join(dir, "good.bin"))
	assert.NoError(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.bin")
	cfg := writeFile(t, dir, "asm6502.toml", "origin = 0x0800\noutput = \""+filepath.ToSlash(out)+"\"\n")
	src := writeFile(t, dir, "prog.asm", "jmp *\n")

	_, _, err := execute(t, "", "-c", cfg, src)
	require.NoError(t, err)
	code, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4c, 0x00, 0x08}, code)

	// Flags override the configuration file.
	_, _, err = execute(t, "", "-c", cfg, "--origin", "0x1000", src)
	require.NoError(t, err)
	code, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x4c, 0x00, 0x10}, code)
}

func TestInvalidSettings(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prog.asm", "nop\n")

	_, _, err := execute(t, "", "--max-passes", "0", src)
	assert.EqualError(t, err, "max_passes must be at least 1, got 0")

	_, _, err = execute(t, "", "--symbols-format", "xml", src)
	assert.EqualError(t, err, `unknown symbols format "xml"`)

	_, _, err = execute(t, "")
	assert.Error(t, err)
}

func TestShell(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "init.cmd", "assemble interactive $0300\nval = $1234\nnop\nend\n")

	stdout, _, err := execute(t, "evaluate val\nquit\n", "shell", "--origin", "0x0300", script)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Assembled 1 bytes.\n")
	assert.Contains(t, stdout, "$1234 (4660)\n")
}

func TestDisassemble(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "prog.asm", "* = $0600\nloop: dex\nbne loop\n* = $0700\nslo $12\n.byte $02\n")
	out := filepath.Join(dir, "prog.bin")

	stdout, _, err := execute(t, "", "-o", out, "-d", src)
	require.NoError(t, err)
	assert.Equal(t, ""+
		"0600-   CA          DEX\n"+
		"0601-   D0 FD       BNE $0600\n"+
		"0700-   07 12       SLO $12\n"+
		"0702-   02          .BYTE $02\n", stdout)
}
