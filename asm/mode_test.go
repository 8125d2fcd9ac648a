// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beevik/asm6502/opcode"
)

func op(mnemonic string, mode opcode.Mode, e Expr) *Instruction {
	return &Instruction{Mnemonic: mnemonic, Operand: &Operand{Mode: mode, Expr: e}}
}

func imp(mnemonic string) *Instruction {
	return &Instruction{Mnemonic: mnemonic}
}

// resolveWith evaluates the operand so that its value is memoized, then
// resolves the mode.
func resolveWith(t *testing.T, s *Instruction, symbols Symbols) opcode.Mode {
	t.Helper()
	_, _, err := Evaluate(s.Operand.Expr, symbols, NumValue(0))
	require.NoError(t, err)
	return ResolveMode(s)
}

func TestResolveModeZeroPage(t *testing.T) {
	tests := []struct {
		mnemonic string
		mode     opcode.Mode
		value    int
		want     opcode.Mode
	}{
		{"lda", opcode.ABS, 0x10, opcode.ZPG},
		{"lda", opcode.ABS, 0xff, opcode.ZPG},
		{"lda", opcode.ABS, 0x100, opcode.ABS},
		{"lda", opcode.ABX, 0x42, opcode.ZPX},
		{"lda", opcode.ABY, 0x42, opcode.ABY}, // no "lda zpy"
		{"ldx", opcode.ABY, 0x42, opcode.ZPY},
		{"jmp", opcode.ABS, 0x10, opcode.ABS},
		{"jsr", opcode.ABS, 0x10, opcode.ABS},
		{"lda", opcode.IMM, 0x10, opcode.IMM},
		{"lda", opcode.IDY, 0x10, opcode.IDY},
	}
	for _, tt := range tests {
		s := op(tt.mnemonic, tt.mode, num(tt.value))
		assert.Equal(t, tt.want, resolveWith(t, s, nil), "%s %s $%X", tt.mnemonic, tt.mode, tt.value)
		assert.False(t, s.FailedToOptimize())
	}
}

func TestResolveModeBranch(t *testing.T) {
	s := op("bne", opcode.ABS, ref("loop"))
	assert.Equal(t, opcode.REL, ResolveMode(s))
	assert.False(t, s.FailedToOptimize())

	s = op("BEQ", opcode.ABS, num(0x1000))
	assert.Equal(t, opcode.REL, resolveWith(t, s, nil))
}

func TestResolveModeUnresolved(t *testing.T) {
	s := op("lda", opcode.ABS, ref("later"))
	assert.Equal(t, opcode.ABS, resolveWith(t, s, Symbols{}))
	assert.True(t, s.FailedToOptimize())

	// No zero-page variant means no optimization was attempted.
	s = op("jmp", opcode.ABS, ref("later"))
	assert.Equal(t, opcode.ABS, resolveWith(t, s, Symbols{}))
	assert.False(t, s.FailedToOptimize())
}

func TestResolveModeImplied(t *testing.T) {
	assert.Equal(t, opcode.IMP, ResolveMode(imp("nop")))
}

func TestResolveModeCharacter(t *testing.T) {
	s := op("lda", opcode.ABS, NewString("A"))
	assert.Equal(t, opcode.ZPG, resolveWith(t, s, nil))
}
