// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"github.com/beevik/asm6502/opcode"
)

// ResolveMode selects the addressing mode of an instruction from its
// parsed mode and the memoized value of its operand. Branch mnemonics are
// always relative. Absolute-like modes shrink to their zero-page
// equivalent when the mnemonic has one and the operand is known to fit in
// a byte. If the operand is still unresolved, the instruction is flagged
// as having failed to optimize and keeps its absolute mode from then on.
func ResolveMode(s *Instruction) opcode.Mode {
	if s.Operand == nil {
		return opcode.IMP
	}

	if opcode.IsBranch(s.Mnemonic) {
		return opcode.REL
	}

	mode := s.currentMode()
	zp, ok := opcode.ZeroPage(mode)
	if !ok || !opcode.Set().Has(s.Mnemonic, zp) {
		return mode
	}

	// A decision made while the operand was unresolved is final.
	if s.failedToOptimize {
		return mode
	}

	_, v, resolved := Cached(s.Operand.Expr)
	if !resolved {
		s.failedToOptimize = true
		return mode
	}

	if n, ok := operandNumber(v); ok && n <= 0xff {
		return zp
	}
	return mode
}

// The mode chosen by the previous pass is the starting point of the next
// one, so a zero-page choice sticks once made.
func (s *Instruction) currentMode() opcode.Mode {
	if s.inst != nil {
		return s.mode
	}
	return s.Operand.Mode
}

// operandNumber returns the numeric value of an instruction operand. A
// single-character string stands for its character code.
func operandNumber(v Value) (int, bool) {
	switch {
	case v.Kind == Num:
		return v.Num, true
	case v.Kind == Text && len(v.Text) == 1:
		return int(v.Text[0]), true
	default:
		return 0, false
	}
}
