// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/beevik/asm6502/opcode"
)

// Generate emits object code for statements that have been resolved by a
// Scheduler. Operands are evaluated against the final symbol table. Warnings
// are sent to diag, which may be nil.
func Generate(stmts []Statement, symbols Symbols, diag DiagnosticHandler) ([]byte, error) {
	g := generator{symbols: symbols, diag: diag}
	if err := g.generate(stmts); err != nil {
		return nil, err
	}
	return g.code, nil
}

type generator struct {
	symbols Symbols
	diag    DiagnosticHandler
	code    []byte
	lines   []SourceLine
	spans   []span
}

// A span is the object code emitted for one statement.
type span struct {
	stmt   Statement
	addr   int
	offset int
	size   int
}

func (g *generator) warn(kind WarningKind, line int, format string, args ...any) {
	if g.diag != nil {
		g.diag.Warn(Diagnostic{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)})
	}
}

func (g *generator) emit(stmt Statement, addr int, b ...byte) {
	if len(b) == 0 {
		return
	}
	g.lines = append(g.lines, SourceLine{Address: addr, Offset: len(g.code), Line: stmt.Line()})
	g.spans = append(g.spans, span{stmt: stmt, addr: addr, offset: len(g.code), size: len(b)})
	g.code = append(g.code, b...)
}

// The location counter is meaningless during code generation. Expressions
// that refer to it were memoized during the final pass.
func (g *generator) eval(line int, e Expr) (TermValue, Value, error) {
	term, v, err := Evaluate(e, g.symbols, Value{})
	if err != nil {
		return nil, Value{}, wrapError(line, err)
	}
	return term, v, nil
}

func (g *generator) generate(stmts []Statement) error {
	for _, stmt := range stmts {
		var err error
		switch st := stmt.(type) {
		case *Label, *LabelDef:
		case *Instruction:
			err = g.instruction(st)
		case *Directive:
			err = g.directive(st)
		default:
			err = newError(stmt.Line(), ErrMalformed, "unknown statement type %T", stmt)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// fitsByte reports whether v can be stored in 8 bits, either as an
// unsigned value or as a two's complement negative value.
func fitsByte(v int) bool {
	return v >= -128 && v <= 0xff
}

func (g *generator) directive(st *Directive) error {
	var b []byte

	switch st.Kind {
	case Byte:
		for _, e := range st.Exprs {
			term, v, err := g.eval(st.SrcLine, e)
			if err != nil {
				return err
			}
			switch v.Kind {
			case Text:
				b = append(b, v.Text...)
			case Num:
				if !fitsByte(v.Num) {
					if l, ok := term.(LabelRef); ok {
						return newError(st.SrcLine, ErrWidth,
							"label '%s' used in .byte directive refers to a 16-bit value", l)
					}
					return newError(st.SrcLine, ErrWidth,
						"value %s used in .byte directive is not an 8-bit value", v)
				}
				b = append(b, byte(v.Num))
			default:
				return unresolvedOperand(st.SrcLine, term, e)
			}
		}

	case Word:
		for _, e := range st.Exprs {
			term, v, err := g.eval(st.SrcLine, e)
			if err != nil {
				return err
			}
			n, ok := operandNumber(v)
			if !ok {
				if v.Resolved() {
					return newError(st.SrcLine, ErrMalformed, "string %s used in .word directive", v)
				}
				return unresolvedOperand(st.SrcLine, term, e)
			}
			b = append(b, byte(n), byte(n>>8))
		}

	case Res:
		term, length, err := g.eval(st.SrcLine, st.Len)
		if err != nil {
			return err
		}
		if !length.IsNum() {
			return unresolvedOperand(st.SrcLine, term, st.Len)
		}

		fill := 0
		if st.Fill != nil {
			term, v, err := g.eval(st.SrcLine, st.Fill)
			if err != nil {
				return err
			}
			n, ok := operandNumber(v)
			if !ok {
				return unresolvedOperand(st.SrcLine, term, st.Fill)
			}
			if !fitsByte(n) {
				return newError(st.SrcLine, ErrWidth,
					"fill value %d used in .res directive is not an 8-bit value", n)
			}
			fill = n
		}

		for i := 0; i < length.Num; i++ {
			b = append(b, byte(fill))
		}

	default:
		return newError(st.SrcLine, ErrMalformed, "unknown directive '%s'", st.Kind)
	}

	g.emit(st, st.addr, b...)
	return nil
}

func (g *generator) instruction(st *Instruction) error {
	if st.inst == nil {
		return newError(st.SrcLine, ErrMalformed, "instruction '%s' was never resolved", st)
	}

	if st.Operand == nil || st.inst.Length == 1 {
		g.emit(st, st.Address(), st.inst.Opcode)
		return nil
	}

	term, v, err := g.eval(st.SrcLine, st.Operand.Expr)
	if err != nil {
		return err
	}

	label, isLabel := term.(LabelRef)
	isLC := isLabel && label.IsLocationCounter()

	n, ok := operandNumber(v)
	if !ok {
		if v.Resolved() {
			return newError(st.SrcLine, ErrMalformed, "string %s used as an instruction operand", v)
		}
		return unresolvedOperand(st.SrcLine, term, st.Operand.Expr)
	}

	if n <= 0xff && st.failedToOptimize {
		if _, ok := opcode.ZeroPage(st.mode); ok {
			g.warn(WarnMissedZeroPage, st.SrcLine,
				"failed to optimize instruction because of forward reference '%s'", st.Operand.Expr)
		}
	}

	switch st.mode {
	case opcode.REL:
		offset := n
		if _, literal := term.(Number); !literal {
			offset = n - st.location
		}
		if offset <= -127 || offset >= 128 {
			return newError(st.SrcLine, ErrWidth, "relative address out of bounds ('%s')", st.Operand.Expr)
		}
		if isLC {
			offset = st.location
		}
		g.emit(st, st.Address(), st.inst.Opcode, byte(offset))
		return nil

	case opcode.IMM, opcode.IDX, opcode.IDY:
		addr := n
		if isLC {
			addr = st.location
		}
		if !fitsByte(addr) {
			return newError(st.SrcLine, ErrWidth, "operand '%s' refers to a 16-bit value", st.Operand.Expr)
		}
	}

	switch st.inst.Length {
	case 2:
		data := n
		if isLC {
			data = st.location
		}
		g.emit(st, st.Address(), st.inst.Opcode, byte(data))
	default:
		data := n
		if isLC {
			data = st.location - int(st.inst.Length)
		}
		g.emit(st, st.Address(), st.inst.Opcode, byte(data), byte(data>>8))
	}
	return nil
}

func unresolvedOperand(line int, term TermValue, e Expr) error {
	if l, ok := term.(LabelRef); ok && !l.IsLocationCounter() {
		return newError(line, ErrUndefinedLabel, "label '%s' not defined", l)
	}
	return newError(line, ErrUndefinedLabel, "expression '%s' could not be resolved", e)
}
