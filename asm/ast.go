// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/asm6502/opcode"
)

// LocationCounter is the name that stands for the current location counter,
// both as an assignment target and inside expressions.
const LocationCounter = "*"

// A Statement is a single parsed source statement. The concrete types are
// *Label, *LabelDef, *Instruction and *Directive.
type Statement interface {
	Line() int
	fmt.Stringer
	statement()
}

// A Label binds a name to the location counter.
type Label struct {
	Name    string
	SrcLine int
}

// A LabelDef binds a name to the value of an expression. The name "*"
// moves the location counter instead.
type LabelDef struct {
	Name    string
	Expr    Expr
	SrcLine int
}

// An Operand is the parsed operand of an instruction: the addressing mode
// implied by its syntax and the expression that yields its value.
type Operand struct {
	Mode opcode.Mode
	Expr Expr
}

// An Instruction is a mnemonic with an optional operand. The unexported
// fields are filled in by the pass scheduler.
type Instruction struct {
	Mnemonic string
	Operand  *Operand // nil for implied instructions
	SrcLine  int

	inst             *opcode.Instruction
	mode             opcode.Mode // mode chosen by the most recent pass
	location         int         // address immediately after the instruction
	failedToOptimize bool
}

// DirectiveKind identifies a data directive.
type DirectiveKind byte

// Data directives
const (
	Byte DirectiveKind = iota // .byte / .aasc
	Word                      // .word
	Res                       // .res
)

var directiveName = []string{".byte", ".word", ".res"}

func (k DirectiveKind) String() string {
	if int(k) < len(directiveName) {
		return directiveName[k]
	}
	return "???"
}

// A Directive emits data. Byte and Word directives carry a list of
// expressions. Res directives carry a length and an optional fill byte.
type Directive struct {
	Kind    DirectiveKind
	Exprs   []Expr
	Len     Expr
	Fill    Expr // nil means zero fill
	SrcLine int

	addr int // address of the first emitted byte
}

func (*Label) statement()       {}
func (*LabelDef) statement()    {}
func (*Instruction) statement() {}
func (*Directive) statement()   {}

// Line returns the source line of the statement.
func (s *Label) Line() int       { return s.SrcLine }
func (s *LabelDef) Line() int    { return s.SrcLine }
func (s *Instruction) Line() int { return s.SrcLine }
func (s *Directive) Line() int   { return s.SrcLine }

func (s *Label) String() string {
	return s.Name + ":"
}

func (s *LabelDef) String() string {
	return fmt.Sprintf("%s = %s", s.Name, s.Expr)
}

func (s *Instruction) String() string {
	if s.Operand == nil {
		return s.Mnemonic
	}
	e := s.Operand.Expr.String()
	switch s.Operand.Mode {
	case opcode.IMM:
		e = "#" + e
	case opcode.ABX, opcode.ZPX:
		e += ",x"
	case opcode.ABY, opcode.ZPY:
		e += ",y"
	case opcode.IND:
		e = "(" + e + ")"
	case opcode.IDX:
		e = "(" + e + ",x)"
	case opcode.IDY:
		e = "(" + e + "),y"
	}
	return s.Mnemonic + " " + e
}

// Address returns the address of the directive's first byte.
func (s *Directive) Address() int {
	return s.addr
}

func (s *Directive) String() string {
	var parts []string
	if s.Kind == Res {
		parts = append(parts, s.Len.String())
		if s.Fill != nil {
			parts = append(parts, s.Fill.String())
		}
	} else {
		for _, e := range s.Exprs {
			parts = append(parts, e.String())
		}
	}
	return s.Kind.String() + " " + strings.Join(parts, ", ")
}

// Mode returns the addressing mode selected for the instruction during the
// most recent pass.
func (s *Instruction) Mode() opcode.Mode {
	return s.mode
}

// Opcode returns the opcode selected for the instruction.
func (s *Instruction) Opcode() byte {
	if s.inst == nil {
		return 0
	}
	return s.inst.Opcode
}

// Size returns the encoded size of the instruction in bytes, or 0 if it
// has not been resolved yet.
func (s *Instruction) Size() int {
	if s.inst == nil {
		return 0
	}
	return int(s.inst.Length)
}

// Location returns the address immediately following the instruction.
func (s *Instruction) Location() int {
	return s.location
}

// Address returns the address of the instruction's opcode byte.
func (s *Instruction) Address() int {
	return s.location - s.Size()
}

// FailedToOptimize reports whether zero-page optimization was skipped
// because the operand was unresolved when the mode was chosen.
func (s *Instruction) FailedToOptimize() bool {
	return s.failedToOptimize
}

// A TermValue is the literal payload of a Term: a Number, a String or a
// LabelRef.
type TermValue interface {
	fmt.Stringer
	termValue()
}

// A Number is an integer literal.
type Number int

// A String is a string or character literal.
type String string

// A LabelRef names a symbol. LabelRef("*") is the location counter.
type LabelRef string

func (Number) termValue()   {}
func (String) termValue()   {}
func (LabelRef) termValue() {}

func (n Number) String() string {
	if n < 0 {
		return strconv.Itoa(int(n))
	}
	return fmt.Sprintf("$%X", int(n))
}

func (s String) String() string {
	return strconv.Quote(string(s))
}

func (l LabelRef) String() string {
	return string(l)
}

// IsLocationCounter reports whether the reference names the location
// counter.
func (l LabelRef) IsLocationCounter() bool {
	return l == LocationCounter
}
