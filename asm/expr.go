// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
)

//
// Op
//

// Op identifies an expression operator.
type Op byte

// Operators. OpNone is the absent operator of a bare Unary wrapper.
const (
	OpNone Op = iota

	// unary operations
	OpNegate     // -
	OpComplement // ~
	OpLogicalNot // !
	OpLowByte    // <
	OpHighByte   // >

	// binary operations
	OpMultiply
	OpDivide
	OpAdd
	OpSubtract
	OpShiftLeft
	OpShiftRight
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpBitwiseAND
	OpBitwiseXOR
	OpBitwiseOR
	OpLogicalAND
	OpLogicalOR

	opCount
)

type opdata struct {
	precedence byte
	binary     bool
	symbol     string
	eval       func(a, b int) (int, error)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var ops = [opCount]opdata{
	{0, false, "", nil},

	{11, false, "-", func(a, _ int) (int, error) { return -a, nil }},
	{11, false, "~", func(a, _ int) (int, error) { return ^a, nil }},
	{11, false, "!", func(a, _ int) (int, error) { return boolInt(a == 0), nil }},
	{11, false, "<", func(a, _ int) (int, error) { return a & 0xff, nil }},
	{11, false, ">", func(a, _ int) (int, error) { return a >> 8, nil }},

	{10, true, "*", func(a, b int) (int, error) { return a * b, nil }},
	{10, true, "/", floorDiv},
	{9, true, "+", func(a, b int) (int, error) { return a + b, nil }},
	{9, true, "-", func(a, b int) (int, error) { return a - b, nil }},
	{8, true, "<<", func(a, b int) (int, error) {
		if b < 0 {
			return 0, fmt.Errorf("%w: negative shift count %d", ErrWidth, b)
		}
		return a << uint(b), nil
	}},
	{8, true, ">>", func(a, b int) (int, error) {
		if b < 0 {
			return 0, fmt.Errorf("%w: negative shift count %d", ErrWidth, b)
		}
		return a >> uint(b), nil
	}},
	{7, true, "<", func(a, b int) (int, error) { return boolInt(a < b), nil }},
	{7, true, ">", func(a, b int) (int, error) { return boolInt(a > b), nil }},
	{7, true, "<=", func(a, b int) (int, error) { return boolInt(a <= b), nil }},
	{7, true, ">=", func(a, b int) (int, error) { return boolInt(a >= b), nil }},
	{6, true, "==", func(a, b int) (int, error) { return boolInt(a == b), nil }},
	{6, true, "!=", func(a, b int) (int, error) { return boolInt(a != b), nil }},
	{5, true, "&", func(a, b int) (int, error) { return a & b, nil }},
	{4, true, "^", func(a, b int) (int, error) { return a ^ b, nil }},
	{3, true, "|", func(a, b int) (int, error) { return a | b, nil }},
	{2, true, "&&", func(a, b int) (int, error) { return boolInt(a != 0 && b != 0), nil }},
	{1, true, "||", func(a, b int) (int, error) { return boolInt(a != 0 || b != 0), nil }},
}

func floorDiv(a, b int) (int, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q, nil
}

func (op Op) valid() bool {
	return op < opCount
}

// IsBinary reports whether the operator takes two operands.
func (op Op) IsBinary() bool {
	return op.valid() && ops[op].binary
}

// IsUnary reports whether the operator takes a single operand.
func (op Op) IsUnary() bool {
	return op.valid() && op != OpNone && !ops[op].binary
}

// Precedence returns the binding strength of the operator. Higher binds
// tighter.
func (op Op) Precedence() int {
	if !op.valid() {
		return 0
	}
	return int(ops[op].precedence)
}

func (op Op) String() string {
	if !op.valid() {
		return fmt.Sprintf("op(%d)", byte(op))
	}
	return ops[op].symbol
}

// UnaryOp returns the unary operator spelled by sym.
func UnaryOp(sym string) (Op, bool) {
	for op := OpNegate; op <= OpHighByte; op++ {
		if ops[op].symbol == sym {
			return op, true
		}
	}
	return OpNone, false
}

// BinaryOp returns the binary operator spelled by sym.
func BinaryOp(sym string) (Op, bool) {
	for op := OpMultiply; op < opCount; op++ {
		if ops[op].symbol == sym {
			return op, true
		}
	}
	return OpNone, false
}

//
// Expr
//

// An Expr is a node of an expression tree: *Unary, *Binary or *Term.
type Expr interface {
	fmt.Stringer
	cache() *memo
}

// A memo holds the resolved result of an expression node. It is written at
// most once and then returned on every later evaluation.
type memo struct {
	set   bool
	term  TermValue
	value Value
}

// A Unary expression applies an optional operator to its operand.
type Unary struct {
	Op Op
	X  Expr
	m  memo
}

// A Binary expression applies an operator to two operands.
type Binary struct {
	Op   Op
	L, R Expr
	m    memo
}

// A Term is a literal number, string or symbol reference.
type Term struct {
	Value TermValue
	m     memo
}

func (e *Unary) cache() *memo  { return &e.m }
func (e *Binary) cache() *memo { return &e.m }
func (e *Term) cache() *memo   { return &e.m }

func (e *Unary) String() string {
	if e.Op == OpNone {
		return e.X.String()
	}
	return e.Op.String() + e.X.String()
}

func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.L, e.Op, e.R)
}

func (e *Term) String() string {
	return e.Value.String()
}

// NewNumber returns a numeric literal term.
func NewNumber(n int) *Term {
	return &Term{Value: Number(n)}
}

// NewString returns a string literal term.
func NewString(s string) *Term {
	return &Term{Value: String(s)}
}

// NewLabelRef returns a term referring to a symbol.
func NewLabelRef(name string) *Term {
	return &Term{Value: LabelRef(name)}
}

// Cached returns the memoized result of an expression, if any.
func Cached(e Expr) (TermValue, Value, bool) {
	m := e.cache()
	return m.term, m.value, m.set
}

//
// evaluator
//

// An evaluator resolves expressions against a symbol table and a location
// counter value.
type evaluator struct {
	symbols Symbols
	lc      Value
	missing func(name string) // called for every absent symbol reference
}

// Evaluate resolves an expression against a symbol table and the current
// location counter, which may be unresolved. The returned term is the
// literal the value derives from, or nil for binary expressions. A
// resolved result is memoized on every node of the tree and returned
// unchanged by later evaluations.
func Evaluate(e Expr, symbols Symbols, lc Value) (TermValue, Value, error) {
	ev := evaluator{symbols: symbols, lc: lc}
	return ev.eval(e)
}

func (ev *evaluator) eval(e Expr) (TermValue, Value, error) {
	if e == nil {
		return nil, Value{}, fmt.Errorf("%w: nil expression", ErrMalformed)
	}

	m := e.cache()
	if m.set {
		return m.term, m.value, nil
	}

	var term TermValue
	var value Value

	switch e := e.(type) {
	case *Term:
		term = e.Value
		switch t := e.Value.(type) {
		case Number:
			value = NumValue(int(t))
		case String:
			value = TextValue(string(t))
		case LabelRef:
			if t.IsLocationCounter() {
				value = ev.lc
			} else {
				v, ok := ev.symbols[string(t)]
				if !ok && ev.missing != nil {
					ev.missing(string(t))
				}
				value = v
			}
		default:
			return nil, Value{}, fmt.Errorf("%w: unknown term type %T", ErrMalformed, e.Value)
		}

	case *Unary:
		var err error
		term, value, err = ev.eval(e.X)
		if err != nil {
			return nil, Value{}, err
		}
		if e.Op != OpNone && value.IsNum() {
			if !e.Op.IsUnary() {
				return nil, Value{}, fmt.Errorf("%w: unknown unary operator '%s'", ErrMalformed, e.Op)
			}
			n, _ := ops[e.Op].eval(value.Num, 0)
			value = NumValue(n)
		}

	case *Binary:
		_, lv, err := ev.eval(e.L)
		if err != nil {
			return nil, Value{}, err
		}
		_, rv, err := ev.eval(e.R)
		if err != nil {
			return nil, Value{}, err
		}
		if !e.Op.IsBinary() {
			return nil, Value{}, fmt.Errorf("%w: unknown binary operator '%s'", ErrMalformed, e.Op)
		}
		if lv.IsNum() && rv.IsNum() {
			n, err := ops[e.Op].eval(lv.Num, rv.Num)
			if err != nil {
				return nil, Value{}, fmt.Errorf("%s: %w", e, err)
			}
			value = NumValue(n)
		}

	default:
		return nil, Value{}, fmt.Errorf("%w: unknown expression type %T", ErrMalformed, e)
	}

	if value.Resolved() {
		*m = memo{set: true, term: term, value: value}
	}
	return term, value, nil
}
