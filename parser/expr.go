// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"strconv"

	"github.com/beevik/asm6502/asm"
)

//
// token
//

type tokentype byte

const (
	tokenNil tokentype = iota
	tokenOp
	tokenNumber
	tokenString
	tokenIdentifier
	tokenLeftParen
	tokenRightParen
)

func (tt tokentype) isValue() bool {
	return tt == tokenNumber || tt == tokenString || tt == tokenIdentifier
}

type token struct {
	tt         tokentype
	number     int
	text       string
	identifier string
	op         asm.Op
}

// Operator spellings, longest first so that "<<" wins over "<".
var symbols = []string{
	"<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"*", "/", "+", "-", "<", ">", "&", "^", "|", "~", "!",
}

//
// exprParser
//

// An exprParser turns an operand string into an expression tree using
// Dijkstra's shunting-yard algorithm. The previous token decides whether
// "-", "<", ">" and "*" are unary operators, binary operators or, for
// "*", the location counter.
type exprParser struct {
	operandStack  exprStack
	operatorStack opStack
	parenCounter  int
	prevToken     token
}

// Parse an expression from the line until it is exhausted.
func (p *exprParser) parse(line fstring) (e asm.Expr, err error) {
	p.reset()
	if line.consumeWhitespace().isEmpty() {
		return nil, errorAt(line, "missing expression")
	}

	for {
		var t token
		t, line, err = p.parseToken(line.consumeWhitespace())
		if err != nil {
			return nil, err
		}
		if t.tt == tokenNil {
			break
		}

		switch t.tt {
		case tokenNumber:
			p.operandStack.push(asm.NewNumber(t.number))

		case tokenString:
			p.operandStack.push(asm.NewString(t.text))

		case tokenIdentifier:
			p.operandStack.push(asm.NewLabelRef(t.identifier))

		case tokenOp:
			if t.op.IsBinary() {
				for !p.operatorStack.empty() && p.operatorStack.peek().collapses(t.op) {
					if err = p.operandStack.collapse(p.operatorStack.pop()); err != nil {
						return nil, errorAt(line, "expression syntax error")
					}
				}
			}
			p.operatorStack.push(stackOp{op: t.op})

		case tokenLeftParen:
			p.operatorStack.push(stackOp{paren: true})

		case tokenRightParen:
			for {
				if p.operatorStack.empty() {
					return nil, errorAt(line, "mismatched parentheses")
				}
				op := p.operatorStack.pop()
				if op.paren {
					break
				}
				if err = p.operandStack.collapse(op); err != nil {
					return nil, errorAt(line, "expression syntax error")
				}
			}
		}
	}

	if p.parenCounter != 0 {
		return nil, errorAt(line, "mismatched parentheses")
	}

	// Collapse any operators (and operands) remaining on the stack
	for !p.operatorStack.empty() {
		if err = p.operandStack.collapse(p.operatorStack.pop()); err != nil {
			return nil, errorAt(line, "expression syntax error")
		}
	}

	if len(p.operandStack.data) != 1 {
		return nil, errorAt(line, "expression syntax error")
	}
	return p.operandStack.pop(), nil
}

func (p *exprParser) valueAllowed() bool {
	return !p.prevToken.tt.isValue() && p.prevToken.tt != tokenRightParen
}

// Attempt to parse the next token from the line.
func (p *exprParser) parseToken(line fstring) (t token, out fstring, err error) {
	if line.isEmpty() {
		return token{tt: tokenNil}, line, nil
	}

	value := p.valueAllowed()

	switch {
	case line.startsWith(decimal) || line.startsWithChar('$') || (value && line.startsWithChar('%')):
		if !value {
			return t, line, errorAt(line, "unexpected number")
		}
		t.tt = tokenNumber
		t.number, out, err = parseNumber(line)

	case line.startsWith(stringQuote):
		if !value {
			return t, line, errorAt(line, "unexpected string")
		}
		t.tt = tokenString
		t.text, out, err = parseString(line)

	case line.startsWith(identifierStartChar):
		if !value {
			return t, line, errorAt(line, "unexpected identifier")
		}
		var id fstring
		id, out = line.consumeWhile(identifierChar)
		t.tt, t.identifier = tokenIdentifier, id.str

	case value && line.startsWithChar('*'):
		t.tt, t.identifier = tokenIdentifier, asm.LocationCounter
		out = line.consume(1)

	case line.startsWithChar('('):
		if !value {
			return t, line, errorAt(line, "unexpected '('")
		}
		p.parenCounter++
		t.tt, out = tokenLeftParen, line.consume(1)

	case line.startsWithChar(')'):
		if p.parenCounter == 0 || value {
			return t, line, errorAt(line, "mismatched parentheses")
		}
		p.parenCounter--
		t.tt, out = tokenRightParen, line.consume(1)

	default:
		for _, sym := range symbols {
			if !line.startsWithString(sym) {
				continue
			}
			var op asm.Op
			var ok bool
			if value {
				op, ok = asm.UnaryOp(sym)
			} else {
				op, ok = asm.BinaryOp(sym)
			}
			if ok {
				t.tt, t.op, out = tokenOp, op, line.consume(len(sym))
				break
			}
		}
		if t.tt != tokenOp {
			return t, line, errorAt(line, "expression syntax error")
		}
	}

	if err != nil {
		return t, line, err
	}
	p.prevToken = t
	return t, out, nil
}

// Parse a number from the line. The following numeric formats are allowed:
//
//	[0-9]+          Decimal number
//	$[0-9a-fA-F]+   Hexadecimal number
//	0x[0-9a-fA-F]+  Hexadecimal number
//	%[01]+          Binary number
//	0b[01]+         Binary number
//
// Values above $FFFF are rejected.
func parseNumber(line fstring) (value int, remain fstring, err error) {
	start := line

	// Select decimal, hexadecimal or binary depending on the prefix
	base, fn := 10, decimal
	switch {
	case line.startsWithChar('$'):
		line = line.consume(1)
		base, fn = 16, hexadecimal
	case line.startsWithString("0x") || line.startsWithString("0X"):
		line = line.consume(2)
		base, fn = 16, hexadecimal
	case line.startsWithChar('%'):
		line = line.consume(1)
		base, fn = 2, binarynum
	case line.startsWithString("0b") || line.startsWithString("0B"):
		line = line.consume(2)
		base, fn = 2, binarynum
	}

	numstr, remain := line.consumeWhile(fn)
	if remain.startsWith(identifierChar) {
		return 0, remain, errorAt(remain, "invalid digit in number")
	}

	num64, converr := strconv.ParseInt(numstr.str, base, 32)
	if converr != nil {
		return 0, remain, errorAt(start, "failed to parse integer")
	}
	if num64 > 0xffff {
		return 0, remain, errorAt(start, "number out of range (above $FFFF)")
	}
	return int(num64), remain, nil
}

// Parse a single- or double-quoted string.
func parseString(line fstring) (s string, remain fstring, err error) {
	q := line.str[0]
	for i := 1; i < len(line.str); i++ {
		if line.str[i] == q {
			return line.str[1:i], line.consume(i + 1), nil
		}
	}
	return "", line, errorAt(line, "unterminated string")
}

func (p *exprParser) reset() {
	p.operandStack.data, p.operatorStack.data = nil, nil
	p.parenCounter = 0
	p.prevToken = token{}
}

//
// exprStack
//

type exprStack struct {
	data []asm.Expr
}

func (s *exprStack) empty() bool {
	return len(s.data) == 0
}

func (s *exprStack) push(e asm.Expr) {
	s.data = append(s.data, e)
}

func (s *exprStack) pop() asm.Expr {
	l := len(s.data)
	e := s.data[l-1]
	s.data = s.data[:l-1]
	return e
}

// Collapse one or more expression nodes on the top of the
// stack into a combined expression node, and push the combined
// node back onto the stack.
func (s *exprStack) collapse(op stackOp) error {
	switch {
	case op.paren:
		return errMismatched
	case op.op.IsBinary():
		if len(s.data) < 2 {
			return errMismatched
		}
		r, l := s.pop(), s.pop()
		s.push(&asm.Binary{Op: op.op, L: l, R: r})
	default:
		if s.empty() {
			return errMismatched
		}
		s.push(&asm.Unary{Op: op.op, X: s.pop()})
	}
	return nil
}

//
// opStack
//

type stackOp struct {
	op    asm.Op
	paren bool
}

// Report whether the operator on the stack must be collapsed before the
// incoming binary operator is pushed. All binary operators are left
// associative.
func (s stackOp) collapses(incoming asm.Op) bool {
	return !s.paren && s.op.Precedence() >= incoming.Precedence()
}

type opStack struct {
	data []stackOp
}

func (s *opStack) push(op stackOp) {
	s.data = append(s.data, op)
}

func (s *opStack) pop() stackOp {
	op := s.data[len(s.data)-1]
	s.data = s.data[0 : len(s.data)-1]
	return op
}

func (s *opStack) empty() bool {
	return len(s.data) == 0
}

func (s *opStack) peek() stackOp {
	return s.data[len(s.data)-1]
}
