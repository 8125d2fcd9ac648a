// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parser turns 6502 assembly source text into the statement list
// consumed by the asm package.
//
// Each line holds an optional "name:" label followed by an optional
// statement: "name = expr", "* = expr", a data directive (.byte, .aasc,
// .word, .res, .org) or an instruction. Comments start with ';' or "//"
// and run to the end of the line; "/* ... */" comments may span lines.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/asm6502/opcode"
)

var errMismatched = errors.New("expression syntax error")

// A SyntaxError describes a malformed source line.
type SyntaxError struct {
	Line   int    // 1-based line number
	Column int    // 1-based column
	Msg    string // description of the problem
	Source string // the offending source line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func errorAt(l fstring, msg string) *SyntaxError {
	return &SyntaxError{Line: l.row, Column: l.column + 1, Msg: msg, Source: l.full}
}

// Instructions that accept "a" as an explicit accumulator operand.
var accumulatorOps = map[string]bool{
	"asl": true,
	"lsr": true,
	"rol": true,
	"ror": true,
}

// A parser holds the state of a single source parse.
type parser struct {
	stmts     []asm.Statement
	errs      *multierror.Error
	inComment bool
	expr      exprParser
}

// Parse reads assembly source and returns its statements. Parsing
// continues past bad lines; every syntax error found is returned in a
// *multierror.Error whose members are *SyntaxError values.
func Parse(r io.Reader) ([]asm.Statement, error) {
	p := &parser{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for row := 1; scanner.Scan(); row++ {
		line := p.stripComments(scanner.Text())
		if err := p.parseLine(newFstring(row, line)); err != nil {
			p.errs = multierror.Append(p.errs, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if err := p.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return p.stmts, nil
}

// ParseString parses assembly source held in a string.
func ParseString(src string) ([]asm.Statement, error) {
	return Parse(strings.NewReader(src))
}

// ParseExpr parses a single expression.
func ParseExpr(s string) (asm.Expr, error) {
	var p exprParser
	return p.parse(newFstring(1, s))
}

// Replace comments with spaces so that columns keep their positions.
func (p *parser) stripComments(line string) string {
	b := []byte(line)
	var quote byte
	for i := 0; i < len(b); i++ {
		switch {
		case p.inComment:
			if b[i] == '*' && i+1 < len(b) && b[i+1] == '/' {
				b[i], b[i+1] = ' ', ' '
				i++
				p.inComment = false
			} else {
				b[i] = ' '
			}
		case quote != 0:
			if b[i] == quote {
				quote = 0
			}
		case stringQuote(b[i]):
			quote = b[i]
		case b[i] == ';' || (b[i] == '/' && i+1 < len(b) && b[i+1] == '/'):
			return strings.TrimRight(string(b[:i]), " \t")
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '*':
			b[i], b[i+1] = ' ', ' '
			i++
			p.inComment = true
		}
	}
	return strings.TrimRight(string(b), " \t")
}

func (p *parser) parseLine(line fstring) error {
	line = line.consumeWhitespace()
	if line.isEmpty() {
		return nil
	}

	// An optional "name:" label
	if line.startsWith(identifierStartChar) {
		id, remain := line.consumeWhile(identifierChar)
		if remain.startsWithChar(':') {
			p.stmts = append(p.stmts, &asm.Label{Name: id.str, SrcLine: line.row})
			line = remain.consume(1).consumeWhitespace()
			if line.isEmpty() {
				return nil
			}
		}
	}

	switch {
	case line.startsWithChar('*'):
		return p.parseAssignment(line.consume(1), asm.LocationCounter, line)
	case line.startsWithChar('.'):
		return p.parseDirective(line)
	case line.startsWith(identifierStartChar):
		id, remain := line.consumeWhile(identifierChar)
		if rest := remain.consumeWhitespace(); rest.startsWithChar('=') && !rest.startsWithString("==") {
			return p.parseAssignment(remain, id.str, line)
		}
		return p.parseInstruction(id, remain)
	default:
		return errorAt(line, "unexpected character")
	}
}

// Parse the "= expr" part of an assignment to name.
func (p *parser) parseAssignment(remain fstring, name string, start fstring) error {
	remain = remain.consumeWhitespace()
	if !remain.startsWithChar('=') {
		return errorAt(remain, "expected '='")
	}
	e, err := p.expr.parse(remain.consume(1).consumeWhitespace())
	if err != nil {
		return err
	}
	p.stmts = append(p.stmts, &asm.LabelDef{Name: name, Expr: e, SrcLine: start.row})
	return nil
}

func (p *parser) parseDirective(line fstring) error {
	name, remain := line.consume(1).consumeWhile(identifierChar)
	args := remain.consumeWhitespace()

	switch strings.ToLower(name.str) {
	case "byte", "aasc":
		exprs, err := p.parseList(args)
		if err != nil {
			return err
		}
		p.stmts = append(p.stmts, &asm.Directive{Kind: asm.Byte, Exprs: exprs, SrcLine: line.row})

	case "word":
		exprs, err := p.parseList(args)
		if err != nil {
			return err
		}
		p.stmts = append(p.stmts, &asm.Directive{Kind: asm.Word, Exprs: exprs, SrcLine: line.row})

	case "res":
		exprs, err := p.parseList(args)
		if err != nil {
			return err
		}
		if len(exprs) > 2 {
			return errorAt(args, ".res takes a length and an optional fill byte")
		}
		d := &asm.Directive{Kind: asm.Res, Len: exprs[0], SrcLine: line.row}
		if len(exprs) == 2 {
			d.Fill = exprs[1]
		}
		p.stmts = append(p.stmts, d)

	case "org":
		e, err := p.expr.parse(args)
		if err != nil {
			return err
		}
		p.stmts = append(p.stmts, &asm.LabelDef{Name: asm.LocationCounter, Expr: e, SrcLine: line.row})

	default:
		return errorAt(line, fmt.Sprintf("unknown directive '.%s'", name.str))
	}
	return nil
}

// Parse a comma-separated list of one or more expressions.
func (p *parser) parseList(args fstring) ([]asm.Expr, error) {
	if args.isEmpty() {
		return nil, errorAt(args, "missing expression")
	}
	var exprs []asm.Expr
	for _, part := range args.splitUnquoted(',') {
		e, err := p.expr.parse(part.consumeWhitespace().trimRight())
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

func (p *parser) parseInstruction(mnemonic, remain fstring) error {
	if !remain.isEmpty() && !remain.startsWith(whitespace) {
		return errorAt(remain, "unexpected character after mnemonic")
	}

	name := strings.ToLower(mnemonic.str)
	inst := &asm.Instruction{Mnemonic: name, SrcLine: mnemonic.row}

	operand := remain.consumeWhitespace()
	if operand.isEmpty() || (accumulatorOps[name] && strings.EqualFold(operand.str, "a")) {
		p.stmts = append(p.stmts, inst)
		return nil
	}

	mode, expr, err := parseOperand(operand)
	if err != nil {
		return err
	}
	e, err := p.expr.parse(expr)
	if err != nil {
		return err
	}
	inst.Operand = &asm.Operand{Mode: mode, Expr: e}
	p.stmts = append(p.stmts, inst)
	return nil
}

// Determine the addressing mode implied by the operand syntax and return
// the part of the operand holding the expression.
func parseOperand(operand fstring) (mode opcode.Mode, expr fstring, err error) {
	lower := strings.ToLower(strings.ReplaceAll(operand.str, " ", ""))

	switch {
	case operand.startsWithChar('#'):
		return opcode.IMM, operand.consume(1).consumeWhitespace(), nil

	case operand.startsWithChar('('):
		end := operand.matchingParen()
		if end < 0 {
			return 0, operand, errorAt(operand, "mismatched parentheses")
		}
		inner := operand.consume(1).trunc(end - 1)
		after := strings.ToLower(strings.ReplaceAll(operand.str[end+1:], " ", ""))

		switch {
		case after == "" && strings.HasSuffix(lower, ",x)"):
			in := inner.consumeWhitespace()
			comma := in.lastUnquoted(',')
			if comma < 0 {
				return 0, operand, errorAt(operand, "expected index register x")
			}
			return opcode.IDX, in.trunc(comma).trimRight(), nil
		case after == "":
			return opcode.IND, inner.consumeWhitespace().trimRight(), nil
		case after == ",y":
			return opcode.IDY, inner.consumeWhitespace().trimRight(), nil
		}
	}

	if comma := operand.lastUnquoted(','); comma >= 0 {
		switch strings.ToLower(strings.TrimSpace(operand.str[comma+1:])) {
		case "x":
			return opcode.ABX, operand.trunc(comma).trimRight(), nil
		case "y":
			return opcode.ABY, operand.trunc(comma).trimRight(), nil
		default:
			return 0, operand, errorAt(operand.consume(comma+1), "expected index register x or y")
		}
	}
	return opcode.ABS, operand, nil
}
