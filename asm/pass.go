// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/beevik/asm6502/opcode"
)

// DefaultMaxPasses is the number of passes attempted before assembly gives
// up on unresolved symbols.
const DefaultMaxPasses = 32

// State is the state of a pass scheduler.
type State byte

// Scheduler states
const (
	InProgress State = iota // more passes are needed
	Resolved                // a pass completed with nothing unresolved
	Exhausted               // the pass budget ran out
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Resolved:
		return "resolved"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Options control an assembly job.
type Options struct {
	Filename    string            // source file name recorded in the source map
	MaxPasses   int               // pass budget; DefaultMaxPasses when zero
	Origin      int               // initial location counter
	Symbols     Symbols           // optional pre-seeded symbol table
	Diagnostics DiagnosticHandler // warning sink; warnings are logged when nil
	Logger      logrus.FieldLogger
}

func (o *Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// A PassResult describes the outcome of a single pass.
type PassResult struct {
	LC         Value // location counter at the end of the pass
	Unresolved bool  // something could not be resolved during the pass
}

// A Scheduler runs resolution passes over a statement list until the
// symbol table reaches a fixed point or the pass budget is exhausted. Each
// scheduler owns its symbol table, so independent schedulers may run
// concurrently as long as they do not share statements.
type Scheduler struct {
	stmts     []Statement
	symbols   Symbols
	maxPasses int
	origin    int
	passes    int
	state     State
	missing   map[string]bool // absent symbols referenced during the last pass
	diag      DiagnosticHandler
	log       logrus.FieldLogger
}

// NewScheduler creates a pass scheduler for a statement list.
func NewScheduler(stmts []Statement, opts Options) *Scheduler {
	s := &Scheduler{
		stmts:     stmts,
		symbols:   opts.Symbols,
		maxPasses: opts.MaxPasses,
		origin:    opts.Origin,
		state:     InProgress,
		log:       opts.logger(),
	}
	if s.symbols == nil {
		s.symbols = make(Symbols)
	}
	if s.maxPasses <= 0 {
		s.maxPasses = DefaultMaxPasses
	}
	diag := opts.Diagnostics
	if diag == nil {
		diag = logDiagnostics{s.log}
	}
	s.diag = newDedupDiagnostics(diag)
	return s
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	return s.state
}

// Symbols returns the scheduler's symbol table.
func (s *Scheduler) Symbols() Symbols {
	return s.symbols
}

// Passes returns the number of passes run so far.
func (s *Scheduler) Passes() int {
	return s.passes
}

// Run performs passes starting at the origin until every statement
// resolves. It returns an ErrUnresolvedSymbols error if the pass budget
// runs out first.
func (s *Scheduler) Run() error {
	for s.state == InProgress {
		if s.passes >= s.maxPasses {
			s.state = Exhausted
			names := s.unresolvedNames()
			s.log.WithField("unresolved", names).Debug("pass budget exhausted")
			return unresolvedError(names)
		}

		r, err := s.Pass(NumValue(s.origin))
		if err != nil {
			return err
		}
		if !r.Unresolved {
			s.state = Resolved
		}
	}
	return nil
}

// unresolvedNames returns the symbols lacking a value together with the
// undefined names referenced during the last pass.
func (s *Scheduler) unresolvedNames() []string {
	set := make(map[string]bool)
	for _, n := range s.symbols.Unresolved() {
		set[n] = true
	}
	for n := range s.missing {
		set[n] = true
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Pass runs a single resolution pass over the statements, starting with
// the location counter lc. Symbol values carry over from earlier passes.
func (s *Scheduler) Pass(lc Value) (PassResult, error) {
	s.passes++
	log := s.log.WithField("pass", s.passes)

	p := pass{
		sched: s,
		seen:  make(map[string]bool),
		ev: evaluator{
			symbols: s.symbols,
		},
		lc:      lc,
		missing: make(map[string]bool),
	}
	p.ev.missing = func(name string) { p.missing[name] = true }

	for _, stmt := range s.stmts {
		if err := p.statement(stmt); err != nil {
			return PassResult{}, err
		}
	}

	s.missing = p.missing

	if p.unresolved {
		log.WithField("unresolved", strings.Join(s.unresolvedNames(), ",")).Debug("pass incomplete")
	} else {
		log.Debug("pass complete")
	}

	return PassResult{LC: p.lc, Unresolved: p.unresolved}, nil
}

// pass holds the state of a single resolution pass.
type pass struct {
	sched      *Scheduler
	seen       map[string]bool
	ev         evaluator
	lc         Value
	unresolved bool
	missing    map[string]bool
}

func (p *pass) eval(line int, e Expr) (TermValue, Value, error) {
	p.ev.lc = p.lc
	term, v, err := p.ev.eval(e)
	if err != nil {
		return nil, Value{}, wrapError(line, err)
	}
	return term, v, nil
}

func (p *pass) define(line int, name string, v Value) error {
	if p.seen[name] {
		return newError(line, ErrDuplicateLabel, "label '%s' already defined", name)
	}
	p.sched.symbols[name] = v
	p.seen[name] = true
	return nil
}

func (p *pass) advance(n int) {
	if p.lc.IsNum() {
		p.lc = NumValue(p.lc.Num + n)
	}
}

func (p *pass) statement(stmt Statement) error {
	switch st := stmt.(type) {
	case *Label:
		return p.define(st.SrcLine, st.Name, p.lc)

	case *LabelDef:
		_, v, err := p.eval(st.SrcLine, st.Expr)
		if err != nil {
			return err
		}

		if !v.Resolved() {
			p.unresolved = true
			if st.Name == LocationCounter {
				p.lc = Value{}
			}
			return nil
		}

		if st.Name == LocationCounter {
			if !v.IsNum() {
				return newError(st.SrcLine, ErrMalformed, "location counter set to non-numeric value %s", v)
			}
			p.lc = v
			return nil
		}
		return p.define(st.SrcLine, st.Name, v)

	case *Instruction:
		return p.instruction(st)

	case *Directive:
		return p.directive(st)

	default:
		return newError(stmt.Line(), ErrMalformed, "unknown statement type %T", stmt)
	}
}

func (p *pass) instruction(st *Instruction) error {
	if st.Operand != nil {
		if _, _, err := p.eval(st.SrcLine, st.Operand.Expr); err != nil {
			return err
		}
	}

	mode := ResolveMode(st)
	inst, ok := opcode.Lookup(st.Mnemonic, mode)
	if !ok {
		return newError(st.SrcLine, ErrUnknownMnemonic, "unknown mnemonic '%s'",
			opcode.Key(strings.ToLower(st.Mnemonic), mode))
	}

	st.inst = inst
	st.mode = mode
	p.advance(int(inst.Length))
	if p.lc.IsNum() {
		st.location = p.lc.Num
	}
	return nil
}

func (p *pass) directive(st *Directive) error {
	if !p.lc.IsNum() {
		return nil
	}
	st.addr = p.lc.Num

	switch st.Kind {
	case Byte:
		for _, e := range st.Exprs {
			_, v, err := p.eval(st.SrcLine, e)
			if err != nil {
				return err
			}
			switch v.Kind {
			case Text:
				p.advance(len(v.Text))
			case Unresolved:
				p.sched.diag.Warn(Diagnostic{
					Kind: WarnAssumedByteSize,
					Line: st.SrcLine,
					Msg:  fmt.Sprintf(".byte with unresolved expression '%s', assuming size 1", e),
				})
				p.advance(1)
			default:
				p.advance(1)
			}
		}

	case Word:
		// Evaluated here so that '*' is cached with each word's address.
		for _, e := range st.Exprs {
			if _, _, err := p.eval(st.SrcLine, e); err != nil {
				return err
			}
			p.advance(2)
		}

	case Res:
		_, v, err := p.eval(st.SrcLine, st.Len)
		if err != nil {
			return err
		}
		switch {
		case v.IsNum() && v.Num < 0:
			return newError(st.SrcLine, ErrWidth, ".res length %d is negative", v.Num)
		case v.IsNum():
			p.advance(v.Num)
		case v.Resolved():
			return newError(st.SrcLine, ErrMalformed, ".res length %s is not a number", v)
		default:
			p.unresolved = true
			p.lc = Value{}
		}

	default:
		return newError(st.SrcLine, ErrMalformed, "unknown directive '%s'", st.Kind)
	}
	return nil
}

// wrapError attaches a source line to an evaluation error.
func wrapError(line int, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Line: line, Msg: err.Error(), Err: err}
}
