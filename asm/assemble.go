// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a multi-pass 6502 assembler core. It resolves the
// symbols of a parsed statement list to a fixed point, picks the cheapest
// addressing mode for every instruction and emits the object code.
package asm

import (
	"github.com/sirupsen/logrus"
)

// Result holds the output of a successful assembly.
type Result struct {
	Code       []byte            // object code
	Symbols    map[string]int    // numeric symbols
	Text       map[string]string // string-valued symbols
	Passes     int               // number of resolution passes run
	Origin     int               // location counter at the start of each pass
	SourceMap  *SourceMap
	Statements []Statement

	listing []span
}

// Assemble resolves the symbols of a statement list and generates its
// object code. The statements are annotated in place, so a statement list
// must not be shared by concurrent calls.
func Assemble(stmts []Statement, opts Options) (*Result, error) {
	sched := NewScheduler(stmts, opts)
	log := sched.log

	log.WithFields(logrus.Fields{
		"statements": len(stmts),
		"origin":     opts.Origin,
	}).Debug("assembling")

	if err := sched.Run(); err != nil {
		return nil, err
	}

	g := generator{symbols: sched.symbols, diag: sched.diag}
	if err := g.generate(stmts); err != nil {
		return nil, err
	}

	symbols := sched.symbols.Numbers()
	r := &Result{
		Code:       g.code,
		Symbols:    symbols,
		Text:       sched.symbols.Texts(),
		Passes:     sched.passes,
		Origin:     opts.Origin,
		SourceMap:  newSourceMap(opts.Filename, opts.Origin, g.code, g.lines, symbols),
		Statements: stmts,
		listing:    g.spans,
	}

	log.WithFields(logrus.Fields{
		"passes": r.Passes,
		"bytes":  len(r.Code),
	}).Debug("assembled")
	return r, nil
}
