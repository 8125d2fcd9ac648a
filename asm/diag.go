// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// WarningKind identifies a non-fatal assembler diagnostic.
type WarningKind byte

// Warning kinds
const (
	WarnAssumedByteSize WarningKind = iota // .byte datum sized before it resolved
	WarnMissedZeroPage                     // zero-page form skipped due to a forward reference
)

func (k WarningKind) String() string {
	switch k {
	case WarnAssumedByteSize:
		return "assumed-byte-size"
	case WarnMissedZeroPage:
		return "missed-zero-page"
	default:
		return "unknown"
	}
}

// A Diagnostic is a warning produced during assembly. Warnings never
// change the assembled result.
type Diagnostic struct {
	Kind WarningKind
	Line int
	Msg  string
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("warning: line %d: %s", d.Line, d.Msg)
	}
	return "warning: " + d.Msg
}

// A DiagnosticHandler receives assembler warnings.
type DiagnosticHandler interface {
	Warn(d Diagnostic)
}

// DiagnosticFunc adapts an ordinary function to a DiagnosticHandler.
type DiagnosticFunc func(d Diagnostic)

// Warn calls f(d).
func (f DiagnosticFunc) Warn(d Diagnostic) {
	f(d)
}

// Diagnostics collects warnings in the order they were reported.
type Diagnostics []Diagnostic

// Warn appends d to the collection.
func (ds *Diagnostics) Warn(d Diagnostic) {
	*ds = append(*ds, d)
}

// logDiagnostics reports warnings through a logger.
type logDiagnostics struct {
	log logrus.FieldLogger
}

func (l logDiagnostics) Warn(d Diagnostic) {
	l.log.WithFields(logrus.Fields{
		"line": d.Line,
		"kind": d.Kind.String(),
	}).Warn(d.Msg)
}

// dedupDiagnostics forwards each distinct warning once. Passes may revisit
// the same statement many times.
type dedupDiagnostics struct {
	next DiagnosticHandler
	seen map[Diagnostic]bool
}

func newDedupDiagnostics(next DiagnosticHandler) *dedupDiagnostics {
	return &dedupDiagnostics{next: next, seen: make(map[Diagnostic]bool)}
}

func (d *dedupDiagnostics) Warn(diag Diagnostic) {
	if d.seen[diag] {
		return
	}
	d.seen[diag] = true
	d.next.Warn(diag)
}
