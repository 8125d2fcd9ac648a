// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the assembler. They are wrapped by *Error, so test for
// them with errors.Is.
var (
	ErrDuplicateLabel    = errors.New("duplicate label")
	ErrUnknownMnemonic   = errors.New("unknown mnemonic")
	ErrUnresolvedSymbols = errors.New("unresolved symbols")
	ErrUndefinedLabel    = errors.New("undefined label")
	ErrWidth             = errors.New("value out of range")
	ErrMalformed         = errors.New("malformed input")
	ErrDivisionByZero    = errors.New("division by zero")
)

// An Error is a fatal assembly error. Line is 0 when no source line is
// associated with the error.
type Error struct {
	Line    int
	Msg     string
	Symbols []string // unresolved symbol names, for ErrUnresolvedSymbols
	Err     error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(line int, kind error, format string, args ...any) *Error {
	return &Error{
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
		Err:  kind,
	}
}

func unresolvedError(names []string) *Error {
	return &Error{
		Msg:     "failed to resolve: " + strings.Join(names, ", "),
		Symbols: names,
		Err:     ErrUnresolvedSymbols,
	}
}
