// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"sort"
	"strconv"
)

// ValueKind describes what an evaluated expression produced.
type ValueKind byte

// Value kinds
const (
	Unresolved ValueKind = iota
	Num
	Text
)

// A Value is the result of evaluating an expression.
type Value struct {
	Kind ValueKind
	Num  int
	Text string
}

// NumValue returns a resolved numeric value.
func NumValue(n int) Value {
	return Value{Kind: Num, Num: n}
}

// TextValue returns a resolved string value.
func TextValue(s string) Value {
	return Value{Kind: Text, Text: s}
}

// Resolved reports whether the value is known.
func (v Value) Resolved() bool {
	return v.Kind != Unresolved
}

// IsNum reports whether the value is a known number.
func (v Value) IsNum() bool {
	return v.Kind == Num
}

func (v Value) String() string {
	switch v.Kind {
	case Num:
		if v.Num < 0 {
			return strconv.Itoa(v.Num)
		}
		return fmt.Sprintf("$%X", v.Num)
	case Text:
		return strconv.Quote(v.Text)
	default:
		return "(uneval)"
	}
}

// Symbols is the symbol table shared by the passes of one assembly job. A
// name mapped to an unresolved value is present but lacks a value.
type Symbols map[string]Value

// Lookup returns the value bound to name, or an unresolved value if the
// name is absent.
func (s Symbols) Lookup(name string) Value {
	return s[name]
}

// Unresolved returns the sorted names present in the table that lack a
// value.
func (s Symbols) Unresolved() []string {
	var names []string
	for k, v := range s {
		if !v.Resolved() {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Numbers returns every resolved numeric symbol.
func (s Symbols) Numbers() map[string]int {
	m := make(map[string]int, len(s))
	for k, v := range s {
		if v.IsNum() {
			m[k] = v.Num
		}
	}
	return m
}

// Texts returns every resolved string symbol.
func (s Symbols) Texts() map[string]string {
	m := make(map[string]string)
	for k, v := range s {
		if v.Kind == Text {
			m[k] = v.Text
		}
	}
	return m
}

// Clone returns a copy of the table.
func (s Symbols) Clone() Symbols {
	c := make(Symbols, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}
