// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import "strings"

// An fstring is a string that keeps track of its position within the
// file from which it was read.
type fstring struct {
	row    int    // 1-based line number of substring
	column int    // 0-based column of start of substring
	str    string // the actual substring of interest
	full   string // the full line as originally read from the file
}

func newFstring(row int, str string) fstring {
	return fstring{row, 0, str, str}
}

func (l fstring) String() string {
	return l.str
}

func (l fstring) advanceColumn(n int) int {
	c := l.column
	for i := 0; i < n; i++ {
		if l.str[i] == '\t' {
			c += 8 - (c % 8)
		} else {
			c++
		}
	}
	return c
}

func (l fstring) consume(n int) fstring {
	col := l.advanceColumn(n)
	return fstring{l.row, col, l.str[n:], l.full}
}

func (l fstring) trunc(n int) fstring {
	return fstring{l.row, l.column, l.str[:n], l.full}
}

func (l fstring) isEmpty() bool {
	return len(l.str) == 0
}

func (l fstring) startsWith(fn func(c byte) bool) bool {
	return len(l.str) > 0 && fn(l.str[0])
}

func (l fstring) startsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[0] == c
}

func (l fstring) startsWithString(s string) bool {
	return len(l.str) >= len(s) && l.str[:len(s)] == s
}

func (l fstring) consumeWhitespace() fstring {
	return l.consume(l.scanWhile(whitespace))
}

func (l fstring) trimRight() fstring {
	return l.trunc(len(strings.TrimRight(l.str, " \t")))
}

func (l fstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && fn(l.str[i]); i++ {
	}
	return i
}

func (l fstring) consumeWhile(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanWhile(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

// Split the string on every occurrence of c that is not inside quotes or
// parentheses.
func (l fstring) splitUnquoted(c byte) []fstring {
	var parts []fstring
	var quote byte
	depth, start := 0, 0
	for i := 0; i < len(l.str); i++ {
		ch := l.str[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case stringQuote(ch):
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == c && depth == 0:
			parts = append(parts, l.consume(start).trunc(i-start))
			start = i + 1
		}
	}
	return append(parts, l.consume(start))
}

// Return the index of the last occurrence of c outside quotes and
// parentheses, or -1.
func (l fstring) lastUnquoted(c byte) int {
	var quote byte
	depth, last := 0, -1
	for i := 0; i < len(l.str); i++ {
		ch := l.str[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case stringQuote(ch):
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
		case ch == c && depth == 0:
			last = i
		}
	}
	return last
}

// Return the index of the parenthesis closing the one at the start of the
// string, or -1.
func (l fstring) matchingParen() int {
	var quote byte
	depth := 0
	for i := 0; i < len(l.str); i++ {
		ch := l.str[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case stringQuote(ch):
			quote = ch
		case ch == '(':
			depth++
		case ch == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t'
}

func alpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decimal(c byte) bool {
	return (c >= '0' && c <= '9')
}

func hexadecimal(c byte) bool {
	return decimal(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func binarynum(c byte) bool {
	return c == '0' || c == '1'
}

func identifierStartChar(c byte) bool {
	return alpha(c) || c == '_'
}

func identifierChar(c byte) bool {
	return alpha(c) || decimal(c) || c == '_'
}

func stringQuote(c byte) bool {
	return c == '"' || c == '\''
}
