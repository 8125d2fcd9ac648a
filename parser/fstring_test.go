// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFstringChained(t *testing.T) {
	l := newFstring(3, "  \tlabel: lda")

	assert.False(t, l.consumeWhitespace().isEmpty())
	assert.True(t, l.consume(len(l.str)).isEmpty())

	id, remain := l.consumeWhitespace().consumeWhile(identifierChar)
	assert.Equal(t, "label", id.str)
	assert.Equal(t, 8, id.column)
	assert.Equal(t, ": lda", remain.str)
	assert.Equal(t, 13, remain.column)
	assert.True(t, remain.startsWithChar(':'))
	assert.True(t, remain.consume(1).consumeWhitespace().startsWith(alpha))
	assert.Equal(t, 3, remain.row)

	// Value receivers leave the original untouched.
	assert.Equal(t, 0, l.column)
	assert.Equal(t, "  \tlabel: lda", l.str)
}

func TestFstringParens(t *testing.T) {
	l := newFstring(1, `("a)", (1+2)),x`)
	assert.Equal(t, 12, l.matchingParen())
	assert.Equal(t, 13, l.lastUnquoted(','))
	assert.Equal(t, -1, newFstring(1, "(1").matchingParen())
	parts := l.splitUnquoted(',')
	assert.Len(t, parts, 2)
	assert.Equal(t, "x", parts[1].str)
	assert.Equal(t, 14, parts[1].column)
}
