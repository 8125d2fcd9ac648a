// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		opcode byte
		length byte
	}{
		{"lda", IMM, 0xa9, 2},
		{"lda", ZPX, 0xb5, 2},
		{"LDA", ABS, 0xad, 3},
		{"ldx", ZPY, 0xb6, 2},
		{"jmp", IND, 0x6c, 3},
		{"jsr", ABS, 0x20, 3},
		{"bne", REL, 0xd0, 2},
		{"nop", IMP, 0xea, 1},
		{"sta", IDY, 0x91, 2},
		{"lax", IDX, 0xa3, 2},
	}

	for _, tt := range tests {
		inst, ok := Lookup(tt.name, tt.mode)
		require.True(t, ok, "%s %s", tt.name, tt.mode)
		assert.Equal(t, tt.opcode, inst.Opcode, "%s %s", tt.name, tt.mode)
		assert.Equal(t, tt.length, inst.Length, "%s %s", tt.name, tt.mode)
	}
}

func TestLookupMissing(t *testing.T) {
	missing := []struct {
		name string
		mode Mode
	}{
		{"sta", IMM},
		{"pla", ABS},
		{"jmp", ZPG},
		{"lda", IND},
		{"wat", IMP},
		{"ldx", ZPX},
	}
	for _, m := range missing {
		_, ok := Lookup(m.name, m.mode)
		assert.False(t, ok, "%s %s", m.name, m.mode)
	}
}

func TestDecodeMatchesLookup(t *testing.T) {
	set := Set()
	count := 0
	for i := 0; i < 256; i++ {
		inst := set.Decode(byte(i))
		if inst == nil {
			continue
		}
		count++
		got, ok := set.Lookup(inst.Name, inst.Mode)
		require.True(t, ok)
		assert.Same(t, inst, got)
	}
	assert.Equal(t, len(data), count)
}

func TestLengthMatchesMode(t *testing.T) {
	for _, d := range data {
		var want byte
		switch d.mode {
		case IMP:
			want = 1
		case ABS, ABX, ABY, IND:
			want = 3
		default:
			want = 2
		}
		assert.Equal(t, want, d.length, "%s %s", d.name, d.mode)
	}
}

func TestZeroPage(t *testing.T) {
	zp, ok := ZeroPage(ABS)
	assert.True(t, ok)
	assert.Equal(t, ZPG, zp)

	zp, ok = ZeroPage(ABY)
	assert.True(t, ok)
	assert.Equal(t, ZPY, zp)

	_, ok = ZeroPage(IND)
	assert.False(t, ok)
}

func TestKeyAndModeNames(t *testing.T) {
	inst, _ := Lookup("lda", ZPG)
	assert.Equal(t, "lda zp", inst.Key())
	assert.Equal(t, "rts", Key("rts", IMP))

	m, ok := ParseMode("IZY")
	assert.True(t, ok)
	assert.Equal(t, IDY, m)

	_, ok = ParseMode("bogus")
	assert.False(t, ok)
}

func TestIsBranch(t *testing.T) {
	assert.True(t, IsBranch("BNE"))
	assert.True(t, IsBranch("bpl"))
	assert.False(t, IsBranch("jmp"))
}
