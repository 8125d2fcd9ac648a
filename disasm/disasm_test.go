// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	code := []byte{
		0xa9, 0x10, // LDA #$10
		0x8d, 0x00, 0x20, // STA $2000
		0xb5, 0x42, // LDA $42,X
		0xca,       // DEX
		0xd0, 0xf6, // BNE $C000
		0x6c, 0x34, 0x12, // JMP ($1234)
		0x91, 0x20, // STA ($20),Y
		0x02, // undefined
	}

	expected := []string{
		"LDA #$10",
		"STA $2000",
		"LDA $42,X",
		"DEX",
		"BNE $C000",
		"JMP ($1234)",
		"STA ($20),Y",
		".BYTE $02",
	}

	var lines []string
	for addr := 0xc000; addr < 0xc000+len(code); {
		var line string
		line, addr = Disassemble(code, 0xc000, addr)
		lines = append(lines, line)
	}
	assert.Equal(t, expected, lines)
}

func TestDisassembleTruncated(t *testing.T) {
	line, next := Disassemble([]byte{0xad, 0x00}, 0, 0)
	assert.Equal(t, ".BYTE $AD", line)
	assert.Equal(t, 1, next)

	line, next = Disassemble([]byte{0xea}, 0x1000, 0x2000)
	assert.Equal(t, "", line)
	assert.Equal(t, 0x2000, next)
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []byte{0xa9, 0x01, 0x60}, 0x0600))
	assert.Equal(t,
		"0600-   A9 01       LDA #$01\n"+
			"0602-   60          RTS\n",
		buf.String())
}
