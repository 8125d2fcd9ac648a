// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/asm6502/opcode"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	"#$%s",    // IMM
	"%s",      // IMP
	"$%s",     // REL
	"$%s",     // ZPG
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
	"$%s",     // ABS
	"$%s,X",   // ABX
	"$%s,Y",   // ABY
	"($%s)",   // IND
	"($%s,X)", // IDX
	"($%s),Y", // IDY
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice, most
// significant byte first.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in 'code', which is loaded at address
// 'origin', starting at address 'addr'. Return a 'line' string representing
// the disassembled instruction and a 'next' address that starts the
// following line of machine code. Bytes that do not start a complete
// instruction are shown as .byte data.
func Disassemble(code []byte, origin, addr int) (line string, next int) {
	i := addr - origin
	if i < 0 || i >= len(code) {
		return "", addr
	}

	inst := opcode.Set().Decode(code[i])
	if inst == nil || i+int(inst.Length) > len(code) {
		return fmt.Sprintf(".BYTE $%02X", code[i]), addr + 1
	}

	operand := code[i+1 : i+int(inst.Length)]
	if inst.Mode == opcode.REL {
		// Convert relative offset to absolute address.
		braddr := addr + int(inst.Length) + int(int8(operand[0]))
		operand = []byte{byte(braddr & 0xff), byte(braddr >> 8)}
	}
	format := "%s " + modeFormat[inst.Mode]
	line = strings.TrimRight(fmt.Sprintf(format, strings.ToUpper(inst.Name), hexString(operand)), " ")
	next = addr + int(inst.Length)
	return
}

// Write disassembles every instruction in 'code' to w, one per line, in
// the same layout as an assembler listing.
func Write(w io.Writer, code []byte, origin int) error {
	for addr := origin; addr < origin+len(code); {
		line, next := Disassemble(code, origin, addr)
		b := code[addr-origin : next-origin]
		if _, err := fmt.Fprintf(w, "%04X-   %-8s    %s\n", addr, byteString(b), line); err != nil {
			return err
		}
		addr = next
	}
	return nil
}

func byteString(b []byte) string {
	var sb strings.Builder
	for i, n := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(hex[n>>4])
		sb.WriteByte(hex[n&0x0f])
	}
	return sb.String()
}
