// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beevik/asm6502/asm"
	"github.com/beevik/asm6502/parser"
)

func assemble(code string) (*asm.Result, error) {
	stmts, err := parser.ParseString(code)
	if err != nil {
		return nil, err
	}
	return asm.Assemble(stmts, asm.Options{})
}

func checkASM(t *testing.T, code string, expected string) *asm.Result {
	t.Helper()
	r, err := assemble(code)
	if err != nil {
		t.Error(err)
		return nil
	}

	s := asm.HexString(r.Code)
	if s != expected {
		t.Error("code doesn't match expected")
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
	return r
}

func checkASMError(t *testing.T, code string, kind error, errString string) {
	t.Helper()
	_, err := assemble(code)
	if err == nil {
		t.Errorf("Expected error on %s, didn't get one\n", code)
		return
	}
	if kind != nil && !errors.Is(err, kind) {
		t.Errorf("Expected error kind '%v', got '%v'\n", kind, err)
	}
	if errString != "" && errString != err.Error() {
		t.Errorf("Expected '%s', got '%v'\n", errString, err)
	}
}

func TestAddressingIMM(t *testing.T) {
	code := `
	LDA #$20
	LDX #$20
	LDY #$20
	ADC #$20
	SBC #$20
	CMP #$20
	CPX #$20
	CPY #$20
	AND #$20
	ORA #$20
	EOR #$20`

	checkASM(t, code, "A920A220A0206920E920C920E020C020292009204920")
}

func TestAddressingABS(t *testing.T) {
	code := `
	LDA $2000
	LDX $2000
	LDY $2000
	STA $2000
	STX $2000
	STY $2000
	ADC $2000
	SBC $2000
	CMP $2000
	CPX $2000
	CPY $2000
	BIT $2000
	AND $2000
	ORA $2000
	EOR $2000
	INC $2000
	DEC $2000
	JMP $2000
	JSR $2000
	ASL $2000
	LSR $2000
	ROL $2000
	ROR $2000`

	checkASM(t, code, "AD0020AE0020AC00208D00208E00208C00206D0020ED0020CD0020"+
		"EC0020CC00202C00202D00200D00204D0020EE0020CE00204C00202000200E0020"+
		"4E00202E00206E0020")
}

func TestAddressingABX(t *testing.T) {
	code := `
	LDA $2000,X
	LDY $2000,X
	STA $2000,X
	ADC $2000,X
	SBC $2000,X
	CMP $2000,X
	AND $2000,X
	ORA $2000,X
	EOR $2000,X
	INC $2000,X
	DEC $2000,X
	ASL $2000,X
	LSR $2000,X
	ROL $2000,X
	ROR $2000,X`

	checkASM(t, code, "BD0020BC00209D00207D0020FD0020DD00203D00201D00205D0020"+
		"FE0020DE00201E00205E00203E00207E0020")
}

func TestAddressingABY(t *testing.T) {
	code := `
	LDA $2000,Y
	LDX $2000,Y
	STA $2000,Y
	ADC $2000,Y
	SBC $2000,Y
	CMP $2000,Y
	AND $2000,Y
	ORA $2000,Y
	EOR $2000,Y`

	checkASM(t, code, "B90020BE0020990020790020F90020D90020390020190020590020")
}

func TestAddressingZPG(t *testing.T) {
	code := `
	LDA $20
	LDX $20
	LDY $20
	STA $20
	STX $20
	STY $20
	ADC $20
	SBC $20
	CMP $20
	CPX $20
	CPY $20
	BIT $20
	AND $20
	ORA $20
	EOR $20
	INC $20
	DEC $20
	ASL $20
	LSR $20
	ROL $20
	ROR $20`

	checkASM(t, code, "A520A620A4208520862084206520E520C520E420C42024202520"+
		"05204520E620C6200620462026206620")
}

func TestAddressingZPXY(t *testing.T) {
	code := `
	LDA $20,X
	LDY $20,X
	STA $20,X
	STY $20,X
	LDX $20,Y
	STX $20,Y
	LDA $20,Y`

	checkASM(t, code, "B520B42095209420B6209620B92000")
}

func TestAddressingIND(t *testing.T) {
	code := `
	JMP ($20)
	JMP ($2000)
	LDA ($20,X)
	STA ($20),Y
	LDA ( $20 , x )`

	checkASM(t, code, "6C20006C0020A1209120A120")
}

func TestAccumulator(t *testing.T) {
	code := `
	ASL
	LSR A
	ROL a
	ROR`

	checkASM(t, code, "0A4A2A6A")
}

func TestLabels(t *testing.T) {
	r := checkASM(t, "foo:\nbar:\n", "")
	assert.Equal(t, map[string]int{"foo": 0, "bar": 0}, r.Symbols)

	r = checkASM(t, `
	a: lda $1000
	b: lda $42,x
	c: nop
	d: bne a`, "AD0010B542EAD0F8")
	assert.Equal(t, map[string]int{"a": 0, "b": 3, "c": 5, "d": 6}, r.Symbols)

	checkASMError(t, "foo:\nfoo:\n", asm.ErrDuplicateLabel, "line 2: label 'foo' already defined")
	checkASMError(t, "foo = 1\nfoo = 2\n", asm.ErrDuplicateLabel, "")
}

func TestLocationCounter(t *testing.T) {
	r := checkASM(t, `
	* = 0x801
	start: nop
	* = $c000
	main: nop`, "EAEA")
	assert.Equal(t, map[string]int{"start": 0x801, "main": 0xc000}, r.Symbols)

	checkASM(t, `
	nop
	nop
	jmp *`, "EAEA4C0200")

	r = checkASM(t, `
	* = a
	* = b
	  a = *
	* = c
	  b = *
	c = $1000`, "")
	assert.Equal(t, map[string]int{"a": 0x1000, "b": 0x1000, "c": 0x1000}, r.Symbols)

	r = checkASM(t, `
	.org $0600
	loop: jmp loop`, "4C0006")
	assert.Equal(t, 0x600, r.Symbols["loop"])
}

func TestBranches(t *testing.T) {
	checkASM(t, `
	work: rts
	loop: jsr work
	      dex
	      bne loop`, "60200000CAD0FA")

	checkASMError(t, `
	init: nop
	* = $200
	      bne init`, asm.ErrWidth, "line 4: relative address out of bounds ('init')")

	checkASM(t, "jsr play\nrts\nplay: rts", "2004006060")

	// A branch to '*' emits the location following the instruction.
	checkASM(t, "bne *", "D002")
	checkASM(t, "* = $0600\nnop\nbeq *", "EAF003")
}

func TestDataBytes(t *testing.T) {
	r := checkASM(t, `
	.byte "hola", 0
	.aasc "chau"
	.byte 'f', 'f'
	.byte $ABCD >> 8
	.byte 1+2+3+4
	.byte -1
	.byte 0b01010101, %11110000
	end:`, "686F6C6100636861756666AB0AFF55F0")
	assert.Equal(t, 16, r.Symbols["end"])

	checkASMError(t, "foo = $1234\n.byte foo", asm.ErrWidth,
		"line 2: label 'foo' used in .byte directive refers to a 16-bit value")
	checkASMError(t, ".byte 256", asm.ErrWidth, "")
}

func TestDataWords(t *testing.T) {
	checkASM(t, `
	.word $ABCD, $ABCD >> 8
	.word -1, 'f'
	.word end
	end:`, "CDABAB00FFFF66000A00")

	checkASM(t, "* = $1234\n.word *", "3412")
	checkASM(t, `
	* = $1000
	.word *, * + 2, end
	end:`, "001004100610")
}

func TestReserve(t *testing.T) {
	r := checkASM(t, `
	.res 2
	.res 3, $ea
	.res size, 1
	size = 2
	end:`, "0000EAEAEA0101")
	assert.Equal(t, 7, r.Symbols["end"])
}

func TestUnknownMnemonic(t *testing.T) {
	checkASMError(t, "wat", asm.ErrUnknownMnemonic, "line 1: unknown mnemonic 'wat'")
	checkASMError(t, "pla $1000", asm.ErrUnknownMnemonic, "line 1: unknown mnemonic 'pla abs'")
	checkASMError(t, "lda ($1000)", asm.ErrUnknownMnemonic, "line 1: unknown mnemonic 'lda ind'")
}

func TestNegativeValues(t *testing.T) {
	r := checkASM(t, `
	foo = -1
	bar = -25
	lda #foo
	lda #bar`, "A9FFA9E7")
	assert.Equal(t, -1, r.Symbols["foo"])

	r = checkASM(t, "foo = -1337", "")
	assert.Equal(t, map[string]int{"foo": -1337}, r.Symbols)
}

func TestWideOperands(t *testing.T) {
	for _, line := range []string{"lda #foo", "lda (foo,x)", "lda (foo),y"} {
		checkASMError(t, "foo = $1234\n"+line, asm.ErrWidth, "line 2: operand 'foo' refers to a 16-bit value")
	}
}

func TestLowHighByte(t *testing.T) {
	checkASM(t, `
	loadAddr = $1040
	lda <loadAddr
	lda >loadAddr
	lda #<loadAddr
	lda #>loadAddr`, "A540A510A940A910")
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		expr string
		want int
	}{
		{"~0b11001100", -205},
		{"!0", 1},
		{"!21", 0},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"100 / 2", 50},
		{"64 >> 3", 8},
		{"1 << 4 | 1", 17},
		{"$f0 & $3c", 0x30},
		{"$f0 ^ $ff", 0x0f},
		{"1 + 2 == 3", 1},
		{"3 != 3", 0},
		{"1 < 2 && 2 <= 2", 1},
		{"0 || 0", 0},
		{"42 && 1", 1},
		{"-2 * -3", 6},
		{"10 - 2 - 3", 5},
		{">$1234 + <$1234", 0x12 + 0x34},
	}
	for _, tt := range tests {
		r, err := assemble("foo = " + tt.expr)
		require.NoError(t, err, tt.expr)
		assert.Equal(t, tt.want, r.Symbols["foo"], tt.expr)
	}
}

func TestForwardReferences(t *testing.T) {
	r := checkASM(t, `
	bar = foo + 0x10
	foo = 0x20`, "")
	assert.Equal(t, map[string]int{"foo": 0x20, "bar": 0x30}, r.Symbols)

	checkASM(t, `
	lda $1000
	lda $10
	lda $1000,x
	lda $10,x`, "AD0010A510BD0010B510")

	checkASM(t, `
	a = $fe
	tmp = a
	lda tmp`, "A5FE")

	var diags asm.Diagnostics
	stmts, err := parser.ParseString("lda hmm\nhmm = $fe")
	require.NoError(t, err)
	r, err = asm.Assemble(stmts, asm.Options{Diagnostics: &diags})
	require.NoError(t, err)
	assert.Equal(t, "ADFE00", asm.HexString(r.Code))
	require.Len(t, diags, 1)
	assert.Equal(t, asm.WarnMissedZeroPage, diags[0].Kind)
}

func TestUnresolved(t *testing.T) {
	checkASMError(t, "jmp nowhere", asm.ErrUndefinedLabel, "line 1: label 'nowhere' not defined")
	checkASMError(t, "* = nowhere\nnop", asm.ErrUnresolvedSymbols, "failed to resolve: nowhere")
}

func TestComments(t *testing.T) {
	checkASM(t, `
	; a comment
	nop ; trailing
	nop // another
	/* block
	   comment */ nop
	.byte ";" // quoted semicolon
	`, "EAEAEA3B")
}

func TestSourceMapSegments(t *testing.T) {
	r := checkASM(t, "* = $0600\nlda #1\n* = $0700\n.byte 1, 2\nrts\n", "A901010260")
	require.NotNil(t, r)

	segs, err := r.SourceMap.Segments(r.Code)
	require.NoError(t, err)
	assert.Equal(t, []asm.Segment{
		{Address: 0x0600, Code: []byte{0xa9, 0x01}},
		{Address: 0x0700, Code: []byte{0x01, 0x02, 0x60}},
	}, segs)

	addr, ok := r.SourceMap.Lookup(5)
	assert.True(t, ok)
	assert.Equal(t, 0x0702, addr)
	_, ok = r.SourceMap.Lookup(3)
	assert.False(t, ok)
}
