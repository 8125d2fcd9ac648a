// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opcode describes the 6502 instruction set as seen by the
// assembler: every valid (mnemonic, addressing mode) pair and the opcode
// byte and instruction length it encodes to.
package opcode

import "strings"

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes
const (
	IMM Mode = iota // Immediate
	IMP             // Implied (no operand)
	REL             // Relative
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect)
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
)

var modeName = []string{
	"imm",
	"imp",
	"rel",
	"zp",
	"zpx",
	"zpy",
	"abs",
	"abx",
	"aby",
	"ind",
	"izx",
	"izy",
}

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "???"
}

// ParseMode returns the mode whose short name is s.
func ParseMode(s string) (Mode, bool) {
	s = strings.ToLower(s)
	for i, n := range modeName {
		if n == s {
			return Mode(i), true
		}
	}
	return 0, false
}

// Zero page equivalents of the absolute modes.
var zeroPageModes = map[Mode]Mode{
	ABS: ZPG,
	ABX: ZPX,
	ABY: ZPY,
}

// ZeroPage returns the zero-page equivalent of an absolute-like mode.
func ZeroPage(m Mode) (Mode, bool) {
	zp, ok := zeroPageModes[m]
	return zp, ok
}

var branches = map[string]bool{
	"bcc": true,
	"bcs": true,
	"beq": true,
	"bmi": true,
	"bne": true,
	"bpl": true,
	"bvc": true,
	"bvs": true,
}

// IsBranch reports whether the mnemonic names a relative branch
// instruction.
func IsBranch(mnemonic string) bool {
	return branches[strings.ToLower(mnemonic)]
}

// Opcode data for a (mnemonic, mode) pair
type opcodeData struct {
	name   string // lower-case mnemonic
	mode   Mode   // addressing mode
	opcode byte   // opcode hex value
	length byte   // length of opcode + operand in bytes
	undoc  bool   // undocumented NMOS opcode
}

// All valid (mnemonic, mode) pairs
var data = []opcodeData{
	{"lda", IMM, 0xa9, 2, false},
	{"lda", ZPG, 0xa5, 2, false},
	{"lda", ZPX, 0xb5, 2, false},
	{"lda", ABS, 0xad, 3, false},
	{"lda", ABX, 0xbd, 3, false},
	{"lda", ABY, 0xb9, 3, false},
	{"lda", IDX, 0xa1, 2, false},
	{"lda", IDY, 0xb1, 2, false},

	{"ldx", IMM, 0xa2, 2, false},
	{"ldx", ZPG, 0xa6, 2, false},
	{"ldx", ZPY, 0xb6, 2, false},
	{"ldx", ABS, 0xae, 3, false},
	{"ldx", ABY, 0xbe, 3, false},

	{"ldy", IMM, 0xa0, 2, false},
	{"ldy", ZPG, 0xa4, 2, false},
	{"ldy", ZPX, 0xb4, 2, false},
	{"ldy", ABS, 0xac, 3, false},
	{"ldy", ABX, 0xbc, 3, false},

	{"sta", ZPG, 0x85, 2, false},
	{"sta", ZPX, 0x95, 2, false},
	{"sta", ABS, 0x8d, 3, false},
	{"sta", ABX, 0x9d, 3, false},
	{"sta", ABY, 0x99, 3, false},
	{"sta", IDX, 0x81, 2, false},
	{"sta", IDY, 0x91, 2, false},

	{"stx", ZPG, 0x86, 2, false},
	{"stx", ZPY, 0x96, 2, false},
	{"stx", ABS, 0x8e, 3, false},

	{"sty", ZPG, 0x84, 2, false},
	{"sty", ZPX, 0x94, 2, false},
	{"sty", ABS, 0x8c, 3, false},

	{"adc", IMM, 0x69, 2, false},
	{"adc", ZPG, 0x65, 2, false},
	{"adc", ZPX, 0x75, 2, false},
	{"adc", ABS, 0x6d, 3, false},
	{"adc", ABX, 0x7d, 3, false},
	{"adc", ABY, 0x79, 3, false},
	{"adc", IDX, 0x61, 2, false},
	{"adc", IDY, 0x71, 2, false},

	{"sbc", IMM, 0xe9, 2, false},
	{"sbc", ZPG, 0xe5, 2, false},
	{"sbc", ZPX, 0xf5, 2, false},
	{"sbc", ABS, 0xed, 3, false},
	{"sbc", ABX, 0xfd, 3, false},
	{"sbc", ABY, 0xf9, 3, false},
	{"sbc", IDX, 0xe1, 2, false},
	{"sbc", IDY, 0xf1, 2, false},

	{"cmp", IMM, 0xc9, 2, false},
	{"cmp", ZPG, 0xc5, 2, false},
	{"cmp", ZPX, 0xd5, 2, false},
	{"cmp", ABS, 0xcd, 3, false},
	{"cmp", ABX, 0xdd, 3, false},
	{"cmp", ABY, 0xd9, 3, false},
	{"cmp", IDX, 0xc1, 2, false},
	{"cmp", IDY, 0xd1, 2, false},

	{"cpx", IMM, 0xe0, 2, false},
	{"cpx", ZPG, 0xe4, 2, false},
	{"cpx", ABS, 0xec, 3, false},

	{"cpy", IMM, 0xc0, 2, false},
	{"cpy", ZPG, 0xc4, 2, false},
	{"cpy", ABS, 0xcc, 3, false},

	{"bit", ZPG, 0x24, 2, false},
	{"bit", ABS, 0x2c, 3, false},

	{"clc", IMP, 0x18, 1, false},
	{"sec", IMP, 0x38, 1, false},
	{"cli", IMP, 0x58, 1, false},
	{"sei", IMP, 0x78, 1, false},
	{"cld", IMP, 0xd8, 1, false},
	{"sed", IMP, 0xf8, 1, false},
	{"clv", IMP, 0xb8, 1, false},

	{"bcc", REL, 0x90, 2, false},
	{"bcs", REL, 0xb0, 2, false},
	{"beq", REL, 0xf0, 2, false},
	{"bne", REL, 0xd0, 2, false},
	{"bmi", REL, 0x30, 2, false},
	{"bpl", REL, 0x10, 2, false},
	{"bvc", REL, 0x50, 2, false},
	{"bvs", REL, 0x70, 2, false},

	{"brk", IMP, 0x00, 1, false},

	{"and", IMM, 0x29, 2, false},
	{"and", ZPG, 0x25, 2, false},
	{"and", ZPX, 0x35, 2, false},
	{"and", ABS, 0x2d, 3, false},
	{"and", ABX, 0x3d, 3, false},
	{"and", ABY, 0x39, 3, false},
	{"and", IDX, 0x21, 2, false},
	{"and", IDY, 0x31, 2, false},

	{"ora", IMM, 0x09, 2, false},
	{"ora", ZPG, 0x05, 2, false},
	{"ora", ZPX, 0x15, 2, false},
	{"ora", ABS, 0x0d, 3, false},
	{"ora", ABX, 0x1d, 3, false},
	{"ora", ABY, 0x19, 3, false},
	{"ora", IDX, 0x01, 2, false},
	{"ora", IDY, 0x11, 2, false},

	{"eor", IMM, 0x49, 2, false},
	{"eor", ZPG, 0x45, 2, false},
	{"eor", ZPX, 0x55, 2, false},
	{"eor", ABS, 0x4d, 3, false},
	{"eor", ABX, 0x5d, 3, false},
	{"eor", ABY, 0x59, 3, false},
	{"eor", IDX, 0x41, 2, false},
	{"eor", IDY, 0x51, 2, false},

	{"inc", ZPG, 0xe6, 2, false},
	{"inc", ZPX, 0xf6, 2, false},
	{"inc", ABS, 0xee, 3, false},
	{"inc", ABX, 0xfe, 3, false},

	{"dec", ZPG, 0xc6, 2, false},
	{"dec", ZPX, 0xd6, 2, false},
	{"dec", ABS, 0xce, 3, false},
	{"dec", ABX, 0xde, 3, false},

	{"inx", IMP, 0xe8, 1, false},
	{"iny", IMP, 0xc8, 1, false},

	{"dex", IMP, 0xca, 1, false},
	{"dey", IMP, 0x88, 1, false},

	{"jmp", ABS, 0x4c, 3, false},
	{"jmp", IND, 0x6c, 3, false},

	{"jsr", ABS, 0x20, 3, false},
	{"rts", IMP, 0x60, 1, false},

	{"rti", IMP, 0x40, 1, false},

	{"nop", IMP, 0xea, 1, false},

	{"tax", IMP, 0xaa, 1, false},
	{"txa", IMP, 0x8a, 1, false},
	{"tay", IMP, 0xa8, 1, false},
	{"tya", IMP, 0x98, 1, false},
	{"txs", IMP, 0x9a, 1, false},
	{"tsx", IMP, 0xba, 1, false},

	{"pha", IMP, 0x48, 1, false},
	{"pla", IMP, 0x68, 1, false},
	{"php", IMP, 0x08, 1, false},
	{"plp", IMP, 0x28, 1, false},

	{"asl", IMP, 0x0a, 1, false},
	{"asl", ZPG, 0x06, 2, false},
	{"asl", ZPX, 0x16, 2, false},
	{"asl", ABS, 0x0e, 3, false},
	{"asl", ABX, 0x1e, 3, false},

	{"lsr", IMP, 0x4a, 1, false},
	{"lsr", ZPG, 0x46, 2, false},
	{"lsr", ZPX, 0x56, 2, false},
	{"lsr", ABS, 0x4e, 3, false},
	{"lsr", ABX, 0x5e, 3, false},

	{"rol", IMP, 0x2a, 1, false},
	{"rol", ZPG, 0x26, 2, false},
	{"rol", ZPX, 0x36, 2, false},
	{"rol", ABS, 0x2e, 3, false},
	{"rol", ABX, 0x3e, 3, false},

	{"ror", IMP, 0x6a, 1, false},
	{"ror", ZPG, 0x66, 2, false},
	{"ror", ZPX, 0x76, 2, false},
	{"ror", ABS, 0x6e, 3, false},
	{"ror", ABX, 0x7e, 3, false},

	// Undocumented NMOS opcodes
	{"ahx", ABY, 0x9f, 3, true},
	{"ahx", IDY, 0x93, 2, true},
	{"alr", IMM, 0x4b, 2, true},
	{"anc", IMM, 0x2b, 2, true},
	{"arr", IMM, 0x6b, 2, true},
	{"axs", IMM, 0xcb, 2, true},

	{"dcp", ZPG, 0xc7, 2, true},
	{"dcp", ZPX, 0xd7, 2, true},
	{"dcp", ABS, 0xcf, 3, true},
	{"dcp", ABX, 0xdf, 3, true},
	{"dcp", ABY, 0xdb, 3, true},
	{"dcp", IDX, 0xc3, 2, true},
	{"dcp", IDY, 0xd3, 2, true},

	{"isc", ZPG, 0xe7, 2, true},
	{"isc", ZPX, 0xf7, 2, true},
	{"isc", ABS, 0xef, 3, true},
	{"isc", ABX, 0xff, 3, true},
	{"isc", ABY, 0xfb, 3, true},
	{"isc", IDX, 0xe3, 2, true},
	{"isc", IDY, 0xf3, 2, true},

	{"las", ABY, 0xbb, 3, true},

	{"lax", IMM, 0xab, 2, true},
	{"lax", ZPG, 0xa7, 2, true},
	{"lax", ZPY, 0xb7, 2, true},
	{"lax", ABS, 0xaf, 3, true},
	{"lax", ABY, 0xbf, 3, true},
	{"lax", IDX, 0xa3, 2, true},
	{"lax", IDY, 0xb3, 2, true},

	{"nop", IMM, 0xe2, 2, true},
	{"nop", ZPG, 0x64, 2, true},
	{"nop", ZPX, 0xf4, 2, true},
	{"nop", ABS, 0x0c, 3, true},
	{"nop", ABX, 0xfc, 3, true},

	{"rla", ZPG, 0x27, 2, true},
	{"rla", ZPX, 0x37, 2, true},
	{"rla", ABS, 0x2f, 3, true},
	{"rla", ABX, 0x3f, 3, true},
	{"rla", ABY, 0x3b, 3, true},
	{"rla", IDX, 0x23, 2, true},
	{"rla", IDY, 0x33, 2, true},

	{"rra", ZPG, 0x67, 2, true},
	{"rra", ZPX, 0x77, 2, true},
	{"rra", ABS, 0x6f, 3, true},
	{"rra", ABX, 0x7f, 3, true},
	{"rra", ABY, 0x7b, 3, true},
	{"rra", IDX, 0x63, 2, true},
	{"rra", IDY, 0x73, 2, true},

	{"sax", ZPG, 0x87, 2, true},
	{"sax", ZPY, 0x97, 2, true},
	{"sax", ABS, 0x8f, 3, true},
	{"sax", IDX, 0x83, 2, true},

	{"shx", ABY, 0x9e, 3, true},
	{"shy", ABX, 0x9c, 3, true},

	{"slo", ZPG, 0x07, 2, true},
	{"slo", ZPX, 0x17, 2, true},
	{"slo", ABS, 0x0f, 3, true},
	{"slo", ABX, 0x1f, 3, true},
	{"slo", ABY, 0x1b, 3, true},
	{"slo", IDX, 0x03, 2, true},
	{"slo", IDY, 0x13, 2, true},

	{"sre", ZPG, 0x47, 2, true},
	{"sre", ZPX, 0x57, 2, true},
	{"sre", ABS, 0x4f, 3, true},
	{"sre", ABX, 0x5f, 3, true},
	{"sre", ABY, 0x5b, 3, true},
	{"sre", IDX, 0x43, 2, true},
	{"sre", IDY, 0x53, 2, true},

	{"tas", ABY, 0x9b, 3, true},
	{"xaa", IMM, 0x8b, 2, true},
}

// An Instruction describes a single encoding of a CPU instruction: its
// name, its addressing mode, its opcode value and its total length.
type Instruction struct {
	Name         string // lower-case mnemonic
	Mode         Mode   // addressing mode
	Opcode       byte   // hexadecimal opcode value
	Length       byte   // combined size of opcode and operand, in bytes
	Undocumented bool   // not part of the documented NMOS instruction set
}

// Key returns the table key of the instruction, the mnemonic followed by
// the mode name. Implied instructions are keyed by the mnemonic alone.
func (i *Instruction) Key() string {
	return Key(i.Name, i.Mode)
}

// Key composes the table key for a mnemonic and addressing mode.
func Key(name string, mode Mode) string {
	if mode == IMP {
		return name
	}
	return name + " " + mode.String()
}

type variantKey struct {
	name string
	mode Mode
}

// An InstructionSet holds every encodable instruction, indexed both by
// (mnemonic, mode) and by opcode byte.
type InstructionSet struct {
	byOpcode [256]*Instruction
	variants map[variantKey]*Instruction
	names    map[string][]*Instruction
}

// Lookup returns the instruction encoding a mnemonic in the requested
// addressing mode.
func (s *InstructionSet) Lookup(name string, mode Mode) (*Instruction, bool) {
	inst, ok := s.variants[variantKey{strings.ToLower(name), mode}]
	return inst, ok
}

// Has reports whether the mnemonic supports the addressing mode.
func (s *InstructionSet) Has(name string, mode Mode) bool {
	_, ok := s.Lookup(name, mode)
	return ok
}

// Decode returns the instruction encoded by an opcode byte, or nil if the
// byte is not a known opcode.
func (s *InstructionSet) Decode(opcode byte) *Instruction {
	return s.byOpcode[opcode]
}

// Variants returns every encoding of a mnemonic.
func (s *InstructionSet) Variants(name string) []*Instruction {
	return s.names[strings.ToLower(name)]
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{
		variants: make(map[variantKey]*Instruction, len(data)),
		names:    make(map[string][]*Instruction),
	}

	for _, d := range data {
		inst := &Instruction{
			Name:         d.name,
			Mode:         d.mode,
			Opcode:       d.opcode,
			Length:       d.length,
			Undocumented: d.undoc,
		}
		if set.byOpcode[d.opcode] != nil {
			panic("duplicate opcode")
		}
		set.byOpcode[d.opcode] = inst
		set.variants[variantKey{d.name, d.mode}] = inst
		set.names[d.name] = append(set.names[d.name], inst)
	}
	return set
}

// The instruction set never changes after package initialization, so it
// may be shared by any number of concurrent assembly jobs.
var instructionSet = newInstructionSet()

// Set returns the 6502 instruction set.
func Set() *InstructionSet {
	return instructionSet
}

// Lookup returns the instruction encoding a mnemonic in the requested
// addressing mode.
func Lookup(name string, mode Mode) (*Instruction, bool) {
	return instructionSet.Lookup(name, mode)
}
