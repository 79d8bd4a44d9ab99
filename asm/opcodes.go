// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A Mode is a 6502 addressing mode. Its value is the column index of
// the opcode table.
type Mode byte

// Addressing modes.
const (
	IMP Mode = iota // implied
	ACC             // accumulator
	IMM             // immediate
	ABS             // absolute
	ABX             // absolute,X
	ABY             // absolute,Y
	ZPG             // zero page
	ZPX             // zero page,X
	ZPY             // zero page,Y
	IND             // (indirect)
	IDX             // (indirect,X)
	IDY             // (indirect),Y
	REL             // relative
	modeCount
)

var modeName = [modeCount]string{
	"IMP", "ACC", "IMM", "ABS", "ABX", "ABY", "ZPG",
	"ZPX", "ZPY", "IND", "IDX", "IDY", "REL",
}

var modeSize = [modeCount]int{0, 0, 1, 2, 2, 2, 1, 1, 1, 2, 1, 1, 1}

// ModeFormat holds a printf format for each addressing mode's operand,
// given the operand as a hexadecimal string.
var ModeFormat = [modeCount]string{
	"",        // IMP
	"A",       // ACC
	"#$%s",    // IMM
	"$%s",     // ABS
	"$%s,X",   // ABX
	"$%s,Y",   // ABY
	"$%s",     // ZPG
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
	"($%s)",   // IND
	"($%s,X)", // IDX
	"($%s),Y", // IDY
	"$%s",     // REL
}

func (m Mode) String() string {
	return modeName[m]
}

// OperandSize returns the number of operand bytes following the opcode.
func (m Mode) OperandSize() int {
	return modeSize[m]
}

const xx = -1

// The opcode for each mnemonic in each addressing mode, xx where the
// combination doesn't exist.
var opcodeTable = [...]struct {
	name string
	op   [modeCount]int16
}{
	// IMP, ACC, IMM, ABS, ABX, ABY, ZPG, ZPX, ZPY, IND, IDX, IDY, REL
	{"ADC", [modeCount]int16{xx, xx, 0x69, 0x6D, 0x7D, 0x79, 0x65, 0x75, xx, xx, 0x61, 0x71, xx}},
	{"AND", [modeCount]int16{xx, xx, 0x29, 0x2D, 0x3D, 0x39, 0x25, 0x35, xx, xx, 0x21, 0x31, xx}},
	{"ASL", [modeCount]int16{xx, 0x0A, xx, 0x0E, 0x1E, xx, 0x06, 0x16, xx, xx, xx, xx, xx}},
	{"BCC", [modeCount]int16{xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, 0x90}},
	{"BCS", [modeCount]int16{xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, 0xB0}},
	{"BEQ", [modeCount]int16{xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, 0xF0}},
	{"BIT", [modeCount]int16{xx, xx, xx, 0x2C, xx, xx, 0x24, xx, xx, xx, xx, xx, xx}},
	{"BMI", [modeCount]int16{xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, 0x30}},
	{"BNE", [modeCount]int16{xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, 0xD0}},
	{"BPL", [modeCount]int16{xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, 0x10}},
	{"BRK", [modeCount]int16{0x00, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"BVC", [modeCount]int16{xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, 0x50}},
	{"BVS", [modeCount]int16{xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, 0x70}},
	{"CLC", [modeCount]int16{0x18, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"CLD", [modeCount]int16{0xD8, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"CLI", [modeCount]int16{0x58, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"CLV", [modeCount]int16{0xB8, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"CMP", [modeCount]int16{xx, xx, 0xC9, 0xCD, 0xDD, 0xD9, 0xC5, 0xD5, xx, xx, 0xC1, 0xD1, xx}},
	{"CPX", [modeCount]int16{xx, xx, 0xE0, 0xEC, xx, xx, 0xE4, xx, xx, xx, xx, xx, xx}},
	{"CPY", [modeCount]int16{xx, xx, 0xC0, 0xCC, xx, xx, 0xC4, xx, xx, xx, xx, xx, xx}},
	{"DEC", [modeCount]int16{xx, xx, xx, 0xCE, 0xDE, xx, 0xC6, 0xD6, xx, xx, xx, xx, xx}},
	{"DEX", [modeCount]int16{0xCA, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"DEY", [modeCount]int16{0x88, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"EOR", [modeCount]int16{xx, xx, 0x49, 0x4D, 0x5D, 0x59, 0x45, 0x55, xx, xx, 0x41, 0x51, xx}},
	{"INC", [modeCount]int16{xx, xx, xx, 0xEE, 0xFE, xx, 0xE6, 0xF6, xx, xx, xx, xx, xx}},
	{"INX", [modeCount]int16{0xE8, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"INY", [modeCount]int16{0xC8, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"JMP", [modeCount]int16{xx, xx, xx, 0x4C, xx, xx, xx, xx, xx, 0x6C, xx, xx, xx}},
	{"JSR", [modeCount]int16{xx, xx, xx, 0x20, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"LDA", [modeCount]int16{xx, xx, 0xA9, 0xAD, 0xBD, 0xB9, 0xA5, 0xB5, xx, xx, 0xA1, 0xB1, xx}},
	{"LDX", [modeCount]int16{xx, xx, 0xA2, 0xAE, xx, 0xBE, 0xA6, xx, 0xB6, xx, xx, xx, xx}},
	{"LDY", [modeCount]int16{xx, xx, 0xA0, 0xAC, 0xBC, xx, 0xA4, 0xB4, xx, xx, xx, xx, xx}},
	{"LSR", [modeCount]int16{xx, 0x4A, xx, 0x4E, 0x5E, xx, 0x46, 0x56, xx, xx, xx, xx, xx}},
	{"NOP", [modeCount]int16{0xEA, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"ORA", [modeCount]int16{xx, xx, 0x09, 0x0D, 0x1D, 0x19, 0x05, 0x15, xx, xx, 0x01, 0x11, xx}},
	{"PHA", [modeCount]int16{0x48, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"PHP", [modeCount]int16{0x08, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"PLA", [modeCount]int16{0x68, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"PLP", [modeCount]int16{0x28, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"ROL", [modeCount]int16{xx, 0x2A, xx, 0x2E, 0x3E, xx, 0x26, 0x36, xx, xx, xx, xx, xx}},
	{"ROR", [modeCount]int16{xx, 0x6A, xx, 0x6E, 0x7E, xx, 0x66, 0x76, xx, xx, xx, xx, xx}},
	{"RTI", [modeCount]int16{0x40, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"RTS", [modeCount]int16{0x60, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"SBC", [modeCount]int16{xx, xx, 0xE9, 0xED, 0xFD, 0xF9, 0xE5, 0xF5, xx, xx, 0xE1, 0xF1, xx}},
	{"SEC", [modeCount]int16{0x38, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"SED", [modeCount]int16{0xF8, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"SEI", [modeCount]int16{0x78, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"STA", [modeCount]int16{xx, xx, xx, 0x8D, 0x9D, 0x99, 0x85, 0x95, xx, xx, 0x81, 0x91, xx}},
	{"STX", [modeCount]int16{xx, xx, xx, 0x8E, xx, xx, 0x86, xx, 0x96, xx, xx, xx, xx}},
	{"STY", [modeCount]int16{xx, xx, xx, 0x8C, xx, xx, 0x84, 0x94, xx, xx, xx, xx, xx}},
	{"TAX", [modeCount]int16{0xAA, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"TAY", [modeCount]int16{0xA8, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"TSX", [modeCount]int16{0xBA, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"TXA", [modeCount]int16{0x8A, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"TXS", [modeCount]int16{0x9A, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
	{"TYA", [modeCount]int16{0x98, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx, xx}},
}

// An Instruction is a single entry of the opcode table.
type Instruction struct {
	Name   string // all-caps mnemonic
	Mode   Mode   // addressing mode
	Opcode byte   // encoded opcode byte
}

// Length returns the combined size of the opcode and its operand.
func (i Instruction) Length() int {
	return 1 + i.Mode.OperandSize()
}

var (
	mnemonics map[string]int    // mnemonic -> opcode table row
	decodings [256]*Instruction // opcode byte -> instruction
)

func init() {
	mnemonics = make(map[string]int, len(opcodeTable))
	for i, row := range opcodeTable {
		mnemonics[row.name] = i
		for m, op := range row.op {
			if op != xx {
				decodings[op] = &Instruction{Name: row.name, Mode: Mode(m), Opcode: byte(op)}
			}
		}
	}
}

// isMnemonic reports whether s is one of the 56 recognized mnemonics.
func isMnemonic(s string) bool {
	_, ok := mnemonics[s]
	return ok
}

// Return the opcode for the mnemonic at table row 'row' in addressing
// mode 'm'.
func opcodeFor(row int, m Mode) (byte, bool) {
	op := opcodeTable[row].op[m]
	return byte(op), op != xx
}

// LookupOpcode returns the instruction encoded by an opcode byte, or
// false if the byte is not a documented NMOS 6502 opcode.
func LookupOpcode(opcode byte) (Instruction, bool) {
	if inst := decodings[opcode]; inst != nil {
		return *inst, true
	}
	return Instruction{}, false
}

// LookupInstruction returns the instruction for a mnemonic in the
// requested addressing mode.
func LookupInstruction(name string, m Mode) (Instruction, bool) {
	row, ok := mnemonics[name]
	if !ok || m >= modeCount {
		return Instruction{}, false
	}
	op, ok := opcodeFor(row, m)
	return Instruction{Name: name, Mode: m, Opcode: op}, ok
}
