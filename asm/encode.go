// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strings"
)

// A ByteKind distinguishes literal bytes from deferred label references
// in an emitted line.
type ByteKind byte

// Byte kinds.
const (
	LiteralByte ByteKind = iota
	LabelReference
)

// A Byte is one token of an emitted line. A LabelReference stands for
// Size bytes whose value is only known once every label has an address.
type Byte struct {
	Kind  ByteKind
	Value byte // literal value
	Label int  // label table index of a reference
	Size  int  // bytes reserved for a reference
}

func literal(v byte) Byte {
	return Byte{Kind: LiteralByte, Value: v}
}

// A Line is the encoded form of one statement.
type Line struct {
	Origin     bool        // location counter directive
	Address    uint16      // address of the first byte, or the new origin
	Row        int         // source line number
	Inst       Instruction // selected instruction
	Bytes      []Byte      // opcode and operand bytes
	Annotation string      // debug listing prefix
}

// An operand is the value an instruction's operand resolves to.
type operand struct {
	width Width
	value Value
	label int // label table index, or -1
}

// Encode every token line, assigning label addresses as the program
// counter reaches them.
func (a *assembler) encode() error {
	a.logSection("Encoding instructions")

	a.pc = a.origin
	for i := range a.lines {
		tl := &a.lines[i]
		if tl.origin {
			a.pc = tl.value.Word()
			a.log("%04X  * = $%04X", a.pc, a.pc)
			a.program.Lines = append(a.program.Lines, Line{Origin: true, Address: a.pc, Row: tl.row})
			continue
		}

		line, err := a.encodeLine(tl)
		if err != nil {
			return err
		}
		a.program.Lines = append(a.program.Lines, line)
		a.pc += uint16(line.Inst.Length())
	}

	for _, i := range a.trailing {
		a.labels[i].Address = a.pc
	}
	return nil
}

// Encode a single instruction statement.
func (a *assembler) encodeLine(tl *tokenLine) (Line, error) {
	mnemonic := tl.words[0]
	row, ok := mnemonics[mnemonic.str]
	if !ok {
		return Line{}, a.errorf(mnemonic, ErrUnknownOpcode, "'%s'", mnemonic.str)
	}

	var sym string
	for n, i := range tl.labels {
		a.labels[i].Address = a.pc
		if n == 0 {
			sym = a.labels[i].Name
		}
	}

	line := Line{Address: a.pc, Row: tl.row}

	var operandText string
	var bytes []Byte
	var err error
	switch len(tl.words) {
	case 1:
		line.Inst, err = a.encodeImplied(row, mnemonic)
	case 2:
		operandText = tl.words[1].str
		if operandText == "A" {
			line.Inst, err = a.selectInstruction(row, mnemonic, ACC)
		} else {
			line.Inst, bytes, err = a.encodeOperand(row, mnemonic, tl.words[1])
		}
	default:
		err = a.errorf(tl.words[2], ErrUnknownAddressingPattern, "unexpected '%s'", tl.words[2].str)
	}
	if err != nil {
		return Line{}, err
	}

	line.Bytes = append([]Byte{literal(line.Inst.Opcode)}, bytes...)
	line.Annotation = fmt.Sprintf("%04X %-6s %-3s %-12s ", line.Address, sym, mnemonic.str, operandText)

	a.log("%04X  %s Len:%d Mode:%s Opcode:%02X",
		line.Address, line.Inst.Name, line.Inst.Length(),
		line.Inst.Mode, line.Inst.Opcode)
	return line, nil
}

// An instruction without an operand is implied, or accumulator when the
// mnemonic has no implied form.
func (a *assembler) encodeImplied(row int, mnemonic fstring) (Instruction, error) {
	if _, ok := opcodeFor(row, IMP); !ok {
		if _, ok := opcodeFor(row, ACC); ok {
			return a.selectInstruction(row, mnemonic, ACC)
		}
	}
	return a.selectInstruction(row, mnemonic, IMP)
}

func (a *assembler) selectInstruction(row int, mnemonic fstring, m Mode) (Instruction, error) {
	op, ok := opcodeFor(row, m)
	if !ok {
		return Instruction{}, a.errorf(mnemonic, ErrUnknownAddressingPattern,
			"invalid addressing mode %s for opcode '%s'", m, mnemonic.str)
	}
	return Instruction{Name: mnemonic.str, Mode: m, Opcode: op}, nil
}

// Strip indexing, indirection and immediate decorations from an operand,
// leaving the address token.
func bareOperand(op fstring) fstring {
	s := op.str
	s = strings.TrimSuffix(s, ",X")
	s = strings.TrimSuffix(s, ",Y")
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSuffix(s, ",X")

	start := 0
	if strings.HasPrefix(s[start:], "(") {
		start++
	}
	if strings.HasPrefix(s[start:], "#") {
		start++
	}
	return op.trunc(len(s)).consume(start)
}

// Resolve an address token to a label reference, a constant or a
// literal value.
func (a *assembler) resolveOperand(mnemonic string, bare fstring) (operand, error) {
	if i, ok := a.labelIndex[bare.str]; ok {
		o := operand{width: WidthByte, label: i}
		if mnemonic == "JMP" || mnemonic == "JSR" {
			o.width = WidthWord
		}
		return o, nil
	}

	name, selector := bare.str, byte(0)
	if bare.startsWithChar('<') || bare.startsWithChar('>') {
		name, selector = bare.str[1:], bare.str[0]
	}

	if i, ok := a.defineIndex[name]; ok {
		d := a.defines[i]
		switch selector {
		case '<':
			return operand{width: WidthByte, value: Value{Low: d.Value.Low}, label: -1}, nil
		case '>':
			return operand{width: WidthByte, value: Value{Low: d.Value.High}, label: -1}, nil
		default:
			return operand{width: d.Width, value: d.Value, label: -1}, nil
		}
	}

	if selector != 0 {
		return operand{}, a.errorf(bare, ErrMalformedLiteral,
			"byte selector '%c' requires a constant, got '%s'", selector, name)
	}

	v, w, err := decodeLiteral(bare.str)
	if err != nil {
		return operand{}, a.errorAt(bare, err)
	}
	return operand{width: w, value: v, label: -1}, nil
}

// Choose the addressing mode for an operand from its syntax and width.
func (a *assembler) selectMode(row int, op fstring, width Width) (Mode, error) {
	has := func(m Mode) bool {
		_, ok := opcodeFor(row, m)
		return ok
	}
	indexed := func(zp, abs Mode) Mode {
		if width == WidthByte {
			return zp
		}
		return abs
	}

	s := op.str
	switch {
	case op.startsWithChar('#'):
		return IMM, nil
	case op.startsWithChar('('):
		switch {
		case strings.HasSuffix(s, ",X)"):
			return IDX, nil
		case strings.HasSuffix(s, "),Y"):
			return IDY, nil
		case strings.HasSuffix(s, ")"):
			return IND, nil
		}
		return IMP, a.errorf(op, ErrUnknownAddressingPattern, "unterminated indirect operand '%s'", s)
	case strings.HasSuffix(s, ",X"):
		return indexed(ZPX, ABX), nil
	case strings.HasSuffix(s, ",Y"):
		return indexed(ZPY, ABY), nil
	case width == WidthWord:
		return ABS, nil
	case has(REL):
		return REL, nil
	case has(ZPG):
		return ZPG, nil
	}
	return ABS, nil
}

// Encode an instruction with a non-accumulator operand, returning the
// operand bytes that follow the opcode.
func (a *assembler) encodeOperand(row int, mnemonic, op fstring) (Instruction, []Byte, error) {
	bare := bareOperand(op)
	o, err := a.resolveOperand(mnemonic.str, bare)
	if err != nil {
		return Instruction{}, nil, err
	}

	m, err := a.selectMode(row, op, o.width)
	if err != nil {
		return Instruction{}, nil, err
	}

	inst, err := a.selectInstruction(row, mnemonic, m)
	if err != nil {
		return Instruction{}, nil, err
	}

	size := m.OperandSize()
	reserved := 1
	if o.width == WidthWord {
		reserved = 2
	}
	if reserved > size {
		return Instruction{}, nil, a.errorf(op, ErrUnknownAddressingPattern,
			"operand '%s' does not fit in %s addressing", op.str, m)
	}

	var bytes []Byte
	switch {
	case o.label >= 0:
		bytes = append(bytes, Byte{Kind: LabelReference, Label: o.label, Size: reserved})
	case reserved == 2:
		bytes = append(bytes, literal(o.value.Low), literal(o.value.High))
	default:
		bytes = append(bytes, literal(o.value.Low))
	}

	// A one-byte value in a two-byte mode gets a zero high byte.
	if reserved < size {
		bytes = append(bytes, literal(0))
	}

	a.logLine(op, "mode=%s width=%s", m, o.width)
	return inst, bytes, nil
}
