// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler for assembled machine code.
package disasm

import (
	"fmt"
	"io"

	"github.com/beevik/asm6502/asm"
)

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice,
// most significant byte first.
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

// Disassemble the instruction found in 'code' at address 'addr', where
// code[0] is loaded at 'origin'. Return a 'line' string representing the
// disassembled instruction and a 'next' address that starts the
// following line of machine code. Bytes that don't start a documented
// instruction, or an instruction cut short by the end of the code, are
// shown as a .DB directive.
func Disassemble(code []byte, origin, addr uint16) (line string, next uint16) {
	i := int(addr) - int(origin)
	if i < 0 || i >= len(code) {
		return "", addr
	}

	opcode := code[i]
	inst, ok := asm.LookupOpcode(opcode)
	if !ok || i+inst.Length() > len(code) {
		return fmt.Sprintf(".DB $%02X", opcode), addr + 1
	}

	operand := code[i+1 : i+inst.Length()]
	if inst.Mode == asm.REL {
		// Convert relative offset to absolute address.
		braddr := int(addr) + inst.Length() + int(int8(operand[0]))
		operand = []byte{byte(braddr & 0xff), byte(braddr >> 8)}
	}

	switch inst.Mode {
	case asm.IMP:
		line = inst.Name
	case asm.ACC:
		line = inst.Name + " A"
	default:
		line = inst.Name + " " + fmt.Sprintf(asm.ModeFormat[inst.Mode], hexString(operand))
	}
	next = addr + uint16(inst.Length())
	return
}

// Write disassembles up to 'count' instructions starting at 'addr' and
// writes one listing line per instruction. A count of zero or less
// disassembles through the end of the code. Return the address following
// the last instruction written.
func Write(w io.Writer, code []byte, origin, addr uint16, count int) (uint16, error) {
	end := int(origin) + len(code)
	for n := 0; (count <= 0 || n < count) && int(addr) < end && addr >= origin; n++ {
		line, next := Disassemble(code, origin, addr)
		b := code[int(addr)-int(origin) : int(next)-int(origin)]
		_, err := fmt.Fprintf(w, "%04X-   %-8s    %s\n", addr, asm.HexBytes(b), line)
		if err != nil {
			return addr, err
		}
		if next < addr {
			return next, nil
		}
		addr = next
	}
	return addr, nil
}
