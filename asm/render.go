// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// A Format selects the output produced by Render.
type Format byte

// Output formats.
const (
	FormatHex    Format = iota // space-separated hex bytes
	FormatDebug                // annotated listing, one statement per line
	FormatBinary               // ROM header followed by raw bytes
)

// RomHeader is the magic string that starts a binary ROM image.
const RomHeader = "6502ROM..."

// A Program is the output of the encoder: every emitted line, the label
// table with final addresses, and the define table.
type Program struct {
	Origin  uint16 // initial location counter
	Lines   []Line
	Labels  []Label
	Defines []Define
}

// Label returns the label with the requested name.
func (p *Program) Label(name string) (Label, bool) {
	for _, l := range p.Labels {
		if l.Name == name {
			return l, true
		}
	}
	return Label{}, false
}

// Start returns the address of the first emitted byte.
func (p *Program) Start() uint16 {
	pc := p.Origin
	for _, line := range p.Lines {
		if !line.Origin {
			return line.Address
		}
		pc = line.Address
	}
	return pc
}

// Opcodes whose label operands are absolute addresses.
func jumpOpcode(op byte) bool {
	return op == 0x4c || op == 0x6c || op == 0x20
}

// Compute the one-byte displacement written for a label reference
// outside a jump instruction. 'origin' is the stream offset of the
// displacement byte itself; all arithmetic wraps at 8 bits.
func relDisplacement(target, origin uint16) byte {
	t, o := int8(target), int8(origin)
	switch {
	case target < origin:
		return byte(t - (o - 1) - 2)
	case target == origin:
		return 0
	default:
		return byte(t - o - 1)
	}
}

// Split an absolute label address into its low and high bytes the way
// existing listings do it.
func splitAddress(addr uint16) (lo, hi byte) {
	return byte(addr % 0xff), byte(addr / 0xff)
}

// Resolve replaces every label reference with its final bytes and
// returns the bytes of each line. Origin lines resolve to no bytes.
//
// Displacements are measured from the offset of the displacement byte
// in the emitted stream, counted from 0. Neither the initial origin nor
// origin lines move that counter, which keeps branch bytes identical to
// existing listings.
func (p *Program) Resolve() ([][]byte, error) {
	resolved := make([][]byte, len(p.Lines))
	var pc uint16
	for i, line := range p.Lines {
		if line.Origin {
			continue
		}

		jump := len(line.Bytes) > 0 && line.Bytes[0].Kind == LiteralByte && jumpOpcode(line.Bytes[0].Value)

		b := make([]byte, 0, 3)
		for _, t := range line.Bytes {
			switch {
			case t.Kind == LiteralByte:
				b = append(b, t.Value)
				pc++

			case jump:
				if t.Size != 2 {
					return nil, errors.Errorf("line %d: jump target reserved %d bytes", line.Row, t.Size)
				}
				lo, hi := splitAddress(p.Labels[t.Label].Address)
				b = append(b, lo, hi)
				pc += 2

			default:
				if t.Size != 1 {
					return nil, errors.Errorf("line %d: branch target reserved %d bytes", line.Row, t.Size)
				}
				b = append(b, relDisplacement(p.Labels[t.Label].Address, pc))
				pc++
			}
		}
		resolved[i] = b
	}
	return resolved, nil
}

// Render produces the program's output in the requested format.
func (p *Program) Render(f Format) ([]byte, error) {
	resolved, err := p.Resolve()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if f == FormatBinary {
		buf.WriteString(RomHeader)
		for _, b := range resolved {
			buf.Write(b)
		}
		return buf.Bytes(), nil
	}

	debug := f == FormatDebug
	if debug {
		for _, d := range p.Defines {
			fmt.Fprintf(&buf, "     %-6s =   $%02X%02X\n", d.Name, d.Value.High, d.Value.Low)
		}
	}

	for i, line := range p.Lines {
		if line.Origin {
			buf.WriteString("* = ")
			continue
		}
		if debug {
			buf.WriteString(line.Annotation)
		}
		for _, v := range resolved[i] {
			buf.WriteByte(hex[v>>4])
			buf.WriteByte(hex[v&0x0f])
			buf.WriteByte(' ')
		}
		if debug {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
