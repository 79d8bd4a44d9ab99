// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass 6502 assembler producing hex
// listings, annotated debug listings and binary ROM images.
//
// Assembly runs in three passes. The first collects statements, labels
// and constants. The second encodes each statement, choosing an
// addressing mode from the operand syntax and width and assigning label
// addresses as the program counter reaches them. References to labels
// are left as placeholders. The third resolves those placeholders into
// absolute addresses for JMP and JSR, and into relative displacements
// everywhere else.
package asm

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/k0kubun/pp/v3"
)

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose Option = 1 << iota // verbose output during assembly
)

// The assembler is a state object used during the assembly of
// machine code from assembly code.
type assembler struct {
	filename    string         // name used in error messages
	r           io.Reader      // the reader passed to Assemble
	origin      uint16         // initial program counter
	pc          uint16         // the program counter
	lines       []tokenLine    // collected statements
	labels      []Label        // label table
	labelIndex  map[string]int // label name -> label table index
	defines     []Define       // define table, in declaration order
	defineIndex map[string]int // define name -> define table index
	pending     []int          // labels waiting for their statement
	trailing    []int          // labels following the last statement
	program     *Program       // encoder output
	code        []byte         // resolved machine code
	out         io.Writer      // output used for verbose output
	verbose     bool           // verbose output
}

// Assembly contains the assembled program and its resolved machine
// code.
type Assembly struct {
	Program *Program // encoded lines, labels and defines
	Code    []byte   // resolved machine code
}

// Render produces the assembly in the requested output format.
func (a *Assembly) Render(f Format) ([]byte, error) {
	return a.Program.Render(f)
}

// WriteTo writes the assembly as a binary ROM image.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := io.WriteString(w, RomHeader)
	n = int64(nn)
	if err != nil {
		return n, err
	}
	nn, err = w.Write(a.Code)
	return n + int64(nn), err
}

// AssembleFile reads a file containing 6502 assembly code and assembles
// it. A file that can't be read fails with ErrUnreadableInput.
func AssembleFile(path string, origin uint16, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &Error{Kind: ErrUnreadableInput, File: path, Msg: err.Error()}
	}
	return Assemble(bytes.NewReader(b), path, origin, out, options)
}

// Assemble reads data from the provided stream and attempts to assemble
// it into 6502 byte code. Source text is case-insensitive. Assembly
// stops at the first error, in which case no assembly is returned.
func Assemble(r io.Reader, filename string, origin uint16, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = os.Stdout
	}

	a := &assembler{
		filename:    filename,
		r:           r,
		origin:      origin,
		labelIndex:  make(map[string]int),
		defineIndex: make(map[string]int),
		program:     &Program{Origin: origin},
		out:         out,
		verbose:     (options & Verbose) != 0,
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).collect, // Tokenize and collect labels and defines
		(*assembler).encode,  // Encode instructions, assign label addresses
		(*assembler).resolve, // Resolve label references
	}

	for _, step := range steps {
		if err := step(a); err != nil {
			return nil, nil, err
		}
	}

	assembly := &Assembly{Program: a.program, Code: a.code}
	return assembly, a.sourceMap(), nil
}

// Resolve label references and produce the final machine code.
func (a *assembler) resolve() error {
	a.logSection("Resolving labels")

	a.program.Labels = a.labels
	a.program.Defines = a.defines
	for _, l := range a.labels {
		a.log("%-15s Line:%-3d Addr:$%04X", l.Name, l.Line, l.Address)
	}

	resolved, err := a.program.Resolve()
	if err != nil {
		return err
	}

	a.logSection("Generating code")
	for i, b := range resolved {
		line := &a.program.Lines[i]
		if !line.Origin {
			a.log("%04X-   %-8s    %s", line.Address, HexBytes(b), line.Inst.Name)
		}
		a.code = append(a.code, b...)
	}
	return nil
}

// Build the source map for the assembled program.
func (a *assembler) sourceMap() *SourceMap {
	m := &SourceMap{
		Origin: a.program.Start(),
		Size:   uint32(len(a.code)),
		CRC:    crc32.ChecksumIEEE(a.code),
		Files:  []string{a.filename},
	}
	for _, line := range a.program.Lines {
		if !line.Origin {
			m.Lines = append(m.Lines, SourceLine{Address: int(line.Address), Line: line.Row})
		}
	}
	sort.SliceStable(m.Lines, func(i, j int) bool {
		return m.Lines[i].Address < m.Lines[j].Address
	})
	for _, l := range a.labels {
		m.Exports = append(m.Exports, Export{Label: l.Name, Address: l.Address})
	}
	m.Exports = sortExports(m.Exports)
	return m
}

// In verbose mode, log a string to the output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line
// of assembly code.
func (a *assembler) logLine(line fstring, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-3d %-3d | %-28s | %s\n", line.row, line.column+1, detail, line.full)
	}
}

// In verbose mode, log a section header to the output.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}

// In verbose mode, pretty-print a symbol table.
func (a *assembler) dump(name string, v any) {
	if a.verbose {
		a.logSection(name)
		printer := pp.New()
		printer.SetColoringEnabled(false)
		printer.Fprintln(a.out, v)
	}
}
