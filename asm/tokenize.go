// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"strings"
)

// A Define is a named constant declared with `NAME = literal`.
type Define struct {
	Name  string
	Width Width
	Value Value
}

// A Label is a named program counter marker. Line is the index of the
// statement the label is attached to; Address is assigned when the
// encoder reaches that statement. Row is the source line declaring it.
type Label struct {
	Name    string
	Line    int
	Address uint16
	Row     int
}

// A token line is a single statement: either an origin directive or a
// mnemonic with an optional operand.
type tokenLine struct {
	row    int       // source line number
	origin bool      // location counter directive
	value  Value     // new location counter for origin directives
	words  []fstring // mnemonic followed by operands
	labels []int     // label table indices bound to this statement
}

// Pseudo-ops that set the location counter.
var originOps = map[string]bool{
	"ORG":  true,
	".ORG": true,
	".OR":  true,
}

// Read all source lines, building the token lines, the label table and
// the define table.
func (a *assembler) collect() error {
	a.logSection("Collecting symbols")

	scanner := bufio.NewScanner(a.r)
	row := 1
	for scanner.Scan() {
		line := newFstring(row, strings.ToUpper(scanner.Text()))
		if err := a.collectLine(line.stripTrailingComment()); err != nil {
			return err
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return &Error{Kind: ErrUnreadableInput, File: a.filename, Msg: err.Error()}
	}

	// Labels left pending at the end of the source mark the address
	// just past the last statement.
	a.trailing, a.pending = a.pending, nil
	for _, i := range a.trailing {
		a.labels[i].Line = len(a.lines)
	}

	a.dump("Labels", a.labels)
	a.dump("Defines", a.defines)
	return nil
}

// Classify and store a single comment-stripped source line.
func (a *assembler) collectLine(line fstring) error {
	words := line.words()
	if len(words) == 0 {
		return nil
	}

	if line.contains('=') {
		return a.collectAssignment(line)
	}

	// A lone word that isn't an opcode is a label declaration. It
	// attaches to the next statement.
	if len(words) == 1 && !isMnemonic(words[0].str) && !originOps[words[0].str] {
		return a.storeLabel(words[0])
	}

	// A leading word is a label when it carries a colon or when it is
	// followed by an opcode or pseudo-op.
	if !isMnemonic(words[0].str) && !originOps[words[0].str] {
		if words[0].endsWithChar(':') || isMnemonic(words[1].str) || originOps[words[1].str] {
			if err := a.storeLabel(words[0]); err != nil {
				return err
			}
			words = words[1:]
		}
	}

	if originOps[words[0].str] {
		if len(words) != 2 {
			return a.errorf(words[0], ErrMalformedLiteral, "%s requires a single address", words[0].str)
		}
		return a.collectOrigin(words[1])
	}

	tl := tokenLine{row: line.row, words: words, labels: a.pending}
	a.pending = nil
	for _, i := range tl.labels {
		a.labels[i].Line = len(a.lines)
	}
	a.logLine(line, "stmt=%d words=%d", len(a.lines), len(words))
	a.lines = append(a.lines, tl)
	return nil
}

// Parse a `name = literal` or `* = literal` line.
func (a *assembler) collectAssignment(line fstring) error {
	lhs, rhs := line.consumeUntilChar('=')
	lhs, rhs = lhs.trim(), rhs.consume(1).trim()

	// `* = addr`, optionally preceded by a label that takes the new
	// location.
	if lhs.contains('*') {
		words := lhs.words()
		switch {
		case len(words) == 1 && words[0].str == "*":
		case len(words) == 2 && words[1].str == "*":
			if err := a.storeLabel(words[0]); err != nil {
				return err
			}
		default:
			return a.errorf(lhs, ErrMalformedLiteral, "invalid origin directive '%s'", lhs.str)
		}
		return a.collectOrigin(rhs)
	}

	if lhs.isEmpty() || len(lhs.words()) != 1 {
		return a.errorf(line, ErrMalformedLiteral, "invalid constant name '%s'", lhs.str)
	}
	if a.symbolExists(lhs.str) {
		return a.errorf(lhs, ErrDuplicateSymbol, "'%s' defined more than once", lhs.str)
	}

	d := Define{Name: lhs.str}
	if i, ok := a.defineIndex[rhs.str]; ok {
		d.Width, d.Value = a.defines[i].Width, a.defines[i].Value
	} else {
		v, w, err := decodeLiteral(rhs.str)
		if err != nil {
			return a.errorAt(rhs, err)
		}
		d.Width, d.Value = w, v
	}

	a.logLine(line, "define=%s val=$%04X %s", d.Name, d.Value.Word(), d.Width)
	a.defineIndex[d.Name] = len(a.defines)
	a.defines = append(a.defines, d)
	return nil
}

// Store a location counter directive. Pending labels stay pending, so
// they take the new location.
func (a *assembler) collectOrigin(operand fstring) error {
	v, w, err := decodeLiteral(operand.str)
	if err != nil {
		return a.errorAt(operand, err)
	}
	if w == WidthByte {
		v.High = 0
	}

	a.logLine(operand, "origin=$%04X", v.Word())
	a.lines = append(a.lines, tokenLine{row: operand.row, origin: true, value: v})
	return nil
}

// Store a label into the label table and queue it for the next
// statement.
func (a *assembler) storeLabel(word fstring) error {
	name := strings.TrimSuffix(word.str, ":")
	if name == "" {
		return a.errorf(word, ErrMalformedLiteral, "empty label")
	}
	if a.symbolExists(name) {
		return a.errorf(word, ErrDuplicateSymbol, "label '%s' used more than once", name)
	}

	i := len(a.labels)
	a.labels = append(a.labels, Label{Name: name, Line: -1, Row: word.row})
	a.labelIndex[name] = i
	a.pending = append(a.pending, i)
	a.logLine(word, "label=%s", name)
	return nil
}

func (a *assembler) symbolExists(name string) bool {
	_, isLabel := a.labelIndex[name]
	_, isDefine := a.defineIndex[name]
	return isLabel || isDefine
}
