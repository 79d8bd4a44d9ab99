// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds returned by the assembler. Use errors.Cause or errors.Is
// to test an error returned by Assemble against one of these.
var (
	ErrUnreadableInput          = errors.New("unreadable input file")
	ErrMalformedLiteral         = errors.New("malformed literal")
	ErrUnknownOpcode            = errors.New("unknown opcode")
	ErrUnknownAddressingPattern = errors.New("unknown addressing pattern")
	ErrAmbiguousOperandWidth    = errors.New("ambiguous operand width")
	ErrDuplicateSymbol          = errors.New("duplicate symbol")
)

// An Error describes a failure at a specific position in the source.
type Error struct {
	Kind   error  // one of the Err* kinds
	File   string // source file name
	Row    int    // 1-based line number, 0 if unknown
	Column int    // 1-based column, 0 if unknown
	Msg    string // detail
}

func (e *Error) Error() string {
	switch {
	case e.File == "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	case e.Row == 0:
		return fmt.Sprintf("%s: %v: %s", e.File, e.Kind, e.Msg)
	default:
		return fmt.Sprintf("%s:%d:%d: %v: %s", e.File, e.Row, e.Column, e.Kind, e.Msg)
	}
}

// Cause returns the error kind.
func (e *Error) Cause() error { return e.Kind }

// Unwrap returns the error kind.
func (e *Error) Unwrap() error { return e.Kind }

// Build an error of the requested kind that has no position yet.
func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Attach a source position to an error returned by one of the decoding
// helpers.
func (a *assembler) errorAt(l fstring, err error) error {
	e, ok := err.(*Error)
	if !ok {
		e = &Error{Kind: err}
	}
	e.File, e.Row, e.Column = a.filename, l.row, l.column+1
	a.logLine(l, "error=%v", e.Kind)
	return e
}

// Build a positioned error of the requested kind.
func (a *assembler) errorf(l fstring, kind error, format string, args ...any) error {
	return a.errorAt(l, newError(kind, format, args...))
}
