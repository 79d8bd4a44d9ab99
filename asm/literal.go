// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strconv"

// A Width classifies how many bytes a literal, constant or label
// reference occupies in an operand.
type Width byte

// Operand widths.
const (
	WidthUnknown Width = iota
	WidthByte
	WidthWord
)

var widthName = []string{"unknown", "one-byte", "two-byte"}

func (w Width) String() string {
	return widthName[w]
}

// A Value is a two-byte literal, constant or address.
type Value struct {
	Low  byte
	High byte
}

// Word returns the value as a 16-bit number.
func (v Value) Word() uint16 {
	return uint16(v.High)<<8 | uint16(v.Low)
}

func wordValue(w uint16) Value {
	return Value{Low: byte(w), High: byte(w >> 8)}
}

// Return true if every character in s satisfies fn.
func allChars(s string, fn func(c byte) bool) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !fn(s[i]) {
			return false
		}
	}
	return true
}

// Return true if the token is a leading-zero octal literal of one of
// the two recognized lengths.
func isOctal(s string) bool {
	return (len(s) == 4 || len(s) == 7) && s[0] == '0' && allChars(s[1:], octal)
}

// literalWidth classifies a numeric token by its prefix and length
// without decoding it.
func literalWidth(s string) Width {
	switch {
	case len(s) == 0:
		return WidthUnknown
	case s[0] == '$':
		switch len(s) {
		case 3:
			return WidthByte
		case 5:
			return WidthWord
		}
		return WidthUnknown
	case s[0] == '%':
		switch len(s) {
		case 9:
			return WidthByte
		case 17:
			return WidthWord
		}
		return WidthUnknown
	case isOctal(s):
		if len(s) == 4 {
			return WidthByte
		}
		return WidthWord
	case allChars(s, decimal):
		v, err := strconv.ParseUint(s, 10, 32)
		switch {
		case err != nil:
			return WidthUnknown
		case v <= 0xff:
			return WidthByte
		default:
			return WidthWord
		}
	}
	return WidthUnknown
}

// looksNumeric reports whether the token starts like a literal rather
// than a symbol name.
func looksNumeric(s string) bool {
	return len(s) > 0 && (s[0] == '$' || s[0] == '%' || decimal(s[0]))
}

func malformed(s string) error {
	return newError(ErrMalformedLiteral, "'%s'", s)
}

// decodeByte decodes a one-byte literal into the low byte of a Value.
func decodeByte(s string) (Value, error) {
	var v uint64
	var err error
	switch {
	case len(s) == 3 && s[0] == '$':
		v, err = strconv.ParseUint(s[1:], 16, 8)
	case len(s) == 9 && s[0] == '%':
		v, err = strconv.ParseUint(s[1:], 2, 8)
	case len(s) == 4 && s[0] == '0' && allChars(s[1:], octal):
		v, err = strconv.ParseUint(s[1:], 8, 8)
	case allChars(s, decimal):
		v, err = strconv.ParseUint(s, 10, 8)
	default:
		return Value{}, malformed(s)
	}
	if err != nil {
		return Value{}, malformed(s)
	}
	return Value{Low: byte(v)}, nil
}

// decodeWord decodes a two-byte literal. Plain decimal literals are
// split into a high part of value/16 and a low part of value%16, which
// is how existing listings were produced.
func decodeWord(s string) (Value, error) {
	switch {
	case len(s) == 5 && s[0] == '$':
		hi, err1 := strconv.ParseUint(s[1:3], 16, 8)
		lo, err2 := strconv.ParseUint(s[3:5], 16, 8)
		if err1 != nil || err2 != nil {
			return Value{}, malformed(s)
		}
		return Value{Low: byte(lo), High: byte(hi)}, nil

	case len(s) == 17 && s[0] == '%':
		hi, err1 := strconv.ParseUint(s[1:9], 2, 8)
		lo, err2 := strconv.ParseUint(s[9:17], 2, 8)
		if err1 != nil || err2 != nil {
			return Value{}, malformed(s)
		}
		return Value{Low: byte(lo), High: byte(hi)}, nil

	case len(s) == 7 && s[0] == '0' && allChars(s[1:], octal):
		v, err := strconv.ParseUint(s[1:], 8, 16)
		if err != nil {
			return Value{}, malformed(s)
		}
		return wordValue(uint16(v)), nil

	case allChars(s, decimal):
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return Value{}, malformed(s)
		}
		return Value{Low: byte(v % 16), High: byte(v / 16)}, nil
	}
	return Value{}, malformed(s)
}

// decodeLiteral classifies and decodes a literal at its own width.
func decodeLiteral(s string) (Value, Width, error) {
	w := literalWidth(s)
	switch w {
	case WidthByte:
		v, err := decodeByte(s)
		return v, w, err
	case WidthWord:
		v, err := decodeWord(s)
		return v, w, err
	}
	if looksNumeric(s) {
		return Value{}, w, newError(ErrAmbiguousOperandWidth, "'%s'", s)
	}
	return Value{}, w, malformed(s)
}
