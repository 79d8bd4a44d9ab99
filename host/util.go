// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func stringToBool(s string) (bool, error) {
	s = strings.ToLower(s)
	switch s {
	case "0", "false", "off":
		return false, nil
	case "1", "true", "on":
		return true, nil
	default:
		return false, errors.Errorf("invalid bool value '%s'", s)
	}
}

// ParseNumber parses a 16-bit address or count. Hexadecimal values start
// with '$' or '0x'.
func ParseNumber(s string) (uint16, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, errors.Errorf("invalid number '%s'", s)
	}
	return uint16(v), nil
}

// Word-wrap a string to 80 columns, indenting every line.
func indentWrap(indent int, s string) string {
	const width = 80
	pad := strings.Repeat(" ", indent)

	var b strings.Builder
	col := 0
	for _, w := range strings.Fields(s) {
		switch {
		case col == 0:
			b.WriteString(pad)
			col = indent
		case col+1+len(w) > width:
			b.WriteString("\n")
			b.WriteString(pad)
			col = indent
		default:
			b.WriteByte(' ')
			col++
		}
		b.WriteString(w)
		col += len(w)
	}
	return b.String()
}
