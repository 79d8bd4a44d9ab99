// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

var hex = "0123456789ABCDEF"

// HexBytes formats a byte slice as space-separated hexadecimal pairs.
func HexBytes(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) * 3)
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(hex[v>>4])
		sb.WriteByte(hex[v&0x0f])
	}
	return sb.String()
}
