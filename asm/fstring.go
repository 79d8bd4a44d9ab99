// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// An fstring is a string that keeps track of its position within the
// source line from which it was read.
type fstring struct {
	row    int    // 1-based line number of substring
	column int    // 0-based column of start of substring
	str    string // the actual substring of interest
	full   string // the full line as originally read
}

func newFstring(row int, str string) fstring {
	return fstring{row, 0, str, str}
}

func (l fstring) String() string {
	return l.str
}

func (l *fstring) advanceColumn(n int) int {
	c := l.column
	for i := 0; i < n; i++ {
		if l.str[i] == '\t' {
			c += 8 - (c % 8)
		} else {
			c++
		}
	}
	return c
}

func (l fstring) consume(n int) fstring {
	col := l.advanceColumn(n)
	return fstring{l.row, col, l.str[n:], l.full}
}

func (l fstring) trunc(n int) fstring {
	return fstring{l.row, l.column, l.str[:n], l.full}
}

func (l *fstring) isEmpty() bool {
	return len(l.str) == 0
}

func (l *fstring) startsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[0] == c
}

func (l *fstring) endsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[len(l.str)-1] == c
}

func (l *fstring) contains(c byte) bool {
	return strings.IndexByte(l.str, c) >= 0
}

func (l fstring) consumeWhitespace() fstring {
	return l.consume(l.scanWhile(whitespace))
}

func (l *fstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && fn(l.str[i]); i++ {
	}
	return i
}

func (l *fstring) scanUntilChar(c byte) int {
	i := 0
	for ; i < len(l.str) && l.str[i] != c; i++ {
	}
	return i
}

func (l *fstring) consumeWhile(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanWhile(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l *fstring) consumeUntilChar(c byte) (consumed, remain fstring) {
	i := l.scanUntilChar(c)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

// Strip the comment and any trailing whitespace from the line.
func (l fstring) stripTrailingComment() fstring {
	s := l.trunc(l.scanUntilChar(';'))
	return s.trunc(len(strings.TrimRight(s.str, " \t\r")))
}

// Trim leading and trailing whitespace.
func (l fstring) trim() fstring {
	l = l.consumeWhitespace()
	return l.trunc(len(strings.TrimRight(l.str, " \t\r")))
}

// Split the line into whitespace-separated words.
func (l fstring) words() []fstring {
	var words []fstring
	remain := l.consumeWhitespace()
	for !remain.isEmpty() {
		var w fstring
		w, remain = remain.consumeWhile(wordChar)
		words = append(words, w)
		remain = remain.consumeWhitespace()
	}
	return words
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func wordChar(c byte) bool {
	return !whitespace(c)
}

func decimal(c byte) bool {
	return (c >= '0' && c <= '9')
}

func octal(c byte) bool {
	return (c >= '0' && c <= '7')
}
