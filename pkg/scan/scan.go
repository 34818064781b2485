// Package scan provides a cursor over a single source line and the
// character-level predicates the grammar is built from.
//
// Cursors are values. A predicate never mutates its argument; it returns the
// advanced cursor together with whether it matched.
package scan

import (
	"errors"
	"strconv"
	"strings"
)

// Cursor is a read position inside one line.
type Cursor struct {
	line string
	pos  int
}

// New returns a cursor at the start of line.
func New(line string) Cursor {
	return Cursor{line: line}
}

// Line returns the whole line the cursor reads.
func (c Cursor) Line() string { return c.line }

// Pos returns the index of the next unread byte.
func (c Cursor) Pos() int { return c.pos }

// Rest returns the unread part of the line.
func (c Cursor) Rest() string { return c.line[c.pos:] }

// AtEnd reports whether every byte has been consumed.
func (c Cursor) AtEnd() bool { return c.pos >= len(c.line) }

// Peek returns the next byte, or 0 at the end of the line.
func (c Cursor) Peek() byte {
	if c.pos >= len(c.line) {
		return 0
	}
	return c.line[c.pos]
}

// Prev returns the most recently consumed byte, or 0 at the start.
func (c Cursor) Prev() byte {
	if c.pos == 0 || c.pos > len(c.line) {
		return 0
	}
	return c.line[c.pos-1]
}

// Advance moves the cursor n bytes forward, stopping at the end of the line.
func (c Cursor) Advance(n int) Cursor {
	c.pos += n
	if c.pos > len(c.line) {
		c.pos = len(c.line)
	}
	return c
}

// Seek returns a cursor on the same line at pos.
func (c Cursor) Seek(pos int) Cursor {
	if pos < 0 {
		pos = 0
	}
	if pos > len(c.line) {
		pos = len(c.line)
	}
	c.pos = pos
	return c
}

// Since returns the text between from and the cursor.
func (c Cursor) Since(from int) string {
	if from < 0 || from > c.pos {
		return ""
	}
	return c.line[from:c.pos]
}

// SkipEnd moves the cursor to the end of the line.
func (c Cursor) SkipEnd() Cursor {
	c.pos = len(c.line)
	return c
}

// Predicate tests the input at a cursor and consumes what it matched.
type Predicate func(c Cursor) (Cursor, bool)

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func IsAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsAlnum(b byte) bool {
	return IsAlpha(b) || IsDigit(b)
}

func IsPrint(b byte) bool {
	return b >= 0x20 && b < 0x7F
}

// Spacing consumes one or more blanks, stopping at a newline.
func Spacing(c Cursor) (Cursor, bool) {
	b := c.Peek()
	if !isSpace(b) || b == '\n' {
		return c, false
	}
	return SkipSpacing(c), true
}

// SkipSpacing consumes zero or more blanks, stopping at a newline.
func SkipSpacing(c Cursor) Cursor {
	for !c.AtEnd() && isSpace(c.Peek()) && c.Peek() != '\n' {
		c.pos++
	}
	return c
}

// End matches when only whitespace remains and consumes it.
func End(c Cursor) (Cursor, bool) {
	p := c.pos
	for p < len(c.line) && isSpace(c.line[p]) {
		p++
	}
	if p != len(c.line) {
		return c, false
	}
	c.pos = p
	return c, true
}

// Always matches without consuming anything.
func Always(c Cursor) (Cursor, bool) {
	return c, true
}

// Char returns a predicate consuming the single byte ch.
func Char(ch byte) Predicate {
	return func(c Cursor) (Cursor, bool) {
		if c.AtEnd() || c.Peek() != ch {
			return c, false
		}
		return c.Advance(1), true
	}
}

// Keyword returns a predicate consuming kw when the input starts with it.
func Keyword(kw string) Predicate {
	return func(c Cursor) (Cursor, bool) {
		if !strings.HasPrefix(c.Rest(), kw) {
			return c, false
		}
		return c.Advance(len(kw)), true
	}
}

// Class returns a predicate consuming one byte accepted by ok.
func Class(ok func(byte) bool) Predicate {
	return func(c Cursor) (Cursor, bool) {
		if c.AtEnd() || !ok(c.Peek()) {
			return c, false
		}
		return c.Advance(1), true
	}
}

var (
	Alpha = Class(IsAlpha)
	Alnum = Class(IsAlnum)
	Print = Class(IsPrint)
)

// SkipAlnum consumes a run of letters and digits.
func SkipAlnum(c Cursor) Cursor {
	for !c.AtEnd() && IsAlnum(c.Peek()) {
		c.pos++
	}
	return c
}

var (
	// ErrNoDigits means no number starts at the cursor.
	ErrNoDigits = errors.New("no digits")
	// ErrRange means the number does not fit in 64 bits.
	ErrRange = errors.New("value out of range")
)

// Int reads a signed decimal integer the way C's strtol does with base 10:
// leading whitespace is skipped and an optional sign is accepted. On error
// the returned cursor is c unchanged.
func Int(c Cursor) (int64, Cursor, error) {
	p := c.pos
	for p < len(c.line) && isSpace(c.line[p]) {
		p++
	}
	start := p
	if p < len(c.line) && (c.line[p] == '+' || c.line[p] == '-') {
		p++
	}
	digits := p
	for p < len(c.line) && IsDigit(c.line[p]) {
		p++
	}
	if p == digits {
		return 0, c, ErrNoDigits
	}
	v, err := strconv.ParseInt(c.line[start:p], 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, c, ErrRange
		}
		return 0, c, err
	}
	return v, c.Seek(p), nil
}
