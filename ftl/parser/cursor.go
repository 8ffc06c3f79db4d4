package parser

import (
	"strings"
	"unicode/utf8"
)

// EOF is the sentinel rune returned by Cursor.Peek past the end of the source
const EOF rune = -1

// EOL is the canonical line terminator; CRLF sequences are treated as one EOL
const EOL rune = '\n'

// A Cursor is an immutable position inside a source string. Every operation
// returns a new Cursor instead of mutating the receiver, so a parsing loop
// that forgets to reassign its cursor simply stops progressing instead of
// corrupting shared state.
type Cursor struct {
	source string
	pos    int
}

// NewCursor creates a cursor pointing at the beginning of the given source
func NewCursor(source string) Cursor {
	return Cursor{source: source}
}

// Pos returns the byte offset the cursor points at
func (cur Cursor) Pos() int {
	return cur.pos
}

// Source returns the underlying source string
func (cur Cursor) Source() string {
	return cur.source
}

// EOF returns whether the cursor points past the last character of the source
func (cur Cursor) EOF() bool {
	return cur.pos >= len(cur.source)
}

// Current returns the rune the cursor points at.
// Calling Current on an exhausted cursor is a programming error; callers have
// to check EOF first or use Peek.
func (cur Cursor) Current() rune {
	if cur.EOF() {
		panic("parser: Cursor.Current called at EOF")
	}
	char, _ := utf8.DecodeRuneInString(cur.source[cur.pos:])
	return char
}

// Peek returns the rune starting at the given byte offset from the current
// position, or EOF if the offset points past the end of the source.
func (cur Cursor) Peek(offset int) rune {
	index := cur.pos + offset
	if index < 0 || index >= len(cur.source) {
		return EOF
	}
	char, _ := utf8.DecodeRuneInString(cur.source[index:])
	return char
}

// Advance returns a cursor moved n bytes forward, clamped to the end of the
// source. Advancing by a non-positive amount returns the cursor unchanged.
func (cur Cursor) Advance(n int) Cursor {
	if n <= 0 {
		return cur
	}
	target := cur.pos + n
	if target > len(cur.source) {
		target = len(cur.source)
	}
	return Cursor{source: cur.source, pos: target}
}

// Slice returns the source text between the two byte offsets
func (cur Cursor) Slice(from, to int) string {
	return cur.source[from:to]
}

// LineCol computes the 1-based line and column of the cursor position.
// The column counts runes, not bytes. This is O(n) and only meant for
// diagnostics, never for the parsing hot path.
func (cur Cursor) LineCol() (line, col int) {
	before := cur.source[:cur.pos]
	line = strings.Count(before, "\n") + 1
	lastEOL := strings.LastIndexByte(before, '\n')
	col = utf8.RuneCountInString(before[lastEOL+1:]) + 1
	return line, col
}
