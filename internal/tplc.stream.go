package internal

import "strings"

// StringStream is a forward cursor over template source that tracks
// line and column as it advances.
type StringStream struct {
	source string
	pos    int
	line   int
	column int
}

// Mark is a saved cursor state
type Mark struct {
	pos    int
	line   int
	column int
}

// NewStringStream creates a stream positioned at the first byte
func NewStringStream(source string) *StringStream {
	return &StringStream{source: source, line: 1, column: 1}
}

// Source returns the full source text
func (s *StringStream) Source() string {
	return s.source
}

// Position returns the current position
func (s *StringStream) Position() Position {
	return Position{Offset: s.pos, Line: s.line, Column: s.column}
}

// Offset returns the current byte offset
func (s *StringStream) Offset() int {
	return s.pos
}

// AtEnd reports whether the whole source was consumed
func (s *StringStream) AtEnd() bool {
	return s.pos >= len(s.source)
}

// Peek returns the current byte without advancing, 0 at the end
func (s *StringStream) Peek() byte {
	return s.PeekAt(0)
}

// PeekAt returns the byte n positions ahead, 0 past the end
func (s *StringStream) PeekAt(n int) byte {
	if s.pos+n >= len(s.source) || s.pos+n < 0 {
		return 0
	}
	return s.source[s.pos+n]
}

// HasPrefix reports whether the remaining source starts with prefix
func (s *StringStream) HasPrefix(prefix string) bool {
	return prefix != "" && strings.HasPrefix(s.source[s.pos:], prefix)
}

// HasPrefixFold is HasPrefix ignoring ASCII case
func (s *StringStream) HasPrefixFold(prefix string) bool {
	if len(s.source)-s.pos < len(prefix) {
		return false
	}
	return strings.EqualFold(s.source[s.pos:s.pos+len(prefix)], prefix)
}

// Next consumes and returns the current byte
func (s *StringStream) Next() byte {
	if s.AtEnd() {
		return 0
	}
	ch := s.source[s.pos]
	s.pos++
	if ch == CharNewline {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return ch
}

// NextN consumes n bytes and returns them
func (s *StringStream) NextN(n int) string {
	start := s.pos
	for i := 0; i < n && !s.AtEnd(); i++ {
		s.Next()
	}
	return s.source[start:s.pos]
}

// Slice returns the source between two offsets
func (s *StringStream) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(s.source) {
		to = len(s.source)
	}
	if from >= to {
		return ""
	}
	return s.source[from:to]
}

// Mark saves the cursor
func (s *StringStream) Mark() Mark {
	return Mark{pos: s.pos, line: s.line, column: s.column}
}

// Reset restores a saved cursor
func (s *StringStream) Reset(m Mark) {
	s.pos = m.pos
	s.line = m.line
	s.column = m.column
}

// Character classification helpers

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isWhitespace(ch byte) bool {
	return ch == CharSpace || ch == CharTab || ch == CharNewline || ch == CharCarriageRet || ch == CharFormFeed
}

// isKeywordChar matches tag, attribute, directive and slot names
func isKeywordChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '-' || ch == ':' || ch == '.'
}

func isQuote(ch byte) bool {
	return ch == CharDoubleQuote || ch == CharSingleQuote || ch == CharBacktick
}
