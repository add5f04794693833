package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringStream_TracksLineAndColumn(t *testing.T) {
	s := NewStringStream("ab\ncd")

	assert.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, s.Position())
	assert.Equal(t, byte('a'), s.Next())
	assert.Equal(t, byte('b'), s.Next())
	assert.Equal(t, Position{Offset: 2, Line: 1, Column: 3}, s.Position())
	assert.Equal(t, byte('\n'), s.Next())
	assert.Equal(t, Position{Offset: 3, Line: 2, Column: 1}, s.Position())
	assert.Equal(t, "cd", s.NextN(5))
	assert.True(t, s.AtEnd())
	assert.Equal(t, byte(0), s.Next())
	assert.Equal(t, Position{Offset: 5, Line: 2, Column: 3}, s.Position())
}

func TestStringStream_Peek(t *testing.T) {
	s := NewStringStream("xyz")

	assert.Equal(t, byte('x'), s.Peek())
	assert.Equal(t, byte('z'), s.PeekAt(2))
	assert.Equal(t, byte(0), s.PeekAt(3))
	assert.Equal(t, byte(0), s.PeekAt(-1))
	assert.Equal(t, 0, s.Offset(), "peeking must not advance")
}

func TestStringStream_HasPrefix(t *testing.T) {
	s := NewStringStream("<SCRIPT>")

	assert.True(t, s.HasPrefix("<S"))
	assert.False(t, s.HasPrefix("<s"))
	assert.False(t, s.HasPrefix(""))
	assert.True(t, s.HasPrefixFold("<script"))
	assert.False(t, s.HasPrefixFold("<scripts>x"))
}

func TestStringStream_MarkReset(t *testing.T) {
	s := NewStringStream("line1\nline2")
	s.NextN(3)
	mark := s.Mark()
	s.NextN(5)
	assert.Equal(t, 2, s.Position().Line)

	s.Reset(mark)
	assert.Equal(t, Position{Offset: 3, Line: 1, Column: 4}, s.Position())
}

func TestStringStream_Slice(t *testing.T) {
	s := NewStringStream("abcdef")

	tests := []struct {
		name     string
		from, to int
		expected string
	}{
		{"inside", 1, 3, "bc"},
		{"clamped start", -4, 2, "ab"},
		{"clamped end", 4, 100, "ef"},
		{"empty range", 3, 3, ""},
		{"reversed range", 4, 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Slice(tt.from, tt.to))
		})
	}
}
