package internal

import (
	"fmt"
	"strings"
)

// Position represents a location in the source template
type Position struct {
	Offset int // Byte offset from start
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String returns a human-readable position string
func (p Position) String() string {
	return fmt.Sprintf(ErrFmtLineColumn, p.Line, p.Column)
}

// IsZero reports whether the position was never set
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Column == 0 && p.Offset == 0
}

// Token represents a lexical token produced by a grammar.
// Composite tokens (a whole tag, an echo region) keep their pieces in Children;
// the concatenated raw values of the children equal Value.
type Token struct {
	Type     TokenType // The type of token
	Value    string    // Raw source text covered by the token
	Position Position  // Position of the first byte
	Children []Token   // Sub-tokens of a composite region
}

// String returns a human-readable representation of the token
func (t Token) String() string {
	if t.Value == "" {
		return fmt.Sprintf("Token{%s @ %s}", t.Type, t.Position)
	}
	return fmt.Sprintf("Token{%s: %q @ %s}", t.Type, t.Value, t.Position)
}

// End returns the offset right after the token
func (t Token) End() int {
	return t.Position.Offset + len(t.Value)
}

// IsText returns true if this is a text token
func (t Token) IsText() bool {
	return t.Type == TokenTypeText
}

// Child returns the first child of the given type
func (t Token) Child(tokenType TokenType) (Token, bool) {
	for _, c := range t.Children {
		if c.Type == tokenType {
			return c, true
		}
	}
	return Token{}, false
}

// NewToken creates a new token with the given type, value, and position
func NewToken(tokenType TokenType, value string, pos Position) Token {
	return Token{
		Type:     tokenType,
		Value:    value,
		Position: pos,
	}
}

// NewTextToken creates a text token with the given content
func NewTextToken(content string, pos Position) Token {
	return Token{
		Type:     TokenTypeText,
		Value:    content,
		Position: pos,
	}
}

// NewCompositeToken packs children into one region token
func NewCompositeToken(tokenType TokenType, children []Token) Token {
	if len(children) == 0 {
		return Token{Type: tokenType}
	}
	var sb strings.Builder
	for _, c := range children {
		sb.WriteString(c.Value)
	}
	return Token{
		Type:     tokenType,
		Value:    sb.String(),
		Position: children[0].Position,
		Children: children,
	}
}
