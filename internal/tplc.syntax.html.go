package internal

import "strings"

// voidTags never have children or a close tag
var voidTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidTag reports whether name is a void element
func IsVoidTag(name string) bool {
	return voidTags[strings.ToLower(name)]
}

// HTMLSyntax builds tag, raw-text body and markup comment nodes
type HTMLSyntax struct{}

// NewHTMLSyntax creates the markup syntax
func NewHTMLSyntax() *HTMLSyntax {
	return &HTMLSyntax{}
}

// Handles reports whether the token is markup
func (h *HTMLSyntax) Handles(t Token) bool {
	switch t.Type {
	case TokenTypeTag, TokenTypeVerbatim, TokenTypeComment:
		return true
	}
	return false
}

// Handle turns one markup token into nodes
func (h *HTMLSyntax) Handle(asm *Assembler, t Token) error {
	switch t.Type {
	case TokenTypeVerbatim:
		nodes, err := asm.Build(t.Children)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			asm.Push(n)
		}
		return nil

	case TokenTypeComment:
		body, _ := t.Child(TokenTypeCommentBody)
		asm.Push(NewCommentNode(body.Value, false, t.Position, asm.Context()))
		return nil
	}
	return h.handleTag(asm, t)
}

func (h *HTMLSyntax) handleTag(asm *Assembler, t Token) error {
	children := t.Children
	if len(children) < 3 {
		return asm.Fail(ParseErrorUnexpectedToken, ErrMsgUnexpectedToken, t.Value, t.Position)
	}
	name := children[1].Value
	last := children[len(children)-1]

	if children[0].Type == TokenTypeTagOpenShort {
		if IsVoidTag(name) {
			return nil
		}
		return asm.Close(name, t.Position)
	}

	attrs, err := h.buildAttrs(asm, children[2:len(children)-1])
	if err != nil {
		return err
	}

	selfClosing := last.Type == TokenTypeTagCloseShort
	ns, local, qualified := SplitQualifiedName(name)
	if qualified && ns == NamespaceBlock {
		slot := NewSlotNode(local, nil, t.Position, asm.Context())
		if selfClosing {
			asm.Push(slot)
			return nil
		}
		asm.Open(name, slot)
		return nil
	}

	tag := NewTagNode(name, attrs, t.Position, asm.Context())
	if selfClosing || IsVoidTag(name) {
		tag.Void = true
		asm.Push(tag)
		return nil
	}
	asm.Open(name, tag)
	return nil
}

// buildAttrs walks the tag head: keyword [= value] pairs separated by
// whitespace, plus dynamic regions placed directly in the head.
func (h *HTMLSyntax) buildAttrs(asm *Assembler, head []Token) ([]Attr, error) {
	var attrs []Attr
	var space string
	for i := 0; i < len(head); i++ {
		tok := head[i]
		switch tok.Type {
		case TokenTypeWhitespace:
			space += tok.Value
			continue

		case TokenTypeKeyword:
			attr := Attr{Name: tok.Value, Space: space, Pos: tok.Position}
			j := skipWhitespace(head, i+1)
			if j < len(head) && head[j].Type == TokenTypeEquals {
				j = skipWhitespace(head, j+1)
				if j < len(head) && head[j].Type == TokenTypeAttrValue {
					value, quote, err := h.buildValue(asm, head[j])
					if err != nil {
						return nil, err
					}
					attr.Value = value
					attr.Quote = quote
					i = j
				} else {
					// name= with nothing after it is an empty unquoted value
					attr.Value = []Node{}
					i = j - 1
				}
			}
			attrs = append(attrs, attr)
			space = ""

		case TokenTypeEquals, TokenTypeAttrValue:
			return nil, asm.Fail(ParseErrorUnexpectedToken, ErrMsgMalformedAttribute, tok.Value, tok.Position)

		default:
			nodes, err := asm.Build([]Token{tok})
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, Attr{Value: nodes, Space: space, Pos: tok.Position})
			space = ""
		}
	}
	return attrs, nil
}

// buildValue strips the quotes of an attribute value and builds its nodes
func (h *HTMLSyntax) buildValue(asm *Assembler, tok Token) ([]Node, byte, error) {
	inner := tok.Children
	var quote byte
	if len(inner) >= 2 && inner[0].Type == TokenTypeQuote {
		quote = inner[0].Value[0]
		inner = inner[1 : len(inner)-1]
	}
	nodes, err := asm.Build(inner)
	if err != nil {
		return nil, 0, err
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return nodes, quote, nil
}

func skipWhitespace(tokens []Token, i int) int {
	for i < len(tokens) && tokens[i].Type == TokenTypeWhitespace {
		i++
	}
	return i
}
