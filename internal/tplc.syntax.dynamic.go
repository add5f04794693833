package internal

import "strings"

// DynamicSyntax builds echo, directive and template comment nodes
type DynamicSyntax struct{}

// NewDynamicSyntax creates the dynamic syntax
func NewDynamicSyntax() *DynamicSyntax {
	return &DynamicSyntax{}
}

// Handles reports whether the token came from the dynamic grammar
func (d *DynamicSyntax) Handles(t Token) bool {
	switch t.Type {
	case TokenTypeEcho, TokenTypeRawEcho, TokenTypeDirective, TokenTypeTemplateComment, TokenTypeEscape, TokenTypeDeclare:
		return true
	}
	return false
}

// Handle turns one dynamic token into a node
func (d *DynamicSyntax) Handle(asm *Assembler, t Token) error {
	body, _ := t.Child(TokenTypeBody)

	switch t.Type {
	case TokenTypeEscape:
		asm.Push(NewTextNode(t.Value[1:], t.Position, asm.Context()))

	case TokenTypeDeclare:
		// Applied by the lexer, nothing to emit

	case TokenTypeTemplateComment:
		asm.Push(NewCommentNode(body.Value, true, t.Position, asm.Context()))

	case TokenTypeRawEcho:
		asm.Push(NewDynamicNode(strings.TrimSpace(body.Value), FilterRaw, t.Position, asm.Context()))

	case TokenTypeEcho:
		expr, filter := SplitFilter(body.Value, asm.Registry())
		asm.Push(NewDynamicNode(expr, filter, t.Position, asm.Context()))

	case TokenTypeDirective:
		return d.handleDirective(asm, t, body)
	}
	return nil
}

func (d *DynamicSyntax) handleDirective(asm *Assembler, t Token, body Token) error {
	nameTok, _ := t.Child(TokenTypeDirectiveName)
	spec, ok := asm.Registry().Directive(nameTok.Value)
	if !ok {
		return asm.Fail(ParseErrorUnexpectedToken, ErrMsgUnknownDirective, nameTok.Value, t.Position)
	}
	_, hasBody := t.Child(TokenTypeBodyOpen)
	switch {
	case spec.Body == BodyRequired && (!hasBody || strings.TrimSpace(body.Value) == ""):
		return asm.Fail(ParseErrorUnexpectedToken, ErrMsgDirectiveNoBody, spec.Name, t.Position)
	case spec.Body == BodyForbidden && hasBody:
		return asm.Fail(ParseErrorUnexpectedToken, ErrMsgDirectiveBody, spec.Name, t.Position)
	}
	asm.Push(NewDirectiveNode(spec.Name, strings.TrimSpace(body.Value), hasBody, t.Position, asm.Context()))
	return nil
}

// SplitFilter separates a trailing "| name" output filter from an
// expression. The pipe must sit at nesting depth zero outside quotes and
// name must be a registered filter; otherwise the expression is unchanged.
func SplitFilter(body string, registry *Registry) (string, string) {
	expr := strings.TrimSpace(body)
	pipe := lastTopLevelPipe(expr)
	if pipe < 0 {
		return expr, ""
	}
	name := strings.TrimSpace(expr[pipe+1:])
	if _, ok := registry.Filter(name); !ok {
		return expr, ""
	}
	return strings.TrimSpace(expr[:pipe]), name
}

func lastTopLevelPipe(expr string) int {
	s := NewStringStream(expr)
	depth := 0
	last := -1
	for !s.AtEnd() {
		ch := s.Peek()
		switch {
		case isQuote(ch):
			if !skipQuoted(s) {
				return -1
			}
			continue
		case ch == CharParenOpen || ch == CharBrackOpen || ch == CharBraceOpen:
			depth++
		case ch == CharParenClose || ch == CharBrackClose || ch == CharBraceClose:
			if depth > 0 {
				depth--
			}
		case ch == CharPipe && depth == 0:
			if s.PeekAt(1) == CharPipe {
				s.NextN(2)
				continue
			}
			last = s.Offset()
		}
		s.Next()
	}
	return last
}
