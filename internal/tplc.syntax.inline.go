package internal

// InlineSyntax builds slot nodes from ${name|default}
type InlineSyntax struct{}

// NewInlineSyntax creates the inline slot syntax
func NewInlineSyntax() *InlineSyntax {
	return &InlineSyntax{}
}

// Handles reports whether the token is an inline slot
func (i *InlineSyntax) Handles(t Token) bool {
	return t.Type == TokenTypeInline
}

// Handle pushes a slot whose default is the literal default text
func (i *InlineSyntax) Handle(asm *Assembler, t Token) error {
	name, _ := t.Child(TokenTypeInlineName)
	slot := NewSlotNode(name.Value, nil, t.Position, asm.Context())
	slot.Inline = true
	if def, ok := t.Child(TokenTypeInlineDefault); ok {
		slot.Children = []Node{NewTextNode(def.Value, def.Position, asm.Context())}
	}
	asm.Push(slot)
	return nil
}
