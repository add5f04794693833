package internal

// InlineGrammar recognizes ${name} and ${name|default} insertion points.
// Anything that does not fit the form is declined and stays text.
type InlineGrammar struct{}

// NewInlineGrammar creates the inline slot grammar
func NewInlineGrammar() *InlineGrammar {
	return &InlineGrammar{}
}

// Name returns the grammar name
func (g *InlineGrammar) Name() string {
	return GrammarNameInline
}

// Starts reports whether "${" opens at the cursor
func (g *InlineGrammar) Starts(s *StringStream, _ *LexRun) bool {
	return s.HasPrefix(StrInlineOpen)
}

// Scan consumes one inline slot or declines
func (g *InlineGrammar) Scan(s *StringStream, _ *LexRun) ([]Token, error) {
	start := s.Position()
	children := []Token{NewToken(TokenTypeInlineOpen, s.NextN(len(StrInlineOpen)), start)}

	namePos := s.Position()
	from := s.Offset()
	for !s.AtEnd() && isKeywordChar(s.Peek()) {
		s.Next()
	}
	if s.Offset() == from {
		return nil, nil
	}
	children = append(children, NewToken(TokenTypeInlineName, s.Slice(from, s.Offset()), namePos))

	if s.Peek() == CharPipe {
		sepPos := s.Position()
		children = append(children, NewToken(TokenTypeInlineSep, s.NextN(1), sepPos))
		defPos := s.Position()
		defFrom := s.Offset()
		for !s.AtEnd() && s.Peek() != CharBraceClose && s.Peek() != CharNewline {
			s.Next()
		}
		if def := s.Slice(defFrom, s.Offset()); def != "" {
			children = append(children, NewToken(TokenTypeInlineDefault, def, defPos))
		}
	}

	if s.Peek() != CharBraceClose {
		return nil, nil
	}
	closePos := s.Position()
	children = append(children, NewToken(TokenTypeInlineClose, s.NextN(1), closePos))
	return []Token{NewCompositeToken(TokenTypeInline, children)}, nil
}
