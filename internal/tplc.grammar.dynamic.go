package internal

import (
	"strings"
)

// DynamicGrammar recognizes escaped echo, raw echo, template comments,
// directives and their escapes. Delimiters come from the LexRun so that
// @declare can change them mid-stream.
type DynamicGrammar struct{}

// NewDynamicGrammar creates the dynamic grammar
func NewDynamicGrammar() *DynamicGrammar {
	return &DynamicGrammar{}
}

// Name returns the grammar name
func (g *DynamicGrammar) Name() string {
	return GrammarNameDynamic
}

// Starts reports whether a dynamic region or escape may open at the cursor
func (g *DynamicGrammar) Starts(s *StringStream, run *LexRun) bool {
	if s.Peek() == CharAt {
		return true
	}
	d := run.Delimiters()
	if d.Disabled {
		return false
	}
	return s.HasPrefix(d.EchoOpen) || s.HasPrefix(d.RawOpen)
}

// Scan consumes one dynamic region
func (g *DynamicGrammar) Scan(s *StringStream, run *LexRun) ([]Token, error) {
	if s.Peek() == CharAt {
		return g.scanAt(s, run)
	}

	d := run.Delimiters()
	switch {
	case s.HasPrefix(d.EchoOpen + "--"):
		return g.scanComment(s, run, d)
	case s.HasPrefix(d.RawOpen):
		return g.scanEcho(s, run, TokenTypeRawEcho, d.RawOpen, d.RawClose)
	default:
		return g.scanEcho(s, run, TokenTypeEcho, d.EchoOpen, d.EchoClose)
	}
}

func (g *DynamicGrammar) scanEcho(s *StringStream, run *LexRun, tokenType TokenType, open, closer string) ([]Token, error) {
	start := s.Position()
	children := []Token{NewToken(TokenTypeOpenDelim, s.NextN(len(open)), start)}

	bodyPos := s.Position()
	from := s.Offset()
	if !scanExpression(s, closer) {
		return nil, run.Unterminated(GrammarNameDynamic, ErrMsgUnterminatedEcho, start)
	}
	if body := s.Slice(from, s.Offset()); body != "" {
		children = append(children, NewToken(TokenTypeBody, body, bodyPos))
	}
	closePos := s.Position()
	children = append(children, NewToken(TokenTypeCloseDelim, s.NextN(len(closer)), closePos))
	return []Token{NewCompositeToken(tokenType, children)}, nil
}

func (g *DynamicGrammar) scanComment(s *StringStream, run *LexRun, d Delimiters) ([]Token, error) {
	start := s.Position()
	open := d.EchoOpen + "--"
	closer := "--" + d.EchoClose
	children := []Token{NewToken(TokenTypeOpenDelim, s.NextN(len(open)), start)}

	bodyPos := s.Position()
	from := s.Offset()
	for !s.AtEnd() && !s.HasPrefix(closer) {
		s.Next()
	}
	if s.AtEnd() {
		return nil, run.Unterminated(GrammarNameDynamic, ErrMsgUnterminatedComment, start)
	}
	if body := s.Slice(from, s.Offset()); body != "" {
		children = append(children, NewToken(TokenTypeBody, body, bodyPos))
	}
	closePos := s.Position()
	children = append(children, NewToken(TokenTypeCloseDelim, s.NextN(len(closer)), closePos))
	return []Token{NewCompositeToken(TokenTypeTemplateComment, children)}, nil
}

// scanAt handles '@': escapes, directives and @declare. Unknown names decline.
func (g *DynamicGrammar) scanAt(s *StringStream, run *LexRun) ([]Token, error) {
	start := s.Position()
	d := run.Delimiters()

	// @@ and @{{ / @{!! produce the literal text after the '@'
	if s.PeekAt(1) == CharAt {
		return []Token{NewToken(TokenTypeEscape, s.NextN(2), start)}, nil
	}
	s.Next()
	for _, delim := range []string{d.RawOpen, d.EchoOpen} {
		if !d.Disabled && s.HasPrefix(delim) {
			s.NextN(len(delim))
			return []Token{NewToken(TokenTypeEscape, s.Slice(start.Offset, s.Offset()), start)}, nil
		}
	}

	if !isLetter(s.Peek()) {
		return nil, nil
	}
	namePos := s.Position()
	from := s.Offset()
	for !s.AtEnd() && isDirectiveChar(s.Peek()) {
		s.Next()
	}
	name := s.Slice(from, s.Offset())
	if !run.HasDirective(name) {
		return nil, nil
	}

	children := []Token{
		NewToken(TokenTypeDirectiveChar, string(CharAt), start),
		NewToken(TokenTypeDirectiveName, name, namePos),
	}

	// Optional body, possibly after horizontal whitespace
	mark := s.Mark()
	wsPos := s.Position()
	wsFrom := s.Offset()
	for s.Peek() == CharSpace || s.Peek() == CharTab {
		s.Next()
	}
	if s.Peek() != CharParenOpen {
		s.Reset(mark)
		return g.finishDirective(run, name, children)
	}
	if ws := s.Slice(wsFrom, s.Offset()); ws != "" {
		children = append(children, NewToken(TokenTypeWhitespace, ws, wsPos))
	}

	openPos := s.Position()
	children = append(children, NewToken(TokenTypeBodyOpen, s.NextN(1), openPos))
	bodyPos := s.Position()
	bodyFrom := s.Offset()
	if !scanExpression(s, string(CharParenClose)) {
		return nil, run.Unterminated(GrammarNameDynamic, ErrMsgUnterminatedDirective, start)
	}
	if body := s.Slice(bodyFrom, s.Offset()); body != "" {
		children = append(children, NewToken(TokenTypeBody, body, bodyPos))
	}
	closePos := s.Position()
	children = append(children, NewToken(TokenTypeBodyClose, s.NextN(1), closePos))
	return g.finishDirective(run, name, children)
}

// finishDirective applies @declare to the run and packs the directive token
func (g *DynamicGrammar) finishDirective(run *LexRun, name string, children []Token) ([]Token, error) {
	if name != DirectiveDeclare {
		return []Token{NewCompositeToken(TokenTypeDirective, children)}, nil
	}
	tok := NewCompositeToken(TokenTypeDeclare, children)
	if body, ok := tok.Child(TokenTypeBody); ok {
		run.SetDelimiters(applyDeclare(run.Delimiters(), run.InitialDelimiters(), body.Value))
	}
	return []Token{tok}, nil
}

// applyDeclare interprets `key="value"` pairs of a @declare body
func applyDeclare(current, initial Delimiters, body string) Delimiters {
	opts := parseDeclareOptions(body)
	next := current
	switch opts[DeclareOptSyntax] {
	case DeclareSyntaxOff:
		next.Disabled = true
	case DeclareSyntaxDefault:
		next = initial
	}
	for key, value := range opts {
		switch key {
		case DeclareOptOpen:
			next.EchoOpen = value
		case DeclareOptClose:
			next.EchoClose = value
		case DeclareOptOpenRaw:
			next.RawOpen = value
		case DeclareOptCloseRaw:
			next.RawClose = value
		}
	}
	if next.EchoOpen == "" || next.EchoClose == "" {
		next.EchoOpen, next.EchoClose = current.EchoOpen, current.EchoClose
	}
	if next.RawOpen == "" || next.RawClose == "" {
		next.RawOpen, next.RawClose = current.RawOpen, current.RawClose
	}
	return next
}

// parseDeclareOptions splits `a="x", b='y'` into a map. Keys without a
// quoted value are ignored.
func parseDeclareOptions(body string) map[string]string {
	opts := make(map[string]string)
	s := NewStringStream(body)
	for !s.AtEnd() {
		for !s.AtEnd() && (isWhitespace(s.Peek()) || s.Peek() == ',') {
			s.Next()
		}
		from := s.Offset()
		for !s.AtEnd() && isKeywordChar(s.Peek()) {
			s.Next()
		}
		key := s.Slice(from, s.Offset())
		for !s.AtEnd() && isWhitespace(s.Peek()) {
			s.Next()
		}
		if key == "" || s.Peek() != CharEquals {
			if !s.AtEnd() {
				s.Next()
			}
			continue
		}
		s.Next()
		for !s.AtEnd() && isWhitespace(s.Peek()) {
			s.Next()
		}
		if !isQuote(s.Peek()) {
			continue
		}
		valueFrom := s.Offset() + 1
		if !skipQuoted(s) {
			break
		}
		opts[key] = strings.TrimSpace(s.Slice(valueFrom, s.Offset()-1))
	}
	return opts
}

func isDirectiveChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
