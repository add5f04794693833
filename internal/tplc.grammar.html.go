package internal

import "strings"

// verbatimTags hold raw text: their body is never tokenized as markup
var verbatimTags = map[string]bool{
	"script": true,
	"style":  true,
	"canvas": true,
}

// IsVerbatimTag reports whether name is a raw-text element
func IsVerbatimTag(name string) bool {
	return verbatimTags[strings.ToLower(name)]
}

// HTMLGrammar recognizes markup: open, close and self-closing tags with
// attributes, <!-- --> comments and raw-text element bodies.
type HTMLGrammar struct{}

// NewHTMLGrammar creates the markup grammar
func NewHTMLGrammar() *HTMLGrammar {
	return &HTMLGrammar{}
}

// Name returns the grammar name
func (g *HTMLGrammar) Name() string {
	return GrammarNameHTML
}

// Embeddable reports false: markup never nests inside attribute values
func (g *HTMLGrammar) Embeddable() bool {
	return false
}

// Starts reports whether a tag or comment opens at the cursor
func (g *HTMLGrammar) Starts(s *StringStream, _ *LexRun) bool {
	if s.Peek() != CharLess {
		return false
	}
	next := s.PeekAt(1)
	if isLetter(next) {
		return true
	}
	if next == CharSlash && isLetter(s.PeekAt(2)) {
		return true
	}
	return s.HasPrefix(StrHTMLCommentOpen)
}

// Scan consumes one tag (plus a raw-text body when the tag opens one) or comment
func (g *HTMLGrammar) Scan(s *StringStream, run *LexRun) ([]Token, error) {
	if s.HasPrefix(StrHTMLCommentOpen) {
		return g.scanComment(s, run)
	}

	tag, name, ok, err := g.scanTag(s, run)
	if err != nil || !ok {
		return nil, err
	}
	tokens := []Token{tag}

	if tag.Children[0].Type == TokenTypeTagOpen && tag.Children[len(tag.Children)-1].Type == TokenTypeTagClose && IsVerbatimTag(name) {
		raw := &rawTextScanner{closer: StrTagOpenShort + name}
		body, err := run.SubLex(raw.stop)
		if err != nil {
			return nil, err
		}
		if len(body) > 0 {
			tokens = append(tokens, NewCompositeToken(TokenTypeVerbatim, body))
		}
	}
	return tokens, nil
}

func (g *HTMLGrammar) scanComment(s *StringStream, run *LexRun) ([]Token, error) {
	start := s.Position()
	open := NewToken(TokenTypeCommentOpen, s.NextN(len(StrHTMLCommentOpen)), start)
	bodyPos := s.Position()
	from := s.Offset()
	for !s.AtEnd() && !s.HasPrefix(StrHTMLCommentEnd) {
		s.Next()
	}
	if s.AtEnd() {
		return nil, run.Unterminated(GrammarNameHTML, ErrMsgUnterminatedComment, start)
	}
	children := []Token{open}
	if body := s.Slice(from, s.Offset()); body != "" {
		children = append(children, NewToken(TokenTypeCommentBody, body, bodyPos))
	}
	closePos := s.Position()
	children = append(children, NewToken(TokenTypeCommentClose, s.NextN(len(StrHTMLCommentEnd)), closePos))
	return []Token{NewCompositeToken(TokenTypeComment, children)}, nil
}

// scanTag consumes one tag head. ok is false when an illegal byte means the
// '<' is not a tag after all.
func (g *HTMLGrammar) scanTag(s *StringStream, run *LexRun) (Token, string, bool, error) {
	start := s.Position()
	var children []Token

	if s.PeekAt(1) == CharSlash {
		children = append(children, NewToken(TokenTypeTagOpenShort, s.NextN(2), start))
	} else {
		children = append(children, NewToken(TokenTypeTagOpen, s.NextN(1), start))
	}

	name := scanTagName(s)
	children = append(children, name)

	for {
		if s.AtEnd() {
			return Token{}, "", false, run.Unterminated(GrammarNameHTML, ErrMsgUnterminatedTag, start)
		}
		ch := s.Peek()
		pos := s.Position()
		switch {
		case ch == CharGreater:
			children = append(children, NewToken(TokenTypeTagClose, s.NextN(1), pos))
			return NewCompositeToken(TokenTypeTag, children), name.Value, true, nil

		case s.HasPrefix(StrTagCloseShort):
			children = append(children, NewToken(TokenTypeTagCloseShort, s.NextN(2), pos))
			return NewCompositeToken(TokenTypeTag, children), name.Value, true, nil

		case isWhitespace(ch):
			children = append(children, scanWhitespace(s))

		case isKeywordChar(ch):
			from := s.Offset()
			for !s.AtEnd() && isKeywordChar(s.Peek()) {
				s.Next()
			}
			children = append(children, NewToken(TokenTypeKeyword, s.Slice(from, s.Offset()), pos))

		case ch == CharEquals:
			children = append(children, NewToken(TokenTypeEquals, s.NextN(1), pos))
			if ws := scanWhitespace(s); ws.Value != "" {
				children = append(children, ws)
			}
			value, err := g.scanAttrValue(s, run)
			if err != nil {
				return Token{}, "", false, err
			}
			if value.Type != "" {
				children = append(children, value)
			}

		default:
			// Dynamic regions are allowed in the tag head
			dyn, err := run.step(run.embedded)
			if err != nil {
				return Token{}, "", false, err
			}
			if dyn != nil {
				children = append(children, dyn...)
				continue
			}
			// Event-binding style names such as @click
			if ch != CharAt || !isKeywordChar(s.PeekAt(1)) {
				return Token{}, "", false, nil
			}
			from := s.Offset()
			s.Next()
			for !s.AtEnd() && isKeywordChar(s.Peek()) {
				s.Next()
			}
			children = append(children, NewToken(TokenTypeKeyword, s.Slice(from, s.Offset()), pos))
		}
	}
}

// scanAttrValue consumes a quoted or unquoted attribute value. The value's
// content is sub-lexed so dynamic regions inside stay live.
func (g *HTMLGrammar) scanAttrValue(s *StringStream, run *LexRun) (Token, error) {
	start := s.Position()
	ch := s.Peek()

	if ch == CharDoubleQuote || ch == CharSingleQuote {
		quote := NewToken(TokenTypeQuote, s.NextN(1), start)
		inner, err := run.SubLex(func(s *StringStream) bool {
			return s.Peek() == ch
		})
		if err != nil {
			return Token{}, err
		}
		if s.AtEnd() {
			return Token{}, run.Unterminated(GrammarNameHTML, ErrMsgUnterminatedString, start)
		}
		closePos := s.Position()
		children := append([]Token{quote}, inner...)
		children = append(children, NewToken(TokenTypeQuote, s.NextN(1), closePos))
		return NewCompositeToken(TokenTypeAttrValue, children), nil
	}

	inner, err := run.SubLex(func(s *StringStream) bool {
		c := s.Peek()
		return isWhitespace(c) || c == CharGreater || s.HasPrefix(StrTagCloseShort) || isQuote(c) || c == CharLess || c == CharEquals
	})
	if err != nil {
		return Token{}, err
	}
	if len(inner) == 0 {
		return Token{}, nil
	}
	return NewCompositeToken(TokenTypeAttrValue, inner), nil
}

func scanWhitespace(s *StringStream) Token {
	pos := s.Position()
	from := s.Offset()
	for !s.AtEnd() && isWhitespace(s.Peek()) {
		s.Next()
	}
	return NewToken(TokenTypeWhitespace, s.Slice(from, s.Offset()), pos)
}

// scanTagName reads a tag name. Namespace separators ':', '.' and '/' are
// part of the name; '/' only when a name character follows it.
func scanTagName(s *StringStream) Token {
	pos := s.Position()
	from := s.Offset()
	for !s.AtEnd() {
		ch := s.Peek()
		if isKeywordChar(ch) {
			s.Next()
			continue
		}
		if ch == CharSlash && isKeywordChar(s.PeekAt(1)) {
			s.Next()
			continue
		}
		break
	}
	return NewToken(TokenTypeKeyword, s.Slice(from, s.Offset()), pos)
}

// rawTextScanner finds the end of a raw-text body. A closing tag inside a
// quoted string does not end the body, and quotes inside // or /* */
// comments open no string. Echoes are still lexed everywhere.
type rawTextScanner struct {
	closer  string
	resume  int
	quote   byte
	comment byte
}

func (r *rawTextScanner) stop(s *StringStream) bool {
	off := s.Offset()
	if off < r.resume {
		return false
	}
	ch := s.Peek()

	if r.quote != 0 {
		switch {
		case ch == CharBackslash && r.quote != CharBacktick:
			r.resume = off + 2
		case ch == r.quote:
			r.quote = 0
		case ch == CharNewline && r.quote != CharBacktick:
			r.quote = 0
		}
		return false
	}

	if s.HasPrefixFold(r.closer) && !isKeywordChar(s.PeekAt(len(r.closer))) {
		return true
	}

	switch r.comment {
	case CharSlash:
		if ch == CharNewline {
			r.comment = 0
		}
		return false
	case CharStar:
		if ch == CharStar && s.PeekAt(1) == CharSlash {
			r.comment = 0
			r.resume = off + 2
		}
		return false
	}

	switch {
	case ch == CharDoubleQuote || ch == CharSingleQuote || ch == CharBacktick:
		r.quote = ch
	case ch == CharSlash && (s.PeekAt(1) == CharSlash || s.PeekAt(1) == CharStar):
		r.comment = s.PeekAt(1)
		r.resume = off + 2
	}
	return false
}
