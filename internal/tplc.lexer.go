package internal

import (
	"iter"

	"go.uber.org/zap"
)

// Grammar recognizes one lexical dialect. Starts is a cheap check at the
// cursor; Scan consumes a region and returns its tokens. Returning no tokens
// declines the region and the lexer rewinds to treat the byte as text.
type Grammar interface {
	Name() string
	Starts(s *StringStream, run *LexRun) bool
	Scan(s *StringStream, run *LexRun) ([]Token, error)
}

// embeddable is implemented by grammars that opt out of sub-lexing
// (attribute values and raw-text element bodies).
type embeddable interface {
	Embeddable() bool
}

// DirectiveSet answers whether a directive name is registered
type DirectiveSet interface {
	HasDirective(name string) bool
}

// Delimiters holds the echo delimiters of the source dialect
type Delimiters struct {
	EchoOpen  string
	EchoClose string
	RawOpen   string
	RawClose  string
	Disabled  bool
}

// DefaultDelimiters returns {{ }} and {!! !!}
func DefaultDelimiters() Delimiters {
	return Delimiters{
		EchoOpen:  StrEchoOpen,
		EchoClose: StrEchoClose,
		RawOpen:   StrRawEchoOpen,
		RawClose:  StrRawEchoClose,
	}
}

// LexerConfig holds lexer configuration
type LexerConfig struct {
	Path       string       // Reported in errors
	Delimiters Delimiters   // Initial echo delimiters
	Directives DirectiveSet // Registered directive names
}

// Lexer drives an ordered list of grammars over a source
type Lexer struct {
	source   string
	grammars []Grammar
	config   LexerConfig
	logger   *zap.Logger
}

// NewLexer creates a lexer over source with the given grammars
func NewLexer(source string, grammars []Grammar, config LexerConfig, logger *zap.Logger) *Lexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Delimiters.EchoOpen == "" {
		config.Delimiters = DefaultDelimiters()
	}
	logger.Debug(LogMsgLexerCreated, zap.Int(LogFieldSource, len(source)), zap.String(LogFieldPath, config.Path))
	return &Lexer{
		source:   source,
		grammars: grammars,
		config:   config,
		logger:   logger,
	}
}

// Tokens returns the lazy token sequence. Each call starts a fresh pass
// with the initial delimiters. After an error the sequence ends.
func (l *Lexer) Tokens() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		run := l.newRun()
		count := 0
		ok, err := run.scan(l.grammars, nil, func(t Token) bool {
			count++
			return yield(t, nil)
		})
		if err != nil {
			yield(Token{}, err)
			return
		}
		if ok {
			l.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, count))
		}
	}
}

// Tokenize collects the whole token sequence
func (l *Lexer) Tokenize() ([]Token, error) {
	l.logger.Debug(LogMsgTokenizerStart)
	var tokens []Token
	for tok, err := range l.Tokens() {
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

func (l *Lexer) newRun() *LexRun {
	run := &LexRun{
		stream:     NewStringStream(l.source),
		delimiters: l.config.Delimiters,
		initial:    l.config.Delimiters,
		directives: l.config.Directives,
		path:       l.config.Path,
		logger:     l.logger,
	}
	for _, g := range l.grammars {
		if e, ok := g.(embeddable); ok && !e.Embeddable() {
			continue
		}
		run.embedded = append(run.embedded, g)
	}
	return run
}

// LexRun is the per-pass state shared by grammars: the stream, the
// current delimiters (changed by @declare) and the sub-lexing helper.
type LexRun struct {
	stream     *StringStream
	delimiters Delimiters
	initial    Delimiters
	directives DirectiveSet
	embedded   []Grammar
	path       string
	logger     *zap.Logger
}

// Delimiters returns the delimiters in effect at the cursor
func (r *LexRun) Delimiters() Delimiters {
	return r.delimiters
}

// SetDelimiters changes the delimiters for the rest of the pass
func (r *LexRun) SetDelimiters(d Delimiters) {
	r.delimiters = d
	r.logger.Debug(LogMsgDeclareApplied,
		zap.String(LogFieldOption, d.EchoOpen+" "+d.EchoClose),
		zap.Bool(LogFieldDisabled, d.Disabled))
}

// InitialDelimiters returns the delimiters the pass started with
func (r *LexRun) InitialDelimiters() Delimiters {
	return r.initial
}

// HasDirective reports whether name is a registered directive
func (r *LexRun) HasDirective(name string) bool {
	if name == DirectiveDeclare {
		return true
	}
	return r.directives != nil && r.directives.HasDirective(name)
}

// Unterminated builds a LexError for a region opened at pos
func (r *LexRun) Unterminated(grammar, message string, pos Position) error {
	return &LexError{
		Kind:     LexErrorUnterminated,
		Message:  message,
		Path:     r.path,
		Grammar:  grammar,
		Position: pos,
	}
}

// SubLex tokenizes from the cursor with the embeddable grammars until stop
// reports true or the source ends. Text between regions becomes text tokens.
func (r *LexRun) SubLex(stop func(s *StringStream) bool) ([]Token, error) {
	var tokens []Token
	_, err := r.scan(r.embedded, stop, func(t Token) bool {
		tokens = append(tokens, t)
		return true
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// scan is the shared driver loop. It returns false when emit asked to stop.
func (r *LexRun) scan(grammars []Grammar, stop func(s *StringStream) bool, emit func(Token) bool) (bool, error) {
	s := r.stream
	textStart := s.Position()
	flush := func(end int) bool {
		if end > textStart.Offset {
			return emit(NewTextToken(s.Slice(textStart.Offset, end), textStart))
		}
		return true
	}

	for !s.AtEnd() {
		if stop != nil && stop(s) {
			break
		}
		before := s.Offset()
		tokens, err := r.step(grammars)
		if err != nil {
			return false, err
		}
		if tokens == nil {
			s.Next()
			continue
		}
		if !flush(before) {
			return false, nil
		}
		for _, t := range tokens {
			if !emit(t) {
				return false, nil
			}
		}
		textStart = s.Position()
	}
	return flush(s.Offset()), nil
}

// step offers the cursor to each grammar in order
func (r *LexRun) step(grammars []Grammar) ([]Token, error) {
	s := r.stream
	for _, g := range grammars {
		if !g.Starts(s, r) {
			continue
		}
		mark := s.Mark()
		start := s.Position()
		tokens, err := g.Scan(s, r)
		if err != nil {
			return nil, err
		}
		if len(tokens) == 0 {
			s.Reset(mark)
			continue
		}
		if s.Offset() == start.Offset {
			return nil, &LexError{
				Kind:     LexErrorStalledGrammar,
				Message:  ErrMsgStalledGrammar,
				Path:     r.path,
				Grammar:  g.Name(),
				Position: start,
			}
		}
		return tokens, nil
	}
	return nil, nil
}

// scanExpression consumes an expression up to (not including) the closer at
// nesting depth zero, honoring quoted strings. Returns false at end of input.
func scanExpression(s *StringStream, closer string) bool {
	depth := 0
	for !s.AtEnd() {
		ch := s.Peek()
		if depth == 0 && s.HasPrefix(closer) {
			return true
		}
		switch {
		case isQuote(ch):
			if !skipQuoted(s) {
				return false
			}
			continue
		case ch == CharParenOpen || ch == CharBrackOpen || ch == CharBraceOpen:
			depth++
		case ch == CharParenClose || ch == CharBrackClose || ch == CharBraceClose:
			if depth > 0 {
				depth--
			}
		}
		s.Next()
	}
	return false
}

// skipQuoted consumes a quoted string starting at the cursor, honoring
// backslash escapes. Returns false when the string never closes.
func skipQuoted(s *StringStream) bool {
	quote := s.Next()
	for !s.AtEnd() {
		ch := s.Next()
		if ch == '\\' && quote != CharBacktick {
			s.Next()
			continue
		}
		if ch == quote {
			return true
		}
	}
	return false
}
