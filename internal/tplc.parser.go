package internal

import (
	"iter"
	"strings"

	"go.uber.org/zap"
)

// Syntax turns the composite tokens of one grammar into AST nodes
type Syntax interface {
	Handles(t Token) bool
	Handle(asm *Assembler, t Token) error
}

// ParserConfig holds parser configuration
type ParserConfig struct {
	Context  *Context  // Stamped on every node
	Registry *Registry // Directives and filters
}

// Parser builds a Template from a token stream by dispatching each
// composite token to the first syntax that handles it.
type Parser struct {
	syntaxes []Syntax
	config   ParserConfig
	logger   *zap.Logger
}

// NewParser creates a new parser
func NewParser(syntaxes []Syntax, config ParserConfig, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Context == nil {
		config.Context = NewContext("", "", "")
	}
	if config.Registry == nil {
		config.Registry = NewDefaultRegistry(logger)
	}
	logger.Debug(LogMsgParserCreated, zap.String(LogFieldIdentifier, config.Context.Identifier))
	return &Parser{syntaxes: syntaxes, config: config, logger: logger}
}

// Parse consumes the sequence and returns the template. The first lexer
// error ends parsing.
func (p *Parser) Parse(tokens iter.Seq2[Token, error]) (*Template, error) {
	p.logger.Debug(LogMsgParserStart)
	asm := p.newAssembler()
	for tok, err := range tokens {
		if err != nil {
			return nil, err
		}
		if err := asm.Feed(tok); err != nil {
			return nil, err
		}
	}
	nodes, err := asm.Finish()
	if err != nil {
		return nil, err
	}
	p.logger.Debug(LogMsgParserEnd, zap.Int(LogFieldNodes, len(nodes)))
	return &Template{Nodes: nodes, Context: p.config.Context}, nil
}

// ParseTokens parses an already collected token slice
func (p *Parser) ParseTokens(tokens []Token) (*Template, error) {
	return p.Parse(func(yield func(Token, error) bool) {
		for _, t := range tokens {
			if !yield(t, nil) {
				return
			}
		}
	})
}

func (p *Parser) newAssembler() *Assembler {
	return &Assembler{parser: p, ctx: p.config.Context}
}

// frame is an open container on the assembler stack
type frame struct {
	name string
	pos  Position
	node Node
}

// Assembler tracks open containers while syntaxes append nodes
type Assembler struct {
	parser *Parser
	ctx    *Context
	nodes  []Node
	stack  []*frame
}

// Context returns the context stamped on new nodes
func (a *Assembler) Context() *Context {
	return a.ctx
}

// Registry returns the directive and filter registry
func (a *Assembler) Registry() *Registry {
	return a.parser.config.Registry
}

// Feed dispatches one token
func (a *Assembler) Feed(t Token) error {
	if t.Type == TokenTypeText {
		a.Push(NewTextNode(t.Value, t.Position, a.ctx))
		return nil
	}
	for _, s := range a.parser.syntaxes {
		if s.Handles(t) {
			return s.Handle(a, t)
		}
	}
	return a.Fail(ParseErrorUnexpectedToken, ErrMsgNoSyntax, string(t.Type), t.Position)
}

// Push appends a node to the innermost open container
func (a *Assembler) Push(n Node) {
	if len(a.stack) == 0 {
		a.nodes = append(a.nodes, n)
		return
	}
	switch c := a.stack[len(a.stack)-1].node.(type) {
	case *TagNode:
		c.Children = append(c.Children, n)
	case *SlotNode:
		c.Children = append(c.Children, n)
	}
}

// Open appends a container and makes it the target of following nodes
// until Close is called with the same name.
func (a *Assembler) Open(name string, n Node) {
	a.Push(n)
	a.stack = append(a.stack, &frame{name: name, pos: n.Pos(), node: n})
}

// Close ends the innermost container, which must carry name
func (a *Assembler) Close(name string, pos Position) error {
	if len(a.stack) == 0 {
		return a.Fail(ParseErrorUnbalancedTag, ErrMsgStrayCloseTag, name, pos)
	}
	top := a.stack[len(a.stack)-1]
	if !strings.EqualFold(top.name, name) {
		return a.Fail(ParseErrorUnbalancedTag, ErrMsgMismatchedTag, top.name+"/"+name, pos)
	}
	a.stack = a.stack[:len(a.stack)-1]
	return nil
}

// Build turns a token list into detached nodes, used for attribute values
// and raw-text bodies. Containers opened inside must close inside.
func (a *Assembler) Build(tokens []Token) ([]Node, error) {
	sub := &Assembler{parser: a.parser, ctx: a.ctx}
	for _, t := range tokens {
		if err := sub.Feed(t); err != nil {
			return nil, err
		}
	}
	return sub.Finish()
}

// Finish returns the root nodes; any container still open is an error
func (a *Assembler) Finish() ([]Node, error) {
	if len(a.stack) > 0 {
		top := a.stack[len(a.stack)-1]
		return nil, a.Fail(ParseErrorUnbalancedTag, ErrMsgUnclosedTag, top.name, top.pos)
	}
	return a.nodes, nil
}

// Fail builds a ParseError located in the current template
func (a *Assembler) Fail(kind ParseErrorKind, message, tag string, pos Position) error {
	return &ParseError{
		Kind:     kind,
		Message:  message,
		Path:     a.ctx.Location(),
		Tag:      tag,
		Position: pos,
	}
}
