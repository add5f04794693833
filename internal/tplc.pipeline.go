package internal

import (
	"errors"

	"go.uber.org/zap"
)

// Transform rewrites a parsed template in place
type Transform interface {
	Name() string
	Apply(tpl *Template, b Builder) error
}

// Builder is handed to transforms so they can pull in other templates.
// Import loads, parses and transforms identifier as a child of parent.
type Builder interface {
	Loader() Loader
	Logger() *zap.Logger
	Import(identifier, namespace string, parent *Context, pos Position) (*Template, error)
}

// Dependency is one template that contributed to a build
type Dependency struct {
	Identifier string
	Path       string
	Freshness  string
}

// PipelineConfig wires the stages together. The slices are used in order.
type PipelineConfig struct {
	Grammars       []Grammar
	Syntaxes       []Syntax
	Transforms     []Transform
	Registry       *Registry
	Loader         Loader
	Delimiters     Delimiters
	MaxImportDepth int
}

// Pipeline runs lexing, parsing and transforms. It holds no per-build
// state and may be shared by goroutines.
type Pipeline struct {
	config PipelineConfig
	logger *zap.Logger
}

// NewPipeline creates a pipeline; missing stages get the built-in defaults
func NewPipeline(config PipelineConfig, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Grammars == nil {
		config.Grammars = DefaultGrammars()
	}
	if config.Syntaxes == nil {
		config.Syntaxes = DefaultSyntaxes()
	}
	if config.Registry == nil {
		config.Registry = NewDefaultRegistry(logger)
	}
	if config.Delimiters.EchoOpen == "" {
		config.Delimiters = DefaultDelimiters()
	}
	if config.MaxImportDepth <= 0 {
		config.MaxImportDepth = DefaultMaxImportDepth
	}
	return &Pipeline{config: config, logger: logger}
}

// DefaultGrammars returns markup, dynamic and inline grammars
func DefaultGrammars() []Grammar {
	return []Grammar{NewHTMLGrammar(), NewDynamicGrammar(), NewInlineGrammar()}
}

// DefaultSyntaxes returns the syntaxes matching DefaultGrammars
func DefaultSyntaxes() []Syntax {
	return []Syntax{NewHTMLSyntax(), NewDynamicSyntax(), NewInlineSyntax()}
}

// Registry returns the directive and filter registry
func (p *Pipeline) Registry() *Registry {
	return p.config.Registry
}

// Lexer creates a lexer for source located at ctx
func (p *Pipeline) Lexer(source string, ctx *Context) *Lexer {
	return NewLexer(source, p.config.Grammars, LexerConfig{
		Path:       ctx.Location(),
		Delimiters: p.config.Delimiters,
		Directives: p.config.Registry,
	}, p.logger)
}

// Parse lexes and parses source without running transforms
func (p *Pipeline) Parse(source string, ctx *Context) (*Template, error) {
	parser := NewParser(p.config.Syntaxes, ParserConfig{Context: ctx, Registry: p.config.Registry}, p.logger)
	return parser.Parse(p.Lexer(source, ctx).Tokens())
}

// Build loads identifier and returns the fully transformed template along
// with every template that contributed to it.
func (p *Pipeline) Build(identifier string) (*Template, []Dependency, error) {
	if p.config.Loader == nil {
		return nil, nil, &ImportError{Kind: ImportErrorFailed, Message: ErrMsgNoLoader, Identifier: identifier}
	}
	src, err := p.config.Loader.Load(identifier)
	if err != nil {
		return nil, nil, err
	}
	ctx := NewContext(identifier, src.Path, src.Freshness)
	return p.BuildSource(src.Code, ctx)
}

// BuildSource parses source located at ctx and runs the transforms
func (p *Pipeline) BuildSource(source string, ctx *Context) (*Template, []Dependency, error) {
	s := &session{pipeline: p}
	s.record(ctx)
	tpl, err := s.build(source, ctx)
	if err != nil {
		return nil, nil, err
	}
	return tpl, s.deps, nil
}

// session is the per-build state: dependencies seen so far
type session struct {
	pipeline *Pipeline
	deps     []Dependency
	seen     map[string]bool
}

func (s *session) record(ctx *Context) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if ctx.Identifier == "" || s.seen[ctx.Identifier] {
		return
	}
	s.seen[ctx.Identifier] = true
	s.deps = append(s.deps, Dependency{Identifier: ctx.Identifier, Path: ctx.Path, Freshness: ctx.Freshness})
}

func (s *session) build(source string, ctx *Context) (*Template, error) {
	tpl, err := s.pipeline.Parse(source, ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range s.pipeline.config.Transforms {
		if err := t.Apply(tpl, s); err != nil {
			return nil, err
		}
	}
	return tpl, nil
}

// Loader returns the configured loader
func (s *session) Loader() Loader {
	return s.pipeline.config.Loader
}

// Logger returns the pipeline logger
func (s *session) Logger() *zap.Logger {
	return s.pipeline.logger
}

// Import builds a child template. A repeat of an identifier already on the
// chain is a cycle. Loader, lexer and parser failures are wrapped with the
// import position; import errors from deeper levels pass through unchanged.
func (s *session) Import(identifier, namespace string, parent *Context, pos Position) (*Template, error) {
	fail := func(kind ImportErrorKind, message string, cause error) error {
		return &ImportError{
			Kind:       kind,
			Message:    message,
			Path:       parent.Location(),
			Identifier: identifier,
			Chain:      append(parent.Chain(), identifier),
			Position:   pos,
			Cause:      cause,
		}
	}

	if parent.Contains(identifier) {
		return nil, fail(ImportErrorCycle, ErrMsgImportCycle, nil)
	}
	if parent.Depth()+1 > s.pipeline.config.MaxImportDepth {
		return nil, fail(ImportErrorFailed, ErrMsgImportTooDeep, nil)
	}
	loader := s.Loader()
	if loader == nil {
		return nil, fail(ImportErrorFailed, ErrMsgNoLoader, nil)
	}
	src, err := loader.Load(identifier)
	if err != nil {
		return nil, fail(ImportErrorFailed, ErrMsgImportFailed, err)
	}

	ctx := parent.Import(identifier, src.Path, namespace, src.Freshness, pos)
	s.record(ctx)
	tpl, err := s.build(src.Code, ctx)
	if err != nil {
		var nested *ImportError
		if errors.As(err, &nested) {
			return nil, err
		}
		return nil, fail(ImportErrorFailed, ErrMsgImportFailed, err)
	}
	s.pipeline.logger.Debug(LogMsgImportResolved,
		zap.String(LogFieldIdentifier, identifier),
		zap.Int(LogFieldDepth, ctx.Depth()))
	return tpl, nil
}

// Pipeline error message constants
const (
	ErrMsgNoLoader = "no loader configured"
)
