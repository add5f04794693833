package tplc

import (
	"errors"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-tplc/internal"
	"go.uber.org/zap"
)

// Engine compiles templates. Configuration is fixed by New; an Engine holds
// no per-compilation state and is safe for concurrent use.
type Engine struct {
	config   *engineConfig
	registry *internal.Registry
	pipeline *internal.Pipeline
	compiler *internal.Compiler
	logger   *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}
	if len(config.errs) > 0 {
		return nil, errors.Join(config.errs...)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := internal.NewDefaultRegistry(logger)
	for _, d := range config.directives {
		if err := registry.RegisterDirective(d); err != nil {
			return nil, cuserr.WrapStdError(err, ErrCodeConfig, ErrMsgRegisterFailed).
				WithMetadata(MetaKeyOption, "directive").
				WithMetadata(MetaKeyValue, d.Name)
		}
	}
	for _, f := range config.filters {
		if err := registry.RegisterFilter(f); err != nil {
			return nil, cuserr.WrapStdError(err, ErrCodeConfig, ErrMsgRegisterFailed).
				WithMetadata(MetaKeyOption, "filter").
				WithMetadata(MetaKeyValue, f.Name)
		}
	}

	transforms := []Transform{
		internal.NewExtendsTransform(),
		internal.NewImportTransform(config.providers, config.passthrough),
	}
	transforms = append(transforms, config.transforms...)

	pipeline := internal.NewPipeline(internal.PipelineConfig{
		Grammars:       append(internal.DefaultGrammars(), config.grammars...),
		Syntaxes:       append(internal.DefaultSyntaxes(), config.syntaxes...),
		Transforms:     transforms,
		Registry:       registry,
		Loader:         config.loader,
		Delimiters:     config.delimiters,
		MaxImportDepth: config.maxImportDepth,
	}, logger)

	compiler := internal.NewCompiler(internal.CompilerConfig{
		Renderers:  append(append([]Renderer{}, config.renderers...), internal.DefaultRenderers()...),
		Registry:   registry,
		LeftDelim:  config.outputLeft,
		RightDelim: config.outputRight,
	}, logger)

	logger.Debug(LogMsgEngineCreated,
		zap.Int(LogFieldCount, len(config.providers)))

	return &Engine{
		config:   config,
		registry: registry,
		pipeline: pipeline,
		compiler: compiler,
		logger:   logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Compile loads identifier through the configured loader, resolves its
// imports and generates the program.
func (e *Engine) Compile(identifier string) (*CompiledSource, error) {
	e.logger.Debug(LogMsgCompileStart, zap.String(LogFieldIdentifier, identifier))
	if e.config.loader == nil {
		return nil, NewLoaderError(ErrMsgNoLoader, identifier, nil)
	}
	tpl, deps, err := e.pipeline.Build(identifier)
	if err != nil {
		return nil, e.fail(identifier, err)
	}
	return e.generate(identifier, tpl, deps)
}

// CompileSource compiles source held in memory. name identifies the
// template in errors and source maps. Imports still go through the loader.
func (e *Engine) CompileSource(name, source string) (*CompiledSource, error) {
	e.logger.Debug(LogMsgCompileStart, zap.String(LogFieldIdentifier, name))
	tpl, deps, err := e.pipeline.BuildSource(source, internal.NewContext(name, name, ""))
	if err != nil {
		return nil, e.fail(name, err)
	}
	return e.generate(name, tpl, deps)
}

// Check compiles identifier and reports only the error.
func (e *Engine) Check(identifier string) error {
	_, err := e.Compile(identifier)
	return err
}

// Build returns the transformed AST of identifier without generating code.
func (e *Engine) Build(identifier string) (*Template, []Dependency, error) {
	if e.config.loader == nil {
		return nil, nil, NewLoaderError(ErrMsgNoLoader, identifier, nil)
	}
	tpl, deps, err := e.pipeline.Build(identifier)
	if err != nil {
		return nil, nil, wrapStageError(err, identifier)
	}
	return tpl, deps, nil
}

// Parse parses source into an AST without resolving imports.
func (e *Engine) Parse(name, source string) (*Template, error) {
	tpl, err := e.pipeline.Parse(source, internal.NewContext(name, name, ""))
	if err != nil {
		return nil, wrapStageError(err, name)
	}
	return tpl, nil
}

// Tokenize returns the top-level tokens of source.
func (e *Engine) Tokenize(name, source string) ([]Token, error) {
	tokens, err := e.pipeline.Lexer(source, internal.NewContext(name, name, "")).Tokenize()
	if err != nil {
		return nil, wrapStageError(err, name)
	}
	return tokens, nil
}

// Directives returns the registered directive names, sorted.
func (e *Engine) Directives() []string {
	return e.registry.DirectiveNames()
}

// Filters returns the registered filter names, sorted.
func (e *Engine) Filters() []string {
	return e.registry.FilterNames()
}

// Loader returns the configured loader, or nil.
func (e *Engine) Loader() Loader {
	return e.config.loader
}

func (e *Engine) generate(identifier string, tpl *Template, deps []Dependency) (*CompiledSource, error) {
	out, err := e.compiler.Compile(tpl)
	if err != nil {
		return nil, e.fail(identifier, err)
	}
	e.logger.Debug(LogMsgCompileDone,
		zap.String(LogFieldIdentifier, identifier),
		zap.Int(LogFieldDeps, len(deps)),
		zap.Int(LogFieldBytes, len(out.Content)))
	return &CompiledSource{
		Identifier:   identifier,
		Content:      out.Content,
		SourceMap:    out.SourceMap,
		dependencies: deps,
	}, nil
}

func (e *Engine) fail(identifier string, err error) error {
	wrapped := wrapStageError(err, identifier)
	e.logger.Debug(LogMsgCompileFailed,
		zap.String(LogFieldIdentifier, identifier),
		zap.Error(err))
	return wrapped
}
