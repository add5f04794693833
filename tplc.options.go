package tplc

import (
	"github.com/itsatony/go-tplc/internal"
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	logger         *zap.Logger
	loader         Loader
	providers      []ImportProvider
	delimiters     internal.Delimiters
	outputLeft     string
	outputRight    string
	maxImportDepth int
	passthrough    []string
	grammars       []Grammar
	syntaxes       []Syntax
	renderers      []Renderer
	transforms     []Transform
	filters        []FilterSpec
	directives     []DirectiveSpec
	errs           []error
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		delimiters:     internal.DefaultDelimiters(),
		outputLeft:     DefaultOutputLeft,
		outputRight:    DefaultOutputRight,
		maxImportDepth: DefaultMaxImportDepth,
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithLoader sets the loader used for the root template and every import.
func WithLoader(loader Loader) Option {
	return func(c *engineConfig) {
		c.loader = loader
	}
}

// WithDirectory maps a tag namespace to a directory of templates.
// <ns:card.body/> resolves to "base/card/body" when the loader has it.
func WithDirectory(namespace, base string) Option {
	return func(c *engineConfig) {
		if namespace == "" {
			c.errs = append(c.errs, NewConfigError(ErrMsgEmptyNamespace, "directory", base))
			return
		}
		c.providers = append(c.providers, internal.NewDirectoryProvider(namespace, base))
	}
}

// WithBundle maps one fully qualified tag name to one template.
func WithBundle(tagName, identifier string) Option {
	return func(c *engineConfig) {
		c.providers = append(c.providers, internal.NewBundleProvider(tagName, identifier))
	}
}

// WithImportProvider adds a custom import provider. Providers are asked in
// registration order.
func WithImportProvider(p ImportProvider) Option {
	return func(c *engineConfig) {
		c.providers = append(c.providers, p)
	}
}

// WithEchoDelimiters sets the source delimiters for escaped and raw echoes.
// Default: "{{" "}}" and "{!!" "!!}"
func WithEchoDelimiters(open, close, rawOpen, rawClose string) Option {
	return func(c *engineConfig) {
		if open == "" || close == "" || rawOpen == "" || rawClose == "" {
			c.errs = append(c.errs, NewConfigError(ErrMsgEmptyDelimiter, "echo_delimiters", open+close))
			return
		}
		if open == rawOpen {
			c.errs = append(c.errs, NewConfigError(ErrMsgSameDelimiters, "echo_delimiters", open))
			return
		}
		c.delimiters = internal.Delimiters{EchoOpen: open, EchoClose: close, RawOpen: rawOpen, RawClose: rawClose}
	}
}

// WithOutputDelimiters sets the action delimiters of the generated program.
// They must match the delimiters the program is parsed with.
// Default: "{{" and "}}"
func WithOutputDelimiters(left, right string) Option {
	return func(c *engineConfig) {
		if left == "" || right == "" {
			c.errs = append(c.errs, NewConfigError(ErrMsgEmptyDelimiter, "output_delimiters", left+right))
			return
		}
		c.outputLeft, c.outputRight = left, right
	}
}

// WithMaxImportDepth limits how deeply imports may nest.
// Default: 64
func WithMaxImportDepth(depth int) Option {
	return func(c *engineConfig) {
		if depth <= 0 {
			c.errs = append(c.errs, NewConfigError(ErrMsgNegativeDepth, "max_import_depth", ""))
			return
		}
		c.maxImportDepth = depth
	}
}

// WithPassthroughNamespaces lists namespaces whose unresolved tags are kept
// as markup instead of failing the compilation (for example "svg" or "x").
func WithPassthroughNamespaces(namespaces ...string) Option {
	return func(c *engineConfig) {
		c.passthrough = append(c.passthrough, namespaces...)
	}
}

// WithGrammar registers an additional grammar and the syntax that turns its
// tokens into nodes. Built-in grammars are always tried first.
func WithGrammar(g Grammar, s Syntax) Option {
	return func(c *engineConfig) {
		c.grammars = append(c.grammars, g)
		c.syntaxes = append(c.syntaxes, s)
	}
}

// WithRenderer registers a renderer. Custom renderers are tried before the
// built-in ones.
func WithRenderer(r Renderer) Option {
	return func(c *engineConfig) {
		c.renderers = append(c.renderers, r)
	}
}

// WithTransform registers a transform that runs after the built-in
// extends and import transforms.
func WithTransform(t Transform) Option {
	return func(c *engineConfig) {
		c.transforms = append(c.transforms, t)
	}
}

// WithFilter registers an output filter. {{ expr | name }} renders as
// "{{ fn (expr) }}".
func WithFilter(name, fn string) Option {
	return func(c *engineConfig) {
		c.filters = append(c.filters, FilterSpec{Name: name, Func: fn})
	}
}

// WithDirective registers a directive. Action may contain one %s, replaced
// by the directive body.
func WithDirective(spec DirectiveSpec) Option {
	return func(c *engineConfig) {
		c.directives = append(c.directives, spec)
	}
}
