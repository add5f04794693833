package internal

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CompiledSource is the generated program plus its source map
type CompiledSource struct {
	Content      string
	SourceMap    *SourceMap
	Dependencies []Dependency
}

// CompilerConfig holds compiler configuration
type CompilerConfig struct {
	Renderers  []Renderer
	Registry   *Registry
	LeftDelim  string
	RightDelim string
}

// Compiler walks a template in pre-order and hands each node to the first
// renderer that supports it
type Compiler struct {
	config CompilerConfig
	logger *zap.Logger
}

// NewCompiler creates a compiler; unset fields get defaults
func NewCompiler(config CompilerConfig, logger *zap.Logger) *Compiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Renderers == nil {
		config.Renderers = DefaultRenderers()
	}
	if config.Registry == nil {
		config.Registry = NewDefaultRegistry(logger)
	}
	if config.LeftDelim == "" || config.RightDelim == "" {
		config.LeftDelim, config.RightDelim = DefaultOutputLeftDelim, DefaultOutputRightDelim
	}
	return &Compiler{config: config, logger: logger}
}

// Compile generates the program for tpl
func (c *Compiler) Compile(tpl *Template) (*CompiledSource, error) {
	c.logger.Debug(LogMsgCompilerStart, zap.String(LogFieldIdentifier, tpl.Context.Identifier))
	comp := &Compilation{
		compiler: c,
		emitter:  NewEmitter(c.config.LeftDelim, c.config.RightDelim),
		sm:       &SourceMap{},
	}
	if err := comp.RenderNodes(tpl.Nodes); err != nil {
		return nil, err
	}
	comp.sm.Sort()
	out := &CompiledSource{
		Content:   comp.emitter.String(),
		SourceMap: comp.sm,
	}
	c.logger.Debug(LogMsgCompilerEnd,
		zap.Int(LogFieldLines, comp.emitter.Line()),
		zap.Int(LogFieldEntries, len(comp.sm.Entries)))
	return out, nil
}

// Compilation is the state of one Compile call
type Compilation struct {
	compiler *Compiler
	emitter  *Emitter
	sm       *SourceMap
}

// Emitter returns the output writer
func (c *Compilation) Emitter() *Emitter {
	return c.emitter
}

// Registry returns the directive and filter registry
func (c *Compilation) Registry() *Registry {
	return c.compiler.config.Registry
}

// RenderNodes dispatches each node to the first supporting renderer
func (c *Compilation) RenderNodes(nodes []Node) error {
	for _, n := range nodes {
		if err := c.RenderNode(n); err != nil {
			return err
		}
	}
	return nil
}

// RenderNode dispatches one node
func (c *Compilation) RenderNode(n Node) error {
	for _, r := range c.compiler.config.Renderers {
		if r.Supports(n) {
			return r.Render(c, n)
		}
	}
	return c.noRenderer(n)
}

// Span records a source map entry covering whatever fn writes
func (c *Compilation) Span(n Node, dynamic bool, fn func()) {
	startLine, startCol := c.emitter.Line(), c.emitter.Column()
	fn()
	if n.Context() == nil {
		return
	}
	c.sm.Entries = append(c.sm.Entries, MapEntry{
		GeneratedLine:    startLine,
		GeneratedEndLine: c.emitter.Line(),
		GeneratedColumn:  startCol,
		Line:             n.Pos().Line,
		Column:           n.Pos().Column,
		Context:          n.Context(),
		Dynamic:          dynamic,
	})
}

func (c *Compilation) noRenderer(n Node) error {
	return &CompilerError{
		Kind:     CompilerErrorNoRenderer,
		Message:  ErrMsgNoRenderer,
		Path:     n.Context().Location(),
		Node:     n.Type().String(),
		Position: n.Pos(),
	}
}

// Emitter accumulates generated output and tracks the generated line and
// column
type Emitter struct {
	sb         strings.Builder
	line       int
	column     int
	leftDelim  string
	rightDelim string
}

// NewEmitter creates an emitter for the given output delimiters
func NewEmitter(leftDelim, rightDelim string) *Emitter {
	return &Emitter{line: 1, column: 1, leftDelim: leftDelim, rightDelim: rightDelim}
}

// Write appends raw output
func (e *Emitter) Write(s string) {
	e.sb.WriteString(s)
	if i := strings.LastIndexByte(s, CharNewline); i >= 0 {
		e.line += strings.Count(s, string(CharNewline))
		e.column = len(s) - i
		return
	}
	e.column += len(s)
}

// WriteText appends literal text. Occurrences of the output's left
// delimiter are written as a quoted string action.
func (e *Emitter) WriteText(s string) {
	if !strings.Contains(s, e.leftDelim) {
		e.Write(s)
		return
	}
	quoted := fmt.Sprintf(FmtQuotedLeft, e.leftDelim, e.leftDelim, e.rightDelim)
	e.Write(strings.ReplaceAll(s, e.leftDelim, quoted))
}

// WriteAction appends "{{ action }}" using the output delimiters
func (e *Emitter) WriteAction(action string) {
	e.Write(fmt.Sprintf(FmtAction, e.leftDelim, action, e.rightDelim))
}

// Line returns the current generated line, 1-indexed
func (e *Emitter) Line() int {
	return e.line
}

// Column returns the current generated column, 1-indexed
func (e *Emitter) Column() int {
	return e.column
}

// String returns the output so far
func (e *Emitter) String() string {
	return e.sb.String()
}
