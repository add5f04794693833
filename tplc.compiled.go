package tplc

import (
	"github.com/itsatony/go-tplc/internal"
)

// CompiledSource is the generated text/template program of one template,
// the source map back to the templates that produced it, and the list of
// templates it depends on. It is immutable.
type CompiledSource struct {
	Identifier   string
	Content      string
	SourceMap    *SourceMap
	dependencies []Dependency
}

// Dependencies returns every template that contributed to the program, the
// root template first. Freshness tokens come from the loader.
func (c *CompiledSource) Dependencies() []Dependency {
	out := make([]Dependency, len(c.dependencies))
	copy(out, c.dependencies)
	return out
}

// Lookup returns the template frames for a generated line, innermost first.
func (c *CompiledSource) Lookup(generatedLine int) []Frame {
	if c.SourceMap == nil {
		return nil
	}
	return c.SourceMap.Lookup(generatedLine)
}

// MapException attaches template frames to err raised at generatedLine of
// the program.
func (c *CompiledSource) MapException(err error, generatedLine int) *MappedError {
	return internal.MapException(err, c.SourceMap, generatedLine)
}

// MapTemplateError maps an error returned by text/template while parsing
// or executing Content. Errors without a recognizable line are returned
// unchanged.
func (c *CompiledSource) MapTemplateError(err error) error {
	line, ok := internal.GeneratedLineOf(err)
	if !ok {
		return err
	}
	return NewRuntimeError(c.MapException(err, line))
}

// Stale reports whether any dependency changed according to loader. A
// dependency the loader can no longer load counts as changed; one without a
// freshness token (an in-memory root) is skipped.
func (c *CompiledSource) Stale(loader Loader) bool {
	for _, d := range c.dependencies {
		if d.Freshness == "" {
			continue
		}
		src, err := loader.Load(d.Identifier)
		if err != nil || src.Freshness != d.Freshness {
			return true
		}
	}
	return false
}
