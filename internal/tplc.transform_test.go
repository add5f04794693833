package internal

import (
	"errors"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestNotFound = errors.New("template not found")

// mapLoader serves templates from memory; the path is the identifier plus .html
type mapLoader map[string]string

func (m mapLoader) Load(identifier string) (*Source, error) {
	code, ok := m[identifier]
	if !ok {
		return nil, errTestNotFound
	}
	return &Source{Code: code, Path: identifier + ".html", Freshness: "1"}, nil
}

func (m mapLoader) Exists(identifier string) bool {
	_, ok := m[identifier]
	return ok
}

type buildOpts struct {
	providers   []ImportProvider
	passthrough []string
	maxDepth    int
}

func newTestPipeline(loader Loader, opts buildOpts) *Pipeline {
	if opts.providers == nil {
		opts.providers = []ImportProvider{NewDirectoryProvider("x", "")}
	}
	return NewPipeline(PipelineConfig{
		Transforms: []Transform{
			NewExtendsTransform(),
			NewImportTransform(opts.providers, opts.passthrough),
		},
		Loader:         loader,
		MaxImportDepth: opts.maxDepth,
	}, nil)
}

func buildAndCompile(t *testing.T, loader Loader, opts buildOpts, identifier string) (*CompiledSource, []Dependency) {
	t.Helper()
	tpl, deps, err := newTestPipeline(loader, opts).Build(identifier)
	require.NoError(t, err)
	out, err := NewCompiler(CompilerConfig{}, nil).Compile(tpl)
	require.NoError(t, err)
	return out, deps
}

func buildErr(t *testing.T, loader Loader, opts buildOpts, identifier string) *ImportError {
	t.Helper()
	_, _, err := newTestPipeline(loader, opts).Build(identifier)
	require.Error(t, err)
	var ierr *ImportError
	require.True(t, errors.As(err, &ierr), "expected ImportError, got %T: %v", err, err)
	return ierr
}

func depIDs(deps []Dependency) []string {
	ids := make([]string, len(deps))
	for i, d := range deps {
		ids[i] = d.Identifier
	}
	return ids
}

func TestImport_ForwardsContentThroughLevels(t *testing.T) {
	loader := mapLoader{
		"a": `<x:b><p>A</p></x:b>`,
		"b": `<div class="b"><x:c>${context}</x:c></div>`,
		"c": `<span>${context}</span>`,
	}
	out, deps := buildAndCompile(t, loader, buildOpts{}, "a")

	assert.Equal(t, `<div class="b"><span><p>A</p></span></div>`, out.Content)
	assert.Equal(t, []string{"a", "b", "c"}, depIDs(deps))
	assert.Equal(t, "b.html", deps[1].Path)
	assert.Equal(t, "1", deps[1].Freshness)
}

func TestImport_Cycle(t *testing.T) {
	loader := mapLoader{
		"a": `<x:b/>`,
		"b": `<x:a/>`,
	}
	ierr := buildErr(t, loader, buildOpts{}, "a")

	assert.Equal(t, ImportErrorCycle, ierr.Kind)
	assert.Equal(t, ErrMsgImportCycle, ierr.Message)
	assert.Equal(t, "a", ierr.Identifier)
	assert.Equal(t, []string{"a", "b", "a"}, ierr.Chain)
	assert.Equal(t, "b.html", ierr.Path)
	assert.Contains(t, ierr.Error(), "a -> b -> a")
}

func TestImport_RuntimeErrorMapsToEveryLevel(t *testing.T) {
	loader := mapLoader{
		"page":  "<main>\n<x:card/>\n</main>",
		"card":  "<div>\n<x:badge/>\n</div>",
		"badge": "<span>\n{{ index .Items 5 }}\n</span>",
	}
	out, _ := buildAndCompile(t, loader, buildOpts{}, "page")
	assert.Equal(t, "<main>\n<div>\n<span>\n{{ html (index .Items 5) }}\n</span>\n</div>\n</main>", out.Content)

	tmpl, err := template.New("page").Parse(out.Content)
	require.NoError(t, err)
	execErr := tmpl.Execute(&strings.Builder{}, map[string]any{"Items": []int{1}})
	require.Error(t, execErr)

	line, ok := GeneratedLineOf(execErr)
	require.True(t, ok)
	assert.Equal(t, 4, line)

	mapped := MapException(execErr, out.SourceMap, line)
	assert.Equal(t, []Frame{
		{Identifier: "badge", Path: "badge.html", Line: 2, Column: 1},
		{Identifier: "card", Path: "card.html", Line: 2, Column: 1},
		{Identifier: "page", Path: "page.html", Line: 2, Column: 1},
	}, mapped.Frames)
}

func TestImport_Merge(t *testing.T) {
	tests := []struct {
		name     string
		loader   mapLoader
		expected string
	}{
		{
			name: "template-local element import",
			loader: mapLoader{
				"page":      `<use:element path="ui/button" as="btn"/><btn label="Go"/>`,
				"ui/button": `<button>${label}</button>`,
			},
			expected: `<button>Go</button>`,
		},
		{
			name: "unmatched attributes land on the first tag",
			loader: mapLoader{
				"page":      `<use:element path="ui/button" as="btn"/><btn label="Go" class="big"/>`,
				"ui/button": `<button>${label}</button>`,
			},
			expected: `<button class="big">Go</button>`,
		},
		{
			name: "existing attribute is not overwritten",
			loader: mapLoader{
				"page":      `<use:element path="ui/button" as="btn"/><btn class="big"/>`,
				"ui/button": `<button class="std">x</button>`,
			},
			expected: `<button class="std">x</button>`,
		},
		{
			name: "template-local directory import",
			loader: mapLoader{
				"page":                  `<use:dir dir="components" ns="c"/><c:card.title>T</c:card.title>`,
				"components/card/title": `<h1>${context}</h1>`,
			},
			expected: `<h1>T</h1>`,
		},
		{
			name: "named blocks and unused content",
			loader: mapLoader{
				"page": `<x:card><block:footer>F</block:footer>body</x:card>`,
				"card": `<div>${context}</div>`,
			},
			expected: `<div>body</div>F`,
		},
		{
			name: "parent expands to the default",
			loader: mapLoader{
				"page": `<x:card><block:body>${parent}+</block:body></x:card>`,
				"card": `<div><block:body>default</block:body></div>`,
			},
			expected: `<div>default+</div>`,
		},
		{
			name: "blank content keeps the default",
			loader: mapLoader{
				"page": "<x:card>\n  </x:card>",
				"card": `<div>${context|none}</div>`,
			},
			expected: `<div>none</div>`,
		},
		{
			name: "content for a slot inside a replaced default is kept",
			loader: mapLoader{
				"page": `<x:card><block:outer>O</block:outer><block:inner>I</block:inner></x:card>`,
				"card": `<div><block:outer><b>${inner}</b></block:outer></div>`,
			},
			expected: `<div>O</div>I`,
		},
		{
			name: "content for a slot inside an expanded default",
			loader: mapLoader{
				"page": `<x:card><block:outer>${parent}!</block:outer><block:inner>I</block:inner></x:card>`,
				"card": `<div><block:outer><b>${inner}</b></block:outer></div>`,
			},
			expected: `<div><b>I</b>!</div>`,
		},
		{
			name: "slot filled twice",
			loader: mapLoader{
				"page": `<x:card title="T"/>`,
				"card": `<h1>${title}</h1><p>${title}</p>`,
			},
			expected: `<h1>T</h1><p>T</p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := buildAndCompile(t, tt.loader, buildOpts{}, "page")
			assert.Equal(t, tt.expected, out.Content)
		})
	}
}

func TestImport_Passthrough(t *testing.T) {
	loader := mapLoader{"page": `<y:thing a="1"/>`}
	out, _ := buildAndCompile(t, loader, buildOpts{passthrough: []string{"y"}}, "page")
	assert.Equal(t, `<y:thing a="1"/>`, out.Content)

	ierr := buildErr(t, mapLoader{"page": `<z:thing/>`}, buildOpts{}, "page")
	assert.Equal(t, ImportErrorUnresolved, ierr.Kind)
	assert.Equal(t, ErrMsgUnresolvedImport, ierr.Message)
	assert.Equal(t, "z:thing", ierr.Tag)
}

func TestImport_Failures(t *testing.T) {
	t.Run("depth limit", func(t *testing.T) {
		loader := mapLoader{"a": `<x:b/>`, "b": `<x:c/>`, "c": "c"}
		ierr := buildErr(t, loader, buildOpts{maxDepth: 1}, "a")
		assert.Equal(t, ImportErrorFailed, ierr.Kind)
		assert.Equal(t, ErrMsgImportTooDeep, ierr.Message)
		assert.Equal(t, "c", ierr.Identifier)
	})

	t.Run("parse error in imported template", func(t *testing.T) {
		loader := mapLoader{"a": `<x:b/>`, "b": `<p>`}
		ierr := buildErr(t, loader, buildOpts{}, "a")
		assert.Equal(t, ImportErrorFailed, ierr.Kind)
		assert.Equal(t, ErrMsgImportFailed, ierr.Message)

		var perr *ParseError
		require.True(t, errors.As(ierr, &perr))
		assert.Equal(t, "b.html", perr.Path)
	})

	t.Run("loader error", func(t *testing.T) {
		providers := []ImportProvider{NewBundleProvider("x:gone", "gone")}
		ierr := buildErr(t, mapLoader{"a": `<x:gone/>`}, buildOpts{providers: providers}, "a")
		assert.Equal(t, ErrMsgImportFailed, ierr.Message)
		assert.ErrorIs(t, ierr, errTestNotFound)
		assert.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, ierr.Position)
	})

	t.Run("use without path", func(t *testing.T) {
		ierr := buildErr(t, mapLoader{"a": `<use:element as="b"/>`}, buildOpts{}, "a")
		assert.Equal(t, ErrMsgMissingPath, ierr.Message)
	})

	t.Run("no loader", func(t *testing.T) {
		_, _, err := NewPipeline(PipelineConfig{}, nil).Build("a")
		var ierr *ImportError
		require.True(t, errors.As(err, &ierr))
		assert.Equal(t, ErrMsgNoLoader, ierr.Message)
	})
}

func TestImport_DependenciesAreDeduplicated(t *testing.T) {
	loader := mapLoader{"a": `<x:c/><x:c/>`, "c": "c"}
	out, deps := buildAndCompile(t, loader, buildOpts{}, "a")
	assert.Equal(t, "cc", out.Content)
	assert.Equal(t, []string{"a", "c"}, depIDs(deps))
}

func TestExtends(t *testing.T) {
	layout := `<html><title>${title|Site}</title><body><block:content>empty</block:content></body></html>`
	tests := []struct {
		name     string
		page     string
		expected string
	}{
		{
			name:     "attributes and blocks fill the layout",
			page:     "<extends:layouts.base title=\"Home\"/>\n<block:content><p>Hi</p></block:content>",
			expected: `<html><title>Home</title><body><p>Hi</p></body></html>`,
		},
		{
			name:     "path attribute and parent block",
			page:     `<extends path="layouts/base"/><block:content><b>x</b><block:parent/></block:content>`,
			expected: `<html><title>Site</title><body><b>x</b>empty</body></html>`,
		},
		{
			name:     "leading comment is allowed",
			page:     "{{-- page --}}\n<extends:layouts.base/>",
			expected: `<html><title>Site</title><body>empty</body></html>`,
		},
		{
			name:     "undeclared block is appended",
			page:     `<extends:layouts.base/><block:content>c</block:content><block:aside>A</block:aside>`,
			expected: `<html><title>Site</title><body>c</body></html>A`,
		},
		{
			name:     "child blocks may use imports",
			page:     `<extends:layouts.base/><block:content><x:badge/></block:content>`,
			expected: `<html><title>Site</title><body><i>b</i></body></html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := mapLoader{"layouts/base": layout, "page": tt.page, "badge": "<i>b</i>"}
			out, deps := buildAndCompile(t, loader, buildOpts{}, "page")
			assert.Equal(t, tt.expected, out.Content)
			assert.Contains(t, depIDs(deps), "layouts/base")
		})
	}
}

func TestExtends_MustComeFirst(t *testing.T) {
	loader := mapLoader{
		"layouts/base": `<main/>`,
		"page":         `<p>x</p><extends:layouts.base/>`,
	}
	ierr := buildErr(t, loader, buildOpts{}, "page")
	assert.Equal(t, ImportErrorUnresolved, ierr.Kind)
	assert.Equal(t, ErrMsgExtendsPosition, ierr.Message)
}

func TestJoinIdentifier(t *testing.T) {
	tests := []struct {
		base, local, expected string
	}{
		{"", "card.body", "card/body"},
		{"ui", "a:b", "ui/a/b"},
		{"ui", "x", "ui/x"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinIdentifier(tt.base, tt.local))
		})
	}
}
