package tplc

import (
	"errors"
	"strings"
	"testing"
	"text/template"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestEngine(t *testing.T, templates map[string]string, opts ...Option) (*Engine, *MemoryLoader) {
	t.Helper()
	loader := NewMemoryLoader(templates)
	opts = append([]Option{
		WithLogger(zaptest.NewLogger(t)),
		WithLoader(loader),
		WithDirectory("x", ""),
	}, opts...)
	engine, err := New(opts...)
	require.NoError(t, err)
	return engine, loader
}

func execute(t *testing.T, compiled *CompiledSource, data any) (string, error) {
	t.Helper()
	tmpl, err := template.New(compiled.Identifier).Parse(compiled.Content)
	require.NoError(t, err)
	var sb strings.Builder
	err = tmpl.Execute(&sb, data)
	return sb.String(), err
}

func metadata(t *testing.T, err error, keys ...string) map[string]string {
	t.Helper()
	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr), "expected CustomError, got %T: %v", err, err)
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		value, ok := customErr.GetMetadata(key)
		require.True(t, ok, "missing metadata %q", key)
		out[key] = value
	}
	return out
}

func TestEngine_CompileWithImports(t *testing.T) {
	engine, _ := newTestEngine(t, map[string]string{
		"page": `<x:card title="Hi"><b>{{ .Name }}</b></x:card>`,
		"card": `<div class="card"><h1>${title}</h1>${context}</div>`,
	})

	compiled, err := engine.Compile("page")
	require.NoError(t, err)
	assert.Equal(t, "page", compiled.Identifier)

	deps := compiled.Dependencies()
	require.Len(t, deps, 2)
	assert.Equal(t, "page", deps[0].Identifier)
	assert.Equal(t, "card", deps[1].Identifier)

	out, err := execute(t, compiled, map[string]string{"Name": "<Ann>"})
	require.NoError(t, err)
	assert.Equal(t, `<div class="card"><h1>Hi</h1><b>&lt;Ann&gt;</b></div>`, out)
}

func TestEngine_CompileSource(t *testing.T) {
	engine, _ := newTestEngine(t, map[string]string{
		"badge": `<i>${context}</i>`,
	})

	compiled, err := engine.CompileSource("inline", `<p><x:badge>new</x:badge></p>`)
	require.NoError(t, err)
	assert.Equal(t, `<p><i>new</i></p>`, compiled.Content)
	assert.Equal(t, "inline", compiled.Identifier)
	require.Len(t, compiled.Dependencies(), 2)
}

func TestEngine_ParseErrorMetadata(t *testing.T) {
	engine, _ := newTestEngine(t, map[string]string{
		"bad": "<div>\n<p>",
	})

	_, err := engine.Compile("bad")
	require.Error(t, err)

	meta := metadata(t, err, MetaKeyPath, MetaKeyLine, MetaKeyColumn, MetaKeyKind, MetaKeyTag)
	assert.Equal(t, "bad", meta[MetaKeyPath])
	assert.Equal(t, "2", meta[MetaKeyLine])
	assert.Equal(t, "1", meta[MetaKeyColumn])
	assert.Equal(t, string(ParseErrorUnbalancedTag), meta[MetaKeyKind])
	assert.Equal(t, "p", meta[MetaKeyTag])

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Error(t, engine.Check("bad"))
}

func TestEngine_CycleMetadata(t *testing.T) {
	engine, _ := newTestEngine(t, map[string]string{
		"a": `<x:b/>`,
		"b": `<x:a/>`,
	})

	_, err := engine.Compile("a")
	meta := metadata(t, err, MetaKeyKind, MetaKeyChain, MetaKeyIdentifier)
	assert.Equal(t, string(ImportErrorCycle), meta[MetaKeyKind])
	assert.Equal(t, "a -> b -> a", meta[MetaKeyChain])
	assert.Equal(t, "a", meta[MetaKeyIdentifier])

	var importErr *ImportError
	require.True(t, errors.As(err, &importErr))
	assert.Equal(t, ImportErrorCycle, importErr.Kind)
}

func TestEngine_NotFoundAndNoLoader(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	_, err := engine.Compile("missing")
	meta := metadata(t, err, MetaKeyIdentifier)
	assert.Equal(t, "missing", meta[MetaKeyIdentifier])

	bare := MustNew()
	_, err = bare.Compile("page")
	meta = metadata(t, err, MetaKeyIdentifier)
	assert.Equal(t, "page", meta[MetaKeyIdentifier])
	assert.Nil(t, bare.Loader())

	_, _, err = bare.Build("page")
	assert.Error(t, err)
}

func TestEngine_OptionErrorsAreJoined(t *testing.T) {
	_, err := New(
		WithMaxImportDepth(0),
		WithDirectory("", "components"),
		WithOutputDelimiters("", "}}"),
	)
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 3)

	meta := metadata(t, err, MetaKeyOption)
	assert.Equal(t, "max_import_depth", meta[MetaKeyOption])

	assert.Panics(t, func() { MustNew(WithEchoDelimiters("{{", "}}", "{{", "}}")) })
}

func TestEngine_CustomFilter(t *testing.T) {
	engine, _ := newTestEngine(t, nil, WithFilter("upper", "upper"))
	assert.Contains(t, engine.Filters(), "upper")

	compiled, err := engine.CompileSource("page", `<p>{{ .N | upper }}</p>`)
	require.NoError(t, err)
	assert.Equal(t, `<p>{{ upper (.N) }}</p>`, compiled.Content)

	tmpl, err := template.New("page").Funcs(template.FuncMap{"upper": strings.ToUpper}).Parse(compiled.Content)
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, tmpl.Execute(&sb, map[string]string{"N": "ann"}))
	assert.Equal(t, "<p>ANN</p>", sb.String())
}

func TestEngine_BuiltinFilterCannotBeReplaced(t *testing.T) {
	_, err := New(WithFilter("raw", "noop"))
	require.Error(t, err)
	meta := metadata(t, err, MetaKeyOption, MetaKeyValue)
	assert.Equal(t, "filter", meta[MetaKeyOption])
	assert.Equal(t, "raw", meta[MetaKeyValue])
}

func TestEngine_CustomDirective(t *testing.T) {
	engine, _ := newTestEngine(t, nil,
		WithDirective(DirectiveSpec{Name: "unless", Body: BodyRequired, Action: "if not %s"}),
		WithDirective(DirectiveSpec{Name: "endunless", Body: BodyForbidden, Action: "end"}),
	)
	assert.Contains(t, engine.Directives(), "unless")

	compiled, err := engine.CompileSource("page", "@unless(.A)no@endunless")
	require.NoError(t, err)
	out, err := execute(t, compiled, map[string]bool{"A": false})
	require.NoError(t, err)
	assert.Equal(t, "no", out)
}

func TestEngine_Delimiters(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		input    string
		expected string
	}{
		{
			name:     "echo delimiters",
			opts:     []Option{WithEchoDelimiters("[[", "]]", "[!", "!]")},
			input:    "[[ .A ]][! .B !]{{ x }}",
			expected: `{{ html (.A) }}{{ .B }}{{"{{"}} x }}`,
		},
		{
			name:     "output delimiters",
			opts:     []Option{WithOutputDelimiters("<%", "%>")},
			input:    "{{ x }}",
			expected: "<% html (x) %>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newTestEngine(t, nil, tt.opts...)
			compiled, err := engine.CompileSource("page", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, compiled.Content)
		})
	}
}

func TestEngine_MapTemplateError(t *testing.T) {
	engine, _ := newTestEngine(t, map[string]string{
		"page":  "<main>\n<x:card/>\n</main>",
		"card":  "<div>\n<x:badge/>\n</div>",
		"badge": "<span>\n{{ index .Items 5 }}\n</span>",
	})
	compiled, err := engine.Compile("page")
	require.NoError(t, err)

	_, execErr := execute(t, compiled, map[string]any{"Items": []int{1}})
	require.Error(t, execErr)

	mapped := compiled.MapTemplateError(execErr)
	meta := metadata(t, mapped, MetaKeyPath, MetaKeyLine, MetaKeyColumn, MetaKeyChain, MetaKeyGenLine)
	assert.Equal(t, "badge", meta[MetaKeyPath])
	assert.Equal(t, "2", meta[MetaKeyLine])
	assert.Equal(t, "1", meta[MetaKeyColumn])
	assert.Equal(t, "page -> card -> badge", meta[MetaKeyChain])
	assert.Equal(t, "4", meta[MetaKeyGenLine])
	assert.ErrorIs(t, mapped, execErr)

	frames := compiled.Lookup(4)
	require.Len(t, frames, 3)
	assert.Equal(t, "card", frames[1].Identifier)

	plain := errors.New("boom")
	assert.Equal(t, plain, compiled.MapTemplateError(plain))
}

func TestEngine_Stale(t *testing.T) {
	engine, loader := newTestEngine(t, map[string]string{
		"page": `<x:card/>`,
		"card": `<p>card</p>`,
	})
	compiled, err := engine.Compile("page")
	require.NoError(t, err)
	assert.False(t, compiled.Stale(loader))

	loader.Set("card", `<p>changed</p>`)
	assert.True(t, compiled.Stale(loader))

	loader.Remove("page")
	assert.True(t, compiled.Stale(loader))
}

func TestEngine_ParseAndTokenize(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	tokens, err := engine.Tokenize("page", "<p>{{ x }}</p>")
	require.NoError(t, err)
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Value)
	}
	assert.Equal(t, "<p>{{ x }}</p>", sb.String())

	tpl, err := engine.Parse("page", "<p>{{ x }}</p>")
	require.NoError(t, err)
	require.Len(t, tpl.Nodes, 1)
	assert.Equal(t, NodeTypeTag, tpl.Nodes[0].Type())

	_, err = engine.Parse("page", "</p>")
	meta := metadata(t, err, MetaKeyKind)
	assert.Equal(t, string(ParseErrorUnbalancedTag), meta[MetaKeyKind])
}
