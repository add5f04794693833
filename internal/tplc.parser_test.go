package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) *Template {
	t.Helper()
	tpl, err := NewPipeline(PipelineConfig{}, nil).Parse(source, NewContext("page", "page.html", ""))
	require.NoError(t, err)
	return tpl
}

func parseErr(t *testing.T, source string) *ParseError {
	t.Helper()
	_, err := NewPipeline(PipelineConfig{}, nil).Parse(source, NewContext("page", "page.html", ""))
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected ParseError, got %T: %v", err, err)
	return perr
}

func TestParser_TreeShape(t *testing.T) {
	tpl := parse(t, "<div><p>a</p>b</div>")
	require.Len(t, tpl.Nodes, 1)

	div, ok := tpl.Nodes[0].(*TagNode)
	require.True(t, ok)
	assert.Equal(t, "div", div.Name)
	require.Len(t, div.Children, 2)

	p, ok := div.Children[0].(*TagNode)
	require.True(t, ok)
	assert.Equal(t, "p", p.Name)
	require.Len(t, p.Children, 1)
	assert.Equal(t, "a", p.Children[0].(*TextNode).Content)
	assert.Equal(t, "b", div.Children[1].(*TextNode).Content)
}

func TestParser_StampsContextAndPositions(t *testing.T) {
	tpl := parse(t, "x\n<b>{{ y }}</b>")
	require.Len(t, tpl.Nodes, 2)
	assert.Equal(t, "page", tpl.Context.Identifier)

	b := tpl.Nodes[1].(*TagNode)
	assert.Same(t, tpl.Context, b.Context())
	assert.Equal(t, Position{Offset: 2, Line: 2, Column: 1}, b.Pos())

	echo := b.Children[0].(*DynamicNode)
	assert.Equal(t, Position{Offset: 5, Line: 2, Column: 4}, echo.Pos())
}

func TestParser_UnbalancedTags(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		tag     string
	}{
		{"unclosed", "<div><p>x</p>", ErrMsgUnclosedTag, "div"},
		{"stray close", "x</p>", ErrMsgStrayCloseTag, "p"},
		{"mismatched", "<div></span>", ErrMsgMismatchedTag, "div/span"},
		{"unclosed block", "<block:main>x", ErrMsgUnclosedTag, "block:main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseErr(t, tt.input)
			assert.Equal(t, ParseErrorUnbalancedTag, perr.Kind)
			assert.Equal(t, tt.message, perr.Message)
			assert.Equal(t, tt.tag, perr.Tag)
			assert.Equal(t, "page.html", perr.Path)
		})
	}
}

func TestParser_CloseTagsMatchCaseInsensitively(t *testing.T) {
	tpl := parse(t, "<DIV>x</div>")
	require.Len(t, tpl.Nodes, 1)
	assert.Equal(t, "DIV", tpl.Nodes[0].(*TagNode).Name)
}

func TestParser_VoidElements(t *testing.T) {
	tpl := parse(t, "<br>x</br><img src=a.png><c/>")
	require.Len(t, tpl.Nodes, 4)

	br := tpl.Nodes[0].(*TagNode)
	assert.True(t, br.Void)
	assert.Empty(t, br.Children)
	assert.Equal(t, "x", tpl.Nodes[1].(*TextNode).Content)
	assert.True(t, tpl.Nodes[2].(*TagNode).Void)

	selfClosed := tpl.Nodes[3].(*TagNode)
	assert.Equal(t, "c", selfClosed.Name)
	assert.True(t, selfClosed.Void)
}

func TestParser_Attributes(t *testing.T) {
	tpl := parse(t, `<input disabled type=text value="" data-x='{{ y }}'>`)
	require.Len(t, tpl.Nodes, 1)
	input := tpl.Nodes[0].(*TagNode)
	require.Len(t, input.Attrs, 4)

	disabled := input.Attrs[0]
	assert.Equal(t, "disabled", disabled.Name)
	assert.True(t, disabled.IsBoolean())

	typ := input.Attrs[1]
	assert.Equal(t, byte(0), typ.Quote)
	text, ok := input.AttrText("type")
	require.True(t, ok)
	assert.Equal(t, "text", text)

	value := input.Attrs[2]
	assert.Equal(t, byte('"'), value.Quote)
	assert.NotNil(t, value.Value)
	assert.Empty(t, value.Value)
	assert.False(t, value.IsBoolean())

	data := input.Attrs[3]
	assert.Equal(t, byte('\''), data.Quote)
	require.Len(t, data.Value, 1)
	dyn, ok := data.Value[0].(*DynamicNode)
	require.True(t, ok)
	assert.Equal(t, "y", dyn.Expr)

	_, ok = input.Attr("missing")
	assert.False(t, ok)
}

func TestParser_DynamicInTagHead(t *testing.T) {
	tpl := parse(t, `<div {{ attrs }} id="a">`+"</div>")
	div := tpl.Nodes[0].(*TagNode)
	require.Len(t, div.Attrs, 2)

	assert.Equal(t, "", div.Attrs[0].Name)
	require.Len(t, div.Attrs[0].Value, 1)
	assert.Equal(t, "attrs", div.Attrs[0].Value[0].(*DynamicNode).Expr)
	assert.Equal(t, "id", div.Attrs[1].Name)
}

func TestParser_Filters(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expr   string
		filter string
	}{
		{"no filter", "{{ .Name }}", ".Name", ""},
		{"raw filter", "{{ .Body | raw }}", ".Body", FilterRaw},
		{"js filter", `{{ printf "%s|x" .A | js }}`, `printf "%s|x" .A`, FilterJS},
		{"unknown name is not a filter", "{{ .A | upper }}", ".A | upper", ""},
		{"logical or is not a filter", "{{ a || b }}", "a || b", ""},
		{"nested pipe is not a filter", "{{ (a | b) }}", "(a | b)", ""},
		{"raw echo", "{!! .Body !!}", ".Body", FilterRaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := parse(t, tt.input)
			require.Len(t, tpl.Nodes, 1)
			dyn, ok := tpl.Nodes[0].(*DynamicNode)
			require.True(t, ok)
			assert.Equal(t, tt.expr, dyn.Expr)
			assert.Equal(t, tt.filter, dyn.Filter)
		})
	}
}

func TestParser_Directives(t *testing.T) {
	tpl := parse(t, "@if (.A)a@else b@endif")
	require.Len(t, tpl.Nodes, 5)

	ifNode := tpl.Nodes[0].(*DirectiveNode)
	assert.Equal(t, "if", ifNode.Name)
	assert.Equal(t, ".A", ifNode.Body)
	assert.True(t, ifNode.HasBody)

	elseNode := tpl.Nodes[2].(*DirectiveNode)
	assert.Equal(t, "else", elseNode.Name)
	assert.False(t, elseNode.HasBody)
	assert.Equal(t, " b", tpl.Nodes[3].(*TextNode).Content)
}

func TestParser_DirectiveBodyRules(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"missing body", "@if x", ErrMsgDirectiveNoBody},
		{"blank body", "@foreach(  )", ErrMsgDirectiveNoBody},
		{"forbidden body", "@else(.A)", ErrMsgDirectiveBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseErr(t, tt.input)
			assert.Equal(t, ParseErrorUnexpectedToken, perr.Kind)
			assert.Equal(t, tt.message, perr.Message)
		})
	}
}

func TestParser_UnknownDirective(t *testing.T) {
	parser := NewParser(DefaultSyntaxes(), ParserConfig{}, nil)
	tok := NewCompositeToken(TokenTypeDirective, []Token{
		NewToken(TokenTypeDirectiveChar, "@", Position{Offset: 0, Line: 1, Column: 1}),
		NewToken(TokenTypeDirectiveName, "nope", Position{Offset: 1, Line: 1, Column: 2}),
	})

	_, err := parser.ParseTokens([]Token{tok})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ErrMsgUnknownDirective, perr.Message)
	assert.Equal(t, "nope", perr.Tag)
}

func TestParser_NoSyntaxForToken(t *testing.T) {
	parser := NewParser([]Syntax{NewHTMLSyntax()}, ParserConfig{}, nil)
	tok := NewToken(TokenTypeInline, "${x}", Position{Offset: 0, Line: 1, Column: 1})

	_, err := parser.ParseTokens([]Token{tok})
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, ErrMsgNoSyntax, perr.Message)
	assert.Equal(t, string(TokenTypeInline), perr.Tag)
}

func TestParser_Slots(t *testing.T) {
	tpl := parse(t, "<block:main><p>d</p></block:main><block:aside/>${title|Home}${x}")
	require.Len(t, tpl.Nodes, 4)

	main := tpl.Nodes[0].(*SlotNode)
	assert.Equal(t, "main", main.Name)
	assert.False(t, main.Inline)
	require.Len(t, main.Children, 1)
	assert.Equal(t, "p", main.Children[0].(*TagNode).Name)

	aside := tpl.Nodes[1].(*SlotNode)
	assert.Equal(t, "aside", aside.Name)
	assert.Empty(t, aside.Children)

	title := tpl.Nodes[2].(*SlotNode)
	assert.True(t, title.Inline)
	require.Len(t, title.Children, 1)
	assert.Equal(t, "Home", title.Children[0].(*TextNode).Content)

	x := tpl.Nodes[3].(*SlotNode)
	assert.True(t, x.Inline)
	assert.Nil(t, x.Children)
}

func TestParser_CommentsAndEscapes(t *testing.T) {
	tpl := parse(t, "<!-- keep -->{{-- drop --}}@@x@{{ y }}")
	require.Len(t, tpl.Nodes, 6)

	markup := tpl.Nodes[0].(*CommentNode)
	assert.Equal(t, " keep ", markup.Content)
	assert.False(t, markup.Template)

	tmpl := tpl.Nodes[1].(*CommentNode)
	assert.Equal(t, " drop ", tmpl.Content)
	assert.True(t, tmpl.Template)

	assert.Equal(t, "@", tpl.Nodes[2].(*TextNode).Content)
	assert.Equal(t, "x", tpl.Nodes[3].(*TextNode).Content)
	assert.Equal(t, "{{", tpl.Nodes[4].(*TextNode).Content)
	assert.Equal(t, " y }}", tpl.Nodes[5].(*TextNode).Content)
}

func TestParser_VerbatimBody(t *testing.T) {
	tpl := parse(t, "<style>a < b {{ c }}</style>")
	style := tpl.Nodes[0].(*TagNode)
	require.Len(t, style.Children, 2)
	assert.Equal(t, "a < b ", style.Children[0].(*TextNode).Content)
	assert.Equal(t, "c", style.Children[1].(*DynamicNode).Expr)
}

func TestParser_LexErrorPassesThrough(t *testing.T) {
	_, err := NewPipeline(PipelineConfig{}, nil).Parse("{{ x", NewContext("page", "page.html", ""))
	var lerr *LexError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, LexErrorUnterminated, lerr.Kind)
}

func TestSplitQualifiedName(t *testing.T) {
	tests := []struct {
		input     string
		ns, local string
		ok        bool
	}{
		{"ui:button", "ui", "button", true},
		{"ui.card.body", "ui", "card.body", true},
		{"x/y", "x", "y", true},
		{"div", "", "div", false},
		{":x", "", ":x", false},
		{"x:", "", "x:", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ns, local, ok := SplitQualifiedName(tt.input)
			assert.Equal(t, tt.ns, ns)
			assert.Equal(t, tt.local, local)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestContext_Chain(t *testing.T) {
	root := NewContext("page", "page.html", "1")
	card := root.Import("card", "card.html", "x", "2", Position{Offset: 3, Line: 1, Column: 4})
	badge := card.Import("badge", "", "x", "3", Position{Offset: 0, Line: 1, Column: 1})

	assert.Equal(t, []string{"page", "card", "badge"}, badge.Chain())
	assert.Equal(t, 2, badge.Depth())
	assert.True(t, badge.Contains("page"))
	assert.False(t, card.Contains("badge"))
	assert.Equal(t, "badge", badge.Location())
	assert.Equal(t, "card.html", card.Location())
	assert.Equal(t, "page -> card -> badge", badge.String())
}

func TestCloneNodes_IsDeep(t *testing.T) {
	tpl := parse(t, `<a href="x">t</a>`)
	clone := CloneNodes(tpl.Nodes)

	orig := tpl.Nodes[0].(*TagNode)
	copied := clone[0].(*TagNode)
	copied.Children[0].(*TextNode).Content = "changed"
	copied.Attrs[0].Value[0].(*TextNode).Content = "y"

	assert.Equal(t, "t", orig.Children[0].(*TextNode).Content)
	text, _ := orig.AttrText("href")
	assert.Equal(t, "x", text)
	assert.Nil(t, CloneNodes(nil))
}
