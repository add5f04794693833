package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importedContexts() (page, card, badge *Context) {
	page = NewContext("page", "page.html", "1")
	card = page.Import("card", "card.html", "x", "1", Position{Offset: 7, Line: 2, Column: 1})
	badge = card.Import("badge", "badge.html", "x", "1", Position{Offset: 6, Line: 2, Column: 3})
	return page, card, badge
}

func TestSourceMap_LookupFollowsImports(t *testing.T) {
	page, card, badge := importedContexts()
	sm := &SourceMap{Entries: []MapEntry{
		{GeneratedLine: 1, GeneratedEndLine: 2, GeneratedColumn: 1, Line: 1, Column: 1, Context: page},
		{GeneratedLine: 2, GeneratedEndLine: 3, GeneratedColumn: 1, Line: 1, Column: 1, Context: card},
		{GeneratedLine: 4, GeneratedEndLine: 4, GeneratedColumn: 1, Line: 2, Column: 1, Context: badge, Dynamic: true},
	}}

	frames := sm.Lookup(4)
	assert.Equal(t, []Frame{
		{Identifier: "badge", Path: "badge.html", Line: 2, Column: 1},
		{Identifier: "card", Path: "card.html", Line: 2, Column: 3},
		{Identifier: "page", Path: "page.html", Line: 2, Column: 1},
	}, frames)

	assert.Equal(t, []*Context{page, card, badge}, sortedByDepth(sm.Contexts()))
}

func sortedByDepth(contexts []*Context) []*Context {
	out := make([]*Context, len(contexts))
	for _, c := range contexts {
		out[c.Depth()] = c
	}
	return out
}

func TestSourceMap_LookupPrefersDynamicThenNarrowest(t *testing.T) {
	ctx := NewContext("page", "", "")
	tests := []struct {
		name     string
		entries  []MapEntry
		line     int
		expected Frame
	}{
		{
			name: "dynamic beats static",
			entries: []MapEntry{
				{GeneratedLine: 1, GeneratedEndLine: 1, GeneratedColumn: 1, Line: 1, Column: 1, Context: ctx},
				{GeneratedLine: 1, GeneratedEndLine: 1, GeneratedColumn: 5, Line: 1, Column: 5, Context: ctx, Dynamic: true},
				{GeneratedLine: 1, GeneratedEndLine: 1, GeneratedColumn: 9, Line: 1, Column: 9, Context: ctx},
			},
			line:     1,
			expected: Frame{Identifier: "page", Line: 1, Column: 5},
		},
		{
			name: "narrowest span wins",
			entries: []MapEntry{
				{GeneratedLine: 1, GeneratedEndLine: 5, GeneratedColumn: 1, Line: 1, Column: 1, Context: ctx},
				{GeneratedLine: 3, GeneratedEndLine: 3, GeneratedColumn: 2, Line: 7, Column: 2, Context: ctx},
			},
			line:     3,
			expected: Frame{Identifier: "page", Line: 7, Column: 2},
		},
		{
			name: "line offset inside a multi-line entry",
			entries: []MapEntry{
				{GeneratedLine: 1, GeneratedEndLine: 5, GeneratedColumn: 4, Line: 10, Column: 4, Context: ctx},
			},
			line:     3,
			expected: Frame{Identifier: "page", Line: 12, Column: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := &SourceMap{Entries: tt.entries}
			frames := sm.Lookup(tt.line)
			require.Len(t, frames, 1)
			assert.Equal(t, tt.expected, frames[0])
		})
	}
}

func TestSourceMap_LookupMiss(t *testing.T) {
	sm := &SourceMap{Entries: []MapEntry{
		{GeneratedLine: 1, GeneratedEndLine: 1, Line: 1, Column: 1, Context: NewContext("p", "", "")},
	}}
	assert.Nil(t, sm.Lookup(2))
	assert.Nil(t, (&SourceMap{}).Lookup(1))
}

func TestGeneratedLineOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		line int
		ok   bool
	}{
		{
			name: "execution error with column",
			err:  errors.New(`template: page:4:12: executing "page" at <index .Items 5>: error calling index: index out of range: 5`),
			line: 4,
			ok:   true,
		},
		{
			name: "parse error without column",
			err:  errors.New(`template: page:7: function "nope" not defined`),
			line: 7,
			ok:   true,
		},
		{name: "unrelated error", err: errors.New("boom")},
		{name: "nil error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := GeneratedLineOf(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.line, line)
		})
	}
}

func TestMapException(t *testing.T) {
	_, _, badge := importedContexts()
	sm := &SourceMap{Entries: []MapEntry{
		{GeneratedLine: 4, GeneratedEndLine: 4, Line: 2, Column: 1, Context: badge, Dynamic: true},
	}}
	cause := errors.New("index out of range")

	mapped := MapException(cause, sm, 4)
	require.Len(t, mapped.Frames, 3)
	assert.Equal(t, 4, mapped.GeneratedLine)
	assert.ErrorIs(t, mapped, cause)
	assert.Equal(t, "index out of range\n  at badge.html:2:1\n  at card.html:2:3\n  at page.html:2:1", mapped.Error())

	bare := MapException(cause, nil, 4)
	assert.Empty(t, bare.Frames)
	assert.Equal(t, "index out of range", bare.Error())
}
