package tplc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestCodec_RoundTrip(t *testing.T) {
	engine, _ := newTestEngine(t, map[string]string{
		"page":  "<main>\n<x:card/>\n</main>",
		"card":  "<div>\n<x:badge/>\n</div>",
		"badge": "<span>\n{{ index .Items 5 }}\n</span>",
	})
	compiled, err := engine.Compile("page")
	require.NoError(t, err)

	data, err := MarshalCompiled(compiled)
	require.NoError(t, err)

	decoded, err := UnmarshalCompiled(data)
	require.NoError(t, err)
	assert.Equal(t, compiled.Identifier, decoded.Identifier)
	assert.Equal(t, compiled.Content, decoded.Content)
	assert.Equal(t, compiled.Dependencies(), decoded.Dependencies())
	assert.Len(t, decoded.SourceMap.Entries, len(compiled.SourceMap.Entries))
	assert.Equal(t, compiled.Lookup(4), decoded.Lookup(4))
	assert.Len(t, decoded.SourceMap.Contexts(), 3)
}

func TestCodec_StreamHoldsSeveralSources(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	first, err := engine.CompileSource("one", "<p>1</p>")
	require.NoError(t, err)
	second, err := engine.CompileSource("two", "{{ .Two }}")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCompiled(&buf, first))
	require.NoError(t, WriteCompiled(&buf, second))

	got, err := ReadCompiled(&buf)
	require.NoError(t, err)
	assert.Equal(t, "one", got.Identifier)
	got, err = ReadCompiled(&buf)
	require.NoError(t, err)
	assert.Equal(t, "two", got.Identifier)
	assert.Equal(t, second.Content, got.Content)
}

func TestCodec_Rejects(t *testing.T) {
	future, err := msgpack.Marshal(&compiledPayload{Schema: compiledSchemaVersion + 1})
	require.NoError(t, err)
	badParent, err := msgpack.Marshal(&compiledPayload{
		Schema:   compiledSchemaVersion,
		Contexts: []contextRecord{{Identifier: "a", Parent: 5}},
	})
	require.NoError(t, err)
	cyclic, err := msgpack.Marshal(&compiledPayload{
		Schema:   compiledSchemaVersion,
		Contexts: []contextRecord{{Identifier: "a", Parent: 1}, {Identifier: "b", Parent: 0}},
	})
	require.NoError(t, err)
	badEntry, err := msgpack.Marshal(&compiledPayload{
		Schema:  compiledSchemaVersion,
		Entries: []entryRecord{{GeneratedLine: 1, Context: 2}},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte{0xc1, 0x00, 0x13}},
		{"future schema", future},
		{"parent out of range", badParent},
		{"cyclic parents", cyclic},
		{"entry context out of range", badEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCompiled(tt.data)
			require.Error(t, err)
			metadata(t, err)
		})
	}
}
