package tplc

import (
	"bytes"
	"io"

	"fortio.org/safecast"
	"github.com/itsatony/go-tplc/internal"
	"github.com/vmihailenco/msgpack/v5"
)

// compiledSchemaVersion is bumped whenever compiledPayload changes shape.
const compiledSchemaVersion uint16 = 1

// noParent marks a root context in the flattened context table.
const noParent int32 = -1

// compiledPayload is the serialized form of a CompiledSource. Contexts are
// flattened into a table and referenced by index so that the shared chain
// is stored once.
type compiledPayload struct {
	Schema       uint16
	Identifier   string
	Content      string
	Contexts     []contextRecord
	Entries      []entryRecord
	Dependencies []dependencyRecord
}

type contextRecord struct {
	Identifier   string
	Path         string
	Namespace    string
	Freshness    string
	Parent       int32
	ImportOffset uint32
	ImportLine   uint32
	ImportColumn uint32
}

type entryRecord struct {
	GeneratedLine    uint32
	GeneratedEndLine uint32
	GeneratedColumn  uint32
	Line             uint32
	Column           uint32
	Context          uint32
	Dynamic          bool
}

type dependencyRecord struct {
	Identifier string
	Path       string
	Freshness  string
}

// MarshalCompiled encodes c with msgpack for an external artifact cache.
func MarshalCompiled(c *CompiledSource) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCompiled(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalCompiled decodes bytes produced by MarshalCompiled.
func UnmarshalCompiled(data []byte) (*CompiledSource, error) {
	return ReadCompiled(bytes.NewReader(data))
}

// WriteCompiled encodes c to w.
func WriteCompiled(w io.Writer, c *CompiledSource) error {
	payload, err := encodePayload(c)
	if err != nil {
		return NewCodecError(ErrMsgEncodeFailed, err)
	}
	if err := msgpack.NewEncoder(w).Encode(payload); err != nil {
		return NewCodecError(ErrMsgEncodeFailed, err)
	}
	return nil
}

// ReadCompiled decodes one compiled source from r.
func ReadCompiled(r io.Reader) (*CompiledSource, error) {
	var payload compiledPayload
	if err := msgpack.NewDecoder(r).Decode(&payload); err != nil {
		return nil, NewCodecError(ErrMsgDecodeFailed, err)
	}
	if payload.Schema != compiledSchemaVersion {
		return nil, NewCodecError(ErrMsgCodecVersion, nil)
	}
	c, err := decodePayload(&payload)
	if err != nil {
		return nil, NewCodecError(ErrMsgDecodeFailed, err)
	}
	return c, nil
}

func encodePayload(c *CompiledSource) (*compiledPayload, error) {
	p := &compiledPayload{
		Schema:     compiledSchemaVersion,
		Identifier: c.Identifier,
		Content:    c.Content,
	}
	for _, d := range c.dependencies {
		p.Dependencies = append(p.Dependencies, dependencyRecord(d))
	}
	if c.SourceMap == nil {
		return p, nil
	}

	contexts := c.SourceMap.Contexts()
	index := make(map[*internal.Context]uint32, len(contexts))
	for i, ctx := range contexts {
		idx, err := safecast.Conv[uint32](i)
		if err != nil {
			return nil, err
		}
		index[ctx] = idx
	}
	for _, ctx := range contexts {
		rec := contextRecord{
			Identifier: ctx.Identifier,
			Path:       ctx.Path,
			Namespace:  ctx.Namespace,
			Freshness:  ctx.Freshness,
			Parent:     noParent,
		}
		if ctx.Parent != nil {
			parent, err := safecast.Conv[int32](index[ctx.Parent])
			if err != nil {
				return nil, err
			}
			rec.Parent = parent
		}
		var err error
		if rec.ImportOffset, err = safecast.Conv[uint32](ctx.ImportPos.Offset); err != nil {
			return nil, err
		}
		if rec.ImportLine, err = safecast.Conv[uint32](ctx.ImportPos.Line); err != nil {
			return nil, err
		}
		if rec.ImportColumn, err = safecast.Conv[uint32](ctx.ImportPos.Column); err != nil {
			return nil, err
		}
		p.Contexts = append(p.Contexts, rec)
	}

	for _, e := range c.SourceMap.Entries {
		if e.Context == nil {
			continue
		}
		rec, err := encodeEntry(e, index[e.Context])
		if err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, rec)
	}
	return p, nil
}

func encodeEntry(e MapEntry, ctx uint32) (entryRecord, error) {
	values := [5]int{e.GeneratedLine, e.GeneratedEndLine, e.GeneratedColumn, e.Line, e.Column}
	var out [5]uint32
	for i, v := range values {
		u, err := safecast.Conv[uint32](v)
		if err != nil {
			return entryRecord{}, err
		}
		out[i] = u
	}
	return entryRecord{
		GeneratedLine:    out[0],
		GeneratedEndLine: out[1],
		GeneratedColumn:  out[2],
		Line:             out[3],
		Column:           out[4],
		Context:          ctx,
		Dynamic:          e.Dynamic,
	}, nil
}

func decodePayload(p *compiledPayload) (*CompiledSource, error) {
	contexts := make([]*internal.Context, len(p.Contexts))
	for i, rec := range p.Contexts {
		contexts[i] = &internal.Context{
			Identifier: rec.Identifier,
			Path:       rec.Path,
			Namespace:  rec.Namespace,
			Freshness:  rec.Freshness,
			ImportPos: internal.Position{
				Offset: int(rec.ImportOffset),
				Line:   int(rec.ImportLine),
				Column: int(rec.ImportColumn),
			},
		}
	}
	for i, rec := range p.Contexts {
		if rec.Parent == noParent {
			continue
		}
		parent, err := safecast.Conv[int](rec.Parent)
		if err != nil || parent >= len(contexts) || parent == i {
			return nil, NewCodecError(ErrMsgContextRef, err)
		}
		contexts[i].Parent = contexts[parent]
	}
	for _, ctx := range contexts {
		steps := 0
		for c := ctx.Parent; c != nil; c = c.Parent {
			if steps++; steps > len(contexts) {
				return nil, NewCodecError(ErrMsgContextCycle, nil)
			}
		}
	}

	sm := &SourceMap{Entries: make([]MapEntry, 0, len(p.Entries))}
	for _, rec := range p.Entries {
		if int(rec.Context) >= len(contexts) {
			return nil, NewCodecError(ErrMsgContextRef, nil)
		}
		sm.Entries = append(sm.Entries, MapEntry{
			GeneratedLine:    int(rec.GeneratedLine),
			GeneratedEndLine: int(rec.GeneratedEndLine),
			GeneratedColumn:  int(rec.GeneratedColumn),
			Line:             int(rec.Line),
			Column:           int(rec.Column),
			Context:          contexts[rec.Context],
			Dynamic:          rec.Dynamic,
		})
	}

	deps := make([]Dependency, 0, len(p.Dependencies))
	for _, d := range p.Dependencies {
		deps = append(deps, Dependency(d))
	}
	return &CompiledSource{
		Identifier:   p.Identifier,
		Content:      p.Content,
		SourceMap:    sm,
		dependencies: deps,
	}, nil
}
