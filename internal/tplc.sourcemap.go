package internal

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// MapEntry links a span of generated lines to the node that produced it
type MapEntry struct {
	GeneratedLine    int
	GeneratedEndLine int
	GeneratedColumn  int
	Line             int
	Column           int
	Context          *Context
	Dynamic          bool
}

// Frame is one level of a mapped trace
type Frame struct {
	Identifier string
	Path       string
	Line       int
	Column     int
}

// String returns "path:line:column"
func (f Frame) String() string {
	name := f.Path
	if name == "" {
		name = f.Identifier
	}
	return fmt.Sprintf(ErrFmtPosition, name, f.Line, f.Column)
}

// SourceMap maps generated lines back to template positions
type SourceMap struct {
	Entries []MapEntry
}

// Lookup returns the frames for a generated line, innermost template first
// and the root template last. A line outside every entry yields nil.
func (m *SourceMap) Lookup(line int) []Frame {
	entry, ok := m.entryFor(line)
	if !ok {
		return nil
	}
	frames := []Frame{{
		Identifier: entry.Context.Identifier,
		Path:       entry.Context.Path,
		Line:       entry.Line + (line - entry.GeneratedLine),
		Column:     entry.Column,
	}}
	if line != entry.GeneratedLine {
		frames[0].Column = 1
	}
	for ctx := entry.Context; ctx != nil && ctx.Parent != nil; ctx = ctx.Parent {
		frames = append(frames, Frame{
			Identifier: ctx.Parent.Identifier,
			Path:       ctx.Parent.Path,
			Line:       ctx.ImportPos.Line,
			Column:     ctx.ImportPos.Column,
		})
	}
	return frames
}

// entryFor picks the entry covering line. Dynamic entries win over static
// ones; among equals the narrowest and then the latest span wins.
func (m *SourceMap) entryFor(line int) (MapEntry, bool) {
	best := -1
	for i, e := range m.Entries {
		if line < e.GeneratedLine || line > e.GeneratedEndLine || e.Context == nil {
			continue
		}
		if best < 0 || betterEntry(e, m.Entries[best]) {
			best = i
		}
	}
	if best < 0 {
		return MapEntry{}, false
	}
	return m.Entries[best], true
}

func betterEntry(a, b MapEntry) bool {
	if a.Dynamic != b.Dynamic {
		return a.Dynamic
	}
	spanA := a.GeneratedEndLine - a.GeneratedLine
	spanB := b.GeneratedEndLine - b.GeneratedLine
	if spanA != spanB {
		return spanA < spanB
	}
	return a.GeneratedLine > b.GeneratedLine || (a.GeneratedLine == b.GeneratedLine && a.GeneratedColumn >= b.GeneratedColumn)
}

// Contexts returns the distinct contexts referenced by entries, in first
// appearance order
func (m *SourceMap) Contexts() []*Context {
	seen := make(map[*Context]bool)
	var out []*Context
	for _, e := range m.Entries {
		for ctx := e.Context; ctx != nil; ctx = ctx.Parent {
			if !seen[ctx] {
				seen[ctx] = true
				out = append(out, ctx)
			}
		}
	}
	return out
}

// Sort orders entries by generated position
func (m *SourceMap) Sort() {
	sort.SliceStable(m.Entries, func(i, j int) bool {
		a, b := m.Entries[i], m.Entries[j]
		if a.GeneratedLine != b.GeneratedLine {
			return a.GeneratedLine < b.GeneratedLine
		}
		return a.GeneratedColumn < b.GeneratedColumn
	})
}

// MappedError is a runtime error of the generated program traced back to
// the templates that produced the failing line
type MappedError struct {
	Cause         error
	GeneratedLine int
	Frames        []Frame
}

func (e *MappedError) Error() string {
	var sb strings.Builder
	if e.Cause != nil {
		sb.WriteString(e.Cause.Error())
	}
	for _, f := range e.Frames {
		sb.WriteString("\n  at ")
		sb.WriteString(f.String())
	}
	return sb.String()
}

// Unwrap exposes the runtime error
func (e *MappedError) Unwrap() error {
	return e.Cause
}

// MapException attaches template frames to a runtime error raised at a
// generated line
func MapException(err error, sm *SourceMap, generatedLine int) *MappedError {
	mapped := &MappedError{Cause: err, GeneratedLine: generatedLine}
	if sm != nil {
		mapped.Frames = sm.Lookup(generatedLine)
	}
	return mapped
}

// templateErrLine matches "template: NAME:LINE:" and "template: NAME:LINE:COL:"
var templateErrLine = regexp.MustCompile(`template: [^:\s]*:(\d+)(?::\d+)?:`)

// GeneratedLineOf extracts the generated line from a text/template parse
// or execution error
func GeneratedLineOf(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	m := templateErrLine.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	line, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false
	}
	return line, true
}
