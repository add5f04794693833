package tplc

import (
	"sort"
	"strconv"
	"sync"
)

// MemoryLoader holds templates in memory. It is primarily intended for
// tests and for embedding templates in a binary. The freshness token is a
// revision counter bumped by every Set.
type MemoryLoader struct {
	mu        sync.RWMutex
	templates map[string]memoryEntry
	revision  int
}

type memoryEntry struct {
	code     string
	revision int
}

// MemoryLoaderDriver is the driver for creating MemoryLoader instances.
type MemoryLoaderDriver struct{}

func init() {
	RegisterLoaderDriver(LoaderDriverMemory, &MemoryLoaderDriver{})
}

// Open creates a new MemoryLoader. The connection string is ignored.
func (d *MemoryLoaderDriver) Open(connectionString string) (Loader, error) {
	return NewMemoryLoader(nil), nil
}

// NewMemoryLoader creates a loader holding templates (identifier -> source).
func NewMemoryLoader(templates map[string]string) *MemoryLoader {
	l := &MemoryLoader{templates: make(map[string]memoryEntry, len(templates))}
	for id, code := range templates {
		l.Set(id, code)
	}
	return l
}

// Set adds or replaces a template.
func (l *MemoryLoader) Set(identifier, code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revision++
	l.templates[identifier] = memoryEntry{code: code, revision: l.revision}
}

// Remove deletes a template. Removing an unknown identifier is a no-op.
func (l *MemoryLoader) Remove(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.templates, identifier)
}

// Load returns the template stored under identifier.
func (l *MemoryLoader) Load(identifier string) (*Source, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.templates[identifier]
	if !ok {
		return nil, NewTemplateNotFoundError(identifier)
	}
	return &Source{
		Code:      entry.code,
		Path:      identifier,
		Freshness: strconv.Itoa(entry.revision),
	}, nil
}

// Exists reports whether identifier is stored.
func (l *MemoryLoader) Exists(identifier string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.templates[identifier]
	return ok
}

// Identifiers returns all stored identifiers, sorted.
func (l *MemoryLoader) Identifiers() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.templates))
	for id := range l.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
