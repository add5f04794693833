package internal

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// BodyRule states whether a directive takes a parenthesized body
type BodyRule int

// Body rules
const (
	BodyForbidden BodyRule = iota
	BodyOptional
	BodyRequired
)

// DirectiveSpec describes a directive and its output action. Action is a
// format string receiving the body when the directive has one, e.g. "if %s".
type DirectiveSpec struct {
	Name   string
	Body   BodyRule
	Action string
	// ActionNoBody is used for BodyOptional directives written without a body
	ActionNoBody string
}

// FilterSpec maps a source filter name to a function of the output target.
// An empty Func emits the expression unescaped.
type FilterSpec struct {
	Name string
	Func string
}

// Built-in directives
var defaultDirectives = []DirectiveSpec{
	{Name: "if", Body: BodyRequired, Action: "if %s"},
	{Name: "elseif", Body: BodyRequired, Action: "else if %s"},
	{Name: "else", Body: BodyForbidden, Action: "else"},
	{Name: "endif", Body: BodyForbidden, Action: "end"},
	{Name: "foreach", Body: BodyRequired, Action: "range %s"},
	{Name: "endforeach", Body: BodyForbidden, Action: "end"},
	{Name: "range", Body: BodyRequired, Action: "range %s"},
	{Name: "endrange", Body: BodyForbidden, Action: "end"},
	{Name: "with", Body: BodyRequired, Action: "with %s"},
	{Name: "endwith", Body: BodyForbidden, Action: "end"},
	{Name: "break", Body: BodyForbidden, Action: "break"},
	{Name: "continue", Body: BodyForbidden, Action: "continue"},
	{Name: "include", Body: BodyRequired, Action: "template %s ."},
}

// Built-in output filters
var defaultFilters = []FilterSpec{
	{Name: FilterHTML, Func: "html"},
	{Name: FilterRaw, Func: ""},
	{Name: FilterJS, Func: "js"},
	{Name: FilterURL, Func: "urlquery"},
}

// Registry holds directives and filters with first-come-wins semantics.
// It is safe for concurrent use.
type Registry struct {
	directives map[string]DirectiveSpec
	filters    map[string]FilterSpec
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		directives: make(map[string]DirectiveSpec),
		filters:    make(map[string]FilterSpec),
		logger:     logger,
	}
}

// NewDefaultRegistry creates a registry holding the built-in directives and filters
func NewDefaultRegistry(logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	for _, d := range defaultDirectives {
		r.MustRegisterDirective(d)
	}
	for _, f := range defaultFilters {
		r.MustRegisterFilter(f)
	}
	return r
}

// RegisterDirective adds a directive. A name already taken is an error and
// the first registration stays.
func (r *Registry) RegisterDirective(d DirectiveSpec) error {
	if d.Name == "" || d.Name == DirectiveDeclare {
		return NewRegistryError(ErrMsgInvalidDirectiveName, d.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.directives[d.Name]; exists {
		r.logger.Warn(LogMsgRegistryCollision, zap.String(LogFieldName, d.Name))
		return NewRegistryError(ErrMsgDirectiveExists, d.Name)
	}
	r.directives[d.Name] = d
	return nil
}

// MustRegisterDirective panics when registration fails
func (r *Registry) MustRegisterDirective(d DirectiveSpec) {
	if err := r.RegisterDirective(d); err != nil {
		panic(err)
	}
}

// RegisterFilter adds an output filter, first-come-wins
func (r *Registry) RegisterFilter(f FilterSpec) error {
	if f.Name == "" {
		return NewRegistryError(ErrMsgInvalidFilterName, f.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.filters[f.Name]; exists {
		r.logger.Warn(LogMsgRegistryCollision, zap.String(LogFieldName, f.Name))
		return NewRegistryError(ErrMsgFilterExists, f.Name)
	}
	r.filters[f.Name] = f
	return nil
}

// MustRegisterFilter panics when registration fails
func (r *Registry) MustRegisterFilter(f FilterSpec) {
	if err := r.RegisterFilter(f); err != nil {
		panic(err)
	}
}

// HasDirective reports whether a directive is registered
func (r *Registry) HasDirective(name string) bool {
	_, ok := r.Directive(name)
	return ok
}

// Directive returns a registered directive
func (r *Registry) Directive(name string) (DirectiveSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.directives[name]
	return d, ok
}

// Filter returns a registered filter
func (r *Registry) Filter(name string) (FilterSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.filters[name]
	return f, ok
}

// DirectiveNames returns registered directive names in sorted order
func (r *Registry) DirectiveNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.directives))
	for name := range r.directives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilterNames returns registered filter names in sorted order
func (r *Registry) FilterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegistryError represents a registration failure
type RegistryError struct {
	Message string
	Name    string
}

// NewRegistryError creates a new registry error
func NewRegistryError(message, name string) *RegistryError {
	return &RegistryError{Message: message, Name: name}
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	if e.Name != StringValueEmpty {
		return fmt.Sprintf(ErrFmtWithCause, e.Message, e.Name)
	}
	return e.Message
}

// Registry error message constants
const (
	ErrMsgInvalidDirectiveName = "invalid directive name"
	ErrMsgInvalidFilterName    = "invalid filter name"
	ErrMsgDirectiveExists      = "directive already registered"
	ErrMsgFilterExists         = "filter already registered"
)

// Registry log constants
const (
	LogMsgRegistryCollision = "registration collision, keeping first"
	LogFieldName            = "name"
)
