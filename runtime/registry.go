package runtime

import (
	"sort"
	"sync"
)

// RenderFunc is a materialized template. State is nil unless state threading
// is enabled on the environment that compiled it.
type RenderFunc func(data, state interface{}) (string, error)

// Routine is an auxiliary function generated code calls through Invoke
type Routine func(args ...interface{}) (interface{}, error)

// Registry maps template names to render functions and holds the auxiliary
// routines helpers depend on. Entries are only ever added.
type Registry struct {
	templates map[string]RenderFunc
	routines  map[string]Routine
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]RenderFunc),
		routines:  make(map[string]Routine),
	}
}

// Register binds fn to name, replacing any earlier template of that name
func (r *Registry) Register(name string, fn RenderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[name] = fn
}

// Lookup returns the render function registered under name
func (r *Registry) Lookup(name string) (RenderFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.templates[name]
	return fn, ok
}

// Has reports whether a template is registered under name
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered template names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnsureRoutine registers fn under name unless a routine of that name exists.
// It reports whether fn was registered.
func (r *Registry) EnsureRoutine(name string, fn Routine) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routines[name]; ok {
		return false
	}
	r.routines[name] = fn
	return true
}

// Routine returns the routine registered under name
func (r *Registry) Routine(name string) (Routine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.routines[name]
	return fn, ok
}

// SkippedExpression records an embedded expression that was not compiled
// because expression execution is disabled.
type SkippedExpression struct {
	Template string
	Source   string
}

// Report accumulates soft diagnostics produced while compiling: partials
// referenced before they were compiled, and skipped embedded expressions.
type Report struct {
	missing []string
	skipped []SkippedExpression
	mu      sync.Mutex
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{}
}

// AddMissing records a partial name once, keeping first-seen order
func (r *Report) AddMissing(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.missing {
		if m == name {
			return
		}
	}
	r.missing = append(r.missing, name)
}

// Resolve removes name from the missing list. It reports whether name was
// listed.
func (r *Report) Resolve(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.missing {
		if m == name {
			r.missing = append(r.missing[:i], r.missing[i+1:]...)
			return true
		}
	}
	return false
}

// Missing returns the partials referenced but not compiled yet, in the order
// they were first referenced
func (r *Report) Missing() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.missing...)
}

// IsMissing reports whether name is currently listed as missing
func (r *Report) IsMissing(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.missing {
		if m == name {
			return true
		}
	}
	return false
}

// AddSkipped records a skipped embedded expression
func (r *Report) AddSkipped(template, source string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped = append(r.skipped, SkippedExpression{Template: template, Source: source})
}

// JSSkipped returns the embedded expressions skipped so far
func (r *Report) JSSkipped() []SkippedExpression {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]SkippedExpression(nil), r.skipped...)
}

// Clean reports whether the report holds no diagnostics
func (r *Report) Clean() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.missing) == 0 && len(r.skipped) == 0
}
