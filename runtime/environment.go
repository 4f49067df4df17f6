package runtime

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/deicod/brace/lexer"
	"github.com/deicod/brace/nodes"
)

// Loader represents a template loader interface
type Loader interface {
	Load(name string) (string, error)
}

// FileSystemLoader finds templates by name in a list of directories. A name
// without an extension is looked up with each configured extension first,
// so {>card} loads card.html.
type FileSystemLoader struct {
	dirs []string
	exts []string
	mu   sync.RWMutex
}

// DefaultExtensions are tried for template names without an extension
var DefaultExtensions = []string{".html"}

// NewFileSystemLoader creates a loader searching dirs in order, or the
// working directory when none is given.
func NewFileSystemLoader(dirs ...string) *FileSystemLoader {
	return &FileSystemLoader{
		dirs: searchPath(dirs),
		exts: append([]string(nil), DefaultExtensions...),
	}
}

// Load returns the source of the first file matching name. Names must stay
// inside the search directories.
func (l *FileSystemLoader) Load(name string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", &Error{
			Type:     ErrorTypeInvalidTemplate,
			Message:  fmt.Sprintf("template name %q leaves the search path", name),
			Template: name,
			Position: nodes.NoPosition,
		}
	}

	l.mu.RLock()
	dirs, files := l.dirs, l.candidates(name)
	l.mu.RUnlock()

	var tried []string
	for _, dir := range dirs {
		for _, file := range files {
			path := filepath.Join(dir, file)
			tried = append(tried, path)

			data, err := os.ReadFile(path)
			switch {
			case err == nil:
				return string(data), nil
			case errors.Is(err, os.ErrNotExist):
			default:
				return "", &Error{
					Type:     ErrorTypeInvalidTemplate,
					Message:  fmt.Sprintf("cannot read template %s", path),
					Template: name,
					Position: nodes.NoPosition,
					Cause:    err,
				}
			}
		}
	}
	return "", NewTemplateNotFound(name, tried, os.ErrNotExist)
}

// candidates lists the file names tried for a template name. Callers hold mu.
func (l *FileSystemLoader) candidates(name string) []string {
	name = filepath.FromSlash(name)
	if filepath.Ext(name) != "" {
		return []string{name}
	}
	files := make([]string, 0, len(l.exts)+1)
	for _, ext := range l.exts {
		files = append(files, name+ext)
	}
	return append(files, name)
}

// SetExtensions replaces the extensions tried for names without one
func (l *FileSystemLoader) SetExtensions(exts ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exts = append([]string(nil), exts...)
}

// AddSearchPath appends dir to the search path. Empty dirs are ignored.
func (l *FileSystemLoader) AddSearchPath(dir string) {
	if dir == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirs = append(l.dirs, dir)
}

// SetSearchPath replaces the search path. With no non-empty dirs the loader
// falls back to the working directory.
func (l *FileSystemLoader) SetSearchPath(dirs ...string) {
	path := searchPath(dirs)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dirs = path
}

// SearchPath returns a copy of the search directories
func (l *FileSystemLoader) SearchPath() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.dirs...)
}

func searchPath(dirs []string) []string {
	var path []string
	for _, dir := range dirs {
		if dir != "" {
			path = append(path, dir)
		}
	}
	if len(path) == 0 {
		return []string{"."}
	}
	return path
}

// MapLoader loads templates from a map
type MapLoader struct {
	templates map[string]string
	mu        sync.RWMutex
}

// NewMapLoader creates a new map loader
func NewMapLoader(templates map[string]string) *MapLoader {
	return &MapLoader{
		templates: templates,
	}
}

// Load loads a template from the map
func (l *MapLoader) Load(name string) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	template, ok := l.templates[name]
	if !ok {
		return "", NewTemplateNotFound(name, []string{name}, nil)
	}
	return template, nil
}

// Names returns the template names held by the loader in sorted order
func (l *MapLoader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Environment holds the compiler configuration together with the shared
// function registry and report. Templates compiled by one environment can
// call each other as partials.
type Environment struct {
	loader     Loader
	evaluator  Evaluator
	logger     *log.Logger
	jsPerm     bool
	stateParam string
	helpers    map[string]Helper
	registry   *Registry
	report     *Report
	mu         sync.RWMutex
}

// NewEnvironment creates an environment with the built-in helpers, embedded
// expressions enabled and state threading disabled.
func NewEnvironment() *Environment {
	env := &Environment{
		evaluator: NewInterpreter(),
		jsPerm:    true,
		helpers:   make(map[string]Helper),
		registry:  NewRegistry(),
		report:    NewReport(),
	}

	// Register built-in helpers
	env.registerBuiltinHelpers()

	return env
}

// SetLoader sets the template loader used by LoadTemplate
func (env *Environment) SetLoader(loader Loader) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.loader = loader
}

// SetEvaluator replaces the evaluator that materializes generated functions
func (env *Environment) SetEvaluator(evaluator Evaluator) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.evaluator = evaluator
}

// Evaluator returns the configured evaluator
func (env *Environment) Evaluator() Evaluator {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.evaluator
}

// SetLogger sets the logger that receives compile diagnostics. A nil logger
// silences them.
func (env *Environment) SetLogger(logger *log.Logger) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.logger = logger
}

// SetJSPermission enables or disables compilation of embedded expressions.
// Disabled expressions render nothing and are listed in the report.
func (env *Environment) SetJSPermission(allowed bool) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.jsPerm = allowed
}

// JSPermission reports whether embedded expressions are compiled
func (env *Environment) JSPermission() bool {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.jsPerm
}

// SetStateParam enables state threading under the given symbol name. Render
// functions then take the state as their second parameter, identifiers
// starting with name read from it, and partials forward it. An empty name
// disables state threading.
func (env *Environment) SetStateParam(name string) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.stateParam = name
}

// StateParam returns the state symbol name, empty when disabled
func (env *Environment) StateParam() string {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.stateParam
}

// SetRegistry shares reg with this environment. Partials resolve against
// every template registered in reg.
func (env *Environment) SetRegistry(reg *Registry) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.registry = reg
}

// Registry returns the function registry
func (env *Environment) Registry() *Registry {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.registry
}

// SetReport replaces the diagnostics accumulator
func (env *Environment) SetReport(report *Report) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.report = report
}

// Report returns the diagnostics accumulator
func (env *Environment) Report() *Report {
	env.mu.RLock()
	defer env.mu.RUnlock()
	return env.report
}

// AddHelper registers a helper under name, replacing any existing helper
func (env *Environment) AddHelper(name string, helper Helper) {
	env.mu.Lock()
	defer env.mu.Unlock()
	env.helpers[name] = helper
}

// GetHelper returns the helper registered under name
func (env *Environment) GetHelper(name string) (Helper, bool) {
	env.mu.RLock()
	defer env.mu.RUnlock()
	helper, ok := env.helpers[name]
	return helper, ok
}

// Lookup returns the render function of a compiled template
func (env *Environment) Lookup(name string) (RenderFunc, bool) {
	return env.Registry().Lookup(name)
}

// Render renders the template registered under name
func (env *Environment) Render(name string, data interface{}) (string, error) {
	return env.RenderWithState(name, data, nil)
}

// RenderWithState renders the template registered under name with a state
// object
func (env *Environment) RenderWithState(name string, data, state interface{}) (string, error) {
	fn, ok := env.Lookup(name)
	if !ok {
		return "", NewTemplateNotFound(name, nil, nil)
	}
	return fn(data, state)
}

// LoadTemplate loads the template called name from the configured loader and
// compiles it under that name. Partials it refers to that are not compiled
// yet are loaded and compiled first when the loader has them.
func (env *Environment) LoadTemplate(name string) (*Template, error) {
	return env.loadTemplate(name, make(map[string]bool))
}

func (env *Environment) loadTemplate(name string, loading map[string]bool) (*Template, error) {
	env.mu.RLock()
	loader := env.loader
	env.mu.RUnlock()

	if loader == nil {
		return nil, NewError(ErrorTypeTemplate, "no loader configured", nodes.NoPosition)
	}

	source, err := loader.Load(name)
	if err != nil {
		return nil, WrapError(err, name)
	}

	loading[name] = true
	for _, dep := range Partials(source) {
		if loading[dep] || env.Registry().Has(dep) {
			continue
		}
		if _, err := env.loadTemplate(dep, loading); err != nil {
			var notFound *TemplateNotFoundError
			if errors.As(err, &notFound) && notFound.Name == dep {
				// left for the report
				continue
			}
			return nil, err
		}
	}
	return env.Compile(name, source)
}

// Partials returns the names of the partials text refers to, in order of
// first appearance, including those inside helper content.
func Partials(text string) []string {
	var names []string
	seen := make(map[string]bool)

	blocks := lexer.SplitIntoBlocks(lexer.NormalizeWhitespace(text))
	nodes.Walk(nodes.BlockVisitorFunc(func(block nodes.Block) interface{} {
		helper, ok := block.(*nodes.Helper)
		if !ok || helper.Name != "partial" || len(helper.Args) == 0 {
			return nil
		}
		name := helper.Args[0].Unquoted()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return nil
	}), blocks, lexer.SplitIntoBlocks)
	return names
}

// CompileAll loads and compiles every named template. Compiling the whole
// set before rendering lets partial references resolve regardless of order.
func (env *Environment) CompileAll(names ...string) ([]*Template, error) {
	templates := make([]*Template, 0, len(names))
	for _, name := range names {
		tmpl, err := env.LoadTemplate(name)
		if err != nil {
			return templates, fmt.Errorf("compile %s: %w", name, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}

func (env *Environment) logf(level, format string, args ...interface{}) {
	env.mu.RLock()
	logger := env.logger
	env.mu.RUnlock()
	if logger == nil {
		return
	}
	logger.Println(level+":", fmt.Sprintf(format, args...))
}
