package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Factory functions construct a plugin instance bound to its own Options
// value. The driver resolves plugins by configured name at startup.
type (
	LoaderFactory       func(opts Options) (Loader, error)
	PreprocessorFactory func(opts Options) (Preprocessor, error)
	RendererFactory     func(opts Options) (Renderer, error)
)

// Registry maps plugin names to factories, one namespace per role.
type Registry struct {
	mu            sync.RWMutex
	loaders       map[string]LoaderFactory
	preprocessors map[string]PreprocessorFactory
	renderers     map[string]RendererFactory
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders:       make(map[string]LoaderFactory),
		preprocessors: make(map[string]PreprocessorFactory),
		renderers:     make(map[string]RendererFactory),
	}
}

// RegisterLoader adds a loader factory under name. Duplicate names are an
// error.
func (r *Registry) RegisterLoader(name string, f LoaderFactory) error {
	if name == "" || f == nil {
		return fmt.Errorf("loader registration requires a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.loaders[name]; exists {
		return fmt.Errorf("loader %q already registered", name)
	}
	r.loaders[name] = f
	return nil
}

// RegisterPreprocessor adds a preprocessor factory under name.
func (r *Registry) RegisterPreprocessor(name string, f PreprocessorFactory) error {
	if name == "" || f == nil {
		return fmt.Errorf("preprocessor registration requires a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.preprocessors[name]; exists {
		return fmt.Errorf("preprocessor %q already registered", name)
	}
	r.preprocessors[name] = f
	return nil
}

// RegisterRenderer adds a renderer factory under name.
func (r *Registry) RegisterRenderer(name string, f RendererFactory) error {
	if name == "" || f == nil {
		return fmt.Errorf("renderer registration requires a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("renderer %q already registered", name)
	}
	r.renderers[name] = f
	return nil
}

// NewLoader instantiates the named loader with its own Options value.
func (r *Registry) NewLoader(name string, opts Options) (Loader, error) {
	r.mu.RLock()
	f, ok := r.loaders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("loader %q not registered (have: %v)", name, r.LoaderNames())
	}
	return f(opts)
}

// NewPreprocessor instantiates the named preprocessor with its own Options
// value.
func (r *Registry) NewPreprocessor(name string, opts Options) (Preprocessor, error) {
	r.mu.RLock()
	f, ok := r.preprocessors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("preprocessor %q not registered (have: %v)", name, r.PreprocessorNames())
	}
	return f(opts)
}

// NewRenderer instantiates the named renderer with its own Options value.
func (r *Registry) NewRenderer(name string, opts Options) (Renderer, error) {
	r.mu.RLock()
	f, ok := r.renderers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("renderer %q not registered (have: %v)", name, r.RendererNames())
	}
	return f(opts)
}

// LoaderNames returns the registered loader names, sorted.
func (r *Registry) LoaderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.loaders)
}

// PreprocessorNames returns the registered preprocessor names, sorted.
func (r *Registry) PreprocessorNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.preprocessors)
}

// RendererNames returns the registered renderer names, sorted.
func (r *Registry) RendererNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.renderers)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// globalRegistry is the default registry used by the CLI.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the process-wide plugin registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}
