package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
)

// ErrUnregistered is returned when a kind or script type has no constructor.
var ErrUnregistered = errors.New("unregistered type")

// Factory builds the executor for one node.
type Factory func(rec *node.Record, env *executor.Env) (executor.Executor, error)

// ScriptFactory builds a fresh script instance.
type ScriptFactory func() any

// Module is the interface that all core modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds all the registered executors and scripts for a single
// application instance.
type Registry struct {
	executors map[node.Kind]Factory
	scripts   map[string]ScriptFactory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		executors: make(map[node.Kind]Factory),
		scripts:   make(map[string]ScriptFactory),
	}
}

// RegisterExecutor registers the executor constructor for a node kind.
func (r *Registry) RegisterExecutor(kind node.Kind, f Factory) {
	if _, exists := r.executors[kind]; exists {
		panic(fmt.Sprintf("executor for kind '%s' already registered", kind))
	}
	slog.Debug("Registering executor.", "kind", kind.String())
	r.executors[kind] = f
}

// RegisterScript registers a script implementation under a type name.
func (r *Registry) RegisterScript(scriptType string, f ScriptFactory) {
	if _, exists := r.scripts[scriptType]; exists {
		panic(fmt.Sprintf("script type '%s' already registered", scriptType))
	}
	slog.Debug("Registering script.", "script_type", scriptType)
	r.scripts[scriptType] = f
}

// NewExecutor builds the executor for rec.
func (r *Registry) NewExecutor(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	f, ok := r.executors[rec.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no executor for kind %s (node %q)", ErrUnregistered, rec.Kind, rec.ID)
	}
	return f(rec, env)
}

// NewScript builds a script instance of the given type.
func (r *Registry) NewScript(scriptType string) (any, error) {
	f, ok := r.scripts[scriptType]
	if !ok {
		return nil, fmt.Errorf("%w: script type %q", ErrUnregistered, scriptType)
	}
	return f(), nil
}

// HasScript reports whether scriptType is registered.
func (r *Registry) HasScript(scriptType string) bool {
	_, ok := r.scripts[scriptType]
	return ok
}

// ScriptTypes returns the registered script type names, sorted.
func (r *Registry) ScriptTypes() []string {
	out := make([]string, 0, len(r.scripts))
	for name := range r.scripts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
