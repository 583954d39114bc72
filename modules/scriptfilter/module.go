// Package scriptfilter implements the FilterByScript node, which delegates
// the choice of output labels and the routing of assets to a registered
// script.
package scriptfilter

import (
	"context"
	"fmt"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// Script decides which assets leave a script filter under which label.
type Script interface {
	// Labels returns the output labels of the filter.
	Labels() []string
	// Match reports whether the asset at path belongs to label.
	Match(label, path string) bool
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the FilterByScript executor.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindFilterByScript, New)
}

// Filter is the executor of one FilterByScript node.
type Filter struct {
	script Script
	root   string
}

// New builds the filter for rec, instantiating its script.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	cfg, ok := rec.Payload.(node.ScriptConfig)
	if !ok {
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	if env.Scripts == nil {
		return nil, &executor.ConfigError{NodeID: rec.ID, Field: "script_type", Err: fmt.Errorf("no script source")}
	}
	instance, err := env.Scripts.NewScript(cfg.ScriptType)
	if err != nil {
		return nil, &executor.ConfigError{NodeID: rec.ID, Field: "script_type", Err: err}
	}
	script, ok := instance.(Script)
	if !ok {
		return nil, &executor.ConfigError{NodeID: rec.ID, Field: "script_type", Err: fmt.Errorf("%q is not a filter script", cfg.ScriptType)}
	}
	return &Filter{script: script, root: env.ProjectRoot}, nil
}

func (f *Filter) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	f.filter(in, out)
	return nil
}

func (f *Filter) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	f.filter(in, out)
	return nil
}

func (f *Filter) filter(in executor.Input, out executor.OutputFunc) {
	for _, label := range f.script.Labels() {
		groups := asset.Groups{}
		for key, units := range in.Groups {
			matched := []asset.Unit{}
			for _, u := range units {
				if f.script.Match(label, u.Path(f.root)) {
					matched = append(matched, u)
				}
			}
			groups[key] = matched
		}
		out(in.NodeID, label, groups, nil)
	}
}
