// Package prefabricator implements the PrefabricatorScript and
// PrefabricatorGUI nodes. A registered script turns each input group into
// one or more generated files, written to the node's cache folder.
//
// A generated file is rebuilt only when it is not already cached or when any
// asset of its group is new.
package prefabricator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/cachegate"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// Source is one input asset handed to a script.
type Source struct {
	// Path is the asset's project-relative identity.
	Path string
	// File is where the asset's bytes live on disk.
	File string
}

// Script generates files from a group of assets.
type Script interface {
	// Estimate returns the names of the files Build would produce for a group.
	Estimate(groupKey string, sources []asset.Unit) []string
	// Build writes the file called name for a group to w.
	Build(ctx context.Context, groupKey string, sources []Source, name string, w io.Writer) error
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers both prefabricator executors.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindPrefabricatorScript, New)
	r.RegisterExecutor(node.KindPrefabricatorGUI, New)
}

// Prefabricator is the executor of one prefabricator node.
type Prefabricator struct {
	rec    *node.Record
	env    *executor.Env
	script Script
	dir    string
}

// New builds the prefabricator for rec, instantiating its script.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	cfg, ok := rec.Payload.(node.ScriptConfig)
	if !ok {
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	if cfg.ScriptType == "" {
		return nil, &executor.ConfigError{NodeID: rec.ID, Field: "script_type", Err: fmt.Errorf("no script type set")}
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
		return nil, &executor.ConfigError{NodeID: rec.ID, Field: "script_type", Err: fmt.Errorf("%q is not a prefabricator script", cfg.ScriptType)}
	}
	return &Prefabricator{rec: rec, env: env, script: script, dir: env.CacheDirFor(rec)}, nil
}

func (p *Prefabricator) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return p.prefabricate(ctx, in, out, false)
}

func (p *Prefabricator) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return p.prefabricate(ctx, in, out, true)
}

func (p *Prefabricator) prefabricate(ctx context.Context, in executor.Input, out executor.OutputFunc, isRun bool) error {
	logger := ctxlog.FromContext(ctx)
	groups := asset.Groups{}
	var justCached []string

	for _, key := range in.Groups.Keys() {
		sources := in.Groups[key]
		made := []asset.Unit{}
		for _, name := range p.script.Estimate(key, sources) {
			target := filepath.Join(p.dir, key, filepath.FromSlash(name))
			u := asset.Unit{AbsoluteSourcePath: target, PathUnderBase: key + "/" + filepath.ToSlash(name)}

			if cachegate.IsCachedForEachSource(sources, in.CachedPaths, target) {
				logger.Debug("Reusing prefabricated file.", "group", key, "file", name)
				made = append(made, u)
				continue
			}
			u.IsNew = true
			if isRun {
				if err := p.build(ctx, key, sources, name, target); err != nil {
					return err
				}
				justCached = append(justCached, target)
			}
			made = append(made, u)
		}
		groups[key] = made
	}

	out(in.NodeID, in.Label, groups, justCached)
	return nil
}

func (p *Prefabricator) build(ctx context.Context, key string, sources []asset.Unit, name, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return executor.Wrap(p.rec.ID, "create cache folder", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return executor.Wrap(p.rec.ID, "create "+name, err)
	}

	in := make([]Source, 0, len(sources))
	for _, u := range sources {
		in = append(in, Source{Path: u.Path(p.env.ProjectRoot), File: u.FilePath(p.env.ProjectRoot)})
	}
	buildErr := p.script.Build(ctx, key, in, name, f)
	closeErr := f.Close()
	if buildErr != nil {
		_ = os.Remove(target)
		return executor.Wrap(p.rec.ID, fmt.Sprintf("build %s for group %q", name, key), buildErr)
	}
	if closeErr != nil {
		return executor.Wrap(p.rec.ID, "write "+name, closeErr)
	}
	ctxlog.FromContext(ctx).Info("Prefabricated file.", "group", key, "file", name, "sources", len(sources))
	return nil
}
