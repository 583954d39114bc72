// Package packager implements the Packager node. Every input group is
// assigned to a package whose name comes from the node's template, with "*"
// replaced by the group key. The output is regrouped by package name.
package packager

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the Packager executor.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindPackager, New)
}

// Packager is the executor of one Packager node.
type Packager struct {
	rec       *node.Record
	env       *executor.Env
	template  string
	useOutput bool
}

// New builds the packager for rec.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	cfg, ok := rec.Payload.(node.PackagerConfig)
	if !ok {
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	template, err := executor.Setting(env, rec, "package_name_template", cfg.NameTemplate)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(template) == "" {
		return nil, &executor.ConfigError{NodeID: rec.ID, Field: "package_name_template", Err: fmt.Errorf("empty template")}
	}
	useOutput, err := executor.SettingOr(env, rec, "package_use_output", cfg.UseOutput, "true")
	if err != nil {
		return nil, err
	}
	return &Packager{
		rec:       rec,
		env:       env,
		template:  template,
		useOutput: strings.EqualFold(strings.TrimSpace(useOutput), "true"),
	}, nil
}

// PackageName returns the package a group is assigned to.
func PackageName(template, groupKey string) string {
	return strings.ReplaceAll(template, "*", groupKey)
}

func (p *Packager) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return p.pack(ctx, in, out, false)
}

func (p *Packager) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return p.pack(ctx, in, out, true)
}

func (p *Packager) pack(ctx context.Context, in executor.Input, out executor.OutputFunc, isRun bool) error {
	logger := ctxlog.FromContext(ctx)
	groups := asset.Groups{}
	for _, key := range in.Groups.Keys() {
		name := PackageName(p.template, key)
		units := []asset.Unit{}
		for _, u := range in.Groups[key] {
			if !p.useOutput && p.generated(u) {
				logger.Debug("Skipping generated asset.", "path", u.Path(p.env.ProjectRoot), "package", name)
				continue
			}
			if isRun && p.env.AssetDB != nil {
				if err := p.env.AssetDB.SetPackageName(ctx, u.Path(p.env.ProjectRoot), name); err != nil {
					return executor.Wrap(p.rec.ID, "assign package name", err)
				}
			}
			units = append(units, u)
		}
		groups[name] = append(groups[name], units...)
	}
	logger.Debug("Assets packaged.", "packages", len(groups), "count", groups.Count())
	out(in.NodeID, in.Label, groups, nil)
	return nil
}

// generated reports whether u was produced by an earlier node into the cache.
func (p *Packager) generated(u asset.Unit) bool {
	if p.env.CacheDir == "" || u.AbsoluteSourcePath == "" {
		return false
	}
	rel, err := filepath.Rel(p.env.CacheDir, u.AbsoluteSourcePath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
