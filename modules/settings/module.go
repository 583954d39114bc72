// Package settings implements the ImportSetting and Modifier nodes. Both
// apply host-side settings to assets and forward their input unchanged; the
// executor only resolves which settings package applies to the variant.
package settings

import (
	"context"
	"fmt"

	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the ImportSetting and Modifier executors.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindImportSetting, New)
	r.RegisterExecutor(node.KindModifier, New)
}

// PassThrough forwards its input under its label.
type PassThrough struct {
	kind node.Kind
	pkg  string
}

// New builds the executor for an ImportSetting or Modifier node.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	var (
		packages map[string]string
		field    string
	)
	switch cfg := rec.Payload.(type) {
	case node.ImportSettingConfig:
		packages, field = cfg.ImporterPackages, "importer_packages"
	case node.ModifierConfig:
		packages, field = cfg.ModifierPackages, "modifier_packages"
	default:
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	pkg, err := executor.SettingOr(env, rec, field, packages, "")
	if err != nil {
		return nil, err
	}
	return &PassThrough{kind: rec.Kind, pkg: pkg}, nil
}

func (p *PassThrough) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return p.forward(ctx, in, out)
}

func (p *PassThrough) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return p.forward(ctx, in, out)
}

func (p *PassThrough) forward(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	ctxlog.FromContext(ctx).Debug("Forwarding assets.", "kind", p.kind.String(), "settings_package", p.pkg, "count", in.Groups.Count())
	out(in.NodeID, in.Label, in.Groups.Clone(), nil)
	return nil
}
