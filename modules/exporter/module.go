// Package exporter implements the Exporter node, which copies its input into
// the export directory of the active variant.
package exporter

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/fsutil"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the Exporter executor.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindExporter, New)
}

// Exporter is the executor of one Exporter node.
type Exporter struct {
	rec *node.Record
	env *executor.Env
	dir string
}

// New builds the exporter for rec.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	cfg, ok := rec.Payload.(node.ExporterConfig)
	if !ok {
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	exportPath, err := executor.Setting(env, rec, "export_path", cfg.ExportPath)
	if err != nil {
		return nil, err
	}
	return &Exporter{rec: rec, env: env, dir: env.ProjectPath(exportPath)}, nil
}

func (e *Exporter) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return e.export(ctx, in, out, false)
}

func (e *Exporter) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return e.export(ctx, in, out, true)
}

func (e *Exporter) export(ctx context.Context, in executor.Input, out executor.OutputFunc, isRun bool) error {
	logger := ctxlog.FromContext(ctx)
	groups := asset.Groups{}
	copied := 0
	for _, key := range in.Groups.Keys() {
		exported := []asset.Unit{}
		for _, u := range in.Groups[key] {
			dest := filepath.Join(e.dir, filepath.FromSlash(destName(u, e.env.ProjectRoot)))
			if isRun {
				if err := fsutil.CopyFile(u.FilePath(e.env.ProjectRoot), dest); err != nil {
					return executor.Wrap(e.rec.ID, "export "+u.Path(e.env.ProjectRoot), err)
				}
				copied++
			}
			exported = append(exported, asset.Unit{
				ExportedPath:  asset.RelativeToRoot(e.env.ProjectRoot, dest),
				PathUnderBase: u.PathUnderBase,
				IsNew:         u.IsNew,
				IsBundled:     u.IsBundled,
			})
		}
		groups[key] = exported
	}
	if isRun {
		logger.Info("Assets exported.", "dir", e.dir, "count", copied)
	}
	out(in.NodeID, in.Label, groups, nil)
	return nil
}

func destName(u asset.Unit, root string) string {
	if u.PathUnderBase != "" {
		return u.PathUnderBase
	}
	return path.Base(u.Path(root))
}
