// Package loader implements the Loader node: it lists the asset files under
// a directory and emits them as a single group.
//
// Files inside the project are emitted in place. A directory outside the
// project is imported: each file is copied into the node's cache folder,
// unless an identical copy is already there.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/cachegate"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/fsutil"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the Loader executor.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindLoader, New)
}

// Loader is the executor of one Loader node.
type Loader struct {
	rec     *node.Record
	env     *executor.Env
	baseDir string
}

// New builds the Loader executor for rec.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	cfg, ok := rec.Payload.(node.LoaderConfig)
	if !ok {
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	loadPath, err := executor.Setting(env, rec, "load_path", cfg.LoadPath)
	if err != nil {
		return nil, err
	}
	return &Loader{rec: rec, env: env, baseDir: env.ProjectPath(loadPath)}, nil
}

func (l *Loader) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return l.load(ctx, in, out, false)
}

func (l *Loader) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return l.load(ctx, in, out, true)
}

func (l *Loader) load(ctx context.Context, in executor.Input, out executor.OutputFunc, isRun bool) error {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindAssetFiles(l.baseDir)
	if err != nil {
		return executor.Wrap(l.rec.ID, "list load path", err)
	}
	logger.Debug("Loader found files.", "dir", l.baseDir, "count", len(files))

	external := !l.insideProject()
	units := make([]asset.Unit, 0, len(files))
	var justCached []string

	for _, file := range files {
		under, err := filepath.Rel(l.baseDir, file)
		if err != nil {
			return executor.Wrap(l.rec.ID, "resolve file path", err)
		}
		under = filepath.ToSlash(under)

		var u asset.Unit
		if external {
			u, err = l.importFile(ctx, file, under, in.CachedPaths, isRun)
			if err == nil && isRun && u.IsNew {
				justCached = append(justCached, u.AbsoluteSourcePath)
			}
		} else {
			u, err = l.projectFile(ctx, file, under, isRun)
		}
		if err != nil {
			return err
		}
		units = append(units, u)
	}

	out(in.NodeID, in.Label, asset.Groups{asset.DefaultGroup: units}, justCached)
	return nil
}

func (l *Loader) insideProject() bool {
	root := filepath.Clean(l.env.ProjectRoot)
	return l.baseDir == root || strings.HasPrefix(l.baseDir, root+string(filepath.Separator))
}

// projectFile emits a file inside the project. It is new when its digest
// differs from the one the asset database recorded on the last run.
func (l *Loader) projectFile(ctx context.Context, file, under string, isRun bool) (asset.Unit, error) {
	rel := asset.RelativeToRoot(l.env.ProjectRoot, file)
	u := asset.Unit{ImportedPath: rel, PathUnderBase: under}
	if l.env.AssetDB == nil {
		return u, nil
	}

	digest, err := cachegate.DigestString(file)
	if err != nil {
		return u, executor.Wrap(l.rec.ID, "read "+rel, err)
	}
	known, ok, err := l.env.AssetDB.Fingerprint(ctx, rel)
	if err != nil {
		return u, executor.Wrap(l.rec.ID, "query asset database", err)
	}
	u.IsNew = !ok || known != digest

	if isRun && u.IsNew {
		if err := l.env.AssetDB.SetFingerprint(ctx, rel, digest); err != nil {
			return u, executor.Wrap(l.rec.ID, "update asset database", err)
		}
	}
	return u, nil
}

// importFile copies an external file into the cache folder, reusing a copy
// whose content still matches.
func (l *Loader) importFile(ctx context.Context, file, under string, cached []string, isRun bool) (asset.Unit, error) {
	target := filepath.Join(l.env.CacheDirFor(l.rec), filepath.FromSlash(under))
	u := asset.Unit{AbsoluteSourcePath: target, PathUnderBase: under}

	if cachegate.IsCached(file, cached, target) {
		ctxlog.FromContext(ctx).Debug("Reusing imported file.", "file", under)
		return u, nil
	}
	u.IsNew = true
	if !isRun {
		return u, nil
	}
	if err := fsutil.CopyFile(file, target); err != nil {
		return u, executor.Wrap(l.rec.ID, "import "+under, err)
	}
	return u, nil
}
