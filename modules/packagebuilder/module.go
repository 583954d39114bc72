// Package packagebuilder implements the PackageBuilder node, which writes one
// zip archive per package into the node's cache folder.
package packagebuilder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"
	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/cachegate"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

// Build options accepted in enabled_package_options.
const (
	OptionUncompressed  = "uncompressed"
	OptionWithManifest  = "with_manifest"
	OptionDeterministic = "deterministic"
)

// ArchiveExt is the extension of built packages.
const ArchiveExt = ".zip"

// ManifestName is the archive entry listing the packaged assets.
const ManifestName = "manifest.json"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the PackageBuilder executor.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterExecutor(node.KindPackageBuilder, New)
}

type options struct {
	uncompressed  bool
	withManifest  bool
	deterministic bool
}

// Builder is the executor of one PackageBuilder node.
type Builder struct {
	rec     *node.Record
	env     *executor.Env
	dir     string
	opts    options
	unknown []string
}

// New builds the package builder for rec.
func New(rec *node.Record, env *executor.Env) (executor.Executor, error) {
	cfg, ok := rec.Payload.(node.PackageBuilderConfig)
	if !ok {
		return nil, fmt.Errorf("node %q: unexpected payload %T", rec.ID, rec.Payload)
	}
	enabled, err := executor.SettingOr(env, rec, "enabled_package_options", cfg.EnabledOptions, nil)
	if err != nil {
		return nil, err
	}
	b := &Builder{rec: rec, env: env, dir: env.CacheDirFor(rec)}
	for _, opt := range enabled {
		switch opt {
		case OptionUncompressed:
			b.opts.uncompressed = true
		case OptionWithManifest:
			b.opts.withManifest = true
		case OptionDeterministic:
			b.opts.deterministic = true
		default:
			b.unknown = append(b.unknown, opt)
		}
	}
	return b, nil
}

func (b *Builder) Setup(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return b.buildAll(ctx, in, out, false)
}

func (b *Builder) Run(ctx context.Context, in executor.Input, out executor.OutputFunc) error {
	return b.buildAll(ctx, in, out, true)
}

func (b *Builder) buildAll(ctx context.Context, in executor.Input, out executor.OutputFunc, isRun bool) error {
	logger := ctxlog.FromContext(ctx)
	for _, opt := range b.unknown {
		logger.Warn("Ignoring unknown package option.", "option", opt)
	}

	groups := asset.Groups{}
	var justCached []string
	for _, pkg := range in.Groups.Keys() {
		sources := in.Groups[pkg]
		archive := filepath.Join(b.dir, pkg+ArchiveExt)
		u := asset.Unit{AbsoluteSourcePath: archive, PathUnderBase: pkg + ArchiveExt, IsBundled: true}

		switch {
		case len(sources) == 0:
			groups[pkg] = []asset.Unit{}
			continue
		case cachegate.IsCachedForEachSource(sources, in.CachedPaths, archive):
			logger.Debug("Reusing built package.", "package", pkg)
		default:
			u.IsNew = true
			if isRun {
				if err := b.writeArchive(archive, sources); err != nil {
					return executor.Wrap(b.rec.ID, fmt.Sprintf("build package %q", pkg), err)
				}
				logger.Info("Package built.", "package", pkg, "assets", len(sources), "archive", archive)
				justCached = append(justCached, archive)
			}
		}
		groups[pkg] = []asset.Unit{u}
	}

	out(in.NodeID, in.Label, groups, justCached)
	return nil
}

type manifestEntry struct {
	Path  string `json:"path"`
	Entry string `json:"entry"`
}

func (b *Builder) writeArchive(archive string, sources []asset.Unit) (err error) {
	if err := os.MkdirAll(filepath.Dir(archive), 0o755); err != nil {
		return err
	}
	f, err := os.Create(archive)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(archive)
		}
	}()

	units := append([]asset.Unit(nil), sources...)
	if b.opts.deterministic {
		sort.SliceStable(units, func(i, j int) bool {
			return entryName(units[i]) < entryName(units[j])
		})
	}

	zw := zip.NewWriter(f)
	var manifest []manifestEntry
	for _, u := range units {
		name := entryName(u)
		if err := b.addFile(zw, name, u.FilePath(b.env.ProjectRoot)); err != nil {
			return fmt.Errorf("add %s: %w", name, err)
		}
		manifest = append(manifest, manifestEntry{Path: u.Path(b.env.ProjectRoot), Entry: name})
	}

	if b.opts.withManifest {
		w, err := zw.CreateHeader(b.header(ManifestName, nil))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(manifest); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (b *Builder) addFile(zw *zip.Writer, name, file string) error {
	src, err := os.Open(file)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	w, err := zw.CreateHeader(b.header(name, info))
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

func (b *Builder) header(name string, info os.FileInfo) *zip.FileHeader {
	h := &zip.FileHeader{Name: name, Method: zip.Deflate}
	if b.opts.uncompressed {
		h.Method = zip.Store
	}
	if info != nil && !b.opts.deterministic {
		h.Modified = info.ModTime()
	}
	return h
}

func entryName(u asset.Unit) string {
	if u.PathUnderBase != "" {
		return u.PathUnderBase
	}
	return path.Base(filepath.ToSlash(u.Path("")))
}
