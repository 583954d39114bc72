// Package cachegate decides whether a node's previously produced output can
// be reused instead of being produced again.
//
// Two predicates exist. A single-source output is valid when it is listed as
// cached and its content digest still equals the digest of the one source it
// was made from. A multi-source output is valid when it is listed as cached and
// none of the sources that contributed to it changed since the last run.
// Neither predicate ever fails: anything unexpected is a cache miss.
package cachegate

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/fsutil"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/variant"
	"golang.org/x/crypto/blake2b"
)

// Cache places, one directory per kind that persists output.
const (
	PlaceImported      = "Imported"
	PlacePrefabricated = "Prefabricated"
	PlacePackaged      = "Packaged"
)

// Digest returns the blake2b-256 digest of the whole file at path.
func Digest(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// DigestString returns Digest hex encoded.
func DigestString(path string) (string, error) {
	d, err := Digest(path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(d), nil
}

// IsCached reports whether candidate is a valid cached copy made from the
// single source file at sourcePath.
func IsCached(sourcePath string, cached []string, candidate string) bool {
	if !contains(cached, candidate) {
		return false
	}
	want, err := Digest(sourcePath)
	if err != nil {
		return false
	}
	got, err := Digest(candidate)
	if err != nil {
		return false
	}
	return bytes.Equal(want, got)
}

// IsCachedForEachSource reports whether candidate is a valid cached output
// built from sources.
func IsCachedForEachSource(sources []asset.Unit, cached []string, candidate string) bool {
	if !contains(cached, candidate) {
		return false
	}
	return !asset.AnyNew(sources)
}

func contains(cached []string, candidate string) bool {
	candidate = filepath.Clean(candidate)
	return slices.ContainsFunc(cached, func(p string) bool {
		return filepath.Clean(p) == candidate
	})
}

// Place returns the cache place of kind, if the kind persists output.
func Place(kind node.Kind) (string, bool) {
	switch kind {
	case node.KindLoader:
		return PlaceImported, true
	case node.KindPrefabricatorScript, node.KindPrefabricatorGUI:
		return PlacePrefabricated, true
	case node.KindPackageBuilder:
		return PlacePackaged, true
	}
	return "", false
}

// Dir returns the directory holding the output of nodeID for the given
// variant folder.
func Dir(cacheRoot, place, nodeID, folder string) string {
	return filepath.Join(cacheRoot, place, nodeID, folder)
}

// NodeDir returns the directory a node writes its output to for the active variant.
func NodeDir(cacheRoot string, kind node.Kind, nodeID string, v variant.Resolver) (string, bool) {
	place, ok := Place(kind)
	if !ok {
		return "", false
	}
	return Dir(cacheRoot, place, nodeID, v.Folder()), true
}

// CachedPaths lists the files already cached for a node. The active variant
// folder is preferred, then the default platform folder. A kind without a
// cache place, or a missing folder, yields nothing.
func CachedPaths(ctx context.Context, cacheRoot string, kind node.Kind, nodeID string, v variant.Resolver) []string {
	place, ok := Place(kind)
	if !ok || cacheRoot == "" {
		return nil
	}

	dir := Dir(cacheRoot, place, nodeID, v.Folder())
	if !fsutil.DirExists(dir) {
		dir = Dir(cacheRoot, place, nodeID, variant.Key(variant.Default, v.Package))
		if !fsutil.DirExists(dir) {
			return nil
		}
	}

	paths, err := fsutil.FindAssetFiles(dir)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to list cache folder, treating as empty.", "dir", dir, "error", err)
		return nil
	}
	return paths
}
