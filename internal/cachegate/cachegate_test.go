package cachegate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/variant"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIsCached(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	cand := filepath.Join(dir, "cache", "src.png")
	write(t, src, "pixels")
	write(t, cand, "pixels")

	cached := []string{cand}
	assert.True(t, IsCached(src, cached, cand), "identical content hits")

	write(t, src, "new pixels")
	assert.False(t, IsCached(src, cached, cand), "changed source misses")

	write(t, src, "pixels")
	assert.True(t, IsCached(src, cached, cand))

	write(t, cand, "stale pixels")
	assert.False(t, IsCached(src, cached, cand), "changed candidate misses")

	write(t, cand, "pixels")
	assert.True(t, IsCached(src, cached, cand))

	assert.False(t, IsCached(src, nil, cand), "unlisted candidate misses")
	assert.False(t, IsCached(filepath.Join(dir, "gone.png"), cached, cand), "unreadable source misses")

	require.NoError(t, os.Remove(cand))
	assert.False(t, IsCached(src, cached, cand), "missing candidate misses")
}

func TestIsCachedForEachSource(t *testing.T) {
	cached := []string{"/c/out.prefab"}
	fresh := []asset.Unit{{ImportedPath: "a"}, {ImportedPath: "b"}}
	changed := []asset.Unit{{ImportedPath: "a"}, {ImportedPath: "b", IsNew: true}}

	assert.True(t, IsCachedForEachSource(fresh, cached, "/c/out.prefab"))
	assert.False(t, IsCachedForEachSource(changed, cached, "/c/out.prefab"))
	assert.False(t, IsCachedForEachSource(fresh, cached, "/c/other.prefab"))
}

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	write(t, a, "same")
	write(t, b, "same")

	da, err := DigestString(a)
	require.NoError(t, err)
	db, err := DigestString(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
	assert.Len(t, da, 64)

	_, err = Digest(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestCachedPaths(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	ios := variant.New("iOS", "")

	t.Run("kind without cache place", func(t *testing.T) {
		assert.Empty(t, CachedPaths(ctx, root, node.KindExporter, "n", ios))
	})

	t.Run("missing folder", func(t *testing.T) {
		assert.Empty(t, CachedPaths(ctx, root, node.KindPackageBuilder, "n", ios))
	})

	t.Run("falls back to default platform folder", func(t *testing.T) {
		p := filepath.Join(Dir(root, PlacePrefabricated, "pf", variant.Key(variant.Default, "")), "0", "x.prefab")
		write(t, p, "x")
		assert.Equal(t, []string{p}, CachedPaths(ctx, root, node.KindPrefabricatorScript, "pf", ios))
	})

	t.Run("prefers variant folder", func(t *testing.T) {
		p := filepath.Join(Dir(root, PlacePrefabricated, "pf", ios.Folder()), "0", "y.prefab")
		write(t, p, "y")
		write(t, p+".meta", "meta")
		assert.Equal(t, []string{p}, CachedPaths(ctx, root, node.KindPrefabricatorGUI, "pf", ios))
	})
}
