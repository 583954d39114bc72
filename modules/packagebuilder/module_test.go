package packagebuilder

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/cachegate"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/testutil"
	"github.com/vk/assetgraph/internal/variant"
)

func newEnv(t *testing.T) *executor.Env {
	root := t.TempDir()
	return &executor.Env{ProjectRoot: root, CacheDir: filepath.Join(root, "Cache"), Variant: variant.New("", "")}
}

func builderNode(opts ...string) *node.Record {
	return &node.Record{ID: "pb", Kind: node.KindPackageBuilder, Payload: node.PackageBuilderConfig{EnabledOptions: map[string][]string{"Default": opts}}}
}

func readArchive(t *testing.T, p string) map[string]*zip.File {
	t.Helper()
	zr, err := zip.OpenReader(p)
	require.NoError(t, err)
	t.Cleanup(func() { zr.Close() })
	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[f.Name] = f
	}
	return files
}

func TestBuilder(t *testing.T) {
	ctx, logs := testutil.Context(t)
	env := newEnv(t)
	testutil.WriteFiles(t, env.ProjectRoot, map[string]string{"Assets/hero/a.png": "aaaa", "Assets/hero/b.png": "bbbb"})

	rec := builderNode(OptionWithManifest, OptionUncompressed, OptionDeterministic, "bogus")
	ex, err := New(rec, env)
	require.NoError(t, err)

	a := asset.Unit{ImportedPath: "Assets/hero/a.png", PathUnderBase: "hero/a.png", IsNew: true}
	b := asset.Unit{ImportedPath: "Assets/hero/b.png", PathUnderBase: "hero/b.png"}
	in := executor.Input{NodeID: "pb", Label: "_", Groups: asset.Groups{"chara_hero": {b, a}, "empty": {}}}

	var got asset.Groups
	var justCached []string
	out := func(_, _ string, g asset.Groups, jc []string) { got, justCached = g, jc }
	archive := filepath.Join(env.CacheDir, cachegate.PlacePackaged, "pb", "Default_Default", "chara_hero.zip")

	require.NoError(t, ex.Setup(ctx, in, out))
	assert.NoFileExists(t, archive)

	require.NoError(t, ex.Run(ctx, in, out))
	want := asset.Groups{
		"chara_hero": {{AbsoluteSourcePath: archive, PathUnderBase: "chara_hero.zip", IsBundled: true, IsNew: true}},
		"empty":      {},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, []string{archive}, justCached)
	assert.Contains(t, logs.String(), "bogus")

	files := readArchive(t, archive)
	require.Contains(t, files, "hero/a.png")
	require.Contains(t, files, "hero/b.png")
	require.Contains(t, files, ManifestName)
	assert.Equal(t, zip.Store, files["hero/a.png"].Method)

	rc, err := files[ManifestName].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	var manifest []manifestEntry
	require.NoError(t, json.Unmarshal(data, &manifest))
	assert.Equal(t, []manifestEntry{
		{Path: "Assets/hero/a.png", Entry: "hero/a.png"},
		{Path: "Assets/hero/b.png", Entry: "hero/b.png"},
	}, manifest, "deterministic archives are sorted")

	t.Run("cached archive is reused", func(t *testing.T) {
		stat, err := os.Stat(archive)
		require.NoError(t, err)

		a.IsNew = false
		cached := cachegate.CachedPaths(ctx, env.CacheDir, rec.Kind, rec.ID, env.Variant)
		require.NoError(t, ex.Run(ctx, executor.Input{NodeID: "pb", Groups: asset.Groups{"chara_hero": {a, b}}, CachedPaths: cached}, out))
		assert.False(t, got["chara_hero"][0].IsNew)
		assert.Empty(t, justCached)

		after, err := os.Stat(archive)
		require.NoError(t, err)
		assert.Equal(t, stat.ModTime(), after.ModTime())
	})
}

func TestBuilder_MissingSource(t *testing.T) {
	ctx, _ := testutil.Context(t)
	env := newEnv(t)
	ex, err := New(builderNode(), env)
	require.NoError(t, err)

	err = ex.Run(ctx, executor.Input{NodeID: "pb", Groups: asset.Groups{"p": {{ImportedPath: "Assets/missing.png", IsNew: true}}}},
		func(string, string, asset.Groups, []string) {})
	var nodeErr *executor.NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.NoFileExists(t, filepath.Join(env.CacheDir, cachegate.PlacePackaged, "pb", "Default_Default", "p.zip"))
}

func TestNew_Options(t *testing.T) {
	t.Run("unset means no options", func(t *testing.T) {
		ex, err := New(&node.Record{ID: "pb", Kind: node.KindPackageBuilder, Payload: node.PackageBuilderConfig{}}, newEnv(t))
		require.NoError(t, err)
		assert.Equal(t, options{}, ex.(*Builder).opts)
	})

	t.Run("no entry for the variant", func(t *testing.T) {
		rec := &node.Record{ID: "pb", Kind: node.KindPackageBuilder, Payload: node.PackageBuilderConfig{
			EnabledOptions: map[string][]string{"iOS_Default": {OptionUncompressed}},
		}}
		_, err := New(rec, newEnv(t))
		var cfgErr *executor.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "enabled_package_options", cfgErr.Field)
	})
}
