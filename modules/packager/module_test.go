package packager

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/assetdb"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/testutil"
	"github.com/vk/assetgraph/internal/variant"
)

func newEnv(t *testing.T) *executor.Env {
	root := t.TempDir()
	return &executor.Env{ProjectRoot: root, CacheDir: filepath.Join(root, "Cache"), Variant: variant.New("", ""), AssetDB: assetdb.NewMemory()}
}

func packagerNode(template, useOutput string) *node.Record {
	cfg := node.PackagerConfig{NameTemplate: map[string]string{"Default": template}}
	if useOutput != "" {
		cfg.UseOutput = map[string]string{"Default": useOutput}
	}
	return &node.Record{ID: "pk", Kind: node.KindPackager, Payload: cfg}
}

func TestPackager(t *testing.T) {
	ctx, _ := testutil.Context(t)
	env := newEnv(t)
	generated := asset.Unit{AbsoluteSourcePath: filepath.Join(env.CacheDir, "Prefabricated", "p", "Default_Default", "hero", "list.txt")}
	a := asset.Unit{ImportedPath: "Assets/hero/a.png"}
	b := asset.Unit{ImportedPath: "Assets/villain/b.png"}
	in := executor.Input{NodeID: "pk", Label: "_", Groups: asset.Groups{"hero": {a, generated}, "villain": {b}}}

	t.Run("regroups by package name", func(t *testing.T) {
		ex, err := New(packagerNode("chara_*", ""), env)
		require.NoError(t, err)

		var got asset.Groups
		require.NoError(t, ex.Setup(ctx, in, func(_, _ string, g asset.Groups, _ []string) { got = g }))
		assert.Equal(t, asset.Groups{"chara_hero": {a, generated}, "chara_villain": {b}}, got)

		names, err := env.AssetDB.PackageNames(ctx)
		require.NoError(t, err)
		assert.Empty(t, names, "setup does not assign packages")
	})

	t.Run("run records package names", func(t *testing.T) {
		ex, err := New(packagerNode("chara_*", "TRUE"), env)
		require.NoError(t, err)
		require.NoError(t, ex.Run(ctx, in, func(string, string, asset.Groups, []string) {}))

		names, err := env.AssetDB.PackageNames(ctx)
		require.NoError(t, err)
		assert.Equal(t, "chara_hero", names["Assets/hero/a.png"])
		assert.Equal(t, "chara_villain", names["Assets/villain/b.png"])
		assert.Equal(t, "chara_hero", names["Cache/Prefabricated/p/Default_Default/hero/list.txt"])
	})

	t.Run("generated outputs excluded", func(t *testing.T) {
		ex, err := New(packagerNode("all", "false"), env)
		require.NoError(t, err)

		var got asset.Groups
		require.NoError(t, ex.Setup(ctx, in, func(_, _ string, g asset.Groups, _ []string) { got = g }))
		assert.Equal(t, asset.Groups{"all": {a, b}}, got)
	})
}

func TestNew_EmptyTemplate(t *testing.T) {
	_, err := New(packagerNode(" ", ""), newEnv(t))
	var cfgErr *executor.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNew_UseOutputWithoutDefault(t *testing.T) {
	rec := packagerNode("all", "")
	cfg := rec.Payload.(node.PackagerConfig)
	cfg.UseOutput = map[string]string{"iOS_Default": "false"}
	rec.Payload = cfg

	_, err := New(rec, newEnv(t))
	var cfgErr *executor.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "package_use_output", cfgErr.Field)
}
