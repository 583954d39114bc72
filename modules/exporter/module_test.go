package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/testutil"
	"github.com/vk/assetgraph/internal/variant"
)

func TestExporter(t *testing.T) {
	ctx, _ := testutil.Context(t)
	root := t.TempDir()
	external := t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"Assets/Raw/sub/a.png": "a"})
	testutil.WriteFiles(t, external, map[string]string{"pkg.zip": "zip"})

	env := &executor.Env{ProjectRoot: root, Variant: variant.New("Android", "")}
	rec := &node.Record{ID: "e", Kind: node.KindExporter, Payload: node.ExporterConfig{ExportPath: map[string]string{
		"Default":         "Out/Default",
		"Android_Default": "Out/Android",
	}}}
	ex, err := New(rec, env)
	require.NoError(t, err)

	a := asset.Unit{ImportedPath: "Assets/Raw/sub/a.png", PathUnderBase: "sub/a.png", IsNew: true}
	bundle := asset.Unit{AbsoluteSourcePath: filepath.Join(external, "pkg.zip"), IsBundled: true}
	in := executor.Input{NodeID: "e", Groups: asset.Groups{"0": {a}, "pkg": {bundle}}}

	var got asset.Groups
	out := func(_, _ string, g asset.Groups, _ []string) { got = g }

	require.NoError(t, ex.Setup(ctx, in, out))
	assert.False(t, testutil.Exists(root, "Out/Android/sub/a.png"), "setup does not copy")

	require.NoError(t, ex.Run(ctx, in, out))
	assert.Equal(t, asset.Groups{
		"0":   {{ExportedPath: "Out/Android/sub/a.png", PathUnderBase: "sub/a.png", IsNew: true}},
		"pkg": {{ExportedPath: "Out/Android/pkg.zip", IsBundled: true}},
	}, got)

	data, err := os.ReadFile(filepath.Join(root, "Out", "Android", "pkg.zip"))
	require.NoError(t, err)
	assert.Equal(t, "zip", string(data))
	assert.Equal(t, "Out/Android/sub/a.png", got["0"][0].Path(root))
}

func TestExporter_MissingSource(t *testing.T) {
	ctx, _ := testutil.Context(t)
	env := &executor.Env{ProjectRoot: t.TempDir()}
	rec := &node.Record{ID: "e", Kind: node.KindExporter, Payload: node.ExporterConfig{ExportPath: map[string]string{"Default": "Out"}}}
	ex, err := New(rec, env)
	require.NoError(t, err)

	err = ex.Run(ctx, executor.Input{NodeID: "e", Groups: asset.Groups{"0": {{ImportedPath: "Assets/none.png"}}}},
		func(string, string, asset.Groups, []string) {})
	var nodeErr *executor.NodeError
	assert.ErrorAs(t, err, &nodeErr)
}
