package validate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/graph"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
	"github.com/vk/assetgraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

// keywordLabels emits one label per configured keyword, like a keyword filter.
func keywordLabels(rec *node.Record, _ *executor.Env) (executor.Executor, error) {
	cfg := rec.Payload.(node.KeywordFilterConfig)
	return executor.Func(func(_ context.Context, in executor.Input, out executor.OutputFunc) error {
		for _, kw := range cfg.Keywords {
			out(in.NodeID, kw, in.Groups, nil)
		}
		return nil
	}), nil
}

func passThrough(*node.Record, *executor.Env) (executor.Executor, error) {
	return executor.Func(func(_ context.Context, in executor.Input, out executor.OutputFunc) error {
		out(in.NodeID, in.Label, in.Groups, nil)
		return nil
	}), nil
}

func newRegistry() *registry.Registry {
	reg := registry.New()
	for _, k := range node.Kinds() {
		if k == node.KindFilterByKeyword {
			reg.RegisterExecutor(k, keywordLabels)
			continue
		}
		reg.RegisterExecutor(k, passThrough)
	}
	reg.RegisterScript("Known", func() any { return struct{}{} })
	return reg
}

func baseGraph() *testutil.GraphBuilder {
	return testutil.NewGraph().
		Node("load", "Loader", map[string]cty.Value{graph.AttrLoadPath: testutil.Variants("Default", "Assets")}).
		Node("filter", "FilterByKeyword", map[string]cty.Value{
			graph.AttrKeywords: testutil.Strings("png", "txt"),
			graph.AttrKeyTypes: testutil.Strings("*", "*"),
		}).Labels("png", "txt").
		Node("export", "Exporter", nil).
		Connect("c1", "_", "load", "filter").
		Connect("c2", "png", "filter", "export")
}

func TestValidate_Unchanged(t *testing.T) {
	ctx, _ := testutil.Context(t)
	desc := baseGraph().Build()

	got, changed := Validate(ctx, desc, newRegistry(), &executor.Env{})
	assert.False(t, changed)
	assert.Same(t, desc, got)
}

func TestValidate_PatchesFilterLabels(t *testing.T) {
	ctx, _ := testutil.Context(t)
	desc := baseGraph().Build()
	desc.Nodes[1].OutputLabels = []string{"png", "jpg"}
	stamp := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	now = func() time.Time { return stamp }
	t.Cleanup(func() { now = time.Now })

	got, changed := Validate(ctx, desc, newRegistry(), &executor.Env{})
	require.True(t, changed)
	assert.NotSame(t, desc, got)
	assert.Equal(t, []string{"png", "txt"}, got.Nodes[1].OutputLabels)
	assert.Equal(t, stamp, got.LastModified)
	assert.Equal(t, []string{"png", "jpg"}, desc.Nodes[1].OutputLabels, "input is not mutated")
}

func TestValidate_DropsBrokenConnections(t *testing.T) {
	ctx, logs := testutil.Context(t)
	desc := baseGraph().
		Connect("dangling", "_", "load", "ghost").
		Connect("badlabel", "gif", "filter", "export").
		Build()

	got, changed := Validate(ctx, desc, newRegistry(), &executor.Env{})
	require.True(t, changed)

	ids := make([]string, 0, len(got.Connections))
	for _, c := range got.Connections {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"c1", "c2"}, ids)
	assert.Contains(t, logs.String(), "Removing connection with a missing endpoint.")
	assert.Contains(t, logs.String(), "Removing connection with an invalid label.")
}

func TestValidate_DropsUnregisteredScripts(t *testing.T) {
	ctx, _ := testutil.Context(t)
	desc := testutil.NewGraph().
		Node("load", "Loader", nil).
		Node("known", "PrefabricatorScript", map[string]cty.Value{graph.AttrScriptType: cty.StringVal("Known")}).
		Node("gone", "PrefabricatorScript", map[string]cty.Value{graph.AttrScriptType: cty.StringVal("Missing")}).
		Node("gui", "PrefabricatorGUI", nil).
		Connect("c1", "_", "load", "known").
		Connect("c2", "_", "load", "gone").
		Build()

	got, changed := Validate(ctx, desc, newRegistry(), &executor.Env{})
	require.True(t, changed)

	var nodeIDs []string
	for _, n := range got.Nodes {
		nodeIDs = append(nodeIDs, n.ID)
	}
	assert.Equal(t, []string{"load", "known", "gui"}, nodeIDs)
	require.Len(t, got.Connections, 1)
	assert.Equal(t, "c1", got.Connections[0].ID)
}

func TestValidate_Idempotent(t *testing.T) {
	ctx, _ := testutil.Context(t)
	desc := baseGraph().Connect("dangling", "_", "ghost", "export").Build()
	desc.Nodes[1].OutputLabels = nil
	reg := newRegistry()

	once, changed := Validate(ctx, desc, reg, &executor.Env{})
	require.True(t, changed)

	twice, changed := Validate(ctx, once, reg, &executor.Env{})
	assert.False(t, changed)
	assert.Same(t, once, twice)
}

func TestLabelsFromSetup(t *testing.T) {
	ctx, _ := testutil.Context(t)
	rec := &node.Record{
		ID:      "f",
		Kind:    node.KindFilterByKeyword,
		Payload: node.KeywordFilterConfig{Keywords: []string{"a", "b", "a"}},
	}
	labels, err := LabelsFromSetup(ctx, rec, newRegistry(), &executor.Env{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, labels)

	_, err = LabelsFromSetup(ctx, rec, registry.New(), &executor.Env{})
	assert.ErrorIs(t, err, registry.ErrUnregistered)
}

func TestValidate_KeepsGUIPrefabricatorWithUnregisteredScript(t *testing.T) {
	ctx, logs := testutil.Context(t)
	desc := baseGraph().
		Node("gui", "PrefabricatorGUI", map[string]cty.Value{graph.AttrScriptType: cty.StringVal("NotYetCompiled")}).
		Connect("c3", "txt", "filter", "gui").
		Build()

	got, changed := Validate(ctx, desc, newRegistry(), &executor.Env{})
	assert.False(t, changed)
	assert.Same(t, desc, got)
	assert.Contains(t, logs.String(), "Prefabricator script type is not registered.")
	assert.Contains(t, logs.String(), "Known")
}

func TestValidate_DropsUnregisteredScriptFilter(t *testing.T) {
	ctx, logs := testutil.Context(t)
	desc := baseGraph().
		Node("script", "FilterByScript", map[string]cty.Value{graph.AttrScriptType: cty.StringVal("Missing")}).
		Connect("c3", "_", "load", "script").
		Build()

	got, changed := Validate(ctx, desc, newRegistry(), &executor.Env{})
	require.True(t, changed)
	require.Len(t, got.Nodes, 3)
	require.Len(t, got.Connections, 2)
	assert.Contains(t, logs.String(), "Removing node with unregistered script type.")
}
