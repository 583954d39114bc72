package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/node"
	"github.com/zclconf/go-cty/cty"
)

func entry(id, kind string, attrs map[string]cty.Value) *config.NodeEntry {
	return &config.NodeEntry{ID: id, Kind: kind, Name: id, Attributes: attrs}
}

func conn(id, label, from, to string) *config.ConnectionEntry {
	return &config.ConnectionEntry{ID: id, Label: label, FromNodeID: from, ToNodeID: to}
}

func TestDecode(t *testing.T) {
	desc := &config.Description{
		Nodes: []*config.NodeEntry{
			entry("load", "Loader", map[string]cty.Value{
				AttrLoadPath: cty.ObjectVal(map[string]cty.Value{"Default": cty.StringVal("Assets/Raw")}),
			}),
			entry("filter", "FilterByKeyword", map[string]cty.Value{
				AttrKeywords: cty.TupleVal([]cty.Value{cty.StringVal("*.png")}),
				AttrKeyTypes: cty.TupleVal([]cty.Value{cty.StringVal("*")}),
			}),
			entry("export", "Exporter", nil),
			entry("mystery", "Teleporter", nil),
		},
		Connections: []*config.ConnectionEntry{
			conn("c1", "_", "load", "filter"),
			conn("c2", "png", "filter", "export"),
		},
	}

	g, err := Decode(context.Background(), desc)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 3, "unrecognized kinds are skipped")
	assert.Equal(t, []string{"export"}, g.Endpoints)

	load, ok := g.Node("load")
	require.True(t, ok)
	assert.Equal(t, []string{node.DefaultLabel}, load.OutputLabels)
	assert.Equal(t, node.LoaderConfig{LoadPath: map[string]string{"Default": "Assets/Raw"}}, load.Payload)

	filter, _ := g.Node("filter")
	assert.Empty(t, filter.OutputLabels, "filters derive labels at setup")
	assert.Equal(t, node.KeywordFilterConfig{Keywords: []string{"*.png"}, KeyTypes: []string{"*"}}, filter.Payload)
	require.Len(t, filter.ParentEdges, 1)
	assert.Equal(t, "c1", filter.ParentEdges[0].ID)

	export, _ := g.Node("export")
	assert.Equal(t, node.ExporterConfig{ExportPath: map[string]string{}}, export.Payload)

	assert.Equal(t, "png", g.FirstOutgoingLabel("filter"))
	assert.Equal(t, "", g.FirstOutgoingLabel("export"))
	c, ok := g.ConnectionFor("filter", "png")
	require.True(t, ok)
	assert.Equal(t, "c2", c.ID)
}

func TestDecode_MalformedPayloadDefaultsToEmpty(t *testing.T) {
	desc := &config.Description{
		Nodes: []*config.NodeEntry{
			entry("g", "Grouping", map[string]cty.Value{AttrGroupingKeyword: cty.NumberIntVal(3)}),
			entry("b", "PackageBuilder", map[string]cty.Value{AttrEnabledOptions: cty.StringVal("nope")}),
			entry("k", "FilterByKeyword", map[string]cty.Value{AttrKeywords: cty.NullVal(cty.List(cty.String))}),
		},
	}

	g, err := Decode(context.Background(), desc)
	require.NoError(t, err)

	grp, _ := g.Node("g")
	assert.Equal(t, node.GroupingConfig{GroupingKeyword: map[string]string{}}, grp.Payload)
	b, _ := g.Node("b")
	assert.Equal(t, node.PackageBuilderConfig{EnabledOptions: map[string][]string{}}, b.Payload)
	k, _ := g.Node("k")
	assert.Equal(t, node.KeywordFilterConfig{Keywords: []string{}, KeyTypes: []string{}}, k.Payload)
}

func TestDecode_DuplicateID(t *testing.T) {
	desc := &config.Description{Nodes: []*config.NodeEntry{entry("a", "Loader", nil), entry("a", "Exporter", nil)}}
	_, err := Decode(context.Background(), desc)
	assert.ErrorContains(t, err, "duplicate node id")
}

func TestCheckUniqueNames(t *testing.T) {
	desc := &config.Description{Nodes: []*config.NodeEntry{
		{ID: "a", Kind: "Loader", Name: "same"},
		{ID: "b", Kind: "Exporter", Name: "same"},
	}}
	g, err := Decode(context.Background(), desc)
	require.NoError(t, err)

	var dupErr *DuplicateNameError
	require.ErrorAs(t, g.CheckUniqueNames(), &dupErr)
	assert.Equal(t, "same", dupErr.Name)
	assert.Equal(t, []string{"a", "b"}, dupErr.NodeIDs)
}

func TestDetectCycles(t *testing.T) {
	t.Run("acyclic diamond", func(t *testing.T) {
		desc := &config.Description{
			Nodes: []*config.NodeEntry{
				entry("a", "Loader", nil), entry("b", "Modifier", nil),
				entry("c", "Modifier", nil), entry("d", "Exporter", nil),
			},
			Connections: []*config.ConnectionEntry{
				conn("ab", "_", "a", "b"), conn("ac", "_", "a", "c"),
				conn("bd", "_", "b", "d"), conn("cd", "_", "c", "d"),
			},
		}
		g, err := Decode(context.Background(), desc)
		require.NoError(t, err)
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("closed loop without endpoints", func(t *testing.T) {
		desc := &config.Description{
			Nodes: []*config.NodeEntry{
				entry("a", "Modifier", nil), entry("b", "Modifier", nil), entry("c", "Modifier", nil),
			},
			Connections: []*config.ConnectionEntry{
				conn("ab", "_", "a", "b"), conn("bc", "_", "b", "c"), conn("ca", "_", "c", "a"),
			},
		}
		g, err := Decode(context.Background(), desc)
		require.NoError(t, err)
		assert.Empty(t, g.Endpoints)

		var cycleErr *CycleError
		require.ErrorAs(t, g.DetectCycles(), &cycleErr)
		assert.NotEmpty(t, cycleErr.NodeID)
	})
}
