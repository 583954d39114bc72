package hcl_adapter

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/testutil"
	"github.com/zclconf/go-cty/cty"
)

const nodesHCL = `
graph {
  last_modified = "2026-10-17T10:00:00Z"
}

node "n-load" {
  kind      = "Loader"
  name      = "Load raw"
  load_path = { Default = "Assets/Raw", iOS_Default = "Assets/iOS" }
}

node "n-filter" {
  kind          = "FilterByKeyword"
  name          = "Textures"
  output_labels = ["*.png"]
  keywords      = ["*.png"]
  keytypes      = ["*"]
}
`

const connectionsHCL = `
graph {
  last_modified = "2026-10-16T10:00:00Z"
}

connection "c-1" {
  label = "_"
  from  = "n-load"
  to    = "n-filter"
}
`

var ctyComparer = cmp.Comparer(func(a, b cty.Value) bool {
	return a.Equals(b).True()
})

func TestLoader_Load(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"a_nodes.hcl":       nodesHCL,
		"b_connections.hcl": connectionsHCL,
		"readme.txt":        "not hcl",
	})

	desc, err := NewLoader().Load(ctx, dir, filepath.Join(dir, "missing"))
	require.NoError(t, err)

	want := &config.Description{
		LastModified: time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC),
		Nodes: []*config.NodeEntry{
			{
				ID:   "n-load",
				Kind: "Loader",
				Name: "Load raw",
				Attributes: map[string]cty.Value{
					"load_path": cty.ObjectVal(map[string]cty.Value{
						"Default":     cty.StringVal("Assets/Raw"),
						"iOS_Default": cty.StringVal("Assets/iOS"),
					}),
				},
			},
			{
				ID:           "n-filter",
				Kind:         "FilterByKeyword",
				Name:         "Textures",
				OutputLabels: []string{"*.png"},
				Attributes: map[string]cty.Value{
					"keywords": cty.TupleVal([]cty.Value{cty.StringVal("*.png")}),
					"keytypes": cty.TupleVal([]cty.Value{cty.StringVal("*")}),
				},
			},
		},
		Connections: []*config.ConnectionEntry{
			{ID: "c-1", Label: "_", FromNodeID: "n-load", ToNodeID: "n-filter"},
		},
	}
	if diff := cmp.Diff(want, desc, ctyComparer); diff != "" {
		t.Errorf("description mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_Errors(t *testing.T) {
	ctx, _ := testutil.Context(t)
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `node "x" {`},
		{"missing kind", `node "x" { name = "n" }`},
		{"reference", `node "x" {
  kind      = "Loader"
  load_path = var.path
}`},
		{"bad timestamp", `graph { last_modified = "yesterday" }`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteFiles(t, dir, map[string]string{"graph.hcl": tc.src})
			_, err := NewLoader().Load(ctx, filepath.Join(dir, "graph.hcl"))
			assert.Error(t, err)
		})
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	ctx, _ := testutil.Context(t)
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{"graph.hcl": nodesHCL + connectionsHCL})

	loader := NewLoader()
	desc, err := loader.Load(ctx, dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(ctx, desc, &buf))
	assert.Contains(t, buf.String(), `node "n-load" {`)
	assert.Contains(t, buf.String(), `connection "c-1" {`)

	out := t.TempDir()
	testutil.WriteFiles(t, out, map[string]string{"graph.hcl": buf.String()})
	again, err := loader.Load(ctx, out)
	require.NoError(t, err)

	if diff := cmp.Diff(desc, again, ctyComparer); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}
