package testutil

import (
	"github.com/vk/assetgraph/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// GraphBuilder assembles a config.Description in tests.
type GraphBuilder struct {
	desc *config.Description
}

// NewGraph starts an empty description.
func NewGraph() *GraphBuilder {
	return &GraphBuilder{desc: &config.Description{}}
}

// Node appends a node whose name equals its id.
func (b *GraphBuilder) Node(id, kind string, attrs map[string]cty.Value) *GraphBuilder {
	return b.NamedNode(id, id, kind, attrs)
}

// NamedNode appends a node with an explicit name.
func (b *GraphBuilder) NamedNode(id, name, kind string, attrs map[string]cty.Value) *GraphBuilder {
	b.desc.Nodes = append(b.desc.Nodes, &config.NodeEntry{ID: id, Name: name, Kind: kind, Attributes: attrs})
	return b
}

// Labels sets the stored output labels of the most recently added node.
func (b *GraphBuilder) Labels(labels ...string) *GraphBuilder {
	b.desc.Nodes[len(b.desc.Nodes)-1].OutputLabels = labels
	return b
}

// Connect appends a connection.
func (b *GraphBuilder) Connect(id, label, from, to string) *GraphBuilder {
	b.desc.Connections = append(b.desc.Connections, &config.ConnectionEntry{
		ID: id, Label: label, FromNodeID: from, ToNodeID: to,
	})
	return b
}

// Build returns the assembled description.
func (b *GraphBuilder) Build() *config.Description {
	return b.desc
}

// Variants builds a variant map attribute, e.g. Variants("Default", "Assets/Raw").
func Variants(kv ...string) cty.Value {
	m := make(map[string]cty.Value, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = cty.StringVal(kv[i+1])
	}
	return cty.ObjectVal(m)
}

// Strings builds a list attribute.
func Strings(items ...string) cty.Value {
	if len(items) == 0 {
		return cty.EmptyTupleVal
	}
	vals := make([]cty.Value, 0, len(items))
	for _, s := range items {
		vals = append(vals, cty.StringVal(s))
	}
	return cty.TupleVal(vals)
}
