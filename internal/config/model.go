package config

import (
	"maps"
	"slices"
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Description is the unified, format-agnostic representation of a pipeline
// graph: ordered node entries and ordered connection entries.
type Description struct {
	LastModified time.Time
	Nodes        []*NodeEntry
	Connections  []*ConnectionEntry
}

// NodeEntry is a single node as written by the user. Kind-specific fields are
// kept as raw cty values and decoded into typed payloads later.
type NodeEntry struct {
	ID           string
	Kind         string
	Name         string
	OutputLabels []string
	Attributes   map[string]cty.Value
}

// ConnectionEntry is a labeled edge from one node's output to another node.
type ConnectionEntry struct {
	ID         string
	Label      string
	FromNodeID string
	ToNodeID   string
}

// Clone returns a deep copy of the description. Attribute values are
// immutable and shared.
func (d *Description) Clone() *Description {
	out := &Description{
		LastModified: d.LastModified,
		Nodes:        make([]*NodeEntry, 0, len(d.Nodes)),
		Connections:  make([]*ConnectionEntry, 0, len(d.Connections)),
	}
	for _, n := range d.Nodes {
		out.Nodes = append(out.Nodes, n.Clone())
	}
	for _, c := range d.Connections {
		cc := *c
		out.Connections = append(out.Connections, &cc)
	}
	return out
}

// Clone returns a copy of the entry with its own label slice and attribute map.
func (n *NodeEntry) Clone() *NodeEntry {
	return &NodeEntry{
		ID:           n.ID,
		Kind:         n.Kind,
		Name:         n.Name,
		OutputLabels: slices.Clone(n.OutputLabels),
		Attributes:   maps.Clone(n.Attributes),
	}
}

// Node returns the entry with the given id.
func (d *Description) Node(id string) (*NodeEntry, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}
