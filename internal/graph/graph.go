package graph

import (
	"context"
	"fmt"

	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/node"
)

// Graph is a decoded pipeline: typed node records, their connections and the
// endpoints from which execution starts.
type Graph struct {
	// Endpoints are the ids of nodes with no outgoing connection, in
	// description order.
	Endpoints   []string
	Nodes       []*node.Record
	Connections []*node.Connection

	byID map[string]*node.Record
}

// Decode converts a description into a Graph. Nodes of an unrecognized kind
// are reported and skipped.
func Decode(ctx context.Context, desc *config.Description) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decode: Starting graph decoding.", "nodes", len(desc.Nodes), "connections", len(desc.Connections))

	g := &Graph{byID: make(map[string]*node.Record, len(desc.Nodes))}

	for _, entry := range desc.Nodes {
		kind, err := node.ParseKind(entry.Kind)
		if err != nil {
			logger.Warn("Skipping node with unrecognized kind.", "node_id", entry.ID, "kind", entry.Kind)
			continue
		}
		if _, exists := g.byID[entry.ID]; exists {
			return nil, fmt.Errorf("duplicate node id %q", entry.ID)
		}

		labels := append([]string(nil), entry.OutputLabels...)
		if len(labels) == 0 && !kind.IsFilter() {
			labels = []string{node.DefaultLabel}
		}

		rec := &node.Record{
			ID:           entry.ID,
			Kind:         kind,
			Name:         entry.Name,
			OutputLabels: labels,
			Payload:      DecodePayload(kind, entry.Attributes),
		}
		g.Nodes = append(g.Nodes, rec)
		g.byID[rec.ID] = rec
	}
	logger.Debug("Decode: Node decoding complete.", "node_count", len(g.Nodes))

	sources := make(map[string]struct{}, len(desc.Connections))
	for _, entry := range desc.Connections {
		conn := &node.Connection{
			ID:         entry.ID,
			Label:      entry.Label,
			FromNodeID: entry.FromNodeID,
			ToNodeID:   entry.ToNodeID,
		}
		g.Connections = append(g.Connections, conn)
		sources[conn.FromNodeID] = struct{}{}

		target, ok := g.byID[conn.ToNodeID]
		if !ok {
			logger.Warn("Connection targets an unknown node.", "connection_id", conn.ID, "to", conn.ToNodeID)
			continue
		}
		target.ParentEdges = append(target.ParentEdges, conn)
	}

	for _, rec := range g.Nodes {
		if _, isSource := sources[rec.ID]; !isSource {
			g.Endpoints = append(g.Endpoints, rec.ID)
		}
	}

	logger.Debug("Decode: Graph decoding successful.", "endpoints", g.Endpoints)
	return g, nil
}

// Node returns the record with the given id.
func (g *Graph) Node(id string) (*node.Record, bool) {
	rec, ok := g.byID[id]
	return rec, ok
}

// Outgoing returns the connections leaving id, in description order.
func (g *Graph) Outgoing(id string) []*node.Connection {
	var out []*node.Connection
	for _, c := range g.Connections {
		if c.FromNodeID == id {
			out = append(out, c)
		}
	}
	return out
}

// FirstOutgoingLabel returns the label of the first connection leaving id,
// or the empty string for a terminal node.
func (g *Graph) FirstOutgoingLabel(id string) string {
	for _, c := range g.Connections {
		if c.FromNodeID == id {
			return c.Label
		}
	}
	return ""
}

// ConnectionFor returns the first connection leaving id with the given label.
func (g *Graph) ConnectionFor(id, label string) (*node.Connection, bool) {
	for _, c := range g.Connections {
		if c.FromNodeID == id && c.Label == label {
			return c, true
		}
	}
	return nil, false
}

// ResetVisited clears every node's execution mark.
func (g *Graph) ResetVisited() {
	for _, rec := range g.Nodes {
		rec.ResetVisited()
	}
}
