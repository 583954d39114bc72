// Package jsondoc reads and writes graph descriptions as JSON documents:
//
//	{"lastModified": "...", "nodes": [{"id", "kind", "name", "outputLabels", ...}],
//	 "connections": [{"id", "label", "fromNodeId", "toNodeId"}]}
//
// Any node field besides the common ones is a kind-specific attribute and is
// kept as a cty value. Malformed documents are repaired before giving up.
package jsondoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kaptinlin/jsonrepair"
	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Extension is the file extension of JSON graph documents.
const Extension = ".json"

var commonFields = map[string]bool{"id": true, "kind": true, "name": true, "outputLabels": true}

type document struct {
	LastModified string                       `json:"lastModified,omitempty"`
	Nodes        []map[string]json.RawMessage `json:"nodes"`
	Connections  []connection                 `json:"connections"`
}

type connection struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	FromNodeID string `json:"fromNodeId"`
	ToNodeID   string `json:"toNodeId"`
}

// Loader is the JSON implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new JSON document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .json file under paths and merges them in discovery order.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Description, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := fsutil.FindFilesInPaths(paths, Extension)
	if err != nil {
		return nil, err
	}

	desc := &config.Description{}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		doc, err := parse(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON file %s: %w", file, err)
		}
		if err := merge(ctx, desc, doc); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}
	logger.Debug("JSON loading complete.", "files", len(files), "nodes", len(desc.Nodes), "connections", len(desc.Connections))
	return desc, nil
}

// parse decodes data, retrying once on a repaired copy.
func parse(ctx context.Context, data []byte) (*document, error) {
	var doc document
	err := json.Unmarshal(data, &doc)
	if err == nil {
		return &doc, nil
	}
	repaired, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr != nil {
		return nil, fmt.Errorf("unmarshal error: %w, repair error: %v", err, repairErr)
	}
	doc = document{}
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal repaired JSON: %w", err)
	}
	ctxlog.FromContext(ctx).Warn("Graph document was malformed and has been repaired.")
	return &doc, nil
}

func merge(ctx context.Context, desc *config.Description, doc *document) error {
	if doc.LastModified != "" {
		ts, err := time.Parse(time.RFC3339, doc.LastModified)
		if err != nil {
			return fmt.Errorf("invalid lastModified: %w", err)
		}
		if ts.After(desc.LastModified) {
			desc.LastModified = ts
		}
	}

	for i, raw := range doc.Nodes {
		entry, err := translateNode(raw)
		if err != nil {
			return fmt.Errorf("node #%d: %w", i, err)
		}
		desc.Nodes = append(desc.Nodes, entry)
	}

	seen := map[string]int{}
	for _, c := range doc.Connections {
		if c.ID == "" {
			c.ID = connectionID(c.FromNodeID, c.Label, c.ToNodeID, seen)
			ctxlog.FromContext(ctx).Debug("Generated connection id.", "id", c.ID, "from", c.FromNodeID, "to", c.ToNodeID)
		}
		desc.Connections = append(desc.Connections, &config.ConnectionEntry{
			ID:         c.ID,
			Label:      c.Label,
			FromNodeID: c.FromNodeID,
			ToNodeID:   c.ToNodeID,
		})
	}
	return nil
}

// connectionID derives a stable id for a connection stored without one.
// Identical connections are told apart by their ordinal.
func connectionID(from, label, to string, seen map[string]int) string {
	name := from + "\x00" + label + "\x00" + to
	n := seen[name]
	seen[name] = n + 1
	if n > 0 {
		name = fmt.Sprintf("%s\x00%d", name, n)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func translateNode(raw map[string]json.RawMessage) (*config.NodeEntry, error) {
	entry := &config.NodeEntry{Attributes: make(map[string]cty.Value)}
	common := []struct {
		key string
		dst any
	}{
		{"id", &entry.ID},
		{"kind", &entry.Kind},
		{"name", &entry.Name},
		{"outputLabels", &entry.OutputLabels},
	}
	for _, f := range common {
		if v, ok := raw[f.key]; ok {
			if err := json.Unmarshal(v, f.dst); err != nil {
				return nil, fmt.Errorf("field %q: %w", f.key, err)
			}
		}
	}
	if entry.ID == "" {
		return nil, fmt.Errorf("missing id")
	}

	for key, v := range raw {
		if commonFields[key] {
			continue
		}
		ty, err := ctyjson.ImpliedType(v)
		if err != nil {
			return nil, fmt.Errorf("node %q, field %q: %w", entry.ID, key, err)
		}
		val, err := ctyjson.Unmarshal(v, ty)
		if err != nil {
			return nil, fmt.Errorf("node %q, field %q: %w", entry.ID, key, err)
		}
		entry.Attributes[key] = val
	}
	return entry, nil
}

// Writer renders descriptions as JSON documents.
type Writer struct{}

// NewWriter creates a new JSON document writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders desc to w with two-space indentation.
func (wr *Writer) Write(ctx context.Context, desc *config.Description, w io.Writer) error {
	doc := document{Nodes: []map[string]json.RawMessage{}, Connections: []connection{}}
	if !desc.LastModified.IsZero() {
		doc.LastModified = desc.LastModified.UTC().Format(time.RFC3339)
	}

	for _, n := range desc.Nodes {
		raw := map[string]json.RawMessage{}
		for key, v := range map[string]any{"id": n.ID, "kind": n.Kind, "name": n.Name, "outputLabels": n.OutputLabels} {
			if b, err := json.Marshal(v); err == nil {
				raw[key] = b
			}
		}
		if len(n.OutputLabels) == 0 {
			delete(raw, "outputLabels")
		}
		keys := make([]string, 0, len(n.Attributes))
		for key := range n.Attributes {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			val := n.Attributes[key]
			b, err := ctyjson.Marshal(val, val.Type())
			if err != nil {
				return fmt.Errorf("node %q, attribute %q: %w", n.ID, key, err)
			}
			raw[key] = b
		}
		doc.Nodes = append(doc.Nodes, raw)
	}
	for _, c := range desc.Connections {
		doc.Connections = append(doc.Connections, connection{ID: c.ID, Label: c.Label, FromNodeID: c.FromNodeID, ToNodeID: c.ToNodeID})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON document: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write JSON document: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("JSON document written.", "bytes", buf.Len())
	return nil
}

var (
	_ config.Loader = (*Loader)(nil)
	_ config.Writer = (*Writer)(nil)
)
