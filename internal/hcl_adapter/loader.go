package hcl_adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Extension is the file extension of HCL graph documents.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every HCL file found under paths and merges their blocks, in
// discovery order, into one description. The newest last_modified wins.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Description, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFilesInPaths(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	desc := &config.Description{}
	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, g := range root.Graph {
			ts, err := parseTimestamp(g.LastModified)
			if err != nil {
				return nil, fmt.Errorf("in %s: invalid last_modified: %w", file, err)
			}
			if ts.After(desc.LastModified) {
				desc.LastModified = ts
			}
		}
		for _, n := range root.Nodes {
			entry, err := translateNode(n)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			desc.Nodes = append(desc.Nodes, entry)
		}
		for _, c := range root.Connections {
			desc.Connections = append(desc.Connections, &config.ConnectionEntry{
				ID:         c.ID,
				Label:      c.Label,
				FromNodeID: c.From,
				ToNodeID:   c.To,
			})
		}
	}

	logger.Debug("HCL loading complete.", "files", len(hclFiles), "nodes", len(desc.Nodes), "connections", len(desc.Connections))
	return desc, nil
}

// translateNode evaluates the kind-specific attributes of a node block.
// Attributes are constant expressions; references are rejected.
func translateNode(n *NodeBlock) (*config.NodeEntry, error) {
	entry := &config.NodeEntry{
		ID:           n.ID,
		Kind:         n.Kind,
		Name:         n.Name,
		OutputLabels: n.OutputLabels,
		Attributes:   make(map[string]cty.Value),
	}
	if n.Remain == nil {
		return entry, nil
	}
	attrs, diags := n.Remain.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("node %q: %w", n.ID, diags)
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("node %q, attribute %q: %w", n.ID, name, diags)
		}
		if !val.IsWhollyKnown() {
			return nil, fmt.Errorf("node %q, attribute %q: %w", n.ID, name, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Unknown value",
				Detail:   "Node attributes must be constant values.",
				Subject:  attr.Expr.Range().Ptr(),
			}})
		}
		entry.Attributes[name] = val
	}
	return entry, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
