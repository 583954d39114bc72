package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Graph       []*GraphBlock      `hcl:"graph,block"`
	Nodes       []*NodeBlock       `hcl:"node,block"`
	Connections []*ConnectionBlock `hcl:"connection,block"`
	Remain      hcl.Body           `hcl:",remain"`
}

// GraphBlock holds document-level metadata.
type GraphBlock struct {
	LastModified string `hcl:"last_modified,optional"`
}

// NodeBlock is a `node "<id>" { ... }` block. Every attribute other than the
// common ones is kind-specific and kept in Remain.
type NodeBlock struct {
	ID           string   `hcl:"id,label"`
	Kind         string   `hcl:"kind"`
	Name         string   `hcl:"name,optional"`
	OutputLabels []string `hcl:"output_labels,optional"`
	Remain       hcl.Body `hcl:",remain"`
}

// ConnectionBlock is a `connection "<id>" { ... }` block.
type ConnectionBlock struct {
	ID    string `hcl:"id,label"`
	Label string `hcl:"label,optional"`
	From  string `hcl:"from"`
	To    string `hcl:"to"`
}
