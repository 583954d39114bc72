// Package hcl_adapter reads and writes graph descriptions in HCL.
//
// A document is made of `graph`, `node "<id>"` and `connection "<id>"`
// blocks. Node attributes other than kind, name and output_labels are
// evaluated as constant cty values and left for the graph decoder to
// interpret per kind.
package hcl_adapter

import "github.com/vk/assetgraph/internal/config"

var (
	_ config.Loader = (*Loader)(nil)
	_ config.Writer = (*Writer)(nil)
)
