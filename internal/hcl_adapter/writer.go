package hcl_adapter

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Writer renders a description as an HCL graph document.
type Writer struct{}

// NewWriter creates a new HCL writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders desc to w. Kind-specific attributes are written in name order.
func (wr *Writer) Write(ctx context.Context, desc *config.Description, w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	if !desc.LastModified.IsZero() {
		g := body.AppendNewBlock("graph", nil)
		g.Body().SetAttributeValue("last_modified", cty.StringVal(desc.LastModified.UTC().Format(time.RFC3339)))
		body.AppendNewline()
	}

	for _, n := range desc.Nodes {
		nb := body.AppendNewBlock("node", []string{n.ID}).Body()
		nb.SetAttributeValue("kind", cty.StringVal(n.Kind))
		if n.Name != "" {
			nb.SetAttributeValue("name", cty.StringVal(n.Name))
		}
		if len(n.OutputLabels) > 0 {
			nb.SetAttributeValue("output_labels", stringList(n.OutputLabels))
		}

		names := make([]string, 0, len(n.Attributes))
		for name := range n.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			val := n.Attributes[name]
			if !val.IsWhollyKnown() {
				return fmt.Errorf("node %q: attribute %q has an unknown value", n.ID, name)
			}
			nb.SetAttributeValue(name, val)
		}
		body.AppendNewline()
	}

	for _, c := range desc.Connections {
		cb := body.AppendNewBlock("connection", []string{c.ID}).Body()
		cb.SetAttributeValue("label", cty.StringVal(c.Label))
		cb.SetAttributeValue("from", cty.StringVal(c.FromNodeID))
		cb.SetAttributeValue("to", cty.StringVal(c.ToNodeID))
		body.AppendNewline()
	}

	n, err := w.Write(f.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write HCL document: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("HCL document written.", "bytes", n, "nodes", len(desc.Nodes), "connections", len(desc.Connections))
	return nil
}

func stringList(items []string) cty.Value {
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
