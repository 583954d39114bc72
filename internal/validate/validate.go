// Package validate sanitizes a graph description before it is saved or run.
//
// Validation is self-healing: filter nodes get their output labels
// re-derived from a dry run of their executor, script filters and script
// prefabricators whose script type is not registered are removed, and connections whose endpoints or
// labels no longer exist are dropped. Nothing found here is an error; every
// repair is logged. The pass is idempotent.
package validate

import (
	"context"
	"slices"
	"time"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/graph"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/registry"
)

var now = time.Now

// Validate returns a repaired copy of desc with a fresh LastModified stamp,
// or desc itself when nothing needed repair.
func Validate(ctx context.Context, desc *config.Description, reg *registry.Registry, env *executor.Env) (*config.Description, bool) {
	logger := ctxlog.FromContext(ctx)
	out := desc.Clone()
	dirty := false

	kept := out.Nodes[:0]
	for _, entry := range out.Nodes {
		kind, err := node.ParseKind(entry.Kind)
		if err != nil {
			logger.Warn("Node has an unrecognized kind.", "node_id", entry.ID, "kind", entry.Kind)
			kept = append(kept, entry)
			continue
		}

		if kind.IsScripted() {
			scriptType := graph.DecodePayload(kind, entry.Attributes).(node.ScriptConfig).ScriptType
			switch {
			case scriptType == "" && kind == node.KindPrefabricatorGUI:
				logger.Warn("Prefabricator has no script type set.", "node_id", entry.ID)
			case reg.HasScript(scriptType):
			case kind == node.KindPrefabricatorGUI:
				logger.Warn("Prefabricator script type is not registered.", "node_id", entry.ID, "script_type", scriptType, "registered", reg.ScriptTypes())
			default:
				logger.Warn("Removing node with unregistered script type.", "node_id", entry.ID, "script_type", scriptType, "registered", reg.ScriptTypes())
				dirty = true
				continue
			}
		}

		if kind.IsFilter() {
			labels, err := LabelsFromSetup(ctx, recordFor(entry, kind), reg, env)
			if err != nil {
				logger.Warn("Could not derive filter labels.", "node_id", entry.ID, "error", err)
			} else if !sameSet(labels, entry.OutputLabels) {
				logger.Info("Updating filter output labels.", "node_id", entry.ID, "old", entry.OutputLabels, "new", labels)
				entry.OutputLabels = labels
				dirty = true
			}
		}
		kept = append(kept, entry)
	}
	out.Nodes = kept

	validLabels := make(map[string][]string, len(out.Nodes))
	for _, entry := range out.Nodes {
		validLabels[entry.ID] = outputLabels(entry)
	}

	conns := out.Connections[:0]
	for _, c := range out.Connections {
		from, fromOK := validLabels[c.FromNodeID]
		_, toOK := validLabels[c.ToNodeID]
		switch {
		case !fromOK || !toOK:
			logger.Warn("Removing connection with a missing endpoint.", "connection_id", c.ID, "from", c.FromNodeID, "to", c.ToNodeID)
			dirty = true
		case !slices.Contains(from, c.Label):
			logger.Warn("Removing connection with an invalid label.", "connection_id", c.ID, "label", c.Label, "valid", from)
			dirty = true
		default:
			conns = append(conns, c)
		}
	}
	out.Connections = conns

	if !dirty {
		logger.Debug("Graph description is valid.")
		return desc, false
	}
	out.LastModified = now().UTC()
	logger.Info("Graph description repaired.", "nodes", len(out.Nodes), "connections", len(out.Connections))
	return out, true
}

// LabelsFromSetup dry-runs a filter over an empty input and returns the
// labels it emits, in emission order.
func LabelsFromSetup(ctx context.Context, rec *node.Record, reg *registry.Registry, env *executor.Env) ([]string, error) {
	ex, err := reg.NewExecutor(rec, env)
	if err != nil {
		return nil, err
	}
	labels := []string{}
	collect := func(_ string, label string, _ asset.Groups, _ []string) {
		if !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
	}
	in := executor.Input{NodeID: rec.ID, Groups: asset.Empty()}
	if err := ex.Setup(ctx, in, collect); err != nil {
		return nil, err
	}
	return labels, nil
}

func recordFor(entry *config.NodeEntry, kind node.Kind) *node.Record {
	return &node.Record{
		ID:           entry.ID,
		Kind:         kind,
		Name:         entry.Name,
		OutputLabels: entry.OutputLabels,
		Payload:      graph.DecodePayload(kind, entry.Attributes),
	}
}

func outputLabels(entry *config.NodeEntry) []string {
	if len(entry.OutputLabels) > 0 {
		return entry.OutputLabels
	}
	if kind, err := node.ParseKind(entry.Kind); err == nil && kind.IsFilter() {
		return nil
	}
	return []string{node.DefaultLabel}
}

func sameSet(a, b []string) bool {
	as := slices.Clone(a)
	bs := slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(slices.Compact(as), slices.Compact(bs))
}
