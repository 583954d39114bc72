package scheduler

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/cachegate"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/graph"
	"github.com/vk/assetgraph/internal/node"
)

// runContext holds the state of a single invocation.
type runContext struct {
	s        *Scheduler
	g        *graph.Graph
	isRun    bool
	progress ProgressFunc

	// results is keyed by connection id, or by node id for terminal output.
	results map[string]asset.Groups
	// cached lists the files each node wrote to the cache in this run.
	cached map[string][]string
	// onPath holds the connection ids of the current DFS path.
	onPath map[string]struct{}
}

func newRunContext(s *Scheduler, g *graph.Graph, isRun bool, progress ProgressFunc) *runContext {
	g.ResetVisited()
	return &runContext{
		s:        s,
		g:        g,
		isRun:    isRun,
		progress: progress,
		results:  make(map[string]asset.Groups),
		cached:   make(map[string][]string),
		onPath:   make(map[string]struct{}),
	}
}

func (rc *runContext) visit(ctx context.Context, id string) error {
	rec, ok := rc.g.Node(id)
	if !ok {
		return fmt.Errorf("node %q not found", id)
	}
	if rec.Visited() {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	for _, edge := range rec.ParentEdges {
		if _, seen := rc.onPath[edge.ID]; seen {
			return &graph.CycleError{NodeID: rec.ID, ConnectionID: edge.ID}
		}
		parent, ok := rc.g.Node(edge.FromNodeID)
		if !ok {
			logger.Warn("Skipping connection from unknown node.", "connection_id", edge.ID, "from", edge.FromNodeID)
			continue
		}
		if err := node.CheckOrder(parent, rec); err != nil {
			return err
		}

		rc.onPath[edge.ID] = struct{}{}
		err := rc.visit(ctx, parent.ID)
		delete(rc.onPath, edge.ID)
		if err != nil {
			return err
		}
	}

	return rc.invoke(ctx, rec)
}

func (rc *runContext) invoke(ctx context.Context, rec *node.Record) error {
	env := rc.s.env
	ctx = ctxlog.With(ctx, "node_id", rec.ID, "node_name", rec.Name, "kind", rec.Kind.String())
	logger := ctxlog.FromContext(ctx)

	in := executor.Input{
		NodeID: rec.ID,
		Label:  rc.g.FirstOutgoingLabel(rec.ID),
		Groups: asset.Groups{},
	}
	for _, edge := range rec.ParentEdges {
		if groups, ok := rc.results[edge.ID]; ok {
			in.Groups.Merge(groups)
		}
	}
	in.CachedPaths = append(slices.Clone(rc.cached[rec.ID]),
		cachegate.CachedPaths(ctx, env.CacheDir, rec.Kind, rec.ID, env.Variant)...)

	ex, err := rc.s.registry.NewExecutor(rec, env)
	if err != nil {
		return err
	}

	out := func(sourceNodeID, label string, groups asset.Groups, justCached []string) {
		key := sourceNodeID
		if conn, ok := rc.g.ConnectionFor(sourceNodeID, label); ok {
			key = conn.ID
			if rc.results[key] == nil {
				rc.results[key] = asset.Groups{}
			}
			rc.results[key].Merge(groups)
		} else {
			rc.results[key] = groups.Clone()
		}
		if rc.isRun && len(justCached) > 0 {
			rc.cached[rec.ID] = append(rc.cached[rec.ID], justCached...)
		}
		logger.Debug("Node produced output.", "label", label, "result_key", key, "groups", len(groups), "units", groups.Count())
	}

	rc.report(rec.ID, 0)
	if rc.isRun {
		logger.Info("Running node.")
		err = ex.Run(ctx, in, out)
	} else {
		logger.Debug("Setting up node.")
		err = ex.Setup(ctx, in, out)
	}
	if err != nil {
		logger.Error("Node execution failed.", "error", err)
		return fmt.Errorf("%w at node %q", ErrAborted, rec.ID)
	}

	rec.MarkVisited()
	rc.report(rec.ID, 1)
	return nil
}

func (rc *runContext) report(nodeID string, p float64) {
	if rc.progress != nil {
		rc.progress(nodeID, p)
	}
}

func (rc *runContext) flatten() Result {
	root := rc.s.env.ProjectRoot
	out := make(Result, len(rc.results))
	for key, groups := range rc.results {
		flat := make(map[string][]asset.Throughput, len(groups))
		for groupKey, units := range groups {
			list := make([]asset.Throughput, 0, len(units))
			for _, u := range units {
				list = append(list, u.Throughput(root))
			}
			flat[groupKey] = list
		}
		out[key] = flat
	}
	return out
}
