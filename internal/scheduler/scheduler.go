package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/assetgraph/internal/asset"
	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/graph"
	"github.com/vk/assetgraph/internal/registry"
)

// ErrAborted is returned when a node executor fails. The underlying failure
// is logged, not returned.
var ErrAborted = errors.New("graph execution aborted")

// ProgressFunc receives 0 before and 1 after each node executes.
type ProgressFunc func(nodeID string, progress float64)

// Result maps each connection id, or the node id of a terminal output, to
// the flattened groups that flowed through it.
type Result map[string]map[string][]asset.Throughput

// Scheduler runs graphs against a registry of executors.
type Scheduler struct {
	registry *registry.Registry
	env      *executor.Env
}

// New creates a Scheduler.
func New(reg *registry.Registry, env *executor.Env) *Scheduler {
	if env.Scripts == nil {
		env.Scripts = reg
	}
	return &Scheduler{registry: reg, env: env}
}

// Env returns the environment handed to executors.
func (s *Scheduler) Env() *executor.Env {
	return s.env
}

// SetupGraph performs a dry run of desc and returns what would flow through
// every connection.
func (s *Scheduler) SetupGraph(ctx context.Context, desc *config.Description) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("SetupGraph: Starting dry run.")

	res, err := s.execute(ctx, desc, false, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("Graph setup finished.", "outputs", len(res))
	return res, nil
}

// RunGraph executes desc for real. Package name assignments left over from
// earlier runs are cleared first.
func (s *Scheduler) RunGraph(ctx context.Context, desc *config.Description, progress ProgressFunc) (Result, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("RunGraph: Starting run.")

	if s.env.AssetDB != nil {
		if err := s.env.AssetDB.ClearPackageNames(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear package names: %w", err)
		}
	}

	res, err := s.execute(ctx, desc, true, progress)
	if err != nil {
		return nil, err
	}
	logger.Info("Graph run finished.", "outputs", len(res))
	return res, nil
}

func (s *Scheduler) execute(ctx context.Context, desc *config.Description, isRun bool, progress ProgressFunc) (Result, error) {
	g, err := graph.Decode(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode graph: %w", err)
	}
	if err := g.CheckUniqueNames(); err != nil {
		return nil, err
	}
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	rc := newRunContext(s, g, isRun, progress)
	for _, endpoint := range g.Endpoints {
		if err := rc.visit(ctx, endpoint); err != nil {
			return nil, err
		}
	}
	return rc.flatten(), nil
}
