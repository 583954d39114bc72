// Package executor defines the contract between the scheduler and the
// per-kind node executors.
package executor

import (
	"context"

	"github.com/vk/assetgraph/internal/asset"
)

// OutputFunc receives a node's produced groups for one output label.
// justCached lists the files written to the cache during this call.
type OutputFunc func(sourceNodeID, label string, groups asset.Groups, justCached []string)

// Input is everything a node sees when it is invoked.
type Input struct {
	NodeID string
	// Label is the label of the node's first outgoing connection, or empty
	// for a terminal node.
	Label string
	// Groups merges the results of all incoming connections.
	Groups asset.Groups
	// CachedPaths lists output the node produced on earlier runs.
	CachedPaths []string
}

// Executor performs the work of one node kind. Setup is a dry run and must
// not persist anything; Run does the real work. Both call out once per
// produced label.
type Executor interface {
	Setup(ctx context.Context, in Input, out OutputFunc) error
	Run(ctx context.Context, in Input, out OutputFunc) error
}

// Func adapts a single function to an Executor that behaves the same in
// setup and run.
type Func func(ctx context.Context, in Input, out OutputFunc) error

func (f Func) Setup(ctx context.Context, in Input, out OutputFunc) error { return f(ctx, in, out) }
func (f Func) Run(ctx context.Context, in Input, out OutputFunc) error   { return f(ctx, in, out) }
