// Package scheduler executes a pipeline graph.
//
// Execution starts from every endpoint and walks parent edges depth-first
// toward the roots, running each node after all of its parents and at most
// once per invocation. Each node receives the merged groups of its incoming
// connections and the list of outputs it cached on earlier runs, and hands
// its results to a synchronous output sink keyed by the outgoing connection.
//
// The same traversal serves both the dry-run SetupGraph, used to preview
// what flows along every connection, and RunGraph, which performs the real
// work and reports per-node progress.
//
// Execution is single-threaded. All state belonging to one invocation lives
// in a run context that is discarded when the invocation ends; callers must
// not run the same Scheduler concurrently.
package scheduler
