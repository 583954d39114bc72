// Package graph decodes a format-agnostic graph description into typed node
// records and connections.
//
// Decoding dispatches on each node's kind to build exactly one payload,
// links every connection to its target node's parent edges, and computes the
// endpoints: nodes that no connection leaves from. Execution starts from the
// endpoints and walks parent edges toward the roots.
//
// The package also provides the structural checks that must hold before a
// graph may run: unique node names and the absence of cycles.
package graph
