// Package node defines the typed records of a decoded pipeline graph: node
// kinds, the kind adjacency rule, per-kind payloads and connections.
package node
