package node

// DefaultLabel is the output label of nodes that do not split their output.
const DefaultLabel = "_"

// Connection is a labeled edge between two nodes.
type Connection struct {
	ID         string
	Label      string
	FromNodeID string
	ToNodeID   string
}

// Record is a single vertex of a decoded graph.
type Record struct {
	ID           string
	Kind         Kind
	Name         string
	OutputLabels []string
	Payload      Payload

	// ParentEdges are the connections targeting this node, in description order.
	ParentEdges []*Connection

	visited bool
}

// Visited reports whether the node has been executed in the current run.
func (r *Record) Visited() bool {
	return r.visited
}

// MarkVisited records that the node has been executed.
func (r *Record) MarkVisited() {
	r.visited = true
}

// ResetVisited clears the execution mark before a new run.
func (r *Record) ResetVisited() {
	r.visited = false
}
