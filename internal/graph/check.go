package graph

import "fmt"

// CycleError reports a connection that closes a loop.
type CycleError struct {
	NodeID       string
	ConnectionID string
}

func (e *CycleError) Error() string {
	if e.ConnectionID == "" {
		return fmt.Sprintf("cycle detected involving node %q", e.NodeID)
	}
	return fmt.Sprintf("cycle detected involving node %q via connection %q", e.NodeID, e.ConnectionID)
}

// DuplicateNameError reports two nodes sharing a name.
type DuplicateNameError struct {
	Name    string
	NodeIDs []string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("node name %q is used by more than one node: %v", e.Name, e.NodeIDs)
}

// CheckUniqueNames fails when two nodes share a name.
func (g *Graph) CheckUniqueNames() error {
	seen := make(map[string]string, len(g.Nodes))
	for _, rec := range g.Nodes {
		if first, ok := seen[rec.Name]; ok {
			return &DuplicateNameError{Name: rec.Name, NodeIDs: []string{first, rec.ID}}
		}
		seen[rec.Name] = rec.ID
	}
	return nil
}

// DetectCycles checks every node for circular parent links, including loops
// that no endpoint can reach.
func (g *Graph) DetectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		rec, ok := g.byID[id]
		if !ok {
			return nil
		}
		visiting[id] = true
		for _, edge := range rec.ParentEdges {
			if visiting[edge.FromNodeID] {
				return &CycleError{NodeID: edge.FromNodeID, ConnectionID: edge.ID}
			}
			if !visited[edge.FromNodeID] {
				if err := visit(edge.FromNodeID); err != nil {
					return err
				}
			}
		}
		delete(visiting, id)
		visited[id] = true
		return nil
	}

	for _, rec := range g.Nodes {
		if !visited[rec.ID] {
			if err := visit(rec.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
