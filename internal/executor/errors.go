package executor

import "fmt"

// NodeError is a failure raised by an executor for a specific node.
type NodeError struct {
	NodeID string
	Reason string
	Err    error
}

// Errorf builds a NodeError with a formatted reason.
func Errorf(nodeID, format string, args ...any) *NodeError {
	return &NodeError{NodeID: nodeID, Reason: fmt.Sprintf(format, args...)}
}

// Wrap builds a NodeError around err.
func Wrap(nodeID, reason string, err error) *NodeError {
	return &NodeError{NodeID: nodeID, Reason: reason, Err: err}
}

func (e *NodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("node %q: %s: %v", e.NodeID, e.Reason, e.Err)
	}
	return fmt.Sprintf("node %q: %s", e.NodeID, e.Reason)
}

func (e *NodeError) Unwrap() error { return e.Err }

// ConfigError reports a node whose settings cannot be used for the active
// variant.
type ConfigError struct {
	NodeID string
	Field  string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("node %q: invalid %s: %v", e.NodeID, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
