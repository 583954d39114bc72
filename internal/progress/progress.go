// Package progress delivers per-node progress of a graph run to interested
// parties: the log, a host editor listening on socket.io, or both.
package progress

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vk/assetgraph/internal/ctxlog"
)

// Sink receives progress updates. Progress is 0 before a node runs and 1
// after it finished.
type Sink interface {
	Report(nodeID string, progress float64)
	Close() error
}

// Log writes progress updates to a logger.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a sink logging through the context's logger.
func NewLog(ctx context.Context) *Log {
	return &Log{logger: ctxlog.FromContext(ctx)}
}

func (l *Log) Report(nodeID string, progress float64) {
	if progress >= 1 {
		l.logger.Info("Node finished.", "node_id", nodeID)
		return
	}
	l.logger.Debug("Node progress.", "node_id", nodeID, "progress", progress)
}

func (l *Log) Close() error { return nil }

// Multi fans every update out to several sinks.
type Multi []Sink

func (m Multi) Report(nodeID string, progress float64) {
	for _, s := range m {
		s.Report(nodeID, progress)
	}
}

// Close closes every sink and joins their errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
