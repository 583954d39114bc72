package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/node"
)

// ValidateRegistry checks that every node kind has an executor.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, kind := range node.Kinds() {
		if _, ok := r.executors[kind]; !ok {
			errs = append(errs, fmt.Sprintf("kind '%s' has no registered executor", kind))
		}
	}
	if len(r.scripts) == 0 {
		logger.Warn("No script types registered; scripted nodes will be dropped during validation.")
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validation passed.", "executors", len(r.executors), "scripts", len(r.scripts))
	return nil
}
