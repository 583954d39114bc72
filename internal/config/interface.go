package config

import (
	"context"
	"io"
)

// Loader is the interface for a format-specific graph description loader.
type Loader interface {
	// Load reads every description found under the given paths and merges
	// them, in discovery order, into a single Description.
	Load(ctx context.Context, paths ...string) (*Description, error)
}

// Writer persists a Description in a specific format.
type Writer interface {
	Write(ctx context.Context, desc *Description, w io.Writer) error
}
