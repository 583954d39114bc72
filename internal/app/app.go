package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/hcl_adapter"
	"github.com/vk/assetgraph/internal/jsondoc"
	"github.com/vk/assetgraph/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
	desc     *config.Description
	writer   config.Writer
}

// NewApp is the constructor for the main application. Logs go to logW and
// results to outW. It loads the graph description and validates the
// registry, panicking on failure.
func NewApp(outW, logW io.Writer, appConfig *Config, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	loader, writer := formatFor(appConfig.GraphPath)
	desc, err := loader.Load(ctx, appConfig.GraphPath)
	if err != nil {
		panic(fmt.Errorf("failed to load graph: %w", err))
	}
	logger.Debug("Graph description loaded.", "nodes", len(desc.Nodes), "connections", len(desc.Connections))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error (missing executor), so we panic.
		panic(err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   appConfig,
		desc:     desc,
		writer:   writer,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Description returns the loaded graph description.
func (a *App) Description() *config.Description {
	return a.desc
}

// formatFor picks the document format from the graph path. A directory is
// read as JSON only when it holds .json documents and no .hcl ones.
func formatFor(path string) (config.Loader, config.Writer) {
	if isJSON(path) {
		return jsondoc.NewLoader(), jsondoc.NewWriter()
	}
	return hcl_adapter.NewLoader(), hcl_adapter.NewWriter()
}

func isJSON(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return strings.EqualFold(filepath.Ext(path), jsondoc.Extension)
	}
	hasJSON, hasHCL := false, false
	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		switch filepath.Ext(p) {
		case jsondoc.Extension:
			hasJSON = true
		case hcl_adapter.Extension:
			hasHCL = true
		}
		return nil
	})
	return hasJSON && !hasHCL
}
