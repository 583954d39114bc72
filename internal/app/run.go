package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vk/assetgraph/internal/assetdb"
	"github.com/vk/assetgraph/internal/config"
	"github.com/vk/assetgraph/internal/ctxlog"
	"github.com/vk/assetgraph/internal/executor"
	"github.com/vk/assetgraph/internal/progress"
	"github.com/vk/assetgraph/internal/scheduler"
	"github.com/vk/assetgraph/internal/validate"
	"github.com/vk/assetgraph/internal/variant"
)

// Run validates the loaded graph and, depending on the mode, sets it up or
// runs it. The result is written to the output as JSON.
func (a *App) Run(ctx context.Context) (scheduler.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", a.config.Mode)

	db, err := assetdb.Open(ctx, a.config.AssetDB, a.config.AssetDBLocation())
	if err != nil {
		return nil, fmt.Errorf("failed to open asset database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			a.logger.Warn("Failed to close asset database.", "error", err)
		}
	}()

	env := &executor.Env{
		ProjectRoot: a.config.ProjectRoot,
		CacheDir:    a.config.CacheDir,
		Variant:     variant.New(a.config.Platform, a.config.Package),
		AssetDB:     db,
	}

	desc, dirty := validate.Validate(ctx, a.desc, a.registry, env)
	if dirty && a.config.WriteBack {
		if err := a.writeBack(ctx, desc); err != nil {
			return nil, err
		}
	}
	a.desc = desc

	if len(desc.Nodes) == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
	}

	sched := scheduler.New(a.registry, env)
	var res scheduler.Result
	switch a.config.Mode {
	case ModeValidate:
		a.logger.Info("Validation finished.", "repaired", dirty, "nodes", len(desc.Nodes), "connections", len(desc.Connections))
		return nil, nil
	case ModeSetup:
		res, err = sched.SetupGraph(ctx, desc)
	default:
		sink, serr := a.progressSink(ctx)
		if serr != nil {
			return nil, serr
		}
		defer sink.Close()
		a.logger.Info("🚀 Starting graph run...")
		res, err = sched.RunGraph(ctx, desc, sink.Report)
	}
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.", "outputs", len(res))

	if err := a.printResult(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *App) progressSink(ctx context.Context) (progress.Sink, error) {
	sinks := progress.Multi{progress.NewLog(ctx)}
	if a.config.ProgressURL != "" {
		sio, err := progress.Dial(ctx, progress.SocketIOOptions{URL: a.config.ProgressURL, Namespace: a.config.ProgressNamespace})
		if err != nil {
			return nil, fmt.Errorf("failed to connect progress sink: %w", err)
		}
		sinks = append(sinks, sio)
	}
	return sinks, nil
}

// writeBack persists desc over the graph file. Directories are left alone.
func (a *App) writeBack(ctx context.Context, desc *config.Description) error {
	info, err := os.Stat(a.config.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to stat graph path: %w", err)
	}
	if info.IsDir() {
		a.logger.Warn("Graph path is a directory, repaired description not written.", "path", a.config.GraphPath)
		return nil
	}

	var buf bytes.Buffer
	if err := a.writer.Write(ctx, desc, &buf); err != nil {
		return err
	}
	tmp := a.config.GraphPath + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write repaired graph: %w", err)
	}
	if err := os.Rename(tmp, a.config.GraphPath); err != nil {
		return fmt.Errorf("failed to replace graph file: %w", err)
	}
	a.logger.Info("Repaired graph description written.", "path", a.config.GraphPath)
	return nil
}

func (a *App) printResult(res scheduler.Result) error {
	enc := json.NewEncoder(a.outW)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
