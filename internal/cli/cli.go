package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/assetgraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
//
// Values come from built-in defaults, then a .env file and ASSETGRAPH_*
// environment variables, then flags given explicitly.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("assetgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
AssetGraph - runs asset-processing pipeline graphs.

Usage:
  assetgraph [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a .hcl or .json graph file, or a directory containing them.

Options:
`)
		flagSet.PrintDefaults()
	}

	var fc app.Config
	defaults := app.DefaultConfig()
	gridFlag := flagSet.String("graph", "", "Path to the graph file or directory.")
	gFlag := flagSet.String("g", "", "Path to the graph file or directory (shorthand).")
	envFile := flagSet.String("env-file", "", "Path to a .env file. Defaults to ./.env when present.")
	flagSet.StringVar(&fc.Mode, "mode", defaults.Mode, "What to do with the graph. Options: 'setup', 'run', 'validate'.")
	flagSet.StringVar(&fc.ProjectRoot, "root", "", "Project root directory. Defaults to the working directory.")
	flagSet.StringVar(&fc.CacheDir, "cache-dir", "", "Cache directory, relative to the project root unless absolute. Defaults to 'Cache'.")
	flagSet.StringVar(&fc.Platform, "platform", "", "Target platform used to resolve per-variant settings.")
	flagSet.StringVar(&fc.Package, "package", "", "Target package used to resolve per-variant settings.")
	flagSet.BoolVar(&fc.WriteBack, "write", false, "Write a repaired graph description back to the graph file.")
	flagSet.StringVar(&fc.AssetDB, "asset-db", defaults.AssetDB, "Asset database backend. Options: 'memory', 'file', 'redis'.")
	flagSet.StringVar(&fc.AssetDBPath, "asset-db-path", "", "Path of the file asset database. Defaults to <cache-dir>/assetdb.json.")
	flagSet.StringVar(&fc.RedisURL, "redis-url", "", "Redis URL for the redis asset database.")
	flagSet.StringVar(&fc.ProgressURL, "progress-url", "", "socket.io server receiving progress events. Empty disables it.")
	flagSet.StringVar(&fc.ProgressNamespace, "progress-namespace", "/", "socket.io namespace for progress events.")
	flagSet.StringVar(&fc.LogFormat, "log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&fc.LogLevel, "log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	cfg := defaults
	cfg.ProgressNamespace = fc.ProgressNamespace
	if err := app.LoadEnv(*envFile, &cfg); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	explicit := map[string]func(){
		"mode":               func() { cfg.Mode = fc.Mode },
		"root":               func() { cfg.ProjectRoot = fc.ProjectRoot },
		"cache-dir":          func() { cfg.CacheDir = fc.CacheDir },
		"platform":           func() { cfg.Platform = fc.Platform },
		"package":            func() { cfg.Package = fc.Package },
		"write":              func() { cfg.WriteBack = fc.WriteBack },
		"asset-db":           func() { cfg.AssetDB = fc.AssetDB },
		"asset-db-path":      func() { cfg.AssetDBPath = fc.AssetDBPath },
		"redis-url":          func() { cfg.RedisURL = fc.RedisURL },
		"progress-url":       func() { cfg.ProgressURL = fc.ProgressURL },
		"progress-namespace": func() { cfg.ProgressNamespace = fc.ProgressNamespace },
		"log-format":         func() { cfg.LogFormat = fc.LogFormat },
		"log-level":          func() { cfg.LogLevel = fc.LogLevel },
	}
	flagSet.Visit(func(f *flag.Flag) {
		if apply, ok := explicit[f.Name]; ok {
			apply()
		}
	})

	if *gridFlag != "" {
		cfg.GraphPath = *gridFlag
	} else if *gFlag != "" {
		cfg.GraphPath = *gFlag
	} else if flagSet.NArg() > 0 {
		cfg.GraphPath = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", cfg.GraphPath)

	if cfg.GraphPath == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
