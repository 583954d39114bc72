package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Modes of operation.
const (
	ModeSetup    = "setup"
	ModeRun      = "run"
	ModeValidate = "validate"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "ASSETGRAPH_"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath   string // .hcl/.json file or a directory of them
	Mode        string
	ProjectRoot string
	CacheDir    string

	Platform string
	Package  string

	// WriteBack persists a repaired description over GraphPath.
	WriteBack bool

	AssetDB     string // memory | file | redis
	AssetDBPath string
	RedisURL    string

	ProgressURL       string
	ProgressNamespace string

	LogFormat string
	LogLevel  string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Mode:      ModeRun,
		AssetDB:   "file",
		LogFormat: "text",
		LogLevel:  "info",
	}
}

// NewConfig validates cfg and fills derived defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}

	switch cfg.Mode {
	case "":
		cfg.Mode = ModeRun
	case ModeSetup, ModeRun, ModeValidate:
	default:
		return nil, fmt.Errorf("invalid mode %q: must be '%s', '%s' or '%s'", cfg.Mode, ModeSetup, ModeRun, ModeValidate)
	}

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine project root: %w", err)
		}
		cfg.ProjectRoot = wd
	}
	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid project root: %w", err)
	}
	cfg.ProjectRoot = root

	if cfg.CacheDir == "" {
		cfg.CacheDir = "Cache"
	}
	if !filepath.IsAbs(cfg.CacheDir) {
		cfg.CacheDir = filepath.Join(cfg.ProjectRoot, cfg.CacheDir)
	}

	switch cfg.AssetDB {
	case "":
		cfg.AssetDB = "memory"
	case "memory":
	case "file":
		if cfg.AssetDBPath == "" {
			cfg.AssetDBPath = filepath.Join(cfg.CacheDir, "assetdb.json")
		}
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New("RedisURL is required when the asset database is 'redis'")
		}
	default:
		return nil, fmt.Errorf("invalid asset database %q: must be 'memory', 'file' or 'redis'", cfg.AssetDB)
	}

	return &cfg, nil
}

// AssetDBLocation returns the location handed to the asset database backend.
func (c *Config) AssetDBLocation() string {
	if c.AssetDB == "redis" {
		return c.RedisURL
	}
	return c.AssetDBPath
}

// LoadEnv applies a .env file and ASSETGRAPH_* variables onto cfg. A missing
// default .env file is ignored; an explicitly named one must exist.
func LoadEnv(envFile string, cfg *Config) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	applyString("GRAPH", &cfg.GraphPath)
	applyString("MODE", &cfg.Mode)
	applyString("PROJECT_ROOT", &cfg.ProjectRoot)
	applyString("CACHE_DIR", &cfg.CacheDir)
	applyString("PLATFORM", &cfg.Platform)
	applyString("PACKAGE", &cfg.Package)
	applyBool("WRITE_BACK", &cfg.WriteBack)
	applyString("ASSET_DB", &cfg.AssetDB)
	applyString("ASSET_DB_PATH", &cfg.AssetDBPath)
	applyString("REDIS_URL", &cfg.RedisURL)
	applyString("PROGRESS_URL", &cfg.ProgressURL)
	applyString("PROGRESS_NAMESPACE", &cfg.ProgressNamespace)
	applyString("LOG_FORMAT", &cfg.LogFormat)
	applyString("LOG_LEVEL", &cfg.LogLevel)
	return nil
}

func applyString(key string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(EnvPrefix + key)); v != "" {
		*dst = v
	}
}

func applyBool(key string, dst *bool) {
	if v := strings.TrimSpace(os.Getenv(EnvPrefix + key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
