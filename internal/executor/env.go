package executor

import (
	"path/filepath"

	"github.com/vk/assetgraph/internal/assetdb"
	"github.com/vk/assetgraph/internal/cachegate"
	"github.com/vk/assetgraph/internal/node"
	"github.com/vk/assetgraph/internal/variant"
)

// ScriptSource creates registered script implementations by type name.
type ScriptSource interface {
	NewScript(scriptType string) (any, error)
}

// Env is the host environment shared by all executors of a run.
type Env struct {
	ProjectRoot string
	CacheDir    string
	Variant     variant.Resolver
	AssetDB     assetdb.Store
	Scripts     ScriptSource
}

// ProjectPath resolves a project-relative path. Absolute paths are returned
// unchanged.
func (e *Env) ProjectPath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(e.ProjectRoot, filepath.FromSlash(p))
}

// Setting resolves a per-variant node setting for the active variant. A
// missing value is a ConfigError naming the field.
func Setting[T any](env *Env, rec *node.Record, field string, values map[string]T) (T, error) {
	v, err := variant.Resolve(env.Variant, values)
	if err != nil {
		return v, &ConfigError{NodeID: rec.ID, Field: field, Err: err}
	}
	return v, nil
}

// SettingOr is like Setting but returns fallback when the node does not set
// the field at all. A field set for other variants only is still a
// ConfigError.
func SettingOr[T any](env *Env, rec *node.Record, field string, values map[string]T, fallback T) (T, error) {
	if len(values) == 0 {
		return fallback, nil
	}
	return Setting(env, rec, field, values)
}

// CacheDirFor returns where rec writes its output for the active variant.
func (e *Env) CacheDirFor(rec *node.Record) string {
	dir, _ := cachegate.NodeDir(e.CacheDir, rec.Kind, rec.ID, e.Variant)
	return dir
}
