// Package asset defines the units of data that flow between pipeline nodes.
package asset

import (
	"path/filepath"
	"sort"
	"strings"
)

// DefaultGroup is the group key used before any node has grouped its input.
const DefaultGroup = "0"

// Unit is a single asset travelling through the graph. A unit is identified by
// exactly one of its paths; Path reports which one in order of preference.
type Unit struct {
	// ImportedPath is a project-relative path of an asset inside the project.
	ImportedPath string
	// AbsoluteSourcePath is a file outside the project tree or inside the cache.
	AbsoluteSourcePath string
	// ExportedPath is a project-relative path written by an exporter.
	ExportedPath string

	// PathUnderBase is the unit's path relative to the directory it was
	// loaded from. Exporters and packagers use it to lay out output files.
	PathUnderBase string

	IsNew     bool
	IsBundled bool
}

// Throughput is the flattened, externally visible form of a Unit.
type Throughput struct {
	Path      string `json:"path"`
	IsBundled bool   `json:"isBundled,omitempty"`
}

// Path returns the unit's identity as seen from projectRoot.
func (u Unit) Path(projectRoot string) string {
	switch {
	case u.ImportedPath != "":
		return u.ImportedPath
	case u.AbsoluteSourcePath != "":
		return RelativeToRoot(projectRoot, u.AbsoluteSourcePath)
	default:
		return u.ExportedPath
	}
}

// FilePath returns the location of the unit's bytes on disk.
func (u Unit) FilePath(projectRoot string) string {
	switch {
	case u.AbsoluteSourcePath != "":
		return u.AbsoluteSourcePath
	case u.ImportedPath != "":
		return filepath.Join(projectRoot, filepath.FromSlash(u.ImportedPath))
	case u.ExportedPath != "":
		return filepath.Join(projectRoot, filepath.FromSlash(u.ExportedPath))
	}
	return ""
}

// Throughput flattens the unit.
func (u Unit) Throughput(projectRoot string) Throughput {
	return Throughput{Path: u.Path(projectRoot), IsBundled: u.IsBundled}
}

// RelativeToRoot strips the project root prefix from an absolute path. Paths
// outside the root are returned unchanged, in slash form.
func RelativeToRoot(projectRoot, abs string) string {
	p := filepath.ToSlash(abs)
	if projectRoot == "" {
		return p
	}
	root := strings.TrimSuffix(filepath.ToSlash(projectRoot), "/") + "/"
	return strings.TrimPrefix(p, root)
}

// Groups maps a group key to the units in that group.
type Groups map[string][]Unit

// Empty returns the canonical empty input: a single empty default group.
func Empty() Groups {
	return Groups{DefaultGroup: {}}
}

// Merge appends every group of other onto g, preserving unit order.
func (g Groups) Merge(other Groups) {
	for key, units := range other {
		g[key] = append(g[key], units...)
	}
}

// Clone returns a deep copy of g.
func (g Groups) Clone() Groups {
	out := make(Groups, len(g))
	for key, units := range g {
		out[key] = append([]Unit(nil), units...)
	}
	return out
}

// Keys returns the group keys in sorted order.
func (g Groups) Keys() []string {
	keys := make([]string, 0, len(g))
	for key := range g {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the total number of units over all groups.
func (g Groups) Count() int {
	n := 0
	for _, units := range g {
		n += len(units)
	}
	return n
}

// AnyNew reports whether any unit is marked as new.
func AnyNew(units []Unit) bool {
	for _, u := range units {
		if u.IsNew {
			return true
		}
	}
	return false
}
