// Package variant resolves per-platform, per-package values.
//
// Node settings that differ between build targets are stored in maps keyed by
// a variant key built from a platform and a package name. Lookups fall back
// from the exact key to the default platform with the current package, and
// finally to the global Default entry.
package variant

import (
	"errors"
	"fmt"
	"strings"
)

// Default is the key of the global fallback entry and the name used for an
// unspecified platform or package.
const Default = "Default"

// ErrNoDefault is returned when no entry matches and the global default is missing.
var ErrNoDefault = errors.New("no value for variant and no Default entry")

// Resolver holds the active build target.
type Resolver struct {
	Platform string
	Package  string
}

// New returns a Resolver, treating empty names as Default.
func New(platform, pkg string) Resolver {
	return Resolver{Platform: orDefault(platform), Package: orDefault(pkg)}
}

// Key builds the variant key for a platform and package. Spaces are replaced
// with underscores so keys stay usable as identifiers.
func Key(platform, pkg string) string {
	return sanitize(orDefault(platform)) + "_" + sanitize(orDefault(pkg))
}

// Folder returns the cache folder name for the resolver's variant.
func (r Resolver) Folder() string {
	return Key(r.Platform, r.Package)
}

// Candidates returns the lookup keys in fallback order.
func (r Resolver) Candidates() []string {
	return []string{
		Key(r.Platform, r.Package),
		Key(Default, r.Package),
		Default,
	}
}

// Resolve looks up the value for the resolver's variant in values.
func Resolve[T any](r Resolver, values map[string]T) (T, error) {
	for _, k := range r.Candidates() {
		if v, ok := values[k]; ok {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w (platform %q, package %q)", ErrNoDefault, orDefault(r.Platform), orDefault(r.Package))
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return Default
	}
	return s
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
