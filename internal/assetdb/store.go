// Package assetdb tracks what the host asset database knows about project
// files: the content fingerprint seen on the last run, which decides whether
// an asset is new, and the package name assigned to each asset.
package assetdb

import (
	"context"
	"fmt"
	"maps"
	"sync"
)

// Store is the host asset database seen by node executors.
type Store interface {
	// Fingerprint returns the digest recorded for path.
	Fingerprint(ctx context.Context, path string) (string, bool, error)
	// SetFingerprint records the digest of path.
	SetFingerprint(ctx context.Context, path, digest string) error
	// SetPackageName assigns path to a package.
	SetPackageName(ctx context.Context, path, name string) error
	// PackageNames returns every path to package assignment.
	PackageNames(ctx context.Context) (map[string]string, error)
	// ClearPackageNames drops every package assignment.
	ClearPackageNames(ctx context.Context) error
	Close() error
}

// Open returns the store selected by kind: "memory", "file" or "redis".
func Open(ctx context.Context, kind, location string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		return OpenFile(location)
	case "redis":
		return OpenRedis(ctx, location, DefaultRedisPrefix)
	}
	return nil, fmt.Errorf("unknown asset database kind %q", kind)
}

// Memory is an in-process Store.
type Memory struct {
	mu           sync.RWMutex
	fingerprints map[string]string
	packages     map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		fingerprints: make(map[string]string),
		packages:     make(map[string]string),
	}
}

func (m *Memory) Fingerprint(_ context.Context, path string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.fingerprints[path]
	return d, ok, nil
}

func (m *Memory) SetFingerprint(_ context.Context, path, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fingerprints[path] = digest
	return nil
}

func (m *Memory) SetPackageName(_ context.Context, path, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages[path] = name
	return nil
}

func (m *Memory) PackageNames(context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.packages), nil
}

func (m *Memory) ClearPackageNames(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.packages)
	return nil
}

func (m *Memory) Close() error { return nil }
