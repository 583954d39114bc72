package assetdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// fileState is the on-disk layout of a File store.
type fileState struct {
	Fingerprints map[string]string `json:"fingerprints"`
	Packages     map[string]string `json:"packages"`
}

// File is a Store persisted as a JSON document. Every mutation rewrites the
// document atomically.
type File struct {
	*Memory
	path string
}

// OpenFile loads the store at path, creating an empty one if it does not exist.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("asset database file path is empty")
	}
	f := &File{Memory: NewMemory(), path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read asset database %q: %w", path, err)
	}

	var st fileState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse asset database %q: %w", path, err)
	}
	for k, v := range st.Fingerprints {
		f.fingerprints[k] = v
	}
	for k, v := range st.Packages {
		f.packages[k] = v
	}
	return f, nil
}

func (f *File) SetFingerprint(ctx context.Context, path, digest string) error {
	if err := f.Memory.SetFingerprint(ctx, path, digest); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) SetPackageName(ctx context.Context, path, name string) error {
	if err := f.Memory.SetPackageName(ctx, path, name); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) ClearPackageNames(ctx context.Context) error {
	if err := f.Memory.ClearPackageNames(ctx); err != nil {
		return err
	}
	return f.flush()
}

func (f *File) flush() error {
	f.mu.RLock()
	data, err := json.MarshalIndent(fileState{Fingerprints: f.fingerprints, Packages: f.packages}, "", "  ")
	f.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
