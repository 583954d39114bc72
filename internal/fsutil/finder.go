// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MetaExtension marks side files that describe an asset rather than being one.
const MetaExtension = ".meta"

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}
	return FindFiles(rootPath, func(path string) bool {
		return strings.HasSuffix(path, extension)
	})
}

// FindFilesInPaths collects the files ending with extension from each of
// paths, which may be files or directories. Missing paths are skipped and a
// file reached twice is listed once, at its first position.
func FindFilesInPaths(paths []string, extension string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		found := []string{path}
		if info.IsDir() {
			if found, err = FindFilesByExtension(path, extension); err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) != extension {
			continue
		}
		for _, f := range found {
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				all = append(all, f)
			}
		}
	}
	return all, nil
}

// FindFiles recursively lists the regular files under rootPath accepted by
// keep, in lexical order. A missing rootPath yields no files and no error.
func FindFiles(rootPath string, keep func(path string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (keep == nil || keep(path)) {
			files = append(files, path)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return files, nil
}

// FindAssetFiles lists the files under rootPath, skipping hidden entries and
// meta side files.
func FindAssetFiles(rootPath string) ([]string, error) {
	return FindFiles(rootPath, func(path string) bool {
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			rel = path
		}
		return !IsHidden(rel) && !IsMetaFile(path)
	})
}

// IsHidden reports whether any segment of path starts with a dot.
func IsHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// IsMetaFile reports whether path is a meta side file.
func IsMetaFile(path string) bool {
	return strings.HasSuffix(path, MetaExtension)
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// CopyFile copies src to dst, creating parent directories of dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
