package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(name), 0o644))
	}
}

func TestFindAssetFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.png", "a.png.meta", ".DS_Store", "sub/b.txt", ".git/config", "sub/.hidden/c.png")

	files, err := FindAssetFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.png"),
		filepath.Join(root, "sub", "b.txt"),
	}, files)
}

func TestFindFiles_MissingRoot(t *testing.T) {
	files, err := FindFiles(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "main.hcl", "nested/more.hcl", "readme.md")

	files, err := FindFilesByExtension(root, ".hcl")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(".env"))
	assert.True(t, IsHidden("Assets/.cache/x.png"))
	assert.False(t, IsHidden("Assets/x.png"))
	assert.False(t, IsHidden("./Assets/x.png"))
}

func TestCopyFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src.txt")

	dst := filepath.Join(root, "out", "deep", "dst.txt")
	require.NoError(t, CopyFile(filepath.Join(root, "src.txt"), dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "src.txt", string(data))
	assert.True(t, DirExists(filepath.Dir(dst)))
}

func TestFindFilesInPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "graphs/main.hcl", "graphs/nested/more.hcl", "graphs/readme.md", "extra.hcl", "notes.txt")

	files, err := FindFilesInPaths([]string{
		filepath.Join(root, "extra.hcl"),
		filepath.Join(root, "graphs"),
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "missing"),
		filepath.Join(root, "graphs", "main.hcl"),
	}, ".hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "extra.hcl"),
		filepath.Join(root, "graphs", "main.hcl"),
		filepath.Join(root, "graphs", "nested", "more.hcl"),
	}, files)
}
