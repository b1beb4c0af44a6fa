package storage

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postarchive/pkg/errors"
)

func TestEnsureDirIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2023", "05", "post")

	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDirConcurrentOverlappingPaths(t *testing.T) {
	root := t.TempDir()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// every goroutine shares the year folder, half share the post folder
			errs <- EnsureDir(filepath.Join(root, "2023", fmt.Sprintf("post-%d", i%2), "images"))
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestEnsureDirOverFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := EnsureDir(file)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDirectoryCreate))

	err = EnsureDir(filepath.Join(file, "child"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrDirectoryCreate))
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.md")

	require.NoError(t, WriteFile(path, []byte("first")))
	require.NoError(t, WriteFile(path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestWriteFileMissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "a.md"), []byte("x"))
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrFileWrite))
}

func TestCreateFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0644))

	f, err := CreateFile(path)
	require.NoError(t, err)
	_, err = f.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestManager(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	manager, err := NewManager(root)
	require.NoError(t, err)
	assert.Equal(t, root, manager.Root())
	assert.Equal(t, 0, manager.WrittenCount())

	postDir := filepath.Join(root, "hello")
	require.NoError(t, manager.EnsureDir(postDir))
	require.NoError(t, manager.EnsureDir(postDir))

	path := filepath.Join(postDir, "index.md")
	require.NoError(t, manager.WriteFile(path, []byte("doc")))
	require.NoError(t, manager.WriteFile(path, []byte("doc again")))
	assert.Equal(t, 1, manager.WrittenCount())

	f, err := manager.CreateFile(filepath.Join(postDir, "a.png"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, 2, manager.WrittenCount())
}
