package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_ResetWipesPreviousRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "violations_output")
	ws := NewWorkspace(dir)

	require.NoError(t, ws.Reset())
	require.NoError(t, ws.Save("frame_a.jpg", []byte("a")))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	require.NoError(t, ws.Reset())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWorkspace_ResetCreatesMissingParents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	ws := NewWorkspace(dir)

	require.NoError(t, ws.Reset())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWorkspace_ResetFailure(t *testing.T) {
	// A regular file where a parent directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	ws := NewWorkspace(filepath.Join(blocker, "out"))
	assert.Error(t, ws.Reset())
}

func TestWorkspace_ListSortedAndLimited(t *testing.T) {
	ws := NewWorkspace(t.TempDir())
	for _, name := range []string{"frame_3.jpg", "frame_1.jpg", "frame_2.jpg"} {
		require.NoError(t, ws.Save(name, []byte(name)))
	}
	require.NoError(t, os.Mkdir(filepath.Join(ws.Dir(), "subdir"), 0755))

	all, err := ws.List(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"frame_1.jpg", "frame_2.jpg", "frame_3.jpg"}, all)

	two, err := ws.List(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"frame_1.jpg", "frame_2.jpg"}, two)

	count, err := ws.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestWorkspace_ListMissingDirectory(t *testing.T) {
	ws := NewWorkspace(filepath.Join(t.TempDir(), "never-created"))
	names, err := ws.List(30)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestWorkspace_Path(t *testing.T) {
	ws := NewWorkspace("/data/out")

	p, err := ws.Path("frame_20240101_000000_000001.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/out", "frame_20240101_000000_000001.jpg"), p)

	for _, bad := range []string{"", "..", "../secret", "a/b.jpg", `a\b.jpg`, "x..jpg"} {
		_, err := ws.Path(bad)
		assert.True(t, errors.Is(err, ErrInvalidFrameName), bad)
	}
}
