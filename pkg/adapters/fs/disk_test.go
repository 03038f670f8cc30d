package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/jsonpit/pkg/adapters/fs"
	"github.com/aretw0/jsonpit/pkg/core"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestDisk_Move(t *testing.T) {
	disk := fs.NewDisk(fs.Config{})

	t.Run("Conflict Without Replace", func(t *testing.T) {
		dir := t.TempDir()
		src, dst := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")
		write(t, src, "new")
		write(t, dst, "old")

		err := disk.Move(dst, src, core.MoveOptions{})
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Equal(t, "old", read(t, dst))
		assert.True(t, disk.Exists(src))
	})

	t.Run("Replace Keeps Backup", func(t *testing.T) {
		dir := t.TempDir()
		src, dst := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")
		write(t, src, "new")
		write(t, dst, "old")

		require.NoError(t, disk.Move(dst, src, core.MoveOptions{Replace: true, KeepBackup: true}))
		assert.Equal(t, "new", read(t, dst))
		assert.Equal(t, "old", read(t, filepath.Join(dir, "b.bak")))
		assert.False(t, disk.Exists(src))
	})

	t.Run("Replace Without Backup Removes Stale Bak", func(t *testing.T) {
		dir := t.TempDir()
		src, dst := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")
		write(t, src, "new")
		write(t, dst, "old")
		write(t, filepath.Join(dir, "b.bak"), "stale")

		require.NoError(t, disk.Move(dst, src, core.MoveOptions{Replace: true}))
		assert.Equal(t, "new", read(t, dst))
		assert.False(t, disk.Exists(filepath.Join(dir, "b.bak")))
	})

	t.Run("Missing Source", func(t *testing.T) {
		dir := t.TempDir()
		err := disk.Move(filepath.Join(dir, "b.json"), filepath.Join(dir, "nope.json"), core.MoveOptions{})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestDisk_RemoveDir(t *testing.T) {
	disk := fs.NewDisk(fs.Config{})

	t.Run("Conflict When Not Empty", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "pit")
		write(t, filepath.Join(dir, "file.txt"), "x")

		err := disk.RemoveDir(dir, core.RemoveDirOptions{})
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.True(t, disk.Exists(dir))
	})

	t.Run("Deletes Tree With Files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "pit")
		write(t, filepath.Join(dir, "file.txt"), "x")
		write(t, filepath.Join(dir, "changes", "1.json"), "{}")

		require.NoError(t, disk.RemoveDir(dir, core.RemoveDirOptions{DeleteFiles: true, Depth: 1}))
		assert.False(t, disk.Exists(dir))
	})

	t.Run("Depth Bound", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "pit")
		write(t, filepath.Join(dir, "a", "b", "c.txt"), "x")

		err := disk.RemoveDir(dir, core.RemoveDirOptions{DeleteFiles: true, Depth: 1})
		assert.ErrorIs(t, err, core.ErrConflict)

		require.NoError(t, disk.RemoveDir(dir, core.RemoveDirOptions{DeleteFiles: true}))
		assert.False(t, disk.Exists(dir))
	})

	t.Run("Empty Subdirectories Without Files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "pit")
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0755))
		require.NoError(t, disk.RemoveDir(dir, core.RemoveDirOptions{}))
		assert.False(t, disk.Exists(dir))
	})

	t.Run("Missing Is Fine", func(t *testing.T) {
		assert.NoError(t, disk.RemoveDir(filepath.Join(t.TempDir(), "nope"), core.RemoveDirOptions{}))
	})
}

func TestDisk_FileOps(t *testing.T) {
	disk := fs.NewDisk(fs.Config{})
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "Pit.json")

	require.NoError(t, disk.WriteFile(path, []byte("v1")))
	data, err := disk.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	cp := filepath.Join(dir, "copy.json")
	require.NoError(t, disk.Copy(cp, path))
	assert.Equal(t, "v1", read(t, cp))

	require.NoError(t, disk.Remove(cp))
	assert.False(t, disk.Exists(cp))
	assert.NoError(t, disk.Remove(cp), "removing a missing file is not an error")
}

func TestDisk_Glob(t *testing.T) {
	disk := fs.NewDisk(fs.Config{})
	dir := t.TempDir()
	write(t, filepath.Join(dir, "b.json"), "{}")
	write(t, filepath.Join(dir, "a.json"), "{}")
	write(t, filepath.Join(dir, "c.yaml"), "")
	write(t, filepath.Join(dir, "changes", "1.json"), "{}")

	matches, err := disk.Glob(dir, "*.json")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, matches)

	matches, err = disk.Glob(dir, "**/*.json")
	require.NoError(t, err)
	assert.Len(t, matches, 3)

	matches, err = disk.Glob(filepath.Join(dir, "missing"), "*")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDisk_Watch(t *testing.T) {
	disk := fs.NewDisk(fs.Config{})
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paths, err := disk.Watch(ctx, dir)
	require.NoError(t, err)

	write(t, filepath.Join(dir, "x.json"), "{}")

	select {
	case p := <-paths:
		assert.Equal(t, "x.json", filepath.Base(p))
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for watch event")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-paths:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
