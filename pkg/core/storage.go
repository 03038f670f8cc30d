package core

import "context"

// Storage is the file capability a pit persists through. Paths are
// slash-separated or native; implementations normalize them.
type Storage interface {
	Exists(path string) bool
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces path atomically.
	WriteFile(path string, data []byte) error
	Copy(dst, src string) error
	Move(dst, src string, opts MoveOptions) error
	Remove(path string) error
	MkdirAll(path string) error
	RemoveDir(path string, opts RemoveDirOptions) error
	// Glob returns the files in dir matching a doublestar pattern, sorted.
	Glob(dir, pattern string) ([]string, error)
}

// MoveOptions control what happens to an existing destination.
type MoveOptions struct {
	// Replace allows overwriting dst. Without it an existing dst is ErrConflict.
	Replace bool
	// KeepBackup renames an existing dst to its .bak sibling before the move.
	// When false any stale .bak sibling is removed.
	KeepBackup bool
}

// RemoveDirOptions control recursive directory removal.
type RemoveDirOptions struct {
	DeleteFiles bool
	// Depth bounds how many levels of subdirectories are descended into.
	// Zero means unbounded.
	Depth int
}

// Watchable is implemented by storages that can report changes to a directory.
type Watchable interface {
	Watch(ctx context.Context, dir string) (<-chan string, error)
}
