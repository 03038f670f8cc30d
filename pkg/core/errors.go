package core

import "errors"

// Common errors.
var (
	// ErrReadOnly is returned by any mutating operation on a pit opened read-only.
	ErrReadOnly = errors.New("pit is in read-only mode")

	// ErrConflict is returned when a move would replace an existing destination
	// without permission, or when a non-empty directory is removed without
	// deleting its files.
	ErrConflict = errors.New("conflict")

	// ErrNotFound is returned when a pit location is required to exist and does not.
	ErrNotFound = errors.New("not found")

	// ErrCorrupt marks persisted state that cannot be decoded.
	ErrCorrupt = errors.New("corrupt persisted state")

	ErrEmptyName        = errors.New("item name must not be empty")
	ErrNotObject        = errors.New("value is not an object")
	ErrUnsupportedValue = errors.New("unsupported value")
	ErrNilItem          = errors.New("item is nil")

	// ErrClosed is returned by operations on a closed pit.
	ErrClosed = errors.New("pit is closed")
)
