package jsonpit

import (
	"github.com/aretw0/jsonpit/pkg/typed"
)

// TypedPit wraps a pit to provide type-safe access to item properties.
type TypedPit[T any] = typed.Pit[T]

// TypedVersion is one typed version of a named item.
type TypedVersion[T any] = typed.Version[T]

// NewTyped creates a type-safe wrapper around an open pit.
// T is the type of the struct stored in each item's properties.
func NewTyped[T any](p *Pit) *TypedPit[T] {
	return typed.New[T](p)
}

// OpenTyped opens the pit at dir and wraps it.
func OpenTyped[T any](dir string, opts ...Option) (*TypedPit[T], *Pit, error) {
	p, err := Open(dir, opts...)
	if err != nil {
		return nil, nil, err
	}
	return typed.New[T](p), p, nil
}
