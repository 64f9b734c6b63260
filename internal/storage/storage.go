// Package storage provides the extension-local key/value area that wallet
// state is persisted in. Every backend returns whole values; there are no
// partial updates.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key has never been written
	ErrNotFound = errors.New("key not found")

	// ErrStorageUnavailable matches every failure of the persistence layer itself
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Backend is a flat key/value store
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Locker is implemented by backends that other processes may open at the
// same time. Lock blocks until the caller holds the backend exclusively or
// ctx is done; the returned function releases it.
type Locker interface {
	Lock(ctx context.Context) (unlock func() error, err error)
}

// Kind names a backend implementation
type Kind string

const (
	KindFile   Kind = "file"
	KindBadger Kind = "badger"
	KindMemory Kind = "memory"
)

// Error wraps a backend failure
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes every Error match ErrStorageUnavailable
func (e *Error) Is(target error) bool {
	return target == ErrStorageUnavailable
}

// IsUnavailable checks if err comes from the persistence layer
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}

// Open creates a backend of the given kind rooted at path
func Open(kind Kind, path string) (Backend, error) {
	switch kind {
	case KindFile:
		return NewFile(path)
	case KindBadger:
		return NewBadger(path)
	case KindMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}
