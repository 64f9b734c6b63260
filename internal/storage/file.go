package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	storageFileName = "storage.json"
	lockFileName    = "storage.lock"

	lockRetryDelay = 10 * time.Millisecond
)

var errInvalidJSON = errors.New("value is not valid JSON")

// File keeps all keys in a single JSON document on disk.
// Writes go to a temporary file first and are renamed into place.
// Lock takes an advisory lock on storage.lock next to the document, so
// processes sharing the directory can serialize read-modify-write cycles.
type File struct {
	path string
	mu   sync.Mutex

	lock   *flock.Flock
	lockMu sync.Mutex // one holder per handle; flock itself is per process
}

// NewFile creates a file backend inside dir
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, &Error{Op: "open", Key: dir, Err: err}
	}
	return &File{
		path: filepath.Join(dir, storageFileName),
		lock: flock.New(filepath.Join(dir, lockFileName)),
	}, nil
}

// Lock implements Locker
func (f *File) Lock(ctx context.Context) (func() error, error) {
	f.lockMu.Lock()

	ok, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err == nil && !ok {
		err = ctx.Err()
	}
	if err != nil {
		f.lockMu.Unlock()
		return nil, &Error{Op: "lock", Key: f.lock.Path(), Err: err}
	}

	return func() error {
		defer f.lockMu.Unlock()
		if err := f.lock.Unlock(); err != nil {
			return &Error{Op: "unlock", Key: f.lock.Path(), Err: err}
		}
		return nil
	}, nil
}

// Path returns the location of the storage document
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return nil, &Error{Op: "get", Key: key, Err: err}
	}

	v, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

// Set stores value under key. value must be a JSON document.
func (f *File) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(value) {
		return &Error{Op: "set", Key: key, Err: errInvalidJSON}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	doc[key] = json.RawMessage(value)

	if err := f.store(doc); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (f *File) Close() error {
	return nil
}

func (f *File) load() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Skip UTF-8 BOM if present
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		data = data[3:]
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storage file: %w", err)
	}
	return doc, nil
}

func (f *File) store(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}
