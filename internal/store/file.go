package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileBackend stores the snapshot as a single JSON object keyed by item
// identifier.
type FileBackend struct {
	path string
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend returns a backend for the JSON file at path.
// The file does not have to exist yet.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Location() string { return b.path }

func (b *FileBackend) Load(_ context.Context) (map[string]RecordData, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state snapshot: %w", err)
	}

	var records map[string]RecordData
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &CorruptError{Path: b.path, Err: err}
	}
	if records == nil {
		// A literal "null" is as unusable as a truncated file.
		return nil, &CorruptError{Path: b.path, Err: errors.New("snapshot is null")}
	}
	return records, nil
}

// Save writes the snapshot to a temporary file in the same directory and
// renames it over the previous one, so a crash never leaves a truncated file.
func (b *FileBackend) Save(_ context.Context, records map[string]RecordData) error {
	if records == nil {
		records = map[string]RecordData{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return &WriteError{Path: b.path, Err: fmt.Errorf("encode: %w", err)}
	}

	if err := EnsureDir(b.path); err != nil {
		return &WriteError{Path: b.path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+"-*")
	if err != nil {
		return &WriteError{Path: b.path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: b.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: b.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: b.path, Err: err}
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return &WriteError{Path: b.path, Err: err}
	}
	return nil
}

func (b *FileBackend) Reset(_ context.Context) error {
	if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove state snapshot: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
