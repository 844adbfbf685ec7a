// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileMirror keeps one JSON array per collection under a directory.
//
// Writes go to a temporary file in the same directory and are renamed over the
// target, so readers never observe a partially written collection.
type FileMirror struct {
	dir string
	mu  sync.Mutex
}

// NewFileMirror creates dir if needed and returns a mirror rooted there.
func NewFileMirror(dir string) (*FileMirror, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage_file_mirror_failed: %w", err)
	}
	return &FileMirror{dir: dir}, nil
}

func (f *FileMirror) path(resource string) string {
	return filepath.Join(f.dir, filepath.Base(resource)+".json")
}

// Load implements [Mirror]. A missing or blank file is an empty collection.
func (f *FileMirror) Load(_ context.Context, resource string) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(resource))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage_file_read_failed: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, fmt.Errorf("storage_file_decode_failed: %s: %w", resource, err)
	}
	return rows, nil
}

// Save implements [Mirror].
func (f *FileMirror) Save(_ context.Context, resource string, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("storage_file_encode_failed: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, filepath.Base(resource)+".*.tmp")
	if err != nil {
		return fmt.Errorf("storage_file_write_failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("storage_file_write_failed: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("storage_file_write_failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage_file_write_failed: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path(resource)); err != nil {
		return fmt.Errorf("storage_file_rename_failed: %w", err)
	}
	return nil
}
