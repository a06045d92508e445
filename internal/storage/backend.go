// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/morganforge/pdftutor/internal/util"
)

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is a key/value contract for session persistence. Values are the
// JSON arrays produced by EncodeSessions.
type Backend interface {
	// Load returns the value stored under key, or ErrKeyNotFound.
	Load(key string) ([]byte, error)

	// Save writes the value under key, replacing any previous value.
	Save(key string, data []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys lists all stored keys, sorted.
	Keys() ([]string, error)

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrKeyNotFound is returned when a persistence key doesn't exist.
// Use errors.Is(err, ErrKeyNotFound) to check for this error.
var ErrKeyNotFound = &StorageError{Message: "persistence key not found"}

// StorageError represents a persistence-related error.
// It implements the error interface and can be compared using errors.Is.
type StorageError struct {
	Message string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing storage errors.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// FILE BACKEND
// =============================================================================

// FileBackend stores each key as a JSON file in a base directory.
// Default location: ~/.pdftutor/sessions/
type FileBackend struct {
	BaseDir string
}

// NewFileBackend creates a file backend rooted at the default location.
func NewFileBackend() (*FileBackend, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewFileBackendWithDir(filepath.Join(homeDir, ".pdftutor", "sessions"))
}

// NewFileBackendWithDir creates a file backend rooted at a custom directory.
func NewFileBackendWithDir(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}
	return &FileBackend{BaseDir: baseDir}, nil
}

// Load returns the value stored under key.
func (b *FileBackend) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(b.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save writes the value under key.
// RELIABILITY: atomic write with fsync prevents data loss on crash.
func (b *FileBackend) Save(key string, data []byte) error {
	return util.AtomicWriteFile(b.filePath(key), data, 0644)
}

// Delete removes the key.
func (b *FileBackend) Delete(key string) error {
	if err := os.Remove(b.filePath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Keys lists all stored keys, sorted.
func (b *FileBackend) Keys() ([]string, error) {
	entries, err := os.ReadDir(b.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the file backend.
func (b *FileBackend) Close() error {
	return nil
}

// filePath returns the file path for a persistence key.
func (b *FileBackend) filePath(key string) string {
	return filepath.Join(b.BaseDir, key+".json")
}
