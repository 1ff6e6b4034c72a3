package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	DefaultFileName = ".dexswap-state.json"
)

// FileBackend keeps every key in a single JSON document on disk
type FileBackend struct {
	filePath string
	mu       sync.RWMutex
	values   map[string]json.RawMessage
}

// NewFileBackend opens (or prepares to create) the state file
func NewFileBackend(filePath string) (*FileBackend, error) {
	if filePath == "" {
		// Default to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(home, DefaultFileName)
	}

	b := &FileBackend{
		filePath: filePath,
		values:   make(map[string]json.RawMessage),
	}

	// Load existing state if file exists
	if err := b.load(); err != nil {
		// If file doesn't exist, that's okay - we'll create it on first save
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load state: %w", err)
		}
	}

	return b, nil
}

func (b *FileBackend) load() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(b.filePath)
	if err != nil {
		return err
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if values != nil {
		b.values = values
	}
	return nil
}

// saveLocked writes the document; callers hold the write lock
func (b *FileBackend) saveLocked() error {
	data, err := json.MarshalIndent(b.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(b.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to temporary file first, then rename for atomic write
	tempFile := b.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := os.Rename(tempFile, b.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %s is not valid JSON", key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.values[key] = append(json.RawMessage(nil), value...)
	return b.saveLocked()
}

func (b *FileBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.values[key]; !ok {
		return nil
	}
	delete(b.values, key)
	return b.saveLocked()
}

func (b *FileBackend) Close() error {
	return nil
}

// FilePath returns the state file path
func (b *FileBackend) FilePath() string {
	return b.filePath
}
