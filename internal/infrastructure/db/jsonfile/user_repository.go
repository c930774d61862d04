// Package jsonfile keeps the registrant collection in a single JSON document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/stiarchives/portal/internal/core/domain"
)

const DefaultPath = "data/users.json"

type UserRepository struct {
	path string
	mu   sync.Mutex
}

func NewUserRepository(path string) *UserRepository {
	if path == "" {
		path = DefaultPath
	}
	return &UserRepository{path: path}
}

// LoadAll returns the stored collection. A missing or empty file is an empty collection.
func (r *UserRepository) LoadAll(_ context.Context) ([]domain.UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.UserRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStorage, r.path, err)
	}
	if len(data) == 0 {
		return []domain.UserRecord{}, nil
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrStorage, r.path, err)
	}
	return records, nil
}

// SaveAll replaces the file through a temp file and rename so readers never
// see a partial document.
func (r *UserRepository) SaveAll(_ context.Context, records []domain.UserRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if records == nil {
		records = []domain.UserRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode users: %w", domain.ErrStorage, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %w", domain.ErrStorage, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", domain.ErrStorage, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp file: %w", domain.ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync temp file: %w", domain.ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", domain.ErrStorage, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", domain.ErrStorage, r.path, err)
	}
	return nil
}

// Ping reports whether the directory holding the collection is usable.
func (r *UserRepository) Ping(_ context.Context) error {
	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
