// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aokidev/tana/internal/platform/apperr"
)

// FileRepository persists the collection as a single JSON file.
//
// # Durability Model
//
// The whole record set lives in memory (insertion order preserved) and the
// file is rewritten in full on every mutation — write to a temp file in the
// same directory, then rename, so a crash mid-write never corrupts the
// previous state. No write batching: a mutation is durable when its call
// returns.
//
// # Concurrency
//
// Guarded by a single mutex. The application is single-user, but the HTTP
// server handles requests concurrently, so the store must still be safe.
type FileRepository struct {
	path string

	mu      sync.Mutex
	records []Record
}

// NewFileRepository loads the collection file at path.
//
// A missing file yields an empty collection; a file that exists but does
// not parse is a startup error — silently discarding a user's shelf is
// worse than refusing to start.
func NewFileRepository(path string) (*FileRepository, error) {
	repository := &FileRepository{path: path}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return repository, nil
	}
	if err != nil {
		return nil, fmt.Errorf("collection: read %s: %w", path, err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &repository.records); err != nil {
			return nil, fmt.Errorf("collection: parse %s: %w", path, err)
		}
	}

	return repository, nil
}

// Ping verifies the data directory is still reachable. Used by the
// readiness probe.
func (repository *FileRepository) Ping() error {
	dir := filepath.Dir(repository.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("collection: data directory unavailable: %w", err)
	}
	return nil
}

// List returns a snapshot of every record in insertion order.
func (repository *FileRepository) List(ctx context.Context) ([]Record, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	snapshot := make([]Record, len(repository.records))
	copy(snapshot, repository.records)
	return snapshot, nil
}

// Get returns a copy of the record with the given id.
func (repository *FileRepository) Get(ctx context.Context, id string) (*Record, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	index := repository.indexLocked(id)
	if index < 0 {
		return nil, apperr.NotFound("Record")
	}

	record := repository.records[index]
	return &record, nil
}

// Insert appends a record and rewrites the collection file.
func (repository *FileRepository) Insert(ctx context.Context, record Record) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.indexLocked(record.ID) >= 0 {
		return apperr.Internal(fmt.Errorf("collection: duplicate id %s", record.ID))
	}

	repository.records = append(repository.records, record)
	if err := repository.persistLocked(); err != nil {
		// Roll back the in-memory change so memory and disk stay in sync.
		repository.records = repository.records[:len(repository.records)-1]
		return err
	}
	return nil
}

// Update replaces the stored record with the same id and rewrites the file.
func (repository *FileRepository) Update(ctx context.Context, record Record) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	index := repository.indexLocked(record.ID)
	if index < 0 {
		return apperr.NotFound("Record")
	}

	previous := repository.records[index]
	repository.records[index] = record
	if err := repository.persistLocked(); err != nil {
		repository.records[index] = previous
		return err
	}
	return nil
}

// Delete removes the record with the given id and rewrites the file.
// Deleting an id that does not exist fails — removal is not idempotent.
func (repository *FileRepository) Delete(ctx context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	index := repository.indexLocked(id)
	if index < 0 {
		return apperr.NotFound("Record")
	}

	previous := repository.records
	repository.records = append(repository.records[:index:index], repository.records[index+1:]...)
	if err := repository.persistLocked(); err != nil {
		repository.records = previous
		return err
	}
	return nil
}

// indexLocked returns the position of id, or -1. Caller must hold mu.
func (repository *FileRepository) indexLocked(id string) int {
	for i := range repository.records {
		if repository.records[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked rewrites the whole collection file atomically. Caller must hold mu.
func (repository *FileRepository) persistLocked() error {
	payload, err := json.MarshalIndent(repository.records, "", "  ")
	if err != nil {
		return apperr.Internal(fmt.Errorf("collection: encode: %w", err))
	}

	dir := filepath.Dir(repository.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Internal(fmt.Errorf("collection: create data dir: %w", err))
	}

	temp, err := os.CreateTemp(dir, ".collection-*.json")
	if err != nil {
		return apperr.Internal(fmt.Errorf("collection: create temp file: %w", err))
	}

	if _, err := temp.Write(payload); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return apperr.Internal(fmt.Errorf("collection: write temp file: %w", err))
	}
	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return apperr.Internal(fmt.Errorf("collection: close temp file: %w", err))
	}

	if err := os.Rename(temp.Name(), repository.path); err != nil {
		os.Remove(temp.Name())
		return apperr.Internal(fmt.Errorf("collection: replace %s: %w", repository.path, err))
	}
	return nil
}
