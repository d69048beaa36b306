// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package collection

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aokidev/tana/internal/lookup"
	"github.com/aokidev/tana/internal/platform/apperr"
	"github.com/aokidev/tana/internal/platform/validate"
	"github.com/aokidev/tana/pkg/uuidv7"
)

// maxTitleLen bounds user-entered titles; the longest real light-novel
// titles stay well under this.
const maxTitleLen = 200

// Service implements the collection's business rules on top of a [Repository].
//
// # Lookup Concurrency
//
// While a release-date lookup for a record is outstanding, every mutation of
// that record is rejected with CONFLICT. The inflight set tracks those ids.
type Service struct {
	repo   Repository
	finder lookup.Finder
	logger *slog.Logger

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// NewService wires the repository and the release-date finder.
func NewService(repo Repository, finder lookup.Finder, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		finder:   finder,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// # Inputs

// AddInput carries the fields of a new record. Title and Status are
// mandatory; everything else is optional shelf/publication metadata.
type AddInput struct {
	Title           string `json:"title"`
	Status          string `json:"status"`
	Volume          int    `json:"volume"`
	Score           int    `json:"score"`
	Genre           string `json:"genre"`
	Finished        bool   `json:"finished"`
	Unread          bool   `json:"unread"`
	NextReleaseDate string `json:"next_release_date"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	ISBN            string `json:"isbn"`
	CoverURL        string `json:"cover_url"`
	Link            string `json:"link"`
}

// UpdateInput carries a partial edit. Nil fields are left unchanged.
type UpdateInput struct {
	Title           *string `json:"title"`
	Status          *string `json:"status"`
	Volume          *int    `json:"volume"`
	Score           *int    `json:"score"`
	Genre           *string `json:"genre"`
	Finished        *bool   `json:"finished"`
	Unread          *bool   `json:"unread"`
	NextReleaseDate *string `json:"next_release_date"`
	Author          *string `json:"author"`
	Publisher       *string `json:"publisher"`
	ISBN            *string `json:"isbn"`
	CoverURL        *string `json:"cover_url"`
	Link            *string `json:"link"`
}

// LookupResult is the outcome of a release-date lookup trigger.
type LookupResult struct {
	Record Record `json:"record"`
	// Found reports whether the metadata service listed a forthcoming volume.
	Found bool `json:"found"`
}

// # Operations

// Add validates the input and stores a new record.
func (service *Service) Add(ctx context.Context, input AddInput) (*Record, error) {
	if input.Volume == 0 {
		input.Volume = 1
	}

	v := &validate.Validator{}
	err := v.
		Required("title", input.Title).
		MaxLen("title", input.Title, maxTitleLen).
		OneOf("status", input.Status, string(StatusOwned), string(StatusWanted)).
		Range("volume", input.Volume, 1, 9999).
		Range("score", input.Score, 0, 5).
		Date("next_release_date", input.NextReleaseDate).
		Custom("cover_url", !isOptionalHTTPURL(input.CoverURL), "Must be an http(s) URL").
		Custom("link", !isOptionalHTTPURL(input.Link), "Must be an http(s) URL").
		Err()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := Record{
		ID:        uuidv7.New(),
		Title:     input.Title,
		Status:    Status(input.Status),
		Volume:    input.Volume,
		Score:     input.Score,
		Genre:     input.Genre,
		Finished:  input.Finished,
		Unread:    input.Unread,
		Author:    input.Author,
		Publisher: input.Publisher,
		ISBN:      input.ISBN,
		CoverURL:  input.CoverURL,
		Link:      input.Link,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.NextReleaseDate != "" {
		record.NextReleaseDate = &input.NextReleaseDate
	}

	if err := service.repo.Insert(ctx, record); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "record_added",
		slog.String("id", record.ID),
		slog.String("title", record.Title),
		slog.String("status", string(record.Status)),
	)
	return &record, nil
}

// Get returns a single record by id.
func (service *Service) Get(ctx context.Context, id string) (*Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return service.repo.Get(ctx, id)
}

// List returns the records passing the filter, in insertion order.
// The "new" view returns newest addition first instead.
func (service *Service) List(ctx context.Context, filter Filter) ([]Record, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validate.RequiredError("status", "Must be one of: OWNED, WANTED")
	}
	if !filter.View.Valid() {
		return nil, validate.RequiredError("view", "Must be one of: new, unread, favorites")
	}

	records, err := service.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]Record, 0, len(records))
	for _, record := range records {
		if filter.Matches(record) {
			filtered = append(filtered, record)
		}
	}

	if filter.View == ViewNew {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}
	return filtered, nil
}

// Update applies a partial edit to a record.
func (service *Service) Update(ctx context.Context, id string, input UpdateInput) (*Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	if err := service.ensureEditable(id); err != nil {
		return nil, err
	}

	record, err := service.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString := func(target *string, value *string) {
		if value != nil {
			*target = *value
		}
	}

	if input.Title != nil {
		record.Title = *input.Title
	}
	if input.Status != nil {
		record.Status = Status(*input.Status)
	}
	if input.Volume != nil {
		record.Volume = *input.Volume
	}
	if input.Score != nil {
		record.Score = *input.Score
	}
	if input.Finished != nil {
		record.Finished = *input.Finished
	}
	if input.Unread != nil {
		record.Unread = *input.Unread
	}
	if input.NextReleaseDate != nil {
		if *input.NextReleaseDate == "" {
			record.NextReleaseDate = nil
		} else {
			record.NextReleaseDate = input.NextReleaseDate
		}
	}
	applyString(&record.Genre, input.Genre)
	applyString(&record.Author, input.Author)
	applyString(&record.Publisher, input.Publisher)
	applyString(&record.ISBN, input.ISBN)
	applyString(&record.CoverURL, input.CoverURL)
	applyString(&record.Link, input.Link)

	v := &validate.Validator{}
	err = v.
		Required("title", record.Title).
		MaxLen("title", record.Title, maxTitleLen).
		OneOf("status", string(record.Status), string(StatusOwned), string(StatusWanted)).
		Range("volume", record.Volume, 1, 9999).
		Range("score", record.Score, 0, 5).
		Date("next_release_date", derefOrEmpty(record.NextReleaseDate)).
		Custom("cover_url", !isOptionalHTTPURL(record.CoverURL), "Must be an http(s) URL").
		Custom("link", !isOptionalHTTPURL(record.Link), "Must be an http(s) URL").
		Err()
	if err != nil {
		return nil, err
	}

	record.UpdatedAt = time.Now().UTC()
	if err := service.repo.Update(ctx, *record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateStatus changes only the status of a record.
func (service *Service) UpdateStatus(ctx context.Context, id string, status string) (*Record, error) {
	return service.Update(ctx, id, UpdateInput{Status: &status})
}

// Remove deletes a record. A second removal of the same id fails with NOT_FOUND.
func (service *Service) Remove(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if err := service.ensureEditable(id); err != nil {
		return err
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return err
	}

	service.logger.InfoContext(ctx, "record_removed", slog.String("id", id))
	return nil
}

// Lookup fetches the next volume's release date for one record.
//
// # Mutation Rules
//
//   - Success: sets next_release_date and last_checked_at.
//   - No forthcoming volume: sets only last_checked_at.
//   - Provider failure or cancellation: mutates nothing; the error is
//     surfaced to the caller.
func (service *Service) Lookup(ctx context.Context, id string) (*LookupResult, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	// Acquire the guard before reading: a read taken outside it could go
	// stale if an edit slipped in, and the final Update would clobber it.
	if err := service.beginLookup(id); err != nil {
		return nil, err
	}
	defer service.endLookup(id)

	record, err := service.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	nextVolume := record.Volume + 1
	date, found, err := service.finder.NextRelease(ctx, record.Title, nextVolume)
	if err != nil {
		// Callers see a consistent taxonomy even when the finder surfaces a
		// raw transport error. Cancellation stays as-is.
		if apperr.IsAppError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, apperr.LookupFailed(err)
	}

	now := time.Now().UTC()
	record.LastCheckedAt = &now
	if found {
		record.NextReleaseDate = &date
	}
	record.UpdatedAt = now

	// The record itself is never edited concurrently while the lookup is in
	// flight (beginLookup guards it), so this write cannot clobber anything.
	if err := service.repo.Update(ctx, *record); err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "release_date_lookup_finished",
		slog.String("id", record.ID),
		slog.String("title", record.Title),
		slog.Int("next_volume", nextVolume),
		slog.Bool("found", found),
	)
	return &LookupResult{Record: *record, Found: found}, nil
}

// # Lookup Guard

// ErrLookupInProgress rejects edits to a record with an outstanding lookup.
var ErrLookupInProgress = apperr.Conflict("A release-date lookup for this record is in progress")

func (service *Service) beginLookup(id string) error {
	service.inflightMu.Lock()
	defer service.inflightMu.Unlock()

	if _, busy := service.inflight[id]; busy {
		return ErrLookupInProgress
	}
	service.inflight[id] = struct{}{}
	return nil
}

func (service *Service) endLookup(id string) {
	service.inflightMu.Lock()
	defer service.inflightMu.Unlock()
	delete(service.inflight, id)
}

// ensureEditable fails with CONFLICT while a lookup for id is outstanding.
func (service *Service) ensureEditable(id string) error {
	service.inflightMu.Lock()
	defer service.inflightMu.Unlock()

	if _, busy := service.inflight[id]; busy {
		return ErrLookupInProgress
	}
	return nil
}

func derefOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// validateID rejects ids that cannot be record identifiers before any
// storage access.
func validateID(id string) error {
	v := &validate.Validator{}
	return v.UUID("id", id).Err()
}

// isOptionalHTTPURL accepts the empty string or an http(s) URL.
func isOptionalHTTPURL(s string) bool {
	return s == "" || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
