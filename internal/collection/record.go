// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

/*
Package collection is the stateful heart of Tana: it owns every tracked
manga record, persists them to the collection file, and exposes the
HTTP surface for managing them.

Layout follows the standard domain split:

  - record.go: domain types.
  - store.go: the Repository contract.
  - store_file.go: the file-backed Repository (whole-file rewrite per mutation).
  - service.go: validation, business rules, lookup orchestration.
  - http.go: chi handler set.
*/
package collection

import (
	"strings"
	"time"

	"github.com/aokidev/tana/pkg/jptext"
)

// Status classifies a record as owned or wish-listed.
type Status string

const (
	StatusOwned  Status = "OWNED"
	StatusWanted Status = "WANTED"
)

// Valid reports whether the status is one of the defined values.
func (s Status) Valid() bool {
	return s == StatusOwned || s == StatusWanted
}

// Record is one tracked manga entry.
//
// ID is assigned at creation and immutable. NextReleaseDate and
// LastCheckedAt are only populated by the release-date lookup (or an
// explicit edit); both stay absent until the first successful attempt.
type Record struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status Status `json:"status"`

	// NextReleaseDate is a calendar date in YYYY-MM-DD form.
	NextReleaseDate *string    `json:"next_release_date,omitempty"`
	LastCheckedAt   *time.Time `json:"last_checked_at,omitempty"`

	// Shelf metadata.
	Volume   int    `json:"volume"`
	Score    int    `json:"score"`
	Genre    string `json:"genre,omitempty"`
	Finished bool   `json:"finished"`
	Unread   bool   `json:"unread"`

	// Publication metadata, filled from a search candidate when the record
	// is registered through the assisted form.
	Author    string `json:"author,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	ISBN      string `json:"isbn,omitempty"`
	CoverURL  string `json:"cover_url,omitempty"`
	Link      string `json:"link,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # List Filtering

// View names a predefined list slice, mirroring the UI's sidebar views.
type View string

const (
	// ViewAll returns every record.
	ViewAll View = ""
	// ViewNew returns every record, newest addition first.
	ViewNew View = "new"
	// ViewUnread returns wanted or unread records.
	ViewUnread View = "unread"
	// ViewFavorites returns finished records with a score of 4 or more.
	ViewFavorites View = "favorites"
)

// Valid reports whether the view is one of the defined values.
func (v View) Valid() bool {
	switch v {
	case ViewAll, ViewNew, ViewUnread, ViewFavorites:
		return true
	}
	return false
}

// Filter narrows a List call. Zero value means "everything, insertion order".
type Filter struct {
	// Status restricts to one status when non-empty.
	Status Status
	// View applies one of the predefined views.
	View View
	// Genre matches records whose genre field contains the value.
	Genre string
}

// Matches reports whether the record passes every set criterion.
func (f Filter) Matches(record Record) bool {
	if f.Status != "" && record.Status != f.Status {
		return false
	}

	switch f.View {
	case ViewUnread:
		if record.Status != StatusWanted && !record.Unread {
			return false
		}
	case ViewFavorites:
		if !record.Finished || record.Score < 4 {
			return false
		}
	case ViewNew:
		// Matches everything; the view only changes the ordering.
	}

	if f.Genre != "" && !containsGenre(record.Genre, f.Genre) {
		return false
	}

	return true
}

// containsGenre checks one genre against a record's free-text genre list.
// The field is user-entered, comma-separated text; both ASCII and Japanese
// commas occur in practice.
func containsGenre(field, genre string) bool {
	want := jptext.Key(genre)
	field = strings.ReplaceAll(field, "、", ",")
	for _, part := range strings.Split(field, ",") {
		if jptext.Key(part) == want {
			return true
		}
	}
	return false
}
