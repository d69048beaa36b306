// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

/*
Package lookup queries external book-metadata services.

It answers two questions for the collection:

  - "When is the next volume of this title released?" ([Finder])
  - "Which published works match this query?" ([Searcher], used by the
    add-record form)

Architecture:

  - Providers: Google Books (no credentials) and Rakuten Books (app ID).
  - Service: picks the provider order and merges/deduplicates results.
  - Both interfaces are satisfied by [*Service] and stubbed in tests, so
    no test ever touches the real network.

A missing result is not an error: [Finder.NextRelease] reports found=false.
Transport failures and malformed bodies surface as apperr.LookupFailed.
*/
package lookup

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Candidate is one search hit from a metadata provider, shaped for the
// add-record form.
type Candidate struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	ISBN      string `json:"isbn"`
	CoverURL  string `json:"cover_url"`
	Link      string `json:"link"`
	// Source names the provider that produced this candidate ("google", "rakuten").
	Source string `json:"source"`
}

// Finder resolves the release date of a title's given volume.
type Finder interface {
	// NextRelease returns the release date (YYYY-MM-DD) of the given volume,
	// or found=false when the provider lists no such volume. An error means
	// the provider was unreachable or returned a malformed response.
	NextRelease(ctx context.Context, title string, volume int) (date string, found bool, err error)
}

// Searcher performs a free-text title search across the configured providers.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// # Date Normalization

// digitRuns extracts consecutive digit groups from provider date strings.
var digitRuns = regexp.MustCompile(`\d+`)

// NormalizeDate converts a provider-specific date string into YYYY-MM-DD.
//
// Providers are sloppy: Google Books returns "2024", "2024-09", or
// "2024-09-04"; Rakuten returns "2024年09月04日" or "2024年09月頃".
// The first 4-digit run is the year; the following runs (if any) are month
// and day. Missing components default to 01 so the result is always a
// syntactically valid calendar date.
func NormalizeDate(raw string) (string, bool) {
	runs := digitRuns.FindAllString(raw, 3)

	year := 0
	month, day := 1, 1

	for i, run := range runs {
		n, err := strconv.Atoi(run)
		if err != nil {
			return "", false
		}
		switch {
		case i == 0:
			if len(run) != 4 {
				return "", false
			}
			year = n
		case i == 1:
			month = n
		case i == 2:
			day = n
		}
	}

	if year == 0 {
		return "", false
	}

	// Reject impossible dates (month 13, February 30) via round-trip check.
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
