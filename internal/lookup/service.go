// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package lookup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aokidev/tana/internal/platform/apperr"
	"github.com/aokidev/tana/pkg/jptext"
)

// provider is the internal contract both clients satisfy.
type provider interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
	NextRelease(ctx context.Context, title string, volume int) (string, bool, error)
}

// searchProvider is the search-only contract; MADB satisfies only this.
type searchProvider interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// Service fans a lookup out to the configured providers.
//
// Provider order: Rakuten first when an app ID is configured (its salesDate
// is the better source for Japanese releases), Google Books as the
// always-available fallback. MADB, when enabled, joins title searches after
// the bookstore providers but never answers release-date lookups.
type Service struct {
	google  *GoogleBooks
	rakuten *Rakuten
	madb    *MADB
	logger  *slog.Logger
}

// NewService wires the providers. rakuten and madb may be nil when not configured.
func NewService(google *GoogleBooks, rakuten *Rakuten, madb *MADB, logger *slog.Logger) *Service {
	return &Service{
		google:  google,
		rakuten: rakuten,
		madb:    madb,
		logger:  logger,
	}
}

// providers returns the release-date providers in preference order.
func (service *Service) providers() []provider {
	if service.rakuten != nil {
		return []provider{service.rakuten, service.google}
	}
	return []provider{service.google}
}

// searchers returns every provider participating in title search.
func (service *Service) searchers() []searchProvider {
	list := make([]searchProvider, 0, 3)
	for _, p := range service.providers() {
		list = append(list, p)
	}
	if service.madb != nil {
		list = append(list, service.madb)
	}
	return list
}

// NextRelease asks each provider in order for the volume's release date.
//
// # Semantics
//
//   - The first provider that knows the date wins.
//   - "No result" from one provider falls through to the next.
//   - A provider error also falls through — but if every provider failed
//     and none produced a result, the whole lookup fails with
//     apperr.LookupFailed so the caller can surface it.
func (service *Service) NextRelease(ctx context.Context, title string, volume int) (string, bool, error) {
	var lastErr error
	sawAnswer := false

	for _, p := range service.providers() {
		date, found, err := p.NextRelease(ctx, title, volume)
		if err != nil {
			// Cancellation is the caller abandoning the lookup, not an upstream fault.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return "", false, err
			}
			service.logger.WarnContext(ctx, "lookup_provider_failed",
				slog.String("title", title),
				slog.Any("error", err),
			)
			lastErr = err
			continue
		}

		sawAnswer = true
		if found {
			return date, true, nil
		}
	}

	if !sawAnswer && lastErr != nil {
		return "", false, apperr.LookupFailed(lastErr)
	}

	return "", false, nil
}

// Search queries every configured provider and merges the results,
// deduplicating by normalized title so the same work listed by both
// providers appears once.
//
// A provider failure degrades the result set instead of failing the whole
// search — unless no provider answered at all.
func (service *Service) Search(ctx context.Context, query string) ([]Candidate, error) {
	var (
		merged  []Candidate
		seen    = make(map[string]struct{})
		lastErr error
		sawAny  bool
	)

	for _, p := range service.searchers() {
		candidates, err := p.Search(ctx, query)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			service.logger.WarnContext(ctx, "search_provider_failed",
				slog.String("query", query),
				slog.Any("error", err),
			)
			lastErr = err
			continue
		}

		sawAny = true
		for _, candidate := range candidates {
			key := jptext.Key(candidate.Title)
			if _, duplicate := seen[key]; duplicate {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, candidate)
		}
	}

	if !sawAny && lastErr != nil {
		return nil, apperr.LookupFailed(lastErr)
	}

	return merged, nil
}
