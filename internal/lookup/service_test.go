// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package lookup_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aokidev/tana/internal/lookup"
	"github.com/aokidev/tana/internal/platform/apperr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(body))
	})
}

func failingHandler() http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusInternalServerError)
	})
}

/*
TestService_NextRelease_PrefersRakuten: when Rakuten is configured and
answers, Google is never consulted.
*/
func TestService_NextRelease_PrefersRakuten(t *testing.T) {
	googleHits := 0
	googleServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		googleHits++
		_, _ = writer.Write([]byte(`{"items":[{"volumeInfo":{"title":"x","publishedDate":"2026-09-01"}}]}`))
	}))
	defer googleServer.Close()

	rakutenServer := httptest.NewServer(jsonHandler(
		`{"Items":[{"Item":{"title":"x","salesDate":"2026年10月02日"}}]}`))
	defer rakutenServer.Close()

	service := lookup.NewService(
		lookup.NewGoogleBooks(googleServer.URL, 5*time.Second),
		lookup.NewRakuten(rakutenServer.URL, "app-id", 5*time.Second),
		nil,
		discardLogger(),
	)

	date, found, err := service.NextRelease(context.Background(), "x", 16)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2026-10-02", date)
	assert.Zero(t, googleHits, "google must not be consulted when rakuten answers")
}

/*
TestService_NextRelease_FallsBackToGoogle: a Rakuten failure degrades to
the Google answer instead of failing the lookup.
*/
func TestService_NextRelease_FallsBackToGoogle(t *testing.T) {
	googleServer := httptest.NewServer(jsonHandler(
		`{"items":[{"volumeInfo":{"title":"x","publishedDate":"2026-09-01"}}]}`))
	defer googleServer.Close()

	rakutenServer := httptest.NewServer(failingHandler())
	defer rakutenServer.Close()

	service := lookup.NewService(
		lookup.NewGoogleBooks(googleServer.URL, 5*time.Second),
		lookup.NewRakuten(rakutenServer.URL, "app-id", 5*time.Second),
		nil,
		discardLogger(),
	)

	date, found, err := service.NextRelease(context.Background(), "x", 16)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2026-09-01", date)
}

/*
TestService_NextRelease_AllProvidersFail: nothing answered, so the lookup
fails with LOOKUP_FAILED.
*/
func TestService_NextRelease_AllProvidersFail(t *testing.T) {
	googleServer := httptest.NewServer(failingHandler())
	defer googleServer.Close()
	rakutenServer := httptest.NewServer(failingHandler())
	defer rakutenServer.Close()

	service := lookup.NewService(
		lookup.NewGoogleBooks(googleServer.URL, 5*time.Second),
		lookup.NewRakuten(rakutenServer.URL, "app-id", 5*time.Second),
		nil,
		discardLogger(),
	)

	_, found, err := service.NextRelease(context.Background(), "x", 16)
	require.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, "LOOKUP_FAILED", apperr.As(err).Code)
}

/*
TestService_NextRelease_NoResult: every provider answered but none knew a
date. That is a clean "not found", not an error.
*/
func TestService_NextRelease_NoResult(t *testing.T) {
	googleServer := httptest.NewServer(jsonHandler(`{}`))
	defer googleServer.Close()
	rakutenServer := httptest.NewServer(jsonHandler(`{"Items":[]}`))
	defer rakutenServer.Close()

	service := lookup.NewService(
		lookup.NewGoogleBooks(googleServer.URL, 5*time.Second),
		lookup.NewRakuten(rakutenServer.URL, "app-id", 5*time.Second),
		nil,
		discardLogger(),
	)

	date, found, err := service.NextRelease(context.Background(), "完結作品", 100)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, date)
}

/*
TestService_Search_MergesAndDeduplicates: candidates from both providers
merge, and width/case variants of the same title collapse to one entry
with the preferred provider winning.
*/
func TestService_Search_MergesAndDeduplicates(t *testing.T) {
	googleServer := httptest.NewServer(jsonHandler(`{"items":[
		{"volumeInfo":{"title":"ワンピース"}},
		{"volumeInfo":{"title":"NARUTO"}}
	]}`))
	defer googleServer.Close()

	// Fullwidth variant of the same title as Google's first hit.
	rakutenServer := httptest.NewServer(jsonHandler(`{"Items":[
		{"Item":{"title":"ﾜﾝﾋﾟｰｽ","author":"尾田栄一郎"}}
	]}`))
	defer rakutenServer.Close()

	service := lookup.NewService(
		lookup.NewGoogleBooks(googleServer.URL, 5*time.Second),
		lookup.NewRakuten(rakutenServer.URL, "app-id", 5*time.Second),
		nil,
		discardLogger(),
	)

	candidates, err := service.Search(context.Background(), "ワンピース")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// Rakuten runs first, so the deduplicated entry carries its metadata.
	assert.Equal(t, "rakuten", candidates[0].Source)
	assert.Equal(t, "尾田栄一郎", candidates[0].Author)
	assert.Equal(t, "NARUTO", candidates[1].Title)
}

/*
TestService_Search_IncludesMADB: archive hits join the result set after the
bookstore candidates, and duplicate titles still collapse. MADB must never
be consulted for a release-date lookup.
*/
func TestService_Search_IncludesMADB(t *testing.T) {
	googleServer := httptest.NewServer(jsonHandler(
		`{"items":[{"volumeInfo":{"title":"AKIRA","publishedDate":"2026-09-01"}}]}`))
	defer googleServer.Close()

	madbHits := 0
	madbServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		madbHits++
		_, _ = writer.Write([]byte(`{"results":{"bindings":[
			{"name":{"value":"AKIRA"},"author":{"value":"大友克洋"}},
			{"name":{"value":"童夢"},"author":{"value":"大友克洋"}}
		]}}`))
	}))
	defer madbServer.Close()

	service := lookup.NewService(
		lookup.NewGoogleBooks(googleServer.URL, 5*time.Second),
		nil,
		lookup.NewMADB(madbServer.URL, 5*time.Second),
		discardLogger(),
	)

	candidates, err := service.Search(context.Background(), "大友")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "google", candidates[0].Source, "bookstore hit wins the duplicate title")
	assert.Equal(t, "童夢", candidates[1].Title)
	assert.Equal(t, "madb", candidates[1].Source)

	_, _, err = service.NextRelease(context.Background(), "AKIRA", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, madbHits, "release-date lookups must not touch the archive")
}

/*
TestService_Search_GoogleOnly: no Rakuten configured, Google alone serves.
*/
func TestService_Search_GoogleOnly(t *testing.T) {
	googleServer := httptest.NewServer(jsonHandler(
		`{"items":[{"volumeInfo":{"title":"ワンピース"}}]}`))
	defer googleServer.Close()

	service := lookup.NewService(
		lookup.NewGoogleBooks(googleServer.URL, 5*time.Second),
		nil,
		nil,
		discardLogger(),
	)

	candidates, err := service.Search(context.Background(), "ワンピース")
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "google", candidates[0].Source)
}

/*
TestService_Search_AllProvidersFail surfaces LOOKUP_FAILED.
*/
func TestService_Search_AllProvidersFail(t *testing.T) {
	googleServer := httptest.NewServer(failingHandler())
	defer googleServer.Close()

	service := lookup.NewService(
		lookup.NewGoogleBooks(googleServer.URL, 5*time.Second),
		nil,
		nil,
		discardLogger(),
	)

	_, err := service.Search(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "LOOKUP_FAILED", apperr.As(err).Code)
}
