// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package lookup_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aokidev/tana/internal/lookup"
)

const googleSearchBody = `{
  "items": [
    {"volumeInfo": {
      "title": "ワンピース 1",
      "authors": ["尾田栄一郎"],
      "publisher": "集英社",
      "publishedDate": "1997-12-24",
      "canonicalVolumeLink": "https://books.google.com/op1",
      "imageLinks": {"thumbnail": "http://books.google.com/op1.jpg"},
      "industryIdentifiers": [
        {"type": "ISBN_10", "identifier": "4088725093"},
        {"type": "ISBN_13", "identifier": "9784088725093"}
      ]
    }},
    {"volumeInfo": {"title": ""}}
  ]
}`

/*
TestGoogleBooks_Search parses candidates and applies the https upgrade.
*/
func TestGoogleBooks_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "/volumes", request.URL.Path)
		query := request.URL.Query()
		assert.Equal(t, "ワンピース", query.Get("q"))
		assert.Equal(t, "ja", query.Get("langRestrict"))
		assert.Equal(t, "books", query.Get("printType"))

		writer.Header().Set("Content-Type", "application/json")
		_, _ = writer.Write([]byte(googleSearchBody))
	}))
	defer server.Close()

	client := lookup.NewGoogleBooks(server.URL, 5*time.Second)

	candidates, err := client.Search(context.Background(), "ワンピース")
	require.NoError(t, err)
	require.Len(t, candidates, 1, "untitled items are skipped")

	candidate := candidates[0]
	assert.Equal(t, "ワンピース 1", candidate.Title)
	assert.Equal(t, "尾田栄一郎", candidate.Author)
	assert.Equal(t, "集英社", candidate.Publisher)
	assert.Equal(t, "9784088725093", candidate.ISBN, "prefers ISBN_13")
	assert.Equal(t, "https://books.google.com/op1.jpg", candidate.CoverURL)
	assert.Equal(t, "google", candidate.Source)
}

/*
TestGoogleBooks_NextRelease checks query shape and date normalization.
*/
func TestGoogleBooks_NextRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		query := request.URL.Query()
		assert.Equal(t, `"キングダム" 71`, query.Get("q"))
		assert.Equal(t, "newest", query.Get("orderBy"))

		_, _ = writer.Write([]byte(`{"items":[{"volumeInfo":{"title":"キングダム 71","publishedDate":"2026-10"}}]}`))
	}))
	defer server.Close()

	client := lookup.NewGoogleBooks(server.URL, 5*time.Second)

	date, found, err := client.NextRelease(context.Background(), "キングダム", 71)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2026-10-01", date)
}

/*
TestGoogleBooks_NextRelease_NoResult verifies absent is reported, not errored.
*/
func TestGoogleBooks_NextRelease_NoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := lookup.NewGoogleBooks(server.URL, 5*time.Second)

	date, found, err := client.NextRelease(context.Background(), "完結作品", 100)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, date)
}

/*
TestGoogleBooks_Errors covers HTTP failures and malformed bodies.
*/
func TestGoogleBooks_Errors(t *testing.T) {
	t.Run("server_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := lookup.NewGoogleBooks(server.URL, 5*time.Second)
		_, _, err := client.NextRelease(context.Background(), "x", 2)
		assert.Error(t, err)
	})

	t.Run("malformed_body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte(`<html>not json</html>`))
		}))
		defer server.Close()

		client := lookup.NewGoogleBooks(server.URL, 5*time.Second)
		_, _, err := client.NextRelease(context.Background(), "x", 2)
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		server.Close() // connection refused from here on

		client := lookup.NewGoogleBooks(server.URL, time.Second)
		_, _, err := client.NextRelease(context.Background(), "x", 2)
		assert.Error(t, err)
	})
}
