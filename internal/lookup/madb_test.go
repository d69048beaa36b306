// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package lookup_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aokidev/tana/internal/lookup"
)

const madbResultsBody = `{
  "results": {
    "bindings": [
      {
        "name": {"value": "風の谷のナウシカ"},
        "author": {"value": "宮崎駿"},
        "publisher": {"value": "徳間書店"},
        "date": {"value": "1983"}
      },
      {"name": {"value": ""}},
      {"name": {"value": "シュナの旅"}}
    ]
  }
}`

/*
TestMADB_Search verifies the SPARQL request shape and candidate mapping.
*/
func TestMADB_Search(t *testing.T) {
	var receivedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, http.MethodPost, request.Method)
		assert.Equal(t, "application/sparql-results+json", request.Header.Get("Accept"))

		require.NoError(t, request.ParseForm())
		receivedQuery = request.PostFormValue("query")

		writer.Header().Set("Content-Type", "application/sparql-results+json")
		_, _ = writer.Write([]byte(madbResultsBody))
	}))
	defer server.Close()

	client := lookup.NewMADB(server.URL, 5*time.Second)

	candidates, err := client.Search(context.Background(), "ナウシカ")
	require.NoError(t, err)

	assert.Contains(t, receivedQuery, `CONTAINS(?name, "ナウシカ")`)
	assert.Contains(t, receivedQuery, "schema:Book")

	require.Len(t, candidates, 2, "nameless bindings are skipped")
	first := candidates[0]
	assert.Equal(t, "風の谷のナウシカ", first.Title)
	assert.Equal(t, "宮崎駿", first.Author)
	assert.Equal(t, "徳間書店", first.Publisher)
	assert.Equal(t, "https://mediaarts-db.artmuseums.go.jp/", first.Link)
	assert.Equal(t, "madb", first.Source)
	assert.Empty(t, first.CoverURL, "the archive exposes no cover images")

	// Missing optional bindings map to empty fields.
	assert.Equal(t, "シュナの旅", candidates[1].Title)
	assert.Empty(t, candidates[1].Author)
}

/*
TestMADB_Search_EscapesQuotes verifies a quoted title cannot break out of
the SPARQL string literal.
*/
func TestMADB_Search_EscapesQuotes(t *testing.T) {
	var receivedQuery string
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.NoError(t, request.ParseForm())
		receivedQuery = request.PostFormValue("query")
		_, _ = writer.Write([]byte(`{"results":{"bindings":[]}}`))
	}))
	defer server.Close()

	client := lookup.NewMADB(server.URL, 5*time.Second)

	_, err := client.Search(context.Background(), `魔法"少女`)
	require.NoError(t, err)
	assert.Contains(t, receivedQuery, `CONTAINS(?name, "魔法\"少女")`)
	assert.False(t, strings.Contains(receivedQuery, `"魔法"少女"`))
}

/*
TestMADB_Search_Errors covers HTTP failures and malformed bodies.
*/
func TestMADB_Search_Errors(t *testing.T) {
	t.Run("server_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := lookup.NewMADB(server.URL, 5*time.Second)
		_, err := client.Search(context.Background(), "x")
		assert.Error(t, err)
	})

	t.Run("malformed_body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = io.WriteString(writer, "<sparql>xml not json</sparql>")
		}))
		defer server.Close()

		client := lookup.NewMADB(server.URL, 5*time.Second)
		_, err := client.Search(context.Background(), "x")
		assert.Error(t, err)
	})
}
