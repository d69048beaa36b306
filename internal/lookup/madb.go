// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// madbLink is the landing page used for every candidate; MADB has no stable
// per-work public URL scheme.
const madbLink = "https://mediaarts-db.artmuseums.go.jp/"

// madbQueryTemplate selects comic books whose title contains the query,
// newest first. Optional clauses keep works with missing author/publisher.
const madbQueryTemplate = `PREFIX schema: <https://schema.org/>
SELECT DISTINCT ?name ?author ?publisher ?date
WHERE {
  ?s a schema:Book ;
     schema:name ?name .
  FILTER(CONTAINS(?name, "%s"))
  OPTIONAL { ?s schema:author/schema:name ?author . }
  OPTIONAL { ?s schema:publisher/schema:name ?publisher . }
  OPTIONAL { ?s schema:datePublished ?date . }
}
ORDER BY DESC(?date)
LIMIT 10`

// sparqlValue is one cell of a SPARQL JSON results binding.
type sparqlValue struct {
	Value string `json:"value"`
}

// madbResultsResponse matches the application/sparql-results+json shape.
type madbResultsResponse struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

// MADB is a client for the Media Arts Database SPARQL endpoint, the
// Japanese national archive of published manga.
//
// It serves title search only — its datePublished covers past prints, not
// announced releases, so it never participates in release-date lookups.
// No cover images either: the archive's artwork API is separate and
// rights-restricted.
type MADB struct {
	httpClient *http.Client
	endpoint   string
	limiter    *rate.Limiter
}

// NewMADB constructs a client against the given SPARQL endpoint URL.
func NewMADB(endpoint string, timeout time.Duration) *MADB {
	return &MADB{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Search runs the title query and maps the bindings to [Candidate] values.
func (client *MADB) Search(ctx context.Context, query string) ([]Candidate, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	sparql := fmt.Sprintf(madbQueryTemplate, escapeSPARQLLiteral(query))

	form := url.Values{}
	form.Set("query", sparql)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("Accept", "application/sparql-results+json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("madb: unexpected status code %d", response.StatusCode)
	}

	var results madbResultsResponse
	if err := json.NewDecoder(response.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("madb: malformed response: %w", err)
	}

	candidates := make([]Candidate, 0, len(results.Results.Bindings))
	for _, binding := range results.Results.Bindings {
		title := binding["name"].Value
		if title == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:     title,
			Author:    binding["author"].Value,
			Publisher: binding["publisher"].Value,
			Link:      madbLink,
			Source:    "madb",
		})
	}

	return candidates, nil
}

// escapeSPARQLLiteral escapes a user string for embedding in a quoted
// SPARQL literal so a title like `魔法"少女` cannot break out of the filter.
func escapeSPARQLLiteral(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
