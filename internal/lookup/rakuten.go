// Copyright (c) 2026 Tana. All rights reserved.
// Author: aoki.dev.jp@gmail.com

package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// rakutenSearchResponse matches the Rakuten Books BooksBook/Search endpoint.
type rakutenSearchResponse struct {
	Items []struct {
		Item struct {
			Title         string `json:"title"`
			Author        string `json:"author"`
			PublisherName string `json:"publisherName"`
			ISBN          string `json:"isbn"`
			LargeImageURL string `json:"largeImageUrl"`
			ItemURL       string `json:"itemUrl"`
			SalesDate     string `json:"salesDate"`
		} `json:"Item"`
	} `json:"Items"`
}

// comicGenreID restricts Rakuten Books searches to the comics genre.
const comicGenreID = "001001"

// Rakuten is a client for the Rakuten Books search API.
//
// Unlike Google Books it needs a per-application ID, so it is only wired
// when RAKUTEN_APP_ID is configured. Its salesDate field is the most
// reliable source for Japanese release dates.
type Rakuten struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	limiter    *rate.Limiter
}

// NewRakuten constructs a client against the given endpoint URL.
func NewRakuten(baseURL, appID string, timeout time.Duration) *Rakuten {
	return &Rakuten{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		appID:      appID,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Search queries the comics genre by title and maps the hits to [Candidate] values.
func (client *Rakuten) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("applicationId", client.appID)
	params.Set("title", query)
	params.Set("booksGenreId", comicGenreID)
	params.Set("hits", "10")
	params.Set("sort", "standard")

	var response rakutenSearchResponse
	if err := client.get(ctx, params, &response); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(response.Items))
	for _, wrapper := range response.Items {
		item := wrapper.Item
		if item.Title == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Title:     item.Title,
			Author:    item.Author,
			Publisher: item.PublisherName,
			ISBN:      item.ISBN,
			CoverURL:  item.LargeImageURL,
			Link:      item.ItemURL,
			Source:    "rakuten",
		})
	}

	return candidates, nil
}

// NextRelease searches for "<title> <volume>" sorted by newest release and
// returns the first hit's sales date.
func (client *Rakuten) NextRelease(ctx context.Context, title string, volume int) (string, bool, error) {
	params := url.Values{}
	params.Set("applicationId", client.appID)
	params.Set("title", fmt.Sprintf("%s %d", title, volume))
	params.Set("booksGenreId", comicGenreID)
	params.Set("hits", "1")
	params.Set("sort", "-releaseDate")

	var response rakutenSearchResponse
	if err := client.get(ctx, params, &response); err != nil {
		return "", false, err
	}

	if len(response.Items) == 0 {
		return "", false, nil
	}

	date, ok := NormalizeDate(response.Items[0].Item.SalesDate)
	if !ok {
		return "", false, nil
	}

	return date, true, nil
}

// get issues a single GET request and decodes the JSON body into target.
func (client *Rakuten) get(ctx context.Context, params url.Values, target interface{}) error {
	if err := client.limiter.Wait(ctx); err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("rakuten: unexpected status code %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("rakuten: malformed response: %w", err)
	}
	return nil
}
