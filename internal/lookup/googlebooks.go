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

// googleVolumesResponse matches the Google Books volumes endpoint.
type googleVolumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			Publisher           string   `json:"publisher"`
			PublishedDate       string   `json:"publishedDate"`
			CanonicalVolumeLink string   `json:"canonicalVolumeLink"`
			ImageLinks          struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// GoogleBooks is a client for the Google Books volumes API.
//
// It requires no credentials. Requests are paced by a client-side token
// bucket so a burst of lookups stays polite to the upstream.
type GoogleBooks struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewGoogleBooks constructs a client against the given base URL
// (e.g. "https://www.googleapis.com/books/v1").
func NewGoogleBooks(baseURL string, timeout time.Duration) *GoogleBooks {
	return &GoogleBooks{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
	}
}

// Search queries the volumes endpoint by free text, restricted to Japanese
// print books, and maps the hits to [Candidate] values.
func (client *GoogleBooks) Search(ctx context.Context, query string) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "10")
	params.Set("orderBy", "relevance")
	params.Set("langRestrict", "ja")
	params.Set("printType", "books")

	var response googleVolumesResponse
	if err := client.get(ctx, params, &response); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(response.Items))
	for _, item := range response.Items {
		info := item.VolumeInfo
		if info.Title == "" {
			continue
		}

		isbn := ""
		for _, identifier := range info.IndustryIdentifiers {
			if identifier.Type == "ISBN_13" {
				isbn = identifier.Identifier
				break
			}
		}

		candidates = append(candidates, Candidate{
			Title:     info.Title,
			Author:    strings.Join(info.Authors, ", "),
			Publisher: info.Publisher,
			ISBN:      isbn,
			CoverURL:  upgradeScheme(info.ImageLinks.Thumbnail),
			Link:      info.CanonicalVolumeLink,
			Source:    "google",
		})
	}

	return candidates, nil
}

// NextRelease searches for `"<title>" <volume>` ordered by newest and
// returns the first hit's published date.
func (client *GoogleBooks) NextRelease(ctx context.Context, title string, volume int) (string, bool, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q %d", title, volume))
	params.Set("orderBy", "newest")
	params.Set("langRestrict", "ja")

	var response googleVolumesResponse
	if err := client.get(ctx, params, &response); err != nil {
		return "", false, err
	}

	if len(response.Items) == 0 {
		return "", false, nil
	}

	date, ok := NormalizeDate(response.Items[0].VolumeInfo.PublishedDate)
	if !ok {
		// A hit without a usable date is treated as "no forthcoming volume",
		// matching the absent-not-error contract.
		return "", false, nil
	}

	return date, true, nil
}

// get issues a single GET request against the volumes endpoint and decodes
// the JSON body into target. One attempt only — no retry policy.
func (client *GoogleBooks) get(ctx context.Context, params url.Values, target interface{}) error {
	if err := client.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := client.baseURL + "/volumes?" + params.Encode()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
		return fmt.Errorf("googlebooks: unexpected status code %d", response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("googlebooks: malformed response: %w", err)
	}
	return nil
}

// upgradeScheme rewrites plain-http thumbnail URLs to https.
// Google Books still serves http:// links for older covers.
func upgradeScheme(link string) string {
	if strings.HasPrefix(link, "http://") {
		return "https://" + strings.TrimPrefix(link, "http://")
	}
	return link
}
