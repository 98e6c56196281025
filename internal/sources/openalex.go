// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/bibcheck/pkg/types"
)

// openAlexAPIBase is the OpenAlex API root. Declared as a var so tests can
// substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org"

// OpenAlex queries the OpenAlex Works API. It supports both DOI lookup and
// title search and is the only source with direct DOI resolution.
type OpenAlex struct {
	client
}

// NewOpenAlex returns an OpenAlex source. A nil httpClient gets a default
// client with the configured timeout.
func NewOpenAlex(httpClient *http.Client, cfg types.SourcesConfig) *OpenAlex {
	return &OpenAlex{client: newClient(httpClient, cfg)}
}

// Name returns the source identifier.
func (s *OpenAlex) Name() string { return "openalex" }

// LookupDOI resolves a DOI through the /works/doi: endpoint. A 404 means
// the DOI is unknown and yields (nil, nil).
func (s *OpenAlex) LookupDOI(ctx context.Context, doi string) (*types.Record, error) {
	reqURL := openAlexAPIBase + "/works/doi:" + url.PathEscape(doi)
	if s.cfg.OpenAlexMailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(s.cfg.OpenAlexMailto)
	}

	resp, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex DOI lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var work openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	rec := workToRecord(work)
	return &rec, nil
}

// SearchTitle queries the Works search endpoint and returns up to
// MaxCandidates results.
func (s *OpenAlex) SearchTitle(ctx context.Context, title string) ([]types.Record, error) {
	params := url.Values{
		"search":   {title},
		"per_page": {fmt.Sprintf("%d", s.maxCandidates())},
	}
	if s.cfg.OpenAlexMailto != "" {
		params.Set("mailto", s.cfg.OpenAlexMailto)
	}

	resp, err := s.get(ctx, openAlexAPIBase+"/works?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("OpenAlex title search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var sr openAlexSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	records := make([]types.Record, 0, len(sr.Results))
	for _, work := range sr.Results {
		records = append(records, workToRecord(work))
	}
	return records, nil
}

// workToRecord maps an OpenAlex work onto the normalized record shape.
// OpenAlex returns DOIs as full https://doi.org/ URLs; the prefix is
// stripped so comparisons see bare DOIs.
func workToRecord(w openAlexWork) types.Record {
	rec := types.NewRecord(w.ID, "article")

	if w.Title != "" {
		title := w.Title
		rec.Title = &title
	}
	if w.PublicationYear > 0 {
		year := w.PublicationYear
		rec.Year = &year
	}
	if name := w.PrimaryLocation.Source.DisplayName; name != "" {
		venue := name
		rec.Venue = &venue
	}
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			rec.Authors = append(rec.Authors, a.Author.DisplayName)
		}
	}
	if w.DOI != "" {
		doi := strings.TrimPrefix(w.DOI, "https://doi.org/")
		rec.DOI = &doi
	}

	return rec
}

// OpenAlex API JSON structures.
type openAlexSearchResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	Source openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}
