// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/bibcheck/pkg/types"
)

// openReviewAPIBase is the OpenReview API root. Declared as a var so tests
// can substitute an httptest server.
var openReviewAPIBase = "https://api.openreview.net"

// OpenReview queries the OpenReview notes API. It only supports title
// search; OpenReview has no DOI index.
type OpenReview struct {
	client
}

// NewOpenReview returns an OpenReview source.
func NewOpenReview(httpClient *http.Client, cfg types.SourcesConfig) *OpenReview {
	return &OpenReview{client: newClient(httpClient, cfg)}
}

// Name returns the source identifier.
func (s *OpenReview) Name() string { return "openreview" }

// LookupDOI always reports no result; OpenReview cannot resolve DOIs.
func (s *OpenReview) LookupDOI(ctx context.Context, doi string) (*types.Record, error) {
	return nil, nil
}

// SearchTitle queries the notes search endpoint.
func (s *OpenReview) SearchTitle(ctx context.Context, title string) ([]types.Record, error) {
	params := url.Values{
		"query":   {title},
		"limit":   {fmt.Sprintf("%d", s.maxCandidates())},
		"content": {"all"},
	}

	resp, err := s.get(ctx, openReviewAPIBase+"/notes/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("OpenReview title search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var nr openReviewNotesResponse
	if err := json.NewDecoder(resp.Body).Decode(&nr); err != nil {
		return nil, fmt.Errorf("parsing OpenReview response: %w", err)
	}

	records := make([]types.Record, 0, len(nr.Notes))
	for _, note := range nr.Notes {
		records = append(records, noteToRecord(note))
	}
	return records, nil
}

// noteToRecord maps an OpenReview note onto the normalized record shape.
// The publication year is derived from the note creation date
// (milliseconds since epoch) with flat 365-day years; OpenReview exposes
// no dedicated year field.
func noteToRecord(n openReviewNote) types.Record {
	rec := types.NewRecord(n.ID, "inproceedings")

	if n.Content.Title.Value != "" {
		title := n.Content.Title.Value
		rec.Title = &title
	}
	rec.Authors = append(rec.Authors, n.Content.Authors.Values...)

	if n.Content.Venue.Value != "" {
		venue := n.Content.Venue.Value
		rec.Venue = &venue
	} else if n.Venue != "" {
		venue := n.Venue
		rec.Venue = &venue
	}

	if n.CreationDate > 0 {
		seconds := n.CreationDate / 1000
		year := 1970 + int(seconds/(365*24*60*60))
		rec.Year = &year
	}

	return rec
}

// OpenReview API JSON structures. The v2 API wraps content values as
// {"value": ...} objects while v1 returns them bare; flexString and
// flexStrings accept both.
type openReviewNotesResponse struct {
	Notes []openReviewNote `json:"notes"`
}

type openReviewNote struct {
	ID           string            `json:"id"`
	Content      openReviewContent `json:"content"`
	CreationDate int64             `json:"cdate"`
	Venue        string            `json:"venue"`
}

type openReviewContent struct {
	Title   flexString  `json:"title"`
	Authors flexStrings `json:"authors"`
	Venue   flexString  `json:"venue"`
}

// flexString decodes either a JSON string or {"value": "..."}.
type flexString struct {
	Value string
}

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.Value = s
		return nil
	}
	var wrapped struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("unexpected string field shape: %w", err)
	}
	f.Value = wrapped.Value
	return nil
}

// flexStrings decodes either a JSON string array or {"value": [...]}.
type flexStrings struct {
	Values []string
}

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var v []string
	if err := json.Unmarshal(data, &v); err == nil {
		f.Values = v
		return nil
	}
	var wrapped struct {
		Value []string `json:"value"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("unexpected string list field shape: %w", err)
	}
	f.Values = wrapped.Value
	return nil
}
