// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/bibcheck/pkg/types"
)

// openLibraryAPIBase is the Open Library API root. Declared as a var so
// tests can substitute an httptest server.
var openLibraryAPIBase = "https://openlibrary.org"

// searchFields limits the search response to the fields we decode.
const searchFields = "key,title,author_name,first_publish_year,isbn,publisher"

// OpenLibrary queries the Open Library book database. It supports title
// search and ISBN lookup; Open Library has no DOI index.
type OpenLibrary struct {
	client
}

// NewOpenLibrary returns an Open Library source.
func NewOpenLibrary(httpClient *http.Client, cfg types.SourcesConfig) *OpenLibrary {
	return &OpenLibrary{client: newClient(httpClient, cfg)}
}

// Name returns the source identifier.
func (s *OpenLibrary) Name() string { return "openlibrary" }

// LookupDOI always reports no result; Open Library cannot resolve DOIs.
func (s *OpenLibrary) LookupDOI(ctx context.Context, doi string) (*types.Record, error) {
	return nil, nil
}

// SearchTitle queries the search endpoint.
func (s *OpenLibrary) SearchTitle(ctx context.Context, title string) ([]types.Record, error) {
	params := url.Values{
		"q":      {title},
		"limit":  {fmt.Sprintf("%d", s.maxCandidates())},
		"fields": {searchFields},
	}

	resp, err := s.get(ctx, openLibraryAPIBase+"/search.json?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("Open Library title search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var sr openLibrarySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Open Library response: %w", err)
	}

	records := make([]types.Record, 0, len(sr.Docs))
	for _, doc := range sr.Docs {
		records = append(records, docToRecord(doc))
	}
	return records, nil
}

// LookupISBN resolves an ISBN to an edition record. Hyphens and spaces in
// the ISBN are dropped. When the edition references a work, the work is
// fetched to fill a missing title.
func (s *OpenLibrary) LookupISBN(ctx context.Context, isbn string) (*types.Record, error) {
	clean := cleanISBN(isbn)
	if clean == "" {
		return nil, nil
	}

	resp, err := s.get(ctx, openLibraryAPIBase+"/isbn/"+url.PathEscape(clean)+".json")
	if err != nil {
		return nil, fmt.Errorf("Open Library ISBN lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var edition openLibraryEdition
	if err := json.NewDecoder(resp.Body).Decode(&edition); err != nil {
		return nil, fmt.Errorf("parsing Open Library response: %w", err)
	}

	rec := editionToRecord(edition)

	if rec.Title == nil && len(edition.Works) > 0 {
		if title, err := s.workTitle(ctx, edition.Works[0].Key); err == nil && title != "" {
			rec.Title = &title
		}
	}

	return &rec, nil
}

// workTitle fetches a work record ("/works/OL123W") and returns its title.
func (s *OpenLibrary) workTitle(ctx context.Context, workKey string) (string, error) {
	resp, err := s.get(ctx, openLibraryAPIBase+workKey+".json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	var work struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return "", err
	}
	return work.Title, nil
}

func docToRecord(d openLibraryDoc) types.Record {
	rec := types.NewRecord(d.Key, "book")

	if d.Title != "" {
		title := d.Title
		rec.Title = &title
	}
	if d.FirstPublishYear > 0 {
		year := d.FirstPublishYear
		rec.Year = &year
	}
	rec.Authors = append(rec.Authors, d.AuthorName...)
	if len(d.Publisher) > 0 && d.Publisher[0] != "" {
		venue := d.Publisher[0]
		rec.Venue = &venue
	}

	return rec
}

func editionToRecord(e openLibraryEdition) types.Record {
	rec := types.NewRecord(e.Key, "book")

	if e.Title != "" {
		title := e.Title
		rec.Title = &title
	}
	if year, ok := extractYear(e.PublishDate); ok {
		rec.Year = &year
	}
	if len(e.Publishers) > 0 && e.Publishers[0] != "" {
		venue := e.Publishers[0]
		rec.Venue = &venue
	}

	return rec
}

// publishYearRe matches a plausible 4-digit year (1800-2099) inside the
// free-text publish_date field ("1996", "January 1, 1996", ...).
var publishYearRe = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

func extractYear(date string) (int, bool) {
	m := publishYearRe.FindString(date)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}

// cleanISBN keeps only alphanumerics ("X" check digits are valid).
func cleanISBN(isbn string) string {
	var b strings.Builder
	for _, r := range isbn {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Open Library API JSON structures.
type openLibrarySearchResponse struct {
	Docs []openLibraryDoc `json:"docs"`
}

type openLibraryDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	Publisher        []string `json:"publisher"`
}

type openLibraryEdition struct {
	Key         string               `json:"key"`
	Title       string               `json:"title"`
	PublishDate string               `json:"publish_date"`
	Publishers  []string             `json:"publishers"`
	Works       []openLibraryWorkRef `json:"works"`
}

type openLibraryWorkRef struct {
	Key string `json:"key"`
}
