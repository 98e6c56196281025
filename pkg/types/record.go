// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// DefaultEntryType is used when a BibTeX entry carries no recognizable type.
const DefaultEntryType = "misc"

// Record is the normalized representation of a bibliographic entry. Local
// records come from the BibTeX parser; remote records are decoded from a
// source's API response. Optional fields are pointers so that an absent
// field stays distinguishable from an empty one (an empty Authors slice
// means "no author field at all").
type Record struct {
	// Key is the citation key for local records, or a source-assigned
	// identifier (OpenAlex work ID, OpenReview note ID) for remote ones.
	Key string `json:"key" yaml:"key"`

	// EntryType is the BibTeX classification ("article", "inproceedings", ...).
	EntryType string `json:"entry_type" yaml:"entry_type"`

	// Title preserves the original casing and punctuation.
	Title *string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists full names in document order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or conference name.
	Venue *string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// DOI preserves the original casing; comparisons are case-insensitive.
	DOI *string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// ArxivID conforms to one of the two accepted arXiv ID shapes
	// ("hep-th/9901001" or "2301.12345v2").
	ArxivID *string `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`

	URL *string `json:"url,omitempty" yaml:"url,omitempty"`
}

// NewRecord returns a Record with the identity fields set. An empty
// entryType falls back to DefaultEntryType.
func NewRecord(key, entryType string) Record {
	if entryType == "" {
		entryType = DefaultEntryType
	}
	return Record{Key: key, EntryType: entryType}
}

// Severity classifies a discrepancy. The values are totally ordered:
// info < warning < error.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler so severities render as
// their names in JSON reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := parseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML renders the severity name; yaml/v3 does not consult
// encoding.TextMarshaler.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Severity) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func parseSeverity(raw string) (Severity, error) {
	switch raw {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", raw)
	}
}

// DiscrepancyField identifies which Record field a discrepancy concerns.
// The set is closed; consumers switch exhaustively over it.
type DiscrepancyField string

const (
	FieldTitle   DiscrepancyField = "title"
	FieldAuthors DiscrepancyField = "authors"
	FieldYear    DiscrepancyField = "year"
	FieldVenue   DiscrepancyField = "venue"
	FieldDOI     DiscrepancyField = "doi"
)

// Discrepancy is a detected difference between a local record and its
// matched remote record on one field. Immutable once produced.
type Discrepancy struct {
	Field       DiscrepancyField `json:"field" yaml:"field"`
	Severity    Severity         `json:"severity" yaml:"severity"`
	LocalValue  string           `json:"local_value" yaml:"local_value"`
	RemoteValue string           `json:"remote_value" yaml:"remote_value"`
	Message     string           `json:"message" yaml:"message"`
}

// MatchResult pairs the best-scoring candidate with its score. Candidate
// points into the caller's candidate slice and is valid only as long as
// that slice is.
type MatchResult struct {
	Candidate *Record `json:"candidate" yaml:"candidate"`

	// Score is in [0,1]; 1.0 means a definitive match (equal DOIs).
	Score float64 `json:"score" yaml:"score"`
}
