// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate drives the per-entry validation flow: look up candidate
// records in each configured source, pick the best match, and compare it
// field by field against the local entry.
package validate

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/bibcheck/internal/match"
	"github.com/pdiddy/bibcheck/internal/sources"
	"github.com/pdiddy/bibcheck/pkg/types"
)

// EntryStatus summarizes one entry's validation outcome. The set is
// closed; consumers switch exhaustively over it.
type EntryStatus string

const (
	StatusOK       EntryStatus = "ok"
	StatusWarning  EntryStatus = "warning"
	StatusError    EntryStatus = "error"
	StatusNotFound EntryStatus = "not-found"
)

// SourceResult is one source's contribution for one entry: the best match
// it produced (nil when nothing cleared the gates) and the discrepancies
// against that match. A lookup failure is recorded as Error and never
// conflated with "no match".
type SourceResult struct {
	Source        string              `json:"source" yaml:"source"`
	Match         *types.MatchResult  `json:"match,omitempty" yaml:"match,omitempty"`
	Discrepancies []types.Discrepancy `json:"discrepancies,omitempty" yaml:"discrepancies,omitempty"`
	Error         string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// EntryResult is the validation outcome for one local record.
type EntryResult struct {
	Key     string         `json:"key" yaml:"key"`
	Record  types.Record   `json:"record" yaml:"record"`
	Status  EntryStatus    `json:"status" yaml:"status"`
	Sources []SourceResult `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// RunSummary counts entries per status across a run.
type RunSummary struct {
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	NotFound int `json:"not_found" yaml:"not_found"`
}

// Total returns the number of entries validated.
func (s RunSummary) Total() int {
	return s.OK + s.Warnings + s.Errors + s.NotFound
}

// Validator validates records against a fixed set of sources. Sources are
// queried one at a time, in order, with an optional delay between them.
type Validator struct {
	Sources []sources.Source

	// Delay is the pause between consecutive source lookups.
	Delay time.Duration
}

// ValidateRecord looks rec up in every source and returns the combined
// outcome. Per source, a local DOI is resolved directly first; when the
// record has no DOI, or the DOI is unknown to the source, the title is
// searched instead.
func (v *Validator) ValidateRecord(ctx context.Context, rec *types.Record) EntryResult {
	result := EntryResult{Key: rec.Key, Record: *rec}

	for i, src := range v.Sources {
		if i > 0 && v.Delay > 0 {
			time.Sleep(v.Delay)
		}

		sr := v.lookupOne(ctx, src, rec)
		result.Sources = append(result.Sources, sr)
	}

	result.Status = statusFor(result.Sources)
	return result
}

// lookupOne queries a single source for candidates and scores them.
func (v *Validator) lookupOne(ctx context.Context, src sources.Source, rec *types.Record) SourceResult {
	sr := SourceResult{Source: src.Name()}

	var candidates []types.Record

	if rec.DOI != nil {
		found, err := src.LookupDOI(ctx, *rec.DOI)
		if err != nil {
			sr.Error = err.Error()
			return sr
		}
		if found != nil {
			candidates = []types.Record{*found}
		}
	}

	if len(candidates) == 0 && rec.Title != nil {
		found, err := src.SearchTitle(ctx, *rec.Title)
		if err != nil {
			sr.Error = err.Error()
			return sr
		}
		candidates = found
	}

	sr.Match = match.FindBestMatch(rec, candidates)
	if sr.Match != nil {
		sr.Discrepancies = match.Compare(rec, sr.Match.Candidate)
	}
	return sr
}

// ValidateAll validates every record, writing one progress line per entry
// to w. It stops early when ctx is cancelled.
func (v *Validator) ValidateAll(ctx context.Context, records []types.Record, w io.Writer) ([]EntryResult, RunSummary, error) {
	var results []EntryResult
	var summary RunSummary

	for i := range records {
		select {
		case <-ctx.Done():
			return results, summary, ctx.Err()
		default:
		}

		r := v.ValidateRecord(ctx, &records[i])
		results = append(results, r)

		switch r.Status {
		case StatusOK:
			summary.OK++
		case StatusWarning:
			summary.Warnings++
		case StatusError:
			summary.Errors++
		case StatusNotFound:
			summary.NotFound++
		}
		fmt.Fprintf(w, "%-10s %s\n", r.Status, r.Key)

		for _, sr := range r.Sources {
			if sr.Error != "" {
				fmt.Fprintf(w, "           warning: %s lookup failed: %s\n", sr.Source, sr.Error)
			}
		}
	}

	return results, summary, nil
}

// statusFor derives the entry status: not-found when no source matched,
// otherwise the highest discrepancy severity across matched sources.
func statusFor(results []SourceResult) EntryStatus {
	matched := false
	worst := types.SeverityInfo
	hasDiscrepancy := false

	for _, sr := range results {
		if sr.Match == nil {
			continue
		}
		matched = true
		for _, d := range sr.Discrepancies {
			hasDiscrepancy = true
			if d.Severity > worst {
				worst = d.Severity
			}
		}
	}

	switch {
	case !matched:
		return StatusNotFound
	case !hasDiscrepancy:
		return StatusOK
	case worst >= types.SeverityError:
		return StatusError
	case worst >= types.SeverityWarning:
		return StatusWarning
	default:
		return StatusOK
	}
}
