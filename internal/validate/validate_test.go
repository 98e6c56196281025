// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/bibcheck/internal/sources"
	"github.com/pdiddy/bibcheck/pkg/types"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

// stubSource serves canned lookup results.
type stubSource struct {
	name        string
	doiRecord   *types.Record
	doiErr      error
	results     []types.Record
	searchErr   error
	doiCalls    int
	searchCalls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) LookupDOI(_ context.Context, _ string) (*types.Record, error) {
	s.doiCalls++
	return s.doiRecord, s.doiErr
}

func (s *stubSource) SearchTitle(_ context.Context, _ string) ([]types.Record, error) {
	s.searchCalls++
	return s.results, s.searchErr
}

func exactRecord() types.Record {
	return types.Record{
		Key:       "W1",
		EntryType: "article",
		Title:     strp("Deep Learning"),
		Authors:   []string{"Yann LeCun"},
		Year:      intp(2015),
		DOI:       strp("10.1038/nature14539"),
	}
}

func localRecord() types.Record {
	rec := exactRecord()
	rec.Key = "lecun2015"
	return rec
}

func TestValidateRecordOK(t *testing.T) {
	remote := exactRecord()
	src := &stubSource{name: "openalex", doiRecord: &remote}
	v := &Validator{Sources: []sources.Source{src}}

	local := localRecord()
	result := v.ValidateRecord(context.Background(), &local)

	if result.Status != StatusOK {
		t.Errorf("status = %q, want ok", result.Status)
	}
	if len(result.Sources) != 1 {
		t.Fatalf("got %d source results, want 1", len(result.Sources))
	}
	sr := result.Sources[0]
	if sr.Match == nil || sr.Match.Score != 1.0 {
		t.Errorf("match = %+v, want score 1.0", sr.Match)
	}
	if len(sr.Discrepancies) != 0 {
		t.Errorf("discrepancies = %+v, want none", sr.Discrepancies)
	}
	if src.doiCalls != 1 {
		t.Errorf("doi calls = %d, want 1", src.doiCalls)
	}
	if src.searchCalls != 0 {
		t.Errorf("search calls = %d, want 0 when DOI resolves", src.searchCalls)
	}
}

func TestValidateRecordTitleFallback(t *testing.T) {
	remote := exactRecord()
	src := &stubSource{name: "openalex", results: []types.Record{remote}}
	v := &Validator{Sources: []sources.Source{src}}

	local := localRecord()
	result := v.ValidateRecord(context.Background(), &local)

	if src.doiCalls != 1 {
		t.Errorf("doi calls = %d, want 1", src.doiCalls)
	}
	if src.searchCalls != 1 {
		t.Errorf("search calls = %d, want 1 after unknown DOI", src.searchCalls)
	}
	if result.Status != StatusOK {
		t.Errorf("status = %q, want ok", result.Status)
	}
}

func TestValidateRecordNoDOISkipsLookup(t *testing.T) {
	remote := exactRecord()
	remote.DOI = nil
	src := &stubSource{name: "openalex", results: []types.Record{remote}}
	v := &Validator{Sources: []sources.Source{src}}

	local := localRecord()
	local.DOI = nil
	v.ValidateRecord(context.Background(), &local)

	if src.doiCalls != 0 {
		t.Errorf("doi calls = %d, want 0 without a local DOI", src.doiCalls)
	}
	if src.searchCalls != 1 {
		t.Errorf("search calls = %d, want 1", src.searchCalls)
	}
}

func TestValidateRecordNotFound(t *testing.T) {
	src := &stubSource{name: "openalex"}
	v := &Validator{Sources: []sources.Source{src}}

	local := localRecord()
	result := v.ValidateRecord(context.Background(), &local)

	if result.Status != StatusNotFound {
		t.Errorf("status = %q, want not-found", result.Status)
	}
	if result.Sources[0].Match != nil {
		t.Errorf("match = %+v, want nil", result.Sources[0].Match)
	}
}

func TestValidateRecordWarning(t *testing.T) {
	remote := exactRecord()
	remote.Authors = []string{"Yann LeCun", "Yoshua Bengio"}
	src := &stubSource{name: "openalex", doiRecord: &remote}
	v := &Validator{Sources: []sources.Source{src}}

	local := localRecord()
	result := v.ValidateRecord(context.Background(), &local)

	if result.Status != StatusWarning {
		t.Errorf("status = %q, want warning", result.Status)
	}
}

func TestValidateRecordError(t *testing.T) {
	remote := exactRecord()
	remote.Year = intp(2014)
	src := &stubSource{name: "openalex", doiRecord: &remote}
	v := &Validator{Sources: []sources.Source{src}}

	local := localRecord()
	result := v.ValidateRecord(context.Background(), &local)

	if result.Status != StatusError {
		t.Errorf("status = %q, want error", result.Status)
	}
}

func TestValidateRecordLookupFailure(t *testing.T) {
	failing := &stubSource{name: "openalex", doiErr: errors.New("connection refused")}
	remote := exactRecord()
	working := &stubSource{name: "openreview", doiRecord: &remote}
	v := &Validator{Sources: []sources.Source{failing, working}}

	local := localRecord()
	result := v.ValidateRecord(context.Background(), &local)

	if len(result.Sources) != 2 {
		t.Fatalf("got %d source results, want 2", len(result.Sources))
	}
	if result.Sources[0].Error != "connection refused" {
		t.Errorf("error = %q", result.Sources[0].Error)
	}
	if result.Sources[0].Match != nil {
		t.Errorf("failed source should not match: %+v", result.Sources[0].Match)
	}
	// The working source still decides the status.
	if result.Status != StatusOK {
		t.Errorf("status = %q, want ok", result.Status)
	}
}

func TestValidateRecordWorstSeverityWins(t *testing.T) {
	clean := exactRecord()
	okSrc := &stubSource{name: "openalex", doiRecord: &clean}

	wrongYear := exactRecord()
	wrongYear.DOI = nil
	wrongYear.Year = intp(2014)
	badSrc := &stubSource{name: "openreview", doiRecord: &wrongYear}

	v := &Validator{Sources: []sources.Source{okSrc, badSrc}}
	local := localRecord()
	result := v.ValidateRecord(context.Background(), &local)

	if result.Status != StatusError {
		t.Errorf("status = %q, want error from the worst source", result.Status)
	}
}

func TestValidateAll(t *testing.T) {
	remote := exactRecord()
	src := &stubSource{name: "openalex", doiRecord: &remote}
	v := &Validator{Sources: []sources.Source{src}}

	found := localRecord()
	missing := types.Record{Key: "ghost", Title: strp("A Completely Different Paper")}

	var buf strings.Builder
	results, summary, err := v.ValidateAll(context.Background(), []types.Record{found, missing}, &buf)
	if err != nil {
		t.Fatalf("ValidateAll() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if summary.OK != 1 || summary.NotFound != 1 || summary.Total() != 2 {
		t.Errorf("summary = %+v", summary)
	}

	progress := buf.String()
	if !strings.Contains(progress, "lecun2015") || !strings.Contains(progress, "ghost") {
		t.Errorf("progress output missing entries:\n%s", progress)
	}
	if !strings.Contains(progress, "not-found") {
		t.Errorf("progress output missing status:\n%s", progress)
	}
}

func TestValidateAllContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &stubSource{name: "openalex"}
	v := &Validator{Sources: []sources.Source{src}}

	var buf strings.Builder
	_, _, err := v.ValidateAll(ctx, []types.Record{localRecord()}, &buf)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestValidateAllReportsLookupFailures(t *testing.T) {
	src := &stubSource{name: "openalex", doiErr: errors.New("boom")}
	v := &Validator{Sources: []sources.Source{src}}

	var buf strings.Builder
	_, summary, err := v.ValidateAll(context.Background(), []types.Record{localRecord()}, &buf)
	if err != nil {
		t.Fatalf("ValidateAll() error = %v", err)
	}
	if summary.NotFound != 1 {
		t.Errorf("summary = %+v, want 1 not-found", summary)
	}
	if !strings.Contains(buf.String(), "openalex lookup failed: boom") {
		t.Errorf("progress output missing failure warning:\n%s", buf.String())
	}
}

func TestStatusFor(t *testing.T) {
	match := &types.MatchResult{Score: 1.0}
	tests := []struct {
		name    string
		results []SourceResult
		want    EntryStatus
	}{
		{"no sources", nil, StatusNotFound},
		{"no matches", []SourceResult{{Source: "a"}}, StatusNotFound},
		{"clean match", []SourceResult{{Source: "a", Match: match}}, StatusOK},
		{
			"info only stays ok",
			[]SourceResult{{Source: "a", Match: match, Discrepancies: []types.Discrepancy{
				{Severity: types.SeverityInfo},
			}}},
			StatusOK,
		},
		{
			"warning",
			[]SourceResult{{Source: "a", Match: match, Discrepancies: []types.Discrepancy{
				{Severity: types.SeverityWarning},
			}}},
			StatusWarning,
		},
		{
			"error beats warning",
			[]SourceResult{
				{Source: "a", Match: match, Discrepancies: []types.Discrepancy{{Severity: types.SeverityWarning}}},
				{Source: "b", Match: match, Discrepancies: []types.Discrepancy{{Severity: types.SeverityError}}},
			},
			StatusError,
		},
		{
			"failed source ignored when another matches",
			[]SourceResult{
				{Source: "a", Error: "boom"},
				{Source: "b", Match: match},
			},
			StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.results); got != tt.want {
				t.Errorf("statusFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
