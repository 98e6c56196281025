// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"fmt"
	"strings"

	"github.com/pdiddy/bibcheck/pkg/types"
)

// Matching thresholds.
const (
	// titleMatchThreshold is the hard gate below which two titles are
	// never considered the same work.
	titleMatchThreshold = 0.85

	// titleWarningThreshold marks titles that match but differ slightly.
	titleWarningThreshold = 0.90

	// authorMatchThreshold is the minimum full-name similarity for an
	// author match.
	authorMatchThreshold = 0.80

	// lastNameThreshold is the minimum last-token similarity for an
	// author match.
	lastNameThreshold = 0.90

	// maxYearDifference is the widest year gap for a valid match.
	maxYearDifference = 2

	// minAuthorOverlap rejects a candidate outright when both sides have
	// authors but the overlap falls below it.
	minAuthorOverlap = 0.3

	// venueInfoThreshold marks venue names as differing.
	venueInfoThreshold = 0.70
)

// Score blend weights: title dominates, authors adjust.
const (
	titleWeight  = 0.7
	authorWeight = 0.3
)

// MatchScore returns a combined match score for candidate against target
// in [0,1]. Equal DOIs (ASCII case-insensitive) are definitive and force
// 1.0 regardless of every other field. Otherwise the title similarity and
// year gates apply, then the author-overlap gate, then the weighted blend.
func MatchScore(target, candidate *types.Record) float64 {
	if target.DOI != nil && candidate.DOI != nil &&
		strings.EqualFold(*target.DOI, *candidate.DOI) {
		return 1.0
	}

	titleSim := TitleSimilarity(target, candidate)
	if titleSim < titleMatchThreshold {
		return 0.0
	}

	if !YearsCompatible(target, candidate) {
		return 0.0
	}

	authorSim := AuthorOverlap(target, candidate)
	if len(target.Authors) > 0 && len(candidate.Authors) > 0 && authorSim < minAuthorOverlap {
		return 0.0
	}

	return titleSim*titleWeight + authorSim*authorWeight
}

// FindBestMatch scores every candidate against target and returns the
// best positive result, or nil when no candidate scores above zero. Ties
// keep the first-seen candidate.
func FindBestMatch(target *types.Record, candidates []types.Record) *types.MatchResult {
	var best *types.MatchResult
	for i := range candidates {
		score := MatchScore(target, &candidates[i])
		if score <= 0.0 {
			continue
		}
		if best == nil || score > best.Score {
			best = &types.MatchResult{Candidate: &candidates[i], Score: score}
		}
	}
	return best
}

// Compare evaluates local against remote field by field and returns the
// discrepancies found. Each check fires independently; any subset may
// appear, always in a fixed order (title, year, DOI, author count, author
// spelling, venue).
func Compare(local, remote *types.Record) []types.Discrepancy {
	var out []types.Discrepancy

	if local.Title != nil && remote.Title != nil {
		sim := JaroWinkler(Normalize(*local.Title), Normalize(*remote.Title))
		if sim < titleMatchThreshold {
			out = append(out, types.Discrepancy{
				Field:       types.FieldTitle,
				Severity:    types.SeverityError,
				LocalValue:  *local.Title,
				RemoteValue: *remote.Title,
				Message:     fmt.Sprintf("Title significantly different (similarity: %.0f%%)", sim*100),
			})
		} else if sim < titleWarningThreshold {
			out = append(out, types.Discrepancy{
				Field:       types.FieldTitle,
				Severity:    types.SeverityWarning,
				LocalValue:  *local.Title,
				RemoteValue: *remote.Title,
				Message:     fmt.Sprintf("Title slightly different (similarity: %.0f%%)", sim*100),
			})
		}
	}

	if local.Year != nil && remote.Year != nil && *local.Year != *remote.Year {
		out = append(out, types.Discrepancy{
			Field:       types.FieldYear,
			Severity:    types.SeverityError,
			LocalValue:  fmt.Sprintf("%d", *local.Year),
			RemoteValue: fmt.Sprintf("%d", *remote.Year),
			Message:     fmt.Sprintf("Year mismatch: %d vs %d", *local.Year, *remote.Year),
		})
	}

	if local.DOI == nil && remote.DOI != nil {
		out = append(out, types.Discrepancy{
			Field:       types.FieldDOI,
			Severity:    types.SeverityWarning,
			LocalValue:  "(none)",
			RemoteValue: *remote.DOI,
			Message:     "Missing DOI in local entry",
		})
	}

	if len(local.Authors) > 0 && len(remote.Authors) > 0 {
		if len(local.Authors) != len(remote.Authors) {
			out = append(out, types.Discrepancy{
				Field:       types.FieldAuthors,
				Severity:    types.SeverityWarning,
				LocalValue:  fmt.Sprintf("%d authors", len(local.Authors)),
				RemoteValue: fmt.Sprintf("%d authors", len(remote.Authors)),
				Message: fmt.Sprintf("Author count differs: %d (local) vs %d (remote)",
					len(local.Authors), len(remote.Authors)),
			})
		}
		out = append(out, compareAuthorSpelling(local.Authors, remote.Authors)...)
	}

	if local.Venue != nil && remote.Venue != nil {
		sim := JaroWinkler(Normalize(*local.Venue), Normalize(*remote.Venue))
		if sim < venueInfoThreshold {
			out = append(out, types.Discrepancy{
				Field:       types.FieldVenue,
				Severity:    types.SeverityInfo,
				LocalValue:  *local.Venue,
				RemoteValue: *remote.Venue,
				Message:     "Venue name differs",
			})
		}
	}

	return out
}

// compareAuthorSpelling flags local authors whose closest remote author
// falls below the full-name match threshold.
func compareAuthorSpelling(local, remote []string) []types.Discrepancy {
	var out []types.Discrepancy
	for _, la := range local {
		localNorm := Normalize(la)
		bestSim := -1.0
		bestRemote := ""
		for _, ra := range remote {
			sim := JaroWinkler(localNorm, Normalize(ra))
			if sim > bestSim {
				bestSim = sim
				bestRemote = ra
			}
		}
		if bestSim >= 0 && bestSim < authorMatchThreshold {
			out = append(out, types.Discrepancy{
				Field:       types.FieldAuthors,
				Severity:    types.SeverityWarning,
				LocalValue:  la,
				RemoteValue: bestRemote,
				Message:     fmt.Sprintf("Author name spelling may differ: '%s' vs '%s'", la, bestRemote),
			})
		}
	}
	return out
}
