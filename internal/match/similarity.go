// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"

	"github.com/pdiddy/bibcheck/pkg/types"
)

// winklerPrefixScale is the Jaro-Winkler prefix bonus factor.
const winklerPrefixScale = 0.1

// winklerMaxPrefix caps the common-prefix length used for the bonus.
const winklerMaxPrefix = 4

// Jaro returns the Jaro similarity of a and b in [0,1]. Two empty strings
// are identical (1.0); exactly one empty string scores 0.0. The match
// window is floor(max(|a|,|b|)/2): each character of a greedily claims the
// first unclaimed equal character of b within that window, scanning left
// to right.
func Jaro(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 && lb == 0 {
		return 1.0
	}
	if la == 0 || lb == 0 {
		return 0.0
	}

	window := la
	if lb > window {
		window = lb
	}
	window /= 2

	// Window 0 means both strings are single characters.
	if window == 0 {
		if ra[0] == rb[0] {
			return 1.0
		}
		return 0.0
	}

	matchedA := make([]bool, la)
	matchedB := make([]bool, lb)
	m := 0
	for i := 0; i < la; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > lb {
			hi = lb
		}
		for j := lo; j < hi; j++ {
			if matchedB[j] || ra[i] != rb[j] {
				continue
			}
			matchedA[i] = true
			matchedB[j] = true
			m++
			break
		}
	}

	if m == 0 {
		return 0.0
	}

	// Transpositions: walk the matched characters of both strings in
	// original order and count positions that disagree, then halve.
	t := 0
	j := 0
	for i := 0; i < la; i++ {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if ra[i] != rb[j] {
			t++
		}
		j++
	}
	half := float64(t) / 2.0

	fm := float64(m)
	return (fm/float64(la) + fm/float64(lb) + (fm-half)/fm) / 3.0
}

// JaroWinkler returns the Jaro similarity of a and b boosted by a
// common-prefix bonus: prefix length capped at 4, scaling factor 0.1.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)

	ra, rb := []rune(a), []rune(b)
	l := 0
	for l < len(ra) && l < len(rb) && l < winklerMaxPrefix && ra[l] == rb[l] {
		l++
	}

	return j + float64(l)*winklerPrefixScale*(1.0-j)
}

// TitleSimilarity returns the Jaro-Winkler similarity of the two records'
// normalized titles, or 0.0 when either title is absent.
func TitleSimilarity(a, b *types.Record) float64 {
	if a.Title == nil || b.Title == nil {
		return 0.0
	}
	return JaroWinkler(Normalize(*a.Title), Normalize(*b.Title))
}

// YearsCompatible reports whether the records' years are within
// maxYearDifference of each other. An absent year on either side never
// filters.
func YearsCompatible(a, b *types.Record) bool {
	if a.Year == nil || b.Year == nil {
		return true
	}
	diff := *a.Year - *b.Year
	if diff < 0 {
		diff = -diff
	}
	return diff <= maxYearDifference
}

// AuthorOverlap returns the fraction of local authors that have a fuzzy
// match among the remote authors, or 1.0 when either list is empty (no
// information to contradict). A local author matches a remote author when
// the full normalized names reach authorMatchThreshold, or when the last
// whitespace-delimited tokens of the normalized names reach
// lastNameThreshold (covers "John Smith" vs "J. Smith").
func AuthorOverlap(local, remote *types.Record) float64 {
	if len(local.Authors) == 0 || len(remote.Authors) == 0 {
		return 1.0
	}

	matched := 0
	for _, la := range local.Authors {
		localNorm := Normalize(la)
		for _, ra := range remote.Authors {
			remoteNorm := Normalize(ra)
			if JaroWinkler(localNorm, remoteNorm) >= authorMatchThreshold {
				matched++
				break
			}
			if JaroWinkler(lastToken(localNorm), lastToken(remoteNorm)) >= lastNameThreshold {
				matched++
				break
			}
		}
	}

	return float64(matched) / float64(len(local.Authors))
}

// lastToken returns the final whitespace-delimited token of s, or "" when
// s has none. Operating on normalized names means multi-word surnames
// ("van Rossum") reduce to their final word; matching depends on that
// literal behavior.
func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
