// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibtex

import "strings"

// IsArxivID reports whether s (after trimming) has one of the two arXiv
// identifier shapes: old-style "category/NNNNNNN" (everything after the
// first slash is one or more digits) or new-style "YYMM.NNNN" with an
// optional "vK" version suffix.
func IsArxivID(s string) bool {
	s = strings.TrimSpace(s)

	if i := strings.IndexByte(s, '/'); i >= 0 {
		return allDigits(s[i+1:])
	}

	if strings.IndexByte(s, '.') != 4 {
		return false
	}
	if !allDigits(s[:4]) {
		return false
	}
	rest := s[5:]
	n := digitRun(rest)
	if n == 0 {
		return false
	}
	rest = rest[n:]
	if rest == "" {
		return true
	}
	if rest[0] != 'v' {
		return false
	}
	return allDigits(rest[1:])
}

// ExtractArxivIDFromURL pulls an arXiv ID out of an arxiv.org URL
// ("https://arxiv.org/abs/2301.12345v1", ".../pdf/2301.12345.pdf").
func ExtractArxivIDFromURL(url string) (string, bool) {
	if !strings.Contains(url, "arxiv.org") {
		return "", false
	}

	idx := strings.Index(url, "/abs/")
	if idx < 0 {
		idx = strings.Index(url, "/pdf/")
	}
	if idx < 0 {
		return "", false
	}

	rest := url[idx+len("/abs/"):]
	end := 0
	for end < len(rest) && isArxivIDByte(rest[end]) {
		end++
	}
	id := strings.TrimSuffix(rest[:end], ".pdf")

	if !IsArxivID(id) {
		return "", false
	}
	return id, true
}

// ExtractDOIFromURL pulls a DOI out of a doi.org URL. Only values with
// the "10." registrant prefix are accepted.
func ExtractDOIFromURL(url string) (string, bool) {
	const marker = "doi.org/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", false
	}
	doi := url[idx+len(marker):]
	if !strings.HasPrefix(doi, "10.") {
		return "", false
	}
	return doi, true
}

func allDigits(s string) bool {
	return s != "" && digitRun(s) == len(s)
}

// digitRun returns the length of the leading run of ASCII digits in s.
func digitRun(s string) int {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

func isArxivIDByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '.' || c == '/'
}
