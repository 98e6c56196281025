// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores local bibliographic records against remote
// candidates and enumerates field-level discrepancies.
package match

import (
	"strings"
	"unicode"
)

// Normalize returns the canonical comparable form of s: letters are
// lowercased, punctuation is dropped, and whitespace runs collapse to a
// single interior space. Normalize is idempotent and total; empty input
// yields empty output.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
