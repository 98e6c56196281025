// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibtex decodes BibTeX/BibLaTeX documents into normalized records.
// The parser is tolerant: malformed entries are dropped and scanning
// resumes at the top level, so a single bad entry never aborts a parse.
package bibtex

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/bibcheck/pkg/types"
)

// ParseFile reads path and parses its contents. The only failure mode is
// unreadable input; malformed BibTeX never produces an error.
func ParseFile(path string) ([]types.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Parse scans src and returns the records it contains, in document order.
// Text between entries is skipped, % starts a line comment, and
// @string/@preamble/@comment blocks contribute no records.
func Parse(src string) []types.Record {
	p := &parser{src: src}
	var records []types.Record
	for !p.eof() {
		switch {
		case isSpace(p.peek()):
			p.pos++
		case p.peek() == '%':
			p.skipLineComment()
		case p.peek() == '@':
			p.pos++
			if rec, ok := p.parseEntry(); ok {
				records = append(records, rec)
			}
		default:
			// Garbage between entries is tolerated one byte at a time.
			p.pos++
		}
	}
	return records
}

// parser is a forward-only cursor over the source text. There is no
// backtracking beyond single-byte lookahead.
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte { return p.src[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

// skipLineComment consumes a % comment through the end of the line. A
// comment cut off by EOF is fine.
func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.pos++
	}
}

// parseEntry decodes one @-entry. The cursor sits just past the '@'.
// It returns ok=false for @string/@preamble/@comment blocks and for
// entries whose body cannot be delimited; scanning then resumes at the
// top level.
func (p *parser) parseEntry() (types.Record, bool) {
	entryType := p.readToken(isIdentByte)

	lower := strings.ToLower(entryType)
	if lower == "string" || lower == "preamble" || lower == "comment" {
		p.skipBracedBlock()
		return types.Record{}, false
	}

	p.skipSpace()
	if p.eof() {
		return types.Record{}, false
	}

	var closer byte
	switch p.peek() {
	case '{':
		closer = '}'
	case '(':
		closer = ')'
	default:
		// No body delimiter: abort this entry, keep scanning.
		return types.Record{}, false
	}
	p.pos++

	p.skipSpace()
	key := p.readKey(closer)
	rec := types.NewRecord(key, strings.ToLower(entryType))

	for {
		p.skipSpace()
		if p.eof() {
			// Early EOF mid-entry: the entry is still returned.
			return rec, true
		}
		if p.peek() == closer {
			p.pos++
			return rec, true
		}
		if p.peek() == ',' {
			p.pos++
			continue
		}

		name := p.readToken(isFieldNameByte)
		p.skipSpace()
		if name == "" || p.eof() || p.peek() != '=' {
			// Malformed field: drop it and resync at the next field.
			p.skipToFieldEnd(closer)
			continue
		}
		p.pos++ // '='

		value := p.parseValue(closer)
		dispatchField(&rec, name, value)
	}
}

// readToken consumes and returns the run of bytes accepted by valid.
func (p *parser) readToken(valid func(byte) bool) string {
	start := p.pos
	for !p.eof() && valid(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// readKey reads the citation key: everything up to the first comma, the
// closing delimiter, or whitespace. Trailing whitespace and commas are
// consumed.
func (p *parser) readKey(closer byte) string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if c == ',' || c == closer || isSpace(c) {
			break
		}
		p.pos++
	}
	key := p.src[start:p.pos]
	for !p.eof() && (isSpace(p.peek()) || p.peek() == ',') {
		p.pos++
	}
	return key
}

// skipBracedBlock skips a single {…} block, tracking nesting depth. Only
// braces count; quotes inside are not special. Missing braces at EOF are
// tolerated.
func (p *parser) skipBracedBlock() {
	for !p.eof() && p.peek() != '{' {
		p.pos++
	}
	depth := 0
	for !p.eof() {
		switch p.peek() {
		case '{':
			depth++
		case '}':
			depth--
		}
		p.pos++
		if depth == 0 {
			return
		}
	}
}

// skipToFieldEnd advances to the next comma or the entry closer without
// consuming either.
func (p *parser) skipToFieldEnd(closer byte) {
	for !p.eof() && p.peek() != ',' && p.peek() != closer {
		p.pos++
	}
}

// parseValue reads a field value: any sequence of quoted runs, braced
// runs, and bare words, joined by direct concatenation. '#' operators and
// interstitial whitespace are skipped. A comma or the entry closer ends
// the value.
func (p *parser) parseValue(closer byte) string {
	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		switch {
		case c == ',' || c == closer:
			return b.String()
		case isSpace(c) || c == '#':
			p.pos++
		case c == '"':
			p.pos++
			start := p.pos
			for !p.eof() && p.peek() != '"' {
				p.pos++
			}
			b.WriteString(p.src[start:p.pos])
			if !p.eof() {
				p.pos++ // closing quote
			}
		case c == '{':
			p.pos++
			start := p.pos
			depth := 1
			for !p.eof() && depth > 0 {
				switch p.peek() {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					p.pos++
				}
			}
			b.WriteString(p.src[start:p.pos])
			if !p.eof() {
				p.pos++ // closing brace
			}
		case isIdentByte(c):
			b.WriteString(p.readToken(isIdentByte))
		default:
			// Stray byte inside a value; skip it.
			p.pos++
		}
	}
	return b.String()
}

// dispatchField applies a parsed field to the record. Field names compare
// case-insensitively. Unparseable values (bad year, rejected eprint) are
// silently ignored; BibTeX fields are routinely hand-edited.
func dispatchField(rec *types.Record, name, value string) {
	switch strings.ToLower(name) {
	case "title":
		rec.Title = &value
	case "author":
		for _, part := range strings.Split(value, " and ") {
			part = strings.TrimSpace(part)
			if part != "" {
				rec.Authors = append(rec.Authors, part)
			}
		}
	case "year":
		if y, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			rec.Year = &y
		}
	case "journal", "booktitle":
		if rec.Venue == nil {
			rec.Venue = &value
		}
	case "doi":
		rec.DOI = &value
	case "eprint":
		if id := strings.TrimSpace(value); IsArxivID(id) {
			rec.ArxivID = &id
		}
	case "url":
		rec.URL = &value
		if rec.ArxivID == nil {
			if id, ok := ExtractArxivIDFromURL(value); ok {
				rec.ArxivID = &id
			}
		}
		if rec.DOI == nil {
			if doi, ok := ExtractDOIFromURL(value); ok {
				rec.DOI = &doi
			}
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isFieldNameByte(c byte) bool {
	return isIdentByte(c) || c == '-'
}
