// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Report pairs the per-entry results with the run summary for rendering.
type Report struct {
	Entries []EntryResult `json:"entries" yaml:"entries"`
	Summary RunSummary    `json:"summary" yaml:"summary"`
}

// FormatText writes a human-readable report to w.
func FormatText(rep Report, w io.Writer) {
	if len(rep.Entries) == 0 {
		fmt.Fprintln(w, "No entries validated.")
		return
	}

	fmt.Fprintf(w, "%-28s  %-10s  %-7s  %s\n", "Key", "Status", "Score", "Matched by")
	fmt.Fprintln(w, strings.Repeat("-", 72))

	for _, e := range rep.Entries {
		best := -1.0
		var matchedBy []string
		for _, sr := range e.Sources {
			if sr.Match == nil {
				continue
			}
			matchedBy = append(matchedBy, sr.Source)
			if sr.Match.Score > best {
				best = sr.Match.Score
			}
		}
		score := ""
		if best >= 0 {
			score = fmt.Sprintf("%.2f", best)
		}

		key := e.Key
		if len(key) > 28 {
			key = key[:25] + "..."
		}
		fmt.Fprintf(w, "%-28s  %-10s  %-7s  %s\n", key, e.Status, score, strings.Join(matchedBy, ","))

		for _, sr := range e.Sources {
			if sr.Error != "" {
				fmt.Fprintf(w, "    %s: lookup failed: %s\n", sr.Source, sr.Error)
			}
			for _, d := range sr.Discrepancies {
				fmt.Fprintf(w, "    [%s] %s (%s): %s\n", d.Severity, d.Field, sr.Source, d.Message)
			}
		}
	}

	fmt.Fprintf(w, "\n%d entries: %d ok, %d warnings, %d errors, %d not found\n",
		rep.Summary.Total(), rep.Summary.OK, rep.Summary.Warnings,
		rep.Summary.Errors, rep.Summary.NotFound)
}

// FormatJSON writes the report as indented JSON to w.
func FormatJSON(rep Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// FormatYAML writes the report as YAML to w.
func FormatYAML(rep Report, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(rep)
}
