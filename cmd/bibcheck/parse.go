// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/bibcheck/internal/bibtex"
	"github.com/pdiddy/bibcheck/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.bib>",
	Short: "Parse a BibTeX file and print the normalized records",
	Long: `Parse decodes the given BibTeX file without contacting any remote
source. Useful for checking what bibcheck extracted from each entry,
including DOIs and arXiv IDs derived from URL fields.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "text", "output format: text, json, or yaml")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	records, err := bibtex.ParseFile(args[0])
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	w := cmd.OutOrStdout()

	switch format {
	case "text", "":
		printRecordTable(records, w)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(records)
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}

func printRecordTable(records []types.Record, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	fmt.Fprintf(w, "%-24s  %-14s  %-4s  %-40s  %s\n", "Key", "Type", "Year", "Title", "DOI")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, r := range records {
		year := ""
		if r.Year != nil {
			year = fmt.Sprintf("%d", *r.Year)
		}
		title := ""
		if r.Title != nil {
			title = *r.Title
		}
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		doi := ""
		if r.DOI != nil {
			doi = *r.DOI
		}
		key := r.Key
		if len(key) > 24 {
			key = key[:21] + "..."
		}
		fmt.Fprintf(w, "%-24s  %-14s  %-4s  %-40s  %s\n", key, r.EntryType, year, title, doi)
	}

	fmt.Fprintf(w, "\n%d entries\n", len(records))
}
