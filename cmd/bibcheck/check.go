// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibcheck/internal/bibtex"
	"github.com/pdiddy/bibcheck/internal/cache"
	"github.com/pdiddy/bibcheck/internal/sources"
	"github.com/pdiddy/bibcheck/internal/validate"
	"github.com/pdiddy/bibcheck/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.bib>",
	Short: "Validate a BibTeX file against remote databases",
	Long: `Check parses the given BibTeX file and validates every entry against
the enabled remote sources. Entries with a local DOI are resolved directly;
the rest are matched by title similarity, author overlap, and year.

The command exits non-zero when any entry has an error-level discrepancy.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "text", "report format: text, json, or yaml")
	checkCmd.Flags().StringSlice("source", nil, "restrict to specific sources (openalex, openreview, openlibrary)")
	checkCmd.Flags().Bool("no-cache", false, "bypass the lookup cache")
	checkCmd.Flags().Bool("quiet", false, "suppress per-entry progress output")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	records, err := bibtex.ParseFile(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "No entries found in", args[0])
		return nil
	}

	cfg := validateConfigFromViper()
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Disabled = true
	}

	only, _ := cmd.Flags().GetStringSlice("source")
	srcs, err := buildSources(cfg.Sources, only)
	if err != nil {
		return err
	}

	if !cfg.Cache.Disabled {
		store, err := cache.Open(cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close()
		for i, s := range srcs {
			srcs[i] = cache.Wrap(s, store)
		}
	}

	var progress io.Writer = cmd.OutOrStderr()
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		progress = io.Discard
	}

	v := &validate.Validator{Sources: srcs, Delay: cfg.Sources.InterSourceDelay}
	results, summary, err := v.ValidateAll(context.Background(), records, progress)
	if err != nil {
		return err
	}

	rep := validate.Report{Entries: results, Summary: summary}
	format, _ := cmd.Flags().GetString("format")
	if err := renderReport(rep, format, cmd.OutOrStdout()); err != nil {
		return err
	}

	if summary.Errors > 0 {
		return fmt.Errorf("%d entr%s failed validation", summary.Errors, plural(summary.Errors, "y", "ies"))
	}
	return nil
}

func renderReport(rep validate.Report, format string, w io.Writer) error {
	switch format {
	case "text", "":
		validate.FormatText(rep, w)
		return nil
	case "json":
		return validate.FormatJSON(rep, w)
	case "yaml":
		return validate.FormatYAML(rep, w)
	default:
		return fmt.Errorf("unsupported format %q: use text, json, or yaml", format)
	}
}

// buildSources assembles the enabled sources, optionally restricted to an
// explicit subset from --source.
func buildSources(cfg types.SourcesConfig, only []string) ([]sources.Source, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	enabled := map[string]bool{
		"openalex":    cfg.EnableOpenAlex,
		"openreview":  cfg.EnableOpenReview,
		"openlibrary": cfg.EnableOpenLibrary,
	}
	if len(only) > 0 {
		for name := range enabled {
			enabled[name] = false
		}
		for _, name := range only {
			if _, ok := enabled[name]; !ok {
				return nil, fmt.Errorf("unknown source %q: use openalex, openreview, or openlibrary", name)
			}
			enabled[name] = true
		}
	}

	var srcs []sources.Source
	if enabled["openalex"] {
		srcs = append(srcs, sources.NewOpenAlex(httpClient, cfg))
	}
	if enabled["openreview"] {
		srcs = append(srcs, sources.NewOpenReview(httpClient, cfg))
	}
	if enabled["openlibrary"] {
		srcs = append(srcs, sources.NewOpenLibrary(httpClient, cfg))
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("no sources enabled: check the sources.* config keys")
	}
	return srcs, nil
}

func validateConfigFromViper() types.ValidateConfig {
	return types.ValidateConfig{
		Sources: types.SourcesConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("sources.timeout"),
				UserAgent: viper.GetString("sources.user_agent"),
			},
			EnableOpenAlex:    viper.GetBool("sources.enable_openalex"),
			EnableOpenReview:  viper.GetBool("sources.enable_openreview"),
			EnableOpenLibrary: viper.GetBool("sources.enable_openlibrary"),
			OpenAlexMailto:    viper.GetString("sources.openalex_mailto"),
			MaxCandidates:     viper.GetInt("sources.max_candidates"),
			InterSourceDelay:  viper.GetDuration("sources.inter_source_delay"),
			RequestsPerSecond: viper.GetFloat64("sources.requests_per_second"),
		},
		Cache: types.CacheConfig{
			Dir:      viper.GetString("cache.dir"),
			TTL:      viper.GetDuration("cache.ttl"),
			Disabled: viper.GetBool("cache.disabled"),
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
