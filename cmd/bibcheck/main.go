// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibcheck CLI, which validates
// BibTeX bibliographies against remote bibliographic databases.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the bibcheck CLI.
var rootCmd = &cobra.Command{
	Use:   "bibcheck",
	Short: "Validate BibTeX bibliographies against remote databases",
	Long: `bibcheck parses a BibTeX/BibLaTeX file and checks each entry against
remote bibliographic databases (OpenAlex, OpenReview, Open Library). For
every entry it finds the best-matching remote record and reports field
discrepancies: wrong years, drifted titles, missing DOIs, author
mismatches.

Lookups are cached on disk with a fixed time-to-live so repeated runs do
not hammer the source APIs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env may carry OPENALEX mailto etc.; missing is fine.
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./bibcheck.yaml or ~/.config/bibcheck/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bibcheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bibcheck"))
		}
	}

	viper.SetEnvPrefix("BIBCHECK")
	viper.AutomaticEnv()

	viper.SetDefault("sources.enable_openalex", true)
	viper.SetDefault("sources.enable_openreview", true)
	viper.SetDefault("sources.enable_openlibrary", false)
	viper.SetDefault("sources.openalex_mailto", "")
	viper.SetDefault("sources.max_candidates", 5)
	viper.SetDefault("sources.inter_source_delay", "1s")
	viper.SetDefault("sources.requests_per_second", 2.0)
	viper.SetDefault("sources.timeout", "20s")
	viper.SetDefault("sources.user_agent", "bibcheck/0.1 (https://github.com/pdiddy/bibcheck)")
	viper.SetDefault("cache.dir", defaultCacheDir())
	viper.SetDefault("cache.ttl", "168h")
	viper.SetDefault("cache.disabled", false)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".bibcheck-cache"
	}
	return filepath.Join(base, "bibcheck")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
