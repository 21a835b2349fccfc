// Package main provides the citefill CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "citefill",
	Short: "Resumable bibliographic enrichment for publication title lists",
	Long: `citefill enriches a list of publication titles with bibliographic
metadata (authors, year, venue, citation count, URL) from external sources.

Results are written to a JSON cache after every title, so a long rate-limited
run can be interrupted and resumed without losing or repeating work. Missing
publication years can be filled in afterwards from free text, arXiv
identifiers, or a CrossRef lookup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
