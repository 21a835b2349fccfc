package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"citefill/internal/cache"
)

var (
	statsCache string
	statsDB    string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics over the enrichment cache",
	Long: `Rebuild the SQLite index from the cache file and print aggregate counts:
totals, resolution outcomes, year coverage, citations, and records per decade.

The index is a derived view; the JSON cache file stays the source of truth.

Examples:
  citefill stats --cache enriched.json
  citefill stats --cache enriched.json --db enriched.db --human`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsCache, "cache", "enriched.json", "Path to the enrichment cache file")
	statsCmd.Flags().StringVar(&statsDB, "db", "", "Path to the SQLite index (default <cache>.db)")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	store, err := cache.Load(statsCache)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	dbPath := statsDB
	if dbPath == "" {
		dbPath = strings.TrimSuffix(statsCache, ".json") + ".db"
	}

	ix, err := cache.OpenIndex(dbPath)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer ix.Close()

	if _, err := ix.Rebuild(store.Records()); err != nil {
		exitWithError(ExitError, "rebuilding index: %v", err)
	}

	stats, err := ix.Stats()
	if err != nil {
		exitWithError(ExitError, "computing stats: %v", err)
	}

	if humanOutput {
		fmt.Printf("Records: %d\n", stats.Total)
		fmt.Printf("Resolved: %d\n", stats.Resolved)
		fmt.Printf("No result: %d\n", stats.NoResult)
		fmt.Printf("With year: %d\n", stats.WithYear)
		fmt.Printf("With citations: %d (total %d)\n", stats.WithCitations, stats.TotalCitations)
		if len(stats.ByDecade) > 0 {
			fmt.Println("By decade:")
			for _, dc := range stats.ByDecade {
				fmt.Printf("  %ds: %d\n", dc.Decade, dc.Count)
			}
		}
	} else {
		if err := outputJSON(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
			os.Exit(ExitError)
		}
	}
}
