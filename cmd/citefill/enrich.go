package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"citefill/internal/cache"
	"citefill/internal/config"
	"citefill/internal/enrich"
	"citefill/internal/input"
	"citefill/internal/scholar"
)

var (
	enrichInput    string
	enrichCache    string
	enrichLimit    int
	enrichProbe    int
	enrichMinDelay time.Duration
	enrichMaxDelay time.Duration
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich a title list with bibliographic metadata",
	Long: `Enrich every title in a CSV list with metadata from Semantic Scholar.

Each result is persisted to the cache file before the next title is queried,
so an interrupted run resumes where it left off. Titles already in the cache
are skipped; cache entries for titles no longer in the list are pruned.

Examples:
  citefill enrich --input titles.csv --cache enriched.json
  citefill enrich --input titles.csv --cache enriched.json --limit 50
  citefill enrich --input titles.csv --cache enriched.json --min-delay 2s --max-delay 4s`,
	Run: runEnrich,
}

func init() {
	enrichCmd.Flags().StringVar(&enrichInput, "input", "", "CSV file with a title column (required)")
	enrichCmd.Flags().StringVar(&enrichCache, "cache", "enriched.json", "Path to the enrichment cache file")
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "Maximum titles to process this run (0 = all)")
	enrichCmd.Flags().IntVar(&enrichProbe, "probe", scholar.DefaultProbeWindow, "Candidates examined per title")
	enrichCmd.Flags().DurationVar(&enrichMinDelay, "min-delay", 0, "Minimum pause between searches (default 5s)")
	enrichCmd.Flags().DurationVar(&enrichMaxDelay, "max-delay", 0, "Maximum pause between searches (default 10s)")
	enrichCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	titles, err := input.ReadTitles(enrichInput)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	store, err := cache.Load(enrichCache)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	var clientOpts []scholar.ClientOption
	if key := config.GetS2APIKey(); key != "" {
		clientOpts = append(clientOpts, scholar.WithAPIKey(key))
	}
	client := scholar.NewClient(clientOpts...)

	opts := []enrich.Option{
		enrich.WithProgress(os.Stderr),
		enrich.WithProbeWindow(enrichProbe),
	}
	minDelay, maxDelay := enrichMinDelay, enrichMaxDelay
	if minDelay == 0 && maxDelay == 0 {
		minDelay, maxDelay = config.DelayWindow()
	}
	if maxDelay > 0 {
		opts = append(opts, enrich.WithDelayWindow(minDelay, maxDelay))
	}
	if enrichLimit > 0 {
		opts = append(opts, enrich.WithLimit(enrichLimit))
	}

	orch := enrich.New(store, client, opts...)
	report, err := orch.Run(context.Background(), titles)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Unique titles: %d\n", report.UniqueTitles)
		fmt.Printf("Already cached: %d\n", report.Cached)
		if report.Pruned > 0 {
			fmt.Printf("Pruned stale entries: %d\n", report.Pruned)
		}
		fmt.Printf("Processed: %d enriched, %d without result\n", report.Enriched, report.NoResult)
	} else {
		if err := outputJSON(report); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
			os.Exit(ExitError)
		}
	}
}
