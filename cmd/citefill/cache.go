package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"citefill/internal/cache"
	"citefill/internal/enrich"
	"citefill/internal/input"
	"citefill/internal/title"
)

var (
	cacheInfoPath   string
	cachePrunePath  string
	cachePruneInput string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the enrichment cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize the cache file",
	Run:   runCacheInfo,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop cache entries whose titles left the input list",
	Run:   runCachePrune,
}

func init() {
	cacheInfoCmd.Flags().StringVar(&cacheInfoPath, "cache", "enriched.json", "Path to the enrichment cache file")
	cachePruneCmd.Flags().StringVar(&cachePrunePath, "cache", "enriched.json", "Path to the enrichment cache file")
	cachePruneCmd.Flags().StringVar(&cachePruneInput, "input", "", "CSV file with a title column (required)")
	cachePruneCmd.MarkFlagRequired("input")
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

// CacheInfoResponse summarizes a cache file.
type CacheInfoResponse struct {
	Path     string `json:"path"`
	Records  int    `json:"records"`
	Resolved int    `json:"resolved"`
	NoResult int    `json:"no_result"`
	WithYear int    `json:"with_year"`
}

func runCacheInfo(cmd *cobra.Command, args []string) {
	store, err := cache.Load(cacheInfoPath)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	info := CacheInfoResponse{Path: cacheInfoPath, Records: store.Len()}
	for _, rec := range store.Records() {
		switch {
		case rec.Resolved():
			info.Resolved++
		case rec.Terminal():
			info.NoResult++
		}
		if rec.Year != 0 {
			info.WithYear++
		}
	}

	if humanOutput {
		fmt.Printf("Cache: %s\n", info.Path)
		fmt.Printf("Records: %d (%d resolved, %d without result)\n", info.Records, info.Resolved, info.NoResult)
		fmt.Printf("With year: %d\n", info.WithYear)
	} else {
		if err := outputJSON(info); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
			os.Exit(ExitError)
		}
	}
}

func runCachePrune(cmd *cobra.Command, args []string) {
	titles, err := input.ReadTitles(cachePruneInput)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	store, err := cache.Load(cachePrunePath)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	valid := make(map[string]bool)
	for _, t := range enrich.DedupeTitles(titles) {
		valid[title.Normalize(t)] = true
	}

	removed := store.Prune(valid)
	if removed > 0 {
		if err := store.Persist(); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}

	if humanOutput {
		fmt.Printf("Pruned %d entries, %d remain\n", removed, store.Len())
	} else {
		resp := struct {
			Pruned    int `json:"pruned"`
			Remaining int `json:"remaining"`
		}{removed, store.Len()}
		if err := outputJSON(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
			os.Exit(ExitError)
		}
	}
}
