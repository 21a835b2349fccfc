package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"citefill/internal/cache"
	"citefill/internal/config"
	"citefill/internal/crossref"
	"citefill/internal/year"
)

var (
	yearsInput    string
	yearsOutput   string
	yearsNoLookup bool
)

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "Fill in missing publication years",
	Long: `Infer missing publication years for an enrichment file.

For each record without a year, tries in order: a four-digit year in the
venue, URL, or title text; a year decoded from an arXiv identifier; and a
CrossRef lookup by title. The result is written to a new file; the input is
left untouched.

Examples:
  citefill years --input enriched.json
  citefill years --input enriched.json --output enriched_with_years.json
  citefill years --input enriched.json --no-lookup`,
	Run: runYears,
}

func init() {
	yearsCmd.Flags().StringVar(&yearsInput, "input", "", "Enrichment file to read (required)")
	yearsCmd.Flags().StringVar(&yearsOutput, "output", "", "Output file (default <input>_with_years.json)")
	yearsCmd.Flags().BoolVar(&yearsNoLookup, "no-lookup", false, "Skip the CrossRef lookup stage")
	yearsCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(yearsCmd)
}

// defaultYearsOutput derives the output path from the input path.
func defaultYearsOutput(in string) string {
	if strings.HasSuffix(in, ".json") {
		return strings.TrimSuffix(in, ".json") + "_with_years.json"
	}
	return in + "_with_years.json"
}

func runYears(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	if _, err := os.Stat(yearsInput); err != nil {
		exitWithError(ExitDataError, "reading %s: %v", yearsInput, err)
	}

	store, err := cache.Load(yearsInput)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	var opts []year.Option
	if !yearsNoLookup {
		var crOpts []crossref.ClientOption
		if mailto := config.GetCrossrefMailto(); mailto != "" {
			crOpts = append(crOpts, crossref.WithMailto(mailto))
		}
		opts = append(opts, year.WithLookup(crossref.NewClient(crOpts...)))
	}
	engine := year.New(opts...)

	recs := store.Records()
	updated := engine.Fill(context.Background(), recs)

	out := yearsOutput
	if out == "" {
		out = defaultYearsOutput(yearsInput)
	}
	if err := cache.WriteRecords(out, recs); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Added years to %d of %d records\n", updated, len(recs))
		fmt.Printf("Wrote %s\n", out)
	} else {
		resp := struct {
			Records int    `json:"records"`
			Updated int    `json:"updated"`
			Output  string `json:"output"`
		}{len(recs), updated, out}
		if err := outputJSON(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
			os.Exit(ExitError)
		}
	}
}
