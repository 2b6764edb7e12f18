package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/matsen/fieldscope/internal/corpus"
	"github.com/matsen/fieldscope/internal/storage"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the fetched publication corpus",
	Long: `Print summary statistics for the local publication corpus: totals,
publications per year, most frequent journals, and citation distribution.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	pubs, err := storage.ReadAll(cfg.PublicationsPath())
	if err != nil {
		exitWithError(ExitDataError, "reading publications: %v", err)
	}
	if len(pubs) == 0 {
		exitWithError(ExitDataError, "no publications found (run 'fieldscope fetch' first)")
	}

	stats := corpus.Summarize(pubs)

	if humanOutput {
		outputHuman("Publications: %d\n", stats.TotalPublications)
		outputHuman("Citations: %d total, %.1f mean, %.1f median\n",
			stats.TotalCitations, stats.MeanCitations, stats.MedianCitations)

		years := make([]string, 0, len(stats.ByYear))
		for y := range stats.ByYear {
			years = append(years, y)
		}
		sort.Strings(years)
		outputHuman("\nBy year:\n")
		for _, y := range years {
			outputHuman("  %s: %d\n", y, stats.ByYear[y])
		}

		outputHuman("\nTop journals:\n")
		for _, j := range stats.TopJournals {
			outputHuman("  %d  %s\n", j.Count, j.Journal)
		}
		return nil
	}
	return outputJSON(stats)
}
