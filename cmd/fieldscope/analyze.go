package main

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/matsen/fieldscope/internal/pipeline"
	"github.com/matsen/fieldscope/internal/storage"
)

var (
	analyzeWorkers    int
	analyzeDictionary string
)

func init() {
	analyzeCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Parallel scan goroutines (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeDictionary, "dictionary", "", "Keyword dictionary: 'disease', 'feature', or a YAML file path")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan the corpus and store usage and contribution results",
	Long: `Build the field taxonomy from the fetched schema tables, scan every
publication for field references and disease keywords, aggregate usage
statistics, score disease contributions, and save the results as a new
analysis run in the local database.`,
	RunE: runAnalyze,
}

// AnalyzeResult is the response for the analyze command.
type AnalyzeResult struct {
	RunID          string `json:"run_id"`
	Publications   int    `json:"publications"`
	TaxonomyFields int    `json:"taxonomy_fields"`
	UsedFields     int    `json:"used_fields"`
	Categories     int    `json:"categories"`
	Contributions  int    `json:"contributions"`
	SkippedRows    int    `json:"skipped_schema_rows,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	tax, stats, err := loadTaxonomy(cfg)
	if err != nil {
		exitWithError(ExitDataError, "loading taxonomy: %v (run 'fieldscope fetch' first)", err)
	}
	if skipped := stats.SkippedCategoryRows + stats.SkippedFieldRows; skipped > 0 {
		logrus.WithField("rows", skipped).Warn("skipped malformed schema rows")
	}

	pubs, err := storage.ReadAll(cfg.PublicationsPath())
	if err != nil {
		exitWithError(ExitDataError, "reading publications: %v", err)
	}

	if analyzeDictionary != "" {
		cfg.DictionaryPath = analyzeDictionary
	}
	dict, err := loadDictionary(cfg)
	if err != nil {
		exitWithError(ExitConfigError, "loading dictionary: %v", err)
	}

	workers := cfg.ScanWorkers
	if analyzeWorkers > 0 {
		workers = analyzeWorkers
	}

	p := pipeline.New(tax, dict, pipeline.Options{
		Workers: workers,
		Log:     logrus.StandardLogger(),
	})
	res, err := p.Run(pubs)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoInput) {
			exitWithError(ExitDataError, "no publications to analyze (run 'fieldscope fetch' first)")
		}
		exitWithError(ExitError, "analysis failed: %v", err)
	}

	db, err := storage.OpenDB(cfg.DBPath())
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	if err := db.SaveRun(res.Run, res.Usage, res.Coverage, res.Contributions); err != nil {
		exitWithError(ExitError, "saving run: %v", err)
	}

	result := AnalyzeResult{
		RunID:          res.Run.ID,
		Publications:   res.Run.Publications,
		TaxonomyFields: res.Run.TaxonomyFields,
		UsedFields:     len(res.Usage),
		Categories:     len(res.Coverage),
		Contributions:  len(res.Contributions),
		SkippedRows:    stats.SkippedCategoryRows + stats.SkippedFieldRows,
	}

	if humanOutput {
		outputHuman("Analyzed %d publications against %d taxonomy fields\n",
			result.Publications, result.TaxonomyFields)
		outputHuman("  %d fields used, %d disease contributions\n",
			result.UsedFields, result.Contributions)
		outputHuman("  run id: %s\n", result.RunID)
		return nil
	}
	return outputJSON(result)
}
