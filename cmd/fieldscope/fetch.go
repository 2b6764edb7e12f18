package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/matsen/fieldscope/internal/catalog"
	"github.com/matsen/fieldscope/internal/storage"
)

var fetchSkipPublications bool

func init() {
	fetchCmd.Flags().BoolVar(&fetchSkipPublications, "skip-publications", false, "Fetch only the schema tables")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the showcase schema tables and publication corpus",
	Long: `Download the field taxonomy tables (categories and fields) and the
publications listing from the showcase endpoints, saving them under the
configured data directory.`,
	RunE: runFetch,
}

// FetchResult is the response for the fetch command.
type FetchResult struct {
	Status       string `json:"status"`
	Categories   string `json:"categories"`
	Fields       string `json:"fields"`
	Publications string `json:"publications,omitempty"`
	PubCount     int    `json:"publication_count,omitempty"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg := mustLoadConfig()
	if err := cfg.EnsureDirs(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	client := catalog.NewClient(
		catalog.WithBaseURLs(cfg.ShowcaseURL, cfg.PublicationsURL),
		catalog.WithLogger(logrus.StandardLogger()),
	)
	ctx := context.Background()

	categories, err := client.DownloadCategories(ctx)
	if err != nil {
		exitWithError(ExitError, "fetching categories: %v", err)
	}
	if err := os.WriteFile(cfg.CategoriesPath(), categories, 0644); err != nil {
		exitWithError(ExitError, "writing categories: %v", err)
	}

	fields, err := client.DownloadFields(ctx)
	if err != nil {
		exitWithError(ExitError, "fetching fields: %v", err)
	}
	if err := os.WriteFile(cfg.FieldsPath(), fields, 0644); err != nil {
		exitWithError(ExitError, "writing fields: %v", err)
	}

	result := FetchResult{
		Status:     "fetched",
		Categories: cfg.CategoriesPath(),
		Fields:     cfg.FieldsPath(),
	}

	if !fetchSkipPublications {
		pubs, err := client.FetchPublications(ctx)
		if err != nil {
			exitWithError(ExitError, "fetching publications: %v", err)
		}
		if err := storage.WriteAll(cfg.PublicationsPath(), pubs); err != nil {
			exitWithError(ExitError, "writing publications: %v", err)
		}
		result.Publications = cfg.PublicationsPath()
		result.PubCount = len(pubs)
	}

	if humanOutput {
		outputHuman("Fetched schema tables to %s and %s\n", result.Categories, result.Fields)
		if result.Publications != "" {
			outputHuman("Fetched %d publications to %s\n", result.PubCount, result.Publications)
		}
		return nil
	}
	return outputJSON(result)
}
