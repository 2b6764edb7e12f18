package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/fieldscope/internal/pdf"
	"github.com/matsen/fieldscope/internal/storage"
)

func init() {
	rootCmd.AddCommand(addPDFCmd)
}

var addPDFCmd = &cobra.Command{
	Use:   "add-pdf <file.pdf> [more.pdf...]",
	Short: "Add local PDF papers to the corpus",
	Long: `Extract title, abstract text, and DOI from local PDF files and append
them to the publication corpus. Papers whose DOI is already present are
skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddPDF,
}

// AddPDFResult is the response for the add-pdf command.
type AddPDFResult struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped,omitempty"`
}

func runAddPDF(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if err := cfg.EnsureDirs(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	existing, err := storage.ReadAll(cfg.PublicationsPath())
	if err != nil {
		exitWithError(ExitDataError, "reading publications: %v", err)
	}

	var result AddPDFResult
	for _, path := range args {
		pub, err := pdf.AsPublication(path)
		if err != nil {
			exitWithError(ExitDataError, "reading %s: %v", path, err)
		}

		if pub.DOI != "" {
			if _, found := storage.FindByDOI(existing, pub.DOI); found {
				result.Skipped = append(result.Skipped, path)
				continue
			}
		}

		if err := storage.Append(cfg.PublicationsPath(), pub); err != nil {
			exitWithError(ExitError, "appending %s: %v", path, err)
		}
		existing = append(existing, pub)
		result.Added = append(result.Added, path)
	}

	if humanOutput {
		outputHuman("Added %d of %d PDFs", len(result.Added), len(args))
		if len(result.Skipped) > 0 {
			outputHuman(" (%d already present)", len(result.Skipped))
		}
		outputHuman("\n")
		return nil
	}
	return outputJSON(result)
}
