package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/fieldscope/internal/report"
	"github.com/matsen/fieldscope/internal/storage"
)

var reportHTML bool

func init() {
	reportCmd.Flags().BoolVar(&reportHTML, "html", false, "Also render HTML versions of the reports")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render reports from the latest analysis run",
	Long: `Render the category usage report, the disease contributions report,
and the coverage CSV from the latest analysis run into the configured
output directory.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if err := cfg.EnsureDirs(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	db, err := storage.OpenDB(cfg.DBPath())
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	run, err := db.LatestRun()
	if err != nil {
		exitWithError(ExitError, "reading runs: %v", err)
	}
	if run == nil {
		exitWithError(ExitDataError, "no analysis run found (run 'fieldscope analyze' first)")
	}

	usage, err := db.LoadUsage(run.ID)
	if err != nil {
		exitWithError(ExitError, "loading usage: %v", err)
	}
	coverage, err := db.LoadCoverage(run.ID)
	if err != nil {
		exitWithError(ExitError, "loading coverage: %v", err)
	}
	contribs, err := db.LoadContributions(run.ID)
	if err != nil {
		exitWithError(ExitError, "loading contributions: %v", err)
	}

	var paths []string
	write := func(name, content string) {
		path := filepath.Join(cfg.OutputDir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			exitWithError(ExitError, "writing %s: %v", name, err)
		}
		paths = append(paths, path)
	}

	usageMD := report.CategoryUsage(coverage, usage)
	contribMD := report.Contributions(contribs)
	write("category_usage.md", usageMD)
	write("disease_contributions.md", contribMD)

	csv, err := report.CoverageCSV(coverage)
	if err != nil {
		exitWithError(ExitError, "rendering coverage CSV: %v", err)
	}
	write("category_coverage.csv", csv)

	if reportHTML {
		for _, r := range []struct {
			name, title, md string
		}{
			{"category_usage.html", "Category Usage Report", usageMD},
			{"disease_contributions.html", "Disease Contributions", contribMD},
		} {
			html, err := report.RenderHTML(r.title, r.md)
			if err != nil {
				exitWithError(ExitError, "rendering %s: %v", r.name, err)
			}
			write(r.name, string(html))
		}
	}

	if humanOutput {
		outputHuman("Wrote reports for run %s:\n  %s\n", run.ID, strings.Join(paths, "\n  "))
		return nil
	}
	return outputJSON(StatusResponse{Status: "written", Paths: paths})
}
