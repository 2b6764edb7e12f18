package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/fieldscope/internal/config"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or initialize workspace configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		if humanOutput {
			outputHuman("data_dir: %s\noutput_dir: %s\nshowcase_url: %s\npublications_url: %s\nscan_workers: %d\n",
				cfg.DataDir, cfg.OutputDir, cfg.ShowcaseURL, cfg.PublicationsURL, cfg.ScanWorkers)
			if cfg.DictionaryPath != "" {
				outputHuman("dictionary_path: %s\n", cfg.DictionaryPath)
			}
			return nil
		}
		return outputJSON(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, code := getWorkspaceRoot()
		if code != 0 {
			exitWithError(code, "resolving workspace root")
		}
		// Write the relative defaults so the file stays portable; Load
		// anchors them at the root.
		if err := config.Default().Save(root); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		if humanOutput {
			outputHuman("Wrote %s\n", "fieldscope.yml")
			return nil
		}
		return outputJSON(StatusResponse{Status: "written", Paths: []string{"fieldscope.yml"}})
	},
}
