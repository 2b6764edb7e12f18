// Package main provides the fieldscope CLI entry point.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose enables debug-level logging
var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fieldscope",
	Short: "Field usage and disease contribution analysis for biobank research",
	Long: `fieldscope analyzes how a biobank's data fields are used across its
publication corpus.

It fetches the showcase field taxonomy and publications listing, scans
titles and abstracts for field references and disease keywords, aggregates
per-category usage statistics, and ranks publications by a citation and
phrase based impact score. All commands output JSON by default for easy
integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.Version = Version
}

// getWorkspaceRoot returns the workspace root directory. The
// FIELDSCOPE_ROOT environment variable overrides the working directory.
func getWorkspaceRoot() (string, int) {
	if root := os.Getenv("FIELDSCOPE_ROOT"); root != "" {
		return root, 0
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}
