package main

import (
	"os"

	"github.com/matsen/fieldscope/internal/catalog"
	"github.com/matsen/fieldscope/internal/config"
	"github.com/matsen/fieldscope/internal/scan"
	"github.com/matsen/fieldscope/internal/taxonomy"
)

// mustLoadConfig loads the workspace config or exits.
func mustLoadConfig() *config.Config {
	root, code := getWorkspaceRoot()
	if code != 0 {
		os.Exit(code)
	}
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// loadTaxonomy reads the fetched schema tables and builds the taxonomy.
func loadTaxonomy(cfg *config.Config) (*taxonomy.Taxonomy, taxonomy.Stats, error) {
	categories, err := parseTableFile(cfg.CategoriesPath())
	if err != nil {
		return nil, taxonomy.Stats{}, err
	}
	fields, err := parseTableFile(cfg.FieldsPath())
	if err != nil {
		return nil, taxonomy.Stats{}, err
	}
	tax, stats := taxonomy.Build(categories, fields)
	return tax, stats, nil
}

func parseTableFile(path string) ([]taxonomy.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return catalog.ParseTable(f)
}

// loadDictionary returns the configured keyword dictionary. The built-in
// names "disease" and "feature" select the corresponding default
// dictionaries; anything else is treated as a YAML file path.
func loadDictionary(cfg *config.Config) (*scan.Dictionary, error) {
	switch cfg.DictionaryPath {
	case "", "disease":
		return scan.DefaultDiseaseDictionary(), nil
	case "feature":
		return scan.DefaultFeatureDictionary(), nil
	default:
		return scan.LoadDictionary(cfg.DictionaryPath)
	}
}
