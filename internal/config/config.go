// Package config handles workspace configuration and data layout.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matsen/fieldscope/internal/catalog"
)

// Config represents workspace configuration stored in fieldscope.yml.
type Config struct {
	DataDir         string `yaml:"data_dir,omitempty" json:"data_dir"`                         // Where fetched inputs live
	OutputDir       string `yaml:"output_dir,omitempty" json:"output_dir"`                     // Where reports are written
	ShowcaseURL     string `yaml:"showcase_url,omitempty" json:"showcase_url"`                 // Schema endpoint override
	PublicationsURL string `yaml:"publications_url,omitempty" json:"publications_url"`         // Publications endpoint override
	ScanWorkers     int    `yaml:"scan_workers,omitempty" json:"scan_workers"`                 // Parallel scan goroutines
	DictionaryPath  string `yaml:"dictionary_path,omitempty" json:"dictionary_path,omitempty"` // Keyword dictionary: builtin name or YAML path
}

const (
	// ConfigFile is the workspace config file name.
	ConfigFile = "fieldscope.yml"

	CategoriesFile   = "categories.tsv"
	FieldsFile       = "fields.tsv"
	PublicationsFile = "publications.jsonl"
	DBFile           = "analysis.db"

	// DefaultDataDir and DefaultOutputDir are relative to the workspace root.
	DefaultDataDir   = "data"
	DefaultOutputDir = "reports"

	// DefaultScanWorkers bounds concurrent publication scanning.
	DefaultScanWorkers = 4
)

// Default returns a config populated with default values.
func Default() *Config {
	return &Config{
		DataDir:         DefaultDataDir,
		OutputDir:       DefaultOutputDir,
		ShowcaseURL:     catalog.ShowcaseURL,
		PublicationsURL: catalog.PublicationsURL,
		ScanWorkers:     DefaultScanWorkers,
	}
}

// Load reads configuration from the given workspace root. A missing config
// file is not an error; defaults are returned. Fields left empty in the
// file fall back to their defaults, and relative data and output
// directories resolve against the root, so the loaded config always points
// into the workspace regardless of the process working directory.
func Load(root string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		cfg.applyDefaults()
	}
	cfg.resolve(root)

	return cfg, nil
}

// Save writes configuration to the given workspace root.
func (c *Config) Save(root string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(root, ConfigFile), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.ShowcaseURL == "" {
		c.ShowcaseURL = d.ShowcaseURL
	}
	if c.PublicationsURL == "" {
		c.PublicationsURL = d.PublicationsURL
	}
	if c.ScanWorkers <= 0 {
		c.ScanWorkers = d.ScanWorkers
	}
}

// resolve anchors relative directories at the workspace root.
func (c *Config) resolve(root string) {
	if !filepath.IsAbs(c.DataDir) {
		c.DataDir = filepath.Join(root, c.DataDir)
	}
	if !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(root, c.OutputDir)
	}
}

// CategoriesPath returns the path to the fetched categories table.
func (c *Config) CategoriesPath() string {
	return filepath.Join(c.DataDir, CategoriesFile)
}

// FieldsPath returns the path to the fetched fields table.
func (c *Config) FieldsPath() string {
	return filepath.Join(c.DataDir, FieldsFile)
}

// PublicationsPath returns the path to the publication corpus.
func (c *Config) PublicationsPath() string {
	return filepath.Join(c.DataDir, PublicationsFile)
}

// DBPath returns the path to the analysis database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFile)
}

// EnsureDirs creates the data and output directories if needed.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}
