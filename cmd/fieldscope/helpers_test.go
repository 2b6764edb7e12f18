package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/fieldscope/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestLoadTaxonomy(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{DataDir: dir}

	writeFile(t, cfg.CategoriesPath(),
		"cat_id\ttitle\tparent_id\n100\tPopulation\t\n101\tPopulation characteristics\t100\n")
	writeFile(t, cfg.FieldsPath(),
		"field_id\ttitle\tcategory\n31-0.0\tSex\tPopulation characteristics\n")

	tax, stats, err := loadTaxonomy(cfg)
	if err != nil {
		t.Fatalf("loadTaxonomy: %v", err)
	}
	if stats.SkippedCategoryRows != 0 || stats.SkippedFieldRows != 0 {
		t.Errorf("unexpected skips: %+v", stats)
	}
	if tax.TotalFields() != 1 {
		t.Errorf("TotalFields = %d, want 1", tax.TotalFields())
	}
	meta, ok := tax.Lookup("31-0.0")
	if !ok || meta.Category != "Population" {
		t.Errorf("Lookup(31-0.0) = %+v, %v", meta, ok)
	}
}

func TestLoadTaxonomyMissingFile(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}
	if _, _, err := loadTaxonomy(cfg); err == nil {
		t.Error("expected error for missing schema tables")
	}
}

func TestLoadDictionaryBuiltins(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantFirst string
	}{
		{"empty defaults to disease", "", "cardiovascular"},
		{"disease by name", "disease", "cardiovascular"},
		{"feature by name", "feature", "genetic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dict, err := loadDictionary(&config.Config{DictionaryPath: tt.path})
			if err != nil {
				t.Fatalf("loadDictionary: %v", err)
			}
			names := dict.Names()
			if len(names) != 6 || names[0] != tt.wantFirst {
				t.Errorf("categories = %v, want 6 starting with %q", names, tt.wantFirst)
			}
		})
	}
}

func TestLoadDictionaryCustom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.yml")
	writeFile(t, path, "categories:\n  - name: custom\n    patterns:\n      - keyword\n")

	dict, err := loadDictionary(&config.Config{DictionaryPath: path})
	if err != nil {
		t.Fatalf("loadDictionary: %v", err)
	}
	if names := dict.Names(); len(names) != 1 || names[0] != "custom" {
		t.Errorf("custom dictionary categories = %v", names)
	}
}
