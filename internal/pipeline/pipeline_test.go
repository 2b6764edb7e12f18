package pipeline

import (
	"errors"
	"io"
	"math"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/matsen/fieldscope/internal/publication"
	"github.com/matsen/fieldscope/internal/scan"
	"github.com/matsen/fieldscope/internal/taxonomy"
)

func testTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	categories := []taxonomy.Row{
		{"cat_id": "100", "title": "Population"},
		{"cat_id": "101", "parent_id": "100", "title": "Population characteristics"},
	}
	fields := []taxonomy.Row{
		{"field_id": "31-0.0", "title": "Sex", "category": "Population characteristics"},
		{"field_id": "21022-0.0", "title": "Age at recruitment", "category": "Population characteristics"},
		{"field_id": "40000-0.0", "title": "Unused", "category": "Population characteristics"},
	}
	tax, stats := taxonomy.Build(categories, fields)
	if stats.SkippedCategoryRows != 0 || stats.SkippedFieldRows != 0 {
		t.Fatalf("unexpected skips: %+v", stats)
	}
	return tax
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testCorpus() []publication.Publication {
	return []publication.Publication{
		{
			ID:             "p1",
			Title:          "Diabetes risk and field 31-0.0",
			Abstract:       "We report a novel association. Field 31-0.0 and field 21022-0.0 predict diabetes.",
			Journal:        "Nature",
			Year:           "2021",
			DOI:            "10.1/a",
			TotalCitations: "150",
		},
		{
			ID:       "p2",
			Title:    "Age at recruitment revisited",
			Abstract: "Field 21022-0.0 was examined without disease context.",
			Journal:  "BMJ",
			Year:     "2020",
		},
	}
}

func TestRunNoInput(t *testing.T) {
	p := New(testTaxonomy(t), scan.DefaultDiseaseDictionary(), Options{Log: quietLogger()})
	if _, err := p.Run(nil); !errors.Is(err, ErrNoInput) {
		t.Errorf("Run(nil) error = %v, want ErrNoInput", err)
	}
}

func TestRunAggregatesUsage(t *testing.T) {
	p := New(testTaxonomy(t), scan.DefaultDiseaseDictionary(), Options{Log: quietLogger()})
	res, err := p.Run(testCorpus())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Run.Publications != 2 {
		t.Errorf("Run.Publications = %d, want 2", res.Run.Publications)
	}
	if res.Run.TaxonomyFields != 3 {
		t.Errorf("Run.TaxonomyFields = %d, want 3", res.Run.TaxonomyFields)
	}

	// 21022-0.0 has two mentions across two papers; 31-0.0 has two
	// mentions in one paper. Tie on mentions breaks on field id, so
	// 21022-0.0 sorts first.
	if len(res.Usage) != 2 {
		t.Fatalf("usage rows = %d, want 2", len(res.Usage))
	}
	first := res.Usage[0]
	if first.FieldID != "21022-0.0" || first.Mentions != 2 || first.Papers != 2 {
		t.Errorf("first row = %+v", first)
	}
	second := res.Usage[1]
	if second.FieldID != "31-0.0" || second.Mentions != 2 || second.Papers != 1 {
		t.Errorf("second row = %+v", second)
	}
	if first.Category != "Population" || first.Subcategory != "Population characteristics" {
		t.Errorf("row lineage = %q / %q", first.Category, first.Subcategory)
	}
}

func TestRunCoverage(t *testing.T) {
	p := New(testTaxonomy(t), scan.DefaultDiseaseDictionary(), Options{Log: quietLogger()})
	res, err := p.Run(testCorpus())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Coverage) != 1 {
		t.Fatalf("coverage rows = %d, want 1", len(res.Coverage))
	}
	cov := res.Coverage[0]
	if cov.Category != "Population" {
		t.Errorf("Category = %q", cov.Category)
	}
	if cov.TotalFields != 3 || cov.UsedFields != 2 {
		t.Errorf("fields = %d/%d, want 2/3 used", cov.UsedFields, cov.TotalFields)
	}
	if cov.TotalMentions != 4 {
		t.Errorf("TotalMentions = %d, want 4", cov.TotalMentions)
	}
	if cov.Papers != 2 {
		t.Errorf("Papers = %d, want 2", cov.Papers)
	}
	if math.Abs(cov.UsagePercent-2.0/3.0*100) > 1e-9 {
		t.Errorf("UsagePercent = %f", cov.UsagePercent)
	}
}

func TestRunContributions(t *testing.T) {
	p := New(testTaxonomy(t), scan.DefaultDiseaseDictionary(), Options{Log: quietLogger()})
	res, err := p.Run(testCorpus())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Only p1 mentions a disease keyword.
	if len(res.Contributions) != 1 {
		t.Fatalf("contributions = %d, want 1", len(res.Contributions))
	}
	c := res.Contributions[0]
	if c.Category != "metabolic" || c.Rank != 1 {
		t.Errorf("category/rank = %q/%d", c.Category, c.Rank)
	}
	if c.Title != "Diabetes risk and field 31-0.0" || c.Year != "2021" {
		t.Errorf("title/year = %q/%q", c.Title, c.Year)
	}
	if c.Citations != 150 {
		t.Errorf("Citations = %d, want 150", c.Citations)
	}
	// log1p(150)/10 plus one "novel" occurrence over the 8-phrase vocabulary.
	want := math.Log1p(150)/10 + 1.0/8
	if math.Abs(c.ImpactScore-want) > 1e-9 {
		t.Errorf("ImpactScore = %f, want %f", c.ImpactScore, want)
	}
	if len(c.Findings) == 0 {
		t.Error("expected extracted findings")
	}
}

func TestRunDeterministicAcrossWorkerCounts(t *testing.T) {
	tax := testTaxonomy(t)
	dict := scan.DefaultDiseaseDictionary()
	pubs := testCorpus()

	sequential := New(tax, dict, Options{Workers: 1, Log: quietLogger()})
	parallel := New(tax, dict, Options{Workers: 8, Log: quietLogger()})

	a, err := sequential.Run(pubs)
	if err != nil {
		t.Fatalf("sequential Run: %v", err)
	}
	b, err := parallel.Run(pubs)
	if err != nil {
		t.Fatalf("parallel Run: %v", err)
	}

	// Run ids differ; everything derived from the corpus must not.
	if !reflect.DeepEqual(a.Usage, b.Usage) {
		t.Error("usage rows differ across worker counts")
	}
	if !reflect.DeepEqual(a.Coverage, b.Coverage) {
		t.Error("coverage rows differ across worker counts")
	}
	if !reflect.DeepEqual(a.Contributions, b.Contributions) {
		t.Error("contribution rows differ across worker counts")
	}
}

func TestRunEmptyTaxonomy(t *testing.T) {
	tax, _ := taxonomy.Build(nil, nil)
	p := New(tax, scan.DefaultDiseaseDictionary(), Options{Log: quietLogger()})

	res, err := p.Run(testCorpus())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Usage) != 0 {
		t.Errorf("usage rows = %d, want 0", len(res.Usage))
	}
	if len(res.Coverage) != 0 {
		t.Errorf("coverage rows = %d, want 0", len(res.Coverage))
	}
	// Disease matching does not depend on the taxonomy.
	if len(res.Contributions) != 1 {
		t.Errorf("contributions = %d, want 1", len(res.Contributions))
	}
}
