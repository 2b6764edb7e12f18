package usage

import (
	"testing"

	"github.com/matsen/fieldscope/internal/publication"
	"github.com/matsen/fieldscope/internal/scan"
	"github.com/matsen/fieldscope/internal/taxonomy"
)

func lifestyleTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, _ := taxonomy.Build(
		[]taxonomy.Row{
			{"cat_id": "1", "title": "Lifestyle"},
			{"cat_id": "10", "title": "Diet", "parent_id": "1"},
			{"cat_id": "2", "title": "Imaging"},
			{"cat_id": "20", "title": "Brain MRI", "parent_id": "2"},
		},
		[]taxonomy.Row{
			{"field_id": "100-0.0", "title": "energy intake", "category": "Diet"},
			{"field_id": "110-0.0", "title": "step count", "category": "Diet"},
			{"field_id": "210-2.0", "title": "grey matter", "category": "Brain MRI"},
		},
	)
	return tax
}

func TestAggregateSinglePublication(t *testing.T) {
	// Scenario: one publication mentioning field 100-0.0 once.
	tax := lifestyleTaxonomy(t)
	s := scan.New(tax, nil)
	agg := NewAggregator(tax)

	pub := publication.Publication{
		ID:       "p1",
		Title:    "Diet paper",
		Abstract: "Participants reported field 100-0.0 energy intake, n=5000 participants.",
		Year:     "2023",
	}
	agg.Add(pub, s.Scan(pub))

	rec, ok := agg.Record("100-0.0")
	if !ok {
		t.Fatal("no record for 100-0.0")
	}
	if rec.Mentions != 1 {
		t.Errorf("Mentions = %d, want 1", rec.Mentions)
	}
	if rec.PaperCount() != 1 {
		t.Errorf("PaperCount = %d, want 1", rec.PaperCount())
	}
	if years := rec.YearList(); len(years) != 1 || years[0] != 2023 {
		t.Errorf("YearList = %v, want [2023]", years)
	}
	if len(rec.Contexts) == 0 {
		t.Error("no context sentence captured")
	}
}

func TestMentionsAtLeastPapers(t *testing.T) {
	tax := lifestyleTaxonomy(t)
	s := scan.New(tax, nil)
	agg := NewAggregator(tax)

	pubs := []publication.Publication{
		{ID: "a", Abstract: "Used 100-0.0 and again 100-0.0 and 110-0.0."},
		{ID: "b", Abstract: "Used 100-0.0 once."},
		{ID: "b", Abstract: "Same paper scanned again with 100-0.0."},
	}
	for _, p := range pubs {
		agg.Add(p, s.Scan(p))
	}

	rec, _ := agg.Record("100-0.0")
	if rec.Mentions != 4 {
		t.Errorf("Mentions = %d, want 4 (every occurrence counts)", rec.Mentions)
	}
	if rec.PaperCount() != 2 {
		t.Errorf("PaperCount = %d, want 2 (set semantics)", rec.PaperCount())
	}
	if rec.Mentions < rec.PaperCount() {
		t.Error("invariant violated: mentions < papers")
	}
}

func TestUnknownFieldIDDiscarded(t *testing.T) {
	tax := lifestyleTaxonomy(t)
	agg := NewAggregator(tax)

	// Bypass the scanner's own filter to exercise the aggregator guard.
	res := scan.Result{
		FieldOccurrences: []string{"12-3.4"},
		FieldContexts:    map[string][]string{"12-3.4": {"ctx"}},
	}
	agg.Add(publication.Publication{ID: "p"}, res)

	if _, ok := agg.Record("12-3.4"); ok {
		t.Error("record auto-vivified for a non-taxonomy id")
	}
	if used := agg.Used(); len(used) != 0 {
		t.Errorf("Used = %v, want empty", used)
	}
}

func TestContextSampleBounded(t *testing.T) {
	tax := lifestyleTaxonomy(t)
	agg := NewAggregator(tax)

	for i := 0; i < 10; i++ {
		res := scan.Result{
			FieldOccurrences: []string{"100-0.0"},
			FieldContexts: map[string][]string{
				"100-0.0": {
					"sentence " + string(rune('a'+i)),
					"sentence " + string(rune('a'+i)), // duplicate within one result
				},
			},
		}
		agg.Add(publication.Publication{ID: "p"}, res)
	}

	rec, _ := agg.Record("100-0.0")
	if len(rec.Contexts) != MaxContextSamples {
		t.Errorf("len(Contexts) = %d, want %d", len(rec.Contexts), MaxContextSamples)
	}
	if rec.Contexts[0] != "sentence a" {
		t.Errorf("Contexts[0] = %q, want discovery order preserved", rec.Contexts[0])
	}
	for i, c := range rec.Contexts {
		for j := 0; j < i; j++ {
			if rec.Contexts[j] == c {
				t.Errorf("duplicate context %q", c)
			}
		}
	}
}

func TestCategoryCoverage(t *testing.T) {
	tax := lifestyleTaxonomy(t)
	s := scan.New(tax, nil)
	agg := NewAggregator(tax)

	pubs := []publication.Publication{
		{ID: "a", Abstract: "Study of 100-0.0 and 100-0.0."},
		{ID: "b", Abstract: "Study of 100-0.0 and 210-2.0."},
	}
	for _, p := range pubs {
		agg.Add(p, s.Scan(p))
	}

	cov := agg.CategoryCoverage()
	if len(cov) != 2 {
		t.Fatalf("got %d coverage entries, want 2", len(cov))
	}

	lifestyle := cov[0]
	if lifestyle.Category != "Lifestyle" {
		t.Fatalf("cov[0] = %q, want Lifestyle (taxonomy order)", lifestyle.Category)
	}
	if lifestyle.TotalFields != 2 || lifestyle.UsedFields != 1 {
		t.Errorf("lifestyle fields = %d/%d, want 1/2 used", lifestyle.UsedFields, lifestyle.TotalFields)
	}
	if lifestyle.TotalMentions != 3 {
		t.Errorf("TotalMentions = %d, want 3", lifestyle.TotalMentions)
	}
	if len(lifestyle.Papers) != 2 {
		t.Errorf("papers = %d, want union of 2", len(lifestyle.Papers))
	}
	if pct := lifestyle.UsagePercent(); pct != 50 {
		t.Errorf("UsagePercent = %v, want 50", pct)
	}

	imaging := cov[1]
	if imaging.UsedFields != 1 || imaging.TotalFields != 1 {
		t.Errorf("imaging = %d/%d", imaging.UsedFields, imaging.TotalFields)
	}
	if pct := imaging.UsagePercent(); pct != 100 {
		t.Errorf("imaging UsagePercent = %v, want 100", pct)
	}
}

func TestZeroFieldCategoryCoverage(t *testing.T) {
	tax, _ := taxonomy.Build([]taxonomy.Row{{"cat_id": "1", "title": "Empty"}}, nil)
	agg := NewAggregator(tax)

	cov := agg.CategoryCoverage()
	if len(cov) != 1 {
		t.Fatalf("got %d entries", len(cov))
	}
	if pct := cov[0].UsagePercent(); pct != 0 {
		t.Errorf("UsagePercent = %v, want 0 for zero-field category", pct)
	}
}

func TestTopFields(t *testing.T) {
	tax := lifestyleTaxonomy(t)
	s := scan.New(tax, nil)
	agg := NewAggregator(tax)

	pub := publication.Publication{ID: "a", Abstract: "110-0.0 110-0.0 110-0.0 and 100-0.0."}
	agg.Add(pub, s.Scan(pub))

	top := agg.TopFields("Lifestyle", 5)
	if len(top) != 2 {
		t.Fatalf("got %d fields", len(top))
	}
	if top[0].FieldID != "110-0.0" || top[1].FieldID != "100-0.0" {
		t.Errorf("order = %s, %s; want mention-count descending", top[0].FieldID, top[1].FieldID)
	}

	if got := agg.TopFields("Lifestyle", 1); len(got) != 1 {
		t.Errorf("truncation failed: %d", len(got))
	}
}
