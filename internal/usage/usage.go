// Package usage aggregates field mention statistics across a publication
// corpus.
package usage

import (
	"sort"

	"github.com/matsen/fieldscope/internal/publication"
	"github.com/matsen/fieldscope/internal/scan"
	"github.com/matsen/fieldscope/internal/taxonomy"
)

// MaxContextSamples bounds the context sentences retained per field.
const MaxContextSamples = 5

// Record is the per-field aggregate across the whole corpus.
type Record struct {
	FieldID  string
	Mentions int                 // every occurrence counts
	Papers   map[string]struct{} // deduplicated publication keys
	Years    map[int]struct{}
	Contexts []string // bounded sample, discovery order, no duplicates
}

// PaperCount returns the number of distinct papers mentioning the field.
func (r *Record) PaperCount() int {
	return len(r.Papers)
}

// YearList returns the years seen, ascending.
func (r *Record) YearList() []int {
	years := make([]int, 0, len(r.Years))
	for y := range r.Years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Coverage is the per-category roll-up of field usage.
type Coverage struct {
	Category      string
	TotalFields   int
	UsedFields    int
	TotalMentions int
	Papers        map[string]struct{}
}

// UsagePercent returns used/total as a percentage, 0 when the category has
// no fields.
func (c Coverage) UsagePercent() float64 {
	if c.TotalFields == 0 {
		return 0
	}
	return float64(c.UsedFields) / float64(c.TotalFields) * 100
}

// Aggregator folds scan results into per-field records and per-category
// coverage. Every container is initialized up front from the taxonomy;
// lookups during aggregation never grow the structure, so mentions of ids
// outside the taxonomy are dropped.
type Aggregator struct {
	tax     *taxonomy.Taxonomy
	records map[string]*Record
}

// NewAggregator initializes a record for every field in the taxonomy.
func NewAggregator(tax *taxonomy.Taxonomy) *Aggregator {
	a := &Aggregator{
		tax:     tax,
		records: make(map[string]*Record, tax.TotalFields()),
	}
	for _, id := range tax.FieldIDs() {
		a.records[id] = &Record{
			FieldID: id,
			Papers:  make(map[string]struct{}),
			Years:   make(map[int]struct{}),
		}
	}
	return a
}

// Add folds one publication's scan result into the aggregate. Call in corpus
// order: context sample order follows discovery order.
func (a *Aggregator) Add(pub publication.Publication, res scan.Result) {
	for _, id := range res.FieldOccurrences {
		rec, ok := a.records[id]
		if !ok {
			// False positive from the literal pattern; not a taxonomy field.
			continue
		}
		rec.Mentions++
		rec.Papers[pub.Key()] = struct{}{}
		if y, ok := pub.YearInt(); ok {
			rec.Years[y] = struct{}{}
		}
		a.sampleContexts(rec, res.FieldContexts[id])
	}
}

// sampleContexts appends context sentences not already captured, up to the
// per-field bound.
func (a *Aggregator) sampleContexts(rec *Record, contexts []string) {
	for _, ctx := range contexts {
		if len(rec.Contexts) >= MaxContextSamples {
			return
		}
		dup := false
		for _, have := range rec.Contexts {
			if have == ctx {
				dup = true
				break
			}
		}
		if !dup {
			rec.Contexts = append(rec.Contexts, ctx)
		}
	}
}

// Record returns the aggregate for a field id, or false for ids outside the
// taxonomy.
func (a *Aggregator) Record(fieldID string) (*Record, bool) {
	rec, ok := a.records[fieldID]
	return rec, ok
}

// Used returns the records with at least one mention, in taxonomy field
// order.
func (a *Aggregator) Used() []*Record {
	var out []*Record
	for _, id := range a.tax.FieldIDs() {
		if rec := a.records[id]; rec.Mentions > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// CategoryCoverage rolls records up through the taxonomy, one entry per
// category in taxonomy order. TotalFields counts every field under the
// category regardless of usage; Papers is the union of the per-field sets.
func (a *Aggregator) CategoryCoverage() []Coverage {
	var out []Coverage
	for _, cat := range a.tax.Categories {
		cov := Coverage{
			Category: cat.Name,
			Papers:   make(map[string]struct{}),
		}
		for _, sub := range cat.Subcategories {
			for _, f := range sub.Fields {
				cov.TotalFields++
				rec := a.records[f.ID]
				if rec == nil || rec.Mentions == 0 {
					continue
				}
				cov.UsedFields++
				cov.TotalMentions += rec.Mentions
				for p := range rec.Papers {
					cov.Papers[p] = struct{}{}
				}
			}
		}
		out = append(out, cov)
	}
	return out
}

// TopFields returns the used fields of one category, sorted by mention count
// descending with field id as the deterministic tie-break, truncated to n.
func (a *Aggregator) TopFields(categoryName string, n int) []*Record {
	var recs []*Record
	for _, cat := range a.tax.Categories {
		if cat.Name != categoryName {
			continue
		}
		for _, sub := range cat.Subcategories {
			for _, f := range sub.Fields {
				if rec := a.records[f.ID]; rec != nil && rec.Mentions > 0 {
					recs = append(recs, rec)
				}
			}
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Mentions != recs[j].Mentions {
			return recs[i].Mentions > recs[j].Mentions
		}
		return recs[i].FieldID < recs[j].FieldID
	})
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}
	return recs
}
