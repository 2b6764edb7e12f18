// Package pipeline orchestrates a full analysis run: scan the corpus,
// aggregate field usage, score disease contributions, and shape the results
// for storage.
package pipeline

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matsen/fieldscope/internal/contribution"
	"github.com/matsen/fieldscope/internal/publication"
	"github.com/matsen/fieldscope/internal/scan"
	"github.com/matsen/fieldscope/internal/storage"
	"github.com/matsen/fieldscope/internal/taxonomy"
	"github.com/matsen/fieldscope/internal/usage"
)

// ErrNoInput is returned when the corpus contains no publications.
var ErrNoInput = errors.New("no publications to analyze")

// DefaultWorkers bounds concurrent scanning when no override is given.
const DefaultWorkers = 4

// Options configures an analysis run.
type Options struct {
	Workers   int            // parallel scan goroutines, DefaultWorkers if <= 0
	Segmenter scan.Segmenter // nil means the default sentence segmenter
	Log       *logrus.Logger // nil means the standard logger
}

// Result holds everything an analysis run produces, in storage form.
type Result struct {
	Run           storage.Run
	Usage         []storage.UsageRow
	Coverage      []storage.CoverageRow
	Contributions []storage.ContributionRow
}

// Pipeline runs the analysis over a fixed taxonomy and dictionary.
type Pipeline struct {
	tax     *taxonomy.Taxonomy
	scanner *scan.Scanner
	scorer  *contribution.Scorer
	workers int
	log     *logrus.Logger
}

// New builds a pipeline. The dictionary must already be compiled.
func New(tax *taxonomy.Taxonomy, dict *scan.Dictionary, opts Options) *Pipeline {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	var scanOpts []scan.Option
	if opts.Segmenter != nil {
		scanOpts = append(scanOpts, scan.WithSegmenter(opts.Segmenter))
	}

	return &Pipeline{
		tax:     tax,
		scanner: scan.New(tax, dict, scanOpts...),
		scorer:  contribution.NewScorer(opts.Segmenter),
		workers: workers,
		log:     log,
	}
}

// Run analyzes the corpus. Scanning happens in parallel with bounded
// concurrency; results are folded in input order, so output is identical
// regardless of worker count.
func (p *Pipeline) Run(pubs []publication.Publication) (*Result, error) {
	if len(pubs) == 0 {
		return nil, ErrNoInput
	}
	if p.tax.Empty() {
		p.log.Warn("taxonomy has no fields; usage aggregates will be empty")
	}

	start := time.Now()
	p.log.WithFields(logrus.Fields{
		"publications": len(pubs),
		"fields":       p.tax.TotalFields(),
		"workers":      p.workers,
	}).Info("starting analysis")

	results := p.scanAll(pubs)

	agg := usage.NewAggregator(p.tax)
	byCategory := make(map[string][]contribution.Contribution)
	for i, pub := range pubs {
		agg.Add(pub, results[i])
		for _, c := range p.scorer.Score(pub, results[i].Categories) {
			byCategory[c.Category] = append(byCategory[c.Category], c)
		}
	}
	contribution.Rank(byCategory)

	res := &Result{
		Run:           storage.NewRun(len(pubs), p.tax.TotalFields()),
		Usage:         p.usageRows(agg),
		Coverage:      coverageRows(agg),
		Contributions: contributionRows(byCategory),
	}

	p.log.WithFields(logrus.Fields{
		"used_fields":   len(res.Usage),
		"contributions": len(res.Contributions),
		"elapsed":       time.Since(start).Round(time.Millisecond),
	}).Info("analysis complete")

	return res, nil
}

// scanAll scans publications in parallel with a bounded semaphore, writing
// each result to its input index.
func (p *Pipeline) scanAll(pubs []publication.Publication) []scan.Result {
	results := make([]scan.Result, len(pubs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.workers)

	for i, pub := range pubs {
		wg.Add(1)
		go func(idx int, pb publication.Publication) {
			defer wg.Done()
			sem <- struct{}{}        // acquire semaphore
			defer func() { <-sem }() // release semaphore
			results[idx] = p.scanner.Scan(pb)
		}(i, pub)
	}

	wg.Wait()
	return results
}

// usageRows flattens used field records, sorted by mentions descending with
// field id as tie-break, matching the order the store reads them back in.
func (p *Pipeline) usageRows(agg *usage.Aggregator) []storage.UsageRow {
	used := agg.Used()
	rows := make([]storage.UsageRow, 0, len(used))
	for _, rec := range used {
		meta, ok := p.tax.Lookup(rec.FieldID)
		if !ok {
			continue
		}
		rows = append(rows, storage.UsageRow{
			FieldID:     rec.FieldID,
			FieldName:   meta.Name,
			Category:    meta.Category,
			Subcategory: meta.Subcategory,
			Mentions:    rec.Mentions,
			Papers:      rec.PaperCount(),
			Contexts:    rec.Contexts,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Mentions != rows[j].Mentions {
			return rows[i].Mentions > rows[j].Mentions
		}
		return rows[i].FieldID < rows[j].FieldID
	})
	return rows
}

func coverageRows(agg *usage.Aggregator) []storage.CoverageRow {
	coverage := agg.CategoryCoverage()
	rows := make([]storage.CoverageRow, 0, len(coverage))
	for _, c := range coverage {
		rows = append(rows, storage.CoverageRow{
			Category:      c.Category,
			TotalFields:   c.TotalFields,
			UsedFields:    c.UsedFields,
			TotalMentions: c.TotalMentions,
			Papers:        len(c.Papers),
			UsagePercent:  c.UsagePercent(),
		})
	}
	return rows
}

// contributionRows flattens ranked contributions, categories in sorted
// order, papers in rank order within each category.
func contributionRows(byCategory map[string][]contribution.Contribution) []storage.ContributionRow {
	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	var rows []storage.ContributionRow
	for _, cat := range cats {
		for i, c := range byCategory[cat] {
			rows = append(rows, storage.ContributionRow{
				Category:    c.Category,
				Rank:        i + 1,
				Title:       c.Title,
				Year:        c.Year,
				Journal:     c.Journal,
				Citations:   c.Citations,
				ImpactScore: c.ImpactScore,
				Findings:    c.Findings,
				DOI:         c.DOI,
				PubMedID:    c.PubMedID,
			})
		}
	}
	return rows
}
