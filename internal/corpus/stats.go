package corpus

import (
	"sort"

	"github.com/matsen/fieldscope/internal/publication"
)

// TopJournalCount caps the journals reported in summary statistics.
const TopJournalCount = 10

// JournalCount pairs a journal with its publication count.
type JournalCount struct {
	Journal string `json:"journal"`
	Count   int    `json:"count"`
}

// Stats summarizes a publication corpus.
type Stats struct {
	TotalPublications int            `json:"total_publications"`
	ByYear            map[string]int `json:"publications_by_year"`
	TopJournals       []JournalCount `json:"top_journals"`
	TotalCitations    int            `json:"total_citations"`
	MeanCitations     float64        `json:"mean_citations"`
	MedianCitations   float64        `json:"median_citations"`
}

// Summarize computes corpus statistics. Years and citation counts go
// through the publication coercions, so malformed values count as missing
// or zero rather than failing.
func Summarize(pubs []publication.Publication) Stats {
	stats := Stats{
		TotalPublications: len(pubs),
		ByYear:            make(map[string]int),
	}
	if len(pubs) == 0 {
		return stats
	}

	journals := make(map[string]int)
	citations := make([]int, 0, len(pubs))
	for _, p := range pubs {
		if y := p.Year.String(); y != "" {
			stats.ByYear[y]++
		}
		if p.Journal != "" {
			journals[p.Journal]++
		}
		c := p.Citations()
		citations = append(citations, c)
		stats.TotalCitations += c
	}

	stats.MeanCitations = float64(stats.TotalCitations) / float64(len(pubs))
	stats.MedianCitations = median(citations)

	for j, n := range journals {
		stats.TopJournals = append(stats.TopJournals, JournalCount{Journal: j, Count: n})
	}
	sort.Slice(stats.TopJournals, func(i, j int) bool {
		if stats.TopJournals[i].Count != stats.TopJournals[j].Count {
			return stats.TopJournals[i].Count > stats.TopJournals[j].Count
		}
		return stats.TopJournals[i].Journal < stats.TopJournals[j].Journal
	})
	if len(stats.TopJournals) > TopJournalCount {
		stats.TopJournals = stats.TopJournals[:TopJournalCount]
	}

	return stats
}

func median(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
