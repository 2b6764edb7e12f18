// Package contribution scores publications against disease categories and
// ranks them by a citation-plus-phrase-density heuristic.
package contribution

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/matsen/fieldscope/internal/publication"
	"github.com/matsen/fieldscope/internal/scan"
)

// findingPatterns match sentences that announce a result.
var findingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)we (found|identified|discovered|observed|showed)`),
	regexp.MustCompile(`(?i)results (showed|demonstrated|indicated|revealed)`),
	regexp.MustCompile(`(?i)significant(ly)? associated`),
	regexp.MustCompile(`(?i)strong(ly)? correlated`),
	regexp.MustCompile(`(?i)key finding`),
	regexp.MustCompile(`(?i)novel (finding|discovery|association)`),
}

// impactPhrases is the fixed vocabulary for the phrase-density term. The
// divisor of the score's second term is the size of this list, not the
// number of phrases found, so repeated phrases can push the term above 1.
// That unbounded behavior is intentional and must be preserved for score
// compatibility.
var impactPhrases = []string{
	"first", "novel", "breakthrough", "significant", "important",
	"major advance", "key finding", "innovative",
}

// Contribution is one publication's scored relevance to one disease
// category.
type Contribution struct {
	Title       string   `json:"title"`
	Year        string   `json:"year"`
	Journal     string   `json:"journal"`
	Citations   int      `json:"citations"`
	Findings    []string `json:"findings"`
	DOI         string   `json:"doi,omitempty"`
	PubMedID    string   `json:"pubmed_id,omitempty"`
	Category    string   `json:"category"`
	ImpactScore float64  `json:"impact_score"`
}

// ImpactScore computes the heuristic score for a publication text and a
// coerced citation count:
//
//	log(1+citations)/10 + occurrences(impact phrases)/len(vocabulary)
//
// It is a pure function of its inputs. Citation counts at or below zero
// contribute exactly 0.
func ImpactScore(text string, citations int) float64 {
	var citationTerm float64
	if citations > 0 {
		citationTerm = math.Log1p(float64(citations)) / 10
	}

	lower := strings.ToLower(text)
	count := 0
	for _, phrase := range impactPhrases {
		count += strings.Count(lower, phrase)
	}

	return citationTerm + float64(count)/float64(len(impactPhrases))
}

// ExtractFindings returns the sentences of the text matching any finding
// announcement pattern, in text order.
func ExtractFindings(text string, seg scan.Segmenter) []string {
	var findings []string
	for _, sent := range seg.Segment(text) {
		for _, p := range findingPatterns {
			if p.MatchString(sent) {
				findings = append(findings, sent)
				break
			}
		}
	}
	return findings
}

// Scorer turns scanned publications into ranked per-category contributions.
type Scorer struct {
	seg scan.Segmenter
}

// NewScorer creates a Scorer using the given sentence segmenter (nil means
// the default regex segmenter).
func NewScorer(seg scan.Segmenter) *Scorer {
	if seg == nil {
		seg = scan.RegexSegmenter{}
	}
	return &Scorer{seg: seg}
}

// Score builds one Contribution per matched disease category for a single
// publication. Any failure while scoring is contained: the publication gets
// a 0.0 score rather than aborting the batch.
func (s *Scorer) Score(pub publication.Publication, categories []string) []Contribution {
	if len(categories) == 0 {
		return nil
	}

	text := pub.Text()
	citations := pub.Citations()

	score, findings := s.scoreSafe(text, citations)

	out := make([]Contribution, 0, len(categories))
	for _, cat := range categories {
		out = append(out, Contribution{
			Title:       pub.Title,
			Year:        yearOrUnknown(pub),
			Journal:     pub.Journal,
			Citations:   citations,
			Findings:    findings,
			DOI:         pub.DOI,
			PubMedID:    pub.PubMedID,
			Category:    cat,
			ImpactScore: score,
		})
	}
	return out
}

// scoreSafe computes score and findings, converting any panic into a 0.0
// score with no findings. One malformed record must not kill the run.
func (s *Scorer) scoreSafe(text string, citations int) (score float64, findings []string) {
	defer func() {
		if r := recover(); r != nil {
			score = 0.0
			findings = nil
		}
	}()

	findings = ExtractFindings(text, s.seg)
	score = ImpactScore(text, citations)
	return score, findings
}

// Rank sorts each category's contributions by impact score descending. The
// sort is stable, so ties keep ingestion order and output is deterministic
// across runs with identical input order.
func Rank(byCategory map[string][]Contribution) {
	for _, contribs := range byCategory {
		sort.SliceStable(contribs, func(i, j int) bool {
			return contribs[i].ImpactScore > contribs[j].ImpactScore
		})
	}
}

func yearOrUnknown(pub publication.Publication) string {
	if y := strings.TrimSpace(pub.Year.String()); y != "" {
		return y
	}
	return "Unknown"
}
