// Package scan detects taxonomy field ids and keyword category matches in
// publication text.
package scan

import (
	"regexp"
	"strings"

	"github.com/matsen/fieldscope/internal/publication"
	"github.com/matsen/fieldscope/internal/taxonomy"
)

// fieldIDPattern matches literal field identifiers: integer, hyphen,
// integer, dot, integer (field/instance/array encoding, e.g. "100-0.0").
var fieldIDPattern = regexp.MustCompile(`\b\d+-\d+\.\d+\b`)

// Result holds everything found in one publication's text.
type Result struct {
	// FieldOccurrences lists every taxonomy-confirmed field id occurrence
	// in discovery order. Repeats mean repeat mentions.
	FieldOccurrences []string

	// Categories lists the keyword categories that matched, in dictionary
	// order.
	Categories []string

	// FieldContexts and CategoryContexts map each matched field id or
	// category to the sentences containing the match, in text order.
	FieldContexts    map[string][]string
	CategoryContexts map[string][]string
}

// FieldSet returns the distinct matched field ids in first-occurrence order.
func (r Result) FieldSet() []string {
	seen := make(map[string]struct{}, len(r.FieldOccurrences))
	var out []string
	for _, id := range r.FieldOccurrences {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Scanner matches publications against a taxonomy and a keyword dictionary.
// A Scanner is safe for concurrent use: scanning is read-only.
type Scanner struct {
	tax  *taxonomy.Taxonomy
	dict *Dictionary
	seg  Segmenter
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSegmenter selects the sentence segmenter. The default is
// RegexSegmenter; pass WholeTextSegmenter{} for the trivial fallback.
func WithSegmenter(seg Segmenter) Option {
	return func(s *Scanner) {
		s.seg = seg
	}
}

// New creates a Scanner. A nil dictionary means no keyword matching.
func New(tax *taxonomy.Taxonomy, dict *Dictionary, opts ...Option) *Scanner {
	s := &Scanner{
		tax:  tax,
		dict: dict,
		seg:  RegexSegmenter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan examines a publication's title+abstract text. Field id matching is
// exact; only ids present in the taxonomy are reported (the literal pattern
// also fires on arbitrary numeric text, so unconfirmed ids are false
// positives). Keyword matching is case-insensitive. Empty text yields an
// empty result, never an error.
func (s *Scanner) Scan(pub publication.Publication) Result {
	return s.ScanText(pub.Text())
}

// ScanText is Scan on raw text.
func (s *Scanner) ScanText(text string) Result {
	res := Result{
		FieldContexts:    make(map[string][]string),
		CategoryContexts: make(map[string][]string),
	}
	if strings.TrimSpace(text) == "" {
		return res
	}

	var sentences []string // segmented lazily, only when something matches
	segment := func() []string {
		if sentences == nil {
			sentences = segmentSafe(s.seg, text)
		}
		return sentences
	}

	for _, id := range fieldIDPattern.FindAllString(text, -1) {
		if s.tax == nil || !s.tax.Contains(id) {
			continue
		}
		res.FieldOccurrences = append(res.FieldOccurrences, id)
		if _, seen := res.FieldContexts[id]; !seen {
			res.FieldContexts[id] = containing(segment(), func(sent string) bool {
				return strings.Contains(sent, id)
			})
		}
	}

	if s.dict != nil {
		lower := strings.ToLower(text)
		for i, cat := range s.dict.Categories {
			re := s.dict.match(i, lower)
			if re == nil {
				continue
			}
			res.Categories = append(res.Categories, cat.Name)
			res.CategoryContexts[cat.Name] = containing(segment(), re.MatchString)
		}
	}

	return res
}

// containing filters sentences by a match predicate, falling back to the
// whole set when no individual sentence matches (a match can straddle a
// segmentation boundary).
func containing(sentences []string, match func(string) bool) []string {
	var out []string
	for _, sent := range sentences {
		if match(sent) {
			out = append(out, sent)
		}
	}
	if out == nil {
		out = append(out, sentences...)
	}
	return out
}
