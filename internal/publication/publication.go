// Package publication defines the core domain types for biobank publications.
package publication

import (
	"strconv"
	"strings"
)

// Publication represents a single record from the biobank publications listing
// (Schema 19). Records are ingested once per analysis run and treated as
// read-only facts afterwards.
type Publication struct {
	// Identity
	ID  string `json:"publication_id"` // Biobank-internal identifier
	DOI string `json:"doi"`

	// Metadata
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Journal  string   `json:"journal"`
	Keywords []string `json:"keywords,omitempty"`
	Authors  []string `json:"authors,omitempty"`

	// Publication date. Year arrives as string, int, or not at all in
	// upstream exports, so both fields stay flexible.
	Year    FlexibleString `json:"year"`
	PubDate string         `json:"publication_date,omitempty"`

	// Citation counts as reported upstream. Frequently blank or non-numeric.
	TotalCitations  FlexibleString `json:"total_citations"`
	RecentCitations FlexibleString `json:"recent_citations,omitempty"`
	CitationUpdate  string         `json:"citation_update,omitempty"`

	// External identifiers
	PubMedID string `json:"pubmed_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Key returns the identity used for paper-set deduplication. Falls back to
// the title when the upstream export omits the internal id.
func (p Publication) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Title
}

// Text returns the scannable text of the publication: title and abstract,
// in that order, space-joined.
func (p Publication) Text() string {
	switch {
	case p.Title == "":
		return p.Abstract
	case p.Abstract == "":
		return p.Title
	}
	return p.Title + " " + p.Abstract
}

// YearInt returns the publication year as an integer. The second return is
// false when the year is missing or not parseable.
func (p Publication) YearInt() (int, bool) {
	s := strings.TrimSpace(p.Year.String())
	if s == "" {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}

// Citations returns the total citation count coerced to a non-negative
// integer. Missing, non-numeric, or negative values coerce to 0 rather than
// propagating a type fault.
func (p Publication) Citations() int {
	s := strings.TrimSpace(p.TotalCitations.String())
	if s == "" {
		return 0
	}
	// Upstream sometimes writes counts as floats ("42.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if f < 0 {
		return 0
	}
	return int(f)
}
