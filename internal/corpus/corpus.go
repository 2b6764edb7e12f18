// Package corpus parses the biobank publications listing (Schema 19) from
// its tab-separated and pseudo-XML export forms.
package corpus

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/matsen/fieldscope/internal/publication"
)

// Column headers of the tab-separated export. The header names are long and
// inconsistent upstream; keep them in one place.
const (
	colID              = "publication id (UKB internal)"
	colTitle           = "title"
	colKeywords        = "keywords"
	colAuthors         = "author(s)"
	colJournal         = "journal"
	colYear            = "year of publication"
	colPubDate         = "publication date"
	colAbstract        = "abstract"
	colPubMedID        = "PubMed ID"
	colDOI             = "DOI"
	colURL             = "URL"
	colTotalCitations  = "Total citations"
	colRecentCitations = "Recent citations (last 2 years)"
	colCitationUpdate  = "When citation counts last updated"
)

// ParseTSV reads the tab-separated publications export. Rows that cannot be
// read are collected as errors and skipped; a bad row never aborts the
// parse. Missing columns default to empty values.
func ParseTSV(r io.Reader) ([]publication.Publication, []error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("reading header: %w", err)}
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var pubs []publication.Publication
	var errs []error
	line := 1
	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}

		pubs = append(pubs, publication.Publication{
			ID:              get(row, colID),
			Title:           get(row, colTitle),
			Keywords:        splitList(get(row, colKeywords)),
			Authors:         splitList(get(row, colAuthors)),
			Journal:         get(row, colJournal),
			Year:            publication.FlexibleString(get(row, colYear)),
			PubDate:         get(row, colPubDate),
			Abstract:        get(row, colAbstract),
			PubMedID:        get(row, colPubMedID),
			DOI:             get(row, colDOI),
			URL:             get(row, colURL),
			TotalCitations:  publication.FlexibleString(get(row, colTotalCitations)),
			RecentCitations: publication.FlexibleString(get(row, colRecentCitations)),
			CitationUpdate:  get(row, colCitationUpdate),
		})
	}

	return pubs, errs
}

// xmlPublication mirrors one <publication> element of the pseudo-XML export.
type xmlPublication struct {
	ID              string `xml:"ukb_id"`
	Title           string `xml:"title"`
	Keywords        string `xml:"keywords"`
	Authors         string `xml:"authors"`
	Journal         string `xml:"journal"`
	Year            string `xml:"year"`
	PubDate         string `xml:"pub_date"`
	Abstract        string `xml:"abstract"`
	PubMedID        string `xml:"pubmed_id"`
	DOI             string `xml:"doi"`
	URL             string `xml:"url"`
	TotalCitations  string `xml:"citations_total"`
	RecentCitations string `xml:"citations_recent"`
	CitationUpdate  string `xml:"citations_updated"`
}

// ParseXML reads the pseudo-XML publications export. It tolerates any
// enclosing root element and decodes every <publication> element found.
func ParseXML(r io.Reader) ([]publication.Publication, []error) {
	dec := xml.NewDecoder(r)

	var pubs []publication.Publication
	var errs []error
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("decoding: %w", err))
			break
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "publication" {
			continue
		}

		var xp xmlPublication
		if err := dec.DecodeElement(&xp, &start); err != nil {
			errs = append(errs, fmt.Errorf("publication element: %w", err))
			continue
		}
		pubs = append(pubs, publication.Publication{
			ID:              strings.TrimSpace(xp.ID),
			Title:           strings.TrimSpace(xp.Title),
			Keywords:        splitList(xp.Keywords),
			Authors:         splitList(xp.Authors),
			Journal:         strings.TrimSpace(xp.Journal),
			Year:            publication.FlexibleString(strings.TrimSpace(xp.Year)),
			PubDate:         strings.TrimSpace(xp.PubDate),
			Abstract:        strings.TrimSpace(xp.Abstract),
			PubMedID:        strings.TrimSpace(xp.PubMedID),
			DOI:             strings.TrimSpace(xp.DOI),
			URL:             strings.TrimSpace(xp.URL),
			TotalCitations:  publication.FlexibleString(strings.TrimSpace(xp.TotalCitations)),
			RecentCitations: publication.FlexibleString(strings.TrimSpace(xp.RecentCitations)),
			CitationUpdate:  strings.TrimSpace(xp.CitationUpdate),
		})
	}

	return pubs, errs
}

// splitList splits a semicolon-separated export field into trimmed,
// non-empty entries.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
