// Package pdf extracts text and identifiers from local PDF files so a
// paper on disk can join the publication corpus.
package pdf

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/fieldscope/internal/publication"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// doiSearchPages limits the DOI search; the DOI is almost always on the
// first page.
const doiSearchPages = 3

// ExtractDOI extracts a DOI from a PDF file. An empty result with nil error
// means no DOI was found.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	maxPages := doiSearchPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}

	return "", nil
}

// findDOI finds and cleans the first DOI in text.
func findDOI(text string) string {
	match := doiPattern.FindString(text)
	if match == "" {
		return ""
	}
	// Trailing punctuation is sentence context, not part of the DOI.
	return strings.TrimRight(match, ".,;:)")
}

// ExtractText extracts plain text from the first N pages of a PDF
// (all pages when maxPages <= 0).
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// AsPublication builds a corpus record from a local PDF. The title falls
// back to the file name when the first page yields nothing usable; the
// extracted text stands in for the abstract so scanning works the same as
// for fetched records.
func AsPublication(filePath string) (publication.Publication, error) {
	text, err := ExtractText(filePath, 0)
	if err != nil {
		return publication.Publication{}, fmt.Errorf("extracting text from %s: %w", filePath, err)
	}

	doi, err := ExtractDOI(filePath)
	if err != nil {
		return publication.Publication{}, fmt.Errorf("extracting DOI from %s: %w", filePath, err)
	}

	title := firstSubstantialLine(text)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}

	return publication.Publication{
		Title:    title,
		Abstract: strings.TrimSpace(text),
		DOI:      doi,
	}, nil
}

// minTitleLength filters out page headers and journal banners when guessing
// a title.
const minTitleLength = 20

func firstSubstantialLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= minTitleLength {
			return line
		}
	}
	return ""
}
