// Package report renders aggregated analysis results into markdown, CSV,
// and HTML outputs.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/matsen/fieldscope/internal/storage"
)

// TopFieldsPerCategory and TopContributionsPerCategory cap the detail
// sections of the reports.
const (
	TopFieldsPerCategory        = 5
	TopContributionsPerCategory = 5
)

// CategoryUsage renders the category usage report. Coverage rows arrive in
// taxonomy order; usage rows sorted by mentions descending.
func CategoryUsage(coverage []storage.CoverageRow, usage []storage.UsageRow) string {
	var b strings.Builder
	b.WriteString("# UK Biobank Data Category Usage Report\n")

	byCategory := make(map[string][]storage.UsageRow)
	for _, u := range usage {
		byCategory[u.Category] = append(byCategory[u.Category], u)
	}

	for _, cov := range coverage {
		b.WriteString(fmt.Sprintf("\n## %s\n", cov.Category))
		b.WriteString(fmt.Sprintf("- Total Fields: %d\n", cov.TotalFields))
		b.WriteString(fmt.Sprintf("- Fields Used in Research: %d\n", cov.UsedFields))
		b.WriteString(fmt.Sprintf("- Total Mentions: %d\n", cov.TotalMentions))
		b.WriteString(fmt.Sprintf("- Number of Papers: %d\n", cov.Papers))

		fields := byCategory[cov.Category]
		if len(fields) == 0 {
			continue
		}
		if len(fields) > TopFieldsPerCategory {
			fields = fields[:TopFieldsPerCategory]
		}

		b.WriteString("\n### Most Used Fields:\n")
		for _, f := range fields {
			b.WriteString(fmt.Sprintf("\n#### %s (Field %s)\n", f.FieldName, f.FieldID))
			b.WriteString(fmt.Sprintf("- Mentions: %d\n", f.Mentions))
			b.WriteString(fmt.Sprintf("- Papers: %d\n", f.Papers))
			if len(f.Contexts) > 0 {
				b.WriteString("\nExample Usage Context:\n")
				b.WriteString(fmt.Sprintf("  %s\n", f.Contexts[0]))
			}
		}
	}

	return b.String()
}

// Contributions renders the disease contributions report. Rows arrive
// grouped by category in rank order; category group order is preserved.
// Categories with no contributions are simply absent.
func Contributions(rows []storage.ContributionRow) string {
	var b strings.Builder
	b.WriteString("# UK Biobank Major Disease Contributions\n")

	var order []string
	byCategory := make(map[string][]storage.ContributionRow)
	for _, r := range rows {
		if _, seen := byCategory[r.Category]; !seen {
			order = append(order, r.Category)
		}
		byCategory[r.Category] = append(byCategory[r.Category], r)
	}

	for _, cat := range order {
		papers := byCategory[cat]
		b.WriteString(fmt.Sprintf("\n## %s Disease\n", titleCase(cat)))

		totalCitations := 0
		totalScore := 0.0
		for _, p := range papers {
			totalCitations += p.Citations
			totalScore += p.ImpactScore
		}

		b.WriteString("\n### Overview\n")
		b.WriteString(fmt.Sprintf("- Total Publications: %d\n", len(papers)))
		b.WriteString(fmt.Sprintf("- Total Citations: %d\n", totalCitations))
		b.WriteString(fmt.Sprintf("- Average Impact Score: %.2f\n", totalScore/float64(len(papers))))

		b.WriteString("\n### Key Contributions\n")
		top := papers
		if len(top) > TopContributionsPerCategory {
			top = top[:TopContributionsPerCategory]
		}
		for i, p := range top {
			b.WriteString(fmt.Sprintf("\n#### %d. %s\n", i+1, p.Title))
			b.WriteString(fmt.Sprintf("- Year: %s\n", p.Year))
			b.WriteString(fmt.Sprintf("- Journal: %s\n", p.Journal))
			b.WriteString(fmt.Sprintf("- Citations: %d\n", p.Citations))
			if len(p.Findings) > 0 {
				b.WriteString("\nKey Findings:\n")
				for _, f := range p.Findings {
					b.WriteString(fmt.Sprintf("- %s\n", f))
				}
			}
			if p.DOI != "" {
				b.WriteString(fmt.Sprintf("\nDOI: %s\n", p.DOI))
			}
		}
	}

	return b.String()
}

// CoverageCSV renders coverage rows as CSV for tabular export.
func CoverageCSV(coverage []storage.CoverageRow) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"category", "total_fields", "used_fields", "total_mentions", "papers", "usage_percent"}
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("writing header: %w", err)
	}
	for _, c := range coverage {
		record := []string{
			c.Category,
			strconv.Itoa(c.TotalFields),
			strconv.Itoa(c.UsedFields),
			strconv.Itoa(c.TotalMentions),
			strconv.Itoa(c.Papers),
			strconv.FormatFloat(c.UsagePercent, 'f', 1, 64),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("writing row for %s: %w", c.Category, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing CSV: %w", err)
	}

	return buf.String(), nil
}

// RenderHTML converts a markdown report into a standalone HTML page.
func RenderHTML(title, markdown string) ([]byte, error) {
	var content bytes.Buffer
	if err := goldmark.New().Convert([]byte(markdown), &content); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!doctype html><html><head><meta charset=\"utf-8\"><title>")
	page.WriteString(htmlEscape(title))
	page.WriteString("</title></head><body>\n")
	page.Write(content.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// titleCase uppercases the first letter of each word. Category names are
// lowercase single words ("cardiovascular"), so no locale handling needed.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
