package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/matsen/fieldscope/internal/taxonomy"
)

// ParseTable reads a tab-separated schema export into header-keyed rows.
// Short rows are padded with empty values; extra cells are dropped. An
// empty input yields an empty table, not an error.
func ParseTable(r io.Reader) ([]taxonomy.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []taxonomy.Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("reading row %d: %w", len(rows)+2, err)
		}

		row := make(taxonomy.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = strings.TrimSpace(record[i])
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// bytesReader adapts a byte slice for the table and corpus parsers.
func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
