// Package storage persists the publication cache and analysis results in
// JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/fieldscope/internal/publication"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines
// (1MB per line). Abstracts are long but never this long.
const MaxJSONLLineCapacity = 1024 * 1024

// ReadAll reads all publications from a JSONL cache file. A missing file is
// an empty corpus, not an error.
func ReadAll(path string) ([]publication.Publication, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening publications file: %w", err)
	}
	defer f.Close()

	var pubs []publication.Publication
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var pub publication.Publication
		if err := json.Unmarshal(line, &pub); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		pubs = append(pubs, pub)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading publications file: %w", err)
	}

	return pubs, nil
}

// WriteAll writes all publications to a JSONL file, replacing existing
// content.
func WriteAll(path string, pubs []publication.Publication) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating publications file: %w", err)
	}
	defer f.Close()

	for i, pub := range pubs {
		data, err := json.Marshal(pub)
		if err != nil {
			return fmt.Errorf("encoding publication %d: %w", i, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("writing publication %d: %w", i, err)
		}
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}

	return nil
}

// Append adds a publication to the end of a JSONL file.
func Append(path string, pub publication.Publication) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening publications file for append: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(pub)
	if err != nil {
		return fmt.Errorf("encoding publication: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing publication: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}

	return nil
}

// FindByDOI searches for a publication by DOI.
func FindByDOI(pubs []publication.Publication, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, pub := range pubs {
		if pub.DOI == doi {
			return i, true
		}
	}
	return -1, false
}

// FindByID searches for a publication by its biobank-internal id.
func FindByID(pubs []publication.Publication, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i, pub := range pubs {
		if pub.ID == id {
			return i, true
		}
	}
	return -1, false
}
