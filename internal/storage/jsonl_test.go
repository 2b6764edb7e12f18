package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matsen/fieldscope/internal/publication"
)

func testPublications() []publication.Publication {
	return []publication.Publication{
		{
			ID:             "101",
			DOI:            "10.1000/ng.101",
			Title:          "Genetic associations with severity",
			Abstract:       "We investigated genetic variants.",
			Journal:        "Nature Genetics",
			Keywords:       []string{"genetics", "covid"},
			Authors:        []string{"A Smith", "B Jones"},
			Year:           "2023",
			TotalCitations: "150",
			PubMedID:       "12345",
		},
		{
			ID:      "102",
			Title:   "Brain imaging and decline",
			Journal: "NeuroImage",
		},
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publications.jsonl")
	pubs := testPublications()

	if err := WriteAll(path, pubs); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !reflect.DeepEqual(got, pubs) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, pubs)
	}
}

func TestReadAllMissingFile(t *testing.T) {
	got, err := ReadAll(filepath.Join(t.TempDir(), "absent.jsonl"))
	if err != nil || got != nil {
		t.Errorf("missing file: got %v, %v; want nil, nil", got, err)
	}
}

func TestReadAllSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publications.jsonl")
	content := `{"publication_id":"1","title":"a"}` + "\n\n" + `{"publication_id":"2","title":"b"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d publications, want 2", len(got))
	}
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publications.jsonl")
	pubs := testPublications()

	for _, p := range pubs {
		if err := Append(path, p); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !reflect.DeepEqual(got, pubs) {
		t.Errorf("append mismatch: %+v", got)
	}
}

func TestFinders(t *testing.T) {
	pubs := testPublications()

	if i, ok := FindByDOI(pubs, "10.1000/ng.101"); !ok || i != 0 {
		t.Errorf("FindByDOI = %d, %v", i, ok)
	}
	if _, ok := FindByDOI(pubs, ""); ok {
		t.Error("empty DOI should not match")
	}
	if i, ok := FindByID(pubs, "102"); !ok || i != 1 {
		t.Errorf("FindByID = %d, %v", i, ok)
	}
	if _, ok := FindByID(pubs, "999"); ok {
		t.Error("unknown id should not match")
	}
}
