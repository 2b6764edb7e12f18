package scan

import (
	"reflect"
	"testing"

	"github.com/matsen/fieldscope/internal/publication"
	"github.com/matsen/fieldscope/internal/taxonomy"
)

func testTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	tax, _ := taxonomy.Build(
		[]taxonomy.Row{
			{"cat_id": "100", "title": "Lifestyle"},
			{"cat_id": "110", "title": "Diet", "parent_id": "100"},
		},
		[]taxonomy.Row{
			{"field_id": "100-0.0", "title": "Energy intake", "category": "Diet"},
			{"field_id": "110-0.0", "title": "Step count", "category": "Diet"},
		},
	)
	return tax
}

func TestScanFieldIDs(t *testing.T) {
	s := New(testTaxonomy(t), nil)

	pub := publication.Publication{
		Title:    "Diet study",
		Abstract: "Participants reported field 100-0.0 energy intake. Field 100-0.0 appeared twice, 110-0.0 once.",
	}
	res := s.Scan(pub)

	want := []string{"100-0.0", "100-0.0", "110-0.0"}
	if !reflect.DeepEqual(res.FieldOccurrences, want) {
		t.Errorf("FieldOccurrences = %v, want %v", res.FieldOccurrences, want)
	}
	if got := res.FieldSet(); !reflect.DeepEqual(got, []string{"100-0.0", "110-0.0"}) {
		t.Errorf("FieldSet = %v", got)
	}
}

func TestScanUnknownFieldDiscarded(t *testing.T) {
	s := New(testTaxonomy(t), nil)

	// "12-3.4" matches the literal pattern but is not in the taxonomy.
	res := s.ScanText("We used 12-3.4 and also 100-0.0 here.")

	if !reflect.DeepEqual(res.FieldOccurrences, []string{"100-0.0"}) {
		t.Errorf("FieldOccurrences = %v, want only the taxonomy-confirmed id", res.FieldOccurrences)
	}
	if _, ok := res.FieldContexts["12-3.4"]; ok {
		t.Error("context captured for a non-taxonomy id")
	}
}

func TestScanKeywordsCaseInsensitive(t *testing.T) {
	s := New(nil, DefaultDiseaseDictionary())

	res := s.ScanText("A large study of DIABETES and Heart Failure outcomes.")

	want := []string{"cardiovascular", "metabolic"}
	if !reflect.DeepEqual(res.Categories, want) {
		t.Errorf("Categories = %v, want %v (dictionary order)", res.Categories, want)
	}
}

func TestScanContexts(t *testing.T) {
	s := New(testTaxonomy(t), DefaultDiseaseDictionary())

	res := s.ScanText("Intro sentence here. Field 100-0.0 tracked energy intake. Diabetes risk fell.")

	fieldCtx := res.FieldContexts["100-0.0"]
	if len(fieldCtx) != 1 || fieldCtx[0] != "Field 100-0.0 tracked energy intake" {
		t.Errorf("field contexts = %v", fieldCtx)
	}
	catCtx := res.CategoryContexts["metabolic"]
	if len(catCtx) != 1 || catCtx[0] != "Diabetes risk fell" {
		t.Errorf("category contexts = %v", catCtx)
	}
}

func TestScanEmptyText(t *testing.T) {
	s := New(testTaxonomy(t), DefaultDiseaseDictionary())

	for _, text := range []string{"", "   "} {
		res := s.ScanText(text)
		if len(res.FieldOccurrences) != 0 || len(res.Categories) != 0 {
			t.Errorf("ScanText(%q) not empty: %+v", text, res)
		}
	}
}

func TestScanFeatureDictionary(t *testing.T) {
	s := New(nil, DefaultFeatureDictionary())

	res := s.ScanText("A GWAS of sleep duration and cholesterol levels.")

	want := []string{"genetic", "lifestyle", "biomarkers"}
	if !reflect.DeepEqual(res.Categories, want) {
		t.Errorf("Categories = %v, want %v", res.Categories, want)
	}
}
