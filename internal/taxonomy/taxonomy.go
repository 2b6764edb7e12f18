// Package taxonomy builds the category/subcategory/field hierarchy from the
// biobank showcase schema tables.
package taxonomy

import "strings"

// Synthetic bucket for fields whose category reference matches no subcategory.
// This is a deliberate fallback for inconsistent upstream keys, not an error.
const (
	UncategorizedID = "uncategorized"
	DefaultSubcatID = "default"
	missingSentinel = "nan"
)

// Row is a single record from a row-oriented schema table, keyed by column
// name. Upstream exports drift between column names for the same value, so
// lookups go through Get with an ordered list of candidates.
type Row map[string]string

// Get returns the first non-empty value among the named columns.
func (r Row) Get(names ...string) string {
	for _, n := range names {
		if v, ok := r[n]; ok && v != "" {
			return v
		}
	}
	return ""
}

// Field is a single named, typed data element in the catalog.
type Field struct {
	ID          string `json:"field_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Subcategory groups fields under a category.
type Subcategory struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Category is a root node of the hierarchy.
type Category struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Subcategories []*Subcategory `json:"subcategories"`
}

// FieldMeta is the flat lookup view of a field: where it lives in the tree.
type FieldMeta struct {
	Name        string
	Type        string
	Category    string // category display name
	Subcategory string // subcategory display name
}

// Taxonomy is the built hierarchy plus a flat field-id index. It is
// constructed once per run and never mutated afterwards.
type Taxonomy struct {
	Categories []*Category

	index map[string]FieldMeta
	order []string // field ids in encounter order
}

// Stats counts rows skipped during the build.
type Stats struct {
	SkippedCategoryRows int
	SkippedFieldRows    int
}

// Lookup returns the metadata for a field id, or false if the id is not part
// of the taxonomy.
func (t *Taxonomy) Lookup(fieldID string) (FieldMeta, bool) {
	m, ok := t.index[fieldID]
	return m, ok
}

// Contains reports whether the field id is part of the taxonomy.
func (t *Taxonomy) Contains(fieldID string) bool {
	_, ok := t.index[fieldID]
	return ok
}

// FieldIDs returns all field ids in encounter order.
func (t *Taxonomy) FieldIDs() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// TotalFields returns the number of fields in the taxonomy.
func (t *Taxonomy) TotalFields() int {
	return len(t.order)
}

// Empty reports whether the taxonomy holds no categories at all.
func (t *Taxonomy) Empty() bool {
	return len(t.Categories) == 0
}

// Build assembles a taxonomy from the categories and fields tables.
//
// The first pass classifies category rows: a row with a present parent id
// (non-empty and not the upstream "nan" sentinel) becomes a subcategory
// nested under that parent; a row without one becomes a root category.
// Parents referenced before their own row appears are created as
// placeholders in reference order.
//
// The second pass assigns each field to a subcategory by textual match of
// the field's category reference against subcategory display names: the
// first subcategory (in encounter order) whose name equals or contains the
// reference wins. This loose name join is a documented tolerance for
// inconsistent upstream keys; switching to a strict id join would change
// output on real inputs. Fields that match nothing land in the synthetic
// uncategorized/default bucket.
//
// Empty or missing input tables produce an empty taxonomy; rows without an
// id are skipped and counted.
func Build(categories, fields []Row) (*Taxonomy, Stats) {
	b := &builder{
		tax:    &Taxonomy{index: make(map[string]FieldMeta)},
		byID:   make(map[string]*Category),
		subIDs: make(map[*Category]map[string]*Subcategory),
	}
	var stats Stats

	for _, row := range categories {
		catID := row.Get("cat_id")
		if catID == "" {
			stats.SkippedCategoryRows++
			continue
		}
		name := row.Get("title", "cat_name")
		parentID := row.Get("parent_id")

		if parentID != "" && parentID != missingSentinel {
			parent := b.category(parentID)
			sub := b.subcategory(parent, catID)
			sub.Name = name
		} else {
			b.category(catID).Name = name
		}
	}

	for _, row := range fields {
		fieldID := row.Get("field_id")
		if fieldID == "" {
			stats.SkippedFieldRows++
			continue
		}

		field := Field{
			ID:          fieldID,
			Name:        row.Get("title", "field_name"),
			Type:        row.Get("type"),
			Description: row.Get("description"),
		}
		catRef := row.Get("category", "cat_id")

		cat, sub := b.place(catRef)
		sub.Fields = append(sub.Fields, field)
		if _, seen := b.tax.index[fieldID]; !seen {
			b.tax.order = append(b.tax.order, fieldID)
		}
		b.tax.index[fieldID] = FieldMeta{
			Name:        field.Name,
			Type:        field.Type,
			Category:    cat.Name,
			Subcategory: sub.Name,
		}
	}

	return b.tax, stats
}

type builder struct {
	tax    *Taxonomy
	byID   map[string]*Category
	subIDs map[*Category]map[string]*Subcategory
}

// category returns the category with the given id, creating it in encounter
// order if needed.
func (b *builder) category(id string) *Category {
	if c, ok := b.byID[id]; ok {
		return c
	}
	c := &Category{ID: id}
	b.byID[id] = c
	b.subIDs[c] = make(map[string]*Subcategory)
	b.tax.Categories = append(b.tax.Categories, c)
	return c
}

// subcategory returns the subcategory with the given id under the category,
// creating it in encounter order if needed.
func (b *builder) subcategory(c *Category, id string) *Subcategory {
	if s, ok := b.subIDs[c][id]; ok {
		return s
	}
	s := &Subcategory{ID: id}
	b.subIDs[c][id] = s
	c.Subcategories = append(c.Subcategories, s)
	return s
}

// place finds the first subcategory whose display name equals or contains
// the category reference, scanning categories and subcategories in encounter
// order. When nothing matches it returns the uncategorized/default bucket.
func (b *builder) place(catRef string) (*Category, *Subcategory) {
	for _, cat := range b.tax.Categories {
		if cat.ID == UncategorizedID {
			continue
		}
		for _, sub := range cat.Subcategories {
			if sub.Name == catRef || strings.Contains(sub.Name, catRef) {
				return cat, sub
			}
		}
	}
	cat := b.category(UncategorizedID)
	return cat, b.subcategory(cat, DefaultSubcatID)
}
