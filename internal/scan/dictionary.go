package scan

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// KeywordCategory is one named entry in a keyword dictionary: an ordered
// list of case-insensitive patterns.
type KeywordCategory struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Dictionary is an ordered set of keyword categories. Order is significant:
// it fixes the output order of category matches and reports.
type Dictionary struct {
	Categories []KeywordCategory `yaml:"categories"`

	compiled [][]*regexp.Regexp
}

// Compile builds the case-insensitive matchers for every pattern. Must be
// called once before matching; LoadDictionary and the Default* constructors
// do this for you.
func (d *Dictionary) Compile() error {
	d.compiled = make([][]*regexp.Regexp, len(d.Categories))
	for i, cat := range d.Categories {
		if cat.Name == "" {
			return fmt.Errorf("dictionary entry %d has no name", i+1)
		}
		for _, p := range cat.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return fmt.Errorf("category %q pattern %q: %w", cat.Name, p, err)
			}
			d.compiled[i] = append(d.compiled[i], re)
		}
	}
	return nil
}

// Names returns the category names in dictionary order.
func (d *Dictionary) Names() []string {
	names := make([]string, len(d.Categories))
	for i, c := range d.Categories {
		names[i] = c.Name
	}
	return names
}

// match returns the compiled patterns for category i.
func (d *Dictionary) match(i int, text string) *regexp.Regexp {
	for _, re := range d.compiled[i] {
		if re.MatchString(text) {
			return re
		}
	}
	return nil
}

// LoadDictionary reads a keyword dictionary from a YAML file and compiles it.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(d.Categories) == 0 {
		return nil, fmt.Errorf("%s defines no categories", path)
	}
	if err := d.Compile(); err != nil {
		return nil, err
	}
	return &d, nil
}

// DefaultDiseaseDictionary returns the built-in disease category keywords.
func DefaultDiseaseDictionary() *Dictionary {
	d := &Dictionary{Categories: []KeywordCategory{
		{Name: "cardiovascular", Patterns: []string{
			`cardiovascular disease`, `heart disease`, `stroke`,
			`hypertension`, `atherosclerosis`, `arrhythmia`,
			`coronary artery disease`, `heart failure`,
		}},
		{Name: "cancer", Patterns: []string{
			`cancer`, `tumour`, `carcinoma`, `neoplasm`, `lymphoma`,
			`leukemia`, `melanoma`, `oncology`, `metastasis`,
		}},
		{Name: "neurodegenerative", Patterns: []string{
			`alzheimer`, `parkinson`, `dementia`, `neurodegeneration`,
			`cognitive decline`, `brain aging`, `neurological`,
		}},
		{Name: "metabolic", Patterns: []string{
			`diabetes`, `obesity`, `metabolic syndrome`,
			`thyroid disease`, `insulin resistance`,
		}},
		{Name: "psychiatric", Patterns: []string{
			`depression`, `anxiety`, `mental health`, `schizophrenia`,
			`bipolar disorder`, `psychiatric illness`,
		}},
		{Name: "respiratory", Patterns: []string{
			`asthma`, `copd`, `lung disease`, `respiratory disease`,
			`pulmonary disease`, `covid-19`, `pneumonia`,
		}},
	}}
	if err := d.Compile(); err != nil {
		panic(err) // built-in patterns are constants
	}
	return d
}

// DefaultFeatureDictionary returns the built-in data-feature category
// patterns, selectable as the "feature" dictionary in place of the disease
// categories.
func DefaultFeatureDictionary() *Dictionary {
	d := &Dictionary{Categories: []KeywordCategory{
		{Name: "genetic", Patterns: []string{
			`(SNP|variant|allele|gene|locus|genomic|genetic)`,
			`(GWAS|polygenic|heritability|QTL)`,
		}},
		{Name: "imaging", Patterns: []string{
			`(MRI|imaging|brain volume|white matter|grey matter)`,
			`(cardiac|liver|scanning|radiological|image)`,
		}},
		{Name: "lifestyle", Patterns: []string{
			`(diet|exercise|smoking|alcohol|physical activity)`,
			`(sleep|nutrition|BMI|obesity|lifestyle)`,
		}},
		{Name: "biomarkers", Patterns: []string{
			`(cholesterol|triglycerides|blood pressure|glucose)`,
			`(biomarker|protein|metabolite|hormone)`,
		}},
		{Name: "environmental", Patterns: []string{
			`(pollution|air quality|socioeconomic|education)`,
			`(income|occupation|environmental|exposure)`,
		}},
		{Name: "clinical", Patterns: []string{
			`(medication|treatment|diagnosis|symptoms)`,
			`(comorbidity|disease history|clinical)`,
		}},
	}}
	if err := d.Compile(); err != nil {
		panic(err)
	}
	return d
}
