package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite analysis store.
type DB struct {
	db *sql.DB
}

// Run identifies one analysis run.
type Run struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Publications   int       `json:"publications"`
	TaxonomyFields int       `json:"taxonomy_fields"`
}

// NewRun creates a run record with a fresh id.
func NewRun(publications, taxonomyFields int) Run {
	return Run{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Publications:   publications,
		TaxonomyFields: taxonomyFields,
	}
}

// UsageRow is the stored form of a per-field usage record.
type UsageRow struct {
	FieldID     string   `json:"field_id"`
	FieldName   string   `json:"field_name"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Mentions    int      `json:"mentions"`
	Papers      int      `json:"papers"`
	Contexts    []string `json:"contexts,omitempty"`
}

// CoverageRow is the stored form of per-category coverage.
type CoverageRow struct {
	Category      string  `json:"category"`
	TotalFields   int     `json:"total_fields"`
	UsedFields    int     `json:"used_fields"`
	TotalMentions int     `json:"total_mentions"`
	Papers        int     `json:"papers"`
	UsagePercent  float64 `json:"usage_percent"`
}

// ContributionRow is the stored form of a ranked contribution.
type ContributionRow struct {
	Category    string   `json:"category"`
	Rank        int      `json:"rank"`
	Title       string   `json:"title"`
	Year        string   `json:"year"`
	Journal     string   `json:"journal"`
	Citations   int      `json:"citations"`
	ImpactScore float64  `json:"impact_score"`
	Findings    []string `json:"findings,omitempty"`
	DOI         string   `json:"doi,omitempty"`
	PubMedID    string   `json:"pubmed_id,omitempty"`
}

// OpenDB opens or creates the SQLite analysis store at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			publications INTEGER NOT NULL,
			taxonomy_fields INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS usage_records (
			run_id TEXT NOT NULL REFERENCES analysis_runs(id),
			field_id TEXT NOT NULL,
			field_name TEXT,
			category TEXT,
			subcategory TEXT,
			mentions INTEGER NOT NULL,
			papers INTEGER NOT NULL,
			contexts_json TEXT,
			PRIMARY KEY (run_id, field_id)
		);

		CREATE TABLE IF NOT EXISTS category_coverage (
			run_id TEXT NOT NULL REFERENCES analysis_runs(id),
			category TEXT NOT NULL,
			position INTEGER NOT NULL,
			total_fields INTEGER NOT NULL,
			used_fields INTEGER NOT NULL,
			total_mentions INTEGER NOT NULL,
			papers INTEGER NOT NULL,
			usage_percent REAL NOT NULL,
			PRIMARY KEY (run_id, position)
		);

		CREATE TABLE IF NOT EXISTS contributions (
			run_id TEXT NOT NULL REFERENCES analysis_runs(id),
			category TEXT NOT NULL,
			rank INTEGER NOT NULL,
			title TEXT NOT NULL,
			year TEXT,
			journal TEXT,
			citations INTEGER NOT NULL,
			impact_score REAL NOT NULL,
			findings_json TEXT,
			doi TEXT,
			pubmed_id TEXT,
			PRIMARY KEY (run_id, category, rank)
		);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRun stores one analysis run and all of its derived rows in a single
// transaction.
func (d *DB) SaveRun(run Run, usage []UsageRow, coverage []CoverageRow, contribs []ContributionRow) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO analysis_runs (id, created_at, publications, taxonomy_fields) VALUES (?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Unix(), run.Publications, run.TaxonomyFields,
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, u := range usage {
		contexts, err := json.Marshal(u.Contexts)
		if err != nil {
			return fmt.Errorf("encoding contexts for %s: %w", u.FieldID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO usage_records (run_id, field_id, field_name, category, subcategory, mentions, papers, contexts_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, u.FieldID, u.FieldName, u.Category, u.Subcategory, u.Mentions, u.Papers, string(contexts),
		); err != nil {
			return fmt.Errorf("inserting usage record %s: %w", u.FieldID, err)
		}
	}

	for i, c := range coverage {
		if _, err := tx.Exec(
			`INSERT INTO category_coverage (run_id, category, position, total_fields, used_fields, total_mentions, papers, usage_percent)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, c.Category, i, c.TotalFields, c.UsedFields, c.TotalMentions, c.Papers, c.UsagePercent,
		); err != nil {
			return fmt.Errorf("inserting coverage for %s: %w", c.Category, err)
		}
	}

	for _, c := range contribs {
		findings, err := json.Marshal(c.Findings)
		if err != nil {
			return fmt.Errorf("encoding findings: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO contributions (run_id, category, rank, title, year, journal, citations, impact_score, findings_json, doi, pubmed_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, c.Category, c.Rank, c.Title, c.Year, c.Journal, c.Citations, c.ImpactScore, string(findings), c.DOI, c.PubMedID,
		); err != nil {
			return fmt.Errorf("inserting contribution %q: %w", c.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// LatestRun returns the most recent analysis run, or nil when the store is
// empty.
func (d *DB) LatestRun() (*Run, error) {
	row := d.db.QueryRow(
		`SELECT id, created_at, publications, taxonomy_fields
		 FROM analysis_runs ORDER BY created_at DESC, id DESC LIMIT 1`)

	var run Run
	var created int64
	if err := row.Scan(&run.ID, &created, &run.Publications, &run.TaxonomyFields); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("loading latest run: %w", err)
	}
	run.CreatedAt = time.Unix(created, 0).UTC()
	return &run, nil
}

// LoadUsage returns the usage rows of a run, mention count descending with
// field id as tie-break.
func (d *DB) LoadUsage(runID string) ([]UsageRow, error) {
	rows, err := d.db.Query(
		`SELECT field_id, field_name, category, subcategory, mentions, papers, contexts_json
		 FROM usage_records WHERE run_id = ? ORDER BY mentions DESC, field_id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying usage records: %w", err)
	}
	defer rows.Close()

	var out []UsageRow
	for rows.Next() {
		var u UsageRow
		var contexts string
		if err := rows.Scan(&u.FieldID, &u.FieldName, &u.Category, &u.Subcategory, &u.Mentions, &u.Papers, &contexts); err != nil {
			return nil, fmt.Errorf("scanning usage record: %w", err)
		}
		if contexts != "" {
			if err := json.Unmarshal([]byte(contexts), &u.Contexts); err != nil {
				return nil, fmt.Errorf("decoding contexts for %s: %w", u.FieldID, err)
			}
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// LoadCoverage returns the coverage rows of a run in their stored order.
func (d *DB) LoadCoverage(runID string) ([]CoverageRow, error) {
	rows, err := d.db.Query(
		`SELECT category, total_fields, used_fields, total_mentions, papers, usage_percent
		 FROM category_coverage WHERE run_id = ? ORDER BY position ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying coverage: %w", err)
	}
	defer rows.Close()

	var out []CoverageRow
	for rows.Next() {
		var c CoverageRow
		if err := rows.Scan(&c.Category, &c.TotalFields, &c.UsedFields, &c.TotalMentions, &c.Papers, &c.UsagePercent); err != nil {
			return nil, fmt.Errorf("scanning coverage: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LoadContributions returns the ranked contributions of a run ordered by
// category then rank.
func (d *DB) LoadContributions(runID string) ([]ContributionRow, error) {
	rows, err := d.db.Query(
		`SELECT category, rank, title, year, journal, citations, impact_score, findings_json, doi, pubmed_id
		 FROM contributions WHERE run_id = ? ORDER BY category ASC, rank ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying contributions: %w", err)
	}
	defer rows.Close()

	var out []ContributionRow
	for rows.Next() {
		var c ContributionRow
		var findings string
		if err := rows.Scan(&c.Category, &c.Rank, &c.Title, &c.Year, &c.Journal, &c.Citations, &c.ImpactScore, &findings, &c.DOI, &c.PubMedID); err != nil {
			return nil, fmt.Errorf("scanning contribution: %w", err)
		}
		if findings != "" {
			if err := json.Unmarshal([]byte(findings), &c.Findings); err != nil {
				return nil, fmt.Errorf("decoding findings: %w", err)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountRuns returns the number of stored analysis runs.
func (d *DB) CountRuns() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM analysis_runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}
