package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"citefill/internal/record"

	_ "modernc.org/sqlite"
)

// Index is an ephemeral SQLite view of the cache file, rebuilt on demand for
// aggregate queries. The JSON file stays the source of truth.
type Index struct {
	db *sql.DB
}

// OpenIndex opens or creates the SQLite index at the given path.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createIndexSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}

	return &Index{db: db}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func createIndexSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			cache_key TEXT PRIMARY KEY,
			input_title TEXT NOT NULL,
			title TEXT,
			authors_json TEXT NOT NULL,
			year INTEGER,
			venue TEXT,
			citations INTEGER,
			url TEXT,
			source TEXT NOT NULL,
			error TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year) WHERE year IS NOT NULL;
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and repopulates it from the given records.
// Returns the number of records inserted.
func (ix *Index) Rebuild(recs []*record.Record) (int, error) {
	tx, err := ix.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM papers"); err != nil {
		return 0, fmt.Errorf("clearing papers table: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO papers (
			cache_key, input_title, title, authors_json,
			year, venue, citations, url, source, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer stmt.Close()

	count := 0
	for _, rec := range recs {
		authorsJSON, err := json.Marshal(rec.Authors)
		if err != nil {
			return 0, fmt.Errorf("encoding authors for %q: %w", rec.CacheKey, err)
		}

		var year any
		if rec.Year != 0 {
			year = rec.Year
		}
		var citations any
		if rec.Citations != nil {
			citations = *rec.Citations
		}
		var errVal any
		if rec.Error != "" {
			errVal = rec.Error
		}

		if _, err := stmt.Exec(
			rec.CacheKey, rec.InputTitle, rec.Title, string(authorsJSON),
			year, rec.Venue, citations, rec.URL, rec.Source, errVal,
		); err != nil {
			return 0, fmt.Errorf("inserting %q: %w", rec.CacheKey, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}

	return count, nil
}

// DecadeCount is one row of the records-per-decade aggregate.
type DecadeCount struct {
	Decade int `json:"decade"`
	Count  int `json:"count"`
}

// Stats summarizes the indexed records.
type Stats struct {
	Total          int           `json:"total"`
	Resolved       int           `json:"resolved"`
	NoResult       int           `json:"no_result"`
	WithYear       int           `json:"with_year"`
	WithCitations  int           `json:"with_citations"`
	TotalCitations int           `json:"total_citations"`
	ByDecade       []DecadeCount `json:"by_decade,omitempty"`
}

// Stats computes aggregate counts over the indexed records.
func (ix *Index) Stats() (*Stats, error) {
	stats := &Stats{}

	row := ix.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE error IS NULL AND title IS NOT NULL AND title != ''),
			COUNT(*) FILTER (WHERE error = ?),
			COUNT(year),
			COUNT(citations),
			COALESCE(SUM(citations), 0)
		FROM papers
	`, record.ErrorNoResult)
	if err := row.Scan(
		&stats.Total, &stats.Resolved, &stats.NoResult,
		&stats.WithYear, &stats.WithCitations, &stats.TotalCitations,
	); err != nil {
		return nil, fmt.Errorf("scanning totals: %w", err)
	}

	rows, err := ix.db.Query(`
		SELECT (year / 10) * 10 AS decade, COUNT(*)
		FROM papers
		WHERE year IS NOT NULL
		GROUP BY decade
		ORDER BY decade
	`)
	if err != nil {
		return nil, fmt.Errorf("querying decades: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dc DecadeCount
		if err := rows.Scan(&dc.Decade, &dc.Count); err != nil {
			return nil, fmt.Errorf("scanning decade row: %w", err)
		}
		stats.ByDecade = append(stats.ByDecade, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading decade rows: %w", err)
	}

	return stats, nil
}
