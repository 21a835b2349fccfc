// Package input loads the raw title list from disk.
package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadTitles reads titles from a CSV file with a header row. The title column
// is located by case-insensitive header match; blank titles are skipped.
// Order is preserved and duplicates are kept (the orchestrator dedupes).
func ReadTitles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening title list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("title list %s is empty", path)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	col := -1
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff") // Excel exports carry a BOM
		if strings.EqualFold(strings.TrimSpace(name), "title") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("title list %s has no %q column", path, "title")
	}

	var titles []string
	line := 1
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}
		if col >= len(row) {
			continue
		}
		t := strings.TrimSpace(row[col])
		if t != "" {
			titles = append(titles, t)
		}
	}

	return titles, nil
}
