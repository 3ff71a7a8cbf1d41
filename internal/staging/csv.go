package staging

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// csvTable is a parsed CSV file with header-indexed access.
type csvTable struct {
	path   string
	cols   map[string]int
	rowNum int // current data row, 1-based, for error context
	rows   [][]string
}

func readCSV(path string, required ...string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty file", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%s: missing required column %q", path, name)
		}
	}
	return &csvTable{path: path, cols: cols, rows: records[1:]}, nil
}

func (t *csvTable) field(row []string, name string) string {
	idx, ok := t.cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *csvTable) floatField(row []string, name string) (float64, error) {
	s := t.field(row, name)
	if s == "" {
		return 0, fmt.Errorf("%s row %d: empty %s", t.path, t.rowNum, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: bad %s %q: %w", t.path, t.rowNum, name, s, err)
	}
	return v, nil
}

func (t *csvTable) intField(row []string, name string) (int, error) {
	s := t.field(row, name)
	if s == "" {
		return 0, fmt.Errorf("%s row %d: empty %s", t.path, t.rowNum, name)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: bad %s %q: %w", t.path, t.rowNum, name, s, err)
	}
	return v, nil
}

// inCountries builds a membership set from a country list.
func inCountries(countries []string) map[string]bool {
	set := make(map[string]bool, len(countries))
	for _, c := range countries {
		set[c] = true
	}
	return set
}
