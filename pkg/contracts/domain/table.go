package domain

import "strings"

// RawTable is a fetched sheet tab before any cleaning: a header row and
// string cells exactly as the source delivered them. Column names are
// trimmed and lower-cased at construction so lookups are case- and
// whitespace-insensitive.
type RawTable struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// NewRawTable builds a RawTable from a header row and data rows,
// normalizing column names.
func NewRawTable(name string, header []string, rows [][]string) *RawTable {
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return &RawTable{Name: name, Columns: cols, Rows: rows}
}

// ColumnIndex returns the index of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the trimmed cell at row/column index, or "" when the row
// is ragged and does not reach the column.
func (t *RawTable) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// MissingColumns reports which of the required columns are absent.
func (t *RawTable) MissingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if t.ColumnIndex(c) == -1 {
			missing = append(missing, c)
		}
	}
	return missing
}
