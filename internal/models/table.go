package models

// Row maps a normalized column name to the raw, trimmed cell text.
// Missing cells read as "".
type Row map[string]string

// Get returns the cell for a column, "" when absent
func (r Row) Get(column string) string {
	return r[column]
}

// Table is an ingested sheet: normalized column names in file order plus rows
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the table carries the normalized column
func (t *Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ColumnSet returns the columns as a set for membership checks
func (t *Table) ColumnSet() map[string]bool {
	set := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		set[c] = true
	}
	return set
}
