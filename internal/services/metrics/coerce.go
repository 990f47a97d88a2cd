package metrics

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"fingenius/internal/models"
)

// CellError reports a cell that should hold a number but does not.
// Row is 1-based over data rows (the header is not counted).
type CellError struct {
	Row    int
	Column string
	Value  string
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q as a number", e.Row, e.Column, e.Value)
}

var currencyReplacer = strings.NewReplacer(
	"$", "", "₹", "", "€", "", "£", "", ",", "", " ", "",
)

// parseAmount parses a numeric cell. Blank cells read as 0; currency symbols
// and thousands separators are stripped; (100.00) is read as -100.00.
func parseAmount(s string) (float64, bool) {
	s = currencyReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, true
	}

	// Handle parentheses for negative numbers: (100.00) -> -100.00
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// cellReader pulls numbers out of one row, remembering its position for errors
type cellReader struct {
	row   models.Row
	index int
}

func (c cellReader) number(column string) (float64, error) {
	raw := c.row.Get(column)
	v, ok := parseAmount(raw)
	if !ok {
		return 0, &CellError{Row: c.index + 1, Column: column, Value: raw}
	}
	return v, nil
}

var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// parseDate tries multiple date formats, then an Excel serial day number
// as produced by raw XLSX cell values
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t
		}
	}

	return time.Time{}
}
