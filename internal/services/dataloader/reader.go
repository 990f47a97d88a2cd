package dataloader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"fingenius/internal/models"
)

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	zipMagic = []byte("PK\x03\x04")
)

// ReadTable decodes CSV or Excel bytes into a normalized table. The format is
// chosen from the filename extension; column names are lower-cased and trimmed.
func ReadTable(data []byte, filename string) (*models.Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var records [][]string
	var err error
	switch ext {
	case ".csv":
		records, err = parseCSVFile(data)
	case ".xlsx":
		records, err = parseExcelFile(data)
	case ".xls":
		// Plenty of ".xls" downloads are really OOXML workbooks
		if bytes.HasPrefix(data, zipMagic) {
			records, err = parseExcelFile(data)
		} else {
			records, err = parseXLSFile(data)
		}
	default:
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}

	table, err := buildTable(records)
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	return table, nil
}

// NormalizeColumnName lower-cases and trims a header cell
func NormalizeColumnName(col string) string {
	return strings.ToLower(strings.TrimSpace(col))
}

// buildTable turns raw records (header first) into a Table.
// When a column name repeats, the first occurrence wins.
func buildTable(records [][]string) (*models.Table, error) {
	if len(records) == 0 {
		return nil, errors.New("file is empty: expected a header row")
	}

	header := records[0]
	colIndex := make(map[string]int)
	var columns []string
	for i, col := range header {
		name := NormalizeColumnName(col)
		if name == "" {
			continue
		}
		if _, exists := colIndex[name]; exists {
			continue
		}
		colIndex[name] = i
		columns = append(columns, name)
	}
	if len(columns) == 0 {
		return nil, errors.New("header row has no column names")
	}

	table := &models.Table{Columns: columns}
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(models.Row, len(columns))
		for _, name := range columns {
			idx := colIndex[name]
			if idx < len(record) {
				row[name] = strings.TrimSpace(record[idx])
			} else {
				row[name] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseCSVFile parses UTF-8, comma-delimited CSV
func parseCSVFile(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // Allow variable number of fields
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

// parseExcelFile reads the first sheet of an XLSX workbook as raw cell values
func parseExcelFile(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	sheetName := xl.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("workbook has no sheets")
	}
	// Raw values keep numbers free of display formatting; date cells come back
	// as serial numbers and are converted where dates are read.
	return xl.GetRows(sheetName, excelize.Options{RawCellValue: true})
}

// parseXLSFile reads the first sheet of a legacy BIFF workbook.
// The reader needs a file on disk, so the bytes go through a temp file.
func parseXLSFile(data []byte) ([][]string, error) {
	tmpFile, err := os.CreateTemp("", "fingenius-upload-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return nil, err
	}
	if err := tmpFile.Close(); err != nil {
		return nil, err
	}

	xlsBook, err := xls.OpenFile(tmpFile.Name())
	if err != nil {
		return nil, err
	}

	sheet, err := xlsBook.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, errors.New("no sheets found")
	}

	var rows [][]string
	for _, xlsRow := range sheet.GetRows() {
		var rowData []string
		for _, col := range xlsRow.GetCols() {
			rowData = append(rowData, col.GetString())
		}
		rows = append(rows, rowData)
	}
	return rows, nil
}
