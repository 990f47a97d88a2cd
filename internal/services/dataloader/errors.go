package dataloader

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for file extensions other than .csv, .xlsx and .xls
var ErrUnsupportedFormat = errors.New("unsupported file format: please upload a CSV or Excel file")

// ErrNoStrategyMatch means the column set fits none of the known shapes.
// It is not fatal: the loader answers with sample data.
var ErrNoStrategyMatch = errors.New("columns match no known dataset shape")

// ParseError wraps malformed or unreadable file content
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing file %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
