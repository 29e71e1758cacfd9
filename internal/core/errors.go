package core

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is; messages carry the phrases
// MapError keys on.
var (
	// ErrColumnNotFound is returned when a check names a column the dataset lacks.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnknownCheck is returned for a check label or slug outside the five kinds.
	ErrUnknownCheck = errors.New("unknown check")

	// ErrEmptyFile is returned when an upload holds no header row.
	ErrEmptyFile = errors.New("empty file")

	// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoDataset is returned when an action needs a loaded dataset.
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrNoValidationResult is returned when an action needs a validation result.
	ErrNoValidationResult = errors.New("no validation result")

	// ErrNothingToClean is returned for export/delete when the last check found no
	// invalid rows.
	ErrNothingToClean = errors.New("no problematic rows")

	// ErrInvalidState is wrapped by every StateError.
	ErrInvalidState = errors.New("invalid state")
)

// ParseError wraps a failure to read an uploaded file.
type ParseError struct {
	FileName string
	Line     int // 0 when unknown
	Err      error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.FileName, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
