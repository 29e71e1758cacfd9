package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the download file type.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat maps a query value to a format. Empty means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Export writes ds to w in format f.
func Export(w io.Writer, ds *Dataset, f ExportFormat) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, ds)
	case FormatXLSX:
		return WriteXLSX(w, ds)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// WriteCSV writes the header and every row. Cells are written as the text they
// were loaded from; Null cells are empty fields.
func WriteCSV(w io.Writer, ds *Dataset) error {
	if ds == nil {
		return ErrNoDataset
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(ds.Records()); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

const exportSheet = "Sheet1"

// WriteXLSX writes ds as a single-sheet workbook. Number cells are stored as
// numbers and Date cells as dates; everything else is text.
func WriteXLSX(w io.Writer, ds *Dataset) error {
	if ds == nil {
		return ErrNoDataset
	}

	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return fmt.Errorf("xlsx stream writer: %w", err)
	}

	header := make([]interface{}, len(ds.Columns))
	for i, c := range ds.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, row := range ds.Rows {
		values := make([]interface{}, len(ds.Columns))
		for j := range ds.Columns {
			if j < len(row) {
				values[j] = xlsxValue(row[j])
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx row %d: %w", i, err)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush xlsx: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func xlsxValue(v Value) interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindNumber:
		if math.IsInf(v.Num, 0) {
			return v.Raw
		}
		return v.Num
	case KindDate:
		return v.Time
	default:
		return v.Raw
	}
}

// InvalidExportName returns the download name for the problematic rows of column.
func InvalidExportName(column string, f ExportFormat) string {
	return fmt.Sprintf("problematic_data_%s.%s", sanitizeFileName(column), f)
}

// CleanedExportName returns the download name for the cleaned dataset.
func CleanedExportName(f ExportFormat) string {
	return "data_cleaned." + string(f)
}

// sanitizeFileName replaces characters that are unsafe in file names or
// Content-Disposition headers.
func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "column"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7f:
			return '_'
		case strings.ContainsRune(`/\:*?"<>|;`, r):
			return '_'
		default:
			return r
		}
	}, s)
}
