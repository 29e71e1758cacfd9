package core

// load.go parses uploaded CSV and XLSX files into a Dataset.
//
// Cell tagging happens here, once:
//   - Empty fields and NA tokens load as Null
//   - CSV: a column whose non-null cells all parse as numbers loads as Number,
//     otherwise every non-null cell is Text
//   - XLSX: each cell keeps the type the workbook stored (number, date, text)
//
// Records made only of empty fields load as all-Null rows, so a dataset that
// keeps such a row survives an export and reload. encoding/csv drops lines
// with no fields at all, and excelize trims trailing empty worksheet rows.
//
// Loading is all-or-nothing: any error returns a nil dataset.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Supported upload extensions.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// cancelCheckInterval is how many records are parsed between context checks.
const cancelCheckInterval = 1000

// LoadFile parses r according to the extension of name.
func LoadFile(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtCSV:
		return LoadCSV(ctx, name, r)
	case ExtXLSX:
		return LoadXLSX(ctx, name, r)
	default:
		return nil, &ParseError{FileName: name, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))}
	}
}

// LoadCSV parses a comma-separated file whose first record is the header.
// It stops with the context's error once ctx is done.
func LoadCSV(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	start := time.Now()
	counter := NewCountingReader(r)

	reader := csv.NewReader(NewDecodingReader(counter))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{FileName: name, Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, &ParseError{FileName: name, Err: fmt.Errorf("invalid csv: %w", err)}
	}
	columns := normalizeHeaders(header)

	var raw [][]string
	for n := 0; ; n++ {
		if err := checkCanceled(ctx, name, n); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{FileName: name, Err: fmt.Errorf("invalid csv: %w", err)}
		}
		line, _ := reader.FieldPos(0)
		if len(rec) > len(columns) {
			return nil, &ParseError{
				FileName: name,
				Line:     line,
				Err:      fmt.Errorf("invalid csv: expected %d fields, saw %d", len(columns), len(rec)),
			}
		}
		raw = append(raw, rec)
	}

	rows := make([]Row, len(raw))
	for i := range rows {
		rows[i] = make(Row, len(columns))
	}
	for j := range columns {
		tagCSVColumn(raw, rows, j)
	}

	slog.Debug("csv loaded",
		"file", name,
		"columns", len(columns),
		"rows", len(rows),
		"bytes", counter.BytesRead,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Dataset{Name: name, Columns: columns, Rows: rows}, nil
}

// tagCSVColumn fills column j of rows from the raw records.
func tagCSVColumn(raw [][]string, rows []Row, j int) {
	numeric := true
	seen := 0
	nums := make([]float64, len(raw))

	for i, rec := range raw {
		if j >= len(rec) || IsNAToken(rec[j]) {
			continue
		}
		seen++
		f, ok := ParseNumber(rec[j])
		if !ok {
			numeric = false
			break
		}
		nums[i] = f
	}
	numeric = numeric && seen > 0

	for i, rec := range raw {
		switch {
		case j >= len(rec) || IsNAToken(rec[j]):
			rows[i][j] = Null()
		case numeric:
			rows[i][j] = Number(nums[i], rec[j])
		default:
			rows[i][j] = Text(rec[j])
		}
	}
}

// LoadXLSX parses the first worksheet of a workbook. Row 1 is the header.
func LoadXLSX(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	start := time.Now()
	if err := checkCanceled(ctx, name, 0); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{FileName: name, Err: fmt.Errorf("invalid xlsx: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{FileName: name, Err: ErrEmptyFile}
	}
	sheet := sheets[0]

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{FileName: name, Err: fmt.Errorf("invalid xlsx: read %s: %w", sheet, err)}
	}
	rawRows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{FileName: name, Err: fmt.Errorf("invalid xlsx: read %s: %w", sheet, err)}
	}
	if len(formatted) == 0 {
		return nil, &ParseError{FileName: name, Err: ErrEmptyFile}
	}

	columns := normalizeHeaders(formatted[0])
	var rows []Row
	for i := 1; i < len(formatted); i++ {
		if err := checkCanceled(ctx, name, i); err != nil {
			return nil, err
		}
		rec := formatted[i]
		if len(rec) > len(columns) {
			return nil, &ParseError{
				FileName: name,
				Line:     i + 1,
				Err:      fmt.Errorf("invalid xlsx: expected %d columns, saw %d", len(columns), len(rec)),
			}
		}

		row := make(Row, len(columns))
		for j := range columns {
			if j >= len(rec) {
				row[j] = Null()
				continue
			}
			raw := rec[j]
			if i < len(rawRows) && j < len(rawRows[i]) {
				raw = rawRows[i][j]
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			cellType, err := f.GetCellType(sheet, cell)
			if err != nil {
				cellType = excelize.CellTypeUnset
			}
			row[j] = tagXLSXCell(cellType, rec[j], raw)
		}
		rows = append(rows, row)
	}

	slog.Debug("xlsx loaded",
		"file", name,
		"sheet", sheet,
		"columns", len(columns),
		"rows", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Dataset{Name: name, Columns: columns, Rows: rows}, nil
}

// tagXLSXCell converts one worksheet cell. formatted is the displayed text, raw
// the stored value (a serial number for date-styled cells).
func tagXLSXCell(cellType excelize.CellType, formatted, raw string) Value {
	if IsNAToken(formatted) {
		return Null()
	}

	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		f, ok := ParseNumber(raw)
		if !ok {
			return Text(formatted)
		}
		if _, isNum := ParseNumber(formatted); isNum {
			return Number(f, formatted)
		}
		if t, isDate := ParseDate(formatted); isDate {
			return Date(t, formatted)
		}
		return Number(f, raw)
	case excelize.CellTypeDate:
		if t, ok := ParseDate(formatted); ok {
			return Date(t, formatted)
		}
		return Text(formatted)
	default:
		return Text(formatted)
	}
}

// normalizeHeaders trims header cells and renames blanks and duplicates:
// a blank header at position i becomes "Unnamed: i", the second "id" becomes "id.1".
func normalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	dupes := make(map[string]int)
	for i, h := range header {
		h = CleanHeader(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[h] {
			base := h
			for n := dupes[base] + 1; ; n++ {
				h = fmt.Sprintf("%s.%d", base, n)
				if !used[h] {
					dupes[base] = n
					break
				}
			}
		}
		used[h] = true
		out[i] = h
	}
	return out
}

// checkCanceled reports ctx's error on every cancelCheckInterval-th record.
func checkCanceled(ctx context.Context, name string, n int) error {
	if n%cancelCheckInterval != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
