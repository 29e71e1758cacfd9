package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ValueKind tags a cell with the type established when the dataset was loaded.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindNumber
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Value is a single dataset cell.
// Raw holds the text the cell was loaded from so exports reproduce the input.
type Value struct {
	Kind ValueKind
	Raw  string
	Num  float64   // Set when Kind == KindNumber
	Time time.Time // Set when Kind == KindDate
}

// Null returns the empty cell.
func Null() Value {
	return Value{Kind: KindNull}
}

// Text returns a text cell.
func Text(s string) Value {
	return Value{Kind: KindText, Raw: s}
}

// Number returns a numeric cell. raw is the source text; if empty it is derived from n.
func Number(n float64, raw string) Value {
	if raw == "" {
		raw = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return Value{Kind: KindNumber, Raw: raw, Num: n}
}

// Date returns a date cell. raw is the source text; if empty it is derived from t.
func Date(t time.Time, raw string) Value {
	if raw == "" {
		raw = formatDate(t)
	}
	return Value{Kind: KindDate, Raw: raw, Time: t}
}

// IsNull reports whether the cell is empty.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// String returns the cell's text form. Null cells render as "".
func (v Value) String() string {
	if v.Kind == KindNull {
		return ""
	}
	return v.Raw
}

// MarshalJSON encodes Null as null and every other cell as its text form.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNull {
		return []byte("null"), nil
	}
	return json.Marshal(v.Raw)
}

// UnmarshalJSON reads null as Null and a string as Text. Kinds other than text
// are not recoverable from the encoded form.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Null()
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	*v = Text(s)
	return nil
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

// Row is one dataset record, positionally aligned with Dataset.Columns.
type Row []Value

// Dataset is an ordered, immutable table of rows.
// Row identity is the positional index into Rows.
type Dataset struct {
	Name    string
	Columns []string
	Rows    []Row
}

// NewDataset builds a dataset from string records. Empty strings become Null cells,
// everything else Text. Mostly useful for tests and callers with pre-parsed data.
func NewDataset(name string, columns []string, records [][]string) *Dataset {
	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, len(columns))
		for j := range columns {
			if j < len(rec) && rec[j] != "" {
				row[j] = Text(rec[j])
			} else {
				row[j] = Null()
			}
		}
		rows[i] = row
	}
	return &Dataset{Name: name, Columns: append([]string(nil), columns...), Rows: rows}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// ColumnIndex returns the position of column, or ErrColumnNotFound.
// Names must match exactly.
func (d *Dataset) ColumnIndex(column string) (int, error) {
	for i, c := range d.Columns {
		if c == column {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

// Cell returns the value at row i of column col. Short rows read as Null.
func (d *Dataset) Cell(i, col int) Value {
	row := d.Rows[i]
	if col >= len(row) {
		return Null()
	}
	return row[col]
}

// Subset returns a new dataset holding the rows at indices, in the given order.
// Rows are shared with the receiver; neither dataset mutates them.
func (d *Dataset) Subset(indices []int) *Dataset {
	rows := make([]Row, len(indices))
	for i, idx := range indices {
		rows[i] = d.Rows[idx]
	}
	return &Dataset{Name: d.Name, Columns: d.Columns, Rows: rows}
}

// Without returns a new dataset with the rows at indices removed.
// Remaining rows keep their relative order and are renumbered from 0.
func (d *Dataset) Without(indices []int) *Dataset {
	drop := make(map[int]struct{}, len(indices))
	for _, idx := range indices {
		drop[idx] = struct{}{}
	}
	rows := make([]Row, 0, len(d.Rows)-len(drop))
	for i, row := range d.Rows {
		if _, ok := drop[i]; !ok {
			rows = append(rows, row)
		}
	}
	return &Dataset{Name: d.Name, Columns: d.Columns, Rows: rows}
}

// Records returns the dataset as string records (no header).
func (d *Dataset) Records() [][]string {
	out := make([][]string, len(d.Rows))
	for i, row := range d.Rows {
		rec := make([]string, len(d.Columns))
		for j := range d.Columns {
			if j < len(row) {
				rec[j] = row[j].String()
			}
		}
		out[i] = rec
	}
	return out
}

// SampleCell is one entry of a validation sample: the row index and its value in
// the validated column.
type SampleCell struct {
	Index int   `json:"index"`
	Value Value `json:"value"`
}

// ValidationResult is the outcome of running one check on one column.
type ValidationResult struct {
	Column       string       `json:"column"`
	Check        CheckKind    `json:"check"`
	TotalRows    int          `json:"totalRows"`
	InvalidCount int          `json:"invalidCount"`
	Sample       []SampleCell `json:"sample"`
}

// SampleIndices returns the row indices of the sample, ascending.
func (r ValidationResult) SampleIndices() []int {
	out := make([]int, len(r.Sample))
	for i, s := range r.Sample {
		out[i] = s.Index
	}
	return out
}

// CleanResult describes a deletion of invalid rows.
type CleanResult struct {
	Cleaned *Dataset
	Before  int
	After   int
	Deleted int
}
