package core

// checks.go defines the five column checks and the single predicate source that
// both Validate and ExtractInvalid consume.
//
// Each check kind yields a rowPredicate. Per-cell kinds look only at the cell;
// Uniqueness needs the whole column, so its predicate is built after a counting
// pass. InvalidRows is the only place a predicate is applied, which keeps the
// count, the sample and the extracted rows in agreement.

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CheckKind identifies one of the column-level data-quality checks.
type CheckKind int

const (
	Completeness CheckKind = iota
	StringFormat
	DateFormat
	NumericFormat
	Uniqueness
)

// checkInfo holds the display label and short slug of a check.
type checkInfo struct {
	label string
	slug  string
}

var checkInfos = map[CheckKind]checkInfo{
	Completeness:  {label: "Completeness validation", slug: "completeness"},
	StringFormat:  {label: "Format validation String", slug: "string"},
	DateFormat:    {label: "Format validation Date", slug: "date"},
	NumericFormat: {label: "Format validation Numerik", slug: "numeric"},
	Uniqueness:    {label: "Uniqueness validation", slug: "uniqueness"},
}

// AllChecks returns every check kind in menu order.
func AllChecks() []CheckKind {
	return []CheckKind{Completeness, StringFormat, DateFormat, NumericFormat, Uniqueness}
}

// Label returns the user-facing name of the check.
func (k CheckKind) Label() string {
	if info, ok := checkInfos[k]; ok {
		return info.label
	}
	return fmt.Sprintf("CheckKind(%d)", int(k))
}

// Slug returns the short identifier used in URLs and forms.
func (k CheckKind) Slug() string {
	if info, ok := checkInfos[k]; ok {
		return info.slug
	}
	return ""
}

func (k CheckKind) String() string {
	return k.Label()
}

// MarshalJSON encodes the check as its slug.
func (k CheckKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.Slug())
}

// UnmarshalJSON accepts either a slug or a label.
func (k *CheckKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCheckKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseCheckKind resolves a label ("Uniqueness validation"), slug ("uniqueness")
// or numeric index ("4"). Matching ignores case and surrounding whitespace.
func ParseCheckKind(s string) (CheckKind, error) {
	s = strings.TrimSpace(s)
	for _, k := range AllChecks() {
		info := checkInfos[k]
		if strings.EqualFold(s, info.label) || strings.EqualFold(s, info.slug) {
			return k, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := checkInfos[CheckKind(n)]; ok {
			return CheckKind(n), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCheck, s)
}

// rowPredicate reports whether the cell at row i is invalid.
type rowPredicate func(i int, v Value) bool

// predicateFor builds the invalid-row predicate of kind for column col of ds.
func predicateFor(ds *Dataset, col int, kind CheckKind) (rowPredicate, error) {
	switch kind {
	case Completeness:
		return func(_ int, v Value) bool { return isIncomplete(v) }, nil
	case StringFormat:
		return func(_ int, v Value) bool { return looksNumeric(v) }, nil
	case DateFormat:
		return func(_ int, v Value) bool { return !v.IsNull() && !isDate(v) }, nil
	case NumericFormat:
		return func(_ int, v Value) bool { return !isNumeric(v) }, nil
	case Uniqueness:
		return duplicatePredicate(ds, col), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCheck, int(kind))
	}
}

// isIncomplete: null, or empty once converted to text and trimmed.
func isIncomplete(v Value) bool {
	return v.IsNull() || strings.TrimSpace(v.String()) == ""
}

// looksNumeric flags numbers and text that is all digits after removing '.'
// and '-'. Nulls and dates never look numeric, whatever their display text.
func looksNumeric(v Value) bool {
	switch v.Kind {
	case KindNull, KindDate:
		return false
	case KindNumber:
		return true
	}
	return isDigits(strings.NewReplacer(".", "", "-", "").Replace(v.String()))
}

// isDigits is true for a non-empty string of decimal digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isDate(v Value) bool {
	switch v.Kind {
	case KindDate, KindNumber:
		return true
	case KindText:
		_, ok := ParseDate(v.Raw)
		return ok
	}
	return false
}

// isNumeric: nulls and dates never coerce to a number.
func isNumeric(v Value) bool {
	switch v.Kind {
	case KindNumber:
		return true
	case KindText:
		_, ok := ParseNumber(v.Raw)
		return ok
	}
	return false
}

// duplicatePredicate flags every row whose value occurs more than once in col.
// All nulls share one key.
func duplicatePredicate(ds *Dataset, col int) rowPredicate {
	counts := make(map[string]int, ds.Len())
	keys := make([]string, ds.Len())
	for i := range ds.Rows {
		k := uniqueKey(ds.Cell(i, col))
		keys[i] = k
		counts[k]++
	}
	return func(i int, _ Value) bool {
		return counts[keys[i]] > 1
	}
}

// uniqueKey maps a cell to its equality key. Numbers compare by value, so "1" and
// "1.0" loaded into a numeric column collide.
func uniqueKey(v Value) string {
	switch v.Kind {
	case KindNull:
		return "n:"
	case KindNumber:
		return "f:" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindDate:
		return "d:" + v.Time.UTC().Format("2006-01-02T15:04:05.999999999")
	default:
		return "t:" + v.Raw
	}
}

// InvalidRows returns the ascending indices of rows whose value in column fails
// check kind. It is the single source of truth for Validate, ExtractInvalid and
// RemoveInvalid.
func InvalidRows(ds *Dataset, column string, kind CheckKind) ([]int, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	col, err := ds.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	pred, err := predicateFor(ds, col, kind)
	if err != nil {
		return nil, err
	}

	var invalid []int
	for i := range ds.Rows {
		if pred(i, ds.Cell(i, col)) {
			invalid = append(invalid, i)
		}
	}
	return invalid, nil
}
