package core

// convert.go turns raw cell text into typed values.
//
// Uploaded files are messy:
//   - Dates arrive in ISO, US, European and spelled-month forms, with or
//     without a time of day
//   - Numbers arrive as integers, decimals or scientific notation
//   - Missing values arrive as empty fields or spreadsheet NA tokens
//
// Parse failures are never errors here: they return Valid=false / ok=false and
// the check that asked classifies the cell as invalid.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex matches integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// infRegex matches the spellings of infinity, in any case.
var infRegex = regexp.MustCompile(`(?i)^[+-]?inf(inity)?$`)

// Dates outside this year range are rejected, matching the span of a
// nanosecond timestamp.
const (
	minDateYear = 1677
	maxDateYear = 2262
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved back
// a century.
var TwoDigitYearPivot = 20

// Date layouts. Unambiguous ISO forms first, then month-first before day-first so
// "03/04/2024" reads as March 4; "31/12/2023" only fits day-first.
var (
	fourDigitYearLayouts = []string{
		"2006-1-2", "2006/1/2", "2006.1.2",
		"2006-1-2 15:04:05", "2006-1-2 15:04", "2006-1-2 15:04:05.999999999",
		"2006-1-2T15:04:05", "2006-1-2T15:04", "2006-1-2T15:04:05.999999999",
		time.RFC3339, time.RFC3339Nano,
		"2006-1-2 15:04:05Z07:00", "2006-1-2 15:04Z07:00", "2006-1-2 15:04:05.999999999Z07:00",
		"2006-1-2T15:04:05Z07:00", "2006-1-2T15:04Z07:00",
		"2006-1-2 15:04:05-0700", "2006-1-2T15:04:05-0700",
		"2006/1/2 15:04:05", "2006/1/2 15:04",

		"1/2/2006", "1-2-2006", "1.2.2006",
		"1/2/2006 15:04:05", "1/2/2006 15:04", "1/2/2006 3:04 PM", "1/2/2006 3:04:05 PM",
		"2/1/2006", "2-1-2006", "2.1.2006",
		"2/1/2006 15:04:05", "2/1/2006 15:04",

		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006",
		"2 Jan 2006", "2 January 2006", "2-Jan-2006", "2-Jan-06",
		"Mon, 2 Jan 2006", "Monday, January 2, 2006",
		time.RFC1123, time.RFC1123Z, time.ANSIC,

		"2006-01", "Jan 2006", "January 2006",
		"20060102", "2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "1-2-06", "1.2.06",
		"1/2/06 15:04", "1/2/06 15:04:05",
		"2/1/06", "2-1-06", "2.1.06",
	}
)

// naTokens are the cell texts read as missing, matching common spreadsheet and
// dataframe exports.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsNAToken reports whether a raw field should load as a missing value.
func IsNAToken(s string) bool {
	_, ok := naTokens[s]
	return ok
}

// ParseDate tries every supported layout and reports the first match.
// A bare year such as "2024" reads as January 1 of that year.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() < minDateYear || t.Year() > maxDateYear {
				return time.Time{}, false
			}
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ToPgNumeric converts s to pgtype.Numeric.
// Returns Valid=false when s is empty or not a plain decimal/scientific number.
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return pgtype.Numeric{Valid: false}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

// ParseNumber coerces s to a float64. "inf", "-Infinity" and the like give
// signed infinity; NaN is never a number here because it loads as missing.
func ParseNumber(s string) (float64, bool) {
	if t := strings.TrimSpace(s); infRegex.MatchString(t) {
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}

	n := ToPgNumeric(s)
	if !n.Valid {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid || math.IsNaN(f.Float64) {
		return 0, false
	}
	return f.Float64, true
}

// CleanHeader trims a header cell and strips the spreadsheet formula prefix (="...").
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
