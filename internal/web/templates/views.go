// Package templates renders the workflow pages.
//
// Pages are written in templ. Edit the .templ sources and run `templ generate`
// to refresh the *_templ.go files next to them.
package templates

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/JonMunkholm/datacheck/internal/core"
)

var printer = message.NewPrinter(language.English)

// noStep marks pages outside the workflow, such as the error page.
const noStep core.Page = -1

var workflow = []core.Page{core.PageHome, core.PagePreview, core.PageResults, core.PageCleaned}

// HomeView is the data behind the home page.
type HomeView struct {
	Dataset     *core.Dataset // nil until a file is loaded
	MaxFileSize int64
}

// PreviewView is the data behind the preview page.
type PreviewView struct {
	Data   core.PreviewData
	Checks []core.CheckKind
}

// ResultsView is the data behind the results page.
type ResultsView struct {
	Result     core.ValidationResult
	SampleRows *core.Dataset
}

// CleanedView is the data behind the cleaned page.
type CleanedView struct {
	Clean core.CleanResult
	Head  *core.Dataset
}

func count(n int) string {
	return printer.Sprintf("%d", n)
}

// profileStats returns the min, max, mean and median cells of a profile row.
// Columns without numeric cells get blanks.
func profileStats(p core.ColumnProfile) []string {
	if p.NumericCount == 0 {
		return []string{"", "", "", ""}
	}
	out := make([]string, 0, 4)
	for _, f := range []float64{p.Min, p.Max, p.Mean, p.Median} {
		out = append(out, printer.Sprintf("%.4g", f))
	}
	return out
}

func cellAt(row core.Row, j int) core.Value {
	if j < len(row) {
		return row[j]
	}
	return core.Null()
}

func tableSpan(columns []string, indices []int) int {
	if indices != nil {
		return len(columns) + 1
	}
	return len(columns)
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n <= 0 {
		return "unlimited"
	}
	if n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return printer.Sprintf("%d bytes", n)
}
