package core

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// PreviewRows is the number of leading rows shown on the preview page.
const PreviewRows = 5

// PreviewData is what the preview page shows about a loaded dataset.
type PreviewData struct {
	Name        string          `json:"name"`
	Columns     []string        `json:"columns"`
	ColumnCount int             `json:"columnCount"`
	RowCount    int             `json:"rowCount"`
	Head        []Row           `json:"head"`
	Profiles    []ColumnProfile `json:"profiles"`
}

// ColumnProfile summarizes one column to help pick a column and check.
// Min, Max, Mean and Median are set only when NumericCount > 0.
type ColumnProfile struct {
	Column        string  `json:"column"`
	NullCount     int     `json:"nullCount"`
	DistinctCount int     `json:"distinctCount"`
	NumericCount  int     `json:"numericCount"`
	Min           float64 `json:"min,omitempty"`
	Max           float64 `json:"max,omitempty"`
	Mean          float64 `json:"mean,omitempty"`
	Median        float64 `json:"median,omitempty"`
}

// Preview returns the column list, counts, the first n rows and a profile per column.
func Preview(ds *Dataset, n int) (PreviewData, error) {
	if ds == nil {
		return PreviewData{}, ErrNoDataset
	}
	if n < 0 {
		n = 0
	}
	n = min(n, ds.Len())

	profiles := make([]ColumnProfile, len(ds.Columns))
	for i, col := range ds.Columns {
		p, err := ProfileColumn(ds, col)
		if err != nil {
			return PreviewData{}, err
		}
		profiles[i] = p
	}

	return PreviewData{
		Name:        ds.Name,
		Columns:     ds.Columns,
		ColumnCount: len(ds.Columns),
		RowCount:    ds.Len(),
		Head:        ds.Rows[:n],
		Profiles:    profiles,
	}, nil
}

// ProfileColumn counts nulls and distinct values of column and, over its numeric
// finite numeric cells, computes min, max, mean and median.
func ProfileColumn(ds *Dataset, column string) (ColumnProfile, error) {
	if ds == nil {
		return ColumnProfile{}, ErrNoDataset
	}
	col, err := ds.ColumnIndex(column)
	if err != nil {
		return ColumnProfile{}, err
	}

	p := ColumnProfile{Column: ds.Columns[col]}
	distinct := make(map[string]struct{})
	var nums stats.Float64Data

	for i := range ds.Rows {
		v := ds.Cell(i, col)
		if v.IsNull() {
			p.NullCount++
			continue
		}
		distinct[uniqueKey(v)] = struct{}{}
		if v.Kind == KindNumber && !math.IsInf(v.Num, 0) {
			nums = append(nums, v.Num)
		}
	}
	p.DistinctCount = len(distinct)
	p.NumericCount = len(nums)

	if len(nums) == 0 {
		return p, nil
	}
	if p.Min, err = nums.Min(); err != nil {
		return p, fmt.Errorf("profile %s: min: %w", p.Column, err)
	}
	if p.Max, err = nums.Max(); err != nil {
		return p, fmt.Errorf("profile %s: max: %w", p.Column, err)
	}
	if p.Mean, err = nums.Mean(); err != nil {
		return p, fmt.Errorf("profile %s: mean: %w", p.Column, err)
	}
	if p.Median, err = nums.Median(); err != nil {
		return p, fmt.Errorf("profile %s: median: %w", p.Column, err)
	}
	return p, nil
}
