package core

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mixedDataset has defects spread over every column.
func mixedDataset(t *testing.T) *Dataset {
	t.Helper()
	data := "id,name,joined,score\n" +
		"1,alice,2024-01-01,10\n" +
		"2,,2024-02-30,abc\n" +
		"3,12345,01/15/2024,\n" +
		"1,bob,not-a-date,3.5\n" +
		"4,carol,31/12/2023,7\n" +
		"5,,,x\n"
	ds, err := LoadCSV(context.Background(), "mixed.csv", bytes.NewBufferString(data))
	require.NoError(t, err)
	return ds
}

func TestValidate_Counts(t *testing.T) {
	ds := mixedDataset(t)

	tests := []struct {
		column      string
		kind        CheckKind
		wantInvalid int
		wantSample  []int
	}{
		{"name", Completeness, 2, []int{1, 5}},
		{"name", StringFormat, 1, []int{2}},
		{"joined", DateFormat, 2, []int{1, 3}},
		{"score", NumericFormat, 3, []int{1, 2, 5}},
		{"id", Uniqueness, 2, []int{0, 3}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.column, tt.kind.Slug()), func(t *testing.T) {
			res, err := Validate(ds, tt.column, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, ds.Len(), res.TotalRows)
			assert.Equal(t, tt.wantInvalid, res.InvalidCount)
			assert.Equal(t, tt.wantSample, res.SampleIndices())
			assert.Equal(t, tt.column, res.Column)
			assert.Equal(t, tt.kind, res.Check)
		})
	}
}

func TestValidate_SampleIsPrefixOfExtract(t *testing.T) {
	records := make([][]string, 25)
	for i := range records {
		v := fmt.Sprintf("v%d", i)
		if i%2 == 0 {
			v = ""
		}
		records[i] = []string{v, fmt.Sprintf("%d", i)}
	}
	ds := NewDataset("big", []string{"val", "n"}, records)

	res, err := Validate(ds, "val", Completeness)
	require.NoError(t, err)
	require.Len(t, res.Sample, MaxSampleRows)
	assert.Equal(t, 13, res.InvalidCount)

	invalid, err := InvalidRows(ds, "val", Completeness)
	require.NoError(t, err)
	assert.Equal(t, invalid[:MaxSampleRows], res.SampleIndices())

	for _, s := range res.Sample {
		assert.True(t, s.Value.IsNull(), "sample holds the validated column's cell")
	}

	rows := SampleRows(ds, res)
	assert.Equal(t, MaxSampleRows, rows.Len())
	assert.Equal(t, ds.Columns, rows.Columns)
	assert.Equal(t, "0", rows.Rows[0][1].String())
}

func TestValidate_CountMatchesExtract(t *testing.T) {
	ds := mixedDataset(t)

	for _, col := range ds.Columns {
		for _, kind := range AllChecks() {
			res, err := Validate(ds, col, kind)
			require.NoError(t, err)
			extracted, err := ExtractInvalid(ds, col, kind)
			require.NoError(t, err)

			assert.Equal(t, res.InvalidCount, extracted.Len(), "%s/%s", col, kind.Slug())
			assert.LessOrEqual(t, len(res.Sample), MaxSampleRows)
		}
	}
}

func TestValidate_Idempotent(t *testing.T) {
	ds := mixedDataset(t)

	first, err := Validate(ds, "id", Uniqueness)
	require.NoError(t, err)
	second, err := Validate(ds, "id", Uniqueness)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidate_EmptyDataset(t *testing.T) {
	ds := &Dataset{Columns: []string{"a"}}
	res, err := Validate(ds, "a", Completeness)
	require.NoError(t, err)
	assert.Zero(t, res.TotalRows)
	assert.Zero(t, res.InvalidCount)
	assert.Empty(t, res.Sample)
}

func TestValidate_MissingColumn(t *testing.T) {
	_, err := Validate(mixedDataset(t), "nope", Completeness)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestExtractInvalid_AllColumnsInOrder(t *testing.T) {
	ds := NewDataset("t", []string{"k", "other"}, [][]string{
		{"a", "1"}, {"b", "2"}, {"a", "3"}, {"c", "4"},
	})

	got, err := ExtractInvalid(ds, "k", Uniqueness)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "1"}, {"a", "3"}}, got.Records())
	assert.Equal(t, ds.Columns, got.Columns)

	none, err := ExtractInvalid(ds, "other", Uniqueness)
	require.NoError(t, err)
	assert.Equal(t, 0, none.Len())
	assert.Equal(t, ds.Columns, none.Columns)
}

func TestRemoveInvalid_DeletionProperty(t *testing.T) {
	ds := mixedDataset(t)

	for _, kind := range AllChecks() {
		t.Run(kind.Slug(), func(t *testing.T) {
			invalid, err := InvalidRows(ds, "score", kind)
			require.NoError(t, err)

			res, err := RemoveInvalid(ds, "score", kind)
			require.NoError(t, err)

			assert.Equal(t, ds.Len(), res.Before)
			assert.Equal(t, ds.Len()-len(invalid), res.After)
			assert.Equal(t, len(invalid), res.Deleted)
			assert.Equal(t, res.Before-res.After, res.Deleted)

			drop := make(map[int]bool)
			for _, i := range invalid {
				drop[i] = true
			}
			var kept []Row
			for i, row := range ds.Rows {
				if !drop[i] {
					kept = append(kept, row)
				}
			}
			assert.Equal(t, len(kept), res.Cleaned.Len())
			for i := range kept {
				assert.Equal(t, kept[i], res.Cleaned.Rows[i])
			}
		})
	}
}

func TestRemoveInvalid_LeavesInputUntouched(t *testing.T) {
	ds := mixedDataset(t)
	before := ds.Records()

	_, err := RemoveInvalid(ds, "name", Completeness)
	require.NoError(t, err)
	assert.Equal(t, before, ds.Records())
}

func TestRemoveInvalid_ExportRoundTrip(t *testing.T) {
	ds := mixedDataset(t)

	res, err := RemoveInvalid(ds, "score", NumericFormat)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res.Cleaned))

	reloaded, err := LoadCSV(context.Background(), "data_cleaned.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, res.Cleaned.Columns, reloaded.Columns)
	assert.Equal(t, res.Cleaned.Records(), reloaded.Records())
}

func TestRemoveInvalid_KeepsAllNullRowsThroughExport(t *testing.T) {
	ds := NewDataset("t.csv", []string{"a", "b"}, [][]string{{"x", "y"}, {"", ""}, {"abc", ""}})

	res, err := RemoveInvalid(ds, "a", StringFormat)
	require.NoError(t, err)
	require.Equal(t, 3, res.Cleaned.Len(), "nulls are skipped by the string check")

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res.Cleaned))
	assert.Equal(t, "a,b\nx,y\n,\nabc,\n", buf.String())

	reloaded, err := LoadCSV(context.Background(), "data_cleaned.csv", &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Len())
	assert.Equal(t, res.Cleaned.Records(), reloaded.Records())

	t.Run("xlsx", func(t *testing.T) {
		reloaded, err := LoadXLSX(context.Background(), "data_cleaned.xlsx", bytes.NewReader(mustWriteXLSX(t, res.Cleaned)))
		require.NoError(t, err)
		assert.Equal(t, res.Cleaned.Records(), reloaded.Records())
	})
}
