package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	ds, err := LoadCSV(context.Background(), "people.csv", strings.NewReader("name,age,city\nalice,30,Oslo\nbob,,Bergen\n"))
	require.NoError(t, err)

	assert.Equal(t, "people.csv", ds.Name)
	assert.Equal(t, []string{"name", "age", "city"}, ds.Columns)
	require.Equal(t, 2, ds.Len())

	assert.Equal(t, KindText, ds.Rows[0][0].Kind)
	assert.Equal(t, KindNumber, ds.Rows[0][1].Kind)
	assert.Equal(t, 30.0, ds.Rows[0][1].Num)
	assert.True(t, ds.Rows[1][1].IsNull())
}

func TestLoadCSV_ColumnInference(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		wantKind ValueKind
	}{
		{name: "all integers", values: []string{"1", "2", "3"}, wantKind: KindNumber},
		{name: "decimals and exponents", values: []string{"1.5", "2e3", "-4"}, wantKind: KindNumber},
		{name: "one word spoils the column", values: []string{"1", "two", "3"}, wantKind: KindText},
		{name: "NA tokens do not spoil it", values: []string{"1", "NA", "3"}, wantKind: KindNumber},
		{name: "dates stay text", values: []string{"2024-01-01", "2024-01-02"}, wantKind: KindText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := "v\n" + strings.Join(tt.values, "\n") + "\n"
			ds, err := LoadCSV(context.Background(), "t.csv", strings.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, ds.Rows[0][0].Kind)
		})
	}
}

func TestLoadCSV_NATokensAreNull(t *testing.T) {
	ds, err := LoadCSV(context.Background(), "t.csv", strings.NewReader("a,b\nNA,x\nN/A,NaN\nnull,#N/A\n\"\",None\n"))
	require.NoError(t, err)

	for i, row := range ds.Rows {
		assert.True(t, row[0].IsNull(), "row %d col a", i)
	}
	assert.Equal(t, KindText, ds.Rows[0][1].Kind)
	assert.True(t, ds.Rows[1][1].IsNull())
}

func TestLoadCSV_KeepsRawText(t *testing.T) {
	ds, err := LoadCSV(context.Background(), "t.csv", strings.NewReader("amount\n007\n1.50\n"))
	require.NoError(t, err)

	assert.Equal(t, KindNumber, ds.Rows[0][0].Kind)
	assert.Equal(t, "007", ds.Rows[0][0].String())
	assert.Equal(t, "1.50", ds.Rows[1][0].String())
}

func TestLoadCSV_Headers(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{name: "trimmed", header: " a , b ", want: []string{"a", "b"}},
		{name: "duplicates get suffixes", header: "id,id,id", want: []string{"id", "id.1", "id.2"}},
		{name: "blank names", header: "a,,c,", want: []string{"a", "Unnamed: 1", "c", "Unnamed: 3"}},
		{name: "suffix clash", header: "x,x.1,x", want: []string{"x", "x.1", "x.2"}},
		{name: "formula prefix", header: `"=""ID""",name`, want: []string{"ID", "name"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := LoadCSV(context.Background(), "t.csv", strings.NewReader(tt.header+"\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ds.Columns)
			assert.Zero(t, ds.Len())
		})
	}
}

func TestLoadCSV_RaggedRows(t *testing.T) {
	t.Run("short rows are padded with nulls", func(t *testing.T) {
		ds, err := LoadCSV(context.Background(), "t.csv", strings.NewReader("a,b,c\n1\n"))
		require.NoError(t, err)
		require.Equal(t, 1, ds.Len())
		assert.True(t, ds.Rows[0][1].IsNull())
		assert.True(t, ds.Rows[0][2].IsNull())
	})

	t.Run("long rows are rejected", func(t *testing.T) {
		ds, err := LoadCSV(context.Background(), "t.csv", strings.NewReader("a,b\n1,2\n1,2,3\n"))
		require.Error(t, err)
		assert.Nil(t, ds)

		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 3, pe.Line)
		assert.Contains(t, err.Error(), "invalid csv")
	})
}

func TestLoadCSV_DelimiterOnlyLines(t *testing.T) {
	t.Run("load as null rows", func(t *testing.T) {
		ds, err := LoadCSV(context.Background(), "t.csv", strings.NewReader("a,b\n1,2\n\n,\n3,4\n"))
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"1", "2"}, {"", ""}, {"3", "4"}}, ds.Records())
		assert.True(t, ds.Rows[1][0].IsNull())
		assert.True(t, ds.Rows[1][1].IsNull())
	})

	t.Run("count toward completeness", func(t *testing.T) {
		ds, err := LoadCSV(context.Background(), "t.csv", strings.NewReader("a,b\n1,x\n,\n"))
		require.NoError(t, err)
		require.Equal(t, 2, ds.Len())

		res, err := Validate(ds, "a", Completeness)
		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalRows)
		assert.Equal(t, 1, res.InvalidCount)
	})
}

func TestLoadCSV_Canceled(t *testing.T) {
	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		ds, err := LoadCSV(ctx, "t.csv", strings.NewReader("a\n1\n"))
		assert.Nil(t, ds)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("expired deadline", func(t *testing.T) {
		data := "a\n" + strings.Repeat("1\n", 3*cancelCheckInterval)
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		_, err := LoadFile(ctx, "big.csv", strings.NewReader(data))
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		var pe *ParseError
		assert.False(t, errors.As(err, &pe), "timeouts are not parse errors")
	})
}

func TestLoadCSV_BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,name\n1,x\n")...)
	ds, err := LoadCSV(context.Background(), "bom.csv", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "id", ds.Columns[0])
}

func TestLoadCSV_Empty(t *testing.T) {
	_, err := LoadCSV(context.Background(), "empty.csv", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoadCSV_Malformed(t *testing.T) {
	_, err := LoadCSV(context.Background(), "bad.csv", strings.NewReader("a,b\n\"unterminated,1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid csv")
}

func TestLoadFile_Dispatch(t *testing.T) {
	ds, err := LoadFile(context.Background(), "Upper.CSV", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = LoadFile(context.Background(), "data.json", strings.NewReader("{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(context.Background(), "noext", strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

// buildWorkbook writes rows (header first) to an in-memory workbook.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestLoadXLSX(t *testing.T) {
	joined := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	buf := buildWorkbook(t, [][]interface{}{
		{"id", "name", "joined", "score"},
		{1, "alice", joined, 9.5},
		{2, "12345", "not-a-date", "NA"},
		{3, nil, "2024-03-01", "abc"},
	})

	ds, err := LoadXLSX(context.Background(), "book.xlsx", buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "joined", "score"}, ds.Columns)
	require.Equal(t, 3, ds.Len())

	assert.Equal(t, KindNumber, ds.Rows[0][0].Kind)
	assert.Equal(t, 1.0, ds.Rows[0][0].Num)
	assert.Equal(t, KindText, ds.Rows[0][1].Kind)
	assert.Equal(t, KindText, ds.Rows[1][1].Kind, "numeric-looking strings stay text")
	assert.True(t, ds.Rows[2][1].IsNull())

	assert.Equal(t, KindDate, ds.Rows[0][2].Kind)
	assert.Equal(t, 2024, ds.Rows[0][2].Time.Year())
	assert.Equal(t, time.January, ds.Rows[0][2].Time.Month())
	assert.Equal(t, 15, ds.Rows[0][2].Time.Day())

	assert.Equal(t, KindNumber, ds.Rows[0][3].Kind)
	assert.Equal(t, 9.5, ds.Rows[0][3].Num)
	assert.True(t, ds.Rows[1][3].IsNull())

	res, err := Validate(ds, "score", NumericFormat)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.SampleIndices())

	res, err = Validate(ds, "name", StringFormat)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.SampleIndices())
}

func TestLoadXLSX_DateCellsAreText(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetCellValue("Sheet1", "A1", "joined"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", "bob"))
	layout := "yyyy-mm-dd"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &layout})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "A2", style))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	ds, err := LoadXLSX(context.Background(), "dates.xlsx", &buf)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, KindDate, ds.Rows[0][0].Kind)
	assert.Equal(t, "2024-01-01", ds.Rows[0][0].String())

	res, err := Validate(ds, "joined", StringFormat)
	require.NoError(t, err)
	assert.Zero(t, res.InvalidCount, "a date is never numeric-looking text")
}

func TestLoadXLSX_BlankRows(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"a", "b"},
		{1, "x"},
		{nil, nil},
		{2, "y"},
	})

	ds, err := LoadXLSX(context.Background(), "gaps.xlsx", buf)
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.True(t, ds.Rows[1][0].IsNull())
	assert.True(t, ds.Rows[1][1].IsNull())
}

func TestLoadXLSX_Canceled(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{{"a"}, {1}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadXLSX(ctx, "book.xlsx", buf)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadXLSX_Invalid(t *testing.T) {
	_, err := LoadXLSX(context.Background(), "bad.xlsx", strings.NewReader("not a zip"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid xlsx")
}

func TestLoadXLSX_EmptySheet(t *testing.T) {
	f := excelize.NewFile()
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	_, err := LoadXLSX(context.Background(), "empty.xlsx", &buf)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestNormalizeHeaders(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "a.1", "Unnamed: 2", "b", "a.2"},
		normalizeHeaders([]string{"a", "a", "", "b", " a "}),
	)
}
