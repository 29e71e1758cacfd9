package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// column builds a one-column dataset named "col" from cells.
func column(cells ...Value) *Dataset {
	rows := make([]Row, len(cells))
	for i, c := range cells {
		rows[i] = Row{c}
	}
	return &Dataset{Name: "test", Columns: []string{"col"}, Rows: rows}
}

func TestParseCheckKind(t *testing.T) {
	tests := []struct {
		input   string
		want    CheckKind
		wantErr bool
	}{
		{input: "Completeness validation", want: Completeness},
		{input: "Format validation String", want: StringFormat},
		{input: "Format validation Date", want: DateFormat},
		{input: "Format validation Numerik", want: NumericFormat},
		{input: "Uniqueness validation", want: Uniqueness},
		{input: "uniqueness", want: Uniqueness},
		{input: " NUMERIC ", want: NumericFormat},
		{input: "2", want: DateFormat},
		{input: "5", wantErr: true},
		{input: "spelling", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCheckKind(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownCheck)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckKind_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Check CheckKind `json:"check"`
	}{DateFormat})
	require.NoError(t, err)
	assert.JSONEq(t, `{"check":"Format validation Date"}`, string(b))

	var got struct {
		Check CheckKind `json:"check"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"check":"uniqueness"}`), &got))
	assert.Equal(t, Uniqueness, got.Check)

	assert.Error(t, json.Unmarshal([]byte(`{"check":"bogus"}`), &got))
}

func TestInvalidRows_Completeness(t *testing.T) {
	ds := column(Text("a"), Null(), Text("  "), Text(""), Number(0, "0"), Text("b"))

	got, err := InvalidRows(ds, "col", Completeness)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestInvalidRows_StringFormat(t *testing.T) {
	tests := []struct {
		name    string
		cell    Value
		invalid bool
	}{
		{name: "plain word", cell: Text("alice"), invalid: false},
		{name: "digits", cell: Text("12345"), invalid: true},
		{name: "decimal text", cell: Text("12.5"), invalid: true},
		{name: "negative text", cell: Text("-3"), invalid: true},
		{name: "date-like digits", cell: Text("2024-01-01"), invalid: true},
		{name: "phone with dots", cell: Text("555.123.4567"), invalid: true},
		{name: "mixed alphanumerics", cell: Text("A123"), invalid: false},
		{name: "slash date", cell: Text("1/2/2024"), invalid: false},
		{name: "only separators", cell: Text("-.-"), invalid: false},
		{name: "numeric cell", cell: Number(7, "7"), invalid: true},
		{name: "date cell", cell: Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ""), invalid: false},
		{name: "date cell shown as compact digits", cell: Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "20240101"), invalid: false},
		{name: "null is skipped", cell: Null(), invalid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InvalidRows(column(tt.cell), "col", StringFormat)
			require.NoError(t, err)
			assert.Equal(t, tt.invalid, len(got) == 1)
		})
	}
}

func TestInvalidRows_DateFormat(t *testing.T) {
	ds := column(Text("2024-01-01"), Text("not-a-date"), Text("31/12/2023"), Text("2024"), Text("2024-01-01 10:00:00+02:00"))

	got, err := InvalidRows(ds, "col", DateFormat)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got)

	t.Run("nulls and typed cells", func(t *testing.T) {
		ds := column(Null(), Number(45000, "45000"), Date(time.Now(), ""), Text("soon"))
		got, err := InvalidRows(ds, "col", DateFormat)
		require.NoError(t, err)
		assert.Equal(t, []int{3}, got)
	})
}

func TestInvalidRows_NumericFormat(t *testing.T) {
	ds := column(Text("10"), Text("abc"), Null(), Number(3.5, "3.5"), Null())

	got, err := InvalidRows(ds, "col", NumericFormat)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, got)

	t.Run("infinity text is numeric", func(t *testing.T) {
		got, err := InvalidRows(column(Text("inf"), Text("-Infinity"), Text("infinite")), "col", NumericFormat)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, got)
	})

	t.Run("date cell is not numeric", func(t *testing.T) {
		got, err := InvalidRows(column(Date(time.Now(), "")), "col", NumericFormat)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, got)
	})
}

func TestInvalidRows_Uniqueness(t *testing.T) {
	tests := []struct {
		name string
		ds   *Dataset
		want []int
	}{
		{
			name: "every occurrence of a repeated value",
			ds:   column(Text("a"), Text("b"), Text("a"), Text("c")),
			want: []int{0, 2},
		},
		{
			name: "nulls count as equal",
			ds:   column(Null(), Text("x"), Null()),
			want: []int{0, 2},
		},
		{
			name: "numbers compare by value",
			ds:   column(Number(1, "1"), Number(1, "1.0"), Number(2, "2")),
			want: []int{0, 1},
		},
		{
			name: "text is case sensitive",
			ds:   column(Text("A"), Text("a")),
			want: nil,
		},
		{
			name: "all distinct",
			ds:   column(Text("a"), Text("b")),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InvalidRows(tt.ds, "col", Uniqueness)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidRows_Errors(t *testing.T) {
	ds := column(Text("a"))

	_, err := InvalidRows(ds, "missing", Completeness)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = InvalidRows(ds, "col", CheckKind(42))
	assert.ErrorIs(t, err, ErrUnknownCheck)

	_, err = InvalidRows(nil, "col", Completeness)
	assert.True(t, errors.Is(err, ErrNoDataset))
}

func TestInvalidRows_ColumnMatching(t *testing.T) {
	ds := NewDataset("t", []string{"Email", "email "}, [][]string{{"", "x"}})

	got, err := InvalidRows(ds, "Email", Completeness)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got, "exact match wins")

	got, err = InvalidRows(ds, "email ", Completeness)
	require.NoError(t, err)
	assert.Empty(t, got, "trailing space is part of the name")

	for _, name := range []string{"EMAIL", "email", " Email"} {
		_, err = InvalidRows(ds, name, Completeness)
		assert.ErrorIs(t, err, ErrColumnNotFound, name)
	}

	_, err = Validate(NewDataset("t", []string{"Name"}, nil), "name", StringFormat)
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestInvalidRows_EmptyDataset(t *testing.T) {
	ds := &Dataset{Columns: []string{"col"}}
	for _, kind := range AllChecks() {
		got, err := InvalidRows(ds, "col", kind)
		require.NoError(t, err, kind.Label())
		assert.Empty(t, got, kind.Label())
	}
}
