package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSON(t *testing.T) {
	row := Row{Null(), Text("bob"), Number(3, "3.0"), Date(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "")}

	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `[null,"bob","3.0","2024-01-02"]`, string(b))

	var back Row
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 4)
	assert.True(t, back[0].IsNull())
	assert.Equal(t, Text("3.0"), back[2])
	assert.Equal(t, "2024-01-02", back[3].String())

	var v Value
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &v))
}

func TestDataset_ColumnIndex(t *testing.T) {
	ds := NewDataset("t", []string{"Id", " Name "}, nil)

	tests := []struct {
		column  string
		want    int
		wantErr bool
	}{
		{"Id", 0, false},
		{" Name ", 1, false},
		{"id", -1, true},
		{"Name", -1, true},
		{"email", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, err := ds.ColumnIndex(tt.column)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrColumnNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataset_SubsetWithout(t *testing.T) {
	ds := NewDataset("t", []string{"v"}, [][]string{{"a"}, {"b"}, {"c"}, {"d"}})

	sub := ds.Subset([]int{1, 3})
	assert.Equal(t, [][]string{{"b"}, {"d"}}, sub.Records())

	rest := ds.Without([]int{1, 3})
	assert.Equal(t, [][]string{{"a"}, {"c"}}, rest.Records())

	assert.Equal(t, 4, ds.Len(), "receiver is unchanged")
	assert.Equal(t, 0, (*Dataset)(nil).Len())
}

func TestNewDataset_ShortRecords(t *testing.T) {
	ds := NewDataset("t", []string{"a", "b"}, [][]string{{"1"}, {"", "2"}})

	assert.True(t, ds.Cell(0, 1).IsNull())
	assert.True(t, ds.Cell(1, 0).IsNull())
	assert.Equal(t, "2", ds.Cell(1, 1).String())
}
