package core

// validation.go provides the two views over InvalidRows:
//
//  1. Validate: counts plus a sample of the first invalid cells (for the
//     results page)
//  2. ExtractInvalid: every invalid row with all columns (for export and
//     deletion)
//
// Both take an immutable dataset and return fresh values, so repeated runs on the
// same input give identical results.

// MaxSampleRows caps the number of sample cells in a ValidationResult.
const MaxSampleRows = 10

// Validate runs check kind on column and returns the total row count, the number
// of invalid rows and the first MaxSampleRows invalid cells by ascending index.
// An empty dataset yields zero counts; a missing column yields ErrColumnNotFound.
func Validate(ds *Dataset, column string, kind CheckKind) (ValidationResult, error) {
	invalid, err := InvalidRows(ds, column, kind)
	if err != nil {
		return ValidationResult{}, err
	}

	col, _ := ds.ColumnIndex(column)
	n := min(len(invalid), MaxSampleRows)
	sample := make([]SampleCell, n)
	for i, idx := range invalid[:n] {
		sample[i] = SampleCell{Index: idx, Value: ds.Cell(idx, col)}
	}

	return ValidationResult{
		Column:       ds.Columns[col],
		Check:        kind,
		TotalRows:    ds.Len(),
		InvalidCount: len(invalid),
		Sample:       sample,
	}, nil
}

// ExtractInvalid returns every row (all columns) that fails check kind on column,
// in original order. No matches yields an empty dataset, not an error.
func ExtractInvalid(ds *Dataset, column string, kind CheckKind) (*Dataset, error) {
	invalid, err := InvalidRows(ds, column, kind)
	if err != nil {
		return nil, err
	}
	return ds.Subset(invalid), nil
}

// RemoveInvalid returns ds without the rows ExtractInvalid would return for the
// same inputs. Remaining rows keep their order and are renumbered from 0.
func RemoveInvalid(ds *Dataset, column string, kind CheckKind) (CleanResult, error) {
	invalid, err := InvalidRows(ds, column, kind)
	if err != nil {
		return CleanResult{}, err
	}

	cleaned := ds.Without(invalid)
	return CleanResult{
		Cleaned: cleaned,
		Before:  ds.Len(),
		After:   cleaned.Len(),
		Deleted: ds.Len() - cleaned.Len(),
	}, nil
}

// SampleRows materializes the full rows behind a result's sample for display.
func SampleRows(ds *Dataset, r ValidationResult) *Dataset {
	return ds.Subset(r.SampleIndices())
}
