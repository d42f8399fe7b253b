// Package dataset holds the in-memory table a regression tree is trained on:
// ordered rows of equal width whose last column is the target.
package dataset

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// Dataset is an immutable table of numeric rows. Columns 0..n-2 are features
// and column n-1 is the target. Subsets produced by Split are independent
// copies and never alias the parent.
type Dataset struct {
	data *mat.Dense // nil when the dataset has no rows
	rows int
	cols int
}

// FromRows builds a Dataset from row slices. Every row must have the same
// length, at least two, and contain only finite values. The input is copied.
func FromRows(rows [][]float64) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.NewModelError("dataset.FromRows", "empty data", errors.ErrEmptyData)
	}
	cols := len(rows[0])
	if cols < 2 {
		return nil, errors.NewDimensionError("dataset.FromRows", 2, cols, 1)
	}

	raw := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.NewDimensionError("dataset.FromRows", cols, len(row), 1)
		}
		if err := errors.CheckNumericalStability("dataset.FromRows", row, i); err != nil {
			return nil, err
		}
		raw = append(raw, row...)
	}

	return &Dataset{data: mat.NewDense(len(rows), cols, raw), rows: len(rows), cols: cols}, nil
}

// FromMatrix builds a Dataset from a feature matrix X (n×p) and a target
// column y (n×1), appending y as the last column.
func FromMatrix(X, y mat.Matrix) (*Dataset, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("dataset.FromMatrix", "empty data", errors.ErrEmptyData)
	}
	ry, cy := y.Dims()
	if ry != r {
		return nil, errors.NewDimensionError("dataset.FromMatrix", r, ry, 0)
	}
	if cy != 1 {
		return nil, errors.NewValueError("dataset.FromMatrix", "y must be a column vector")
	}

	data := mat.NewDense(r, c+1, nil)
	data.Slice(0, r, 0, c).(*mat.Dense).Copy(X)
	for i := 0; i < r; i++ {
		data.Set(i, c, y.At(i, 0))
		if err := errors.CheckNumericalStability("dataset.FromMatrix", data.RawRowView(i), i); err != nil {
			return nil, err
		}
	}
	return &Dataset{data: data, rows: r, cols: c + 1}, nil
}

// FromDense builds a Dataset from a full table whose last column is the target.
// The matrix is copied.
func FromDense(m mat.Matrix) (*Dataset, error) {
	r, c := m.Dims()
	if r == 0 {
		return nil, errors.NewModelError("dataset.FromDense", "empty data", errors.ErrEmptyData)
	}
	if c < 2 {
		return nil, errors.NewDimensionError("dataset.FromDense", 2, c, 1)
	}
	data := mat.DenseCopyOf(m)
	for i := 0; i < r; i++ {
		if err := errors.CheckNumericalStability("dataset.FromDense", data.RawRowView(i), i); err != nil {
			return nil, err
		}
	}
	return &Dataset{data: data, rows: r, cols: c}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// NumCols returns the row width including the target column.
func (d *Dataset) NumCols() int { return d.cols }

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int { return d.cols - 1 }

// IsEmpty reports whether the dataset has no rows. Only Split can produce one.
func (d *Dataset) IsEmpty() bool { return d.rows == 0 }

// At returns the value at row i, column j.
func (d *Dataset) At(i, j int) float64 { return d.data.At(i, j) }

// Row returns a copy of row i including the target.
func (d *Dataset) Row(i int) []float64 {
	return mat.Row(nil, i, d.data)
}

// FeatureRow returns a copy of the feature part of row i.
func (d *Dataset) FeatureRow(i int) []float64 {
	return slices.Clone(d.data.RawRowView(i)[:d.cols-1])
}

// Features returns a read-only view of the feature columns, or nil when empty.
func (d *Dataset) Features() mat.Matrix {
	if d.rows == 0 {
		return nil
	}
	return d.data.Slice(0, d.rows, 0, d.cols-1)
}

// Targets returns a copy of the target column.
func (d *Dataset) Targets() []float64 {
	if d.rows == 0 {
		return nil
	}
	return mat.Col(nil, d.cols-1, d.data)
}

// FeatureColumn returns a copy of feature column j.
func (d *Dataset) FeatureColumn(j int) []float64 {
	if d.rows == 0 {
		return nil
	}
	return mat.Col(nil, j, d.data)
}

// DistinctValues returns the distinct values of column j in ascending order.
// These are the split thresholds tried for feature j.
func (d *Dataset) DistinctValues(j int) []float64 {
	vals := d.FeatureColumn(j)
	slices.Sort(vals)
	return slices.Compact(vals)
}

// AllTargetsEqual reports whether every row has the same target value.
func (d *Dataset) AllTargetsEqual() bool {
	if d.rows == 0 {
		return true
	}
	first := d.data.At(0, d.cols-1)
	for i := 1; i < d.rows; i++ {
		if d.data.At(i, d.cols-1) != first {
			return false
		}
	}
	return true
}

// Split partitions the rows on feature j. greater holds every row whose value
// is strictly greater than threshold, lessOrEqual holds the rest. Row order is
// preserved and either side may be empty.
func (d *Dataset) Split(j int, threshold float64) (greater, lessOrEqual *Dataset) {
	var gtIdx, leIdx []int
	for i := 0; i < d.rows; i++ {
		if d.data.At(i, j) > threshold {
			gtIdx = append(gtIdx, i)
		} else {
			leIdx = append(leIdx, i)
		}
	}
	return d.subset(gtIdx), d.subset(leIdx)
}

func (d *Dataset) subset(idx []int) *Dataset {
	if len(idx) == 0 {
		return &Dataset{cols: d.cols}
	}
	data := mat.NewDense(len(idx), d.cols, nil)
	for k, i := range idx {
		data.SetRow(k, d.data.RawRowView(i))
	}
	return &Dataset{data: data, rows: len(idx), cols: d.cols}
}
