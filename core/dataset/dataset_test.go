package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

func mustRows(t *testing.T, rows [][]float64) *Dataset {
	t.Helper()
	ds, err := FromRows(rows)
	require.NoError(t, err)
	return ds
}

func TestFromRowsValidation(t *testing.T) {
	testData := map[string]struct {
		rows   [][]float64
		target error
	}{
		"empty":          {nil, errors.ErrEmptyData},
		"single column":  {[][]float64{{1}, {2}}, nil},
		"ragged":         {[][]float64{{1, 2}, {1, 2, 3}}, nil},
		"nan":            {[][]float64{{1, 2}, {math.NaN(), 3}}, nil},
		"positive inf":   {[][]float64{{1, math.Inf(1)}}, nil},
		"valid two rows": {[][]float64{{1, 2}, {3, 4}}, nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			ds, err := FromRows(td.rows)
			switch name {
			case "valid two rows":
				require.NoError(t, err)
				assert.Equal(t, 2, ds.Len())
				assert.Equal(t, 1, ds.NumFeatures())
			case "empty":
				assert.True(t, errors.Is(err, td.target))
			case "single column", "ragged":
				var dimErr *errors.DimensionError
				assert.True(t, errors.As(err, &dimErr), "got %v", err)
			default:
				var numErr *errors.NumericalInstabilityError
				assert.True(t, errors.As(err, &numErr), "got %v", err)
			}
		})
	}
}

func TestFromRowsCopiesInput(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}}
	ds := mustRows(t, rows)
	rows[0][0] = 100

	assert.Equal(t, 1.0, ds.At(0, 0))
}

func TestFromMatrix(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
	})
	y := mat.NewVecDense(3, []float64{5, 6, 7})

	ds, err := FromMatrix(X, y)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NumCols())
	assert.Equal(t, []float64{2, 20, 6}, ds.Row(1))
	assert.Equal(t, []float64{5, 6, 7}, ds.Targets())

	_, err = FromMatrix(X, mat.NewVecDense(2, []float64{1, 2}))
	var dimErr *errors.DimensionError
	assert.True(t, errors.As(err, &dimErr))

	_, err = FromMatrix(X, mat.NewDense(3, 2, nil))
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestSplitPartition(t *testing.T) {
	ds := mustRows(t, [][]float64{
		{1, 0, 10},
		{5, 1, 11},
		{3, 0, 12},
		{3, 1, 13},
		{7, 0, 14},
	})

	for feature := 0; feature < ds.NumFeatures(); feature++ {
		for _, threshold := range ds.DistinctValues(feature) {
			gt, le := ds.Split(feature, threshold)
			require.Equal(t, ds.Len(), gt.Len()+le.Len())

			for i := 0; i < gt.Len(); i++ {
				assert.Greater(t, gt.At(i, feature), threshold)
			}
			for i := 0; i < le.Len(); i++ {
				assert.LessOrEqual(t, le.At(i, feature), threshold)
			}

			// every target appears exactly once
			seen := map[float64]int{}
			for _, v := range append(gt.Targets(), le.Targets()...) {
				seen[v]++
			}
			for _, v := range ds.Targets() {
				assert.Equal(t, 1, seen[v])
			}
		}
	}
}

func TestSplitThresholdGoesLeftOrEqual(t *testing.T) {
	ds := mustRows(t, [][]float64{{1, 1}, {2, 2}, {3, 3}})

	gt, le := ds.Split(0, 2)
	assert.Equal(t, []float64{3}, gt.Targets())
	assert.Equal(t, []float64{1, 2}, le.Targets())
}

func TestSplitEmptySideAndNoAliasing(t *testing.T) {
	ds := mustRows(t, [][]float64{{1, 1}, {2, 2}})

	gt, le := ds.Split(0, 5)
	assert.True(t, gt.IsEmpty())
	assert.Nil(t, gt.Features())
	assert.Nil(t, gt.Targets())
	assert.Equal(t, 2, gt.NumCols())
	assert.Equal(t, 2, le.Len())

	// 部分集合は親と記憶領域を共有しない
	le.data.Set(0, 0, 99)
	assert.Equal(t, 1.0, ds.At(0, 0))
}

func TestDistinctValuesAndTargets(t *testing.T) {
	ds := mustRows(t, [][]float64{{3, 4}, {1, 4}, {3, 4}, {2, 4}})

	assert.Equal(t, []float64{1, 2, 3}, ds.DistinctValues(0))
	assert.True(t, ds.AllTargetsEqual())

	ds2 := mustRows(t, [][]float64{{1, 1}, {2, 2}})
	assert.False(t, ds2.AllTargetsEqual())
	assert.Equal(t, []float64{2}, ds2.FeatureRow(1))

	r, c := ds2.Features().Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 1, c)
}
