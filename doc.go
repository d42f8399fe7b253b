// Package regtree builds CART style regression trees in Go.
//
// A tree is grown greedily over a numeric dataset whose last column is the
// target. Every internal node tests "x[feature] > threshold" and sends the row
// to its Left child when true and to its Right child otherwise. Leaves hold
// either the mean of their targets (regression leaves) or an ordinary least
// squares model fitted on their rows (model leaves).
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/regtree/sklearn/tree"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(8, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8})
//	    y := mat.NewDense(8, 1, []float64{1, 1, 1, 1, 9, 9, 9, 9})
//
//	    reg := tree.NewDecisionTreeRegressor(
//	        tree.WithMinErrorReduction(1),
//	        tree.WithMinSplitSize(2),
//	    )
//	    if err := reg.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Print(reg.Tree())
//	}
//
// The lower level API works on datasets directly:
//
//	ds, _ := dataset.Load("ex00.txt")
//	t, err := tree.Build(ds, tree.Config{MinErrorReduction: 0, MinSplitSize: 1, Leaf: tree.ModelLeaf})
//	pred, err := t.Forecast([]float64{0.5})
//
// # Packages
//
//   - sklearn/tree: leaf strategies, split search, tree builder, forecasting and DecisionTreeRegressor
//   - core/dataset: the Dataset table, Split, and .npy / tab separated loaders
//   - linear: least squares fit used by model leaves
//   - metrics: MSE, RMSE, MAE, R², correlation
//   - core/model: estimator interfaces and fitted state
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: structured errors and logging
//
// # Errors
//
// A model leaf whose design matrix is singular aborts the build with
// errors.ErrSingularMatrix. While searching for a split, candidates with a
// singular side are skipped instead and reported once through errors.Warn.
// Ragged rows fail at dataset construction with *errors.DimensionError, and
// empty input fails with errors.ErrEmptyData.
package regtree
