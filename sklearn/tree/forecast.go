package tree

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regtree/core/parallel"
	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const forecastParallelThreshold = 1000

// Evaluator turns a leaf payload and a feature row into a prediction.
type Evaluator interface {
	Evaluate(p Payload, row []float64) (float64, error)
}

// RegressionEval は定数葉の値をそのまま返す
type RegressionEval struct{}

// Evaluate implements Evaluator.
func (RegressionEval) Evaluate(p Payload, _ []float64) (float64, error) {
	if p.Kind != RegressionLeaf {
		return 0, errors.NewModelError("RegressionEval.Evaluate", "payload is "+p.Kind.String(), errors.ErrStrategyMismatch)
	}
	return p.Value, nil
}

// ModelEval は 切片 + Σ w[i+1]·row[i] を返す
type ModelEval struct{}

// Evaluate implements Evaluator.
func (ModelEval) Evaluate(p Payload, row []float64) (float64, error) {
	if p.Kind != ModelLeaf {
		return 0, errors.NewModelError("ModelEval.Evaluate", "payload is "+p.Kind.String(), errors.ErrStrategyMismatch)
	}
	if len(p.Coef) != len(row)+1 {
		return 0, errors.NewDimensionError("ModelEval.Evaluate", len(p.Coef)-1, len(row), 1)
	}
	return p.Coef[0] + floats.Dot(p.Coef[1:], row), nil
}

// EvaluatorFor returns the evaluator matching leaves built with k.
func EvaluatorFor(k LeafKind) Evaluator {
	if k == ModelLeaf {
		return ModelEval{}
	}
	return RegressionEval{}
}

// TreeForecast routes row from node down to a leaf and evaluates it.
// At an internal node the row goes Left when row[Feature] > Threshold and
// Right otherwise, so a value equal to the threshold goes Right.
func TreeForecast(node *Node, row []float64, eval Evaluator) (float64, error) {
	if node == nil {
		return 0, errors.NewValueError("tree.TreeForecast", "nil tree")
	}
	if eval == nil {
		return 0, errors.NewValueError("tree.TreeForecast", "nil evaluator")
	}
	for node.Kind == InternalNode {
		if node.Feature < 0 {
			return 0, errors.NewValueError("tree.TreeForecast", fmt.Sprintf("negative feature index %d", node.Feature))
		}
		if node.Feature >= len(row) {
			return 0, errors.NewDimensionError("tree.TreeForecast", node.Feature+1, len(row), 1)
		}
		next := node.Right
		if row[node.Feature] > node.Threshold {
			next = node.Left
		}
		if next == nil {
			return 0, errors.NewValueError("tree.TreeForecast", "internal node with a missing child")
		}
		node = next
	}
	return eval.Evaluate(node.Payload, row)
}

// Forecast は木を構築した葉の種類に合う Evaluator で 1 行を予測する
func (t *Tree) Forecast(row []float64) (float64, error) {
	if t == nil {
		return 0, errors.NewValueError("Tree.Forecast", "nil tree")
	}
	if len(row) != t.NFeatures {
		return 0, errors.NewDimensionError("Tree.Forecast", t.NFeatures, len(row), 1)
	}
	return TreeForecast(t.Root, row, EvaluatorFor(t.Leaf))
}

// CreateForecast predicts every row of X (features only). The result is
// aligned index for index with the rows of X. Large inputs are split across
// CPU cores.
func CreateForecast(t *Tree, X mat.Matrix, eval Evaluator) ([]float64, error) {
	if t == nil {
		return nil, errors.NewValueError("tree.CreateForecast", "nil tree")
	}
	if X == nil {
		return nil, errors.NewValueError("tree.CreateForecast", "nil input matrix")
	}
	r, c := X.Dims()
	if c != t.NFeatures {
		return nil, errors.NewDimensionError("tree.CreateForecast", t.NFeatures, c, 1)
	}

	preds := make([]float64, r)
	err := parallel.ParallelizeWithThresholdErr(r, forecastParallelThreshold, func(start, end int) error {
		row := make([]float64, c)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			p, err := TreeForecast(t.Root, row, eval)
			if err != nil {
				return errors.Wrapf(err, "row %d", i)
			}
			preds[i] = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return preds, nil
}
