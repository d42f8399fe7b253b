package tree

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regtree/core/dataset"
	"github.com/YuminosukeSato/regtree/linear"
	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// LeafKind は葉の種類（定数葉 / 線形モデル葉）を表す
type LeafKind int

const (
	// RegressionLeaf は目的変数の平均値を予測する定数葉
	RegressionLeaf LeafKind = iota
	// ModelLeaf は最小二乗法で当てはめた局所線形モデルの葉
	ModelLeaf
)

// String returns the parameter spelling of the kind: "regression" or "model".
func (k LeafKind) String() string {
	switch k {
	case RegressionLeaf:
		return "regression"
	case ModelLeaf:
		return "model"
	default:
		return "LeafKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// ParseLeafKind は "regression" / "model" を LeafKind に変換する
func ParseLeafKind(s string) (LeafKind, error) {
	switch s {
	case "regression":
		return RegressionLeaf, nil
	case "model":
		return ModelLeaf, nil
	default:
		return 0, errors.NewValidationError("leaf_strategy", "must be 'regression' or 'model'", s)
	}
}

// Payload is the prediction data stored in a leaf. Kind tells which of Value
// or Coef is populated.
type Payload struct {
	Kind LeafKind
	// Value は RegressionLeaf の予測値（平均）
	Value float64
	// Coef は ModelLeaf の係数 [切片, w_1, ..., w_p]
	Coef []float64
}

func (p Payload) String() string {
	if p.Kind == ModelLeaf {
		return fmt.Sprintf("%.6g", p.Coef)
	}
	return strconv.FormatFloat(p.Value, 'g', 6, 64)
}

// LeafStrategy computes the payload of a leaf and the squared-error cost of a
// dataset under that kind of leaf.
type LeafStrategy interface {
	Kind() LeafKind
	Leaf(ds *dataset.Dataset) (Payload, error)
	Error(ds *dataset.Dataset) (float64, error)
}

// Strategy returns the LeafStrategy implementing k.
func (k LeafKind) Strategy() (LeafStrategy, error) {
	switch k {
	case RegressionLeaf:
		return regressionLeaf{}, nil
	case ModelLeaf:
		return modelLeaf{}, nil
	default:
		return nil, errors.NewValidationError("leaf_strategy", "unknown leaf kind", int(k))
	}
}

func requireRows(op string, ds *dataset.Dataset) error {
	if ds == nil || ds.IsEmpty() {
		return errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	return nil
}

// regressionLeaf: 葉 = 目的変数の平均、誤差 = 母分散 × 行数
type regressionLeaf struct{}

func (regressionLeaf) Kind() LeafKind { return RegressionLeaf }

func (regressionLeaf) Leaf(ds *dataset.Dataset) (Payload, error) {
	if err := requireRows("RegressionLeaf.Leaf", ds); err != nil {
		return Payload{}, err
	}
	return Payload{Kind: RegressionLeaf, Value: stat.Mean(ds.Targets(), nil)}, nil
}

func (regressionLeaf) Error(ds *dataset.Dataset) (float64, error) {
	if err := requireRows("RegressionLeaf.Error", ds); err != nil {
		return 0, err
	}
	y := ds.Targets()
	return stat.PopVariance(y, nil) * float64(len(y)), nil
}

// modelLeaf: 葉 = 正規方程式による係数、誤差 = 残差平方和
type modelLeaf struct{}

func (modelLeaf) Kind() LeafKind { return ModelLeaf }

// fit は切片付きの線形回帰を当てはめる。X^T X が特異なら ErrSingularMatrix を返す
func (modelLeaf) fit(op string, ds *dataset.Dataset) (*linear.LinearRegression, *mat.VecDense, error) {
	if err := requireRows(op, ds); err != nil {
		return nil, nil, err
	}
	y := mat.NewVecDense(ds.Len(), ds.Targets())
	lr := linear.NewLinearRegression()
	if err := lr.Fit(ds.Features(), y); err != nil {
		return nil, nil, errors.Wrapf(err, "%s: %d rows", op, ds.Len())
	}
	return lr, y, nil
}

func (m modelLeaf) Leaf(ds *dataset.Dataset) (Payload, error) {
	lr, _, err := m.fit("ModelLeaf.Leaf", ds)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Kind: ModelLeaf, Coef: lr.Coefficients()}, nil
}

func (m modelLeaf) Error(ds *dataset.Dataset) (float64, error) {
	lr, y, err := m.fit("ModelLeaf.Error", ds)
	if err != nil {
		return 0, err
	}
	return lr.ResidualSumOfSquares(ds.Features(), y)
}
