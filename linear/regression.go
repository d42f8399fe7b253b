// Package linear は最小二乗法による線形回帰を提供する。
// 回帰木のモデル葉（ModelLeaf）はこのパッケージで局所線形モデルを当てはめる。
package linear

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regtree/core/model"
	"github.com/YuminosukeSato/regtree/core/parallel"
	"github.com/YuminosukeSato/regtree/metrics"
	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// 並列処理の閾値（この値以下の行数では逐次処理を使用）
const parallelThreshold = 1000

// LinearRegression は線形回帰モデル
type LinearRegression struct {
	model.BaseEstimator
	Weights   *mat.VecDense // 重み（係数）
	Intercept float64       // 切片
	NFeatures int           // 特徴量の数
}

// NewLinearRegression は新しい線形回帰モデルを作成する
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit はモデルを訓練データで学習させる
// X^T X（切片列を含む）の行列式が 0 のときだけ ErrSingularMatrix を返す。
// 係数は特徴量を列平均で中心化した計画行列の QR 最小二乗解から求める。
// 価格やエポック秒のように大きなオフセットを持つ特徴量もそのまま扱える。
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}
	// 行数が係数の数より少ないと X^T X は必ず退化する
	if r < c+1 {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	design := DesignMatrix(X)
	means := centerFeatures(design)

	// 中心化は単位上三角行列を右から掛けることに等しく、行列式は変わらない
	var gram mat.Dense
	gram.Mul(design.T(), design)
	if mat.Det(&gram) == 0 {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	yVec := mat.NewVecDense(r, mat.Col(nil, 0, y))
	var sol mat.VecDense
	if err := sol.SolveVec(design, yVec); err != nil {
		// 有限の mat.Condition は悪条件の通知で、解そのものは計算済み
		if cond, ok := err.(mat.Condition); !ok || math.IsInf(float64(cond), 1) {
			return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
		}
	}

	coef := mat.Col(nil, 0, &sol)
	weights := coef[1:]
	intercept := coef[0] - floats.Dot(weights, means)
	if !allFinite(coef) || math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	lr.NFeatures = c
	lr.Intercept = intercept
	lr.Weights = mat.NewVecDense(c, weights)

	lr.SetFitted()
	return nil
}

func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// centerFeatures は計画行列の特徴量列（切片列以外）から列平均を引き、平均を返す
func centerFeatures(design *mat.Dense) []float64 {
	r, c := design.Dims()
	means := make([]float64, c-1)
	col := make([]float64, r)
	for j := 1; j < c; j++ {
		mat.Col(col, j, design)
		if floats.Min(col) == floats.Max(col) {
			// 定数列は丸め誤差を残さず厳密に 0 にする
			means[j-1] = col[0]
			floats.Scale(0, col)
		} else {
			means[j-1] = stat.Mean(col, nil)
			floats.AddConst(-means[j-1], col)
		}
		design.SetCol(j, col)
	}
	return means
}

// DesignMatrix は X の先頭に 1 の列（切片項）を追加した行列を返す
func DesignMatrix(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	XWithIntercept := mat.NewDense(r, c+1, nil)

	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			XWithIntercept.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				XWithIntercept.Set(i, j+1, X.At(i, j))
			}
		}
	})
	return XWithIntercept
}

// Predict は入力データに対する予測を行う
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}

	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	// 予測: y = X * weights + intercept
	predictions := mat.NewVecDense(r, nil)
	predictions.MulVec(X, lr.Weights)
	predictions.AddVec(predictions, constVec(r, lr.Intercept))

	return predictions, nil
}

func constVec(n int, v float64) *mat.VecDense {
	data := make([]float64, n)
	floats.AddConst(v, data)
	return mat.NewVecDense(n, data)
}

// Coefficients は [切片, w_1, ..., w_p] の順で係数を返す
func (lr *LinearRegression) Coefficients() []float64 {
	if !lr.IsFitted() {
		return nil
	}
	coef := make([]float64, 0, lr.NFeatures+1)
	coef = append(coef, lr.Intercept)
	return append(coef, lr.GetWeights()...)
}

// GetWeights は学習された重み（係数）を返す
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	return mat.Col(nil, 0, lr.Weights)
}

// GetIntercept は学習された切片を返す
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// ResidualSumOfSquares は Σ(y - Xw)² を計算する
func (lr *LinearRegression) ResidualSumOfSquares(X, y mat.Matrix) (float64, error) {
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	ry, _ := y.Dims()
	rp, _ := yPred.Dims()
	if ry != rp {
		return 0, errors.NewDimensionError("LinearRegression.ResidualSumOfSquares", rp, ry, 0)
	}

	residuals := mat.Col(nil, 0, y)
	floats.Sub(residuals, mat.Col(nil, 0, yPred))
	return floats.Dot(residuals, residuals), nil
}

// Score はモデルの決定係数（R²）を計算する
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}

	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}
