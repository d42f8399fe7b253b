// Package metrics は回帰の評価指標を提供する。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// checkPair は長さの一致と空でないことを検証する
func checkPair(op string, yTrue, yPred *mat.VecDense) error {
	n := yTrue.Len()
	if n == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return nil
}

func residuals(yTrue, yPred *mat.VecDense) []float64 {
	diff := mat.Col(nil, 0, yTrue)
	floats.Sub(diff, mat.Col(nil, 0, yPred))
	return diff
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkPair("MSE", yTrue, yPred); err != nil {
		return 0, err
	}
	// MSE = (1/n) * Σ(yTrue - yPred)²
	diff := residuals(yTrue, yPred)
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}

// toVec は n×1 の行列を VecDense に変換する
func toVec(op string, m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	if c != 1 {
		return nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, m)), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkPair("MAE", yTrue, yPred); err != nil {
		return 0, err
	}
	diff := residuals(yTrue, yPred)
	return floats.Norm(diff, 1) / float64(len(diff)), nil
}

// R2Score は決定係数（R²）を計算する
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkPair("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	y := mat.Col(nil, 0, yTrue)
	mean := stat.Mean(y, nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss float64
	for _, v := range y {
		tss += (v - mean) * (v - mean)
	}
	diff := residuals(yTrue, yPred)
	rss := floats.Dot(diff, diff)

	// 全変動が0の場合（すべてのyTrueが同じ値）
	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}

	return 1 - rss/tss, nil
}

// R2ScoreMatrix は n×1 行列形式の入力に対して R² を計算する
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, err := toVec("R2ScoreMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	p, err := toVec("R2ScoreMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return R2Score(t, p)
}

// Correlation は予測値と実測値のピアソン相関係数を計算する
func Correlation(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := checkPair("Correlation", yTrue, yPred); err != nil {
		return 0, err
	}
	if yTrue.Len() < 2 {
		return 0, errors.NewValueError("Correlation", "need at least two samples")
	}
	return stat.Correlation(mat.Col(nil, 0, yTrue), mat.Col(nil, 0, yPred), nil), nil
}
