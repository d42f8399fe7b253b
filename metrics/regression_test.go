package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// stepForecast は 2 枚の定数葉を持つ木の予測を模したデータ。
// 予測値は各領域の平均 (1 と 5) で、実測値はその周りに散らばる。
func stepForecast() (yTrue, yPred *mat.VecDense) {
	yTrue = mat.NewVecDense(6, []float64{1, 1.2, 0.8, 5, 5.4, 4.6})
	yPred = mat.NewVecDense(6, []float64{1, 1, 1, 5, 5, 5})
	return yTrue, yPred
}

// rootOnlyForecast は葉が 1 枚だけの木（全体平均を返す）の予測
func rootOnlyForecast() (yTrue, yPred *mat.VecDense) {
	yTrue, _ = stepForecast()
	yPred = mat.NewVecDense(6, []float64{3, 3, 3, 3, 3, 3})
	return yTrue, yPred
}

func TestForecastReport(t *testing.T) {
	yTrue, yPred := stepForecast()

	// 残差 0, 0.2, -0.2, 0, 0.4, -0.4 → 二乗和 0.4、絶対値和 1.2
	// 全変動 TSS = 24.4
	tests := []struct {
		name string
		fn   func(a, b *mat.VecDense) (float64, error)
		want float64
	}{
		{"MSE", MSE, 0.4 / 6},
		{"RMSE", RMSE, math.Sqrt(0.4 / 6)},
		{"MAE", MAE, 0.2},
		{"R2", R2Score, 1 - 0.4/24.4},
		{"corrcoef", Correlation, math.Sqrt(24 / 24.4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(yTrue, yPred)
			if err != nil {
				t.Fatalf("%s() unexpected error: %v", tt.name, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("%s() = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestForecastReport_PerfectFit(t *testing.T) {
	yTrue, _ := stepForecast()

	for name, fn := range map[string]func(a, b *mat.VecDense) (float64, error){
		"MSE":  MSE,
		"RMSE": RMSE,
		"MAE":  MAE,
	} {
		got, err := fn(yTrue, yTrue)
		if err != nil {
			t.Fatalf("%s() unexpected error: %v", name, err)
		}
		if got != 0 {
			t.Errorf("%s() = %v for a perfect forecast, want 0", name, got)
		}
	}

	r2, err := R2Score(yTrue, yTrue)
	if err != nil {
		t.Fatalf("R2Score() unexpected error: %v", err)
	}
	if r2 != 1 {
		t.Errorf("R2Score() = %v for a perfect forecast, want 1", r2)
	}
}

func TestR2Score_RootOnlyTree(t *testing.T) {
	// 全体平均だけを返す木は R² = 0、相関は定義できない
	yTrue, yPred := rootOnlyForecast()

	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2Score() unexpected error: %v", err)
	}
	if math.Abs(r2) > 1e-12 {
		t.Errorf("R2Score() = %v, want 0", r2)
	}

	corr, err := Correlation(yTrue, yPred)
	if err != nil {
		t.Fatalf("Correlation() unexpected error: %v", err)
	}
	if !math.IsNaN(corr) {
		t.Errorf("Correlation() = %v for a constant forecast, want NaN", corr)
	}
}

func TestR2Score_ConstantTargets(t *testing.T) {
	y := mat.NewVecDense(3, []float64{2, 2, 2})
	if _, err := R2Score(y, y); err == nil {
		t.Error("R2Score() expected an error when yTrue has no variance")
	}
}

func TestReportInputErrors(t *testing.T) {
	yTrue, _ := stepForecast()
	short := mat.NewVecDense(2, []float64{1, 5})

	for name, fn := range map[string]func(a, b *mat.VecDense) (float64, error){
		"MSE":         MSE,
		"RMSE":        RMSE,
		"MAE":         MAE,
		"R2Score":     R2Score,
		"Correlation": Correlation,
	} {
		_, err := fn(yTrue, short)
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Errorf("%s() with mismatched lengths: expected DimensionError, got %v", name, err)
		}
	}

	one := mat.NewVecDense(1, []float64{4})
	_, err := Correlation(one, one)
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Errorf("Correlation() with one sample: expected ValueError, got %v", err)
	}
}

func TestR2ScoreMatrix(t *testing.T) {
	yTrue, yPred := stepForecast()

	got, err := R2ScoreMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2ScoreMatrix() unexpected error: %v", err)
	}
	if math.Abs(got-(1-0.4/24.4)) > 1e-9 {
		t.Errorf("R2ScoreMatrix() = %v, want %v", got, 1-0.4/24.4)
	}

	_, err = R2ScoreMatrix(mat.NewDense(3, 2, nil), yPred)
	var valErr *errors.ValueError
	if !errors.As(err, &valErr) {
		t.Errorf("R2ScoreMatrix() with a 3×2 input: expected ValueError, got %v", err)
	}

	_, err = R2ScoreMatrix(mat.NewDense(6, 1, mat.Col(nil, 0, yTrue)), mat.NewDense(2, 1, []float64{1, 5}))
	var dimErr *errors.DimensionError
	if !errors.As(err, &dimErr) {
		t.Errorf("R2ScoreMatrix() with mismatched rows: expected DimensionError, got %v", err)
	}
}
