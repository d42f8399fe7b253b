package tree

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/regtree/core/dataset"
	"github.com/YuminosukeSato/regtree/core/model"
	"github.com/YuminosukeSato/regtree/metrics"
	"github.com/YuminosukeSato/regtree/pkg/errors"
	"github.com/YuminosukeSato/regtree/pkg/log"
)

var (
	_ model.Regressor       = (*DecisionTreeRegressor)(nil)
	_ model.ParameterGetter = (*DecisionTreeRegressor)(nil)
	_ model.ParameterSetter = (*DecisionTreeRegressor)(nil)
)

// DecisionTreeRegressor は scikit-learn 風のインターフェースを持つ回帰木
type DecisionTreeRegressor struct {
	model.BaseEstimator

	// ハイパーパラメータ
	minErrorReduction float64
	minSplitSize      int
	leaf              LeafKind
	maxDepth          int

	// 学習結果
	tree *Tree
}

// Option configures a DecisionTreeRegressor.
type Option func(*DecisionTreeRegressor)

// WithMinErrorReduction は分割に必要な誤差の最小減少量（tolS）を設定
func WithMinErrorReduction(tol float64) Option {
	return func(r *DecisionTreeRegressor) {
		r.minErrorReduction = tol
	}
}

// WithMinSplitSize は分割後の部分集合の最小行数（tolN）を設定
func WithMinSplitSize(n int) Option {
	return func(r *DecisionTreeRegressor) {
		r.minSplitSize = n
	}
}

// WithLeafStrategy は葉の種類を設定
func WithLeafStrategy(k LeafKind) Option {
	return func(r *DecisionTreeRegressor) {
		r.leaf = k
	}
}

// WithMaxDepth は木の最大深さを設定（0 は無制限）
func WithMaxDepth(depth int) Option {
	return func(r *DecisionTreeRegressor) {
		r.maxDepth = depth
	}
}

// NewDecisionTreeRegressor creates a regressor with DefaultConfig and applies opts.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	cfg := DefaultConfig()
	r := &DecisionTreeRegressor{
		minErrorReduction: cfg.MinErrorReduction,
		minSplitSize:      cfg.MinSplitSize,
		leaf:              cfg.Leaf,
		maxDepth:          cfg.MaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the build configuration of the current hyperparameters.
func (r *DecisionTreeRegressor) Config() Config {
	return Config{
		MinErrorReduction: r.minErrorReduction,
		MinSplitSize:      r.minSplitSize,
		Leaf:              r.leaf,
		MaxDepth:          r.maxDepth,
	}
}

// Fit builds the tree from X (n×p) and y (n×1).
func (r *DecisionTreeRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	// 失敗した再学習で以前の木を使い続けないよう、先に学習済み状態を捨てる
	r.tree = nil
	r.Reset()

	cfg := r.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	ds, err := dataset.FromMatrix(X, y)
	if err != nil {
		return err
	}

	logger := log.GetLoggerWithName("DecisionTreeRegressor").With(
		log.ModelNameKey, "DecisionTreeRegressor",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
	)
	logger.Info("Fit started",
		log.SamplesKey, ds.Len(),
		log.FeaturesKey, ds.NumFeatures(),
		log.HyperParamsKey, r.GetParams(),
	)

	start := time.Now()
	t, err := Build(ds, cfg)
	if err != nil {
		logger.Error("Tree build failed", err, log.ErrorCodeKey, log.ErrorCode(err))
		return err
	}

	r.tree = t
	r.SetFitted()
	logger.Info("Fit completed",
		log.DepthKey, t.Depth(),
		log.LeavesKey, t.NLeaves(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は各行の予測値を n×1 のベクトルで返す
func (r *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := r.RequireFitted("DecisionTreeRegressor", "Predict"); err != nil {
		return nil, err
	}
	preds, err := CreateForecast(r.tree, X, EvaluatorFor(r.tree.Leaf))
	if err != nil {
		return nil, err
	}
	return mat.NewVecDense(len(preds), preds), nil
}

// Score は決定係数 R² を返す
func (r *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	if err := r.RequireFitted("DecisionTreeRegressor", "Score"); err != nil {
		return 0, err
	}
	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

// Tree returns the fitted tree, or nil before Fit.
func (r *DecisionTreeRegressor) Tree() *Tree {
	return r.tree
}

// GetDepth は木の深さを返す（未学習なら 0）
func (r *DecisionTreeRegressor) GetDepth() int {
	if r.tree == nil {
		return 0
	}
	return r.tree.Depth()
}

// GetNLeaves は葉の数を返す（未学習なら 0）
func (r *DecisionTreeRegressor) GetNLeaves() int {
	if r.tree == nil {
		return 0
	}
	return r.tree.NLeaves()
}

// GetFeatureImportances は特徴量ごとの誤差減少の割合を返す
func (r *DecisionTreeRegressor) GetFeatureImportances() []float64 {
	if r.tree == nil {
		return nil
	}
	return r.tree.FeatureImportances()
}

// GetParams はハイパーパラメータを返す
func (r *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"min_error_reduction": r.minErrorReduction,
		"min_split_size":      r.minSplitSize,
		"leaf_strategy":       r.leaf.String(),
		"max_depth":           r.maxDepth,
	}
}

// SetParams はハイパーパラメータを設定する。
// 値は全て検証してから反映するため、エラー時は何も変更されない
func (r *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	cfg := r.Config()
	for key, value := range params {
		switch key {
		case "min_error_reduction":
			v, ok := toFloat(value)
			if !ok {
				return errors.NewValidationError(key, "must be a number", value)
			}
			cfg.MinErrorReduction = v
		case "min_split_size":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			cfg.MinSplitSize = v
		case "max_depth":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			cfg.MaxDepth = v
		case "leaf_strategy":
			switch v := value.(type) {
			case string:
				k, err := ParseLeafKind(v)
				if err != nil {
					return err
				}
				cfg.Leaf = k
			case LeafKind:
				cfg.Leaf = v
			default:
				return errors.NewValidationError(key, "must be 'regression' or 'model'", value)
			}
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.minErrorReduction = cfg.MinErrorReduction
	r.minSplitSize = cfg.MinSplitSize
	r.leaf = cfg.Leaf
	r.maxDepth = cfg.MaxDepth
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// toInt は JSON 由来の float64 も整数値であれば受け付ける
func toInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int64:
		return int(x), true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	default:
		return 0, false
	}
}
