package tree

import (
	"math"

	"github.com/YuminosukeSato/regtree/core/dataset"
	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// split is the outcome of chooseBestSplit. When ok is false the caller must
// build a leaf from the whole dataset.
type split struct {
	ok        bool
	feature   int
	threshold float64

	greater     *dataset.Dataset
	lessOrEqual *dataset.Dataset

	baseError float64
	bestError float64
	// skipped は特異な部分集合のため捨てた候補の数
	skipped int
}

// scoreSubset returns the strategy error of ds. A singular design matrix is not
// an error here: it is reported through the second result so the search can
// discard the candidate.
func scoreSubset(strategy LeafStrategy, ds *dataset.Dataset) (float64, bool, error) {
	e, err := strategy.Error(ds)
	if err != nil {
		if errors.Is(err, errors.ErrSingularMatrix) {
			return math.Inf(1), true, nil
		}
		return 0, false, err
	}
	return e, false, nil
}

// chooseBestSplit は全ての特徴量 × 観測値の組を試し、二つの部分集合の誤差の
// 和が最小になる分割を返す。
//
// 候補は特徴量の昇順、閾値の昇順で列挙し、同じ誤差なら最初に見つかった候補を残す。
func chooseBestSplit(ds *dataset.Dataset, strategy LeafStrategy, cfg Config) (split, error) {
	if ds.AllTargetsEqual() {
		return split{}, nil
	}

	baseError, _, err := scoreSubset(strategy, ds)
	if err != nil {
		return split{}, err
	}

	best := split{baseError: baseError, bestError: math.Inf(1)}
	found := false
	for j := 0; j < ds.NumFeatures(); j++ {
		for _, v := range ds.DistinctValues(j) {
			greater, lessOrEqual := ds.Split(j, v)
			if greater.Len() < cfg.MinSplitSize || lessOrEqual.Len() < cfg.MinSplitSize {
				continue
			}

			eg, singularG, err := scoreSubset(strategy, greater)
			if err != nil {
				return split{}, err
			}
			el, singularL, err := scoreSubset(strategy, lessOrEqual)
			if err != nil {
				return split{}, err
			}
			if singularG || singularL {
				best.skipped++
				continue
			}

			if e := eg + el; !found || e < best.bestError {
				found = true
				best.feature, best.threshold, best.bestError = j, v, e
			}
		}
	}

	if !found || baseError-best.bestError < cfg.MinErrorReduction {
		return split{skipped: best.skipped}, nil
	}

	best.greater, best.lessOrEqual = ds.Split(best.feature, best.threshold)
	if best.greater.Len() < cfg.MinSplitSize || best.lessOrEqual.Len() < cfg.MinSplitSize {
		return split{skipped: best.skipped}, nil
	}
	best.ok = true
	return best, nil
}
