package tree

import (
	"math"

	"github.com/YuminosukeSato/regtree/pkg/errors"
)

// Config holds the stopping rules of a tree build. It is passed by value down
// the recursion and never modified.
type Config struct {
	// MinErrorReduction (tolS) は分割を採用するのに必要な誤差の最小減少量
	MinErrorReduction float64
	// MinSplitSize (tolN) は分割後の各部分集合の最小行数
	MinSplitSize int
	// Leaf は葉の種類
	Leaf LeafKind
	// MaxDepth は木の最大深さ。0 は無制限
	MaxDepth int
}

// DefaultConfig returns tolS=1, tolN=4, regression leaves and no depth bound.
func DefaultConfig() Config {
	return Config{
		MinErrorReduction: 1,
		MinSplitSize:      4,
		Leaf:              RegressionLeaf,
		MaxDepth:          0,
	}
}

// Validate はパラメータを検証し、不正な値には ValidationError を返す
func (c Config) Validate() error {
	if math.IsNaN(c.MinErrorReduction) || c.MinErrorReduction < 0 {
		return errors.NewValidationError("min_error_reduction", "must be a non-negative number", c.MinErrorReduction)
	}
	if c.MinSplitSize < 1 {
		return errors.NewValidationError("min_split_size", "must be at least 1", c.MinSplitSize)
	}
	if c.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be 0 (unbounded) or positive", c.MaxDepth)
	}
	if _, err := c.Leaf.Strategy(); err != nil {
		return err
	}
	return nil
}
