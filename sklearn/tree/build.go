package tree

import (
	"context"

	"github.com/YuminosukeSato/regtree/core/dataset"
	"github.com/YuminosukeSato/regtree/pkg/errors"
	"github.com/YuminosukeSato/regtree/pkg/log"
)

type builder struct {
	cfg      Config
	strategy LeafStrategy
	logger   log.Logger
	debug    bool
	skipped  int
}

// Build grows a regression tree over ds using cfg.
//
// A singular design matrix met while scoring split candidates only discards
// that candidate; the number discarded is reported once through errors.Warn.
// A singular matrix while fitting a leaf aborts the build and no tree is
// returned.
func Build(ds *dataset.Dataset, cfg Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.IsEmpty() {
		return nil, errors.NewModelError("tree.Build", "empty data", errors.ErrEmptyData)
	}

	strategy, err := cfg.Leaf.Strategy()
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("tree").With(log.LeafStrategyKey, cfg.Leaf.String())
	b := &builder{
		cfg:      cfg,
		strategy: strategy,
		logger:   logger,
		debug:    logger.Enabled(context.Background(), log.LevelDebug),
	}

	root, err := b.grow(ds, 0)
	if err != nil {
		return nil, err
	}
	if b.skipped > 0 {
		errors.Warn(errors.NewSingularSplitWarning("tree.Build", b.skipped))
	}

	return &Tree{Root: root, Leaf: cfg.Leaf, NFeatures: ds.NumFeatures()}, nil
}

// grow は再帰的に部分木を構築する
func (b *builder) grow(ds *dataset.Dataset, depth int) (*Node, error) {
	if b.cfg.MaxDepth > 0 && depth >= b.cfg.MaxDepth {
		return b.leaf(ds)
	}

	s, err := chooseBestSplit(ds, b.strategy, b.cfg)
	if err != nil {
		return nil, err
	}
	b.skipped += s.skipped
	if !s.ok {
		return b.leaf(ds)
	}

	if b.debug {
		b.logger.Debug("Split accepted",
			log.DepthKey, depth,
			log.SamplesKey, ds.Len(),
			log.FeatureIndexKey, s.feature,
			log.ThresholdKey, s.threshold,
			log.ErrorReductionKey, s.baseError-s.bestError,
		)
	}

	left, err := b.grow(s.greater, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := b.grow(s.lessOrEqual, depth+1)
	if err != nil {
		return nil, err
	}

	return &Node{
		Kind:      InternalNode,
		Feature:   s.feature,
		Threshold: s.threshold,
		Left:      left,
		Right:     right,
		NSamples:  ds.Len(),
		Error:     s.baseError,
	}, nil
}

func (b *builder) leaf(ds *dataset.Dataset) (*Node, error) {
	payload, err := b.strategy.Leaf(ds)
	if err != nil {
		return nil, err
	}
	e, err := b.strategy.Error(ds)
	if err != nil {
		return nil, err
	}
	return &Node{Kind: LeafNode, Payload: payload, NSamples: ds.Len(), Error: e}, nil
}
