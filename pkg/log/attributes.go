// Standard attribute keys used across the module. Keys follow a
// hierarchical "group.name" convention so log pipelines can filter on them.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "DecisionTreeRegressor".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation: "fit", "predict", "score", "forecast".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	SourceKey   = "data.source"
)

// Tree structure.
const (
	// DepthKey is the depth of the node being built or of the finished tree.
	DepthKey = "tree.depth"

	// LeavesKey is the number of leaves of a finished tree.
	LeavesKey = "tree.leaves"

	// FeatureIndexKey is the split feature of an internal node.
	FeatureIndexKey = "tree.feature"

	// ThresholdKey is the split threshold of an internal node.
	ThresholdKey = "tree.threshold"

	// LeafStrategyKey is "regression" or "model".
	LeafStrategyKey = "tree.leaf_strategy"

	// ErrorReductionKey is the drop in squared error achieved by a split.
	ErrorReductionKey = "tree.error_reduction"

	// SkippedKey counts split candidates discarded during the search.
	SkippedKey = "tree.skipped_candidates"
)

// Performance metrics.
const (
	DurationMsKey = "perf.duration_ms"
	MSEKey        = "metrics.mse"
	RMSEKey       = "metrics.rmse"
	R2ScoreKey    = "metrics.r2_score"
	PredsKey      = "preds.count"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	SuggestionKey = "error.suggestion"
)

// Hyperparameters.
const (
	HyperParamsKey = "model.hyperparams"
)

// Standard attribute values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationScore    = "score"
	OperationForecast = "forecast"

	PhaseTraining  = "training"
	PhaseInference = "inference"
	PhaseLoading   = "loading"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
