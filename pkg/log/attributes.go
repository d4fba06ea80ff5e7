// Package log defines standard attribute keys for model operations.
//
// Using these keys consistently across fit, predict, cross-validation and
// tuning log records enables filtering and analysis of structured logs.
// The keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples").

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model implementation.
	// Examples: "gaussian_process", "bayesian_linear"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "fit_and_predict", "tune"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "model", "crossval", "tune"
	ComponentKey = "ml.component"

	// FidelityKey names the prediction fidelity being produced.
	// Standard values: "mean", "marginal", "joint"
	FidelityKey = "predict.fidelity"

	// DerivedFromKey names the richer fidelity a fallback derivation
	// consumed, e.g. a marginal taken from a joint covariance diagonal.
	DerivedFromKey = "predict.derived_from"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of rows in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of query features in a prediction.
	FeaturesKey = "data.features"

	// DatasetsKey indicates the number of datasets in a tuning objective.
	DatasetsKey = "data.datasets"
)

// Cross-validation context.
const (
	// FoldNameKey identifies a fold within a partition.
	FoldNameKey = "cv.fold"

	// FoldCountKey indicates the number of folds in a partition.
	FoldCountKey = "cv.folds"
)

// Performance and tuning metrics.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ObjectiveKey records the scalar objective value of a tuning evaluation.
	ObjectiveKey = "tune.objective"

	// EvaluationKey records the evaluation counter during tuning.
	EvaluationKey = "tune.evaluation"

	// InvalidEvalsKey records how many evaluations were rejected as
	// numerically invalid during a tuning run.
	InvalidEvalsKey = "tune.invalid_evaluations"

	// ScoreKey records a cross-validated metric score.
	ScoreKey = "metrics.score"
)
