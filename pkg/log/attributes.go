// Standard attribute keys for tree construction and boosting.
//
// Keys follow a hierarchical naming convention ("model.name", "tree.nodes") so that
// log lines from the booster and the boosting loop can be filtered uniformly.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the model type, e.g. "GBM".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "build".
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of rows in the dataset or task.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of feature slots (maximum feature index + 1).
	FeaturesKey = "data.features"

	// NonZerosKey is the number of stored (row, feature) entries.
	NonZerosKey = "data.nnz"
)

// Tree construction.
const (
	// NodesKey is the arena size after a build.
	NodesKey = "tree.nodes"

	// LeavesKey is the number of reachable leaves.
	LeavesKey = "tree.leaves"

	// DepthKey is the depth of the deepest reachable leaf.
	DepthKey = "tree.depth"

	// SplitsKey counts committed splits during one build.
	SplitsKey = "tree.splits"

	// PrunedKey counts nodes collapsed by bottom-up pruning.
	PrunedKey = "tree.pruned"

	// TasksKey counts expanded tasks during one build.
	TasksKey = "tree.tasks"
)

// Performance and training metrics.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records the training loss (RMSE on the training rows).
	LossKey = "metrics.loss"

	// ValidLossKey records the loss on the validation rows.
	ValidLossKey = "metrics.valid_loss"

	// IterationKey records the boosting round.
	IterationKey = "training.iteration"
)

// Hyperparameters.
const (
	// LearningRateKey records the shrinkage applied to leaf values.
	LearningRateKey = "hyperparams.learning_rate"

	// MaxDepthKey records the configured maximum depth.
	MaxDepthKey = "hyperparams.max_depth"

	// RegularizationKey records the regularizer name.
	RegularizationKey = "hyperparams.regularization"
)

// Error context.
const (
	// ErrorTypeKey categorizes the error, e.g. "ConfigurationError".
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard operation values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationBuild   = "build"
)
