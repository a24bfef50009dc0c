// Package log defines standard attribute keys for machine learning operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in skutil. Using these standard keys enables better
// log analysis, monitoring, and debugging of preprocessing workflows.
//
// The keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
// These attributes identify the estimator type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of estimator.
	// Examples: "PowerTransformer", "SelectivePCA", "SelectiveTruncatedSVD"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "inverse_transform", "fit_transform"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "preprocessing", "decomposition"
	ComponentKey = "ml.component"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	// Important for dimensionality tracking and debugging shape mismatches.
	FeaturesKey = "data.features"
)

// Estimation Context
// These attributes describe per-feature parameter estimation.
const (
	// LambdaKey records a fitted power-transform shape parameter.
	LambdaKey = "estimate.lambda"

	// NJobsKey records the configured degree of parallelism.
	NJobsKey = "config.n_jobs"

	// WorkersKey records the number of worker goroutines actually used.
	WorkersKey = "config.workers"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	OperationFit              = "fit"
	OperationTransform        = "transform"
	OperationInverseTransform = "inverse_transform"
	OperationFitTransform     = "fit_transform"
)
