// Standard attribute keys for machine learning log records. Using these keys
// keeps log analysis consistent across packages; they follow a hierarchical
// naming convention ("model.name", "data.samples") for structured filtering.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "MultinomialNB", "CountVectorizer"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "partial_fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "naive_bayes", "preprocessing", "datasets", "metrics"
	ComponentKey = "ml.component"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of target classes.
	ClassesKey = "data.classes"

	// NNZKey indicates the number of stored entries of a sparse matrix.
	NNZKey = "data.nnz"

	// ChunkKey indicates the chunk index during incremental fitting.
	ChunkKey = "data.chunk"

	// ChunkSizeKey indicates the row count of an incremental fitting chunk.
	ChunkSizeKey = "data.chunk_size"
)

// Performance and evaluation.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy, in [0, 1].
	AccuracyKey = "metrics.accuracy"
)

// Dataset fetching.
const (
	// DatasetKey names the dataset being fetched or loaded.
	DatasetKey = "dataset.name"

	// SubsetKey names the dataset split ("train", "test", "all").
	SubsetKey = "dataset.subset"

	// CacheDirKey records the local cache directory in use.
	CacheDirKey = "dataset.cache_dir"

	// URLKey records the remote source of a download.
	URLKey = "dataset.url"
)
