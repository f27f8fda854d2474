package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for models that can be trained.
type Fitter interface {
	// Fit trains the model on the given data.
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that can predict.
type Predictor interface {
	// Predict returns predictions for the input data.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the model's score on the given data. For classifiers
	// this is the exact-match accuracy in [0, 1].
	Score(X mat.Matrix, y mat.Matrix) (float64, error)
}

// IncrementalLearner is the interface for models that support incremental
// learning over data chunks.
type IncrementalLearner interface {
	// PartialFit updates the model from one chunk without discarding state
	// accumulated from previous chunks. classes must carry the full class
	// set on the first call of a classification model; later calls may pass
	// nil.
	PartialFit(X mat.Matrix, y mat.Matrix, classes []int) error
}

// Classifier combines the interfaces of classification models.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns probability estimates for each class.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the unique classes seen during fitting.
	Classes() []int
}

// ClassifierWithPartialFit combines interfaces for incremental classifiers.
type ClassifierWithPartialFit interface {
	Classifier
	IncrementalLearner
}
