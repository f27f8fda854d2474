// Package naive_bayes implements naive Bayes classifiers for discrete count
// features, compatible with scikit-learn's naive_bayes module.
package naive_bayes

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/scigolabs/nbtext/core/model"
	"github.com/scigolabs/nbtext/core/parallel"
	"github.com/scigolabs/nbtext/metrics"
	"github.com/scigolabs/nbtext/pkg/errors"
	"github.com/scigolabs/nbtext/pkg/log"
	"github.com/scigolabs/nbtext/sparse"
)

// alphaFloor is the smallest effective smoothing value. Requested alphas
// below it are clipped so log-probability tables stay finite.
const alphaFloor = 1e-10

// parallelRowThreshold is the row count above which prediction parallelizes
// across samples.
const parallelRowThreshold = 64

// MultinomialNB is a naive Bayes classifier for multinomially distributed
// count data such as bag-of-words term counts. It supports batch fitting,
// incremental fitting over disjoint chunks, and prediction on dense or
// sparse feature matrices. Incremental fitting over a partition of the data
// accumulates exactly the counts batch fitting would, so both reach the
// same model.
type MultinomialNB struct {
	state *model.StateManager

	// Hyperparameters
	alpha      float64   // Additive (Lidstone/Laplace) smoothing
	fitPrior   bool      // Learn class priors from data
	classPrior []float64 // Explicit prior, overrides fitPrior

	// Learned parameters
	classes_        []int
	classIndex_     map[int]int
	classCount_     []float64   // Samples per class
	featureCount_   [][]float64 // Per-class feature count sums (nClasses x nFeatures)
	classLogPrior_  []float64
	featureLogProb_ [][]float64
	nFeatures_      int
	nSamplesSeen_   int
}

// Interface conformance.
var (
	_ model.ClassifierWithPartialFit = (*MultinomialNB)(nil)
	_ model.StreamingEstimator       = (*MultinomialNB)(nil)
)

// MultinomialNBOption is a functional option for MultinomialNB.
type MultinomialNBOption func(*MultinomialNB)

// WithAlpha sets the additive smoothing parameter (default 1.0). Values
// below a small floor are clipped with a warning.
func WithAlpha(alpha float64) MultinomialNBOption {
	return func(nb *MultinomialNB) {
		nb.alpha = alpha
	}
}

// WithFitPrior controls whether class priors are learned from the data
// (default true). When false a uniform prior is used.
func WithFitPrior(fitPrior bool) MultinomialNBOption {
	return func(nb *MultinomialNB) {
		nb.fitPrior = fitPrior
	}
}

// WithClassPrior sets explicit class prior probabilities, overriding
// fitPrior. The slice must match the class count at fit time.
func WithClassPrior(prior []float64) MultinomialNBOption {
	return func(nb *MultinomialNB) {
		nb.classPrior = append([]float64(nil), prior...)
	}
}

// WithClasses declares the full class set up front, sizing the per-class
// tables before any data is seen. This lets FitStream and PartialFit begin
// without an explicit classes argument.
func WithClasses(classes []int) MultinomialNBOption {
	return func(nb *MultinomialNB) {
		nb.presetClasses(classes)
	}
}

// NewMultinomialNB creates a new multinomial naive Bayes classifier.
func NewMultinomialNB(opts ...MultinomialNBOption) *MultinomialNB {
	nb := &MultinomialNB{
		state:    model.NewStateManager(),
		alpha:    1.0,
		fitPrior: true,
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

func (nb *MultinomialNB) presetClasses(classes []int) {
	sorted := append([]int(nil), classes...)
	sort.Ints(sorted)
	nb.classes_ = sorted
	nb.classIndex_ = make(map[int]int, len(sorted))
	for i, c := range sorted {
		nb.classIndex_[c] = i
	}
	nb.classCount_ = make([]float64, len(sorted))
	// Feature tables are allocated on first data.
	nb.featureCount_ = nil
	nb.nFeatures_ = 0
	nb.nSamplesSeen_ = 0
}

func (nb *MultinomialNB) effectiveAlpha() float64 {
	if nb.alpha < alphaFloor {
		errors.Warn(errors.NewSmoothingWarning("alpha", nb.alpha, alphaFloor))
		return alphaFloor
	}
	return nb.alpha
}

// labelsFromY extracts integer labels from the n x 1 target matrix.
func labelsFromY(op string, y mat.Matrix, wantRows int) ([]int, error) {
	r, c := y.Dims()
	if c != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector (n x 1 matrix)")
	}
	if r != wantRows {
		return nil, errors.NewDimensionError(op, wantRows, r, 0)
	}
	labels := make([]int, r)
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		label := int(v)
		if float64(label) != v {
			return nil, errors.NewValueError(op, "class labels must be integers")
		}
		labels[i] = label
	}
	return labels, nil
}

// Fit trains the classifier from scratch on X and y, discarding any state
// from previous fits. Classes are derived from the labels in y. Feature
// values must be nonnegative counts.
func (nb *MultinomialNB) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "MultinomialNB.Fit")

	start := time.Now()
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("MultinomialNB.Fit", "empty data", errors.ErrEmptyData)
	}

	labels, err := labelsFromY("MultinomialNB.Fit", y, rows)
	if err != nil {
		return err
	}

	seen := make(map[int]struct{})
	var classes []int
	for _, l := range labels {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			classes = append(classes, l)
		}
	}

	nb.state.Reset()
	nb.presetClasses(classes)

	if err := nb.checkClassPrior(); err != nil {
		nb.classes_ = nil
		nb.classIndex_ = nil
		return err
	}
	if err := nb.accumulate(X, labels); err != nil {
		// A failed fit leaves no usable state.
		nb.classes_ = nil
		nb.classIndex_ = nil
		return err
	}
	nb.recompute()
	nb.nSamplesSeen_ = rows
	nb.state.SetDimensions(nb.nFeatures_, nb.nSamplesSeen_)
	nb.state.SetFitted()

	slog.Debug("fit complete",
		log.ModelNameKey, "MultinomialNB",
		log.OperationKey, "fit",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.ClassesKey, len(nb.classes_),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// PartialFit updates the classifier from one chunk of data without
// discarding counts accumulated from previous chunks. The first call must
// supply the full class set so the per-class tables are sized correctly
// before every class has been observed; later calls may pass nil.
func (nb *MultinomialNB) PartialFit(X, y mat.Matrix, classes []int) (err error) {
	defer errors.Recover(&err, "MultinomialNB.PartialFit")

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("MultinomialNB.PartialFit", "empty data", errors.ErrEmptyData)
	}

	if nb.classes_ == nil {
		if len(classes) == 0 {
			return errors.NewValidationError("classes", "must be provided on the first PartialFit call", classes)
		}
		nb.presetClasses(classes)
	} else if len(classes) > 0 {
		if !sameClassSet(nb.classes_, classes) {
			return errors.NewValidationError("classes", "must match the classes from the first call", classes)
		}
	}
	if err := nb.checkClassPrior(); err != nil {
		return err
	}

	labels, err := labelsFromY("MultinomialNB.PartialFit", y, rows)
	if err != nil {
		return err
	}

	if err := nb.accumulate(X, labels); err != nil {
		return err
	}
	nb.recompute()
	nb.nSamplesSeen_ += rows
	nb.state.SetDimensions(nb.nFeatures_, nb.nSamplesSeen_)
	nb.state.SetFitted()
	return nil
}

func sameClassSet(have, got []int) bool {
	if len(have) != len(got) {
		return false
	}
	sorted := append([]int(nil), got...)
	sort.Ints(sorted)
	for i, c := range sorted {
		if have[i] != c {
			return false
		}
	}
	return true
}

// accumulate adds the counts of one batch into the per-class tables. All
// validation happens before any table is touched, so a rejected batch
// leaves the accumulated counts exactly as they were.
func (nb *MultinomialNB) accumulate(X mat.Matrix, labels []int) error {
	if coo, ok := X.(*sparse.COO); ok {
		X = coo.ToCSR()
	}
	rows, cols := X.Dims()

	if nb.featureCount_ != nil && cols != nb.nFeatures_ {
		return errors.NewDimensionError("MultinomialNB.PartialFit", nb.nFeatures_, cols, 1)
	}

	classIdx := make([]int, rows)
	for i, l := range labels {
		ci, ok := nb.classIndex_[l]
		if !ok {
			return errors.NewValidationError("y", "label outside the declared class set", l)
		}
		classIdx[i] = ci
	}

	if err := checkNonnegative(X); err != nil {
		return err
	}

	if nb.featureCount_ == nil {
		nb.nFeatures_ = cols
		nb.featureCount_ = make([][]float64, len(nb.classes_))
		for i := range nb.featureCount_ {
			nb.featureCount_[i] = make([]float64, cols)
		}
	}

	if s, ok := X.(*sparse.CSR); ok {
		for i := 0; i < rows; i++ {
			colsIdx, vals := s.Row(i)
			for k, j := range colsIdx {
				nb.featureCount_[classIdx[i]][j] += vals[k]
			}
			nb.classCount_[classIdx[i]]++
		}
		return nil
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			nb.featureCount_[classIdx[i]][j] += X.At(i, j)
		}
		nb.classCount_[classIdx[i]]++
	}
	return nil
}

// checkNonnegative rejects matrices carrying negative values, which have no
// multinomial count interpretation.
func checkNonnegative(X mat.Matrix) error {
	if s, ok := X.(*sparse.CSR); ok {
		rows, _ := s.Dims()
		for i := 0; i < rows; i++ {
			_, vals := s.Row(i)
			for _, v := range vals {
				if v < 0 {
					return errors.NewValueError("MultinomialNB", "negative values in data passed to MultinomialNB")
				}
			}
		}
		return nil
	}
	rows, cols := X.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if X.At(i, j) < 0 {
				return errors.NewValueError("MultinomialNB", "negative values in data passed to MultinomialNB")
			}
		}
	}
	return nil
}

// checkClassPrior verifies an explicit class prior covers every class.
func (nb *MultinomialNB) checkClassPrior() error {
	if nb.classPrior != nil && len(nb.classPrior) != len(nb.classes_) {
		return errors.NewValidationError("classPrior",
			"length must match the number of classes", len(nb.classPrior))
	}
	return nil
}

// recompute rebuilds the smoothed log-probability tables from the raw
// counts.
func (nb *MultinomialNB) recompute() {
	alpha := nb.effectiveAlpha()
	nClasses := len(nb.classes_)

	nb.featureLogProb_ = make([][]float64, nClasses)
	for c := 0; c < nClasses; c++ {
		row := make([]float64, nb.nFeatures_)
		var smoothedTotal float64
		for j := 0; j < nb.nFeatures_; j++ {
			smoothedTotal += nb.featureCount_[c][j] + alpha
		}
		logTotal := math.Log(smoothedTotal)
		for j := 0; j < nb.nFeatures_; j++ {
			row[j] = math.Log(nb.featureCount_[c][j]+alpha) - logTotal
		}
		nb.featureLogProb_[c] = row
	}

	nb.classLogPrior_ = make([]float64, nClasses)
	switch {
	case nb.classPrior != nil:
		for c := range nb.classLogPrior_ {
			nb.classLogPrior_[c] = math.Log(nb.classPrior[c])
		}
	case nb.fitPrior:
		var total float64
		for _, cc := range nb.classCount_ {
			total += cc
		}
		for c, cc := range nb.classCount_ {
			if cc > 0 {
				nb.classLogPrior_[c] = math.Log(cc) - math.Log(total)
			} else {
				// Unseen class under a learned prior: effectively zero
				// probability until observed.
				nb.classLogPrior_[c] = math.Inf(-1)
			}
		}
	default:
		uniform := -math.Log(float64(nClasses))
		for c := range nb.classLogPrior_ {
			nb.classLogPrior_[c] = uniform
		}
	}
}

// jointLogLikelihood computes jll[i][c] = classLogPrior[c] + the dot
// product of row i with featureLogProb[c], for every sample and class.
func (nb *MultinomialNB) jointLogLikelihood(X mat.Matrix) ([][]float64, error) {
	rows, cols := X.Dims()
	if cols != nb.nFeatures_ {
		return nil, errors.NewDimensionError("MultinomialNB.Predict", nb.nFeatures_, cols, 1)
	}
	nClasses := len(nb.classes_)
	jll := make([][]float64, rows)

	if coo, ok := X.(*sparse.COO); ok {
		X = coo.ToCSR()
	}

	switch s := X.(type) {
	case *sparse.CSR:
		parallel.ParallelizeWithThreshold(rows, parallelRowThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				scores := make([]float64, nClasses)
				colsIdx, vals := s.Row(i)
				for c := 0; c < nClasses; c++ {
					logProb := nb.featureLogProb_[c]
					score := nb.classLogPrior_[c]
					for k, j := range colsIdx {
						score += vals[k] * logProb[j]
					}
					scores[c] = score
				}
				jll[i] = scores
			}
		})
	default:
		parallel.ParallelizeWithThreshold(rows, parallelRowThreshold, func(start, end int) {
			row := make([]float64, cols)
			for i := start; i < end; i++ {
				mat.Row(row, i, X)
				scores := make([]float64, nClasses)
				for c := 0; c < nClasses; c++ {
					logProb := nb.featureLogProb_[c]
					score := nb.classLogPrior_[c]
					for j, v := range row {
						if v != 0 {
							score += v * logProb[j]
						}
					}
					scores[c] = score
				}
				jll[i] = scores
			}
		})
	}
	return jll, nil
}

// Predict returns the most likely class for each sample as an n x 1 matrix.
func (nb *MultinomialNB) Predict(X mat.Matrix) (preds mat.Matrix, err error) {
	defer errors.Recover(&err, "MultinomialNB.Predict")

	if !nb.state.IsFitted() {
		return nil, errors.NewNotFittedError("MultinomialNB", "Predict")
	}
	jll, err := nb.jointLogLikelihood(X)
	if err != nil {
		return nil, err
	}

	rows := len(jll)
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		best := 0
		for c := 1; c < len(jll[i]); c++ {
			if jll[i][c] > jll[i][best] {
				best = c
			}
		}
		out.Set(i, 0, float64(nb.classes_[best]))
	}
	return out, nil
}

// PredictLogProba returns log probability estimates, one column per class in
// Classes() order. Rows are normalized with log-sum-exp.
func (nb *MultinomialNB) PredictLogProba(X mat.Matrix) (logProba mat.Matrix, err error) {
	defer errors.Recover(&err, "MultinomialNB.PredictLogProba")

	if !nb.state.IsFitted() {
		return nil, errors.NewNotFittedError("MultinomialNB", "PredictLogProba")
	}
	jll, err := nb.jointLogLikelihood(X)
	if err != nil {
		return nil, err
	}

	rows := len(jll)
	nClasses := len(nb.classes_)
	out := mat.NewDense(rows, nClasses, nil)
	for i := 0; i < rows; i++ {
		maxScore := math.Inf(-1)
		for _, s := range jll[i] {
			if s > maxScore {
				maxScore = s
			}
		}
		var sumExp float64
		for _, s := range jll[i] {
			sumExp += math.Exp(s - maxScore)
		}
		logNorm := maxScore + math.Log(sumExp)
		for c, s := range jll[i] {
			out.Set(i, c, s-logNorm)
		}
	}
	return out, nil
}

// PredictProba returns probability estimates, one column per class in
// Classes() order.
func (nb *MultinomialNB) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	logProba, err := nb.PredictLogProba(X)
	if err != nil {
		return nil, err
	}
	rows, cols := logProba.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for c := 0; c < cols; c++ {
			out.Set(i, c, math.Exp(logProba.At(i, c)))
		}
	}
	return out, nil
}

// Score returns the exact-match accuracy of the classifier on X against the
// true labels y.
func (nb *MultinomialNB) Score(X, y mat.Matrix) (score float64, err error) {
	defer errors.Recover(&err, "MultinomialNB.Score")

	preds, err := nb.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := preds.Dims()
	yTrue := mat.NewVecDense(rows, nil)
	yPred := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yTrue.SetVec(i, y.At(i, 0))
		yPred.SetVec(i, preds.At(i, 0))
	}
	return metrics.Accuracy(yTrue, yPred)
}

// Classes returns the class labels in ascending order.
func (nb *MultinomialNB) Classes() []int {
	return append([]int(nil), nb.classes_...)
}

// NSamplesSeen returns the total number of samples accumulated across all
// fit and partial-fit calls since the last reset.
func (nb *MultinomialNB) NSamplesSeen() int {
	return nb.nSamplesSeen_
}

// FeatureLogProb returns the learned per-class feature log probabilities as
// an nClasses x nFeatures matrix.
func (nb *MultinomialNB) FeatureLogProb() mat.Matrix {
	out := mat.NewDense(len(nb.classes_), nb.nFeatures_, nil)
	for c := range nb.featureLogProb_ {
		out.SetRow(c, nb.featureLogProb_[c])
	}
	return out
}
