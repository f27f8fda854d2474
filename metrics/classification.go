// Package metrics provides evaluation metrics for classification models.
package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/scigolabs/nbtext/pkg/errors"
)

// logLossEpsilon clips predicted probabilities away from 0 and 1 so that
// log loss stays finite.
const logLossEpsilon = 1e-15

// validateVectors checks the common preconditions shared by all metrics.
func validateVectors(op string, yTrue, yPred *mat.VecDense) error {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 || yPred.Len() == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if yTrue.Len() != yPred.Len() {
		return errors.NewDimensionError(op, yTrue.Len(), yPred.Len(), 0)
	}
	return nil
}

// requireBinary checks that all labels are exactly 0 or 1.
func requireBinary(op string, y *mat.VecDense) error {
	for i := 0; i < y.Len(); i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError(op, "labels must be binary (0 or 1)")
		}
	}
	return nil
}

// Accuracy returns the exact match rate between true and predicted labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors("Accuracy", yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyScore returns the exact match rate for integer label slices. It is
// the counterpart of Accuracy for workflows that carry class labels as ints.
func AccuracyScore(yTrue, yPred []int) (float64, error) {
	if len(yTrue) == 0 {
		return 0, errors.NewValueError("AccuracyScore", "empty label slice")
	}
	if len(yTrue) != len(yPred) {
		return 0, errors.NewDimensionError("AccuracyScore", len(yTrue), len(yPred), 0)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ClassificationError returns the misclassification rate, 1 - accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		var ve *errors.ValueError
		var de *errors.DimensionError
		switch {
		case errors.As(err, &ve):
			return 0, errors.NewValueError("ClassificationError", ve.Message)
		case errors.As(err, &de):
			return 0, errors.NewDimensionError("ClassificationError", de.Expected, de.Got, de.Axis)
		}
		return 0, err
	}
	return 1 - acc, nil
}

// AUC computes the area under the ROC curve for binary labels using the
// rank-statistic formulation, with tied scores receiving averaged ranks.
// When only one class is present the metric is undefined; a warning is
// raised and 0.5 is returned.
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors("AUC", yTrue, yPred); err != nil {
		return 0, err
	}
	if err := requireBinary("AUC", yTrue); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	nPos := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			nPos++
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC", "only one class present in yTrue", 0.5))
		return 0.5, nil
	}

	// Rank predictions ascending, averaging ranks over ties.
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return yPred.AtVec(idx[a]) < yPred.AtVec(idx[b])
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && yPred.AtVec(idx[j]) == yPred.AtVec(idx[i]) {
			j++
		}
		// Ranks are 1-based; tied entries share the mean rank of the group.
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	var rankSum float64
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			rankSum += ranks[i]
		}
	}
	auc := (rankSum - float64(nPos)*float64(nPos+1)/2) / (float64(nPos) * float64(nNeg))
	return auc, nil
}

// AUCMatrix computes AUC on matrix-shaped input, using the first column of
// each matrix.
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	tVec, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	pVec, err := firstColumn("AUCMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AUC(tVec, pVec)
}

func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	r, c := m.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}

// BinaryLogLoss computes the mean cross-entropy between binary labels and
// predicted probabilities. Probabilities are clipped to
// [logLossEpsilon, 1-logLossEpsilon] to avoid log(0).
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors("BinaryLogLoss", yTrue, yPred); err != nil {
		return 0, err
	}
	if err := requireBinary("BinaryLogLoss", yTrue); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		p := yPred.AtVec(i)
		if p < logLossEpsilon {
			p = logLossEpsilon
		} else if p > 1-logLossEpsilon {
			p = 1 - logLossEpsilon
		}
		if yTrue.AtVec(i) == 1 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(n), nil
}
