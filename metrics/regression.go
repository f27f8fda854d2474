package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/scigolabs/nbtext/pkg/errors"
)

// MSE returns the mean squared error between true and predicted values.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors("MSE", yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += d * d
	}
	return sum / float64(n), nil
}

// RMSE returns the root mean squared error.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE returns the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors("MAE", yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score returns the coefficient of determination. A constant yTrue makes
// the score undefined; a warning is raised and 0 is returned, matching
// scikit-learn.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors("R2Score", yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	var mean float64
	for i := 0; i < n; i++ {
		mean += yTrue.AtVec(i)
	}
	mean /= float64(n)

	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		d := yTrue.AtVec(i) - yPred.AtVec(i)
		ssRes += d * d
		t := yTrue.AtVec(i) - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "yTrue is constant", 0))
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}
