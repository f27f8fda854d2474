package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMSE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	mse, err := MSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSE failed: %v", err)
	}
	if mse != 0 {
		t.Errorf("MSE of perfect predictions = %v, want 0", mse)
	}

	yPred = mat.NewVecDense(4, []float64{2, 3, 4, 5})
	mse, err = MSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSE failed: %v", err)
	}
	if mse != 1 {
		t.Errorf("MSE of unit-off predictions = %v, want 1", mse)
	}
}

func TestRMSE(t *testing.T) {
	yTrue := mat.NewVecDense(2, []float64{0, 0})
	yPred := mat.NewVecDense(2, []float64{3, 4})

	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE failed: %v", err)
	}
	want := math.Sqrt(12.5)
	if math.Abs(rmse-want) > 1e-12 {
		t.Errorf("RMSE = %v, want %v", rmse, want)
	}
}

func TestMAE(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(3, []float64{2, 2, 1})

	mae, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAE failed: %v", err)
	}
	if mae != 1 {
		t.Errorf("MAE = %v, want 1", mae)
	}
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if r2 != 1 {
		t.Errorf("R2 of perfect predictions = %v, want 1", r2)
	}

	// Predicting the mean everywhere gives R2 = 0.
	mean := mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5})
	r2, err = R2Score(yTrue, mean)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if math.Abs(r2) > 1e-12 {
		t.Errorf("R2 of mean predictions = %v, want 0", r2)
	}
}

func TestR2ScoreConstantTruth(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{2, 2, 2})
	yPred := mat.NewVecDense(3, []float64{1, 2, 3})

	r2, err := R2Score(yTrue, yPred)
	if err != nil {
		t.Fatalf("R2Score failed: %v", err)
	}
	if r2 != 0 {
		t.Errorf("R2 with constant yTrue = %v, want 0", r2)
	}
}

func TestRegressionMetricErrors(t *testing.T) {
	short := mat.NewVecDense(2, []float64{1, 2})
	long := mat.NewVecDense(3, []float64{1, 2, 3})

	if _, err := MSE(short, long); err == nil {
		t.Error("MSE with mismatched lengths should fail")
	}
	if _, err := MAE(nil, short); err == nil {
		t.Error("MAE with nil input should fail")
	}
}
