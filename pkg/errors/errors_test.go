package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("MultinomialNB", "Predict")

	var nfe *NotFittedError
	if !As(err, &nfe) {
		t.Fatalf("Expected NotFittedError, got %T", err)
	}
	if nfe.ModelName != "MultinomialNB" || nfe.Method != "Predict" {
		t.Errorf("Unexpected fields: %+v", nfe)
	}
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestDimensionError(t *testing.T) {
	tests := []struct {
		name string
		axis int
		want string
	}{
		{name: "row axis", axis: 0, want: "rows"},
		{name: "feature axis", axis: 1, want: "features"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDimensionError("Fit", 10, 7, tt.axis)
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected axis name %q in message: %s", tt.want, err.Error())
			}
			var de *DimensionError
			if !As(err, &de) {
				t.Fatalf("Expected DimensionError, got %T", err)
			}
			if de.Expected != 10 || de.Got != 7 {
				t.Errorf("Unexpected fields: %+v", de)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("alpha", "must be non-negative", -1.0)
	if !strings.Contains(err.Error(), "alpha") {
		t.Errorf("Expected parameter name in message: %s", err.Error())
	}
	var ve *ValidationError
	if !As(err, &ve) {
		t.Fatalf("Expected ValidationError, got %T", err)
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	inner := New("backing failure")
	err := NewModelError("Fit", "count accumulation", inner)
	if !Is(err, inner) {
		t.Error("ModelError should unwrap to the inner error")
	}
}

func TestFetchErrorUnwrap(t *testing.T) {
	inner := New("connection refused")
	err := NewFetchError("20newsgroups", "https://example.com/20news.tar.gz", inner)
	if !Is(err, inner) {
		t.Error("FetchError should unwrap to the inner error")
	}
	if !strings.Contains(err.Error(), "20newsgroups") {
		t.Errorf("Expected dataset name in message: %s", err.Error())
	}
}

func TestWarnHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	w := NewUndefinedMetricWarning("AUC", "only one class present", 0.5)
	Warn(w)

	if captured == nil {
		t.Fatal("Warning handler was not invoked")
	}
	var umw *UndefinedMetricWarning
	if !As(captured, &umw) {
		t.Fatalf("Expected UndefinedMetricWarning, got %T", captured)
	}
	if umw.Result != 0.5 {
		t.Errorf("Expected substituted result 0.5, got %v", umw.Result)
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("feature_log_prob", []float64{-1.2, -0.5}, 0); err != nil {
		t.Errorf("Finite values should pass: %v", err)
	}

	nan := []float64{-1.2, nanValue()}
	err := CheckNumericalStability("feature_log_prob", nan, 3)
	if err == nil {
		t.Fatal("NaN should be detected")
	}
	var nie *NumericalInstabilityError
	if !As(err, &nie) {
		t.Fatalf("Expected NumericalInstabilityError, got %T", err)
	}
	if nie.Iteration != 3 {
		t.Errorf("Expected iteration 3, got %d", nie.Iteration)
	}
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}
