package errors

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestCheckScalar(t *testing.T) {
	if err := CheckScalar("lambda_search", 1.5, 0); err != nil {
		t.Errorf("finite value should pass: %v", err)
	}
	if err := CheckScalar("lambda_search", math.NaN(), 0); err == nil {
		t.Error("NaN should fail")
	}
	if err := CheckScalar("lambda_search", math.Inf(-1), 0); err == nil {
		t.Error("Inf should fail")
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("fitted_lambdas", []float64{-0.3, 1.0, 0.7}, 0); err != nil {
		t.Errorf("finite vector should pass: %v", err)
	}

	err := CheckNumericalStability("fitted_lambdas", []float64{-0.3, math.NaN(), 0.7}, 0)
	if err == nil {
		t.Fatal("vector with NaN should fail")
	}
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %T", err)
	}
	if numErr.Operation != "fitted_lambdas" {
		t.Errorf("unexpected operation: %s", numErr.Operation)
	}
}

func TestCheckMatrix(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("PowerTransformer.Fit", X, 2, 2, 0); err != nil {
		t.Errorf("finite matrix should pass: %v", err)
	}

	X.Set(1, 0, math.Inf(1))
	err := CheckMatrix("PowerTransformer.Fit", X, 2, 2, 0)
	if err == nil {
		t.Fatal("matrix with Inf should fail")
	}
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected NumericalInstabilityError, got %T", err)
	}
}
