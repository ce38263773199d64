package features

import (
    "math"
    "testing"
)

func TestEvaluate(t *testing.T) {
    acc, err := NewEvaluator().Evaluate([]float64{1, 2, 3}, []float64{2, 2, 5})
    if err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    // diffs: 1, 0, 2
    if math.Abs(acc.MSE-5.0/3.0) > 1e-9 {
        t.Fatalf("unexpected mse %v", acc.MSE)
    }
    if math.Abs(acc.RMSE-math.Sqrt(5.0/3.0)) > 1e-9 {
        t.Fatalf("unexpected rmse %v", acc.RMSE)
    }
    if math.Abs(acc.MAE-1.0) > 1e-9 {
        t.Fatalf("unexpected mae %v", acc.MAE)
    }
}

func TestEvaluateLengthMismatch(t *testing.T) {
    if _, err := NewEvaluator().Evaluate([]float64{1, 2}, []float64{1}); err == nil {
        t.Fatalf("expected error")
    }
    if _, err := NewEvaluator().Evaluate(nil, nil); err == nil {
        t.Fatalf("expected error for empty input")
    }
}
