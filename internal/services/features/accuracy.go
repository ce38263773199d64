package features

import (
    "fmt"
    "math"

    "PowerCast/internal/domain/models"
    domsvc "PowerCast/internal/domain/service"
)

// MeanSquaredError computes mean((actual - pred)^2) over the common prefix of both series.
func MeanSquaredError(pred, actual []float64) float64 {
    n := commonLen(pred, actual)
    if n == 0 {
        return 0
    }
    sum := 0.0
    for i := 0; i < n; i++ {
        d := actual[i] - pred[i]
        sum += d * d
    }
    return sum / float64(n)
}

// MeanAbsoluteError computes mean(|actual - pred|) over the common prefix of both series.
func MeanAbsoluteError(pred, actual []float64) float64 {
    n := commonLen(pred, actual)
    if n == 0 {
        return 0
    }
    sum := 0.0
    for i := 0; i < n; i++ {
        sum += math.Abs(actual[i] - pred[i])
    }
    return sum / float64(n)
}

func commonLen(a, b []float64) int {
    if len(a) < len(b) {
        return len(a)
    }
    return len(b)
}

// Evaluator implements domain AccuracyEvaluator with MSE/RMSE/MAE.
type Evaluator struct{}

// NewEvaluator returns the default evaluator.
func NewEvaluator() Evaluator { return Evaluator{} }

// Evaluate requires both series to have the same, non-zero length.
func (Evaluator) Evaluate(pred, actual []float64) (models.ModelAccuracy, error) {
    if len(pred) == 0 {
        return models.ModelAccuracy{}, fmt.Errorf("no predictions")
    }
    if len(pred) != len(actual) {
        return models.ModelAccuracy{}, fmt.Errorf("length mismatch: %d predictions, %d actual values", len(pred), len(actual))
    }
    mse := MeanSquaredError(pred, actual)
    return models.ModelAccuracy{
        MSE:  mse,
        RMSE: math.Sqrt(mse),
        MAE:  MeanAbsoluteError(pred, actual),
    }, nil
}

var _ domsvc.AccuracyEvaluator = Evaluator{}
