package service

import "PowerCast/internal/domain/models"

// AccuracyEvaluator scores predictions against the actual values they forecast.
type AccuracyEvaluator interface {
	Evaluate(predictions, actual []float64) (models.ModelAccuracy, error)
}
