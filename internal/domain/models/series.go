package models

// PredictionSeries is the ordered list of model predictions; index = time step.
type PredictionSeries []float64

// FeatureSeries maps a lower-cased metric key to its real values, indexed like PredictionSeries.
type FeatureSeries map[string][]float64

// ModelAccuracy holds error metrics of a model against the actual values.
type ModelAccuracy struct {
	MSE  float64 `json:"MSE"`
	RMSE float64 `json:"RMSE"`
	MAE  float64 `json:"MAE"`
}

// PredictionPayload is the body returned by GET /predict on the prediction service.
type PredictionPayload struct {
	Predictions PredictionSeries         `json:"predictions_lightgbm"`
	Features    FeatureSeries            `json:"features" validate:"dive,keys,required,endkeys,required"`
	RealValues  []float64                `json:"real_values,omitempty"`
	Metrics     map[string]ModelAccuracy `json:"metrics,omitempty"`
}

// UploadResponse is the body returned by POST /predict for an uploaded file.
// Exactly one of Predictions or Error is expected.
type UploadResponse struct {
	Predictions []float64 `json:"predictions,omitempty"`
	Error       string    `json:"error,omitempty"`
}
