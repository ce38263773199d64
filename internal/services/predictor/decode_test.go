package predictor

import (
    "errors"
    "testing"

    "PowerCast/internal/domain/models"
)

func TestDecodeUploadResponse(t *testing.T) {
    r, err := DecodeUploadResponse([]byte(`{"predictions": []}`))
    if err != nil || r.Predictions == nil || len(r.Predictions) != 0 {
        t.Fatalf("empty predictions: %+v %v", r, err)
    }

    r, err = DecodeUploadResponse([]byte(`{}`))
    if err != nil || r.Predictions != nil || r.Error != "" {
        t.Fatalf("neither field: %+v %v", r, err)
    }

    if _, err := DecodeUploadResponse([]byte(`{"predictions": {"a": 1}}`)); !errors.Is(err, models.ErrDataShape) {
        t.Fatalf("want data shape error, got %v", err)
    }
}

func TestDecodePayloadUpstreamError(t *testing.T) {
    _, err := DecodePayload([]byte(`{"error": "Colonnes manquantes"}`))
    if !errors.Is(err, models.ErrUpstream) {
        t.Fatalf("want upstream error, got %v", err)
    }
}

func TestDecodePayloadDropsMalformedMetrics(t *testing.T) {
    body := `{
      "predictions_lightgbm": [1, 2],
      "features": {"global_active_power": [1, 2]},
      "metrics": {"LightGBM": {"MSE": "oops", "RMSE": 1.5, "MAE": 0.5}}
    }`
    p, dropped, err := decodePayload([]byte(body))
    if err != nil {
        t.Fatalf("decode: %v", err)
    }
    if p.Metrics != nil {
        t.Fatalf("metrics = %+v, want nil", p.Metrics)
    }
    if dropped == nil {
        t.Fatalf("want the dropped metrics reason")
    }

    p, err = DecodePayload([]byte(body))
    if err != nil || p.Metrics != nil || len(p.Predictions) != 2 {
        t.Fatalf("payload = %+v %v", p, err)
    }
}

func TestDecodePayloadRejectsNullValues(t *testing.T) {
    cases := map[string]string{
        "null prediction": `{"predictions_lightgbm": [1, null, 3], "features": {"global_active_power": [1, 2, 3]}}`,
        "null feature":    `{"predictions_lightgbm": [1, 2, 3], "features": {"global_active_power": [null, 2, 3]}}`,
        "null series":     `{"predictions_lightgbm": [1, 2, 3], "features": {"voltage": null}}`,
        "empty key":       `{"predictions_lightgbm": [1, 2, 3], "features": {"": [1, 2, 3]}}`,
        "null real value": `{"predictions_lightgbm": [1], "features": {"voltage": [1]}, "real_values": [null]}`,
        "string feature":  `{"predictions_lightgbm": [1], "features": {"voltage": ["230"]}}`,
    }
    for name, body := range cases {
        if _, err := DecodePayload([]byte(body)); !errors.Is(err, models.ErrDataShape) {
            t.Fatalf("%s: want data shape error, got %v", name, err)
        }
    }
}

func TestDecodeUploadResponseRejectsNullPrediction(t *testing.T) {
    if _, err := DecodeUploadResponse([]byte(`{"predictions": [0.5, null]}`)); !errors.Is(err, models.ErrDataShape) {
        t.Fatalf("want data shape error, got %v", err)
    }
}
