package predictor

import (
    "encoding/json"
    "errors"
    "fmt"

    "PowerCast/internal/domain/models"

    "github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DecodePayload parses a GET /predict body. predictions_lightgbm must be an array
// of numbers and features an object of number arrays; anything else is a data shape error.
// A malformed metrics block is dropped.
func DecodePayload(b []byte) (*models.PredictionPayload, error) {
    p, _, err := decodePayload(b)
    return p, err
}

// decodePayload is DecodePayload plus the reason an optional block was dropped.
func decodePayload(b []byte) (*models.PredictionPayload, error, error) {
    const op = "decode payload"

    var raw map[string]json.RawMessage
    if err := json.Unmarshal(b, &raw); err != nil {
        return nil, nil, models.DataShapeError(op, "body is not a JSON object: %v", err)
    }
    if msg, ok := upstreamMessage(raw); ok {
        return nil, nil, models.UpstreamError(op, msg)
    }

    preds, ok := raw["predictions_lightgbm"]
    if !ok || isNull(preds) {
        return nil, nil, models.DataShapeError(op, "missing predictions_lightgbm")
    }
    feats, ok := raw["features"]
    if !ok || isNull(feats) {
        return nil, nil, models.DataShapeError(op, "missing features")
    }

    var (
        p   models.PredictionPayload
        err error
    )
    if p.Predictions, err = decodeNumbers(preds); err != nil {
        return nil, nil, models.DataShapeError(op, "predictions_lightgbm: %v", err)
    }
    if p.Features, err = decodeFeatures(feats); err != nil {
        return nil, nil, models.DataShapeError(op, "features: %v", err)
    }
    if rv, ok := raw["real_values"]; ok && !isNull(rv) {
        if p.RealValues, err = decodeNumbers(rv); err != nil {
            return nil, nil, models.DataShapeError(op, "real_values: %v", err)
        }
    }
    if err := validate.Struct(&p); err != nil {
        return nil, nil, models.DataShapeError(op, "%v", err)
    }

    var dropped error
    if m, ok := raw["metrics"]; ok && !isNull(m) {
        if err := json.Unmarshal(m, &p.Metrics); err != nil {
            p.Metrics = nil
            dropped = fmt.Errorf("metrics: %w", err)
        }
    }
    return &p, dropped, nil
}

// decodeNumbers decodes a JSON array of numbers. null elements are rejected
// rather than read as zero.
func decodeNumbers(m json.RawMessage) ([]float64, error) {
    var ptrs []*float64
    if err := json.Unmarshal(m, &ptrs); err != nil {
        return nil, errors.New("must be an array of numbers")
    }
    out := make([]float64, len(ptrs))
    for i, v := range ptrs {
        if v == nil {
            return nil, fmt.Errorf("null at index %d", i)
        }
        out[i] = *v
    }
    return out, nil
}

// decodeFeatures decodes an object of number arrays. A null series stays nil
// and is rejected by validation.
func decodeFeatures(m json.RawMessage) (models.FeatureSeries, error) {
    var raw map[string]json.RawMessage
    if err := json.Unmarshal(m, &raw); err != nil {
        return nil, errors.New("must be an object of number arrays")
    }
    out := make(models.FeatureSeries, len(raw))
    for key, series := range raw {
        if isNull(series) {
            out[key] = nil
            continue
        }
        values, err := decodeNumbers(series)
        if err != nil {
            return nil, fmt.Errorf("%s: %v", key, err)
        }
        out[key] = values
    }
    return out, nil
}

// DecodeUploadResponse parses a POST /predict body: {"predictions": [...]} or {"error": "..."}.
// A body with neither field decodes to an empty response; the renderer rejects it.
func DecodeUploadResponse(b []byte) (*models.UploadResponse, error) {
    const op = "decode upload response"

    var raw map[string]json.RawMessage
    if err := json.Unmarshal(b, &raw); err != nil {
        return nil, models.DataShapeError(op, "body is not a JSON object: %v", err)
    }

    var r models.UploadResponse
    if msg, ok := upstreamMessage(raw); ok {
        r.Error = msg
    }
    if p, ok := raw["predictions"]; ok && !isNull(p) {
        preds, err := decodeNumbers(p)
        if err != nil {
            return nil, models.DataShapeError(op, "predictions: %v", err)
        }
        r.Predictions = preds
    }
    return &r, nil
}

// upstreamMessage extracts a non-empty "error" field.
func upstreamMessage(raw map[string]json.RawMessage) (string, bool) {
    e, ok := raw["error"]
    if !ok || isNull(e) {
        return "", false
    }
    var msg string
    if err := json.Unmarshal(e, &msg); err != nil {
        msg = string(e)
    }
    if msg == "" {
        return "", false
    }
    return msg, true
}

func isNull(m json.RawMessage) bool {
    return len(m) == 0 || string(m) == "null"
}

// errorBody returns the upstream error message of a non-2xx body, or the trimmed plain text.
func errorBody(body []byte) (msg string, fromJSON bool) {
    var raw map[string]json.RawMessage
    if json.Unmarshal(body, &raw) == nil {
        if m, ok := upstreamMessage(raw); ok {
            return m, true
        }
    }
    return fmt.Sprintf("%.512s", string(body)), false
}
