package usecase

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"PowerCast/internal/domain/models"
)

var ErrStoreAdvanced = errors.New("series store: replay already advanced")

// SeriesStore holds the fetched series and the replay cursor. The series are
// immutable once loaded; the cursor only moves forward.
type SeriesStore struct {
	mu          sync.RWMutex
	required    []string
	predictions []float64
	features    map[string][]float64
	cursor      int
}

// NewSeriesStore creates a store that requires the given feature keys on Load.
func NewSeriesStore(requiredKeys ...string) *SeriesStore {
	keys := make([]string, 0, len(requiredKeys))
	seen := make(map[string]bool, len(requiredKeys))
	for _, k := range requiredKeys {
		k = strings.ToLower(k)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return &SeriesStore{required: keys}
}

// Load validates and stores a payload and resets the cursor to 0.
// Every required key must exist with the same length as predictions.
func (s *SeriesStore) Load(predictions []float64, features map[string][]float64) error {
	const op = "load series"

	if predictions == nil {
		return models.DataShapeError(op, "predictions are missing")
	}
	if features == nil {
		return models.DataShapeError(op, "features are missing")
	}

	var missing, mismatched []string
	for _, k := range s.required {
		v, ok := features[k]
		switch {
		case !ok || v == nil:
			missing = append(missing, k)
		case len(v) != len(predictions):
			mismatched = append(mismatched, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return models.DataShapeError(op, "features missing keys: %s", strings.Join(missing, ", "))
	}
	if len(mismatched) > 0 {
		sort.Strings(mismatched)
		return models.DataShapeError(op, "features %s differ in length from %d predictions",
			strings.Join(mismatched, ", "), len(predictions))
	}

	preds := make([]float64, len(predictions))
	copy(preds, predictions)
	feats := make(map[string][]float64, len(s.required))
	for _, k := range s.required {
		v := make([]float64, len(features[k]))
		copy(v, features[k])
		feats[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor > 0 {
		return ErrStoreAdvanced
	}
	s.predictions = preds
	s.features = feats
	s.cursor = 0
	return nil
}

func (s *SeriesStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.predictions)
}

func (s *SeriesStore) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// Prediction returns the prediction at step i.
func (s *SeriesStore) Prediction(i int) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.predictions) {
		return 0, false
	}
	return s.predictions[i], true
}

// Feature returns feature key at step i.
func (s *SeriesStore) Feature(key string, i int) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.features[strings.ToLower(key)]
	if !ok || i < 0 || i >= len(v) {
		return 0, false
	}
	return v[i], true
}

// Series returns copies of the predictions and of feature key.
func (s *SeriesStore) Series(key string) (predictions, feature []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	predictions = append([]float64(nil), s.predictions...)
	feature = append([]float64(nil), s.features[strings.ToLower(key)]...)
	return predictions, feature
}

// Advance moves the cursor one step, never past Len, and returns the new value.
func (s *SeriesStore) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < len(s.predictions) {
		s.cursor++
	}
	return s.cursor
}
