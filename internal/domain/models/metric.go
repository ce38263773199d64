package models

import "strings"

// MetricDescriptor describes one real-value series charted next to the predictions.
type MetricDescriptor struct {
	ID    string `yaml:"id" json:"id" validate:"required"`
	Label string `yaml:"label" json:"label" validate:"required"`
	Color string `yaml:"color" json:"color" validate:"required"`
}

// Key returns the feature-map key for the descriptor (lower-cased id).
func (m MetricDescriptor) Key() string {
	return strings.ToLower(m.ID)
}

// DefaultMetrics returns the descriptors charted when none are configured.
func DefaultMetrics() []MetricDescriptor {
	return []MetricDescriptor{
		{ID: "Voltage", Label: "Voltage", Color: "rgba(255, 206, 86, 1)"},
	}
}

// MetricKeys returns the lower-cased keys of the descriptors, in order.
func MetricKeys(ms []MetricDescriptor) []string {
	keys := make([]string, 0, len(ms))
	for _, m := range ms {
		keys = append(keys, m.Key())
	}
	return keys
}
