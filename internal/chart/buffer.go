package chart

import (
	"fmt"

	"PowerCast/internal/domain/models"
)

// Buffer holds a chart's labels and one data array per series. All arrays
// always have the same length.
type Buffer struct {
	Labels   []string
	Datasets []models.Dataset

	appended int
}

func newBuffer(specs []SeriesSpec) *Buffer {
	ds := make([]models.Dataset, len(specs))
	for i, s := range specs {
		ds[i] = models.Dataset{Label: s.Label, Color: s.Color, Fill: s.Fill, Data: []float64{}}
	}
	return &Buffer{Labels: []string{}, Datasets: ds}
}

// Len is the number of points currently held.
func (b *Buffer) Len() int { return len(b.Labels) }

// Appended counts every point ever appended, evicted ones included.
func (b *Buffer) Appended() int { return b.appended }

// Append adds one point; values are given in series order.
func (b *Buffer) Append(label string, values ...float64) error {
	if len(values) != len(b.Datasets) {
		return fmt.Errorf("append %q: %d values for %d series", label, len(values), len(b.Datasets))
	}
	b.Labels = append(b.Labels, label)
	for i, v := range values {
		b.Datasets[i].Data = append(b.Datasets[i].Data, v)
	}
	b.appended++
	return nil
}

// TrimTo evicts the oldest points until at most max remain, trimming labels and
// every dataset together. It returns how many points were evicted.
func (b *Buffer) TrimTo(max int) int {
	n := len(b.Labels) - max
	if max < 0 || n <= 0 {
		return 0
	}
	b.Labels = append(b.Labels[:0:0], b.Labels[n:]...)
	for i := range b.Datasets {
		b.Datasets[i].Data = append(b.Datasets[i].Data[:0:0], b.Datasets[i].Data[n:]...)
	}
	return n
}

func (b *Buffer) clone() ([]string, []models.Dataset) {
	labels := make([]string, len(b.Labels))
	copy(labels, b.Labels)
	ds := make([]models.Dataset, len(b.Datasets))
	for i, d := range b.Datasets {
		data := make([]float64, len(d.Data))
		copy(data, d.Data)
		d.Data = data
		ds[i] = d
	}
	return labels, ds
}
