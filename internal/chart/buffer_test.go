package chart

import (
	"strconv"
	"testing"
)

func TestBufferAppendAndTrimLockstep(t *testing.T) {
	b := newBuffer(Prediction("LGBM", "rgba(54, 162, 235, 1)").Series)
	for i := 0; i < 5; i++ {
		if err := b.Append(strconv.Itoa(i), float64(i*10), float64(i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if n := b.TrimTo(3); n != 2 {
		t.Fatalf("evicted %d, want 2", n)
	}
	if b.Len() != 3 || b.Appended() != 5 {
		t.Fatalf("len=%d appended=%d", b.Len(), b.Appended())
	}
	if b.Labels[0] != "2" || b.Datasets[0].Data[0] != 20 || b.Datasets[1].Data[0] != 2 {
		t.Fatalf("oldest entries not evicted together: %v %v", b.Labels, b.Datasets)
	}
	for _, d := range b.Datasets {
		if len(d.Data) != len(b.Labels) {
			t.Fatalf("dataset %q has %d values for %d labels", d.Label, len(d.Data), len(b.Labels))
		}
	}
	if n := b.TrimTo(3); n != 0 {
		t.Fatalf("trim under limit evicted %d", n)
	}
}

func TestBufferAppendArity(t *testing.T) {
	b := newBuffer(RealValue("Voltage", "rgba(255, 206, 86, 1)").Series)
	if err := b.Append("0", 1, 2); err == nil {
		t.Fatalf("expected arity error")
	}
	if b.Len() != 0 {
		t.Fatalf("failed append must not change the buffer")
	}
}
