package chart

import "testing"

func TestPredictionConfig(t *testing.T) {
	c := Prediction("LGBM", "rgba(54, 162, 235, 1)")
	if c.Kind != KindPrediction || c.Title != "LGBM" {
		t.Fatalf("unexpected %+v", c)
	}
	if len(c.Series) != 2 {
		t.Fatalf("want 2 series, got %d", len(c.Series))
	}
	if c.Series[0].Label != "Predictions (LGBM)" || c.Series[0].Fill != "rgba(54, 162, 235, 0.2)" {
		t.Fatalf("prediction series = %+v", c.Series[0])
	}
	if c.Series[1].Color != AccentColor || c.Series[1].Label != ActualLabel {
		t.Fatalf("actual series = %+v", c.Series[1])
	}
	if c.YMax == nil || *c.YMax != 500 || c.YMin != 0 || c.Animation {
		t.Fatalf("axis: min=%v max=%v anim=%v", c.YMin, c.YMax, c.Animation)
	}
	if c.XAxisName != "Time (minutes)" || c.MaxTicks != 20 {
		t.Fatalf("x axis = %q ticks=%d", c.XAxisName, c.MaxTicks)
	}
}

func TestRealValueAndSingleShotConfig(t *testing.T) {
	rv := RealValue("Voltage", "rgba(255, 206, 86, 1)")
	if rv.Kind != KindRealValue || len(rv.Series) != 1 || rv.YMax == nil || *rv.YMax != 500 {
		t.Fatalf("real value = %+v", rv)
	}

	ss := SingleShot("Predictions", "rgba(75, 192, 192, 1)")
	if ss.Kind != KindSingleShot || len(ss.Series) != 1 || ss.YMax != nil || ss.YMin != 0 {
		t.Fatalf("single shot = %+v", ss)
	}
}

func TestLabelInterval(t *testing.T) {
	c := RealValue("x", "rgba(0, 0, 0, 1)")
	cases := map[int]int{0: 0, 20: 0, 21: 1, 40: 1, 41: 2, 50: 2}
	for points, want := range cases {
		if got := c.LabelInterval(points); got != want {
			t.Fatalf("LabelInterval(%d) = %d, want %d", points, got, want)
		}
	}
}
