package chart

import "fmt"

// Kind distinguishes the chart layouts the dashboard draws.
type Kind string

const (
	KindPrediction Kind = "prediction"
	KindRealValue  Kind = "real_value"
	KindSingleShot Kind = "single_shot"
)

const (
	AccentColor     = "rgba(255, 99, 132, 1)"
	ActualLabel     = "Actual values"
	FillAlpha       = 0.2
	DefaultMaxTicks = 20

	streamYMax   = 500
	streamXName  = "Time (minutes)"
	streamYName  = "Volts"
	batchXName   = "Entry"
	batchYName   = "Prediction"
	strokeWidth  = 2
	defaultWidth = "100%"
)

// SeriesSpec describes one line of a chart.
type SeriesSpec struct {
	Label string
	Color string // stroke
	Fill  string // stroke at FillAlpha
}

// Config is an immutable chart description shared by the HTML page, frames and PNG export.
type Config struct {
	Kind      Kind
	Title     string
	XAxisName string
	YAxisName string
	YMin      float64
	YMax      *float64 // nil: derived from the data
	MaxTicks  int
	Animation bool
	Height    string
	Series    []SeriesSpec
}

func series(label, color string) SeriesSpec {
	return SeriesSpec{Label: label, Color: color, Fill: fillOf(color)}
}

func streamConfig(kind Kind, title string, specs ...SeriesSpec) Config {
	max := float64(streamYMax)
	return Config{
		Kind:      kind,
		Title:     title,
		XAxisName: streamXName,
		YAxisName: streamYName,
		YMin:      0,
		YMax:      &max,
		MaxTicks:  DefaultMaxTicks,
		Height:    "360px",
		Series:    specs,
	}
}

// Prediction is the dual-series predicted-vs-actual chart of the streaming flow.
func Prediction(label, color string) Config {
	return streamConfig(KindPrediction, label,
		series(fmt.Sprintf("Predictions (%s)", label), color),
		series(ActualLabel, AccentColor),
	)
}

// RealValue is a single-series chart of one feature.
func RealValue(label, color string) Config {
	return streamConfig(KindRealValue, label, series(label, color))
}

// SingleShot is the static chart of an uploaded file's predictions.
func SingleShot(label, color string) Config {
	return Config{
		Kind:      KindSingleShot,
		Title:     label,
		XAxisName: batchXName,
		YAxisName: batchYName,
		YMin:      0,
		MaxTicks:  DefaultMaxTicks,
		Height:    "400px",
		Series:    []SeriesSpec{series(label, color)},
	}
}

// LabelInterval is the category-axis label interval that keeps at most MaxTicks labels.
func (c Config) LabelInterval(points int) int {
	if c.MaxTicks <= 0 || points <= c.MaxTicks {
		return 0
	}
	return (points+c.MaxTicks-1)/c.MaxTicks - 1
}
