package chart

import (
	"errors"
	"fmt"
	"io"

	"PowerCast/internal/domain/models"

	gochart "github.com/wcharczuk/go-chart/v2"
)

var ErrNotEnoughPoints = errors.New("at least two points are needed to draw a line")

// RenderPNG draws frame f with this config's axes into w.
func (c Config) RenderPNG(w io.Writer, f models.Frame, width, height int) error {
	if len(f.Labels) < 2 {
		return ErrNotEnoughPoints
	}

	xs := make([]float64, len(f.Labels))
	for i := range xs {
		xs[i] = float64(i)
	}

	var (
		series []gochart.Series
		maxY   = c.YMin
	)
	for i, s := range c.Series {
		if i >= len(f.Datasets) || len(f.Datasets[i].Data) != len(xs) {
			return fmt.Errorf("series %q: %w", s.Label, errShape)
		}
		stroke, err := ParseColor(s.Color)
		if err != nil {
			return err
		}
		for _, v := range f.Datasets[i].Data {
			if v > maxY {
				maxY = v
			}
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    s.Label,
			Style:   gochart.Style{StrokeColor: stroke.Drawing(), StrokeWidth: strokeWidth},
			XValues: xs,
			YValues: f.Datasets[i].Data,
		})
	}

	yRange := &gochart.ContinuousRange{Min: c.YMin}
	if c.YMax != nil {
		yRange.Max = *c.YMax
	} else {
		yRange.Max = maxY * 1.1
		if yRange.Max <= c.YMin {
			yRange.Max = c.YMin + 1
		}
	}

	graph := gochart.Chart{
		Title:  c.Title,
		Width:  width,
		Height: height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:  c.XAxisName,
			Ticks: xTicks(f.Labels, c.LabelInterval(len(f.Labels))),
		},
		YAxis: gochart.YAxis{
			Name:  c.YAxisName,
			Range: yRange,
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}

	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	return nil
}

var errShape = errors.New("dataset length differs from labels")

func xTicks(labels []string, interval int) []gochart.Tick {
	step := interval + 1
	ticks := make([]gochart.Tick, 0, len(labels)/step+1)
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: labels[i]})
	}
	return ticks
}
