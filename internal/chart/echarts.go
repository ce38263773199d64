package chart

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"PowerCast/internal/domain/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// SanitizeID turns a label into a chart id usable as a DOM id and JS identifier.
func SanitizeID(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" || (id[0] >= '0' && id[0] <= '9') {
		id = "c_" + id
	}
	return id
}

// Line builds the go-echarts representation of frame f.
func (c Config) Line(f models.Frame) *charts.Line {
	yAxis := opts.YAxis{
		Name:         c.YAxisName,
		Type:         "value",
		NameLocation: "middle",
		NameGap:      40,
		Min:          c.YMin,
	}
	if c.YMax != nil {
		yAxis.Max = *c.YMax
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: f.ChartID,
			Width:   defaultWidth,
			Height:  c.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithAnimation(c.Animation),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         c.XAxisName,
			Type:         "category",
			NameLocation: "middle",
			NameGap:      28,
			AxisLabel:    &opts.AxisLabel{Interval: strconv.Itoa(c.LabelInterval(len(f.Labels)))},
		}),
		charts.WithYAxisOpts(yAxis),
	)

	line.SetXAxis(f.Labels)
	for i, s := range c.Series {
		var data []float64
		if i < len(f.Datasets) {
			data = f.Datasets[i].Data
		}
		line.AddSeries(s.Label, lineData(data),
			charts.WithLineStyleOpts(opts.LineStyle{Color: s.Color, Width: strokeWidth}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Fill, BorderColor: s.Color}),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		)
	}
	return line
}

func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	return items
}

// RenderPage writes an HTML document with one container per line and inserts
// extra markup right before </body>.
func RenderPage(w io.Writer, title string, lines []*charts.Line, extra string) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.SetLayout(components.PageFlexLayout)
	for _, l := range lines {
		page.AddCharts(l)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	html := buf.String()
	if i := strings.LastIndex(html, "</body>"); i >= 0 {
		html = html[:i] + extra + html[i:]
	} else {
		html += extra
	}
	_, err := io.WriteString(w, html)
	return err
}
