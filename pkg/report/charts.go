package report

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
)

// ErrNoChartData is returned when a chart would have nothing to plot
var ErrNoChartData = errors.New("no chart data")

// ChartConfig defines chart image geometry
type ChartConfig struct {
	Width   int
	Height  int
	Padding float64
}

// DefaultChartConfig returns the chart geometry used in reports
func DefaultChartConfig() ChartConfig {
	return ChartConfig{Width: 900, Height: 320, Padding: 48}
}

// ColorScheme defines chart colors
type ColorScheme struct {
	Background color.Color
	Grid       color.Color
	Axis       color.Color
	Text       color.Color
	Muted      color.Color
	Series     []color.Color
}

// DefaultColorScheme matches the report stylesheet
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Background: color.RGBA{255, 255, 255, 255},
		Grid:       color.RGBA{236, 240, 241, 255},
		Axis:       color.RGBA{189, 195, 199, 255},
		Text:       color.RGBA{44, 62, 80, 255},
		Muted:      color.RGBA{127, 140, 141, 255},
		Series: []color.Color{
			color.RGBA{102, 126, 234, 255},
			color.RGBA{231, 76, 60, 255},
			color.RGBA{46, 204, 113, 255},
			color.RGBA{243, 156, 18, 255},
		},
	}
}

// Series is one line of a line chart
type Series struct {
	Name   string
	Values []float64
}

// ChartGenerator draws PNG charts with gg
type ChartGenerator struct {
	config ChartConfig
	colors ColorScheme
	fonts  *FontManager
}

// NewChartGenerator creates a chart generator
func NewChartGenerator(cfg ChartConfig, fonts *FontManager) *ChartGenerator {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg = DefaultChartConfig()
	}
	if fonts == nil {
		fonts = NewFontManager("")
	}
	return &ChartGenerator{config: cfg, colors: DefaultColorScheme(), fonts: fonts}
}

func (g *ChartGenerator) newContext(title string) *gg.Context {
	dc := gg.NewContext(g.config.Width, g.config.Height)
	dc.SetColor(g.colors.Background)
	dc.Clear()

	dc.SetFontFace(g.fonts.Face(FontSizeTitle))
	dc.SetColor(g.colors.Text)
	dc.DrawString(title, g.config.Padding, g.config.Padding*0.6)
	dc.SetFontFace(g.fonts.Face(FontSizeSmall))
	return dc
}

// LineChart draws one line per series over shared x labels
func (g *ChartGenerator) LineChart(title string, labels []string, series []Series) ([]byte, error) {
	if len(labels) == 0 || len(series) == 0 {
		return nil, ErrNoChartData
	}

	maxV := 0.0
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return nil, fmt.Errorf("series %s has %d values for %d labels", s.Name, len(s.Values), len(labels))
		}
		for _, v := range s.Values {
			maxV = math.Max(maxV, v)
		}
	}
	if maxV == 0 {
		maxV = 1
	}

	dc := g.newContext(title)
	pad := g.config.Padding
	left, right := pad*1.5, float64(g.config.Width)-pad
	top, bottom := pad, float64(g.config.Height)-pad
	g.drawGrid(dc, left, right, top, bottom, maxV)

	step := 0.0
	if len(labels) > 1 {
		step = (right - left) / float64(len(labels)-1)
	}
	xAt := func(i int) float64 {
		if len(labels) == 1 {
			return (left + right) / 2
		}
		return left + float64(i)*step
	}
	yAt := func(v float64) float64 { return bottom - v/maxV*(bottom-top) }

	// x labels, thinned so they never overlap
	every := int(math.Ceil(float64(len(labels)) * 70 / (right - left)))
	if every < 1 {
		every = 1
	}
	dc.SetColor(g.colors.Muted)
	for i, l := range labels {
		if i%every != 0 && i != len(labels)-1 {
			continue
		}
		dc.DrawStringAnchored(l, xAt(i), bottom+14, 0.5, 0.5)
	}

	for si, s := range series {
		c := g.colors.Series[si%len(g.colors.Series)]
		dc.SetColor(c)
		dc.SetLineWidth(2.5)
		for i, v := range s.Values {
			if i == 0 {
				dc.MoveTo(xAt(i), yAt(v))
			} else {
				dc.LineTo(xAt(i), yAt(v))
			}
		}
		dc.Stroke()
		for i, v := range s.Values {
			dc.DrawCircle(xAt(i), yAt(v), 3)
			dc.Fill()
		}

		// legend
		lx := right - float64(len(series)-si)*130
		dc.DrawRectangle(lx, top-22, 12, 12)
		dc.Fill()
		dc.SetColor(g.colors.Text)
		dc.DrawString(s.Name, lx+18, top-12)
	}

	return encodePNG(dc)
}

// BarChart draws horizontal bars, one per label, in the given order
func (g *ChartGenerator) BarChart(title string, labels []string, values []float64) ([]byte, error) {
	if len(labels) == 0 || len(labels) != len(values) {
		return nil, ErrNoChartData
	}

	maxV := 0.0
	for _, v := range values {
		maxV = math.Max(maxV, v)
	}
	if maxV == 0 {
		maxV = 1
	}

	dc := g.newContext(title)
	pad := g.config.Padding
	labelWidth := float64(g.config.Width) * 0.28
	left, right := pad+labelWidth, float64(g.config.Width)-pad*1.5
	top, bottom := pad, float64(g.config.Height)-pad*0.5
	rowH := (bottom - top) / float64(len(labels))
	barH := math.Min(rowH*0.7, 22)

	for i, l := range labels {
		y := top + float64(i)*rowH + (rowH-barH)/2
		w := values[i] / maxV * (right - left)

		dc.SetColor(g.colors.Text)
		dc.DrawStringAnchored(truncate(l, 28), left-8, y+barH/2, 1, 0.5)

		dc.SetColor(g.colors.Series[0])
		dc.DrawRectangle(left, y, w, barH)
		dc.Fill()

		dc.SetColor(g.colors.Muted)
		dc.DrawStringAnchored(formatAxis(values[i]), left+w+6, y+barH/2, 0, 0.5)
	}

	return encodePNG(dc)
}

func (g *ChartGenerator) drawGrid(dc *gg.Context, left, right, top, bottom, maxV float64) {
	const lines = 4
	dc.SetLineWidth(1)
	for i := 0; i <= lines; i++ {
		y := bottom - float64(i)/lines*(bottom-top)
		dc.SetColor(g.colors.Grid)
		dc.DrawLine(left, y, right, y)
		dc.Stroke()
		dc.SetColor(g.colors.Muted)
		dc.DrawStringAnchored(formatAxis(maxV*float64(i)/lines), left-8, y, 1, 0.5)
	}
	dc.SetColor(g.colors.Axis)
	dc.DrawLine(left, bottom, right, bottom)
	dc.Stroke()
}

func formatAxis(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 10_000:
		return fmt.Sprintf("%.0fK", v/1_000)
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	encoder := png.Encoder{CompressionLevel: png.BestCompression}
	if err := encoder.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode PNG image: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI embeds a PNG in an img src attribute
func DataURI(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}
