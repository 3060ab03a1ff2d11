package scope

import (
	"strconv"

	"github.com/chewxy/math32"
	"github.com/itohio/golinduino/pkg/config"
)

// Point is one trace point: X is the sample index, Y the voltage.
type Point struct {
	X float64
	Y float64
}

// Rect is the plot area inside the widget, in pixels.
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// Axes holds the fixed chart window.
type Axes struct {
	XMin, XMax float64
	YMin, YMax float64
	XLabel     string
	YLabel     string
	Title      string
	XDivisions int
	YDivisions int
}

// NewAxes creates axes from plot configuration.
func NewAxes(cfg config.PlotConfig) Axes {
	return Axes{
		XMin:       cfg.XMin,
		XMax:       cfg.XMax,
		YMin:       cfg.YMin,
		YMax:       cfg.YMax,
		XLabel:     cfg.XLabel,
		YLabel:     cfg.YLabel,
		Title:      cfg.Title,
		XDivisions: 10,
		YDivisions: 10,
	}
}

// ContainsX reports whether index x falls inside the X window.
func (a Axes) ContainsX(x float64) bool {
	return x >= a.XMin && x <= a.XMax
}

// Project maps a data point to pixel coordinates inside plot.
// Y values outside the window are clamped to the plot edge.
func (a Axes) Project(p Point, plot Rect) (float32, float32) {
	fx := float32((p.X - a.XMin) / (a.XMax - a.XMin))
	fy := float32((p.Y - a.YMin) / (a.YMax - a.YMin))
	fy = math32.Max(0, math32.Min(1, fy))

	x := plot.X + fx*plot.Width
	y := plot.Y + plot.Height - fy*plot.Height
	return x, y
}

// Points returns the trace points that fall inside the X window, where
// voltages[i] is sample i.
func (a Axes) Points(voltages []float64) []Point {
	points := make([]Point, 0, len(voltages))
	for i, v := range voltages {
		x := float64(i)
		if !a.ContainsX(x) {
			continue
		}
		points = append(points, Point{X: x, Y: v})
	}
	return points
}

// XTicks returns the X grid values, including both ends.
func (a Axes) XTicks() []float64 {
	return ticks(a.XMin, a.XMax, a.XDivisions)
}

// YTicks returns the Y grid values, including both ends.
func (a Axes) YTicks() []float64 {
	return ticks(a.YMin, a.YMax, a.YDivisions)
}

func ticks(lo, hi float64, divisions int) []float64 {
	if divisions < 1 {
		divisions = 1
	}
	out := make([]float64, divisions+1)
	step := (hi - lo) / float64(divisions)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// formatTick renders an axis value without trailing zeros.
func formatTick(v float64) string {
	if math32.Abs(float32(v)) < 1e-9 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}
