package scope

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

var (
	backgroundColor = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	gridColor       = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	zeroColor       = color.RGBA{R: 80, G: 80, B: 80, A: 255}
	labelColor      = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	titleColor      = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	traceColor      = color.RGBA{R: 255, G: 165, B: 0, A: 255} // Orange
)

const (
	marginLeft   = float32(60.0)
	marginRight  = float32(20.0)
	marginTop    = float32(30.0)
	marginBottom = float32(50.0)

	labelWidth  = float32(60.0)
	labelHeight = float32(14.0)
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	background *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the chart from the widget's current data.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	points := r.scope.displayPoints
	axes := r.scope.axes
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = append([]fyne.CanvasObject{r.background}, buildObjects(size, axes, points)...)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

// plotArea returns the rectangle the trace is drawn into.
func plotArea(size fyne.Size) Rect {
	return Rect{
		X:      marginLeft,
		Y:      marginTop,
		Width:  size.Width - marginLeft - marginRight,
		Height: size.Height - marginTop - marginBottom,
	}
}

// buildObjects draws grid, labels and trace for a widget of the given size.
// It only creates canvas primitives so it can be used both by the live widget
// and for off-screen rendering.
func buildObjects(size fyne.Size, axes Axes, points []Point) []fyne.CanvasObject {
	plot := plotArea(size)
	if plot.Width <= 0 || plot.Height <= 0 {
		return nil
	}

	objects := make([]fyne.CanvasObject, 0, len(points)+64)
	objects = appendGrid(objects, axes, plot)
	objects = appendLabels(objects, axes, plot, size)
	objects = appendTrace(objects, axes, plot, points)
	return objects
}

// appendGrid draws the grid with a tick label per line and a brighter zero line.
func appendGrid(objects []fyne.CanvasObject, axes Axes, plot Rect) []fyne.CanvasObject {
	for _, v := range axes.YTicks() {
		_, y := axes.Project(Point{X: axes.XMin, Y: v}, plot)
		c := gridColor
		if v == 0 {
			c = zeroColor
		}
		objects = append(objects, newLine(c, 1, plot.X, y, plot.X+plot.Width, y))
		objects = append(objects, newText(formatTick(v), labelColor, 10, fyne.TextAlignTrailing,
			plot.X-labelWidth-5, y-labelHeight/2))
	}

	for _, v := range axes.XTicks() {
		x, _ := axes.Project(Point{X: v, Y: axes.YMin}, plot)
		objects = append(objects, newLine(gridColor, 1, x, plot.Y, x, plot.Y+plot.Height))
		objects = append(objects, newText(formatTick(v), labelColor, 10, fyne.TextAlignCenter,
			x-labelWidth/2, plot.Y+plot.Height+5))
	}

	return objects
}

// appendLabels draws the title and the axis names.
func appendLabels(objects []fyne.CanvasObject, axes Axes, plot Rect, size fyne.Size) []fyne.CanvasObject {
	if axes.Title != "" {
		title := newText(axes.Title, titleColor, 13, fyne.TextAlignCenter, 0, 6)
		title.Resize(fyne.NewSize(size.Width, labelHeight+4))
		objects = append(objects, title)
	}
	if axes.XLabel != "" {
		xl := newText(axes.XLabel, titleColor, 11, fyne.TextAlignCenter, plot.X, plot.Y+plot.Height+25)
		xl.Resize(fyne.NewSize(plot.Width, labelHeight))
		objects = append(objects, xl)
	}
	if axes.YLabel != "" {
		objects = append(objects, newText(axes.YLabel, titleColor, 11, fyne.TextAlignLeading, 5, 8))
	}
	return objects
}

// appendTrace draws the voltage curve as connected line segments.
func appendTrace(objects []fyne.CanvasObject, axes Axes, plot Rect, points []Point) []fyne.CanvasObject {
	if len(points) < 2 {
		return objects
	}

	x0, y0 := axes.Project(points[0], plot)
	for _, p := range points[1:] {
		x1, y1 := axes.Project(p, plot)
		objects = append(objects, newLine(traceColor, 1.5, x0, y0, x1, y1))
		x0, y0 = x1, y1
	}
	return objects
}

func newLine(c color.Color, width float32, x1, y1, x2, y2 float32) *canvas.Line {
	line := canvas.NewLine(c)
	line.Position1 = fyne.NewPos(x1, y1)
	line.Position2 = fyne.NewPos(x2, y2)
	line.StrokeWidth = width
	return line
}

func newText(s string, c color.Color, size float32, align fyne.TextAlign, x, y float32) *canvas.Text {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(fyne.NewPos(x, y))
	text.Resize(fyne.NewSize(labelWidth, labelHeight))
	return text
}
