package scope

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/golinduino/pkg/config"
	"github.com/itohio/golinduino/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that plots a voltage trace against
// sample index on fixed axes.
type ScopeWidget struct {
	widget.BaseWidget

	axes      Axes
	maxPoints int

	// Data (protected by mu)
	mu            sync.RWMutex
	voltages      []float64
	displayPoints []Point // reused between updates
}

// New creates a new ScopeWidget instance.
func New(cfg config.PlotConfig) *ScopeWidget {
	maxPoints := cfg.MaxPoints
	if maxPoints <= 0 {
		maxPoints = 1000
	}

	s := &ScopeWidget{
		axes:          NewAxes(cfg),
		maxPoints:     maxPoints,
		displayPoints: make([]Point, 0, maxPoints),
	}
	s.ExtendBaseWidget(s)
	return s
}

// UpdateData replaces the plotted trace. voltages[i] is drawn at X = i.
// This should be called on the Fyne main thread (fyne.Do) when used from a goroutine.
func (s *ScopeWidget) UpdateData(voltages []float64) {
	s.mu.Lock()
	s.voltages = voltages
	s.displayPoints = displayPoints(s.displayPoints, s.axes, voltages, s.maxPoints)
	s.mu.Unlock()

	// Refresh must be outside lock to avoid potential deadlock
	s.Refresh()
}

// Voltages returns the trace last passed to UpdateData.
func (s *ScopeWidget) Voltages() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voltages
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(backgroundColor)
	return &scopeRenderer{
		scope:      s,
		background: background,
		objects:    []fyne.CanvasObject{background},
	}
}

// displayPoints selects the in-window points and decimates them to maxPoints.
func displayPoints(dst []Point, axes Axes, voltages []float64, maxPoints int) []Point {
	return sample.Downsample(dst, axes.Points(voltages), maxPoints)
}
