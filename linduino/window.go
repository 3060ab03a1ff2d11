package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/itohio/golinduino/pkg/config"
	"github.com/itohio/golinduino/pkg/scope"
)

const appID = "com.itohio.golinduino"

func newApp() fyne.App {
	return app.NewWithID(appID)
}

// newScopeWindow creates a window holding a scope widget sized from the plot settings.
func newScopeWindow(application fyne.App, cfg config.PlotConfig, title string) (fyne.Window, *scope.ScopeWidget) {
	window := application.NewWindow(title)
	window.Resize(fyne.NewSize(float32(cfg.Width), float32(cfg.Height)))
	window.CenterOnScreen()

	scopeWidget := scope.New(cfg)
	window.SetContent(scopeWidget)
	return window, scopeWidget
}

// showPlot opens a window with a static trace and blocks until it is closed.
func showPlot(application fyne.App, cfg config.PlotConfig, title string, voltages []float64) {
	window, scopeWidget := newScopeWindow(application, cfg, title)
	scopeWidget.UpdateData(voltages)
	window.ShowAndRun()
}

// throttle limits how often a live trace refreshes the widget.
type throttle struct {
	interval time.Duration
	mu       sync.Mutex
	last     time.Time
}

// allow reports whether enough time has passed since the last allowed update.
func (t *throttle) allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
