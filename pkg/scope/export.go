package scope

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/software"
	"fyne.io/fyne/v2/theme"
	"github.com/itohio/golinduino/pkg/config"
	"github.com/itohio/golinduino/pkg/sample"
)

// Render draws the voltage chart off-screen at the configured size.
// A Fyne application must exist (app.New or test.NewTempApp).
func Render(voltages []float64, cfg config.PlotConfig) image.Image {
	size := fyne.NewSize(float32(cfg.Width), float32(cfg.Height))
	if size.Width <= 0 || size.Height <= 0 {
		def := config.Default().Plot
		size = fyne.NewSize(float32(def.Width), float32(def.Height))
	}

	axes := NewAxes(cfg)
	points := sample.Downsample(nil, axes.Points(voltages), cfg.MaxPoints)

	background := canvas.NewRectangle(backgroundColor)
	background.Resize(size)
	content := container.NewWithoutLayout(append([]fyne.CanvasObject{background}, buildObjects(size, axes, points)...)...)
	content.Resize(size)

	c := software.NewCanvas()
	c.SetPadded(false)
	c.SetContent(content)
	c.Resize(size)

	return software.RenderCanvas(c, theme.DefaultTheme())
}

// SavePNG renders the voltage chart and writes it to path.
func SavePNG(path string, voltages []float64, cfg config.PlotConfig) error {
	img := Render(voltages, cfg)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
