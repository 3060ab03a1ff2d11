package scope

import (
	"testing"

	"github.com/itohio/golinduino/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAxes() Axes {
	return NewAxes(config.Default().Plot)
}

func TestNewAxes(t *testing.T) {
	a := testAxes()

	assert.Equal(t, 0.0, a.XMin)
	assert.Equal(t, 500.0, a.XMax)
	assert.Equal(t, -5.0, a.YMin)
	assert.Equal(t, 5.0, a.YMax)
	assert.Equal(t, "Samples", a.XLabel)
	assert.Equal(t, "Voltage (V)", a.YLabel)
}

func TestAxes_Project(t *testing.T) {
	a := testAxes()
	plot := Rect{X: 10, Y: 20, Width: 500, Height: 100}

	tests := []struct {
		name  string
		p     Point
		wantX float32
		wantY float32
	}{
		{"origin", Point{X: 0, Y: -5}, 10, 120},
		{"top right", Point{X: 500, Y: 5}, 510, 20},
		{"center", Point{X: 250, Y: 0}, 260, 70},
		{"clamped above", Point{X: 0, Y: 12}, 10, 20},
		{"clamped below", Point{X: 0, Y: -12}, 10, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := a.Project(tt.p, plot)
			assert.InDelta(t, tt.wantX, x, 1e-3)
			assert.InDelta(t, tt.wantY, y, 1e-3)
		})
	}
}

func TestAxes_Points(t *testing.T) {
	a := testAxes()

	voltages := make([]float64, 600)
	for i := range voltages {
		voltages[i] = float64(i) / 100
	}

	points := a.Points(voltages)
	require.Len(t, points, 501)
	assert.Equal(t, Point{X: 0, Y: 0}, points[0])
	assert.Equal(t, Point{X: 500, Y: 5}, points[500])
}

func TestAxes_PointsOutOfRangeVoltageKept(t *testing.T) {
	a := testAxes()

	points := a.Points([]float64{7.5, -9})
	require.Len(t, points, 2)
	assert.Equal(t, 7.5, points[0].Y)
	assert.Equal(t, -9.0, points[1].Y)
}

func TestAxes_Ticks(t *testing.T) {
	a := testAxes()

	x := a.XTicks()
	require.Len(t, x, 11)
	assert.Equal(t, 0.0, x[0])
	assert.Equal(t, 50.0, x[1])
	assert.Equal(t, 500.0, x[10])

	y := a.YTicks()
	require.Len(t, y, 11)
	assert.Equal(t, -5.0, y[0])
	assert.InDelta(t, 0.0, y[5], 1e-12)
	assert.Equal(t, 5.0, y[10])
}

func TestFormatTick(t *testing.T) {
	assert.Equal(t, "0", formatTick(0))
	assert.Equal(t, "0", formatTick(1e-15))
	assert.Equal(t, "-5", formatTick(-5))
	assert.Equal(t, "2.5", formatTick(2.5))
	assert.Equal(t, "500", formatTick(500))
}
