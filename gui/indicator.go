//go:build gui

package gui

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	indicatorWidth  = 120
	indicatorHeight = 28
	dotRadius       = 7
)

var stageColors = map[string]color.RGBA{
	"recording":    {220, 50, 50, 255},
	"transcribing": {230, 170, 40, 255},
	"sending":      {230, 170, 40, 255},
	"synthesizing": {90, 140, 230, 255},
	"playing":      {70, 180, 110, 255},
}

// Indicator is a pulsing dot with a stage label. An empty stage stops
// the pulse and dims the dot.
type Indicator struct {
	widget.BaseWidget

	mu    sync.Mutex
	stage string
	phase float64

	dot   *canvas.Circle
	label *canvas.Text
	stop  chan struct{}
}

func NewIndicator() *Indicator {
	ind := &Indicator{
		dot:   canvas.NewCircle(color.RGBA{90, 90, 90, 255}),
		label: canvas.NewText("", color.RGBA{200, 200, 200, 255}),
		stop:  make(chan struct{}),
	}
	ind.label.TextSize = 12
	ind.ExtendBaseWidget(ind)
	go ind.animate()
	return ind
}

func (ind *Indicator) SetStage(stage string) {
	ind.mu.Lock()
	ind.stage = stage
	ind.phase = 0
	ind.mu.Unlock()
	ind.redraw()
}

func (ind *Indicator) Close() {
	close(ind.stop)
}

func (ind *Indicator) animate() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ind.stop:
			return
		case <-ticker.C:
			ind.mu.Lock()
			active := ind.stage != ""
			ind.phase += 0.25
			ind.mu.Unlock()
			if active {
				ind.redraw()
			}
		}
	}
}

func (ind *Indicator) redraw() {
	ind.mu.Lock()
	stage := ind.stage
	phase := ind.phase
	ind.mu.Unlock()

	fyne.Do(func() {
		if stage == "" {
			ind.dot.FillColor = color.RGBA{90, 90, 90, 255}
			ind.label.Text = ""
		} else {
			c := stageColors[stage]
			pulse := 0.6 + 0.4*math.Abs(math.Sin(phase))
			ind.dot.FillColor = color.RGBA{
				R: uint8(float64(c.R) * pulse),
				G: uint8(float64(c.G) * pulse),
				B: uint8(float64(c.B) * pulse),
				A: 255,
			}
			ind.label.Text = stage
		}
		canvas.Refresh(ind)
	})
}

func (ind *Indicator) CreateRenderer() fyne.WidgetRenderer {
	return &indicatorRenderer{ind: ind}
}

type indicatorRenderer struct {
	ind *Indicator
}

func (r *indicatorRenderer) Layout(size fyne.Size) {
	d := float32(dotRadius * 2)
	y := (size.Height - d) / 2
	r.ind.dot.Resize(fyne.NewSize(d, d))
	r.ind.dot.Move(fyne.NewPos(8, y))
	r.ind.label.Move(fyne.NewPos(8+d+8, (size.Height-16)/2))
}

func (r *indicatorRenderer) MinSize() fyne.Size {
	return fyne.NewSize(indicatorWidth, indicatorHeight)
}

func (r *indicatorRenderer) Refresh() {
	canvas.Refresh(r.ind.dot)
	canvas.Refresh(r.ind.label)
}

func (r *indicatorRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.ind.dot, r.ind.label}
}

func (r *indicatorRenderer) Destroy() {}
