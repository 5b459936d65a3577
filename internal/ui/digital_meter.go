package ui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/FrancescoCeruti/dpmeter/internal/meter"
)

// DigitalMeter is a custom-painted multi-channel digital peak meter. Samples
// arrive through Plot, which may be called from any goroutine; the core only
// ever mutates and paints on the UI thread.
type DigitalMeter struct {
	widget.BaseWidget

	core *meter.Meter
}

// NewDigitalMeter builds the widget around the given core options, filling
// the label font from the current theme when none is supplied.
func NewDigitalMeter(opts meter.Options) *DigitalMeter {
	if opts.FontData == nil {
		if res := theme.TextFont(); res != nil {
			opts.FontData = res.Content()
		}
	}
	if opts.FontSize <= 0 {
		opts.FontSize = float64(theme.TextSize()) - 3
	}

	m := &DigitalMeter{core: meter.New(opts)}
	m.ExtendBaseWidget(m)
	m.core.SetPalette(themePalette())
	return m
}

// Plot feeds one batch of per-channel peak and decay-peak samples in raw dB.
// Safe to call from any goroutine; the update runs on the UI thread.
func (m *DigitalMeter) Plot(peaks, decayPeaks []float64) {
	p := append([]float64(nil), peaks...)
	d := append([]float64(nil), decayPeaks...)
	CallOnMain(func() {
		// Plot reports the changed region, but a canvas.Raster can only be
		// repainted whole, so the return is dropped and the widget refreshed.
		m.core.Plot(p, d)
		m.BaseWidget.Refresh()
	})
}

// Reset returns every channel to the scale floor and repaints.
func (m *DigitalMeter) Reset() {
	CallOnMain(func() {
		m.core.Reset()
		m.BaseWidget.Refresh()
	})
}

// Refresh re-reads the theme colors before repainting, covering style and
// palette changes applied by the host application.
func (m *DigitalMeter) Refresh() {
	m.core.SetPalette(themePalette())
	m.BaseWidget.Refresh()
}

// MinSize keeps every channel at least at its minimum drawable width.
func (m *DigitalMeter) MinSize() fyne.Size {
	w, h := m.core.MinSize()
	return fyne.NewSize(float32(w), float32(h))
}

func (m *DigitalMeter) CreateRenderer() fyne.WidgetRenderer {
	r := &meterRenderer{m: m}
	r.raster = canvas.NewRaster(r.draw)
	r.objs = []fyne.CanvasObject{r.raster}
	return r
}

type meterRenderer struct {
	m      *DigitalMeter
	raster *canvas.Raster
	objs   []fyne.CanvasObject
}

// draw is invoked by the canvas with the raster size in device pixels. The
// core rebuilds its geometry caches only when the size actually changed.
func (r *meterRenderer) draw(w, h int) image.Image {
	core := r.m.core
	core.Resize(w, h)

	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	core.Paint(frame, frame.Bounds())
	return frame
}

func (r *meterRenderer) Layout(sz fyne.Size) { r.raster.Resize(sz) }

func (r *meterRenderer) MinSize() fyne.Size { return r.m.MinSize() }

func (r *meterRenderer) Refresh() { canvas.Refresh(r.raster) }

func (r *meterRenderer) Destroy() {}

func (r *meterRenderer) Objects() []fyne.CanvasObject { return r.objs }

// themePalette maps the current theme onto the meter's three logical colors.
// The clipping highlight is a fixed constant owned by the core.
func themePalette() meter.Palette {
	return meter.Palette{
		Background: toNRGBA(theme.BackgroundColor()),
		Border:     toNRGBA(theme.DisabledColor()),
		Text:       toNRGBA(theme.ForegroundColor()),
	}
}

// toNRGBA converts any color.Color to non-premultiplied RGBA.
func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
