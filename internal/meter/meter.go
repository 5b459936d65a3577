// Package meter implements the digital peak meter pipeline: per-channel
// level state, fall-off smoothing, tick layout, cached bitmaps, and the
// raster painter that renders everything into an RGBA frame.
package meter

import (
	"image"
	"image/color"

	"golang.org/x/image/font"

	"github.com/FrancescoCeruti/dpmeter/internal/scale"
)

const (
	metersSpacing = 3
	minMeterWidth = 10
	borderWidth   = 1

	smoothingGrowth = 1.10
)

// clippingColor marks channels whose raw sample exceeded the scale maximum.
// It is a fixed constant, not part of the themeable palette.
var clippingColor = color.NRGBA{R: 220, G: 50, B: 50, A: 255}

// Palette holds the three host-supplied logical colors.
type Palette struct {
	Background color.NRGBA
	Border     color.NRGBA
	Text       color.NRGBA
}

// Tick is one scale marking: a vertical pixel offset and the dB level it
// labels. Offsets grow downward while levels shrink from the scale maximum.
type Tick struct {
	Y     int
	Level float64
}

// Options configure a Meter.
type Options struct {
	Scale     scale.Scale // nil selects scale.IEC{}
	Steps     []int       // dB increments tried smallest-first; default 5, 10, 20, 50
	Smoothing float64     // fall-off smoothing base amount, 0 disables
	Unit      string      // label under the outer scale; default "dBFS"
	Channels  int         // initial channel count; default 2
	FontData  []byte      // TTF bytes for labels; nil uses a builtin bitmap face
	FontSize  float64     // label size in points; the unit font is one point smaller
}

// Meter owns the runtime state and render caches of a multi-channel peak
// meter. It is not safe for concurrent use; the owning widget serializes
// every call onto the UI thread.
type Meter struct {
	scale     scale.Scale
	steps     []int
	smoothing float64
	unit      string

	palette Palette

	face     font.Face
	unitFace font.Face

	width  int
	height int

	peaks      []float64 // normalized, one per channel
	decayPeaks []float64 // normalized, same length as peaks
	clipping   []bool    // same length as peaks

	currentSmoothing float64

	ticks           []Tick
	gradient        *image.RGBA
	tickOverlay     *image.RGBA
	outerScaleWidth int
	showOuterScale  bool
}

// New builds a Meter with silent channels and no geometry; callers must
// Resize before the first paint.
func New(opts Options) *Meter {
	if opts.Scale == nil {
		opts.Scale = scale.IEC{}
	}
	if len(opts.Steps) == 0 {
		opts.Steps = []int{5, 10, 20, 50}
	}
	if opts.Unit == "" {
		opts.Unit = "dBFS"
	}
	if opts.Channels <= 0 {
		opts.Channels = 2
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 11
	}

	m := &Meter{
		scale:     opts.Scale,
		steps:     append([]int(nil), opts.Steps...),
		smoothing: opts.Smoothing,
		unit:      opts.Unit,
		palette: Palette{
			Background: color.NRGBA{R: 30, G: 30, B: 30, A: 255},
			Border:     color.NRGBA{R: 90, G: 90, B: 90, A: 255},
			Text:       color.NRGBA{R: 90, G: 90, B: 90, A: 255},
		},
		face:             newFace(opts.FontData, opts.FontSize),
		unitFace:         newFace(opts.FontData, opts.FontSize-1),
		peaks:            make([]float64, opts.Channels),
		decayPeaks:       make([]float64, opts.Channels),
		clipping:         make([]bool, opts.Channels),
		currentSmoothing: opts.Smoothing,
		showOuterScale:   true,
	}
	m.outerScaleWidth = m.measureOuterScaleWidth()
	m.Reset()
	return m
}

// Channels reports the current channel count.
func (m *Meter) Channels() int { return len(m.peaks) }

// Scale returns the mapping the meter was built with.
func (m *Meter) Scale() scale.Scale { return m.scale }

// OuterScaleVisible reports whether the labeled scale column currently fits.
func (m *Meter) OuterScaleVisible() bool { return m.showOuterScale }

// Plot feeds one batch of per-channel peak and decay-peak samples in raw dB
// and returns the region that needs repainting. A decay slice shorter than
// peaks is padded with raw 0 dB entries, which are scaled like any other
// sample. Channel count follows len(peaks); when it changes the tick layout
// and both cached bitmaps are rebuilt before Plot returns.
func (m *Meter) Plot(peaks, decayPeaks []float64) image.Rectangle {
	scaled := make([]float64, len(peaks))
	decay := make([]float64, len(peaks))
	clip := make([]bool, len(peaks))

	for n, v := range peaks {
		// Clipping is judged on the raw sample, before any scaling.
		clip[n] = v > m.scale.Max()
		scaled[n] = m.scale.Scale(v)

		raw := 0.0
		if n < len(decayPeaks) {
			raw = decayPeaks[n]
		}
		decay[n] = m.scale.Scale(raw)
	}

	// Make the transition from high to low peaks smoother: a falling channel
	// is held back by the accumulator, which grows while the descent lasts
	// and snaps back to the base amount on any rise.
	if m.smoothing != 0 {
		for n := 0; n < len(scaled) && n < len(m.peaks); n++ {
			if scaled[n] < m.peaks[n] {
				scaled[n] = m.peaks[n] - m.currentSmoothing
				m.currentSmoothing *= smoothingGrowth
			} else {
				m.currentSmoothing = m.smoothing
			}
		}
	}

	channelsChanged := len(scaled) != len(m.peaks)

	m.peaks = scaled
	m.decayPeaks = decay
	m.clipping = clip

	if channelsChanged {
		m.rebuildTicks()
		m.rebuildTickOverlay()
		m.rebuildGradient()
	}

	return m.dirtyRegion()
}

// dirtyRegion covers the meter bars but leaves out the outer scale strip,
// which never changes from one sample batch to the next.
func (m *Meter) dirtyRegion() image.Rectangle {
	w := m.width
	if m.showOuterScale {
		w -= m.outerScaleWidth
	}
	return image.Rect(0, 0, w, m.height)
}

// Reset returns every channel to the scale floor and clears the clipping
// flags and the smoothing accumulator.
func (m *Meter) Reset() {
	floor := m.scale.Scale(m.scale.Min())
	for n := range m.peaks {
		m.peaks[n] = floor
		m.decayPeaks[n] = floor
		m.clipping[n] = false
	}
	m.currentSmoothing = m.smoothing
}

// Resize records new pixel dimensions and rebuilds everything derived from
// geometry: the outer scale width and displayability, the tick marks, and
// both cached bitmaps. It is cheap to call with unchanged dimensions.
func (m *Meter) Resize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = width
	m.height = height

	m.outerScaleWidth = m.measureOuterScaleWidth()
	m.showOuterScale = m.meterWidth(true) >= minMeterWidth

	m.rebuildTicks()
	m.rebuildTickOverlay()
	m.rebuildGradient()
}

// SetPalette installs the host theme colors and refreshes the cached tick
// overlay, which is drawn with the border color.
func (m *Meter) SetPalette(p Palette) {
	m.palette = p
	m.rebuildTickOverlay()
}

// MinSize reports the smallest sensible pixel size: every meter at its
// minimum width plus spacing, and enough height for a couple of ticks.
func (m *Meter) MinSize() (w, h int) {
	count := len(m.peaks)
	if count == 0 {
		return 0, 0
	}
	w = count*minMeterWidth + metersSpacing*(count-1) + borderWidth
	h = 4 * faceHeight(m.face)
	return w, h
}
