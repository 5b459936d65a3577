package meter

import (
	"image"
	"image/color"
	"math"
)

// gradientStop anchors a color at a fraction of the meter height.
type gradientStop struct {
	pos float64
	col color.NRGBA
}

// rebuildGradient renders the vertical level gradient blitted for both the
// peak bars and the decay indicators. Stop positions are expressed in
// absolute dB relative to the scale span, so the yellow and green
// transitions sit at -10 dB and -30 dB whatever range is configured; stops
// that fall outside the span are dropped.
func (m *Meter) rebuildGradient() {
	w := m.meterWidth(false)
	h := m.meterHeight()
	if w <= 0 || h <= 0 {
		m.gradient = nil
		return
	}

	span := math.Abs(m.scale.Min() - m.scale.Max())
	stops := make([]gradientStop, 0, 4)
	stops = append(stops, gradientStop{pos: 0, col: color.NRGBA{R: 230, A: 255}})
	for _, s := range []gradientStop{
		{pos: 10 / span, col: color.NRGBA{R: 255, G: 220, A: 255}},
		{pos: 30 / span, col: color.NRGBA{G: 220, A: 255}},
	} {
		if s.pos > 0 && s.pos < 1 {
			stops = append(stops, s)
		}
	}
	stops = append(stops, gradientStop{pos: 1, col: color.NRGBA{G: 180, B: 50, A: 255}})

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		pos := 0.0
		if h > 1 {
			pos = float64(y) / float64(h-1)
		}
		c := gradientAt(stops, pos)
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	m.gradient = img
}

// gradientAt interpolates between the two stops bracketing pos. Stops must
// be ordered by position with the first at 0 and the last at 1.
func gradientAt(stops []gradientStop, pos float64) color.NRGBA {
	if pos <= stops[0].pos {
		return stops[0].col
	}
	for i := 1; i < len(stops); i++ {
		if pos <= stops[i].pos {
			a, b := stops[i-1], stops[i]
			t := (pos - a.pos) / (b.pos - a.pos)
			return lerpColor(a.col, b.col, t)
		}
	}
	return stops[len(stops)-1].col
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// rebuildTickOverlay renders the transparent per-meter overlay carrying a
// short horizontal mark at every tick offset. Marks run inward from roughly
// half the meter width to its inner edge.
func (m *Meter) rebuildTickOverlay() {
	w := m.meterWidth(false)
	if w <= 0 || m.height <= 0 {
		m.tickOverlay = nil
		return
	}

	inset := w - maxInt(w-w/2, minMeterWidth)
	if inset < 0 {
		inset = 0
	}

	img := image.NewRGBA(image.Rect(0, 0, w, m.height))
	for _, tick := range m.ticks {
		if tick.Y < 0 || tick.Y >= m.height {
			continue
		}
		for x := inset; x < w; x++ {
			img.Set(x, tick.Y, m.palette.Border)
		}
	}
	m.tickOverlay = img
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
