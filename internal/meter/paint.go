package meter

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Paint renders the current state into dst, limited to region. It is a pure
// read of meter state; degenerate geometry (zero size, zero channels, bars
// squeezed below one pixel) draws nothing.
func (m *Meter) Paint(dst *image.RGBA, region image.Rectangle) {
	if m.width <= 0 || m.height <= 0 || len(m.peaks) == 0 {
		return
	}
	mw := m.meterWidth(false)
	mh := m.meterHeight()
	if mw <= 0 || mh <= 0 {
		return
	}

	x := 0
	for n := range m.peaks {
		frame := image.Rect(x, 0, x+mw+borderWidth, mh+borderWidth)
		// The drawable area loses the left and top border but shares the
		// right and bottom edge rows with the border stroke.
		area := image.Rect(x+borderWidth, borderWidth, x+mw, mh)

		borderCol := m.palette.Border
		if m.clipping[n] {
			borderCol = clippingColor
		}

		fillRect(dst, area, region, m.palette.Background)
		strokeRect(dst, frame, region, borderCol)

		peakH := barHeight(m.peaks[n], area.Dy())
		if peakH > 0 && m.gradient != nil {
			r := image.Rect(area.Min.X, area.Max.Y-peakH, area.Max.X, area.Max.Y)
			blit(dst, r, region, m.gradient, image.Pt(0, r.Min.Y))
		}

		decayH := barHeight(m.decayPeaks[n], area.Dy())
		if decayH > 0 && m.gradient != nil {
			y := area.Max.Y - decayH
			r := image.Rect(area.Min.X, y, area.Max.X, y+1)
			blit(dst, r, region, m.gradient, image.Pt(0, y))
		}

		if m.tickOverlay != nil {
			ob := m.tickOverlay.Bounds()
			r := image.Rect(area.Min.X, area.Min.Y, area.Min.X+ob.Dx(), area.Min.Y+ob.Dy())
			blit(dst, r, region, m.tickOverlay, ob.Min)
		}

		x += mw + metersSpacing
	}

	if m.showOuterScale {
		strip := image.Rect(m.width-m.outerScaleWidth, 0, m.width, m.height)
		if strip.Overlaps(region) {
			m.paintOuterScale(dst)
		}
	}
}

// paintOuterScale draws the labeled scale column: the maximum at the top,
// each tick label right-aligned and vertically centered on its mark, and the
// unit string at the bottom in the smaller font.
func (m *Meter) paintOuterScale(dst *image.RGBA) {
	x := m.width - m.outerScaleWidth
	asc := faceAscent(m.face)

	drawText(dst, m.face, m.palette.Text, image.Pt(x, asc), formatLevel(m.scale.Max()))

	for _, tick := range m.ticks {
		label := formatLevel(tick.Level)
		tx := m.width - textWidth(m.face, label)
		drawText(dst, m.face, m.palette.Text, image.Pt(tx, tick.Y+asc/2), label)
	}

	drawText(dst, m.unitFace, m.palette.Text, image.Pt(x+2, m.meterHeight()), m.unit)
}

// barHeight converts a normalized level to pixels, clamped to the drawable
// area so smoothing overshoot can never paint outside the meter.
func barHeight(norm float64, areaHeight int) int {
	h := int(math.Round(norm * float64(areaHeight)))
	if h < 0 {
		return 0
	}
	if h > areaHeight {
		return areaHeight
	}
	return h
}

// fillRect fills r (clipped to clip and dst) with a solid color.
func fillRect(dst *image.RGBA, r, clip image.Rectangle, col color.NRGBA) {
	r = r.Intersect(clip).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// strokeRect draws a one pixel outline just inside r.
func strokeRect(dst *image.RGBA, r, clip image.Rectangle, col color.NRGBA) {
	if r.Dx() < 1 || r.Dy() < 1 {
		return
	}
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), clip, col)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), clip, col)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), clip, col)
	fillRect(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), clip, col)
}

// blit copies a rectangular region of src over dst; sp is the source point
// that corresponds to r.Min before clipping.
func blit(dst *image.RGBA, r, clip image.Rectangle, src image.Image, sp image.Point) {
	rr := r.Intersect(clip).Intersect(dst.Bounds())
	if rr.Empty() {
		return
	}
	sp = sp.Add(rr.Min.Sub(r.Min))
	draw.Draw(dst, rr, src, sp, draw.Over)
}
