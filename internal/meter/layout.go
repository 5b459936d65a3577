package meter

import (
	"math"
	"strconv"
)

// meterHeight is the drawable height of a single channel bar.
func (m *Meter) meterHeight() int { return m.height - borderWidth }

// meterWidth is the width of a single channel bar. When forceScale is set
// the outer scale strip is reserved whether or not it is displayable; the
// displayability decision itself is made that way on resize, so it stays a
// stable fixed point instead of flapping with its own outcome.
func (m *Meter) meterWidth(forceScale bool) int {
	count := len(m.peaks)
	if count == 0 {
		return 0
	}
	total := metersSpacing*(count-1) + borderWidth
	if m.showOuterScale || forceScale {
		total += m.outerScaleWidth
	}
	return (m.width - total) / count
}

// measureOuterScaleWidth sizes the label strip to the widest of the lowest
// scale label and the unit string.
func (m *Meter) measureOuterScaleWidth() int {
	w := textWidth(m.face, formatLevel(m.scale.Min()))
	if uw := textWidth(m.unitFace, m.unit); uw > w {
		w = uw
	}
	return w + 4
}

// rebuildTicks walks down from the scale maximum trying each step size,
// smallest first, keeping a mark only once it clears the previous one by at
// least the minimum label height. On a non-linear scale this skips to the
// larger steps where the curve compresses, giving irregular dB spacing near
// the extremes.
func (m *Meter) rebuildTicks() {
	m.ticks = m.ticks[:0]

	height := float64(m.meterHeight())
	// Numerals lack descenders, so the ascent is the effective glyph height.
	minGap := float64(faceAscent(m.face)) * 1.25

	level := m.scale.Max()
	y := 0.0

	for y < height-minGap {
		prevLevel := level
		prevY := y + minGap

		for _, step := range m.steps {
			level = prevLevel - float64(step)
			y = height - m.scale.Scale(level)*height
			if y > prevY {
				break
			}
		}

		if y < height-minGap {
			m.ticks = append(m.ticks, Tick{Y: int(math.Ceil(y)), Level: level})
		}
	}
}

// formatLevel renders a dB level the way it appears on the scale, without a
// trailing fraction for whole values.
func formatLevel(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
