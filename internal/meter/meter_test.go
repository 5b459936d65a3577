package meter

import (
	"image"
	"image/color"
	"testing"

	"github.com/FrancescoCeruti/dpmeter/internal/scale"
)

func newTestMeter(t *testing.T, opts Options) *Meter {
	t.Helper()
	m := New(opts)
	m.Resize(150, 400)
	return m
}

func TestPlotClipping(t *testing.T) {
	m := newTestMeter(t, Options{})

	m.Plot([]float64{5, -10}, nil)

	if !m.clipping[0] {
		t.Error("channel 0 should clip: raw 5 dB exceeds scale max 0")
	}
	if m.clipping[1] {
		t.Error("channel 1 should not clip at -10 dB")
	}
}

func TestPlotStateLengthsMatch(t *testing.T) {
	m := newTestMeter(t, Options{})

	for _, in := range [][]float64{{-10, -20}, {-10, -20, -30}, {-5}} {
		m.Plot(in, nil)
		if len(m.peaks) != len(in) || len(m.decayPeaks) != len(in) || len(m.clipping) != len(in) {
			t.Fatalf("after Plot(%d samples): peaks=%d decay=%d clipping=%d",
				len(in), len(m.peaks), len(m.decayPeaks), len(m.clipping))
		}
	}
}

func TestChannelCountChangeRebuildsCaches(t *testing.T) {
	m := newTestMeter(t, Options{})

	m.Plot([]float64{-10, -20}, nil)
	twoChWidth := m.gradient.Bounds().Dx()

	m.Plot([]float64{-10, -20, -30}, nil)

	if len(m.peaks) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(m.peaks))
	}
	if m.gradient == nil || m.tickOverlay == nil {
		t.Fatal("caches should be rebuilt, not dropped")
	}
	threeChWidth := m.gradient.Bounds().Dx()
	if threeChWidth >= twoChWidth {
		t.Errorf("gradient width should shrink with more channels: %d -> %d", twoChWidth, threeChWidth)
	}
	if threeChWidth != m.meterWidth(false) {
		t.Errorf("gradient width %d does not match meter width %d", threeChWidth, m.meterWidth(false))
	}
}

func TestSmoothingSlowsDescent(t *testing.T) {
	m := newTestMeter(t, Options{Channels: 1, Smoothing: 0.016})
	iec := scale.IEC{}

	m.Plot([]float64{-5}, nil)

	prev := m.peaks[0]
	for _, raw := range []float64{-20, -35, -50, -65} {
		m.Plot([]float64{raw}, nil)
		got := m.peaks[0]
		if got <= iec.Scale(raw) {
			t.Fatalf("displayed peak %v fell as fast as raw %v (%v)", got, raw, iec.Scale(raw))
		}
		if got >= prev {
			t.Fatalf("displayed peak %v should still fall from %v", got, prev)
		}
		prev = got
	}
}

func TestSmoothingAcceleratesThenResets(t *testing.T) {
	const base = 0.016
	m := newTestMeter(t, Options{Channels: 1, Smoothing: base})

	m.Plot([]float64{-5}, nil)
	m.Plot([]float64{-40}, nil)
	m.Plot([]float64{-40}, nil)

	want := base * smoothingGrowth * smoothingGrowth
	if diff := m.currentSmoothing - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("accumulator = %v, want %v after two falling updates", m.currentSmoothing, want)
	}

	m.Plot([]float64{0}, nil)
	if m.currentSmoothing != base {
		t.Fatalf("accumulator = %v, want base %v after a rising update", m.currentSmoothing, base)
	}
}

func TestSmoothingDisabled(t *testing.T) {
	m := newTestMeter(t, Options{Channels: 1})
	iec := scale.IEC{}

	m.Plot([]float64{-5}, nil)
	m.Plot([]float64{-40}, nil)

	if got, want := m.peaks[0], iec.Scale(-40); got != want {
		t.Fatalf("without smoothing peak = %v, want raw scaled %v", got, want)
	}
}

func TestDecayShorterThanPeaksScaledAsRawZero(t *testing.T) {
	m := newTestMeter(t, Options{})
	iec := scale.IEC{}

	m.Plot([]float64{-10, -10}, []float64{-20})

	if got, want := m.decayPeaks[0], iec.Scale(-20); got != want {
		t.Errorf("decay[0] = %v, want %v", got, want)
	}
	// The missing entry is a raw 0 dB sample, which scales to full height.
	if got, want := m.decayPeaks[1], iec.Scale(0); got != want {
		t.Errorf("decay[1] = %v, want %v", got, want)
	}
}

func TestReset(t *testing.T) {
	m := newTestMeter(t, Options{Smoothing: 0.016})

	m.Plot([]float64{5, -10}, []float64{-5, -15})
	m.Plot([]float64{-40, -50}, nil)
	m.Reset()

	floor := m.scale.Scale(m.scale.Min())
	for n := range m.peaks {
		if m.peaks[n] != floor || m.decayPeaks[n] != floor {
			t.Errorf("channel %d: peak=%v decay=%v, want floor %v", n, m.peaks[n], m.decayPeaks[n], floor)
		}
		if m.clipping[n] {
			t.Errorf("channel %d: clipping flag should be cleared", n)
		}
	}
	if m.currentSmoothing != m.smoothing {
		t.Errorf("accumulator = %v, want base %v", m.currentSmoothing, m.smoothing)
	}
}

func TestTickMarksMonotonic(t *testing.T) {
	m := New(Options{Steps: []int{5, 10, 20, 50}})
	m.Resize(150, 400)

	if len(m.ticks) == 0 {
		t.Fatal("expected tick marks for a 400px meter")
	}
	prevY := 0
	prevLevel := m.scale.Max()
	for i, tick := range m.ticks {
		if tick.Y <= prevY && i > 0 {
			t.Errorf("tick %d: offset %d not above previous %d", i, tick.Y, prevY)
		}
		if tick.Level >= prevLevel {
			t.Errorf("tick %d: level %v not below previous %v", i, tick.Level, prevLevel)
		}
		prevY = tick.Y
		prevLevel = tick.Level
	}
}

func TestOuterScaleHiddenWhenNarrow(t *testing.T) {
	m := New(Options{})

	m.Resize(200, 400)
	if !m.OuterScaleVisible() {
		t.Fatal("outer scale should fit at 200px")
	}

	m.Resize(30, 400)
	if m.OuterScaleVisible() {
		t.Fatal("outer scale should be hidden when meters would drop below the minimum width")
	}
}

func TestDirtyRegionExcludesOuterScale(t *testing.T) {
	m := New(Options{})
	m.Resize(200, 400)

	r := m.Plot([]float64{-10, -20}, nil)
	if want := 200 - m.outerScaleWidth; r.Max.X != want {
		t.Errorf("dirty region right edge = %d, want %d (scale strip excluded)", r.Max.X, want)
	}

	m.Resize(30, 400)
	r = m.Plot([]float64{-10, -20}, nil)
	if r.Max.X != 30 {
		t.Errorf("dirty region right edge = %d, want full width 30", r.Max.X)
	}
}

func TestGradientEndpointColors(t *testing.T) {
	m := newTestMeter(t, Options{})

	b := m.gradient.Bounds()
	top := m.gradient.RGBAAt(b.Min.X, b.Min.Y)
	bottom := m.gradient.RGBAAt(b.Min.X, b.Max.Y-1)

	if (top != color.RGBA{R: 230, A: 255}) {
		t.Errorf("top of gradient = %v, want red", top)
	}
	if (bottom != color.RGBA{G: 180, B: 50, A: 255}) {
		t.Errorf("bottom of gradient = %v, want green", bottom)
	}
}

func TestTickOverlayMarksBorderColor(t *testing.T) {
	m := newTestMeter(t, Options{})
	if len(m.ticks) == 0 {
		t.Fatal("no ticks derived")
	}

	b := m.tickOverlay.Bounds()
	want := color.RGBAModel.Convert(m.palette.Border).(color.RGBA)
	for _, tick := range m.ticks {
		got := m.tickOverlay.RGBAAt(b.Max.X-1, tick.Y)
		if got != want {
			t.Errorf("overlay at tick y=%d = %v, want %v", tick.Y, got, want)
		}
	}
}

func TestPaintDegenerateGeometry(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))

	// Never resized: zero geometry must draw nothing and not panic.
	m := New(Options{})
	m.Paint(dst, dst.Bounds())

	// Zero channels after an empty batch.
	m.Resize(150, 400)
	m.Plot(nil, nil)
	m.Paint(dst, dst.Bounds())

	// Too narrow for even one bar.
	m2 := New(Options{Channels: 8})
	m2.Resize(4, 400)
	m2.Paint(dst, dst.Bounds())
}

func TestPaintFillsPeakBar(t *testing.T) {
	m := New(Options{Channels: 1, Unit: "dB"})
	m.Resize(80, 200)
	m.Plot([]float64{0}, []float64{0})

	dst := image.NewRGBA(image.Rect(0, 0, 80, 200))
	m.Paint(dst, dst.Bounds())

	// A full-scale channel paints gradient color just inside the border.
	got := dst.RGBAAt(2, 100)
	if got.A == 0 || (got.R == 30 && got.G == 30 && got.B == 30) {
		t.Fatalf("expected gradient pixel mid-bar, got background %v", got)
	}
}

func TestLinearScaleMeter(t *testing.T) {
	lin, err := scale.NewLinear(-40, 0)
	if err != nil {
		t.Fatalf("NewLinear: %v", err)
	}
	m := newTestMeter(t, Options{Scale: lin, Channels: 2})

	m.Plot([]float64{-20, 3}, nil)
	if got := m.peaks[0]; got != 0.5 {
		t.Errorf("peak[0] = %v, want 0.5 on a [-40,0] linear scale", got)
	}
	if !m.clipping[1] {
		t.Error("channel 1 should clip above 0 dB")
	}
}
