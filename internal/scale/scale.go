// Package scale provides the dB-to-fraction mappings used by the peak meter
// to convert raw decibel samples into normalized bar heights.
package scale

import "fmt"

// Scale maps a decibel value onto a [0, 1] fraction of the meter height.
// Implementations clamp values below Min to 0; values above Max may be fed
// in by callers to signal clipping and are clamped to 1.
type Scale interface {
	Min() float64
	Max() float64
	Scale(value float64) float64
}

// IEC implements the IEC 268-18:1995 standard dB scaling, a piecewise-linear
// curve that gives perceptually louder ranges proportionally more of the
// meter. The breakpoints are fixed by the standard; the domain is always
// [-70, 0] dB.
//
// Adapted from: http://plugin.org.uk/meterbridge/
type IEC struct{}

// Min returns the lower bound of the IEC domain, -70 dB.
func (IEC) Min() float64 { return -70 }

// Max returns the upper bound of the IEC domain, 0 dB.
func (IEC) Max() float64 { return 0 }

// Scale maps value through the six IEC segments.
func (IEC) Scale(value float64) float64 {
	out := 100.0

	switch {
	case value < -70.0:
		out = 0.0
	case value < -60.0:
		out = (value + 70.0) * 0.25
	case value < -50.0:
		out = (value+60.0)*0.50 + 2.5
	case value < -40.0:
		out = (value+50.0)*0.75 + 7.5
	case value < -30.0:
		out = (value+40.0)*1.5 + 15
	case value < -20.0:
		out = (value+30.0)*2.0 + 30
	case value < 0:
		out = (value+20.0)*2.5 + 50
	}

	return out / 100
}

// Linear maps [min, max] dB onto [0, 1] with plain interpolation.
type Linear struct {
	min float64
	max float64
}

// NewLinear builds a Linear scale over [min, max]. It errors when the bounds
// are inverted or equal, which would produce nonsensical geometry downstream.
func NewLinear(min, max float64) (Linear, error) {
	if min >= max {
		return Linear{}, fmt.Errorf("linear scale: min %.1f must be below max %.1f", min, max)
	}
	return Linear{min: min, max: max}, nil
}

// DefaultLinear returns the conventional [-60, 0] dB linear scale.
func DefaultLinear() Linear { return Linear{min: -60, max: 0} }

// Min returns the lower dB bound.
func (l Linear) Min() float64 { return l.min }

// Max returns the upper dB bound.
func (l Linear) Max() float64 { return l.max }

// Scale interpolates value across the configured range, clamping outside it.
func (l Linear) Scale(value float64) float64 {
	if value < l.min {
		return 0
	}
	if value < l.max {
		return (value - l.min) / (l.max - l.min)
	}
	return 1
}
