package source

const (
	defaultHoldUpdates = 8
	defaultFallDB      = 0.4
)

// PeakHold tracks slower-falling decay peaks over successive sample batches:
// a rising channel re-arms the hold, and once the hold runs out the stored
// peaks fall at a fixed dB rate per update.
type PeakHold struct {
	decay []float64
	hold  int
	ttl   int
	fall  float64
}

// NewPeakHold creates a tracker for the given channel count with all decay
// peaks starting at floor dB.
func NewPeakHold(channels int, floor float64) *PeakHold {
	p := &PeakHold{
		decay: make([]float64, channels),
		hold:  defaultHoldUpdates,
		ttl:   defaultHoldUpdates,
		fall:  defaultFallDB,
	}
	for n := range p.decay {
		p.decay[n] = floor
	}
	return p
}

// Update folds one batch of peak samples into the decay state and returns
// the current decay peaks. The returned slice is reused between calls. A
// batch with a different channel count restarts the tracker at those levels.
func (p *PeakHold) Update(samples []float64) []float64 {
	if len(samples) != len(p.decay) {
		p.decay = append(p.decay[:0], samples...)
		p.ttl = p.hold
		return p.decay
	}

	for n, sample := range samples {
		switch {
		case sample >= p.decay[n]:
			p.ttl = p.hold
			p.decay[n] = sample
		case p.ttl <= 0:
			p.decay[n] -= p.fall
		default:
			p.ttl--
		}
	}
	return p.decay
}
