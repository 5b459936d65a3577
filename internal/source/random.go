package source

import (
	"context"
	"math/rand"
	"time"
)

// Random emits uniformly distributed dB samples on a fixed interval. It is
// the demo driver: enough motion to exercise smoothing, decay indicators,
// and the occasional clip when Max is above the scale ceiling.
type Random struct {
	Channels int
	Interval time.Duration
	Min      float64
	Max      float64
}

// Run generates batches until ctx is cancelled.
func (r *Random) Run(ctx context.Context, emit EmitFunc) error {
	channels := r.Channels
	if channels <= 0 {
		channels = 2
	}
	interval := r.Interval
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}

	hold := NewPeakHold(channels, r.Min)
	peaks := make([]float64, channels)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for n := range peaks {
				peaks[n] = r.Min + rand.Float64()*(r.Max-r.Min)
			}
			emit(peaks, hold.Update(peaks))
		}
	}
}
