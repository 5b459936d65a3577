// Package source provides the sample feeds that drive the meter widget: a
// random demo generator and a CamillaDSP websocket poller, both emitting
// per-channel peak and decay-peak levels in raw dB.
package source

import "context"

// EmitFunc receives one batch of per-channel peak and decay-peak dB samples.
type EmitFunc func(peaks, decayPeaks []float64)

// Source produces sample batches until the context is cancelled. Run blocks
// and is expected to be launched on its own goroutine; emit is called from
// that goroutine, so receivers must do their own thread marshalling.
type Source interface {
	Run(ctx context.Context, emit EmitFunc) error
}
