package source

import (
	"context"
	"math"
	"testing"
	"time"
)

func TestPeakHoldRisesImmediately(t *testing.T) {
	p := NewPeakHold(2, -70)

	decay := p.Update([]float64{-20, -30})
	if decay[0] != -20 || decay[1] != -30 {
		t.Fatalf("rising samples should be tracked directly, got %v", decay)
	}
}

func TestPeakHoldHoldsThenFalls(t *testing.T) {
	p := NewPeakHold(1, -70)
	p.Update([]float64{-10})

	// Quieter batches first burn down the hold without moving the peak.
	for i := 0; i < defaultHoldUpdates; i++ {
		decay := p.Update([]float64{-60})
		if decay[0] != -10 {
			t.Fatalf("update %d: decay moved to %v during hold", i, decay[0])
		}
	}

	// After the hold expires the peak falls at the fixed rate.
	prev := -10.0
	for i := 0; i < 5; i++ {
		decay := p.Update([]float64{-60})
		want := prev - defaultFallDB
		if math.Abs(decay[0]-want) > 1e-9 {
			t.Fatalf("fall %d: decay = %v, want %v", i, decay[0], want)
		}
		prev = decay[0]
	}
}

func TestPeakHoldRearmsOnRise(t *testing.T) {
	p := NewPeakHold(1, -70)
	p.Update([]float64{-10})
	for i := 0; i < defaultHoldUpdates+3; i++ {
		p.Update([]float64{-60})
	}

	decay := p.Update([]float64{-5})
	if decay[0] != -5 {
		t.Fatalf("rise should replace the decay peak, got %v", decay[0])
	}
	if got := p.Update([]float64{-60})[0]; got != -5 {
		t.Fatalf("hold should be re-armed after a rise, got %v", got)
	}
}

func TestPeakHoldChannelCountChange(t *testing.T) {
	p := NewPeakHold(2, -70)
	p.Update([]float64{-10, -20})

	decay := p.Update([]float64{-30, -40, -50})
	if len(decay) != 3 {
		t.Fatalf("expected tracker to follow the new channel count, got %d", len(decay))
	}
}

func TestRandomSourceEmits(t *testing.T) {
	src := &Random{Channels: 2, Interval: time.Millisecond, Min: -70, Max: 0}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 1)
	go func() {
		_ = src.Run(ctx, func(peaks, decay []float64) {
			if len(peaks) == len(decay) {
				select {
				case got <- len(peaks):
				default:
				}
			}
			cancel()
		})
	}()

	select {
	case n := <-got:
		if n != 2 {
			t.Fatalf("expected 2 channels, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("source never emitted")
	}
}

func TestParsePeakReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []float64
		wantErr bool
	}{
		{
			name:  "ok",
			reply: `{"GetPlaybackSignalPeak":{"result":"Ok","value":[-12.5,-14.25]}}`,
			want:  []float64{-12.5, -14.25},
		},
		{
			name:    "error result",
			reply:   `{"GetPlaybackSignalPeak":{"result":"Error"}}`,
			wantErr: true,
		},
		{
			name:    "garbage",
			reply:   `nope`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePeakReply([]byte(tt.reply))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("value %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
