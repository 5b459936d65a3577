package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const peakCommand = "GetPlaybackSignalPeak"

// CamillaDSP polls a CamillaDSP websocket for per-channel playback signal
// peaks and forwards them as meter samples, with decay peaks derived by a
// PeakHold tracker. Connection loss triggers reconnects with a short
// backoff, so a restarting DSP never kills the feed.
type CamillaDSP struct {
	URL         string
	Interval    time.Duration
	ReadTimeout time.Duration
	Floor       float64 // dB used to seed the decay tracker, e.g. the scale minimum
}

// Run polls until ctx is cancelled. Only connection setup errors that cannot
// be retried (a malformed URL) are returned.
func (c *CamillaDSP) Run(ctx context.Context, emit EmitFunc) error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("camilladsp: invalid ws url: %w", err)
	}

	interval := c.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	timeout := c.ReadTimeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}

	var hold *PeakHold

	for {
		if ctx.Err() != nil {
			return nil
		}

		d := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
		conn, _, err := d.Dial(u.String(), nil)
		if err != nil {
			log.Printf("camilladsp: connect %s: %v", u, err)
			if !sleepCtx(ctx, 2*time.Second) {
				return nil
			}
			continue
		}

		err = c.poll(ctx, conn, interval, timeout, &hold, emit)
		conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("camilladsp: connection lost: %v", err)
		if !sleepCtx(ctx, time.Second) {
			return nil
		}
	}
}

// poll queries the peak command on every tick until the connection fails or
// ctx is cancelled.
func (c *CamillaDSP) poll(ctx context.Context, conn *websocket.Conn, interval, timeout time.Duration, hold **PeakHold, emit EmitFunc) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			peaks, err := queryPeaks(conn, timeout)
			if err != nil {
				return err
			}
			if len(peaks) == 0 {
				continue
			}
			if *hold == nil || len((*hold).decay) != len(peaks) {
				*hold = NewPeakHold(len(peaks), c.Floor)
			}
			emit(peaks, (*hold).Update(peaks))
		}
	}
}

// queryPeaks sends the peak command and reads one JSON reply.
func queryPeaks(conn *websocket.Conn, timeout time.Duration) ([]float64, error) {
	msg, err := json.Marshal(peakCommand)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	defer conn.SetReadDeadline(time.Time{})

	_, reply, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return parsePeakReply(reply)
}

// parsePeakReply decodes a CamillaDSP response of the form
// {"GetPlaybackSignalPeak":{"result":"Ok","value":[-12.3,-14.1]}}.
func parsePeakReply(msg []byte) ([]float64, error) {
	var reply struct {
		GetPlaybackSignalPeak struct {
			Result string    `json:"result"`
			Value  []float64 `json:"value"`
		} `json:"GetPlaybackSignalPeak"`
	}
	if err := json.Unmarshal(msg, &reply); err != nil {
		return nil, fmt.Errorf("parse peak reply: %w", err)
	}
	if reply.GetPlaybackSignalPeak.Result != "Ok" {
		return nil, fmt.Errorf("peak query returned %q", reply.GetPlaybackSignalPeak.Result)
	}
	return reply.GetPlaybackSignalPeak.Value, nil
}

// sleepCtx waits for d and reports false when ctx was cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
