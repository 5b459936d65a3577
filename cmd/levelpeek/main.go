// cmd/levelpeek/main.go
//
// Small debugging tool: connects to a CamillaDSP websocket, polls the
// playback signal peaks, and prints them. Useful for checking what the
// meter would receive without starting the GUI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	var (
		wsURL    = flag.String("ws", "ws://127.0.0.1:1234", "CamillaDSP websocket URL")
		interval = flag.Int("interval", 500, "polling interval in milliseconds")
		timeout  = flag.Int("timeout", 500, "read timeout in milliseconds")
	)
	flag.Parse()

	u, err := url.Parse(*wsURL)
	if err != nil {
		log.Fatalf("invalid websocket URL: %v", err)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	d := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	log.Printf("connecting to %s...", u.String())
	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("connected! polling GetPlaybackSignalPeak every %dms (press Ctrl+C to exit)", *interval)

	ticker := time.NewTicker(time.Duration(*interval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigc:
			return
		case <-ticker.C:
			peaks, err := query(conn, time.Duration(*timeout)*time.Millisecond)
			if err != nil {
				log.Fatalf("query failed: %v", err)
			}
			line := ""
			for n, p := range peaks {
				if n > 0 {
					line += "  "
				}
				line += fmt.Sprintf("ch%d %7.2f dB", n, p)
			}
			fmt.Println(line)
		}
	}
}

func query(conn *websocket.Conn, timeout time.Duration) ([]float64, error) {
	cmd, err := json.Marshal("GetPlaybackSignalPeak")
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.TextMessage, cmd); err != nil {
		return nil, err
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var reply struct {
		GetPlaybackSignalPeak struct {
			Result string    `json:"result"`
			Value  []float64 `json:"value"`
		} `json:"GetPlaybackSignalPeak"`
	}
	if err := json.Unmarshal(msg, &reply); err != nil {
		return nil, err
	}
	if reply.GetPlaybackSignalPeak.Result != "Ok" {
		return nil, fmt.Errorf("unexpected result %q", reply.GetPlaybackSignalPeak.Result)
	}
	return reply.GetPlaybackSignalPeak.Value, nil
}
