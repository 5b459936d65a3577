// Package meterapp wires the configuration, the meter widget, and the sample
// source together into the dpmeter desktop window.
package meterapp

import (
	"context"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/FrancescoCeruti/dpmeter/internal/config"
	"github.com/FrancescoCeruti/dpmeter/internal/meter"
	"github.com/FrancescoCeruti/dpmeter/internal/source"
	"github.com/FrancescoCeruti/dpmeter/internal/ui"
)

// App owns the fyne application, the main window, the meter widget, and the
// sample source lifecycle.
type App struct {
	fa  fyne.App
	w   fyne.Window
	cfg *config.Config

	meter *ui.DigitalMeter
	src   source.Source
}

// New builds the application from a validated config.
func New(cfg *config.Config) (*App, error) {
	sc, err := cfg.BuildScale()
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}
	a.fa = app.NewWithID(config.AppID)
	a.w = a.fa.NewWindow("dpmeter")

	a.meter = ui.NewDigitalMeter(meter.Options{
		Scale:     sc,
		Steps:     cfg.Meter.Steps,
		Smoothing: cfg.Smoothing(),
		Unit:      cfg.Meter.Unit,
		Channels:  cfg.Meter.Channels,
	})
	a.src = buildSource(cfg, sc.Min(), sc.Max())

	a.w.SetContent(a.meter)
	a.w.Resize(fyne.NewSize(float32(cfg.Window.Width), float32(cfg.Window.Height)))
	return a, nil
}

// buildSource maps the config onto a concrete sample feed.
func buildSource(cfg *config.Config, min, max float64) source.Source {
	interval := time.Duration(cfg.Source.UpdateMS) * time.Millisecond
	switch cfg.Source.Kind {
	case config.SourceCamillaDSP:
		return &source.CamillaDSP{
			URL:         cfg.Source.WsURL,
			Interval:    interval,
			ReadTimeout: time.Duration(cfg.Source.TimeoutMS) * time.Millisecond,
			Floor:       min,
		}
	default:
		return &source.Random{
			Channels: cfg.Meter.Channels,
			Interval: interval,
			Min:      min,
			Max:      max,
		}
	}
}

// Run starts the sample feed and enters the UI main loop; it returns once
// the window closes.
func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	a.w.SetOnClosed(cancel)

	go func() {
		if err := a.src.Run(ctx, a.meter.Plot); err != nil {
			log.Printf("meterapp: source stopped: %v", err)
		}
	}()

	a.w.ShowAndRun()
	cancel()
}
