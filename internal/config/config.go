// Package config defines the dpmeter configuration format and helpers for
// loading or saving it to disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/FrancescoCeruti/dpmeter/internal/scale"
)

const (
	// AppID is the stable application identifier used for config storage.
	AppID = "dpmeter"
	// AppConfigName is the YAML file stored on disk.
	AppConfigName = "config.yaml"

	// DefaultWidth and DefaultHeight match the classic two-channel demo window.
	DefaultWidth  = 150
	DefaultHeight = 400
	// DefaultChannels is the stereo default.
	DefaultChannels = 2
	// DefaultSmoothing is the base fall-off smoothing amount.
	DefaultSmoothing = 0.016
	// DefaultUnit is the label drawn under the outer scale.
	DefaultUnit = "dBFS"
	// DefaultUpdateMS is the sample interval for the demo generator.
	DefaultUpdateMS = 33
	// DefaultWsURL is the conventional local CamillaDSP websocket endpoint.
	DefaultWsURL = "ws://127.0.0.1:1234"
	// DefaultTimeoutMS bounds a single websocket read.
	DefaultTimeoutMS = 500

	// ScaleIEC selects the IEC 268-18 mapping, ScaleLinear the plain one.
	ScaleIEC    = "iec"
	ScaleLinear = "linear"

	// SourceRandom selects the demo generator, SourceCamillaDSP the websocket
	// level poller.
	SourceRandom     = "random"
	SourceCamillaDSP = "camilladsp"
)

// WindowConfig sizes the demo window.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// MeterConfig configures the widget itself. Smoothing may be set to a
// negative value to disable fall-off smoothing entirely.
type MeterConfig struct {
	Channels  int     `yaml:"channels"`
	Smoothing float64 `yaml:"smoothing"`
	Unit      string  `yaml:"unit"`
	Scale     string  `yaml:"scale"` // "iec" or "linear"
	LinearMin float64 `yaml:"linear_min,omitempty"`
	LinearMax float64 `yaml:"linear_max,omitempty"`
	Steps     []int   `yaml:"steps,flow"`
}

// SourceConfig selects and tunes the sample feed.
type SourceConfig struct {
	Kind      string `yaml:"kind"` // "random" or "camilladsp"
	UpdateMS  int    `yaml:"update_ms"`
	WsURL     string `yaml:"ws_url,omitempty"`
	TimeoutMS int    `yaml:"timeout_ms,omitempty"`
}

// Config aggregates every user-facing preference persisted between sessions.
type Config struct {
	Window WindowConfig `yaml:"window"`
	Meter  MeterConfig  `yaml:"meter"`
	Source SourceConfig `yaml:"source"`
}

// DefaultPath resolves the full path of the config file inside the user
// config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppID, AppConfigName), nil
}

// Load reads the config from path, applying defaults and validating. A
// missing file yields the defaults and tries to persist an initial copy.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := newDefaultConfig()
			// Try saving an initial config, but still return defaults even if it fails.
			_ = cfg.Save(path)
			return cfg, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config parse error: %w", err)
	}
	cfg.applyRuntimeDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save persists the configuration to path, creating directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// BuildScale constructs the configured Scale variant. Linear bounds left at
// zero select the conventional [-60, 0] range.
func (c *Config) BuildScale() (scale.Scale, error) {
	switch c.Meter.Scale {
	case ScaleIEC:
		return scale.IEC{}, nil
	case ScaleLinear:
		if c.Meter.LinearMin == 0 && c.Meter.LinearMax == 0 {
			return scale.DefaultLinear(), nil
		}
		return scale.NewLinear(c.Meter.LinearMin, c.Meter.LinearMax)
	default:
		return nil, fmt.Errorf("unknown scale %q", c.Meter.Scale)
	}
}

// Smoothing returns the effective smoothing amount, treating negative values
// as explicitly disabled.
func (c *Config) Smoothing() float64 {
	if c.Meter.Smoothing < 0 {
		return 0
	}
	return c.Meter.Smoothing
}

// newDefaultConfig builds an in-memory config populated with safe defaults.
func newDefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyRuntimeDefaults()
	return cfg
}

// applyRuntimeDefaults normalizes config values after a load or when defaults
// are constructed, so the rest of the app always receives sane inputs.
func (c *Config) applyRuntimeDefaults() {
	if c.Window.Width <= 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height <= 0 {
		c.Window.Height = DefaultHeight
	}
	if c.Meter.Channels <= 0 {
		c.Meter.Channels = DefaultChannels
	}
	if c.Meter.Smoothing == 0 {
		c.Meter.Smoothing = DefaultSmoothing
	}
	if strings.TrimSpace(c.Meter.Unit) == "" {
		c.Meter.Unit = DefaultUnit
	}
	if c.Meter.Scale == "" {
		c.Meter.Scale = ScaleIEC
	}
	if len(c.Meter.Steps) == 0 {
		c.Meter.Steps = []int{5, 10, 20, 50}
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceRandom
	}
	if c.Source.UpdateMS <= 0 {
		c.Source.UpdateMS = DefaultUpdateMS
	}
	if strings.TrimSpace(c.Source.WsURL) == "" {
		c.Source.WsURL = DefaultWsURL
	}
	if c.Source.TimeoutMS <= 0 {
		c.Source.TimeoutMS = DefaultTimeoutMS
	}
}

// validate rejects configurations that cannot produce a working meter.
func (c *Config) validate() error {
	switch c.Meter.Scale {
	case ScaleIEC, ScaleLinear:
	default:
		return fmt.Errorf("meter.scale: unknown scale %q", c.Meter.Scale)
	}
	if c.Meter.Scale == ScaleLinear && !(c.Meter.LinearMin == 0 && c.Meter.LinearMax == 0) {
		if c.Meter.LinearMin >= c.Meter.LinearMax {
			return fmt.Errorf("meter: linear_min %.1f must be below linear_max %.1f",
				c.Meter.LinearMin, c.Meter.LinearMax)
		}
	}
	for _, step := range c.Meter.Steps {
		if step <= 0 {
			return fmt.Errorf("meter.steps: step %d must be positive", step)
		}
	}
	switch c.Source.Kind {
	case SourceRandom, SourceCamillaDSP:
	default:
		return fmt.Errorf("source.kind: unknown source %q", c.Source.Kind)
	}
	return nil
}
