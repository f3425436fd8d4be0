// Package config loads the dashboard layout and connection settings from YAML.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hwdash/dash/channel"
)

// Element kinds.
const (
	KindGraph   = "graph"
	KindGauge   = "gauge"
	KindBar     = "bar"
	KindGrid    = "grid"
	KindReadout = "readout"
	KindText    = "text"
	KindConsole = "console"
)

// Config is the full runtime configuration.
type Config struct {
	Stream   StreamConfig               `yaml:"stream"`
	Display  DisplayConfig              `yaml:"display"`
	Hardware HardwareConfig             `yaml:"hardware"`
	Channels map[string]ChannelOverride `yaml:"channels"`
	Assets   AssetsConfig               `yaml:"assets"`
	Pages    []PageConfig               `yaml:"pages"`

	// LoadedFrom is the path Load read, empty for Default.
	LoadedFrom string `yaml:"-"`
}

type StreamConfig struct {
	URL           string `yaml:"url"`
	ReadTimeoutMS int    `yaml:"read_timeout_ms"`
	RetryDelayMS  int    `yaml:"retry_delay_ms"`
}

// ReadTimeout is the idle limit on the event stream.
func (s StreamConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

// RetryDelay is the pause between reconnect attempts.
func (s StreamConfig) RetryDelay() time.Duration {
	return time.Duration(s.RetryDelayMS) * time.Millisecond
}

type DisplayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Scale  int `yaml:"scale"`
	TPS    int `yaml:"tps"`
}

type HardwareConfig struct {
	CPUCores int `yaml:"cpu_cores"`
	Disks    int `yaml:"disks"`
	Fans     int `yaml:"fans"`
}

// Counts converts the hardware section for the channel registry.
func (h HardwareConfig) Counts() channel.HardwareCounts {
	return channel.HardwareCounts{
		channel.CountCPUCores: h.CPUCores,
		channel.CountDisks:    h.Disks,
		channel.CountFans:     h.Fans,
	}
}

// ChannelOverride adjusts one channel or a whole indexed family.
type ChannelOverride struct {
	Label   string   `yaml:"label"`
	Unit    string   `yaml:"unit"`
	Min     *float64 `yaml:"min"`
	Max     *float64 `yaml:"max"`
	Caution *float64 `yaml:"caution"`
	Warn    *float64 `yaml:"warn"`
}

type AssetsConfig struct {
	Needle string `yaml:"needle"`
}

type PageConfig struct {
	Name       string          `yaml:"name"`
	Background string          `yaml:"background"`
	Elements   []ElementConfig `yaml:"elements"`
}

type ElementConfig struct {
	Kind    string `yaml:"kind"`
	Channel string `yaml:"channel"`
	X       int    `yaml:"x"`
	Y       int    `yaml:"y"`
	W       int    `yaml:"w"`
	H       int    `yaml:"h"`

	Step             int     `yaml:"step"`
	ZeroIsNoSignal   bool    `yaml:"zero_is_no_signal"`
	Vertical         bool    `yaml:"vertical"`
	Rows             int     `yaml:"rows"`
	Threshold        float64 `yaml:"threshold"`
	Label            string  `yaml:"label"`
	Fallback         string  `yaml:"fallback"`
	CounterClockwise bool    `yaml:"counter_clockwise"`
}

// Load reads a YAML file, fills defaults and validates it.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	cfg.LoadedFrom = filename
	return cfg, nil
}

// Parse decodes YAML on top of the defaults. A file without pages gets the
// built-in layout.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration with no stream URL.
func Default() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}

func (c *Config) normalize() {
	if c.Stream.ReadTimeoutMS <= 0 {
		c.Stream.ReadTimeoutMS = 5000
	}
	if c.Stream.RetryDelayMS <= 0 {
		c.Stream.RetryDelayMS = 2000
	}
	if c.Display.Width <= 0 {
		c.Display.Width = 320
	}
	if c.Display.Height <= 0 {
		c.Display.Height = 240
	}
	if c.Display.Scale <= 0 {
		c.Display.Scale = 2
	}
	if c.Display.TPS <= 0 {
		c.Display.TPS = 30
	}
	if c.Hardware.CPUCores <= 0 {
		c.Hardware.CPUCores = 8
	}
	if c.Hardware.Disks <= 0 {
		c.Hardware.Disks = 2
	}
	if c.Hardware.Fans <= 0 {
		c.Hardware.Fans = 2
	}
	if len(c.Pages) == 0 {
		c.Pages = DefaultPages()
	}
	for i := range c.Pages {
		p := &c.Pages[i]
		p.Name = strings.TrimSpace(p.Name)
		for j := range p.Elements {
			e := &p.Elements[j]
			e.Kind = strings.ToLower(strings.TrimSpace(e.Kind))
			if e.Kind == KindGraph && e.Step <= 0 {
				e.Step = 2
			}
			if e.Kind == KindGrid && e.Rows <= 0 {
				e.Rows = 1
			}
		}
	}
}

// Validate checks structural constraints. Channel names are resolved later
// against the registry.
func (c *Config) Validate() error {
	if c.Stream.URL != "" {
		if err := ValidateURL(c.Stream.URL); err != nil {
			return fmt.Errorf("stream.url: %w", err)
		}
	}
	var errs []error
	for i, p := range c.Pages {
		name := p.Name
		if name == "" {
			errs = append(errs, fmt.Errorf("pages[%d]: name is required", i))
			name = fmt.Sprintf("#%d", i)
		}
		if p.Background != "" {
			if _, err := ParseColor(p.Background); err != nil {
				errs = append(errs, fmt.Errorf("page %s: background: %w", name, err))
			}
		}
		for j, e := range p.Elements {
			if err := c.validateElement(e); err != nil {
				errs = append(errs, fmt.Errorf("page %s element %d (%s): %w", name, j, e.Kind, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Config) validateElement(e ElementConfig) error {
	switch e.Kind {
	case KindGraph, KindGauge, KindBar, KindGrid, KindReadout, KindText:
		if e.Channel == "" {
			return errors.New("channel is required")
		}
	case KindConsole:
	default:
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	if e.W <= 0 || e.H <= 0 {
		return fmt.Errorf("size %dx%d must be positive", e.W, e.H)
	}
	if e.X < 0 || e.Y < 0 || e.X+e.W > c.Display.Width || e.Y+e.H > c.Display.Height {
		return fmt.Errorf("rect %d,%d %dx%d outside %dx%d display", e.X, e.Y, e.W, e.H, c.Display.Width, c.Display.Height)
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// Overrides converts the channels section for the registry.
func (c *Config) Overrides() map[string]channel.Override {
	if len(c.Channels) == 0 {
		return nil
	}
	out := make(map[string]channel.Override, len(c.Channels))
	for key, o := range c.Channels {
		out[key] = channel.Override{
			Label:   o.Label,
			Unit:    o.Unit,
			Min:     o.Min,
			Max:     o.Max,
			Caution: o.Caution,
			Warn:    o.Warn,
		}
	}
	return out
}
