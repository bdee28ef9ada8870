package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/arcaluminis-orrery/internal/orbital"
)

type PowerCfg struct {
	LimitAmps   float64 `yaml:"limit_amps"`
	WhiteCap    float64 `yaml:"white_cap"`
	SoftStartMs int     `yaml:"soft_start_ms"`
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type SPI struct {
	Dev    string `yaml:"dev"`     // e.g. /dev/spidev0.0
	FreqHz int    `yaml:"freq_hz"` // NRZ bit rate, e.g. 800000
}

// Clip is one stop of the camera tour.
type Clip struct {
	Renderer  string             `yaml:"renderer"`
	Preset    string             `yaml:"preset"`
	DurationS float64            `yaml:"duration_s"`
	XFadeS    float64            `yaml:"xfade_s,omitempty"`
	Params    map[string]float64 `yaml:"params,omitempty"`
}

type Sim struct {
	TimeScale      float64 `yaml:"time_scale"`
	SunSpinEnabled bool    `yaml:"sun_spin_enabled"`
	OrbitSamples   int     `yaml:"orbit_samples"`
	StartRenderer  string  `yaml:"start_renderer"`
	StartPreset    string  `yaml:"start_preset"`
	Tour           []Clip  `yaml:"tour,omitempty"`
	TourLoop       bool    `yaml:"tour_loop"`
}

type Camera struct {
	Position [3]float64 `yaml:"position"`
	Target   [3]float64 `yaml:"target"`
	FOV      float64    `yaml:"fov"`
}

type Config struct {
	Driver     string  `yaml:"driver"` // "spi" | "term" | "sim"
	ColorOrder string  `yaml:"color_order"`
	Brightness float64 `yaml:"brightness"`
	FPS        int     `yaml:"fps"`
	Addr       string  `yaml:"addr,omitempty"`
	LogLevel   string  `yaml:"log_level,omitempty"`

	Dim             Dim     `yaml:"dim"`
	PitchMM         float64 `yaml:"pitch_mm"`
	PanelGapMM      float64 `yaml:"panel_gap_mm"`
	XFlipEveryRow   bool    `yaml:"x_flip_every_row"`
	YFlipEveryPanel bool    `yaml:"y_flip_every_panel"`

	Power PowerCfg `yaml:"power"`
	SPI   SPI      `yaml:"spi,omitempty"`

	Sim    Sim                     `yaml:"sim"`
	Camera Camera                  `yaml:"camera"`
	Bodies []orbital.CelestialBody `yaml:"bodies,omitempty"`
}

// Default is the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Driver:     "sim",
		ColorOrder: "GRB",
		Brightness: 0.8,
		FPS:        60,
		Addr:       ":8080",
		LogLevel:   "info",
		Dim:        Dim{X: 16, Y: 16, Z: 16},
		PitchMM:    10,
		PanelGapMM: 10,
		Power:      PowerCfg{LimitAmps: 35, WhiteCap: 0.85, SoftStartMs: 800},
		SPI:        SPI{Dev: "/dev/spidev0.0", FreqHz: 800000},
		Sim: Sim{
			TimeScale:     1,
			OrbitSamples:  orbital.DefaultOrbitSamples,
			StartRenderer: "orrery",
			StartPreset:   "System",
			TourLoop:      true,
		},
		Camera: Camera{Position: [3]float64{30, 5, 35}, Target: [3]float64{30, 0, 0}, FOV: 100},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the fields a bad file can break; body rows are checked by Table.
func (c *Config) Validate() error {
	if c.Dim.X <= 0 || c.Dim.Y <= 0 || c.Dim.Z <= 0 {
		return fmt.Errorf("dim must be positive, got %dx%dx%d", c.Dim.X, c.Dim.Y, c.Dim.Z)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.Sim.OrbitSamples != 0 && c.Sim.OrbitSamples < 3 {
		return fmt.Errorf("sim.orbit_samples must be at least 3, got %d", c.Sim.OrbitSamples)
	}
	_, err := c.Table()
	return err
}

// Table builds the body table, falling back to the built-in bodies.
func (c *Config) Table() (*orbital.Table, error) {
	if len(c.Bodies) == 0 {
		return orbital.DefaultTable(), nil
	}
	t, err := orbital.NewTable(c.Bodies)
	if err != nil {
		return nil, fmt.Errorf("bodies: %w", err)
	}
	return t, nil
}
