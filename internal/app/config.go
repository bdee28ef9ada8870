package app

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/arcaluminis-orrery/internal/config"
	"github.com/coreman2200/arcaluminis-orrery/internal/layout"
	"github.com/coreman2200/arcaluminis-orrery/internal/led"
	"github.com/coreman2200/arcaluminis-orrery/internal/scene"
	"github.com/coreman2200/arcaluminis-orrery/internal/sequence"
)

// LayoutFromConfig maps the cube section of cfg.
func LayoutFromConfig(cfg *config.Config) layout.Layout {
	return layout.Layout{
		Dim:        layout.Dim{X: cfg.Dim.X, Y: cfg.Dim.Y, Z: cfg.Dim.Z},
		Order:      layout.Serpentine{XFlipEveryRow: cfg.XFlipEveryRow, YFlipEveryPanel: cfg.YFlipEveryPanel},
		PanelGapMM: cfg.PanelGapMM,
		PitchMM:    cfg.PitchMM,
	}
}

// FromConfig maps cfg onto InitCore arguments. drv may be nil.
func FromConfig(cfg *config.Config, drv led.Driver) (HWConfig, SimConfig, error) {
	table, err := cfg.Table()
	if err != nil {
		return HWConfig{}, SimConfig{}, err
	}
	hw := HWConfig{
		Layout:     LayoutFromConfig(cfg),
		Drv:        drv,
		Brightness: cfg.Brightness,
		Preview:    cfg.Driver == "sim",
		BudgetMA:   cfg.Power.LimitAmps * 1000,
		WhiteCap:   cfg.Power.WhiteCap * 3,
	}

	cam := scene.DefaultCamera()
	cam.Position = mgl64.Vec3(cfg.Camera.Position)
	cam.Target = mgl64.Vec3(cfg.Camera.Target)
	if cfg.Camera.FOV > 0 {
		cam.FOV = cfg.Camera.FOV
	}
	sim := SimConfig{
		Table:         table,
		TimeScale:     cfg.Sim.TimeScale,
		SunSpin:       cfg.Sim.SunSpinEnabled,
		OrbitSamples:  cfg.Sim.OrbitSamples,
		Camera:        &cam,
		StartRenderer: cfg.Sim.StartRenderer,
		StartPreset:   cfg.Sim.StartPreset,
	}
	if len(cfg.Sim.Tour) > 0 {
		prog := TourFromConfig(cfg.Sim.Tour, cfg.Sim.TourLoop)
		sim.Tour = &prog
	}
	return hw, sim, nil
}

// TourFromConfig turns config clips into a program; params hold for the whole clip.
func TourFromConfig(clips []config.Clip, loop bool) sequence.Program {
	p := sequence.Program{Version: "seq.v1", Loop: loop}
	for i, c := range clips {
		clip := sequence.Clip{
			Name:      fmt.Sprintf("%d-%s", i, c.Preset),
			Renderer:  c.Renderer,
			Preset:    c.Preset,
			DurationS: c.DurationS,
			XFadeS:    c.XFadeS,
		}
		if len(c.Params) > 0 {
			clip.Params = make(map[string]sequence.Envelope, len(c.Params))
			for k, v := range c.Params {
				clip.Params[k] = sequence.Const(v)
			}
		}
		p.Clips = append(p.Clips, clip)
	}
	return p
}
