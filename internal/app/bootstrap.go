package app

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/arcaluminis-orrery/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-orrery/internal/layout"
	"github.com/coreman2200/arcaluminis-orrery/internal/led"
	"github.com/coreman2200/arcaluminis-orrery/internal/metrics"
	"github.com/coreman2200/arcaluminis-orrery/internal/orbital"
	"github.com/coreman2200/arcaluminis-orrery/internal/render"
	"github.com/coreman2200/arcaluminis-orrery/internal/render/post"
	"github.com/coreman2200/arcaluminis-orrery/internal/render/scenes/calib"
	"github.com/coreman2200/arcaluminis-orrery/internal/render/scenes/orrery"
	"github.com/coreman2200/arcaluminis-orrery/internal/render/scenes/solid"
	"github.com/coreman2200/arcaluminis-orrery/internal/scene"
	"github.com/coreman2200/arcaluminis-orrery/internal/sequence"
	"github.com/coreman2200/arcaluminis-orrery/internal/snapshot"
)

// Renderer names registered by InitCore.
const (
	OrreryRenderer = "orrery"
	CalibRenderer  = "calib"
	SolidRenderer  = "solid"
)

// HWConfig describes the physical output.
type HWConfig struct {
	Layout     layout.Layout
	Drv        led.Driver // nil renders without output
	Brightness float64
	Preview    bool // tone-map for screens instead of the LED limiter
	BudgetMA   float64
	WhiteCap   float64
}

// SimConfig describes the simulated system.
type SimConfig struct {
	Table         *orbital.Table // nil uses the built-in bodies
	TimeScale     float64
	SunSpin       bool
	OrbitSamples  int
	Camera        *scene.Camera
	StartRenderer string
	StartPreset   string
	Tour          *sequence.Program // nil uses sequence.DefaultTour
}

// Observers are optional sinks for frame stats and diagnostics.
type Observers struct {
	Metrics *metrics.Collector
	Hub     *diagnostics.Hub
}

// Core owns the engine, scene and sequencer. All methods are safe for concurrent use;
// the frame loop and the HTTP surface share one lock.
type Core struct {
	mu sync.Mutex

	Eng   *render.Engine
	Reg   *render.Registry
	Seq   *sequence.Player
	Out   *led.Output
	Solar *scene.Solar

	layout layout.Layout
	table  *orbital.Table
	opts   orbital.Options
	tour   sequence.Program
	obs    Observers

	angles  map[string]orbital.Angles
	simT    float64
	preset  string
	failing bool
}

func applyPostDefaults(eng *render.Engine, hw HWConfig) {
	budget := hw.BudgetMA
	if budget <= 0 {
		budget = 3000
	}
	whiteCap := hw.WhiteCap
	if whiteCap <= 0 {
		whiteCap = 2.2
	}
	preview := 0.0
	if hw.Preview {
		preview = 1
	}
	for k, v := range map[string]float64{
		"Budget_mA":   budget,
		"LEDChan_mA":  20,
		"LimiterKnee": 0.9,
		"WhiteCap":    whiteCap,
		"ExposureEV":  0,
		"OutputGamma": 2.2,
		"PreviewMode": preview,
	} {
		eng.SetParam(k, v)
	}
}

// InitCore builds the scene for the body table, registers the renderers and wires the
// sequencer to the engine. Nothing renders until Frame or Run is called.
func InitCore(hw HWConfig, sim SimConfig, obs Observers) (*Core, error) {
	if err := hw.Layout.Validate(); err != nil {
		return nil, err
	}
	table := sim.Table
	if table == nil {
		table = orbital.DefaultTable()
	}
	solar, err := scene.Build(table, scene.BuildOptions{OrbitSamples: sim.OrbitSamples, Camera: sim.Camera})
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	reg := render.NewRegistry()
	reg.Register(orrery.New(OrreryRenderer))
	reg.Register(calib.New(CalibRenderer))
	reg.Register(solid.New(SolidRenderer))

	start := sim.StartRenderer
	if start == "" {
		start = OrreryRenderer
	}
	rr, ok := reg.Get(start)
	if !ok {
		return nil, fmt.Errorf("renderer not found: %s", start)
	}

	lut := led.BuildLUT(hw.Layout)
	out := led.NewOutput(hw.Drv, len(lut), hw.Brightness)
	dim := render.Dimensions{X: hw.Layout.Dim.X, Y: hw.Layout.Dim.Y, Z: hw.Layout.Dim.Z}
	u := &render.Uniforms{GlobalBrightness: 1, TimeScale: sim.TimeScale}
	eng, err := render.NewEngine(dim, lut, out, rr, u, &render.Resources{Scene: solar.Scene})
	if err != nil {
		return nil, err
	}
	if hw.Preview {
		eng.SetPost(post.Preview())
	} else {
		eng.SetPost(post.LED())
	}
	rr.ApplyPreset(sim.StartPreset, eng.UActive)
	applyPostDefaults(eng, hw)

	c := &Core{
		Eng:    eng,
		Reg:    reg,
		Out:    out,
		Solar:  solar,
		layout: hw.Layout,
		table:  table,
		opts:   orbital.Options{SunSpinEnabled: sim.SunSpin},
		tour:   sequence.DefaultTour(),
		obs:    obs,
		preset: sim.StartPreset,
	}
	if sim.Tour != nil {
		c.tour = *sim.Tour
	}

	hooks := sequence.Hooks{
		SetRenderer: func(name, preset string) {
			if err := eng.SetRenderer(name, preset, reg); err != nil {
				c.report(diagnostics.Diagnostic{Severity: diagnostics.Warn, Code: "SEQ.RENDERER", Summary: "Tour clip skipped", Detail: err.Error()})
				return
			}
			c.preset = preset
		},
		ArmNext: func(name, preset string) {
			if err := eng.ArmNext(name, preset, reg); err != nil {
				c.report(diagnostics.Diagnostic{Severity: diagnostics.Warn, Code: "SEQ.RENDERER", Summary: "Tour crossfade skipped", Detail: err.Error()})
			}
		},
		SetCrossfade: eng.SetCrossfade,
		SetParam:     eng.SetParam,
		SetBool:      eng.SetBool,
	}
	c.Seq = sequence.NewPlayer(hooks)
	if err := c.Seq.Load(c.tour); err != nil {
		return nil, fmt.Errorf("tour: %w", err)
	}
	return c, nil
}

func (c *Core) report(d diagnostics.Diagnostic) {
	if c.obs.Hub != nil {
		c.obs.Hub.Publish(d)
	}
}

// Frame poses the scene for simulation time t, renders one frame and writes it
// to the output. Negative t is a time before the epoch, not a request for the clock.
func (c *Core) Frame(t float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked(t)
}

func (c *Core) frameLocked(t float64) error {
	c.angles = orbital.ComputeBodyAngles(t, c.table, c.opts)
	c.simT = t
	c.Solar.Apply(c.angles)

	start := time.Now()
	err := c.Eng.RenderOnce(t)
	if m := c.obs.Metrics; m != nil {
		m.RecordFrame(c.Eng.Active(), t, time.Since(start), c.angles)
		if err != nil {
			m.DriverError()
		}
	}
	switch {
	case err != nil && !c.failing:
		c.failing = true
		c.report(diagnostics.Diagnostic{
			Severity: diagnostics.Err, Code: "DRIVER.WRITE", Summary: "LED output failing",
			Detail:         err.Error(),
			LikelyCauses:   []string{"SPI device unplugged", "frame size does not match the layout"},
			SuggestedFixes: []string{"check wiring and the spi.dev setting", "restart with driver: sim"},
		})
	case err == nil && c.failing:
		c.failing = false
		c.report(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "DRIVER.RECOVERED", Summary: "LED output recovered"})
	}
	return err
}

// Angles returns the angles of the last frame and its simulation time.
func (c *Core) Angles() (map[string]orbital.Angles, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]orbital.Angles, len(c.angles))
	for k, v := range c.angles {
		out[k] = v
	}
	return out, c.simT
}

// Table returns the body table the scene was built from.
func (c *Core) Table() *orbital.Table { return c.table }

// Layout returns the cube layout.
func (c *Core) Layout() layout.Layout { return c.layout }

// Snapshot draws the scene as posed by the last frame.
func (c *Core) Snapshot(opts snapshot.Options) *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot.Render(c.Solar.Scene, opts)
}

// LastFrame returns the last RGB frame written and its id.
func (c *Core) LastFrame() ([]byte, uint64) { return c.Out.Last() }

// Close releases the LED driver.
func (c *Core) Close() error { return c.Out.Close() }

// Status is a point-in-time summary for health checks.
type Status struct {
	Renderer   string  `json:"renderer"`
	Preset     string  `json:"preset"`
	SimTime    float64 `json:"simTime"`
	TimeScale  float64 `json:"timeScale"`
	Paused     bool    `json:"paused"`
	SunSpin    bool    `json:"sunSpin"`
	Frames     uint64  `json:"frames"`
	FrameMS    float64 `json:"frameMs"`
	Tour       string  `json:"tour"`
	Clip       string  `json:"clip,omitempty"`
	Brightness float64 `json:"brightness"`
	Count      int     `json:"count"`
}

func (c *Core) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		Renderer:   c.Eng.Active(),
		Preset:     c.preset,
		SimTime:    c.simT,
		TimeScale:  c.Eng.Clock.Scale(),
		Paused:     c.Eng.Clock.Paused(),
		SunSpin:    c.opts.SunSpinEnabled,
		Frames:     c.Eng.Frames(),
		FrameMS:    c.Eng.Last.TotalMS,
		Tour:       string(c.Seq.State),
		Brightness: c.Out.Brightness(),
		Count:      c.layout.Count(),
	}
	if c.Seq.State != sequence.Idle {
		st.Clip, _ = c.Seq.Position()
	}
	return st
}

// SetTimeScale changes simulated seconds per wall second.
func (c *Core) SetTimeScale(s float64) error {
	if s < 0 {
		return errors.New("time scale must not be negative")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Eng.SetTimeScale(s)
	return nil
}

// Pause freezes simulation time and the tour; frames keep rendering.
func (c *Core) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Eng.Pause()
	c.Seq.Pause()
}

// Resume undoes Pause.
func (c *Core) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Eng.Resume()
	c.Seq.Resume()
}

// SetSunSpin toggles the star's self-rotation.
func (c *Core) SetSunSpin(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.SunSpinEnabled = on
}

// SetBrightness sets the output brightness, clamped to 0..1.
func (c *Core) SetBrightness(b float64) { c.Out.SetBrightness(b) }

// SetCamera moves the snapshot camera.
func (c *Core) SetCamera(position, target mgl64.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Solar.Scene.Camera.Position = position
	c.Solar.Scene.Camera.Target = target
}

// SetRenderer switches renderer immediately and stops the tour.
func (c *Core) SetRenderer(name, preset string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Seq.Stop()
	if err := c.Eng.SetRenderer(name, preset, c.Reg); err != nil {
		return err
	}
	c.preset = preset
	return nil
}

// RunTest shows a calibration pattern until another renderer is chosen.
func (c *Core) RunTest(name string) error {
	known := false
	for _, p := range calib.New("").Presets() {
		known = known || p == name
	}
	if !known {
		c.report(diagnostics.Diagnostic{
			Severity: diagnostics.Warn, Code: "TEST.UNKNOWN", Summary: "Unknown test name",
			Evidence: map[string]any{"name": name},
		})
		return fmt.Errorf("unknown test: %s", name)
	}
	if err := c.SetRenderer(CalibRenderer, name); err != nil {
		return err
	}
	c.report(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: name})
	return nil
}

// Blackout switches the cube dark, or back to the orrery's system view.
func (c *Core) Blackout(on bool) error {
	if on {
		return c.SetRenderer(SolidRenderer, "Black")
	}
	return c.SetRenderer(OrreryRenderer, "System")
}
