package render

import (
	"errors"
	"fmt"
	"time"
)

// Driver receives the post-processed frame (LED transport or preview buffer).
type Driver interface {
	Write([]Color) error
}

// Engine renders frames using an active Renderer, optional next Renderer for crossfades,
// applies post-processing, then writes to the driver.
type Engine struct {
	Dim  Dimensions
	LUT  []Vec3
	Drv  Driver
	Rsrc *Resources

	// active + next renderer and uniforms
	RActive Renderer
	RNext   Renderer
	UActive *Uniforms
	UNext   *Uniforms

	// framebuffers
	BufA []Color // active
	BufB []Color // next (during crossfade)
	Out  []Color // mixed + post

	// crossfade
	alpha  float64 // 0..1
	fading bool

	// simulation time
	Clock *Clock

	// post
	post PostPipeline

	frames uint64

	// metrics (last durations in ms)
	Last struct {
		RenderMS float64
		PostMS   float64
		TotalMS  float64
	}
}

// PostPipeline groups post stages; all are optional. Stages receive the active uniforms.
type PostPipeline struct {
	ToneMap func([]Color, *Uniforms)
	Limiter func([]Color, *Uniforms)
}

// NewEngine allocates buffers and returns an Engine with defaults wired.
func NewEngine(dim Dimensions, lut []Vec3, drv Driver, r Renderer, u *Uniforms, rsrc *Resources) (*Engine, error) {
	if dim.X*dim.Y*dim.Z == 0 {
		return nil, errors.New("invalid dimensions")
	}
	n := dim.Count()
	if len(lut) != n {
		return nil, fmt.Errorf("lut has %d points, want %d", len(lut), n)
	}
	if u == nil {
		u = &Uniforms{}
	}
	e := &Engine{
		Dim:     dim,
		LUT:     lut,
		Drv:     drv,
		Rsrc:    rsrc,
		RActive: r,
		UActive: u,
		BufA:    make([]Color, n),
		BufB:    make([]Color, n),
		Out:     make([]Color, n),
		alpha:   0,
		fading:  false,
		post: PostPipeline{
			ToneMap: DefaultToneMap,
			Limiter: DefaultLimiter,
		},
		Clock: NewClock(),
	}
	if u.TimeScale != 0 {
		e.Clock.SetScale(u.TimeScale)
	}
	return e, nil
}

// Now returns simulation seconds since engine start. Pause freezes it and
// TimeScale changes only its rate from here on.
func (e *Engine) Now() float64 { return e.Clock.Seconds() }

// Pause freezes simulation time; frames keep rendering.
func (e *Engine) Pause() { e.Clock.Pause() }

// Resume continues simulation time from where Pause left it.
func (e *Engine) Resume() { e.Clock.Resume() }

// SetTimeScale changes the simulated seconds per wall second.
func (e *Engine) SetTimeScale(s float64) {
	e.Clock.SetScale(s)
	if e.UActive != nil {
		e.UActive.TimeScale = s
	}
}

// RenderNow renders a frame at the engine clock.
func (e *Engine) RenderNow() error { return e.RenderOnce(e.Now()) }

// RenderOnce renders a single frame at simulation time t (seconds). Any t is
// honored, negative included.
func (e *Engine) RenderOnce(t float64) error {
	start := time.Now()

	// Render active
	if e.RActive != nil {
		e.RActive.Render(e.BufA, e.LUT, e.Dim, t, e.UActive, e.Rsrc)
	}

	// Render next if fading
	if e.fading && e.RNext != nil {
		e.RNext.Render(e.BufB, e.LUT, e.Dim, t, e.UNext, e.Rsrc)
		// Mix A/B by alpha into Out
		Mix(e.Out, e.BufA, e.BufB, e.alpha)
	} else {
		copy(e.Out, e.BufA)
	}

	// Post
	postStart := time.Now()
	if e.post.ToneMap != nil {
		e.post.ToneMap(e.Out, e.UActive)
	}
	if e.post.Limiter != nil {
		e.post.Limiter(e.Out, e.UActive)
	}
	e.Last.PostMS = float64(time.Since(postStart).Microseconds()) / 1000.0

	// Write
	if e.Drv != nil {
		if err := e.Drv.Write(e.Out); err != nil {
			return fmt.Errorf("driver write: %w", err)
		}
	}

	e.frames++
	e.Last.RenderMS = float64(time.Since(start).Microseconds()) / 1000.0
	e.Last.TotalMS = e.Last.RenderMS

	return nil
}

// Frames counts completed RenderOnce calls.
func (e *Engine) Frames() uint64 { return e.frames }

// Active returns the name of the active renderer.
func (e *Engine) Active() string {
	if e.RActive == nil {
		return ""
	}
	return e.RActive.Name()
}

// SetPost replaces the post stages.
func (e *Engine) SetPost(p PostPipeline) { e.post = p }

// ---- Hooks that match Sequencer expectations ----

// SetRenderer becomes the active renderer immediately.
// If preset != "", ApplyPreset is called on the renderer with UActive.
func (e *Engine) SetRenderer(name string, preset string, reg *Registry) error {
	if reg == nil {
		return errors.New("registry is nil")
	}
	rr, ok := reg.Get(name)
	if !ok {
		return fmt.Errorf("renderer not found: %s", name)
	}
	e.RActive = rr
	if preset != "" {
		rr.ApplyPreset(preset, e.UActive)
	}
	// reset fade
	e.fading = false
	e.alpha = 0
	return nil
}

// ArmNext prepares the next renderer for crossfade.
func (e *Engine) ArmNext(name string, preset string, reg *Registry) error {
	if reg == nil {
		return errors.New("registry is nil")
	}
	rr, ok := reg.Get(name)
	if !ok {
		return fmt.Errorf("renderer not found: %s", name)
	}
	e.RNext = rr
	// next clip starts from the active clip's knobs
	e.UNext = e.UActive.Clone()
	if preset != "" {
		rr.ApplyPreset(preset, e.UNext)
	}
	e.fading = true
	return nil
}

// SetCrossfade sets mix alpha 0..1 and enables/disables fading.
func (e *Engine) SetCrossfade(alpha float64) {
	if alpha <= 0 {
		e.alpha = 0
		e.fading = false
	} else if alpha >= 1 {
		e.alpha = 1
		e.fading = false
		// promote next -> active
		if e.RNext != nil {
			e.RActive = e.RNext
			e.UActive = e.UNext
		}
		e.RNext = nil
		// leave UNEXT as last copy; caller may reuse
	} else {
		e.alpha = alpha
		e.fading = true
	}
}

// SetParam updates active uniforms. "TimeScale" is routed to the clock.
func (e *Engine) SetParam(name string, v float64) {
	if name == "TimeScale" {
		e.SetTimeScale(v)
		return
	}
	if e.UActive == nil {
		return
	}
	if e.UActive.Params == nil {
		e.UActive.Params = map[string]float64{}
	}
	e.UActive.Params[name] = v
}

// SetBool updates active uniforms.
func (e *Engine) SetBool(name string, b bool) {
	if e.UActive == nil {
		return
	}
	if e.UActive.Bools == nil {
		e.UActive.Bools = map[string]bool{}
	}
	e.UActive.Bools[name] = b
}
