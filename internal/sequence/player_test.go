package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{Keys: []Keyframe{
		{T: 0, V: 0, Ease: "linear"},
		{T: 10, V: 10, Ease: "linear"},
	}}
	if v := env.Eval(-1); v != 0 {
		t.Fatalf("expected 0 before start, got %v", v)
	}
	if v := env.Eval(0); v != 0 {
		t.Fatalf("expected 0 at t=0, got %v", v)
	}
	if v := env.Eval(5); v != 5 {
		t.Fatalf("expected 5 at t=5, got %v", v)
	}
	if v := env.Eval(10); v != 10 {
		t.Fatalf("expected 10 at t=10, got %v", v)
	}
	if v := env.Eval(11); v != 10 {
		t.Fatalf("expected 10 after end, got %v", v)
	}
	if v := Const(3).Eval(99); v != 3 {
		t.Fatalf("expected const 3, got %v", v)
	}
}

func TestEasing(t *testing.T) {
	smooth := Envelope{Keys: []Keyframe{{T: 0, V: 0, Ease: "smooth"}, {T: 1, V: 1}}}
	cubic := Envelope{Keys: []Keyframe{{T: 0, V: 0, Ease: "cubic"}, {T: 1, V: 1}}}
	assert.InDelta(t, 0.5, smooth.Eval(0.5), 1e-12)
	assert.Less(t, smooth.Eval(0.25), 0.25)
	assert.Less(t, cubic.Eval(0.25), smooth.Eval(0.25))
	assert.True(t, smooth.BoolEval(0.9))
	assert.False(t, smooth.BoolEval(0.1))

	odd := Ramp(0, 1, 1, "bounce")
	assert.InDelta(t, 0.25, odd.Eval(0.25), 1e-12, "unknown ease is linear")
}

func TestEnvelopeSegments(t *testing.T) {
	env := Envelope{Keys: []Keyframe{{T: 0, V: 0}, {T: 2, V: 4}, {T: 2, V: 8}, {T: 4, V: 0}}}
	assert.InDelta(t, 2.0, env.Eval(1), 1e-12)
	assert.InDelta(t, 4.0, env.Eval(3), 1e-12, "step at t=2 continues from the later key")
	assert.Equal(t, 0.0, Envelope{}.Eval(1))

	r := Ramp(80, 60, 20, "smooth")
	assert.Equal(t, 80.0, r.Eval(0))
	assert.InDelta(t, 70.0, r.Eval(10), 1e-12)
	assert.Equal(t, 60.0, r.Eval(25))
}

type recorder struct {
	log    []string
	params map[string]float64
	alphas []float64
}

func (r *recorder) hooks() Hooks {
	r.params = map[string]float64{}
	return Hooks{
		SetRenderer:  func(name, preset string) { r.log = append(r.log, "Set:"+name+"/"+preset) },
		ArmNext:      func(name, preset string) { r.log = append(r.log, "Arm:"+name+"/"+preset) },
		SetCrossfade: func(a float64) { r.alphas = append(r.alphas, a) },
		SetParam:     func(name string, v float64) { r.params[name] = v },
		SetBool:      func(name string, b bool) {},
	}
}

func TestSequencerCrossfade(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	prog := Program{
		Version: "seq.v1",
		Clips: []Clip{
			{Name: "A", Renderer: "orrery", Preset: "System", DurationS: 4, XFadeS: 2},
			{Name: "B", Renderer: "orrery", Preset: "Sun", DurationS: 4},
		},
	}
	require.NoError(t, p.Load(prog))
	p.Start()
	p.Tick(1.5)  // before the fade window
	p.Tick(0.75) // t=2.25 arms B
	p.Tick(0.75) // t=3.0
	p.Tick(1.0)  // t=4.0 switches to B

	assert.Equal(t, []string{"Set:orrery/System", "Arm:orrery/Sun", "Set:orrery/Sun"}, rec.log)
	assert.Contains(t, rec.alphas, 0.5)
	clip, _ := p.Position()
	assert.Equal(t, "B", clip)

	p.Tick(4)
	assert.Equal(t, Idle, p.State, "non-looping program stops at the end")
}

func TestLoopRestartsProgramTime(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	require.NoError(t, p.Load(Program{Loop: true, Clips: []Clip{
		{Name: "A", Renderer: "x", DurationS: 1},
		{Name: "B", Renderer: "y", DurationS: 1},
	}}))
	p.Start()
	for i := 0; i < 10; i++ {
		p.Tick(0.5)
	}
	clip, now := p.Position()
	assert.Equal(t, "B", clip)
	assert.InDelta(t, 1.0, now, 1e-9)
	assert.Equal(t, Running, p.State)
	assert.Equal(t, []string{"Set:x/", "Set:y/", "Set:x/", "Set:y/", "Set:x/", "Set:y/"}, rec.log)
}

func TestPauseResumeSeek(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec.hooks())
	require.NoError(t, p.Load(DefaultTour()))
	p.Pause()
	assert.Equal(t, Idle, p.State, "pause before start is a no-op")

	p.Start()
	p.Pause()
	p.Tick(100)
	_, now := p.Position()
	assert.Zero(t, now)

	p.Resume()
	p.Seek(35)
	clip, _ := p.Position()
	assert.Equal(t, "inner", clip)
	p.Tick(0.1)
	assert.Equal(t, 0.5, rec.params["TimeScale"])
	assert.Greater(t, rec.params["ViewExtent"], 60.0)

	p.Stop()
	assert.Equal(t, Idle, p.State)
}

func TestLoadRejectsBadPrograms(t *testing.T) {
	p := NewPlayer(Hooks{})
	assert.Error(t, p.Load(Program{}))
	assert.Error(t, p.Load(Program{Clips: []Clip{{Name: "a", Renderer: "x"}}}))
	assert.Error(t, p.Load(Program{Clips: []Clip{{Name: "a", Renderer: "x", DurationS: 1, XFadeS: 2}}}))
	assert.Error(t, p.Load(Program{Clips: []Clip{{Name: "a", DurationS: 1}}}))
	assert.NoError(t, p.Load(DefaultTour()))
}
