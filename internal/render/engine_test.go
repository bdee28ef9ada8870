package render

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer writes a constant color and records the time it was asked for.
type fakeRenderer struct {
	name    string
	r, g, b float32
	lastT   float64
}

func (f *fakeRenderer) Name() string                         { return f.name }
func (f *fakeRenderer) Presets() []string                    { return []string{"default"} }
func (f *fakeRenderer) ApplyPreset(name string, u *Uniforms) { u.Ensure(map[string]float64{"Preset" + f.name: 1}) }
func (f *fakeRenderer) Render(dst []Color, pLUT []Vec3, dim Dimensions, t float64, u *Uniforms, r *Resources) {
	f.lastT = t
	for i := range dst {
		dst[i] = Color{f.r, f.g, f.b}
	}
}

// fakeDriver captures the last frame written.
type fakeDriver struct {
	last []Color
	err  error
}

func (d *fakeDriver) Write(buf []Color) error {
	d.last = make([]Color, len(buf))
	copy(d.last, buf)
	return d.err
}

func newTestEngine(t *testing.T, drv Driver, rs ...Renderer) (*Engine, *Registry) {
	t.Helper()
	reg := NewRegistry()
	for _, r := range rs {
		reg.Register(r)
	}
	u := &Uniforms{GlobalBrightness: 1.0, TimeScale: 1.0, Params: map[string]float64{}, Bools: map[string]bool{}}
	e, err := NewEngine(Dimensions{X: 1, Y: 1, Z: 1}, []Vec3{{0.5, 0.5, 0.5}}, drv, rs[0], u, &Resources{})
	require.NoError(t, err)
	// Disable tone mapping for deterministic tests.
	e.SetPost(PostPipeline{})
	return e, reg
}

func TestMixAlpha(t *testing.T) {
	n := 10
	a := make([]Color, n)
	b := make([]Color, n)
	dst := make([]Color, n)
	for i := 0; i < n; i++ {
		a[i] = Color{1, 0, 0} // red
		b[i] = Color{0, 0, 1} // blue
	}
	Mix(dst, a, b, 0.5)
	assert.InDelta(t, 0.5, dst[0].R, 0.01)
	assert.InDelta(t, 0.5, dst[0].B, 0.01)

	Mix(dst, a, b, 1.5)
	assert.Equal(t, Color{0, 0, 1}, dst[9])

	short := make([]Color, 4)
	Mix(dst, short, b, 0.25)
	assert.Equal(t, Color{0, 0, 0.25}, dst[3])
	assert.Equal(t, Color{0, 0, 1}, dst[4], "LEDs past the shorter frame are left alone")
}

func TestEngineRenderOnceAndCrossfade(t *testing.T) {
	drv := &fakeDriver{}
	ra := &fakeRenderer{name: "A", r: 1, g: 0, b: 0}
	rb := &fakeRenderer{name: "B", r: 0, g: 0, b: 1}
	e, reg := newTestEngine(t, drv, ra, rb)

	require.NoError(t, e.RenderNow())
	assert.Equal(t, Color{1, 0, 0}, drv.last[0])

	require.NoError(t, e.ArmNext("B", "default", reg))
	assert.Equal(t, 1.0, e.UNext.Params["PresetB"])
	_, leaked := e.UActive.Params["PresetB"]
	assert.False(t, leaked, "armed preset must not touch active uniforms")

	e.SetCrossfade(0.5)
	require.NoError(t, e.RenderNow())
	assert.InDelta(t, 0.5, drv.last[0].R, 0.01)
	assert.InDelta(t, 0.5, drv.last[0].B, 0.01)

	e.SetCrossfade(1.0)
	require.NoError(t, e.RenderNow())
	assert.Equal(t, Color{0, 0, 1}, drv.last[0])
	assert.Equal(t, "B", e.Active())
	assert.Equal(t, uint64(3), e.Frames())
}

func TestEngineRejects(t *testing.T) {
	_, err := NewEngine(Dimensions{}, nil, nil, nil, nil, nil)
	assert.Error(t, err)

	_, err = NewEngine(Dimensions{X: 2, Y: 1, Z: 1}, []Vec3{{}}, nil, nil, nil, nil)
	assert.Error(t, err)

	e, reg := newTestEngine(t, nil, &fakeRenderer{name: "A"})
	assert.Error(t, e.SetRenderer("missing", "", reg))
	assert.Error(t, e.ArmNext("missing", "", reg))
	assert.Error(t, e.SetRenderer("A", "", nil))
}

func TestEngineWrapsDriverError(t *testing.T) {
	boom := errors.New("boom")
	e, _ := newTestEngine(t, &fakeDriver{err: boom}, &fakeRenderer{name: "A"})
	err := e.RenderOnce(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestEngineExplicitTime(t *testing.T) {
	ra := &fakeRenderer{name: "A"}
	e, _ := newTestEngine(t, nil, ra)
	require.NoError(t, e.RenderOnce(12.5))
	assert.Equal(t, 12.5, ra.lastT)
	require.NoError(t, e.RenderOnce(-3))
	assert.Equal(t, -3.0, ra.lastT, "negative time is not replaced by the clock")

	e.Pause()
	require.NoError(t, e.RenderNow())
	assert.Equal(t, e.Now(), ra.lastT)
}

func TestEngineTimeScaleParam(t *testing.T) {
	e, _ := newTestEngine(t, nil, &fakeRenderer{name: "A"})
	e.SetParam("TimeScale", 4)
	assert.Equal(t, 4.0, e.Clock.Scale())
	assert.Equal(t, 4.0, e.UActive.TimeScale)
	_, inParams := e.UActive.Params["TimeScale"]
	assert.False(t, inParams)
}

func TestClock(t *testing.T) {
	wall := time.Unix(0, 0)
	c := newClock(func() time.Time { return wall })

	wall = wall.Add(2 * time.Second)
	assert.InDelta(t, 2, c.Seconds(), 1e-9)

	c.SetScale(10)
	wall = wall.Add(time.Second)
	assert.InDelta(t, 12, c.Seconds(), 1e-9)

	c.Pause()
	wall = wall.Add(time.Hour)
	assert.InDelta(t, 12, c.Seconds(), 1e-9)
	assert.True(t, c.Paused())

	c.Resume()
	c.SetScale(-1)
	wall = wall.Add(4 * time.Second)
	assert.InDelta(t, 8, c.Seconds(), 1e-9)

	c.Set(100)
	assert.InDelta(t, 100, c.Seconds(), 1e-9)
}

func TestRegistryListIsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeRenderer{name: "orrery"})
	reg.Register(&fakeRenderer{name: "calib"})
	reg.Register(nil)
	assert.Equal(t, []string{"calib", "orrery"}, reg.List())
}
