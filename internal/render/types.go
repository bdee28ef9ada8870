package render

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/arcaluminis-orrery/internal/scene"
)

// Vec3 is a voxel position in normalized cube space [0,1]^3.
type Vec3 = mgl64.Vec3

type Color struct{ R, G, B float32 }

type Dimensions struct{ X, Y, Z int }

// Count is the number of voxels.
func (d Dimensions) Count() int { return d.X * d.Y * d.Z }

type Uniforms struct {
	GlobalBrightness float64
	TimeScale        float64
	Params           map[string]float64
	Bools            map[string]bool
}

// Clone deep-copies the maps.
func (u *Uniforms) Clone() *Uniforms {
	if u == nil {
		return &Uniforms{Params: map[string]float64{}, Bools: map[string]bool{}}
	}
	c := &Uniforms{
		GlobalBrightness: u.GlobalBrightness,
		TimeScale:        u.TimeScale,
		Params:           make(map[string]float64, len(u.Params)),
		Bools:            make(map[string]bool, len(u.Bools)),
	}
	for k, v := range u.Params {
		c.Params[k] = v
	}
	for k, v := range u.Bools {
		c.Bools[k] = v
	}
	return c
}

// Param returns Params[key] or def.
func (u *Uniforms) Param(key string, def float64) float64 {
	if u == nil || u.Params == nil {
		return def
	}
	if v, ok := u.Params[key]; ok {
		return v
	}
	return def
}

// Ensure sets any key of kv that is not already present.
func (u *Uniforms) Ensure(kv map[string]float64) {
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	for k, v := range kv {
		if _, ok := u.Params[k]; !ok {
			u.Params[k] = v
		}
	}
}

// Resources are shared, read-only inputs for renderers. Scene is posed by the caller
// before each RenderOnce.
type Resources struct {
	Scene *scene.Scene
}

type Renderer interface {
	Name() string
	Presets() []string
	ApplyPreset(name string, u *Uniforms)
	Render(dst []Color, pLUT []Vec3, dim Dimensions, t float64, u *Uniforms, r *Resources)
}

type Registry struct{ m map[string]Renderer }

func NewRegistry() *Registry { return &Registry{m: map[string]Renderer{}} }

func (r *Registry) Register(rr Renderer) {
	if rr == nil {
		return
	}
	r.m[rr.Name()] = rr
}

func (r *Registry) Get(name string) (Renderer, bool) { rr, ok := r.m[name]; return rr, ok }

// List returns registered names, sorted.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
