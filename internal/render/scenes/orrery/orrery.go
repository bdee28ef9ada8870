package orrery

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/arcaluminis-orrery/internal/render"
	"github.com/coreman2200/arcaluminis-orrery/internal/scene"
)

// Renderer voxelizes the posed solar scene from Resources.Scene. The cube is a window
// onto a world-space box centred on ViewCenter, ViewExtent units across its longest axis.
type Renderer struct {
	name string
}

func New(name string) *Renderer { return &Renderer{name: name} }

func (r *Renderer) Name() string { return r.name }

func (r *Renderer) Presets() []string { return []string{"System", "Inner", "Sun"} }

var presets = map[string]map[string]float64{
	"System": {"ViewExtent": 140},
	"Inner":  {"ViewExtent": 80},
	"Sun":    {"ViewExtent": 30},
}

// Defaults are the knobs every preset starts from.
func Defaults() map[string]float64 {
	return map[string]float64{
		"ViewCenterX":     0,
		"ViewCenterY":     0,
		"ViewCenterZ":     0,
		"ViewExtent":      140,
		"OrbitWidth":      1,   // in voxels
		"OrbitBrightness": 0.6, // 0..1
		"MinBodyVoxels":   0.6, // smallest splat radius, in voxels
		"SkyBrightness":   1,
	}
}

func (r *Renderer) ApplyPreset(name string, u *render.Uniforms) {
	if u == nil {
		return
	}
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	for k, v := range Defaults() {
		u.Params[k] = v
	}
	for k, v := range presets[name] {
		u.Params[k] = v
	}
}

type view struct {
	center mgl64.Vec3
	span   mgl64.Vec3 // world units per axis across the cube
	voxel  float64    // world units between neighbouring voxels
}

func newView(dim render.Dimensions, u *render.Uniforms) view {
	extent := u.Param("ViewExtent", 140)
	longest := maxInt(dim.X, maxInt(dim.Y, dim.Z)) - 1
	if longest < 1 {
		longest = 1
	}
	voxel := extent / float64(longest)
	return view{
		center: mgl64.Vec3{u.Param("ViewCenterX", 0), u.Param("ViewCenterY", 0), u.Param("ViewCenterZ", 0)},
		span: mgl64.Vec3{
			voxel * float64(maxInt(dim.X-1, 0)),
			voxel * float64(maxInt(dim.Y-1, 0)),
			voxel * float64(maxInt(dim.Z-1, 0)),
		},
		voxel: voxel,
	}
}

// world maps a normalized LUT point to scene space.
func (v view) world(p render.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		v.center.X() + (p.X()-0.5)*v.span.X(),
		v.center.Y() + (p.Y()-0.5)*v.span.Y(),
		v.center.Z() + (p.Z()-0.5)*v.span.Z(),
	}
}

func (r *Renderer) Render(dst []render.Color, pLUT []render.Vec3, dim render.Dimensions, _ float64, u *render.Uniforms, res *render.Resources) {
	if res == nil || res.Scene == nil {
		for i := range dst {
			dst[i] = render.Color{}
		}
		return
	}
	sc := res.Scene
	v := newView(dim, u)
	half := 0.5 * v.voxel
	minR := u.Param("MinBodyVoxels", 0.6) * v.voxel
	orbitW := math.Max(u.Param("OrbitWidth", 1)*half, 1e-9)
	orbitK := u.Param("OrbitBrightness", 0.6)
	skyK := u.Param("SkyBrightness", 1)
	gain := 1.0
	if u != nil && u.GlobalBrightness > 0 {
		gain = u.GlobalBrightness
	}

	solids := sc.Solids()
	lines := sc.Lines()
	grid := newSegGrid(v.voxel)
	for li, l := range lines {
		for i := 0; i+1 < len(l.Points); i++ {
			grid.insert(segment{a: l.Points[i], b: l.Points[i+1], line: li}, orbitW)
		}
	}

	for i := range dst {
		if i >= len(pLUT) {
			dst[i] = render.Color{}
			continue
		}
		p := v.world(pLUT[i])
		c, ok := shadeSolids(sc, solids, p, minR, half)
		if !ok {
			c, ok = shadeOrbits(grid, lines, p, orbitW, orbitK)
		}
		if !ok && sc.Background != nil && skyK > 0 {
			c = scaled(sc.Background.Sample(p.Sub(v.center)), skyK)
		}
		dst[i] = toColor(c, gain)
	}
}

// shadeSolids returns the lit color of the nearest body surface covering p.
// Coverage fades over half a voxel past the surface.
func shadeSolids(sc *scene.Scene, solids []scene.Solid, p mgl64.Vec3, minR, soft float64) (colorful.Color, bool) {
	best := -1.0
	var out colorful.Color
	for _, s := range solids {
		rad := math.Max(s.Radius, minR)
		d := p.Sub(s.Center).Len()
		if d >= rad+soft {
			continue
		}
		k := 1.0
		if d > rad {
			k = 1 - (d-rad)/soft
		}
		if k <= best {
			continue
		}
		best = k
		out = scaled(sc.Shade(p, p.Sub(s.Center), s.Material), k)
	}
	return out, best > 0
}

func shadeOrbits(g *segGrid, lines []scene.Polyline, p mgl64.Vec3, width, k float64) (colorful.Color, bool) {
	best := width
	hit := -1
	for _, si := range g.near(p) {
		s := g.segs[si]
		if d := distToSegment(p, s.a, s.b); d < best {
			best, hit = d, s.line
		}
	}
	if hit < 0 {
		return colorful.Color{}, false
	}
	return scaled(lines[hit].Color, k*(1-best/width)), true
}

func scaled(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}
}

func toColor(c colorful.Color, gain float64) render.Color {
	return render.Color{R: float32(c.R * gain), G: float32(c.G * gain), B: float32(c.B * gain)}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
