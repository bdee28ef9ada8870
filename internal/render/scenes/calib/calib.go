package calib

import (
	"math"

	"github.com/coreman2200/arcaluminis-orrery/internal/render"
)

// Bring-up patterns, run before the orrery to verify wiring and color order.
const (
	IndexSweep     = "IndexSweep"     // one white LED walks the chain in wire order
	RGB            = "RGB"            // whole cube cycles red, green, blue
	PlaneZ         = "PlaneZ"         // one cyan Z plane at a time, by LUT position
	PanelChanSweep = "PanelChanSweep" // static R/G/B panels with a brightness ramp
)

// Renderer is stateless: the step shown is derived from t and StepHz, so seeking
// the sequencer or pausing the clock reproduces the same frame.
type Renderer struct {
	name   string
	preset string
}

func New(name string) *Renderer {
	return &Renderer{name: name, preset: IndexSweep}
}

func (r *Renderer) Name() string { return r.name }
func (r *Renderer) Presets() []string {
	return []string{IndexSweep, RGB, PlaneZ, PanelChanSweep}
}

func (r *Renderer) ApplyPreset(p string, u *render.Uniforms) {
	r.preset = p
	if u == nil {
		return
	}
	u.Ensure(map[string]float64{
		"StepHz":        4,
		"PanelAxis":     2, // 0=X, 1=Y, 2=Z
		"LRGamma":       1.4,
		"TopWhitePow":   2.0,
		"TopWhiteMix":   0.6,
		"BaseIntensity": 0.5,
		"Gamma":         1.7,
	})
}

// Step is the pattern step shown at time t.
func Step(t float64, u *render.Uniforms) int {
	hz := u.Param("StepHz", 4)
	if hz <= 0 || t <= 0 {
		return 0
	}
	return int(math.Floor(t * hz))
}

func (r *Renderer) Render(dst []render.Color, pLUT []render.Vec3, dim render.Dimensions, t float64, u *render.Uniforms, _ *render.Resources) {
	for i := range dst {
		dst[i] = render.Color{}
	}
	n := len(dst)
	if n == 0 {
		return
	}
	step := Step(t, u)

	switch r.preset {
	case IndexSweep:
		dst[step%n] = render.Color{R: 1, G: 1, B: 1}
	case RGB:
		c := [3]render.Color{{R: 1}, {G: 1}, {B: 1}}[step%3]
		for i := range dst {
			dst[i] = c
		}
	case PlaneZ:
		if dim.Z <= 0 || len(pLUT) < n {
			return
		}
		plane := step % dim.Z
		for i := range dst {
			if planeOf(pLUT[i].Z(), dim.Z) == plane {
				dst[i] = render.Color{G: 1, B: 1}
			}
		}
	case PanelChanSweep:
		panelSweep(dst, dim, u)
	}
}

func planeOf(z float64, planes int) int {
	if planes <= 1 {
		return 0
	}
	return int(math.Round(z * float64(planes-1)))
}

// panelSweep colors each panel R, G or B, darkening left to right and pulling toward
// white bottom to top; the top row is pure white. Raster order, x fastest.
func panelSweep(dst []render.Color, dim render.Dimensions, u *render.Uniforms) {
	X, Y, Z := dim.X, dim.Y, dim.Z
	if len(dst) < X*Y*Z {
		return
	}
	axis := int(u.Param("PanelAxis", 2))
	lrPow := u.Param("LRGamma", 1.4)
	topPow := u.Param("TopWhitePow", 2.0)
	topMix := clamp01(u.Param("TopWhiteMix", 0.6))
	base := clamp01(u.Param("BaseIntensity", 0.5))
	ig := 1.0 / math.Max(1e-6, u.Param("Gamma", 1.7))

	norm := func(i, n int) float64 {
		if n <= 1 {
			return 0
		}
		return float64(i) / float64(n-1)
	}

	i := 0
	for z := 0; z < Z; z++ {
		for y := 0; y < Y; y++ {
			for x := 0; x < X; x++ {
				panel := z
				switch axis {
				case 0:
					panel = x
				case 1:
					panel = y
				}
				var ch [3]float64
				ch[panel%3] = 1

				lr := 1.0 - math.Pow(norm(x, X), lrPow)
				bt := math.Pow(norm(y, Y), topPow) * topMix
				if y == Y-1 {
					bt = 1
				}
				for k := range ch {
					v := ch[k] * lr
					v += (1 - v) * bt
					ch[k] = math.Pow(clamp01(v*base), ig)
				}
				if y == Y-1 {
					ch = [3]float64{1, 1, 1}
				}
				dst[i] = render.Color{R: float32(ch[0]), G: float32(ch[1]), B: float32(ch[2])}
				i++
			}
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
