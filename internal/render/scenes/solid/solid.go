package solid

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/arcaluminis-orrery/internal/render"
)

// Renderer fills the cube with one color: blackout, full white for checking the
// current limiter, and primaries. Params "R", "G", "B" override the preset color and
// "PulseHz" breathes the brightness.
type Renderer struct {
	name string
}

func New(name string) *Renderer { return &Renderer{name: name} }

func (s *Renderer) Name() string { return s.name }

func (s *Renderer) Presets() []string {
	return []string{"Black", "White", "Red", "Green", "Blue", "Sunlight"}
}

var presets = map[string]colorful.Color{
	"Black":    {},
	"White":    {R: 1, G: 1, B: 1},
	"Red":      {R: 1},
	"Green":    {G: 1},
	"Blue":     {B: 1},
	"Sunlight": mustHex("#ffcc55"),
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (s *Renderer) ApplyPreset(name string, u *render.Uniforms) {
	if u == nil {
		return
	}
	if u.Params == nil {
		u.Params = map[string]float64{}
	}
	c, ok := presets[name]
	if !ok {
		c = presets["Black"]
	}
	u.Params["R"], u.Params["G"], u.Params["B"] = c.R, c.G, c.B
	u.Params["PulseHz"] = 0
}

func (s *Renderer) Render(dst []render.Color, _ []render.Vec3, _ render.Dimensions, t float64, u *render.Uniforms, _ *render.Resources) {
	scale := 1.0
	if hz := u.Param("PulseHz", 0); hz > 0 {
		scale = 0.5 + 0.5*math.Sin(2*math.Pi*hz*t)
	}
	c := colorful.Color{R: u.Param("R", 0), G: u.Param("G", 0), B: u.Param("B", 0)}.Clamped()
	out := render.Color{R: float32(c.R * scale), G: float32(c.G * scale), B: float32(c.B * scale)}
	for i := range dst {
		dst[i] = out
	}
}
