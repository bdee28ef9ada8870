package orbital

import (
	"errors"
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// CelestialBody is one row of the body table. Rates are relative to Earth (1.0).
type CelestialBody struct {
	Name                string  `yaml:"name" json:"name"`
	OrbitRadius         float64 `yaml:"orbit_radius" json:"orbitRadius"`
	Scale               float64 `yaml:"scale" json:"scale"`
	InclinationDeg      float64 `yaml:"inclination_deg" json:"inclinationDeg"`
	OrbitalPeriodFactor float64 `yaml:"orbital_period_factor" json:"orbitalPeriodFactor"`
	SpinPeriodFactor    float64 `yaml:"spin_period_factor" json:"spinPeriodFactor"` // < 0 is retrograde
	OrbitColor          string  `yaml:"orbit_color,omitempty" json:"orbitColor,omitempty"`
	SurfaceColor        string  `yaml:"surface_color,omitempty" json:"surfaceColor,omitempty"`
	Star                bool    `yaml:"star,omitempty" json:"star,omitempty"`
}

// OrbitRGB returns the parsed orbit color (white when unset).
func (b CelestialBody) OrbitRGB() colorful.Color {
	return parseOr(b.OrbitColor, colorful.Color{R: 1, G: 1, B: 1})
}

// SurfaceRGB returns the parsed surface color, falling back to the orbit color.
func (b CelestialBody) SurfaceRGB() colorful.Color {
	return parseOr(b.SurfaceColor, b.OrbitRGB())
}

func parseOr(hex string, def colorful.Color) colorful.Color {
	if hex == "" {
		return def
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return def
	}
	return c
}

// Table is the immutable set of bodies, checked once at construction.
type Table struct {
	bodies []CelestialBody
	index  map[string]int
}

// NewTable validates and copies bodies. All problems are reported together.
func NewTable(bodies []CelestialBody) (*Table, error) {
	if len(bodies) == 0 {
		return nil, errors.New("body table is empty")
	}
	var errs []error
	idx := make(map[string]int, len(bodies))
	for i, b := range bodies {
		if err := validate(b); err != nil {
			errs = append(errs, fmt.Errorf("body %d (%q): %w", i, b.Name, err))
		}
		if _, dup := idx[b.Name]; dup && b.Name != "" {
			errs = append(errs, fmt.Errorf("body %d: duplicate name %q", i, b.Name))
		}
		idx[b.Name] = i
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	cp := make([]CelestialBody, len(bodies))
	copy(cp, bodies)
	return &Table{bodies: cp, index: idx}, nil
}

func validate(b CelestialBody) error {
	if b.Name == "" {
		return errors.New("name is required")
	}
	for field, v := range map[string]float64{
		"orbit_radius":          b.OrbitRadius,
		"scale":                 b.Scale,
		"inclination_deg":       b.InclinationDeg,
		"orbital_period_factor": b.OrbitalPeriodFactor,
		"spin_period_factor":    b.SpinPeriodFactor,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not finite", field)
		}
	}
	if b.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", b.Scale)
	}
	if !b.Star && b.OrbitRadius <= 0 {
		return fmt.Errorf("orbit_radius must be positive, got %v", b.OrbitRadius)
	}
	if b.Star && b.OrbitRadius != 0 {
		return fmt.Errorf("star must sit at the origin, got orbit_radius %v", b.OrbitRadius)
	}
	for field, hex := range map[string]string{"orbit_color": b.OrbitColor, "surface_color": b.SurfaceColor} {
		if hex == "" {
			continue
		}
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%s %q: %w", field, hex, err)
		}
	}
	return nil
}

// Len reports the number of bodies.
func (t *Table) Len() int { return len(t.bodies) }

// Bodies returns a copy of the rows in table order.
func (t *Table) Bodies() []CelestialBody {
	out := make([]CelestialBody, len(t.bodies))
	copy(out, t.bodies)
	return out
}

// Body looks a row up by name.
func (t *Table) Body(name string) (CelestialBody, bool) {
	i, ok := t.index[name]
	if !ok {
		return CelestialBody{}, false
	}
	return t.bodies[i], true
}

// Star returns the first star row, if any.
func (t *Table) Star() (CelestialBody, bool) {
	for _, b := range t.bodies {
		if b.Star {
			return b, true
		}
	}
	return CelestialBody{}, false
}

// DefaultBodies is the sun, the eight planets and Pluto.
func DefaultBodies() []CelestialBody {
	return []CelestialBody{
		{Name: "sun", Scale: 10, SurfaceColor: "#ffcc55", Star: true},
		{Name: "mercury", OrbitRadius: 25, Scale: 0.8, InclinationDeg: 7.01, OrbitalPeriodFactor: 1.59, SpinPeriodFactor: 58.65, OrbitColor: "#f2d8d4", SurfaceColor: "#9c9692"},
		{Name: "venus", OrbitRadius: 28, Scale: 0.9, InclinationDeg: 3.39, OrbitalPeriodFactor: 1.18, SpinPeriodFactor: -243.02, OrbitColor: "#e6aea8", SurfaceColor: "#e8cda2"},
		{Name: "earth", OrbitRadius: 31, Scale: 1, InclinationDeg: 0, OrbitalPeriodFactor: 1, SpinPeriodFactor: 1, OrbitColor: "#ffcfa9", SurfaceColor: "#2e86ab"},
		{Name: "mars", OrbitRadius: 34, Scale: 0.8, InclinationDeg: 1.85, OrbitalPeriodFactor: 0.8, SpinPeriodFactor: 1.03, OrbitColor: "#f9a387", SurfaceColor: "#c1440e"},
		{Name: "jupiter", OrbitRadius: 42, Scale: 3.5, InclinationDeg: 1.31, OrbitalPeriodFactor: 0.43, SpinPeriodFactor: 0.41, OrbitColor: "#ff8578", SurfaceColor: "#c88b3a"},
		{Name: "saturn", OrbitRadius: 50, Scale: 2.9, InclinationDeg: 2.49, OrbitalPeriodFactor: 0.325, SpinPeriodFactor: 0.45, OrbitColor: "#da6458", SurfaceColor: "#e3c07b"},
		{Name: "uranus", OrbitRadius: 56, Scale: 1.7, InclinationDeg: 0.77, OrbitalPeriodFactor: 0.22, SpinPeriodFactor: -0.72, OrbitColor: "#a62d21", SurfaceColor: "#9fe3e8"},
		{Name: "neptune", OrbitRadius: 60, Scale: 1.65, InclinationDeg: 1.77, OrbitalPeriodFactor: 0.18, SpinPeriodFactor: 0.67, OrbitColor: "#a62d21", SurfaceColor: "#3f54ba"},
		{Name: "pluto", OrbitRadius: 64, Scale: 0.5, InclinationDeg: 17.14, OrbitalPeriodFactor: 0.15, SpinPeriodFactor: 6.41, OrbitColor: "#871d12", SurfaceColor: "#c8b39a"},
	}
}

// DefaultTable builds the table from DefaultBodies. It cannot fail.
func DefaultTable() *Table {
	t, err := NewTable(DefaultBodies())
	if err != nil {
		panic(err)
	}
	return t
}
