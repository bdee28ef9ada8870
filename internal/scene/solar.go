package scene

import (
	"fmt"
	"math"

	"github.com/coreman2200/arcaluminis-orrery/internal/orbital"
	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// BuildOptions tunes Build. The zero value uses the defaults.
type BuildOptions struct {
	OrbitSamples int
	Camera       *Camera
	Background   Skybox
}

// BodyNodes are the nodes Apply drives for one body.
type BodyNodes struct {
	Body  orbital.CelestialBody
	Group *Node // nil for stars
	Mesh  *Node
	Orbit *Node // nil for stars
}

// Solar is the built solar-system scene with handles to every body.
type Solar struct {
	Scene  *Scene
	bodies map[string]*BodyNodes
	order  []string
}

// Body returns the nodes for name.
func (s *Solar) Body(name string) (*BodyNodes, bool) {
	b, ok := s.bodies[name]
	return b, ok
}

// Names lists bodies in table order.
func (s *Solar) Names() []string { return append([]string(nil), s.order...) }

var white = colorful.Color{R: 1, G: 1, B: 1}

// Build assembles the scene for every body in t: the star as an emissive mesh at the
// origin, each planet as a mesh at (orbit_radius, 0, 0) inside an orbital group,
// and one orbit line per planet, plus the reference lighting rig.
func Build(t *orbital.Table, opts BuildOptions) (*Solar, error) {
	if t == nil || t.Len() == 0 {
		return nil, fmt.Errorf("scene: empty body table")
	}
	samples := opts.OrbitSamples
	if samples == 0 {
		samples = orbital.DefaultOrbitSamples
	}

	sc := New()
	if opts.Camera != nil {
		sc.Camera = *opts.Camera
	}
	sc.Background = opts.Background
	if sc.Background == nil {
		sc.Background = DefaultStarfield()
	}
	addLights(sc)

	sol := &Solar{Scene: sc, bodies: make(map[string]*BodyNodes, t.Len())}
	for _, b := range t.Bodies() {
		bn := &BodyNodes{Body: b}
		mesh := NewNode(b.Name, Mesh).SetScalar(b.Scale)
		mesh.Material = Material{Color: b.SurfaceRGB()}

		if b.Star {
			mesh.Material.Emissive = 1
			sc.Add(mesh)
		} else {
			pts, err := orbital.OrbitPath(b, samples)
			if err != nil {
				return nil, fmt.Errorf("scene: orbit for %s: %w", b.Name, err)
			}
			orbit := NewNode(b.Name+"-orbit", Line)
			orbit.Points = pts
			orbit.Material = Material{Color: b.OrbitRGB(), Emissive: 1}
			sc.Add(orbit)

			group := NewNode(b.Name+"-group", Group)
			mesh.Position = mgl64.Vec3{b.OrbitRadius, 0, 0}
			group.Add(mesh)
			sc.Add(group)
			bn.Group, bn.Orbit = group, orbit
		}
		bn.Mesh = mesh
		sol.bodies[b.Name] = bn
		sol.order = append(sol.order, b.Name)
	}
	return sol, nil
}

func addLights(sc *Scene) {
	sc.Points = append(sc.Points, PointLight{Name: "sun", Color: white, Intensity: 1.25})
	for i, pos := range []mgl64.Vec3{
		{25, 0, 0}, {-25, 0, 0},
		{0, 25, 0}, {0, -25, 0},
		{0, 0, 25}, {0, 0, -25},
	} {
		sc.Spots = append(sc.Spots, SpotLight{
			Name:      fmt.Sprintf("spot-%d", i),
			Color:     white,
			Intensity: 5,
			Distance:  25,
			Angle:     math.Pi / 7,
			Position:  pos,
		})
	}
}

// Apply sets each body's pose from angles. A star missing from angles is not
// spinning and rests at zero rotation; planets missing from angles keep their pose.
func (s *Solar) Apply(angles map[string]orbital.Angles) {
	for _, name := range s.order {
		bn := s.bodies[name]
		a, ok := angles[name]
		if !ok {
			if bn.Body.Star {
				bn.Mesh.Rotation = mgl64.Vec3{}
			}
			continue
		}
		if bn.Group != nil {
			bn.Group.Rotation = mgl64.Vec3{a.InclinationRad, a.OrbitalRad, 0}
		}
		bn.Mesh.Rotation = mgl64.Vec3{0, a.SpinRad, 0}
	}
}
