package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// PointLight shines equally in all directions with no falloff.
type PointLight struct {
	Name      string
	Color     colorful.Color
	Intensity float64
	Position  mgl64.Vec3
}

// SpotLight shines a cone from Position toward Target. Intensity falls linearly
// to zero at Distance (0 = no falloff) and outside Angle (half-angle, radians).
type SpotLight struct {
	Name      string
	Color     colorful.Color
	Intensity float64
	Distance  float64
	Angle     float64
	Position  mgl64.Vec3
	Target    mgl64.Vec3
}

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	FOV      float64 // vertical, degrees
	Aspect   float64
	Near     float64
	Far      float64
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
}

// DefaultCamera frames the inner system from slightly above Earth's orbit.
func DefaultCamera() Camera {
	return Camera{
		FOV:      100,
		Aspect:   16.0 / 9.0,
		Near:     1,
		Far:      1000,
		Position: mgl64.Vec3{30, 5, 35},
		Target:   mgl64.Vec3{30, 0, 0},
		Up:       mgl64.Vec3{0, 1, 0},
	}
}

// View is the world-to-camera matrix.
func (c Camera) View() mgl64.Mat4 {
	up := c.Up
	if up.LenSqr() == 0 {
		up = mgl64.Vec3{0, 1, 0}
	}
	return mgl64.LookAtV(c.Position, c.Target, up)
}

// Projection is the camera-to-clip matrix.
func (c Camera) Projection() mgl64.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Skybox colors the background by view direction.
type Skybox interface {
	Sample(dir mgl64.Vec3) colorful.Color
}

// Scene holds the graph plus the non-graph collaborators.
type Scene struct {
	Root       *Node
	Points     []PointLight
	Spots      []SpotLight
	Camera     Camera
	Background Skybox
	Ambient    float64
}

// New returns an empty scene with the default camera.
func New() *Scene {
	return &Scene{Root: NewNode("root", Group), Camera: DefaultCamera(), Ambient: 0.08}
}

// Add attaches n under the root.
func (s *Scene) Add(n *Node) *Node { return s.Root.Add(n) }

// Solid is a mesh resolved to world space.
type Solid struct {
	Name     string
	Center   mgl64.Vec3
	Radius   float64
	Material Material
}

// Polyline is a line resolved to world space.
type Polyline struct {
	Name   string
	Points []mgl64.Vec3
	Color  colorful.Color
}

// Solids returns every visible mesh with its world center and radius.
func (s *Scene) Solids() []Solid {
	var out []Solid
	s.Root.Walk(func(n *Node, w mgl64.Mat4) {
		if n.Kind != Mesh {
			return
		}
		center := w.Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3()
		sx, sy, sz := mgl64.Extract3DScale(w)
		out = append(out, Solid{
			Name:     n.Name,
			Center:   center,
			Radius:   math.Max(sx, math.Max(sy, sz)),
			Material: n.Material,
		})
	})
	return out
}

// Lines returns every visible line transformed into world space.
func (s *Scene) Lines() []Polyline {
	var out []Polyline
	s.Root.Walk(func(n *Node, w mgl64.Mat4) {
		if n.Kind != Line || len(n.Points) == 0 {
			return
		}
		pts := make([]mgl64.Vec3, len(n.Points))
		for i, p := range n.Points {
			pts[i] = mgl64.TransformCoordinate(p, w)
		}
		out = append(out, Polyline{Name: n.Name, Points: pts, Color: n.Material.Color})
	})
	return out
}

// Shade lights a surface point with normal nrm. Emissive materials ignore lights.
func (s *Scene) Shade(p, nrm mgl64.Vec3, m Material) colorful.Color {
	lit := s.Ambient
	var r, g, b float64
	for _, l := range s.Points {
		k := lambert(p, nrm, l.Position) * l.Intensity
		r, g, b = r+k*l.Color.R, g+k*l.Color.G, b+k*l.Color.B
	}
	for _, l := range s.Spots {
		k := spot(p, l) * lambert(p, nrm, l.Position) * l.Intensity
		r, g, b = r+k*l.Color.R, g+k*l.Color.G, b+k*l.Color.B
	}
	e := clamp01(m.Emissive)
	c := m.Color
	return colorful.Color{
		R: c.R*(lit+r)*(1-e) + c.R*e,
		G: c.G*(lit+g)*(1-e) + c.G*e,
		B: c.B*(lit+b)*(1-e) + c.B*e,
	}
}

func lambert(p, nrm, light mgl64.Vec3) float64 {
	d := light.Sub(p)
	if d.LenSqr() == 0 || nrm.LenSqr() == 0 {
		return 1
	}
	return math.Max(0, nrm.Normalize().Dot(d.Normalize()))
}

func spot(p mgl64.Vec3, l SpotLight) float64 {
	axis := l.Target.Sub(l.Position)
	toP := p.Sub(l.Position)
	dist := toP.Len()
	if axis.LenSqr() == 0 || dist == 0 {
		return 0
	}
	cos := axis.Normalize().Dot(toP.Mul(1 / dist))
	if cos < math.Cos(l.Angle) {
		return 0
	}
	if l.Distance <= 0 {
		return 1
	}
	return math.Max(0, 1-dist/l.Distance)
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
