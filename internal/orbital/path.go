package orbital

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultOrbitSamples is the point count of a generated orbit path.
const DefaultOrbitSamples = 200

// BaseTilt lays an XY-plane curve into the horizontal XZ plane.
const BaseTilt = math.Pi / 2

// Ellipse samples a closed ellipse centered on the origin in the XY plane.
// The last point repeats the first.
func Ellipse(rx, ry float64, samples int) ([]mgl64.Vec2, error) {
	if samples < 3 {
		return nil, fmt.Errorf("ellipse needs at least 3 samples, got %d", samples)
	}
	pts := make([]mgl64.Vec2, samples)
	step := 2 * math.Pi / float64(samples-1)
	for i := range pts {
		a := float64(i) * step
		pts[i] = mgl64.Vec2{rx * math.Cos(a), ry * math.Sin(a)}
	}
	return pts, nil
}

// OrbitPath returns the body's orbit as a closed 3D curve: a circle of OrbitRadius
// rotated about X by BaseTilt plus the body's inclination.
func OrbitPath(b CelestialBody, samples int) ([]mgl64.Vec3, error) {
	if b.Star {
		return nil, fmt.Errorf("%s is a star and has no orbit", b.Name)
	}
	flat, err := Ellipse(b.OrbitRadius, b.OrbitRadius, samples)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}
	rot := mgl64.Rotate3DX(BaseTilt + degToRad(b.InclinationDeg))
	out := make([]mgl64.Vec3, len(flat))
	for i, p := range flat {
		out[i] = rot.Mul3x1(mgl64.Vec3{p.X(), p.Y(), 0})
	}
	return out, nil
}
