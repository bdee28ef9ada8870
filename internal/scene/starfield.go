package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Starfield is a procedural skybox: the direction sphere is cut into cells and a
// hashed subset of cells holds one star. Same seed, same sky.
type Starfield struct {
	Seed    uint32
	Density float64 // fraction of cells that hold a star, 0..1
	Cells   float64 // cells per radian
	Base    colorful.Color
}

// DefaultStarfield returns a sparse, dim field over near-black.
func DefaultStarfield() *Starfield {
	return &Starfield{Seed: 0x9e3779b9, Density: 0.04, Cells: 24, Base: colorful.Color{R: 0.004, G: 0.004, B: 0.012}}
}

func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

func hash3(seed uint32, a, b, c int) uint32 {
	h := hash32(seed ^ uint32(int32(a))*0x27d4eb2d)
	h = hash32(h ^ uint32(int32(b))*0x165667b1)
	return hash32(h ^ uint32(int32(c))*0x9e3779b1)
}

func unit(h uint32) float64 { return float64(h) / float64(math.MaxUint32) }

// Sample returns the background color seen along dir.
func (s *Starfield) Sample(dir mgl64.Vec3) colorful.Color {
	l := dir.Len()
	if l == 0 {
		return s.Base
	}
	d := dir.Mul(1 / l)
	lon := math.Atan2(d.Z(), d.X())
	lat := math.Asin(math.Max(-1, math.Min(1, d.Y())))

	u, v := lon*s.Cells, lat*s.Cells
	cu, cv := math.Floor(u), math.Floor(v)
	h := hash3(s.Seed, int(cu), int(cv), 0)
	if unit(h) >= s.Density {
		return s.Base
	}
	// star centre inside the cell, soft disc of radius 0.25 cell
	px := unit(hash32(h^0xa5a5a5a5))*0.5 + 0.25
	py := unit(hash32(h^0x5a5a5a5a))*0.5 + 0.25
	dx, dy := u-cu-px, v-cv-py
	k := 1 - math.Sqrt(dx*dx+dy*dy)/0.25
	if k <= 0 {
		return s.Base
	}
	bright := 0.3 + 0.7*unit(hash32(h^0x3c3c3c3c))
	tint := unit(hash32(h ^ 0xc3c3c3c3))
	star := colorful.Color{R: 0.85 + 0.15*tint, G: 0.9, B: 1 - 0.15*tint}
	return s.Base.BlendRgb(star, k*bright).Clamped()
}
