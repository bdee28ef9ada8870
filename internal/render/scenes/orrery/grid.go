package orrery

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type segment struct {
	a, b mgl64.Vec3
	line int
}

type cellKey [3]int32

// segGrid buckets segments by the cells their width-dilated bounds touch, so a voxel
// only tests segments in its own cell.
type segGrid struct {
	cell  float64
	cells map[cellKey][]int
	segs  []segment
}

func newSegGrid(cell float64) *segGrid {
	if cell <= 0 {
		cell = 1
	}
	return &segGrid{cell: cell, cells: map[cellKey][]int{}}
}

func (g *segGrid) key(p mgl64.Vec3) cellKey {
	return cellKey{
		int32(math.Floor(p.X() / g.cell)),
		int32(math.Floor(p.Y() / g.cell)),
		int32(math.Floor(p.Z() / g.cell)),
	}
}

func (g *segGrid) insert(s segment, pad float64) {
	idx := len(g.segs)
	g.segs = append(g.segs, s)
	lo := g.key(mgl64.Vec3{
		math.Min(s.a.X(), s.b.X()) - pad,
		math.Min(s.a.Y(), s.b.Y()) - pad,
		math.Min(s.a.Z(), s.b.Z()) - pad,
	})
	hi := g.key(mgl64.Vec3{
		math.Max(s.a.X(), s.b.X()) + pad,
		math.Max(s.a.Y(), s.b.Y()) + pad,
		math.Max(s.a.Z(), s.b.Z()) + pad,
	})
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				k := cellKey{x, y, z}
				g.cells[k] = append(g.cells[k], idx)
			}
		}
	}
}

// near returns the segments that may lie within pad of p.
func (g *segGrid) near(p mgl64.Vec3) []int { return g.cells[g.key(p)] }

// distToSegment is the distance from p to the closed segment ab.
func distToSegment(p, a, b mgl64.Vec3) float64 {
	ab := b.Sub(a)
	l2 := ab.LenSqr()
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Sub(a.Add(ab.Mul(t))).Len()
}
