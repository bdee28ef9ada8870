package led

import (
	"github.com/coreman2200/arcaluminis-orrery/internal/layout"
	"github.com/coreman2200/arcaluminis-orrery/internal/render"
)

// BuildLUT returns the normalized position [0,1]^3 of every LED in wire order, so
// renderer output index i lands on LED i without a remap at write time.
func BuildLUT(l layout.Layout) []render.Vec3 {
	out := make([]render.Vec3, l.Count())
	for z := 0; z < l.Dim.Z; z++ {
		for y := 0; y < l.Dim.Y; y++ {
			for x := 0; x < l.Dim.X; x++ {
				out[l.Index(x, y, z)] = render.Vec3{
					norm(x, l.Dim.X),
					norm(y, l.Dim.Y),
					norm(z, l.Dim.Z),
				}
			}
		}
	}
	return out
}

func norm(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}
