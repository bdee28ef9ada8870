package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexIsABijection(t *testing.T) {
	for _, order := range []Serpentine{{}, {XFlipEveryRow: true}, {YFlipEveryPanel: true}, {true, true}} {
		l := Layout{Dim: Dim{X: 5, Y: 4, Z: 3}, Order: order}
		seen := make([]bool, l.Count())
		for z := 0; z < l.Dim.Z; z++ {
			for y := 0; y < l.Dim.Y; y++ {
				for x := 0; x < l.Dim.X; x++ {
					i := l.Index(x, y, z)
					assert.False(t, seen[i], "index %d reused (%+v)", i, order)
					seen[i] = true
					gx, gy, gz := l.Coords(i)
					assert.Equal(t, [3]int{x, y, z}, [3]int{gx, gy, gz}, "%+v", order)
				}
			}
		}
	}
}

func TestSerpentineRows(t *testing.T) {
	l := Layout{Dim: Dim{X: 3, Y: 2, Z: 1}, Order: Serpentine{XFlipEveryRow: true}}
	assert.Equal(t, 0, l.Index(0, 0, 0))
	assert.Equal(t, 5, l.Index(0, 1, 0))
	assert.Equal(t, 3, l.Index(2, 1, 0))
}

func TestValidateAndSize(t *testing.T) {
	assert.Error(t, Layout{Dim: Dim{X: 0, Y: 1, Z: 1}}.Validate())
	l := Layout{Dim: Dim{X: 5, Y: 26, Z: 5}, PitchMM: 10, PanelGapMM: 50}
	assert.NoError(t, l.Validate())
	x, y, z := l.SizeMM()
	assert.Equal(t, [3]float64{40, 250, 200}, [3]float64{x, y, z})
}
