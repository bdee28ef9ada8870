package layout

import "fmt"

type Dim struct{ X, Y, Z int }

type Serpentine struct {
	XFlipEveryRow   bool
	YFlipEveryPanel bool
}

type Layout struct {
	Dim        Dim
	Order      Serpentine
	PanelGapMM float64
	PitchMM    float64
}

// Validate rejects empty cubes.
func (l Layout) Validate() error {
	if l.Dim.X <= 0 || l.Dim.Y <= 0 || l.Dim.Z <= 0 {
		return fmt.Errorf("layout: invalid dimensions %dx%dx%d", l.Dim.X, l.Dim.Y, l.Dim.Z)
	}
	return nil
}

// Index maps x,y,z -> linear LED index (0..N-1)
func (l Layout) Index(x, y, z int) int {
	yy := y
	xx := x
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		xx = l.Dim.X - 1 - x
	}
	if l.Order.YFlipEveryPanel && (z%2 == 1) {
		yy = l.Dim.Y - 1 - y
	}
	perPanel := l.Dim.X * l.Dim.Y
	return z*perPanel + yy*l.Dim.X + xx
}

// Coords is the inverse of Index.
func (l Layout) Coords(i int) (x, y, z int) {
	perPanel := l.Dim.X * l.Dim.Y
	z = i / perPanel
	rem := i % perPanel
	yy, xx := rem/l.Dim.X, rem%l.Dim.X
	y = yy
	if l.Order.YFlipEveryPanel && (z%2 == 1) {
		y = l.Dim.Y - 1 - yy
	}
	x = xx
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		x = l.Dim.X - 1 - xx
	}
	return x, y, z
}

func (l Layout) Count() int {
	return l.Dim.X * l.Dim.Y * l.Dim.Z
}

// SizeMM is the physical extent of the lattice; panels are stacked along Z.
func (l Layout) SizeMM() (x, y, z float64) {
	span := func(n int, step float64) float64 {
		if n <= 1 {
			return 0
		}
		return float64(n-1) * step
	}
	return span(l.Dim.X, l.PitchMM), span(l.Dim.Y, l.PitchMM), span(l.Dim.Z, l.PanelGapMM)
}
