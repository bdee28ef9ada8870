package orbital

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrbitPathIsClosed(t *testing.T) {
	for _, b := range DefaultTable().Bodies() {
		if b.Star {
			continue
		}
		pts, err := OrbitPath(b, DefaultOrbitSamples)
		require.NoError(t, err, b.Name)
		require.Len(t, pts, DefaultOrbitSamples, b.Name)
		// absolute gap; a relative compare fails when one side is exactly 0
		assert.Less(t, pts[0].Sub(pts[len(pts)-1]).Len(), 1e-9, "%s: %v vs %v", b.Name, pts[0], pts[len(pts)-1])
		for _, p := range pts {
			assert.InDelta(t, b.OrbitRadius, p.Len(), 1e-9, b.Name)
		}
	}
}

func TestOrbitPathLiesInTiltedPlane(t *testing.T) {
	earth, _ := DefaultTable().Body("earth")
	pts, err := OrbitPath(earth, 8)
	require.NoError(t, err)
	for _, p := range pts {
		assert.InDelta(t, 0, p.Y(), 1e-9, "earth orbit is horizontal")
	}

	pluto, _ := DefaultTable().Body("pluto")
	pts, err = OrbitPath(pluto, 9)
	require.NoError(t, err)
	maxY := 0.0
	for _, p := range pts {
		maxY = math.Max(maxY, math.Abs(p.Y()))
	}
	assert.InDelta(t, pluto.OrbitRadius*math.Sin(degToRad(pluto.InclinationDeg)), maxY, 1e-6)
}

func TestOrbitPathRejects(t *testing.T) {
	earth, _ := DefaultTable().Body("earth")
	_, err := OrbitPath(earth, 2)
	assert.Error(t, err)

	sun, _ := DefaultTable().Star()
	_, err = OrbitPath(sun, DefaultOrbitSamples)
	assert.Error(t, err)
}

func TestEllipse(t *testing.T) {
	pts, err := Ellipse(2, 1, 5)
	require.NoError(t, err)
	require.Len(t, pts, 5)
	assert.InDelta(t, 2, pts[0].X(), 1e-12)
	assert.InDelta(t, 1, pts[1].Y(), 1e-12)
	assert.InDelta(t, -2, pts[2].X(), 1e-12)
}
