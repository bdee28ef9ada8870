package orbital

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	tab := DefaultTable()
	require.Equal(t, 10, tab.Len())

	sun, ok := tab.Star()
	require.True(t, ok)
	assert.Equal(t, "sun", sun.Name)
	assert.Equal(t, 10.0, sun.Scale)

	venus, ok := tab.Body("venus")
	require.True(t, ok)
	assert.Less(t, venus.SpinPeriodFactor, 0.0)

	_, ok = tab.Body("vulcan")
	assert.False(t, ok)
}

func TestTableIsImmutable(t *testing.T) {
	in := DefaultBodies()
	tab, err := NewTable(in)
	require.NoError(t, err)

	in[3].OrbitRadius = 999
	out := tab.Bodies()
	out[3].Scale = 42

	earth, _ := tab.Body("earth")
	assert.Equal(t, 31.0, earth.OrbitRadius)
	assert.Equal(t, 1.0, earth.Scale)
}

func TestNewTableRejectsBadRows(t *testing.T) {
	cases := []struct {
		name string
		body CelestialBody
		want string
	}{
		{"no name", CelestialBody{OrbitRadius: 1, Scale: 1}, "name is required"},
		{"zero scale", CelestialBody{Name: "a", OrbitRadius: 1}, "scale must be positive"},
		{"negative radius", CelestialBody{Name: "a", OrbitRadius: -3, Scale: 1}, "orbit_radius must be positive"},
		{"zero radius planet", CelestialBody{Name: "a", Scale: 1}, "orbit_radius must be positive"},
		{"star off origin", CelestialBody{Name: "a", OrbitRadius: 2, Scale: 1, Star: true}, "star must sit at the origin"},
		{"nan factor", CelestialBody{Name: "a", OrbitRadius: 1, Scale: 1, SpinPeriodFactor: math.NaN()}, "spin_period_factor is not finite"},
		{"bad color", CelestialBody{Name: "a", OrbitRadius: 1, Scale: 1, OrbitColor: "orange"}, "orbit_color"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable([]CelestialBody{tc.body})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNewTableAggregatesErrors(t *testing.T) {
	_, err := NewTable([]CelestialBody{
		{Name: "a", OrbitRadius: 1, Scale: 0},
		{Name: "a", OrbitRadius: 1, Scale: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scale must be positive")
	assert.Contains(t, err.Error(), `duplicate name "a"`)

	_, err = NewTable(nil)
	assert.Error(t, err)
}

func TestColors(t *testing.T) {
	earth, _ := DefaultTable().Body("earth")
	r, g, b := earth.OrbitRGB().RGB255()
	assert.Equal(t, [3]uint8{0xff, 0xcf, 0xa9}, [3]uint8{r, g, b})

	plain := CelestialBody{Name: "p", OrbitColor: "#102030"}
	assert.Equal(t, plain.OrbitRGB(), plain.SurfaceRGB())
}
