package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadOverlaysDefaults(t *testing.T) {
	p := write(t, `
driver: spi
fps: 30
dim: {x: 5, y: 26, z: 5}
sim:
  time_scale: 4
  sun_spin_enabled: true
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "spi", c.Driver)
	assert.Equal(t, 30, c.FPS)
	assert.Equal(t, Dim{5, 26, 5}, c.Dim)
	assert.Equal(t, 4.0, c.Sim.TimeScale)
	assert.True(t, c.Sim.SunSpinEnabled)
	// untouched keys keep their defaults
	assert.Equal(t, "GRB", c.ColorOrder)
	assert.Equal(t, "orrery", c.Sim.StartRenderer)
	assert.Equal(t, 100.0, c.Camera.FOV)

	tab, err := c.Table()
	require.NoError(t, err)
	assert.Equal(t, 10, tab.Len())
}

func TestLoadBodiesOverride(t *testing.T) {
	p := write(t, `
bodies:
  - {name: sun, scale: 5, star: true, surface_color: "#ffffff"}
  - {name: rock, orbit_radius: 12, scale: 1, inclination_deg: 5, orbital_period_factor: 2, spin_period_factor: 1, orbit_color: "#808080"}
`)
	c, err := Load(p)
	require.NoError(t, err)
	tab, err := c.Table()
	require.NoError(t, err)
	assert.Equal(t, 2, tab.Len())
	rock, ok := tab.Body("rock")
	require.True(t, ok)
	assert.Equal(t, 12.0, rock.OrbitRadius)
}

func TestLoadRejects(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(write(t, "fps: [nope"))
	assert.Error(t, err)

	_, err = Load(write(t, "dim: {x: 0, y: 1, z: 1}"))
	assert.ErrorContains(t, err, "dim must be positive")

	_, err = Load(write(t, "bodies: [{name: bad, orbit_radius: -1, scale: 1}]"))
	assert.ErrorContains(t, err, "orbit_radius must be positive")
}

func TestSaveRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Brightness = 0.3
	require.NoError(t, Save(p, c))
	back, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
