package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-orrery/internal/app"
	"github.com/coreman2200/arcaluminis-orrery/internal/config"
	diag "github.com/coreman2200/arcaluminis-orrery/internal/diagnostics"
	"github.com/coreman2200/arcaluminis-orrery/internal/led"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	missing := filepath.Join(t.TempDir(), "none.yaml")
	root.SetArgs(append([]string{"--config", missing}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestAnglesCommand(t *testing.T) {
	out, err := run(t, "angles", "--t", "10")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 10, "header plus nine planets")
	assert.True(t, strings.HasPrefix(lines[0], "BODY"))
	assert.Contains(t, out, "earth")
	assert.NotContains(t, out, "sun")

	out, err = run(t, "angles", "--sun-spin")
	require.NoError(t, err)
	assert.Contains(t, out, "sun")
}

func TestOrbitsCommand(t *testing.T) {
	out, err := run(t, "orbits", "--body", "mars", "--samples", "5")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		assert.Len(t, strings.Fields(l), 3)
	}

	_, err = run(t, "orbits", "--body", "sun")
	assert.Error(t, err)
	_, err = run(t, "orbits", "--body", "vulcan")
	assert.Error(t, err)
}

func TestSnapshotCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot.png")
	_, err := run(t, "snapshot", "--t", "3", "--out", path, "--width", "64", "--height", "36", "--labels=false")
	require.NoError(t, err)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestSnapshotBeforeEpoch(t *testing.T) {
	dir := t.TempDir()
	shot := func(at string) []byte {
		path := filepath.Join(dir, at+".png")
		_, err := run(t, "snapshot", "--t="+at, "--out", path, "--width", "64", "--height", "36", "--labels=false")
		require.NoError(t, err)
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		return b
	}
	// -5 must not be swapped for the engine clock, which reads about 0 here
	assert.NotEqual(t, shot("0"), shot("-5"))
}

func TestLoopStopsBeforeClose(t *testing.T) {
	cfg := config.Default()
	cfg.Dim = config.Dim{X: 4, Y: 4, Z: 4}
	sim := led.NewSim()
	hw, simCfg, err := app.FromConfig(cfg, sim)
	require.NoError(t, err)
	core, err := app.InitCore(hw, simCfg, app.Observers{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := startLoop(ctx, core, 200)
	require.Eventually(t, func() bool { return sim.Frames() > 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("render loop did not stop")
	}
	require.NoError(t, core.Close())
}

func TestOpenDriverTerm(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = "term"
	drv, name := openDriver(cfg, 8, diag.NewHub(4))
	defer drv.Close()
	assert.Equal(t, "term", name)
	assert.IsType(t, &led.Term{}, drv)

	cfg.Driver = "bogus"
	drv2, name := openDriver(cfg, 8, diag.NewHub(4))
	defer drv2.Close()
	assert.Equal(t, "sim", name)
}

func TestBadConfigIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fps: -1\n"), 0o644))
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "angles"})
	assert.Error(t, root.Execute())
}

func TestServeFlagsOverrideConfig(t *testing.T) {
	o := &serveOpts{}
	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&o.addr, "addr", ":8080", "")
	cmd.Flags().StringVar(&o.driver, "driver", "sim", "")
	cmd.Flags().IntVar(&o.fps, "fps", 60, "")
	cmd.Flags().Float64Var(&o.brightness, "brightness", 0.8, "")
	require.NoError(t, cmd.Flags().Parse([]string{"--addr", ":9000"}))

	cfg := config.Default()
	cfg.Driver = "spi"
	cfg.FPS = 30
	o.simOnly = true
	o.effective(cmd, cfg)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "sim", cfg.Driver)
}
