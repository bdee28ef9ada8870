package led

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/arcaluminis-orrery/internal/layout"
	"github.com/coreman2200/arcaluminis-orrery/internal/render"
)

func TestFeedOrderMatchesNRZSwap(t *testing.T) {
	grb, err := parseOrder("GRB")
	require.NoError(t, err)
	assert.Equal(t, [3]int{0, 1, 2}, feedOrder(grb), "GRB is what nrzled emits for RGB input")

	rgb, err := parseOrder("RGB")
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 0, 2}, feedOrder(rgb))
}

func writeWire(t *testing.T, order string, px []byte) []byte {
	t.Helper()
	var wire bytes.Buffer
	s, err := NewSPI(spitest.NewRecordRaw(&wire), SPIConfig{Count: len(px) / 3, ColorOrder: order})
	require.NoError(t, err)
	wire.Reset()
	require.NoError(t, s.Write(px))
	require.NoError(t, s.Close())
	return wire.Bytes()
}

func TestSPIEncodesInColorOrder(t *testing.T) {
	red := writeWire(t, "RGB", []byte{0xff, 0x00, 0x00})
	green := writeWire(t, "GRB", []byte{0x00, 0xff, 0x00})
	require.NotEmpty(t, red)
	// red first on an RGB chain puts the same bits on the wire as green first on GRB
	assert.Equal(t, green, red)
	assert.NotEqual(t, red, writeWire(t, "GRB", []byte{0xff, 0x00, 0x00}))
}

func TestSPIWriteErrors(t *testing.T) {
	s, err := NewSPI(spitest.NewRecordRaw(&bytes.Buffer{}), SPIConfig{Count: 2, ColorOrder: "GRB"})
	require.NoError(t, err)
	require.NoError(t, s.Write(make([]byte, 6)))
	assert.Error(t, s.Write([]byte{1, 2, 3}))
	require.NoError(t, s.Close())
	assert.Error(t, s.Write(make([]byte, 6)))
	assert.NoError(t, s.Close())
}

func TestSPIRejectsBadConfig(t *testing.T) {
	_, err := NewSPI(spitest.NewRecordRaw(&bytes.Buffer{}), SPIConfig{Count: 0})
	assert.Error(t, err)
	_, err = NewSPI(spitest.NewRecordRaw(&bytes.Buffer{}), SPIConfig{Count: 1, ColorOrder: "RRB"})
	assert.Error(t, err)
	_, err = NewSPI(spitest.NewRecordRaw(&bytes.Buffer{}), SPIConfig{Count: 1, ColorOrder: "RGBW"})
	assert.Error(t, err)
}

type recordDrawer struct {
	last   *image.NRGBA
	halted bool
}

func (r *recordDrawer) Draw(_ image.Rectangle, src image.Image, _ image.Point) error {
	r.last = src.(*image.NRGBA)
	return nil
}

func (r *recordDrawer) Halt() error {
	r.halted = true
	return nil
}

func TestTermDrawsStrip(t *testing.T) {
	rd := &recordDrawer{}
	term := newTerm(rd, 2)
	require.NoError(t, term.Write([]byte{255, 0, 0, 0, 0, 255}))
	require.NotNil(t, rd.last)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, rd.last.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, rd.last.NRGBAAt(1, 0))

	assert.Error(t, term.Write([]byte{1, 2, 3}))
	require.NoError(t, term.Close())
	assert.True(t, rd.halted)
	assert.Error(t, term.Write(make([]byte, 6)))

	_, err := NewTerm(0)
	assert.Error(t, err)
}

func TestToRGB(t *testing.T) {
	dst := make([]byte, 6)
	ToRGB(dst, []render.Color{{R: 1, G: 0.5, B: -1}, {R: 2, G: 0, B: 0.25}}, 1)
	assert.Equal(t, []byte{255, 128, 0, 255, 0, 64}, dst)

	ToRGB(dst, []render.Color{{R: 1, G: 1, B: 1}, {}}, 0.5)
	assert.Equal(t, byte(128), dst[0])
}

func TestOutputKeepsLastFrame(t *testing.T) {
	sim := NewSim()
	o := NewOutput(sim, 2, 1)
	require.NoError(t, o.Write([]render.Color{{R: 1}, {B: 1}}))

	rgb, id := o.Last()
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, []byte{255, 0, 0, 0, 0, 255}, rgb)
	assert.Equal(t, rgb, sim.Last())
	assert.Equal(t, uint64(1), sim.Frames())

	assert.Error(t, o.Write([]render.Color{{}}))
	require.NoError(t, o.Close())
	assert.Error(t, o.Write([]render.Color{{}, {}}), "closed sim rejects frames")
}

func TestBuildLUTFollowsWireOrder(t *testing.T) {
	l := layout.Layout{
		Dim:   layout.Dim{X: 3, Y: 2, Z: 2},
		Order: layout.Serpentine{XFlipEveryRow: true, YFlipEveryPanel: true},
	}
	lut := BuildLUT(l)
	require.Len(t, lut, 12)
	// first LED is the origin, second row runs backward
	assert.Equal(t, render.Vec3{0, 0, 0}, lut[0])
	assert.Equal(t, render.Vec3{1, 1, 0}, lut[3])
	for z := 0; z < 2; z++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				p := lut[l.Index(x, y, z)]
				assert.Equal(t, render.Vec3{float64(x) / 2, float64(y), float64(z)}, p)
			}
		}
	}
}
