package led

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"periph.io/x/extra/devices/screen"
)

type drawer interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

// Term paints the chain as a strip of ANSI colored cells on stdout, for a
// bench without hardware.
type Term struct {
	mu    sync.Mutex
	d     drawer
	img   *image.NRGBA
	count int
}

// NewTerm renders count LEDs in the terminal.
func NewTerm(count int) (*Term, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	return newTerm(screen.New(count), count), nil
}

func newTerm(d drawer, count int) *Term {
	return &Term{d: d, img: image.NewNRGBA(image.Rect(0, 0, count, 1)), count: count}
}

func (t *Term) Write(rgb []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.d == nil {
		return errors.New("term driver closed")
	}
	if len(rgb) != t.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), t.count)
	}
	for x := 0; x < t.count; x++ {
		t.img.SetNRGBA(x, 0, color.NRGBA{R: rgb[x*3], G: rgb[x*3+1], B: rgb[x*3+2], A: 0xff})
	}
	return t.d.Draw(t.img.Bounds(), t.img, image.Point{})
}

func (t *Term) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.d == nil {
		return nil
	}
	err := t.d.Halt()
	t.d = nil
	return err
}
