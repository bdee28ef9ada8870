package led

import (
	"fmt"
	"sync"

	"github.com/coreman2200/arcaluminis-orrery/internal/render"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// ToRGB converts linear 0..1 colors to bytes, scaled by brightness. dst must hold 3*len(frame).
func ToRGB(dst []byte, frame []render.Color, brightness float64) {
	b := float32(clamp(brightness, 0, 1))
	for i, c := range frame {
		dst[i*3+0] = toByte(c.R * b)
		dst[i*3+1] = toByte(c.G * b)
		dst[i*3+2] = toByte(c.B * b)
	}
}

func toByte(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Output adapts a byte Driver to the engine's frame sink and keeps the last frame
// for previews.
type Output struct {
	mu         sync.RWMutex
	drv        Driver
	brightness float64
	rgb        []byte
	frameID    uint64
}

func NewOutput(drv Driver, count int, brightness float64) *Output {
	return &Output{drv: drv, brightness: brightness, rgb: make([]byte, count*3)}
}

// Write implements render.Driver.
func (o *Output) Write(frame []render.Color) error {
	o.mu.Lock()
	if len(frame)*3 != len(o.rgb) {
		o.mu.Unlock()
		return fmt.Errorf("frame has %d leds, output expects %d", len(frame), len(o.rgb)/3)
	}
	ToRGB(o.rgb, frame, o.brightness)
	o.frameID++
	buf := append([]byte(nil), o.rgb...)
	drv := o.drv
	o.mu.Unlock()

	if drv == nil {
		return nil
	}
	return drv.Write(buf)
}

// Last returns a copy of the last frame and its id.
func (o *Output) Last() ([]byte, uint64) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]byte(nil), o.rgb...), o.frameID
}

func (o *Output) SetBrightness(b float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.brightness = clamp(b, 0, 1)
}

func (o *Output) Brightness() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.brightness
}

// Close closes the underlying driver.
func (o *Output) Close() error {
	if o.drv == nil {
		return nil
	}
	return o.drv.Close()
}
