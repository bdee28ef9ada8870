package render

import (
	"sync"
	"time"
)

// Clock accumulates simulation seconds from wall time. Changing the scale or pausing
// never makes simulation time jump.
type Clock struct {
	mu     sync.Mutex
	now    func() time.Time
	last   time.Time
	simT   float64
	scale  float64
	paused bool
}

// NewClock starts a clock at simulation time 0 with scale 1.
func NewClock() *Clock { return newClock(time.Now) }

func newClock(now func() time.Time) *Clock {
	return &Clock{now: now, last: now(), scale: 1}
}

func (c *Clock) advance() {
	t := c.now()
	if !c.paused {
		c.simT += t.Sub(c.last).Seconds() * c.scale
	}
	c.last = t
}

// Seconds returns the current simulation time.
func (c *Clock) Seconds() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	return c.simT
}

// SetScale changes how many simulated seconds pass per wall second. Negative runs backward.
func (c *Clock) SetScale(s float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	c.scale = s
}

func (c *Clock) Scale() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scale
}

// Set jumps to simulation time t.
func (c *Clock) Set(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	c.simT = t
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	c.paused = true
}

func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance()
	c.paused = false
}

func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}
