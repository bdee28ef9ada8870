package app

import (
	"context"
	"time"

	"github.com/coreman2200/arcaluminis-orrery/internal/sequence"
)

// Run ticks the tour and renders at fps until ctx is done. Frame errors are reported
// through the observers and do not stop the loop.
func (c *Core) Run(ctx context.Context, fps int) {
	if fps <= 0 {
		fps = 60
	}
	dt := time.Second / time.Duration(fps)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Step(dt.Seconds())
		}
	}
}

// Step advances the tour by dt wall seconds and renders one frame at the engine clock.
func (c *Core) Step(dt float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Seq.Tick(dt)
	return c.frameLocked(c.Eng.Now())
}

// StartTour plays the tour from its first clip.
func (c *Core) StartTour() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Seq.Stop()
	c.Seq.Start()
}

// StopTour stops the tour and leaves the current renderer showing.
func (c *Core) StopTour() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Seq.Stop()
}

// LoadTour replaces the tour. A running tour restarts with the new program.
func (c *Core) LoadTour(p sequence.Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	running := c.Seq.State == sequence.Running
	if err := c.Seq.Load(p); err != nil {
		return err
	}
	c.tour = p
	if running {
		c.Seq.Start()
	}
	return nil
}
