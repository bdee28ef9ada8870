package led

import (
	"errors"
	"sync"
)

// Sim is a driver with no hardware behind it: it counts frames and keeps the last one.
type Sim struct {
	mu     sync.Mutex
	frames uint64
	last   []byte
	closed bool
}

func NewSim() *Sim { return &Sim{} }

func (s *Sim) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("sim driver closed")
	}
	s.last = append(s.last[:0], rgb...)
	s.frames++
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns how many frames were written.
func (s *Sim) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns a copy of the last frame.
func (s *Sim) Last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...)
}
