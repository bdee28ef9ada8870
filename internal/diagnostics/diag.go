package diagnostics

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
	At             time.Time      `json:"at"`
}

func (d Diagnostic) level() zerolog.Level {
	switch d.Severity {
	case Err:
		return zerolog.ErrorLevel
	case Warn:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Hub logs every diagnostic, keeps the most recent ones and fans them out to subscribers.
type Hub struct {
	mu     sync.Mutex
	recent []Diagnostic
	keep   int
	subs   map[chan Diagnostic]struct{}
}

func NewHub(keep int) *Hub {
	if keep <= 0 {
		keep = 64
	}
	return &Hub{keep: keep, subs: map[chan Diagnostic]struct{}{}}
}

// Publish never blocks: a subscriber that is not keeping up misses the diagnostic.
func (h *Hub) Publish(d Diagnostic) {
	if d.At.IsZero() {
		d.At = time.Now()
	}
	ev := log.WithLevel(d.level()).Str("code", d.Code).Str("detail", d.Detail)
	if len(d.Evidence) > 0 {
		ev = ev.Interface("evidence", d.Evidence)
	}
	ev.Msg(d.Summary)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.recent = append(h.recent, d)
	if len(h.recent) > h.keep {
		h.recent = h.recent[len(h.recent)-h.keep:]
	}
	for ch := range h.subs {
		select {
		case ch <- d:
		default:
		}
	}
}

// Subscribe returns a channel of new diagnostics and a cancel func that closes it.
func (h *Hub) Subscribe(buf int) (<-chan Diagnostic, func()) {
	ch := make(chan Diagnostic, buf)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Recent returns the retained diagnostics, oldest first.
func (h *Hub) Recent() []Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Diagnostic(nil), h.recent...)
}
