package sequence

import "sort"

// Keyframe is a value at T seconds into a clip. Ease shapes the segment that
// starts at this key.
type Keyframe struct {
	T    float64 `json:"t"`
	V    float64 `json:"v"`
	Ease string  `json:"ease,omitempty"` // linear, smooth, cubic
}

// Envelope automates one parameter over a clip. Keys are sorted by T.
type Envelope struct {
	Keys []Keyframe `json:"keys"`
}

// Const holds v for the whole clip.
func Const(v float64) Envelope { return Envelope{Keys: []Keyframe{{T: 0, V: v}}} }

// Ramp goes from a to b over d seconds with the given ease.
func Ramp(a, b, d float64, ease string) Envelope {
	return Envelope{Keys: []Keyframe{{T: 0, V: a, Ease: ease}, {T: d, V: b}}}
}

type easeFunc func(u float64) float64

// Unknown names fall back to linear.
var eases = map[string]easeFunc{
	"linear": func(u float64) float64 { return u },
	"smooth": func(u float64) float64 { return u * u * (3 - 2*u) },
	"cubic":  func(u float64) float64 { return u * u * u * (u*(u*6-15) + 10) },
}

func ease(name string, u float64) float64 {
	if u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}
	if f, ok := eases[name]; ok {
		return f(u)
	}
	return u
}

// Eval returns the envelope value t seconds into the clip. An empty envelope is
// 0, and t outside the keys holds the nearest end.
func (e Envelope) Eval(t float64) float64 {
	n := len(e.Keys)
	switch {
	case n == 0:
		return 0
	case t <= e.Keys[0].T:
		return e.Keys[0].V
	case t >= e.Keys[n-1].T:
		return e.Keys[n-1].V
	}
	// first key strictly after t; i >= 1 here
	i := sort.Search(n, func(i int) bool { return e.Keys[i].T > t })
	a, b := e.Keys[i-1], e.Keys[i]
	span := b.T - a.T
	if span <= 0 {
		return b.V
	}
	return a.V + (b.V-a.V)*ease(a.Ease, (t-a.T)/span)
}

// BoolEval is true where the envelope reaches 0.5.
func (e Envelope) BoolEval(t float64) bool {
	return e.Eval(t) >= 0.5
}
