package sequence

// DefaultTour flies the view out to the whole system, in to the inner planets, down to
// the sun and back out, slowing simulated time near the sun.
func DefaultTour() Program {
	return Program{
		Version: "seq.v1",
		Loop:    true,
		Clips: []Clip{
			{
				Name: "system", Renderer: "orrery", Preset: "System", DurationS: 30, XFadeS: 3,
				Params: map[string]Envelope{"TimeScale": Const(1)},
			},
			{
				Name: "inner", Renderer: "orrery", Preset: "Inner", DurationS: 20, XFadeS: 3,
				Params: map[string]Envelope{
					"TimeScale":  Const(0.5),
					"ViewExtent": Ramp(80, 60, 20, "smooth"),
				},
			},
			{
				Name: "sun", Renderer: "orrery", Preset: "Sun", DurationS: 12, XFadeS: 3,
				Params: map[string]Envelope{"TimeScale": Const(0.25)},
			},
			{
				Name: "system-return", Renderer: "orrery", Preset: "System", DurationS: 20, XFadeS: 3,
				Params: map[string]Envelope{"TimeScale": Const(2)},
			},
		},
	}
}
