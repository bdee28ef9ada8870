package render

// Lerp is the linear blend of a and b at t in [0,1].
func (a Color) Lerp(b Color, t float32) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}

// Mix crossfades two frames into dst: alpha 0 is all a, 1 is all b. Only the
// LEDs present in all three buffers are written.
func Mix(dst, a, b []Color, alpha float64) {
	n := min(len(dst), len(a), len(b))
	switch {
	case alpha <= 0:
		copy(dst[:n], a)
	case alpha >= 1:
		copy(dst[:n], b)
	default:
		t := float32(alpha)
		for i := 0; i < n; i++ {
			dst[i] = a[i].Lerp(b[i], t)
		}
	}
}
