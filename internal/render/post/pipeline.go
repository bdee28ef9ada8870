package post

import (
	"math"

	"github.com/coreman2200/arcaluminis-orrery/internal/render"
)

// Preview is the websocket/snapshot path: Exposure -> Tonemap(ACES) -> Gamma, no limiter.
func Preview() render.PostPipeline {
	return render.PostPipeline{ToneMap: render.FilmicToneMap}
}

// LED is the hardware path: linear exposure then the current limiter, no tonemap and
// no gamma (the strip's own response is close enough to linear).
func LED() render.PostPipeline {
	return render.PostPipeline{ToneMap: Exposure, Limiter: ApplyLED}
}

// Exposure scales linearly by 2^ExposureEV.
func Exposure(buf []render.Color, u *render.Uniforms) {
	ev := u.Param("ExposureEV", 0)
	if ev == 0 {
		return
	}
	scale := float32(math.Exp2(ev))
	for i := range buf {
		buf[i].R *= scale
		buf[i].G *= scale
		buf[i].B *= scale
	}
}

// ApplyLED runs the limiter, then clamps to 0..1.
func ApplyLED(buf []render.Color, u *render.Uniforms) {
	render.DefaultLimiter(buf, u)
	clamp01(buf)
}

func clamp01(buf []render.Color) {
	for i := range buf {
		buf[i].R = clamp(buf[i].R)
		buf[i].G = clamp(buf[i].G)
		buf[i].B = clamp(buf[i].B)
	}
}

func clamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
