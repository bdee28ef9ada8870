// Package snapshot draws the posed scene through its perspective camera into an image,
// for previews where no LED cube is attached.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/coreman2200/arcaluminis-orrery/internal/scene"
)

type Options struct {
	Width, Height int
	Labels        bool
	LineWidth     float64 // pixels
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 960
	}
	if o.Height <= 0 {
		o.Height = 540
	}
	if o.LineWidth <= 0 {
		o.LineWidth = 1.2
	}
	return o
}

// camera caches the matrices for one frame.
type camera struct {
	view, proj, invView mgl64.Mat4
	tanHalf, aspect     float64
	near                float64
	w, h                int
}

func newCamera(c scene.Camera, w, h int) camera {
	c.Aspect = float64(w) / float64(h)
	view := c.View()
	return camera{
		view:    view,
		proj:    c.Projection(),
		invView: view.Inv(),
		tanHalf: math.Tan(mgl64.DegToRad(c.FOV) / 2),
		aspect:  c.Aspect,
		near:    c.Near,
		w:       w,
		h:       h,
	}
}

// project returns image coordinates (y down) and view depth; ok is false behind the near plane.
func (c camera) project(p mgl64.Vec3) (x, y, depth float64, ok bool) {
	depth = -mgl64.TransformCoordinate(p, c.view).Z()
	if depth < c.near {
		return 0, 0, depth, false
	}
	win := mgl64.Project(p, c.view, c.proj, 0, 0, c.w, c.h)
	return win.X(), float64(c.h) - win.Y(), depth, true
}

// ray is the world direction through pixel (px, py).
func (c camera) ray(px, py float64) mgl64.Vec3 {
	nx := (2*px/float64(c.w) - 1) * c.tanHalf * c.aspect
	ny := (1 - 2*py/float64(c.h)) * c.tanHalf
	return c.invView.Mul4x1(mgl64.Vec4{nx, ny, -1, 0}).Vec3()
}

// Render draws sc: skybox, orbit lines, then bodies far to near, then labels.
func Render(sc *scene.Scene, opts Options) *image.RGBA {
	o := opts.withDefaults()
	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	cam := newCamera(sc.Camera, o.Width, o.Height)

	drawSky(img, sc, cam)
	drawLines(img, sc.Lines(), cam, o.LineWidth)

	type disc struct {
		s       scene.Solid
		x, y, r float64
		depth   float64
	}
	var discs []disc
	for _, s := range sc.Solids() {
		x, y, depth, ok := cam.project(s.Center)
		if !ok {
			continue
		}
		r := s.Radius * float64(o.Height) / 2 / (cam.tanHalf * depth)
		discs = append(discs, disc{s: s, x: x, y: y, r: math.Max(r, 1), depth: depth})
	}
	sort.Slice(discs, func(i, j int) bool { return discs[i].depth > discs[j].depth })
	for _, d := range discs {
		drawSphere(img, sc, cam, d.s, d.x, d.y, d.r)
	}
	if o.Labels {
		for _, d := range discs {
			label(img, d.s.Name, int(d.x+d.r)+3, int(d.y)+4)
		}
	}
	return img
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func drawSky(img *image.RGBA, sc *scene.Scene, cam camera) {
	if sc.Background == nil {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, rgba(sc.Background.Sample(cam.ray(float64(x)+0.5, float64(y)+0.5))))
		}
	}
}

// drawLines fills one path per polyline: each visible segment becomes a quad lineWidth wide.
func drawLines(img *image.RGBA, lines []scene.Polyline, cam camera, lineWidth float64) {
	z := vector.NewRasterizer(cam.w, cam.h)
	half := lineWidth / 2
	for _, l := range lines {
		z.Reset(cam.w, cam.h)
		n := 0
		for i := 0; i+1 < len(l.Points); i++ {
			ax, ay, _, okA := cam.project(l.Points[i])
			bx, by, _, okB := cam.project(l.Points[i+1])
			if !okA || !okB {
				continue
			}
			dx, dy := bx-ax, by-ay
			ln := math.Hypot(dx, dy)
			if ln == 0 {
				continue
			}
			nx, ny := -dy/ln*half, dx/ln*half
			z.MoveTo(float32(ax+nx), float32(ay+ny))
			z.LineTo(float32(bx+nx), float32(by+ny))
			z.LineTo(float32(bx-nx), float32(by-ny))
			z.LineTo(float32(ax-nx), float32(ay-ny))
			z.ClosePath()
			n++
		}
		if n > 0 {
			z.Draw(img, img.Bounds(), image.NewUniform(rgba(l.Color)), image.Point{})
		}
	}
}

// drawSphere shades a projected sphere per pixel with the scene lights.
func drawSphere(img *image.RGBA, sc *scene.Scene, cam camera, s scene.Solid, cx, cy, r float64) {
	b := img.Bounds()
	x0, x1 := int(math.Floor(cx-r)), int(math.Ceil(cx+r))
	y0, y1 := int(math.Floor(cy-r)), int(math.Ceil(cy+r))
	for y := max(y0, b.Min.Y); y < min(y1, b.Max.Y); y++ {
		for x := max(x0, b.Min.X); x < min(x1, b.Max.X); x++ {
			u := (float64(x) + 0.5 - cx) / r
			v := (cy - float64(y) - 0.5) / r
			d2 := u*u + v*v
			if d2 > 1 {
				continue
			}
			// normal in view space, then world
			nv := mgl64.Vec4{u, v, math.Sqrt(1 - d2), 0}
			n := cam.invView.Mul4x1(nv).Vec3()
			p := s.Center.Add(n.Mul(s.Radius))
			img.SetRGBA(x, y, rgba(sc.Shade(p, n, s.Material)))
		}
	}
}

func label(img *image.RGBA, text string, x, y int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// WritePNG encodes img.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
