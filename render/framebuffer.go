// Package render walks a layout.DisplayList page's draw commands into
// pixels: text via fontsvc.Service.Render using each command's already-
// shaped Plan, images via pixmapsvc.Service after resolving the archive
// path relative to the owning chunk. Grounded on the teacher having no
// raster output stage of its own (FictionBook conversion emits documents,
// never pixels); the Framebuffer-over-image.RGBA adapter and the
// warning-not-error decode-failure handling are new, following spec.md 7's
// explicit distinction between fatal errors and recoverable warnings.
package render

import (
	"image"
	"image/color"
)

// RGBAFramebuffer adapts an *image.RGBA to fontsvc.Framebuffer.
type RGBAFramebuffer struct {
	Img *image.RGBA
}

// NewRGBAFramebuffer allocates a framebuffer of the given pixel size,
// pre-filled white (the page background).
func NewRGBAFramebuffer(w, h int) *RGBAFramebuffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return &RGBAFramebuffer{Img: img}
}

func (f *RGBAFramebuffer) SetPixel(x, y int, r, g, b, a uint8) {
	bounds := f.Img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	if a == 0xff {
		f.Img.SetRGBA(x, y, rgba(r, g, b, a))
		return
	}
	// Alpha blend over the existing pixel instead of overwriting it, so
	// anti-aliased glyph edges composite correctly onto prior draws.
	dst := f.Img.RGBAAt(x, y)
	out := blend(dst, rgba(r, g, b, a))
	f.Img.SetRGBA(x, y, out)
}

func (f *RGBAFramebuffer) Bounds() (int, int) {
	b := f.Img.Bounds()
	return b.Dx(), b.Dy()
}

func rgba(r, g, b, a uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: a} }

func blend(dst, src color.RGBA) color.RGBA {
	sa := float64(src.A) / 255
	inv := 1 - sa
	return color.RGBA{
		R: uint8(float64(src.R)*sa + float64(dst.R)*inv),
		G: uint8(float64(src.G)*sa + float64(dst.G)*inv),
		B: uint8(float64(src.B)*sa + float64(dst.B)*inv),
		A: 255,
	}
}
