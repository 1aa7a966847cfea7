// Package fontsvc defines the font port the core consumes (spec.md 1: "font
// opening and glyph shaping") and a reference implementation good enough to
// drive the demo CLI and the test suite. The core (package breaker, package
// render) only ever depends on the Service interface.
//
// Grounded on spec.md 9's design note against the "mutate current size in
// place" hazard: Shape takes the pixel size as part of the request instead
// of a stateful "set size" call, so a shape→render boundary can never
// observe a size another caller just changed.
package fontsvc

import (
	"fmt"

	"reflow/style"
)

// ShapeRequest is everything Shape needs to produce a Plan: no hidden state
// survives between calls.
type ShapeRequest struct {
	Text     string
	Kind     style.FontKind
	Style    style.FontStyle
	Weight   int
	SizePx   float64
	Features []string
}

// Glyph is one shaped glyph: its rune and its advance width in px.
type Glyph struct {
	Rune    rune
	Advance float64
}

// Plan is a shaped run of text: its glyphs in order and their total width.
// Draw commands carry a Plan so rendering never re-shapes or re-accesses
// the DOM (spec.md 5's memory discipline).
type Plan struct {
	Text   string
	Glyphs []Glyph
	Width  float64
	SizePx float64
}

// Crop returns a Plan truncated to at most maxWidth px, used by the
// breaker's crop-and-retry fallback (spec.md 4.3) when a box is wider than
// the line and no break point exists.
func (p Plan) Crop(maxWidth float64) Plan {
	out := Plan{Text: p.Text, SizePx: p.SizePx}
	var w float64
	var textLen int
	for _, g := range p.Glyphs {
		if w+g.Advance > maxWidth {
			break
		}
		out.Glyphs = append(out.Glyphs, g)
		w += g.Advance
		textLen++
	}
	out.Width = w
	runes := []rune(p.Text)
	if textLen < len(runes) {
		out.Text = string(runes[:textLen])
	}
	return out
}

// Metrics reports the line-box metrics (ascent/descent, in px) for a font
// at a given size — what block layout needs for ascender/descender page
// reserves (spec.md 4.3's "cursor resets to the top of the text band plus
// the ascender reserve").
type Metrics struct {
	Ascent  float64
	Descent float64
}

// Service is the font port: shape text into a Plan, report line metrics,
// and render a Plan into a pixel buffer at a given origin. Kind/Style/
// Weight selection and size are resolved entirely from the arguments, never
// from service-held state.
type Service interface {
	Shape(req ShapeRequest) (Plan, error)
	Metrics(kind style.FontKind, sizePx float64) Metrics
	Render(dst Framebuffer, plan Plan, x, y float64, color string) error
}

// Framebuffer is the minimal pixel sink package render draws into; the
// reference implementation below targets image.RGBA via RGBAFramebuffer in
// package render, but Service itself stays image-library agnostic.
type Framebuffer interface {
	SetPixel(x, y int, r, g, b, a uint8)
	Bounds() (w, h int)
}

// ErrFontUnavailable is returned when a required bundled font cannot be
// opened — spec.md 7's FontInitError, which fails the first layout attempt
// and keeps failing.
type ErrFontUnavailable struct {
	Kind style.FontKind
}

func (e *ErrFontUnavailable) Error() string {
	return fmt.Sprintf("fontsvc: no bundled font for kind %s", e.Kind)
}
