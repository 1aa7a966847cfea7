package fontsvc

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"reflow/style"
)

// ReferenceService is a minimal, real Service: it shapes and renders every
// font kind through the single bundled face golang.org/x/image ships
// (basicfont.Face7x13), scaled to the requested pixel size. It exists so
// the demo CLI and test suite can exercise the whole pipeline without
// bundling an actual font file; a production host supplies its own Service
// backed by real font files (e.g. via golang.org/x/image/font/sfnt).
//
// Grounded on the teacher having no font-shaping code of its own (FictionBook
// conversion never rasterizes); golang.org/x/image is the teacher's image
// dependency, generalized here from pixmap scaling to font metrics.
type ReferenceService struct {
	face font.Face
}

// NewReferenceService builds a ReferenceService around basicfont.Face7x13,
// the one face golang.org/x/image bundles.
func NewReferenceService() *ReferenceService {
	return &ReferenceService{face: basicfont.Face7x13}
}

const baseFaceSizePx = 13.0
const baseFaceAdvancePx = 7.0

func (s *ReferenceService) scale(sizePx float64) float64 {
	if sizePx <= 0 {
		sizePx = baseFaceSizePx
	}
	return sizePx / baseFaceSizePx
}

func (s *ReferenceService) Shape(req ShapeRequest) (Plan, error) {
	scale := s.scale(req.SizePx)
	plan := Plan{Text: req.Text, SizePx: req.SizePx}
	for _, r := range req.Text {
		adv, ok := s.face.GlyphAdvance(r)
		width := baseFaceAdvancePx
		if ok {
			width = fixedToFloat(adv)
		}
		plan.Glyphs = append(plan.Glyphs, Glyph{Rune: r, Advance: width * scale})
		plan.Width += width * scale
	}
	return plan, nil
}

func (s *ReferenceService) Metrics(kind style.FontKind, sizePx float64) Metrics {
	scale := s.scale(sizePx)
	m := s.face.Metrics()
	return Metrics{
		Ascent:  fixedToFloat(m.Ascent) * scale,
		Descent: fixedToFloat(m.Descent) * scale,
	}
}

func (s *ReferenceService) Render(dst Framebuffer, plan Plan, x, y float64, color string) error {
	r, g, b := hexColor(color)
	scale := s.scale(plan.SizePx)
	cursor := x
	for _, gl := range plan.Glyphs {
		drawGlyph(dst, s.face, gl.Rune, cursor, y, scale, r, g, b)
		cursor += gl.Advance
	}
	return nil
}

func drawGlyph(dst Framebuffer, face font.Face, r rune, x, y, scale float64, red, green, blue uint8) {
	dr, mask, maskp, advance, ok := face.Glyph(fixed.Point26_6{
		X: floatToFixed(0),
		Y: floatToFixed(0),
	}, r)
	_ = advance
	if !ok {
		return
	}
	bw, bh := dst.Bounds()
	for py := dr.Min.Y; py < dr.Max.Y; py++ {
		for px := dr.Min.X; px < dr.Max.X; px++ {
			_, _, _, a := mask.At(px-dr.Min.X+maskp.X, py-dr.Min.Y+maskp.Y).RGBA()
			if a == 0 {
				continue
			}
			ox := x + float64(px)*scale
			oy := y + float64(py)*scale
			ix, iy := int(ox), int(oy)
			if ix < 0 || iy < 0 || ix >= bw || iy >= bh {
				continue
			}
			dst.SetPixel(ix, iy, red, green, blue, uint8(a>>8))
		}
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64.0)
}

func hexColor(s string) (r, g, b uint8) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0
	}
	parse := func(hi, lo byte) uint8 {
		return hexDigit(hi)<<4 | hexDigit(lo)
	}
	return parse(s[1], s[2]), parse(s[3], s[4]), parse(s[5], s[6])
}

func hexDigit(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
