package fontsvc_test

import (
	"testing"

	"reflow/fontsvc"
	"reflow/style"
)

type memFramebuffer struct {
	w, h int
	px   map[[2]int][4]uint8
}

func newMemFramebuffer(w, h int) *memFramebuffer {
	return &memFramebuffer{w: w, h: h, px: map[[2]int][4]uint8{}}
}

func (f *memFramebuffer) SetPixel(x, y int, r, g, b, a uint8) {
	f.px[[2]int{x, y}] = [4]uint8{r, g, b, a}
}

func (f *memFramebuffer) Bounds() (int, int) { return f.w, f.h }

func TestShape_WidthScalesWithSize(t *testing.T) {
	svc := fontsvc.NewReferenceService()

	small, err := svc.Shape(fontsvc.ShapeRequest{Text: "abc", Kind: style.FontSerif, SizePx: 13})
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	large, err := svc.Shape(fontsvc.ShapeRequest{Text: "abc", Kind: style.FontSerif, SizePx: 26})
	if err != nil {
		t.Fatalf("Shape: %v", err)
	}
	if large.Width <= small.Width {
		t.Errorf("expected larger size to produce wider plan: small=%v large=%v", small.Width, large.Width)
	}
	if len(small.Glyphs) != 3 || len(large.Glyphs) != 3 {
		t.Errorf("expected 3 glyphs each, got %d and %d", len(small.Glyphs), len(large.Glyphs))
	}
}

func TestShape_NoMutationAcrossCalls(t *testing.T) {
	svc := fontsvc.NewReferenceService()

	first, _ := svc.Shape(fontsvc.ShapeRequest{Text: "x", SizePx: 40})
	second, _ := svc.Shape(fontsvc.ShapeRequest{Text: "x", SizePx: 13})
	third, _ := svc.Shape(fontsvc.ShapeRequest{Text: "x", SizePx: 40})

	if first.Width != third.Width {
		t.Errorf("expected identical shaping for identical requests regardless of interleaved calls: first=%v second=%v third=%v", first.Width, second.Width, third.Width)
	}
}

func TestPlan_Crop(t *testing.T) {
	svc := fontsvc.NewReferenceService()
	plan, _ := svc.Shape(fontsvc.ShapeRequest{Text: "hello world", SizePx: 13})

	cropped := plan.Crop(plan.Width / 2)
	if cropped.Width > plan.Width/2 {
		t.Errorf("cropped width %v exceeds max %v", cropped.Width, plan.Width/2)
	}
	if len(cropped.Glyphs) >= len(plan.Glyphs) {
		t.Errorf("expected fewer glyphs after crop, got %d of %d", len(cropped.Glyphs), len(plan.Glyphs))
	}
}

func TestMetrics_ScalesWithSize(t *testing.T) {
	svc := fontsvc.NewReferenceService()
	small := svc.Metrics(style.FontSerif, 13)
	large := svc.Metrics(style.FontSerif, 26)
	if large.Ascent <= small.Ascent {
		t.Errorf("expected ascent to scale up with size: small=%v large=%v", small.Ascent, large.Ascent)
	}
}

func TestRender_SetsPixels(t *testing.T) {
	svc := fontsvc.NewReferenceService()
	plan, _ := svc.Shape(fontsvc.ShapeRequest{Text: "A", SizePx: 13})
	fb := newMemFramebuffer(20, 20)

	if err := svc.Render(fb, plan, 0, 0, "#ff0000"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(fb.px) == 0 {
		t.Error("expected Render to set at least one pixel for glyph 'A'")
	}
}

func TestErrFontUnavailable_Error(t *testing.T) {
	err := &fontsvc.ErrFontUnavailable{Kind: style.FontMonospace}
	if err.Error() == "" {
		t.Error("expected non-empty error message")
	}
}
