package render

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"reflow/fontsvc"
	"reflow/layout"
	"reflow/pixmapsvc"
)

// ImageSource fetches the raw bytes of an image referenced by a DrawImage
// command's Path (resolved relative to the owning chunk's archive entry).
// The engine supplies this; render never opens the archive itself.
type ImageSource func(path string) ([]byte, error)

// Warning is a non-fatal decode failure encountered while rendering one
// page: the offending command's path and the underlying error, per
// spec.md 7's RenderWarning (rendering continues, the rest of the page
// still paints).
type Warning struct {
	Offset int
	Path   string
	Err    error
}

func (w Warning) Error() string {
	return fmt.Sprintf("render: offset %d, path %q: %v", w.Offset, w.Path, w.Err)
}

// Renderer paints a layout.Page into a pixel buffer.
type Renderer struct {
	Fonts   fontsvc.Service
	Images  pixmapsvc.Service
	Fetch   ImageSource
	TextColor string // hex "#rrggbb", defaults to "#000000"

	Log *zap.Logger
}

// NewRenderer constructs a Renderer; a nil logger becomes a no-op one.
func NewRenderer(fonts fontsvc.Service, images pixmapsvc.Service, fetch ImageSource, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{Fonts: fonts, Images: images, Fetch: fetch, TextColor: "#000000", Log: log.Named("render")}
}

// Page paints page into a fresh framebuffer of the given pixel size,
// returning the framebuffer and any non-fatal decode warnings encountered.
func (r *Renderer) Page(page layout.Page, pageW, pageH int) (*RGBAFramebuffer, []Warning) {
	fb := NewRGBAFramebuffer(pageW, pageH)
	var warnings []Warning

	for _, cmd := range page.Commands {
		switch cmd.Kind {
		case layout.DrawText:
			color := r.TextColor
			if cmd.Style != nil && cmd.Style.Color != "" {
				color = cmd.Style.Color
			}
			if err := r.Fonts.Render(fb, cmd.Plan, cmd.Rect.X, cmd.Rect.Y, color); err != nil {
				warnings = append(warnings, Warning{Offset: cmd.Offset, Path: cmd.Text, Err: err})
			}
		case layout.DrawImage:
			if err := r.drawImage(fb, cmd); err != nil {
				warnings = append(warnings, Warning{Offset: cmd.Offset, Path: cmd.Path, Err: err})
			}
		case layout.DrawMarker:
			// zero-sized breadcrumb, nothing to paint
		}
	}
	return fb, warnings
}

func (r *Renderer) drawImage(fb *RGBAFramebuffer, cmd layout.Command) error {
	data, err := r.Fetch(cmd.Path)
	if err != nil {
		return err
	}

	box := pixmapsvc.Box{W: int(cmd.Rect.W), H: int(cmd.Rect.H)}
	var img image.Image
	if r.Images.Sniff(data) == pixmapsvc.FormatSVG {
		img, err = r.Images.RasterizeSVG(data, box, 0)
	} else {
		img, err = r.Images.Decode(data)
		if err == nil {
			img = r.Images.Fit(img, box)
		}
	}
	if err != nil {
		return err
	}

	ox, oy := int(cmd.Rect.X), int(cmd.Rect.Y)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			rr, gg, bb, aa := img.At(x, y).RGBA()
			fb.SetPixel(ox+x-b.Min.X, oy+y-b.Min.Y, uint8(rr>>8), uint8(gg>>8), uint8(bb>>8), uint8(aa>>8))
		}
	}
	return nil
}
