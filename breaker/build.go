package breaker

import (
	"strings"
	"unicode"

	"reflow/fontsvc"
	"reflow/inline"
	"reflow/style"
)

// unicodeSpaceRatios maps fixed-width Unicode space characters to their
// width as a ratio of the ordinary ASCII space's shaped advance.
var unicodeSpaceRatios = map[rune]float64{
	' ': 1.0,     // EN QUAD
	' ': 2.0,     // EM QUAD
	' ': 0.5,     // EN SPACE
	' ': 1.0,     // EM SPACE
	' ': 1.0 / 3, // THREE-PER-EM SPACE
	' ': 1.0 / 4, // FOUR-PER-EM SPACE
	' ': 1.0 / 6, // SIX-PER-EM SPACE
	' ': 0.5,     // FIGURE SPACE
	' ': 0.2,     // PUNCTUATION SPACE
	' ': 0.2,     // THIN SPACE
	' ': 0.1,     // HAIR SPACE
}

func isNoBreakSpace(r rune) bool {
	return r == ' ' || r == ' '
}

// Builder converts an inline.Stream into a flat []Item per spec.md 4.3:
// whitespace collapses to alignment-specific glue, fixed-width and
// non-breaking spaces get their own width/penalty treatment, and text runs
// are shaped into boxes via the font service.
type Builder struct {
	Fonts fontsvc.Service
	Align style.Align
}

// NewBuilder returns a Builder bound to a font service and an alignment,
// since the interword glue/penalty construction depends on alignment.
func NewBuilder(fonts fontsvc.Service, align style.Align) *Builder {
	return &Builder{Fonts: fonts, Align: align}
}

const raggedStretchFactor = 6.0

// Build walks the stream's materials in order, producing break-items. If
// the alignment is Center, the result is bracketed by a large-stretch glue
// on both ends (spec.md 4.3).
func (b *Builder) Build(s inline.Stream) []Item {
	var items []Item

	if b.Align == style.AlignCenter {
		items = append(items, GlueItem(0, bigStretch, 0))
	}

	for _, m := range s.Materials {
		switch m.Kind {
		case inline.KindText:
			items = append(items, b.buildText(m)...)
		case inline.KindImage:
			items = append(items, b.buildImage(m))
		case inline.KindLineBreak:
			items = append(items, ForcedBreak())
		case inline.KindGlue:
			items = append(items, GlueItem(m.Width, m.Stretch, m.Shrink))
		case inline.KindPenalty:
			items = append(items, PenaltyItem(m.Value, 0, m.Flagged))
		}
	}

	if b.Align == style.AlignCenter {
		items = append(items, GlueItem(0, bigStretch, 0))
	}
	return items
}

const bigStretch = 1 << 16

func (b *Builder) spaceAdvance(st *style.StyleData) float64 {
	plan, err := b.Fonts.Shape(fontsvc.ShapeRequest{
		Text:   " ",
		Kind:   st.FontKind,
		Style:  st.FontStyle,
		Weight: st.FontWeight,
		SizePx: st.FontSizePx,
	})
	if err != nil || plan.Width <= 0 {
		return st.FontSizePx / 4
	}
	return plan.Width
}

// buildText tokenizes one text material into box/glue/penalty items. It
// does not itself decide whitespace collapsing across material boundaries;
// that is a property of each material's already-resolved RetainWhitespace.
func (b *Builder) buildText(m inline.Material) []Item {
	st := m.Style
	if st != nil && st.RetainWhitespace {
		return b.buildPreservedText(m)
	}
	return b.buildCollapsedText(m)
}

func (b *Builder) buildPreservedText(m inline.Material) []Item {
	var items []Item
	st := m.Style
	var run strings.Builder
	offset := m.Offset
	flush := func() {
		if run.Len() == 0 {
			return
		}
		text := run.String()
		plan, err := b.Fonts.Shape(fontsvc.ShapeRequest{Text: text, Kind: st.FontKind, Style: st.FontStyle, Weight: st.FontWeight, SizePx: st.FontSizePx, Features: st.OpenTypeFeatures})
		width := 0.0
		if err == nil {
			width = plan.Width
		}
		items = append(items, BoxItem(width, text, offset, st))
		run.Reset()
	}
	for _, r := range m.Text {
		if r == '\n' {
			flush()
			items = append(items, ForcedBreak())
			continue
		}
		run.WriteRune(r)
	}
	flush()
	return items
}

func (b *Builder) buildCollapsedText(m inline.Material) []Item {
	var items []Item
	st := m.Style
	spaceAdv := b.spaceAdvance(st)

	runes := []rune(m.Text)
	i := 0
	offset := m.Offset
	for i < len(runes) {
		r := runes[i]
		switch {
		case isNoBreakSpace(r):
			items = append(items, PenaltyItem(infinitePenalty, 0, false))
			items = append(items, GlueItem(spaceAdv, 0, 0))
			i++
		case unicode.IsSpace(r):
			ratio, fixed := unicodeSpaceRatios[r]
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) && !isNoBreakSpace(runes[j]) {
				j++
			}
			width := spaceAdv
			if fixed {
				width = spaceAdv * ratio
			}
			items = append(items, b.interwordGlue(width)...)
			i = j
		default:
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) {
				j++
			}
			word := string(runes[i:j])
			plan, err := b.Fonts.Shape(fontsvc.ShapeRequest{Text: word, Kind: st.FontKind, Style: st.FontStyle, Weight: st.FontWeight, SizePx: st.FontSizePx, Features: st.OpenTypeFeatures})
			width := 0.0
			if err == nil {
				width = plan.Width
			}
			items = append(items, BoxItem(width, word, offset, st))
			i = j
		}
	}
	return items
}

// interwordGlue produces the alignment-specific break-item sequence for one
// interword space of the given width (spec.md 4.3).
func (b *Builder) interwordGlue(width float64) []Item {
	switch b.Align {
	case style.AlignJustify:
		return []Item{GlueItem(width, width/2, width/3)}
	case style.AlignCenter:
		stretch := width * raggedStretchFactor * 2
		return []Item{
			GlueItem(0, stretch, 0),
			PenaltyItem(0, 0, false),
			GlueItem(width, -stretch, 0),
		}
	default: // Left, Right
		stretch := width * raggedStretchFactor
		return []Item{
			GlueItem(0, stretch, 0),
			PenaltyItem(0, 0, false),
			GlueItem(width, -stretch, 0),
		}
	}
}

func (b *Builder) buildImage(m inline.Material) Item {
	width := 0.0
	if m.Style != nil {
		width = m.Style.WidthPx
	}
	if width <= 0 {
		width = 100 // placeholder intrinsic width until the decoder reports real dimensions
	}
	return ImageBoxItem(width, m.Path, m.Offset, m.Style)
}
