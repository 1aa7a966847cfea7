package style

import (
	"strings"

	"reflow/css"
)

// Context carries the pixel-conversion knobs length resolution needs: the
// device DPI (for pt), the root element's font size (for rem) and the
// containing block's width (for %).
type Context struct {
	DPI            int
	RootFontSizePx float64
	ParentWidthPx  float64
}

// Length resolves a CSS length/percentage value to pixels given the current
// element's font size (for em). Keywords and unparsable values resolve to 0.
func (ctx Context) Length(v css.Value, fontSizePx float64) float64 {
	switch v.Unit {
	case "", "px":
		return v.Number
	case "pt":
		dpi := ctx.DPI
		if dpi == 0 {
			dpi = 96
		}
		return v.Number * float64(dpi) / 72.0
	case "em":
		return v.Number * fontSizePx
	case "rem":
		root := ctx.RootFontSizePx
		if root == 0 {
			root = fontSizePx
		}
		return v.Number * root
	case "%":
		return v.Number / 100.0 * ctx.ParentWidthPx
	default:
		return 0
	}
}

// Resolve builds a child StyleData from its matched property map and its
// parent's resolved style, per spec.md 4.1's cascade/inheritance rules:
// unrecognized or absent values inherit; display/margin/padding/width/
// height/float/page-break are never inherited and reset to their initial
// value when absent.
func Resolve(props map[string]css.Value, parent *StyleData, ctx Context) *StyleData {
	s := &StyleData{
		Display:          DisplayBlock,
		FontKind:         parent.FontKind,
		FontStyle:        parent.FontStyle,
		FontWeight:       parent.FontWeight,
		FontSizePx:       parent.FontSizePx,
		LineHeightPx:     parent.LineHeightPx,
		Color:            parent.Color,
		TextAlign:        parent.TextAlign,
		LetterSpacingPx:  parent.LetterSpacingPx,
		Lang:             parent.Lang,
		HyperlinkURI:     parent.HyperlinkURI,
		RetainWhitespace: parent.RetainWhitespace,
		OpenTypeFeatures: append([]string(nil), parent.OpenTypeFeatures...),
	}

	if v, ok := props["font-size"]; ok {
		if v.IsNumeric() {
			s.FontSizePx = ctx.Length(v, parent.FontSizePx)
		} else {
			switch strings.ToLower(v.Keyword) {
			case "smaller":
				s.FontSizePx = parent.FontSizePx * 0.83
			case "larger":
				s.FontSizePx = parent.FontSizePx * 1.2
			}
		}
	}

	if v, ok := props["display"]; ok {
		switch strings.ToLower(v.Keyword) {
		case "inline":
			s.Display = DisplayInline
		case "inline-block":
			s.Display = DisplayInlineBlock
		case "inline-table", "table":
			s.Display = DisplayInlineTable
		case "none":
			s.Display = DisplayNone
		default:
			s.Display = DisplayBlock
		}
	}

	if v, ok := props["font-family"]; ok {
		s.FontKind = resolveFontKind(v, parent.FontKind)
	}
	if v, ok := props["font-style"]; ok {
		switch strings.ToLower(v.Keyword) {
		case "italic":
			s.FontStyle = FontStyleItalic
		case "oblique":
			s.FontStyle = FontStyleOblique
		case "normal":
			s.FontStyle = FontStyleNormal
		}
	}
	if v, ok := props["font-weight"]; ok {
		if w, ok := parseFontWeight(v); ok {
			s.FontWeight = w
		}
	}
	if v, ok := props["font-feature-settings"]; ok {
		s.OpenTypeFeatures = parseFontFeatures(v.Raw)
	}

	if v, ok := props["color"]; ok {
		if c, ok := parseColor(v); ok {
			s.Color = c
		}
	}

	if v, ok := props["line-height"]; ok {
		if v.Unit == "" && v.Keyword == "" {
			s.LineHeightPx = v.Number * s.FontSizePx
		} else if v.IsNumeric() {
			s.LineHeightPx = ctx.Length(v, s.FontSizePx)
		}
	} else {
		// Line-height is inherited as a ratio unless explicit; re-derive
		// from the parent's ratio against the new font size so nested
		// font-size changes keep line spacing proportional.
		if parent.FontSizePx > 0 {
			ratio := parent.LineHeightPx / parent.FontSizePx
			s.LineHeightPx = ratio * s.FontSizePx
		}
	}

	if v, ok := props["letter-spacing"]; ok {
		s.LetterSpacingPx = ctx.Length(v, s.FontSizePx)
	}
	if v, ok := props["vertical-align"]; ok {
		s.VerticalAlignPx = ctx.Length(v, s.FontSizePx)
	}

	if v, ok := props["text-align"]; ok {
		switch strings.ToLower(v.Keyword) {
		case "left":
			s.TextAlign = AlignLeft
		case "right":
			s.TextAlign = AlignRight
		case "center":
			s.TextAlign = AlignCenter
		case "justify":
			s.TextAlign = AlignJustify
		}
	}
	if v, ok := props["text-indent"]; ok {
		s.TextIndentPx = ctx.Length(v, s.FontSizePx)
	}

	s.Padding = Edges{
		Top:    ctx.Length(props["padding-top"], s.FontSizePx),
		Right:  ctx.Length(props["padding-right"], s.FontSizePx),
		Bottom: ctx.Length(props["padding-bottom"], s.FontSizePx),
		Left:   ctx.Length(props["padding-left"], s.FontSizePx),
	}
	s.Margin = Edges{
		Top:    ctx.Length(props["margin-top"], s.FontSizePx),
		Right:  ctx.Length(props["margin-right"], s.FontSizePx),
		Bottom: ctx.Length(props["margin-bottom"], s.FontSizePx),
		Left:   ctx.Length(props["margin-left"], s.FontSizePx),
	}

	if v, ok := props["width"]; ok && v.IsNumeric() {
		s.WidthPx = ctx.Length(v, s.FontSizePx)
	}
	if v, ok := props["height"]; ok && v.IsNumeric() {
		s.HeightPx = ctx.Length(v, s.FontSizePx)
	}

	if v, ok := props["float"]; ok {
		switch strings.ToLower(v.Keyword) {
		case "left":
			s.Float = FloatLeft
		case "right":
			s.Float = FloatRight
		}
	}

	if v, ok := props["page-break-before"]; ok && strings.ToLower(v.Keyword) == "always" {
		s.PageBreakBefore = true
	}
	if v, ok := props["page-break-after"]; ok && strings.ToLower(v.Keyword) == "always" {
		s.PageBreakAfter = true
	}

	if v, ok := props["white-space"]; ok && strings.ToLower(v.Keyword) == "pre" {
		s.RetainWhitespace = true
	}

	if v, ok := props["-reflow-insert-before"]; ok {
		s.InsertBefore = unquoteContent(v)
	}
	if v, ok := props["-reflow-insert-after"]; ok {
		s.InsertAfter = unquoteContent(v)
	}

	s.StartX = parent.StartX
	s.EndX = parent.EndX

	return s
}

func unquoteContent(v css.Value) string {
	if v.Keyword != "" {
		return v.Keyword
	}
	return strings.Trim(v.Raw, `"'`)
}

func resolveFontKind(v css.Value, fallback FontKind) FontKind {
	raw := v.Raw
	if raw == "" {
		raw = v.Keyword
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.Trim(strings.TrimSpace(part), `"'`))
		switch part {
		case "serif":
			return FontSerif
		case "sans-serif":
			return FontSansSerif
		case "monospace":
			return FontMonospace
		case "cursive":
			return FontCursive
		case "fantasy":
			return FontFantasy
		}
	}
	return fallback
}
