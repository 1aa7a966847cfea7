package layout

import (
	"reflow/css"
	"reflow/dom"
	"reflow/inline"
	"reflow/style"
)

// StyleResolver combines the cascade matcher (package css) and the style
// resolver (package style) into the single per-element operation the block
// walker and the inline gatherer both need: element + parent style in,
// resolved style out.
type StyleResolver struct {
	Sheets []css.LeveledSheet
	Ctx    style.Context
}

// Resolve matches el against every cascade sheet, then resolves the
// winning declarations against parent (nil for the document root).
func (r *StyleResolver) Resolve(el *style.Element, parent *style.StyleData) *style.StyleData {
	props := css.Resolve(el, r.Sheets)
	if parent == nil {
		parent = style.Default(r.Ctx.RootFontSizePx, r.Ctx.RootFontSizePx*1.2)
	}
	return style.Resolve(props, parent, r.Ctx)
}

// AsResolveFunc adapts StyleResolver to inline.ResolveFunc, so the inline
// gatherer can resolve descendant styles without depending on package css.
func (r *StyleResolver) AsResolveFunc() inline.ResolveFunc {
	return func(n *dom.Node, ctx *style.Element, parent *style.StyleData) *style.StyleData {
		return r.Resolve(ctx, parent)
	}
}
