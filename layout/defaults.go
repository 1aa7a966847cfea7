package layout

import (
	"go.uber.org/zap"

	"reflow/css"
)

// defaultStylesheetSrc is the minimal tag-default stylesheet every EPUB
// reader ships as its own "viewer stylesheet" origin (spec.md 4.1's
// cascade floor): without it every element would default to Display Block
// (package style's zero-CSS fallback), which is wrong for the inline
// elements XHTML content relies on for correct text flow.
const defaultStylesheetSrc = `
b, strong, i, em, span, a, u, sup, sub, code, small, abbr, cite, q, s,
mark, label, font, br, img, image {
  display: inline;
}
p, div, body, li, ul, ol, dl, dt, dd, h1, h2, h3, h4, h5, h6, blockquote,
table, tr, td, th, thead, tbody, tfoot, pre, hr, figure, figcaption,
section, article, header, footer, nav, aside {
  display: block;
}
`

// DefaultStylesheet parses the built-in tag-default rules as the viewer
// cascade origin (css.LevelViewer), the lowest-priority level spec.md 4.1
// describes.
func DefaultStylesheet(log *zap.Logger) css.LeveledSheet {
	if log == nil {
		log = zap.NewNop()
	}
	p := css.NewParser(log)
	return css.LeveledSheet{Sheet: p.Parse([]byte(defaultStylesheetSrc), "viewer-default"), Level: css.LevelViewer}
}
