package layout

import (
	"strings"

	"go.uber.org/zap"

	"reflow/breaker"
	"reflow/dom"
	"reflow/fontsvc"
	"reflow/inline"
	"reflow/style"
)

// Walker drives the recursive block flow of one spine chunk: margin
// collapsing, page-break handling, and handing inline subtrees to package
// breaker, emitting draw commands into pages as it goes.
type Walker struct {
	Resolver    *StyleResolver
	Fonts       fontsvc.Service
	Dictionary  breaker.Dictionary
	ChunkDir    string
	ChunkOffset int // this chunk's global offset base

	PageWidth, PageHeight float64
	MarginPx              style.Edges
	AscenderReserve       float64
	DescenderReserve      float64

	Log *zap.Logger

	pages      []Page
	cur        Page
	cursorY    float64
	pendingTop float64
	floats     []breaker.PlacedFloat
	startX     float64
	endX       float64
	bandTop    float64
	bandBottom float64
}

// NewWalker constructs a Walker; a nil logger becomes a no-op one.
func NewWalker(resolver *StyleResolver, fonts fontsvc.Service, dict breaker.Dictionary, chunkDir string, chunkOffset int, pageW, pageH float64, margin style.Edges, log *zap.Logger) *Walker {
	if log == nil {
		log = zap.NewNop()
	}
	w := &Walker{
		Resolver: resolver, Fonts: fonts, Dictionary: dict,
		ChunkDir: chunkDir, ChunkOffset: chunkOffset,
		PageWidth: pageW, PageHeight: pageH, MarginPx: margin,
		Log: log.Named("layout"),
	}
	w.AscenderReserve = 4
	w.DescenderReserve = 4
	w.resetBand()
	return w
}

func (w *Walker) resetBand() {
	w.startX = w.MarginPx.Left
	w.endX = w.PageWidth - w.MarginPx.Right
	w.bandTop = w.MarginPx.Top
	w.bandBottom = w.PageHeight - w.MarginPx.Bottom
	w.cursorY = w.bandTop
}

// Layout walks doc's root element and returns the chunk's display list. If
// the chunk produces no content at all, a single sentinel Marker page is
// returned (spec.md 3).
func (w *Walker) Layout(doc *dom.Document) DisplayList {
	w.pages = nil
	w.cur = Page{}
	w.resetBand()
	w.pendingTop = 0
	w.floats = nil

	root := doc.Root
	rootStyle := style.Default(w.Resolver.Ctx.RootFontSizePx, w.Resolver.Ctx.RootFontSizePx*1.2)
	rootEl := &style.Element{Node: root}
	w.walkChildren(root, rootEl, rootStyle)
	w.flushPage()

	if len(w.pages) == 0 {
		return DisplayList{Pages: []Page{SentinelPage(w.ChunkOffset)}}
	}
	return DisplayList{Pages: w.pages}
}

func (w *Walker) walkChildren(n *dom.Node, parentEl *style.Element, parentStyle *style.StyleData) {
	children := style.ElementChildren(n, parentEl)
	elIdx := 0
	for _, c := range n.Children {
		if c.Kind != dom.KindElement {
			continue
		}
		el := children[elIdx]
		elIdx++
		st := w.Resolver.Resolve(el, parentStyle)
		if st.Display == style.DisplayNone {
			continue
		}
		w.layoutBlock(c, el, st)
	}
}

// layoutBlock lays out one block-level node. Margin collapsing (spec.md 4.1,
// invariant 8) is driven entirely through w.pendingTop: every call collapses
// its own top margin into whatever is still pending from the preceding
// sibling (or, for a first in-flow child, from its still-unflushed parent
// top margin) via style.CollapseMargins, and leaves its own bottom margin
// pending on return rather than flushing it — so a last in-flow child's
// bottom margin survives to collapse with its parent's bottom margin the
// same way.
func (w *Walker) layoutBlock(n *dom.Node, el *style.Element, st *style.StyleData) {
	style.ClampOverflow(st, w.endX-w.startX)

	w.pendingTop = style.CollapseMargins(w.pendingTop, st.Margin.Top)

	if st.PageBreakBefore {
		// spec.md 9's Open Question decision: a forced break does not
		// reset the pending collapsed top margin; it carries to the new
		// page as leading space.
		w.newPage()
	}

	if id := n.ID(); id != "" {
		w.emit(Command{Kind: DrawMarker, Offset: w.ChunkOffset + n.Offset})
	}

	isTable := strings.EqualFold(n.Name, "table")
	isContainer := !isTable && w.firstChildIsBlock(n, el, st)

	if !isContainer {
		// A table or a leaf paragraph has no in-flow child to collapse
		// this margin with; flush it before laying out its own content.
		w.cursorY += w.pendingTop
		w.pendingTop = 0
	}

	startY := w.cursorY

	switch {
	case isTable:
		w.layoutTable(n, el, st)
	case isContainer:
		w.walkChildren(n, el, st)
	default:
		w.layoutParagraph(n, el, st)
	}

	if st.HeightPx > 0 {
		contentHeight := w.cursorY - startY
		if st.HeightPx > contentHeight {
			w.cursorY = startY + st.HeightPx
		}
	}

	w.pendingTop = style.CollapseMargins(w.pendingTop, st.Margin.Bottom)

	if st.PageBreakAfter {
		w.newPage()
	}
}

// firstChildIsBlock resolves just the first in-flow element child to
// decide whether n is a block container (recurse) or a leaf whose content
// is flattened inline material (hand to the paragraph breaker).
func (w *Walker) firstChildIsBlock(n *dom.Node, parentEl *style.Element, parentStyle *style.StyleData) bool {
	children := style.ElementChildren(n, parentEl)
	if len(children) == 0 {
		return false
	}
	first := children[0]
	st := w.Resolver.Resolve(first, parentStyle)
	return st.Display == style.DisplayBlock
}

func (w *Walker) layoutParagraph(block *dom.Node, el *style.Element, st *style.StyleData) {
	g := inline.NewGatherer(w.Resolver.AsResolveFunc(), w.ChunkDir, w.Log)
	stream := g.Gather(block, el, st)

	for _, off := range stream.Markers {
		w.emit(Command{Kind: DrawMarker, Offset: w.ChunkOffset + off})
	}

	flowMaterials, floatMaterials := splitFloats(stream.Materials)
	for _, fm := range floatMaterials {
		w.placeFloat(fm)
	}

	b := breaker.NewBuilder(w.Fonts, st.TextAlign)
	items := b.Build(inline.Stream{Materials: flowMaterials})

	startX, endX := breaker.Shape(w.startX, w.endX, w.cursorY, w.floats)
	lines := breaker.BreakParagraph(items, endX-startX, st.TextAlign, w.Dictionary, w.Fonts)

	for _, line := range lines {
		lineHeight := st.LineHeightPx
		if lineHeight <= 0 {
			lineHeight = st.FontSizePx * 1.2
		}
		if w.cursorY+lineHeight > w.bandBottom-w.DescenderReserve {
			w.newPage()
		}
		startX, endX = breaker.Shape(w.startX, w.endX, w.cursorY, w.floats)
		placed := breaker.Place(line, startX, endX)
		for _, pb := range placed {
			w.emitPlacedBox(pb, w.cursorY, lineHeight)
		}
		if line.Hyphenated {
			w.emit(Command{Kind: DrawText, Offset: w.ChunkOffset + line.HyphenAt, Text: "-", Rect: Rect{X: endX, Y: w.cursorY, W: 0, H: lineHeight}})
		}
		w.cursorY += lineHeight
	}
}

func (w *Walker) emitPlacedBox(pb breaker.PlacedBox, y, lineHeight float64) {
	it := pb.Item
	switch it.Payload {
	case breaker.TextElement:
		var uri string
		if it.Style != nil {
			uri = it.Style.HyperlinkURI
		}
		plan := w.shapeForCommand(it)
		w.emit(Command{
			Kind: DrawText, Offset: w.ChunkOffset + it.Offset, Text: it.Text, Style: it.Style, Plan: plan,
			Rect: Rect{X: pb.X, Y: y, W: it.Width, H: lineHeight}, URI: uri,
		})
	case breaker.ImageElement:
		var uri string
		if it.Style != nil {
			uri = it.Style.HyperlinkURI
		}
		w.emit(Command{
			Kind: DrawImage, Offset: w.ChunkOffset + it.Offset, Path: it.ImagePath,
			Rect: Rect{X: pb.X, Y: y, W: it.Width, H: lineHeight}, Scale: 1, URI: uri,
		})
	}
}

// shapeForCommand shapes a placed box's final text once at layout time so
// the resulting Plan can be cloned into the cached display list; render
// then never needs to shape again (spec.md 5).
func (w *Walker) shapeForCommand(it breaker.Item) fontsvc.Plan {
	if it.Style == nil {
		return fontsvc.Plan{Text: it.Text}
	}
	plan, err := w.Fonts.Shape(fontsvc.ShapeRequest{
		Text: it.Text, Kind: it.Style.FontKind, Style: it.Style.FontStyle,
		Weight: it.Style.FontWeight, SizePx: it.Style.FontSizePx, Features: it.Style.OpenTypeFeatures,
	})
	if err != nil {
		return fontsvc.Plan{Text: it.Text}
	}
	return plan
}

func splitFloats(materials []inline.Material) (flow, floats []inline.Material) {
	for _, m := range materials {
		if m.Kind == inline.KindImage && m.Style != nil && m.Style.Float != style.FloatNone {
			floats = append(floats, m)
			continue
		}
		flow = append(flow, m)
	}
	return flow, floats
}

func (w *Walker) placeFloat(m inline.Material) {
	remaining := w.bandBottom - w.cursorY
	pf := breaker.PlaceFloat(m.Style, m.Path, w.endX-w.startX, remaining, w.startX, w.endX, w.cursorY, len(w.pages))
	w.floats = append(w.floats, pf)
	var uri string
	if m.Style != nil {
		uri = m.Style.HyperlinkURI
	}
	w.emit(Command{Kind: DrawImage, Offset: w.ChunkOffset + m.Offset, Path: m.Path, Rect: Rect{X: pf.X, Y: pf.Y, W: pf.W, H: pf.H}, Scale: 1, URI: uri})
}

func (w *Walker) emit(c Command) {
	w.cur.Commands = append(w.cur.Commands, c)
}

func (w *Walker) newPage() {
	w.flushPage()
	w.cursorY = w.bandTop + w.AscenderReserve
	w.floats = nil
}

func (w *Walker) flushPage() {
	if len(w.cur.Commands) > 0 {
		w.pages = append(w.pages, w.cur)
	}
	w.cur = Page{}
}
