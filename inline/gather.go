package inline

import (
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"reflow/dom"
	"reflow/style"
)

// ResolveFunc produces a child's resolved style from its node, its element
// context (parent/sibling chain, for cascade matching) and its parent's
// resolved style. Package layout supplies the concrete implementation,
// backed by css.Resolve against the active stylesheets; inline stays
// independent of package css so it can be tested without a cascade.
type ResolveFunc func(n *dom.Node, ctx *style.Element, parent *style.StyleData) *style.StyleData

// Gatherer walks one block's subtree collecting inline material.
type Gatherer struct {
	Resolve  ResolveFunc
	ChunkDir string // directory of the owning spine chunk, for relative image paths
	Log      *zap.Logger
}

// NewGatherer returns a Gatherer; a nil logger is replaced with a no-op one.
func NewGatherer(resolve ResolveFunc, chunkDir string, log *zap.Logger) *Gatherer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gatherer{Resolve: resolve, ChunkDir: chunkDir, Log: log.Named("inline")}
}

// Gather walks the children of block, returning the inline material stream.
// blockStyle is the already-resolved style of block itself (the style its
// own inline content inherits from). When block is itself an <a href>, its
// href is stamped on that style the same way walkElement does for a nested
// link.
func (g *Gatherer) Gather(block *dom.Node, blockCtx *style.Element, blockStyle *style.StyleData) Stream {
	s := &Stream{}
	if href, ok := block.Attr("href"); ok && strings.EqualFold(block.Name, "a") {
		blockStyle = blockStyle.Clone()
		blockStyle.HyperlinkURI = href
	}
	g.walkChildren(block, blockCtx, blockStyle, s)
	return *s
}

func (g *Gatherer) walkChildren(n *dom.Node, ctx *style.Element, parentStyle *style.StyleData, s *Stream) {
	children := style.ElementChildren(n, ctx)
	elIdx := 0
	for _, c := range n.Children {
		switch c.Kind {
		case dom.KindText, dom.KindWhitespace:
			g.emitText(c, parentStyle, s)
		case dom.KindElement:
			el := children[elIdx]
			elIdx++
			g.walkElement(c, el, parentStyle, s)
		}
	}
}

func (g *Gatherer) emitText(n *dom.Node, st *style.StyleData, s *Stream) {
	if n.Text == "" {
		return
	}
	s.Materials = append(s.Materials, Material{
		Kind:   KindText,
		Offset: n.Offset,
		Text:   n.Text,
		Style:  st,
	})
}

func (g *Gatherer) walkElement(n *dom.Node, ctx *style.Element, parentStyle *style.StyleData, s *Stream) {
	childStyle := g.Resolve(n, ctx, parentStyle)

	if childStyle.Display == style.DisplayNone {
		return
	}

	if id := n.ID(); id != "" {
		s.Markers = append(s.Markers, n.Offset)
	}

	if href, ok := n.Attr("href"); ok && strings.EqualFold(n.Name, "a") {
		childStyle = childStyle.Clone()
		childStyle.HyperlinkURI = href
	}

	switch strings.ToLower(n.Name) {
	case "br":
		s.Materials = append(s.Materials, Material{Kind: KindLineBreak, Offset: n.Offset})
		return

	case "img", "image":
		g.emitImage(n, childStyle, s, "src")
		return

	case "svg":
		// svg:image is addressed via its own "image" child element, which
		// the recursive walk below reaches; svg itself carries no content.

	default:
		if n.Name == "image" {
			g.emitImage(n, childStyle, s, "href")
			return
		}
	}

	if childStyle.InsertBefore != "" {
		s.Materials = append(s.Materials, Material{Kind: KindText, Offset: n.Offset, Text: childStyle.InsertBefore, Style: childStyle})
	}

	g.walkChildren(n, ctx, childStyle, s)

	if childStyle.InsertAfter != "" {
		s.Materials = append(s.Materials, Material{Kind: KindText, Offset: n.Offset, Text: childStyle.InsertAfter, Style: childStyle})
	}
}

func (g *Gatherer) emitImage(n *dom.Node, st *style.StyleData, s *Stream, attr string) {
	ref, ok := n.Attr(attr)
	if !ok || ref == "" {
		g.Log.Debug("image element missing reference attribute", zap.String("element", n.Name))
		return
	}
	resolved := g.resolvePath(ref)

	bracket := st.Display == style.DisplayBlock || st.Float != style.FloatNone
	if bracket {
		s.Materials = append(s.Materials, Material{Kind: KindLineBreak, Offset: n.Offset})
	}
	s.Materials = append(s.Materials, Material{
		Kind:   KindImage,
		Offset: n.Offset,
		Path:   resolved,
		Style:  st,
	})
	if bracket {
		s.Materials = append(s.Materials, Material{Kind: KindLineBreak, Offset: n.Offset})
	}
}

// resolvePath resolves an image reference relative to the owning chunk's
// directory, percent-decoding and normalizing it the way spec.md 6 requires
// of archive paths.
func (g *Gatherer) resolvePath(ref string) string {
	if decoded, err := url.PathUnescape(ref); err == nil {
		ref = decoded
	}
	if strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return ref
	}
	return path.Clean(path.Join(g.ChunkDir, ref))
}
