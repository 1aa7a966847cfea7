package engine

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"reflow/archive"
	"reflow/breaker"
	"reflow/fontsvc"
	"reflow/layout"
	"reflow/nav"
	"reflow/pixmapsvc"
	"reflow/render"
	"reflow/style"
	"reflow/toc"
)

// Engine is the facade spec.md section 6 describes: it owns the archive,
// the current EngineConfig, and the navigator/TOC built from it. Not safe
// for concurrent use (spec.md 5: single-threaded, synchronous core).
type Engine struct {
	archive archive.Archive
	cfg     EngineConfig
	log     *zap.Logger

	fonts  fontsvc.Service
	images pixmapsvc.Service

	pkg     *packageInfo
	spine   *nav.Spine
	navi    *nav.Navigator
	tocTree *toc.Tree
	tocPath string
	hasTOC  bool
}

// Open parses container.xml, the package document, and the spine, per
// spec.md 6. fonts/images are the font and pixmap service ports; a nil
// value for either uses the reference implementation.
func Open(path string, cfg EngineConfig, fonts fontsvc.Service, images pixmapsvc.Service, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if fonts == nil {
		fonts = fontsvc.NewReferenceService()
	}
	if images == nil {
		images = pixmapsvc.NewReferenceService()
	}

	a, err := archive.OpenZip(path)
	if err != nil {
		return nil, &ArchiveError{Path: path, Err: err}
	}

	packagePath, err := parseContainer(a, log)
	if err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	pkg, err := parsePackage(a, packagePath, log)
	if err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	spine, _, err := buildSpine(a, pkg)
	if err != nil {
		return nil, multierr.Append(err, a.Close())
	}

	e := &Engine{archive: a, cfg: cfg, log: log.Named("engine"), fonts: fonts, images: images, pkg: pkg, spine: spine}
	e.navi = nav.NewNavigator(spine, e.buildChunk, e.indexMarkers)

	if tp, ok := pkg.tocPath(); ok {
		e.tocPath = tp
		if tree, terr := e.loadTOC(tp); terr == nil {
			e.tocTree = tree
			e.hasTOC = true
		} else {
			log.Warn("failed to parse TOC, continuing without one", zap.Error(terr))
		}
	}

	return e, nil
}

func (e *Engine) Close() error { return e.archive.Close() }

// PagesCount is pages_count(): the sum of spine chunk sizes, a byte-scaled
// progress-denominator proxy (spec.md 6), never an actual page count.
func (e *Engine) PagesCount() int { return e.spine.TotalSize() }

// Dims is dims(): the current (width, height) in px.
func (e *Engine) Dims() (int, int) { return e.cfg.PageWidth, e.cfg.PageHeight }

// IsReflowable is is_reflowable(): always true (spec.md 6).
func (e *Engine) IsReflowable() bool { return true }

// HasSyntheticPageNumbers is has_synthetic_page_numbers(): always true.
func (e *Engine) HasSyntheticPageNumbers() bool { return true }

func (e *Engine) buildResolver() *layout.StyleResolver {
	return &layout.StyleResolver{
		Ctx: style.Context{DPI: e.cfg.DPI, RootFontSizePx: e.cfg.FontSizePx(), ParentWidthPx: float64(e.cfg.PageWidth)},
	}
}

// buildChunk is the nav.ChunkBuilder: it loads, cascades, and lays out one
// spine chunk under the current config.
func (e *Engine) buildChunk(idx int) layout.DisplayList {
	chunkPath := e.spine.Chunks[idx].Path
	doc, err := loadChunkDocument(e.archive, chunkPath)
	if err != nil {
		e.log.Warn("failed to load spine chunk, emitting sentinel page", zap.String("path", chunkPath), zap.Error(err))
		return layout.DisplayList{Pages: []layout.Page{layout.SentinelPage(e.spine.ChunkStart(idx))}}
	}

	resolver := e.buildResolver()
	resolver.Sheets = e.buildSheets(chunkPath, doc)

	margin := style.Edges{Top: e.cfg.MarginPx(), Right: e.cfg.MarginPx(), Bottom: e.cfg.MarginPx(), Left: e.cfg.MarginPx()}
	w := layout.NewWalker(resolver, e.fonts, e.dictionary(), chunkDir(chunkPath), e.spine.ChunkStart(idx),
		float64(e.cfg.PageWidth), float64(e.cfg.PageHeight), margin, e.log)
	return w.Layout(doc)
}

// indexMarkers is the nav.MarkerIndexer: parses a chunk without laying it
// out and maps every id attribute to its chunk-local offset (spec.md 4.5);
// the navigator adds the chunk's start.
func (e *Engine) indexMarkers(idx int) map[string]int {
	chunkPath := e.spine.Chunks[idx].Path
	doc, err := loadChunkDocument(e.archive, chunkPath)
	if err != nil {
		return nil
	}
	return nav.IndexMarkers(doc, 0)
}

// dictionary returns the hyphenation dictionary port; nil disables
// hyphenation entirely (acceptable per spec.md, since the dictionary is an
// external collaborator the engine may or may not have wired).
func (e *Engine) dictionary() breaker.Dictionary { return nil }

func chunkDir(chunkPath string) string {
	for i := len(chunkPath) - 1; i >= 0; i-- {
		if chunkPath[i] == '/' {
			return chunkPath[:i]
		}
	}
	return ""
}

// Layout reconfigures page geometry and invalidates the cache, per
// spec.md 6's layout(w, h, font_size, dpi) operation.
func (e *Engine) Layout(w, h int, fontSizePt float64, dpi int) {
	e.cfg.PageWidth, e.cfg.PageHeight, e.cfg.FontSizePt, e.cfg.DPI = w, h, fontSizePt, dpi
	e.navi.Cache.Invalidate()
}

func (e *Engine) SetTextAlign(a style.Align) { e.cfg.TextAlign = a; e.navi.Cache.Invalidate() }
func (e *Engine) SetFontFamily(k style.FontKind) { e.cfg.FontFamily = k; e.navi.Cache.Invalidate() }
func (e *Engine) SetMarginWidth(mm float64) { e.cfg.MarginMM = mm; e.navi.Cache.Invalidate() }
func (e *Engine) SetLineHeight(lh float64) { e.cfg.LineHeight = lh; e.navi.Cache.Invalidate() }
func (e *Engine) SetFontSize(pt float64) { e.cfg.FontSizePt = pt; e.navi.Cache.Invalidate() }
func (e *Engine) SetIgnoreDocumentCSS(v bool) { e.cfg.IgnoreDocumentCSS = v; e.navi.Cache.Invalidate() }

// ResolveLocation is resolve_location(location).
func (e *Engine) ResolveLocation(loc Location) (int, bool) { return e.navi.Resolve(loc) }

// Words is words(location): text + rect of every Text command on the page
// containing location, plus the page's canonical offset.
func (e *Engine) Words(loc Location) ([]WordRect, int, error) {
	off, ok := e.navi.Resolve(loc)
	if !ok {
		return nil, 0, fmt.Errorf("engine: location does not resolve")
	}
	page, pageOff, ok := e.navi.PageForOffset(off)
	if !ok {
		return nil, 0, fmt.Errorf("engine: no page at offset %d", off)
	}
	var out []WordRect
	for _, c := range page.Commands {
		if c.Kind == layout.DrawText {
			out = append(out, WordRect{Text: c.Text, Rect: c.Rect})
		}
	}
	return out, pageOff, nil
}

// Links is links(location): uri + rect for commands with uri set.
func (e *Engine) Links(loc Location) ([]LinkRect, int, error) {
	off, ok := e.navi.Resolve(loc)
	if !ok {
		return nil, 0, fmt.Errorf("engine: location does not resolve")
	}
	page, pageOff, ok := e.navi.PageForOffset(off)
	if !ok {
		return nil, 0, fmt.Errorf("engine: no page at offset %d", off)
	}
	var out []LinkRect
	for _, c := range page.Commands {
		if c.URI != "" {
			out = append(out, LinkRect{Uri: c.URI, Rect: c.Rect})
		}
	}
	return out, pageOff, nil
}

// Images is images(location): image rects on the page + offset.
func (e *Engine) Images(loc Location) ([]ImageRect, int, error) {
	off, ok := e.navi.Resolve(loc)
	if !ok {
		return nil, 0, fmt.Errorf("engine: location does not resolve")
	}
	page, pageOff, ok := e.navi.PageForOffset(off)
	if !ok {
		return nil, 0, fmt.Errorf("engine: no page at offset %d", off)
	}
	var out []ImageRect
	for _, c := range page.Commands {
		if c.Kind == layout.DrawImage {
			out = append(out, ImageRect{Path: c.Path, Rect: c.Rect})
		}
	}
	return out, pageOff, nil
}

// Pixmap is pixmap(location): the rasterized page plus its canonical
// offset, and any RenderWarnings for images that failed to decode
// (spec.md 7: recoverable, rendering continues).
func (e *Engine) Pixmap(loc Location) (*render.RGBAFramebuffer, int, []render.Warning, error) {
	off, ok := e.navi.Resolve(loc)
	if !ok {
		return nil, 0, nil, fmt.Errorf("engine: location does not resolve")
	}
	page, pageOff, ok := e.navi.PageForOffset(off)
	if !ok {
		return nil, 0, nil, fmt.Errorf("engine: no page at offset %d", off)
	}

	idx, _ := e.spine.ChunkIndexForOffset(off)
	chunkPath := e.spine.Chunks[idx].Path
	fetch := func(p string) ([]byte, error) {
		target := resolveRelativePath(chunkPath, p)
		r, err := e.archive.Open(target)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	}
	r := render.NewRenderer(e.fonts, e.images, fetch, e.log)
	fb, warnings := r.Page(page, e.cfg.PageWidth, e.cfg.PageHeight)
	return fb, pageOff, warnings, nil
}

// WordRect, LinkRect, ImageRect are the per-command projections words(),
// links(), images() return.
type WordRect struct {
	Text string
	Rect layout.Rect
}

type LinkRect struct {
	Uri  string
	Rect layout.Rect
}

type ImageRect struct {
	Path string
	Rect layout.Rect
}
