package nav

import (
	"strings"

	"reflow/dom"
	"reflow/layout"
)

// LocationKind discriminates the Location tagged variant (spec.md 4.5).
type LocationKind int

const (
	LocationExact LocationKind = iota
	LocationPrevious
	LocationNext
	LocationUri
	LocationLocalUri
)

// Location is the tagged variant resolve() accepts.
type Location struct {
	Kind LocationKind

	Offset int    // Exact, Previous, Next, LocalUri (the offset to step from / resolve against)
	Uri    string // Uri, LocalUri (relative path for LocalUri)
}

func Exact(offset int) Location      { return Location{Kind: LocationExact, Offset: offset} }
func Previous(offset int) Location   { return Location{Kind: LocationPrevious, Offset: offset} }
func Next(offset int) Location       { return Location{Kind: LocationNext, Offset: offset} }
func AtUri(uri string) Location      { return Location{Kind: LocationUri, Uri: uri} }
func LocalUri(offset int, rel string) Location {
	return Location{Kind: LocationLocalUri, Offset: offset, Uri: rel}
}

// ChunkBuilder builds the display list for one spine chunk on demand. The
// engine supplies this, since only it knows how to open the archive entry
// and construct a layout.Walker with the current engine settings.
type ChunkBuilder func(chunkIdx int) layout.DisplayList

// MarkerIndexer parses a chunk document (without laying it out) and returns
// the chunk-local offset of every element carrying an id attribute, keyed
// by that id. Used by Uri resolution when a fragment is present, which adds
// the chunk's start to turn it into a global offset.
type MarkerIndexer func(chunkIdx int) map[string]int

// Navigator resolves Locations to global offsets and serves built pages,
// per spec.md 4.5 / C7.
type Navigator struct {
	Spine    *Spine
	Cache    *Cache
	Build    ChunkBuilder
	Markers  MarkerIndexer
}

// NewNavigator wires a Spine, a fresh Cache, and the engine-supplied chunk
// builder/marker indexer together.
func NewNavigator(spine *Spine, build ChunkBuilder, markers MarkerIndexer) *Navigator {
	return &Navigator{Spine: spine, Cache: NewCache(), Build: build, Markers: markers}
}

// chunkDisplayList returns (building if needed) the display list for chunk
// idx, populating the cache.
func (nv *Navigator) chunkDisplayList(idx int) layout.DisplayList {
	if dl, ok := nv.Cache.Get(idx); ok {
		return dl
	}
	dl := nv.Build(idx)
	nv.Cache.Put(idx, dl)
	return dl
}

// pageIndexForOffset finds the page within dl whose offset range covers the
// global offset, by binary search over page start offsets, which are
// global too (spec.md 4.5: "binary-searchable").
func pageIndexForOffset(dl layout.DisplayList, offset int) int {
	lo, hi := 0, len(dl.Pages)-1
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		if dl.Pages[mid].Offset() <= offset {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

// Resolve implements resolve(Location) per spec.md 4.5.
func (nv *Navigator) Resolve(loc Location) (int, bool) {
	switch loc.Kind {
	case LocationExact:
		return nv.resolveExact(loc.Offset)
	case LocationPrevious:
		return nv.resolvePrevious(loc.Offset)
	case LocationNext:
		return nv.resolveNext(loc.Offset)
	case LocationUri:
		return nv.resolveUri(loc.Uri)
	case LocationLocalUri:
		return nv.resolveLocalUri(loc.Offset, loc.Uri)
	}
	return 0, false
}

func (nv *Navigator) resolveExact(offset int) (int, bool) {
	idx, ok := nv.Spine.ChunkIndexForOffset(offset)
	if !ok {
		return 0, false
	}
	dl := nv.chunkDisplayList(idx)
	pi := pageIndexForOffset(dl, offset)
	return dl.Pages[pi].Offset(), true
}

func (nv *Navigator) resolvePrevious(offset int) (int, bool) {
	idx, ok := nv.Spine.ChunkIndexForOffset(offset)
	if !ok {
		return 0, false
	}
	dl := nv.chunkDisplayList(idx)
	pi := pageIndexForOffset(dl, offset)
	if pi > 0 {
		return dl.Pages[pi-1].Offset(), true
	}
	if idx == 0 {
		return 0, false
	}
	prevDL := nv.chunkDisplayList(idx - 1)
	last := prevDL.Pages[len(prevDL.Pages)-1]
	return last.Offset(), true
}

func (nv *Navigator) resolveNext(offset int) (int, bool) {
	idx, ok := nv.Spine.ChunkIndexForOffset(offset)
	if !ok {
		return 0, false
	}
	dl := nv.chunkDisplayList(idx)
	pi := pageIndexForOffset(dl, offset)
	if pi+1 < len(dl.Pages) {
		return dl.Pages[pi+1].Offset(), true
	}
	if idx+1 >= len(nv.Spine.Chunks) {
		return 0, false
	}
	nextDL := nv.chunkDisplayList(idx + 1)
	return nextDL.Pages[0].Offset(), true
}

func (nv *Navigator) resolveUri(uri string) (int, bool) {
	path, fragment, hasFragment := splitFragment(uri)
	idx, ok := nv.Spine.ChunkIndexForPath(path)
	if !ok {
		return 0, false
	}
	if !hasFragment || fragment == "" {
		dl := nv.chunkDisplayList(idx)
		if len(dl.Pages) == 0 {
			return 0, false
		}
		return dl.Pages[0].Offset(), true
	}
	markers := nv.Markers(idx)
	local, ok := markers[fragment]
	if !ok {
		return 0, false
	}
	return nv.Spine.ChunkStart(idx) + local, true
}

func (nv *Navigator) resolveLocalUri(offset int, relative string) (int, bool) {
	idx, ok := nv.Spine.ChunkIndexForOffset(offset)
	if !ok {
		return 0, false
	}
	resolved := resolveRelative(nv.Spine.Chunks[idx].Path, relative)
	return nv.resolveUri(resolved)
}

func splitFragment(uri string) (path, fragment string, has bool) {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i], uri[i+1:], true
	}
	return uri, "", false
}

// resolveRelative resolves a relative href against base's directory, per
// archive-path convention: forward-slash, no "." / ".." normalization
// beyond the simple cases XHTML content actually uses.
func resolveRelative(base, relative string) string {
	if strings.Contains(relative, "/") && strings.HasPrefix(relative, "/") {
		return strings.TrimPrefix(relative, "/")
	}
	dir := ""
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		dir = base[:i+1]
	}
	parts := strings.Split(dir+relative, "/")
	var out []string
	for _, p := range parts {
		switch p {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

// PageForOffset returns the page covering a global offset, and that page's
// canonical offset, building the owning chunk on demand.
func (nv *Navigator) PageForOffset(offset int) (layout.Page, int, bool) {
	idx, ok := nv.Spine.ChunkIndexForOffset(offset)
	if !ok {
		return layout.Page{}, 0, false
	}
	dl := nv.chunkDisplayList(idx)
	pi := pageIndexForOffset(dl, offset)
	return dl.Pages[pi], dl.Pages[pi].Offset(), true
}

// IndexMarkers is the default MarkerIndexer building block: given a parsed
// chunk document, it walks every element and records the offset of each id
// attribute plus chunkBase. Engines wire this by parsing the archive entry
// and calling this with the resulting *dom.Document and a chunkBase of 0,
// since a MarkerIndexer returns chunk-local offsets.
func IndexMarkers(doc *dom.Document, chunkBase int) map[string]int {
	out := map[string]int{}
	var walk func(n *dom.Node)
	walk = func(n *dom.Node) {
		if n.Kind == dom.KindElement {
			if id := n.ID(); id != "" {
				out[id] = chunkBase + n.Offset
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(doc.Root)
	return out
}
