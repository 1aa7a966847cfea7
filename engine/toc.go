package engine

import (
	"io"
	"strings"

	"reflow/nav"
	"reflow/toc"
)

func (e *Engine) loadTOC(tocPath string) (*toc.Tree, error) {
	r, err := e.archive.Open(tocPath)
	if err != nil {
		return nil, &ArchiveError{Path: tocPath, Err: err}
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ArchiveError{Path: tocPath, Err: err}
	}
	tree, err := toc.Parse(data)
	if err != nil {
		return nil, &ArchiveError{Path: tocPath, Err: err}
	}
	// content/@src is relative to the NCX's own directory, not an archive
	// path, so it needs the same resolution a chunk-relative href does
	// before nav.AtUri (which expects a full archive path) can use it.
	tree.ResolveOffsets(func(uri string) (int, bool) {
		path, fragment, hasFragment := strings.Cut(uri, "#")
		resolved := resolveRelativePath(tocPath, path)
		if hasFragment {
			resolved += "#" + fragment
		}
		return e.navi.Resolve(nav.AtUri(resolved))
	})
	return tree, nil
}

// TOC is toc(): the optional tree of {title, Uri location, preorder index,
// children} (spec.md 6). Returns false if the package had no NCX entry.
func (e *Engine) TOC() (*toc.Tree, bool) {
	return e.tocTree, e.hasTOC
}

// pageSpan returns the [start, end) global-offset range of the page
// covering offset, for Chapter/ChapterRelative lookups.
func (e *Engine) pageSpan(offset int) (toc.PageSpan, bool) {
	_, pageOff, ok := e.navi.PageForOffset(offset)
	if !ok {
		return toc.PageSpan{}, false
	}
	idx, _ := e.spine.ChunkIndexForOffset(offset)
	end := e.spine.ChunkStart(idx) + e.spine.Chunks[idx].Size
	if next, ok := e.navi.Resolve(nav.Next(pageOff)); ok && next > pageOff {
		// The page ends where the following page starts; only the book's
		// last page falls back to its chunk's end.
		end = next
	}
	return toc.PageSpan{Start: pageOff, End: end}, true
}

// Chapter is chapter(offset, toc): the best TOC entry for the page span
// containing offset.
func (e *Engine) Chapter(offset int) (*toc.Entry, bool) {
	if !e.hasTOC {
		return nil, false
	}
	span, ok := e.pageSpan(offset)
	if !ok {
		return nil, false
	}
	return e.tocTree.Chapter(span)
}

// ChapterRelative is chapter_relative(offset, dir, toc): the neighbour
// entry whose offset is outside the current page span.
func (e *Engine) ChapterRelative(offset int, dir toc.Direction) (*toc.Entry, bool) {
	if !e.hasTOC {
		return nil, false
	}
	span, ok := e.pageSpan(offset)
	if !ok {
		return nil, false
	}
	return e.tocTree.ChapterRelative(span, dir)
}
