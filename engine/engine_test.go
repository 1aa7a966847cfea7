package engine

import (
	"testing"

	"reflow/toc"
)

func openTestBook(t *testing.T) *Engine {
	t.Helper()
	path := buildEPUB(t, nil)
	e, err := Open(path, DefaultConfig(), nil, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestOpen_ParsesSpineAndDims(t *testing.T) {
	e := openTestBook(t)
	if e.PagesCount() <= 0 {
		t.Fatalf("expected positive PagesCount, got %d", e.PagesCount())
	}
	w, h := e.Dims()
	if w != 1404 || h != 1872 {
		t.Errorf("Dims() = (%d, %d), want (1404, 1872)", w, h)
	}
	if !e.IsReflowable() {
		t.Error("expected IsReflowable() true")
	}
	if !e.HasSyntheticPageNumbers() {
		t.Error("expected HasSyntheticPageNumbers() true")
	}
}

// firstPageOffset is the canonical offset of the book's first page: its first
// command is the Marker of <p id="start">, which begins at byte 73 of
// OEBPS/ch1.xhtml in buildEPUB's fixture.
const firstPageOffset = 73

func TestResolveLocation_Exact(t *testing.T) {
	e := openTestBook(t)
	off, ok := e.ResolveLocation(Exact(0))
	if !ok || off != firstPageOffset {
		t.Fatalf("ResolveLocation(Exact(0)) = (%d, %v), want (%d, true)", off, ok, firstPageOffset)
	}
}

func TestResolveLocation_AtUriWithFragment(t *testing.T) {
	e := openTestBook(t)
	off, ok := e.ResolveLocation(AtUri("OEBPS/ch2.xhtml#mid"))
	if !ok {
		t.Fatal("expected uri with fragment to resolve")
	}
	ch1Start := e.spine.ChunkStart(0)
	if off < ch1Start+e.spine.Chunks[0].Size {
		t.Errorf("expected offset inside chunk 2 (>= %d), got %d", ch1Start+e.spine.Chunks[0].Size, off)
	}
}

func TestResolveLocation_UnknownUriFails(t *testing.T) {
	e := openTestBook(t)
	if _, ok := e.ResolveLocation(AtUri("missing.xhtml")); ok {
		t.Fatal("expected unknown uri to fail to resolve")
	}
}

func TestWords_ReturnsTextCommandsForFirstPage(t *testing.T) {
	e := openTestBook(t)
	words, pageOff, err := e.Words(Exact(0))
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if pageOff != firstPageOffset {
		t.Errorf("expected first page offset %d, got %d", firstPageOffset, pageOff)
	}
	if len(words) == 0 {
		t.Fatal("expected at least one word rect on the first page")
	}
}

func TestLinks_FindsAnchorOnFirstChunk(t *testing.T) {
	e := openTestBook(t)
	links, _, err := e.Links(Exact(0))
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	found := false
	for _, l := range links {
		if l.Uri == "ch2.xhtml#mid" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected link to ch2.xhtml#mid among %+v", links)
	}
}

func TestImages_EmptyWhenNoImagesOnPage(t *testing.T) {
	e := openTestBook(t)
	images, _, err := e.Images(Exact(0))
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("expected no images, got %d", len(images))
	}
}

func TestPixmap_RastersFirstPage(t *testing.T) {
	e := openTestBook(t)
	fb, pageOff, warnings, err := e.Pixmap(Exact(0))
	if err != nil {
		t.Fatalf("Pixmap: %v", err)
	}
	if fb == nil {
		t.Fatal("expected non-nil framebuffer")
	}
	if pageOff != firstPageOffset {
		t.Errorf("expected page offset %d, got %d", firstPageOffset, pageOff)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no render warnings, got %+v", warnings)
	}
	w, h := fb.Bounds()
	if w != 1404 || h != 1872 {
		t.Errorf("framebuffer bounds = (%d, %d), want (1404, 1872)", w, h)
	}
}

func TestTOC_ParsedAndResolved(t *testing.T) {
	e := openTestBook(t)
	tree, ok := e.TOC()
	if !ok {
		t.Fatal("expected a TOC to be present")
	}
	if len(tree.Roots) != 2 {
		t.Fatalf("expected 2 top-level TOC entries, got %d", len(tree.Roots))
	}
	if tree.Roots[0].Title != "Chapter One" {
		t.Errorf("first entry title = %q, want %q", tree.Roots[0].Title, "Chapter One")
	}
}

func TestChapter_ReturnsEntryForOffset(t *testing.T) {
	e := openTestBook(t)
	entry, ok := e.Chapter(0)
	if !ok {
		t.Fatal("expected Chapter(0) to find an entry")
	}
	if entry.Title != "Chapter One" {
		t.Errorf("Chapter(0).Title = %q, want %q", entry.Title, "Chapter One")
	}
}

func TestChapterRelative_ForwardFindsNextChapter(t *testing.T) {
	e := openTestBook(t)
	entry, ok := e.ChapterRelative(0, toc.DirForward)
	if !ok {
		t.Fatal("expected a forward chapter relative to the start")
	}
	if entry.Title != "Chapter Two" {
		t.Errorf("ChapterRelative forward title = %q, want %q", entry.Title, "Chapter Two")
	}
}

func TestMetadata_ReturnsDublinCoreFields(t *testing.T) {
	e := openTestBook(t)
	title, ok := e.Metadata("title")
	if !ok || title != "Test Book" {
		t.Errorf("Metadata(title) = (%q, %v), want (%q, true)", title, ok, "Test Book")
	}
	creator, ok := e.Metadata("creator")
	if !ok || creator != "Jane Author" {
		t.Errorf("Metadata(creator) = (%q, %v), want (%q, true)", creator, ok, "Jane Author")
	}
	if _, ok := e.Metadata("nonexistent"); ok {
		t.Error("expected Metadata(nonexistent) to fail")
	}
}

func TestSetFontSize_InvalidatesCache(t *testing.T) {
	e := openTestBook(t)
	// Warm the cache for chunk 0.
	if _, _, err := e.Words(Exact(0)); err != nil {
		t.Fatalf("Words: %v", err)
	}
	if _, ok := e.navi.Cache.Get(0); !ok {
		t.Fatal("expected chunk 0 display list to be cached")
	}
	e.SetFontSize(16)
	if _, ok := e.navi.Cache.Get(0); ok {
		t.Fatal("expected SetFontSize to invalidate the display-list cache")
	}
}

func TestSetIgnoreDocumentCSS_InvalidatesCache(t *testing.T) {
	e := openTestBook(t)
	if _, _, err := e.Words(Exact(0)); err != nil {
		t.Fatalf("Words: %v", err)
	}
	e.SetIgnoreDocumentCSS(true)
	if _, ok := e.navi.Cache.Get(0); ok {
		t.Fatal("expected SetIgnoreDocumentCSS to invalidate the display-list cache")
	}
}

func TestLayout_ChangesDimsAndInvalidatesCache(t *testing.T) {
	e := openTestBook(t)
	if _, _, err := e.Words(Exact(0)); err != nil {
		t.Fatalf("Words: %v", err)
	}
	e.Layout(800, 600, 12, 150)
	w, h := e.Dims()
	if w != 800 || h != 600 {
		t.Errorf("Dims() after Layout = (%d, %d), want (800, 600)", w, h)
	}
	if _, ok := e.navi.Cache.Get(0); ok {
		t.Fatal("expected Layout to invalidate the display-list cache")
	}
}

func TestOpen_MissingContainerFails(t *testing.T) {
	// A zip with no META-INF/container.xml at all: build directly rather
	// than via buildEPUB's defaults, which always include one.
	path := buildBrokenZip(t, map[string]string{"hello.txt": "not a book"})
	if _, err := Open(path, DefaultConfig(), nil, nil, nil); err == nil {
		t.Fatal("expected Open to fail for a zip with no container.xml")
	}
}
