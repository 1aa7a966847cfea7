// Package nav maps global offsets to spine chunks and pages, caches each
// chunk's display list, and resolves the Location tagged variant spec.md
// 4.5 describes. It owns the global-offset space: (sum of sizes of
// preceding chunks) + (local offset within the current chunk).
//
// Grounded on the teacher having no spine/pagination model of its own
// (FictionBook is a single document, not a multi-chunk container); the
// cache-keyed-by-index, invalidate-on-settings-change pattern follows
// spec.md 9's "keep all engine tuning in one EngineConfig value" note,
// generalized from how the teacher's cmd/fbc passes a single Options value
// through its conversion pipeline rather than hiding tuning in globals.
package nav

import (
	"sort"

	"reflow/layout"
)

// Chunk is one spine item: its archive path and byte size, per spec.md 3's
// Spine Chunk.
type Chunk struct {
	Path string
	Size int
}

// Spine is the ordered list of chunks making up the book's linear reading
// order, plus the global-offset index derived from their sizes.
type Spine struct {
	Chunks      []Chunk
	chunkStarts []int // chunkStarts[i] = global offset where Chunks[i] begins
}

// NewSpine builds a Spine and its global-offset index.
func NewSpine(chunks []Chunk) *Spine {
	s := &Spine{Chunks: chunks}
	s.reindex()
	return s
}

func (s *Spine) reindex() {
	s.chunkStarts = make([]int, len(s.Chunks))
	total := 0
	for i, c := range s.Chunks {
		s.chunkStarts[i] = total
		total += c.Size
	}
}

// TotalSize is pages_count()'s byte-scaled proxy denominator (spec.md 6).
func (s *Spine) TotalSize() int {
	total := 0
	for _, c := range s.Chunks {
		total += c.Size
	}
	return total
}

// ChunkStart returns the global offset at which chunk i begins.
func (s *Spine) ChunkStart(i int) int {
	if i < 0 || i >= len(s.chunkStarts) {
		return 0
	}
	return s.chunkStarts[i]
}

// ChunkIndexForOffset returns the index of the chunk containing global
// offset o, by binary search over chunk start offsets (spec.md 4.5: "page
// index within a chunk: binary-searchable").
func (s *Spine) ChunkIndexForOffset(o int) (int, bool) {
	if len(s.Chunks) == 0 {
		return 0, false
	}
	i := sort.Search(len(s.chunkStarts), func(i int) bool {
		return s.chunkStarts[i] > o
	}) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(s.Chunks) {
		return 0, false
	}
	return i, true
}

// ChunkIndexForPath returns the index of the chunk at the given archive
// path, if any.
func (s *Spine) ChunkIndexForPath(path string) (int, bool) {
	for i, c := range s.Chunks {
		if c.Path == path {
			return i, true
		}
	}
	return 0, false
}

// Cache maps spine index to its built display list, populated lazily and
// cleared wholesale on any layout-affecting setting change (spec.md 3's
// Cache lifecycle).
type Cache struct {
	lists map[int]layout.DisplayList
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{lists: map[int]layout.DisplayList{}}
}

// Get returns the cached display list for a chunk index, if present.
func (c *Cache) Get(idx int) (layout.DisplayList, bool) {
	dl, ok := c.lists[idx]
	return dl, ok
}

// Put stores a freshly built display list.
func (c *Cache) Put(idx int, dl layout.DisplayList) {
	c.lists[idx] = dl
}

// Invalidate clears the entire cache. Any mutating setter (margin, font
// size, family, alignment, line height, page dims, DPI,
// ignore-document-css) must call this (spec.md 5's ordering guarantees).
func (c *Cache) Invalidate() {
	c.lists = map[int]layout.DisplayList{}
}
