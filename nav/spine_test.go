package nav_test

import (
	"testing"

	"reflow/nav"
)

func testSpine() *nav.Spine {
	return nav.NewSpine([]nav.Chunk{
		{Path: "ch1.html", Size: 100},
		{Path: "ch2.html", Size: 50},
		{Path: "ch3.html", Size: 200},
	})
}

func TestSpine_ChunkStart(t *testing.T) {
	s := testSpine()
	if s.ChunkStart(0) != 0 || s.ChunkStart(1) != 100 || s.ChunkStart(2) != 150 {
		t.Fatalf("unexpected chunk starts: %d %d %d", s.ChunkStart(0), s.ChunkStart(1), s.ChunkStart(2))
	}
	if s.TotalSize() != 350 {
		t.Errorf("expected total size 350, got %d", s.TotalSize())
	}
}

func TestSpine_ChunkIndexForOffset(t *testing.T) {
	s := testSpine()
	cases := []struct {
		offset int
		want   int
	}{
		{0, 0}, {99, 0}, {100, 1}, {149, 1}, {150, 2}, {349, 2},
	}
	for _, c := range cases {
		idx, ok := s.ChunkIndexForOffset(c.offset)
		if !ok || idx != c.want {
			t.Errorf("offset %d: got idx=%d ok=%v, want %d", c.offset, idx, ok, c.want)
		}
	}
}

func TestSpine_ChunkIndexForOffset_OutOfRange(t *testing.T) {
	s := testSpine()
	if _, ok := s.ChunkIndexForOffset(1000); ok {
		t.Error("expected out-of-range offset to fail")
	}
}

func TestSpine_ChunkIndexForPath(t *testing.T) {
	s := testSpine()
	idx, ok := s.ChunkIndexForPath("ch2.html")
	if !ok || idx != 1 {
		t.Errorf("expected ch2.html at index 1, got %d ok=%v", idx, ok)
	}
	if _, ok := s.ChunkIndexForPath("missing.html"); ok {
		t.Error("expected missing path to fail")
	}
}

func TestCache_PutGetInvalidate(t *testing.T) {
	c := nav.NewCache()
	if _, ok := c.Get(0); ok {
		t.Fatal("expected empty cache miss")
	}
	c.Put(0, emptyDL())
	if _, ok := c.Get(0); !ok {
		t.Fatal("expected cache hit after Put")
	}
	c.Invalidate()
	if _, ok := c.Get(0); ok {
		t.Error("expected cache miss after Invalidate")
	}
}
