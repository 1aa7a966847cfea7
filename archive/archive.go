// Package archive defines the port the engine uses to read a packaged
// document's member files, plus a zip-backed adapter. The engine package
// only ever depends on the Archive interface; concrete storage lives here so
// a future adapter (directory tree, in-memory map, network fetch) can be
// swapped in without touching C1-C9.
//
// Grounded on the teacher's archive.Walk (archive/walker.go): the zip-slip
// safe path check is kept verbatim, generalized from a prefix-matching
// visitor into a random-access OpenByName/List pair since nav/engine need to
// pull individual spine chunks and resources by name, not stream the whole
// archive once.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// Archive is the read-only port onto a packaged document's member files.
type Archive interface {
	// Open returns a reader for the named member. The caller must Close it.
	Open(name string) (io.ReadCloser, error)
	// Names lists every member path in archive order.
	Names() []string
	// Has reports whether name exists without opening it.
	Has(name string) bool
	Close() error
}

// ZipArchive adapts a zip file to the Archive port.
type ZipArchive struct {
	r     *zip.ReadCloser
	byName map[string]*zip.File
	names []string
}

// OpenZip opens path as a zip-backed Archive. Every entry is validated
// against path traversal and absolute-path zip-slip attacks up front;
// OpenZip fails closed on the first unsafe entry rather than silently
// dropping it, since a dropped spine chunk would corrupt pagination.
func OpenZip(path string) (*ZipArchive, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %q: %w", path, err)
	}
	a := &ZipArchive{r: r, byName: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			r.Close()
			return nil, fmt.Errorf("archive: entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		a.byName[name] = f
		a.names = append(a.names, name)
	}
	return a, nil
}

func (a *ZipArchive) Open(name string) (io.ReadCloser, error) {
	f, ok := a.byName[name]
	if !ok {
		return nil, fmt.Errorf("archive: no such entry %q", name)
	}
	return f.Open()
}

func (a *ZipArchive) Names() []string { return a.names }

func (a *ZipArchive) Has(name string) bool {
	_, ok := a.byName[name]
	return ok
}

func (a *ZipArchive) Close() error { return a.r.Close() }

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
