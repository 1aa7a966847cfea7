package engine

import "fmt"

// ArchiveError reports a fatal problem opening or parsing the packaged
// document's structural files (container.xml, the package document, or
// the spine), per spec.md 6's open() error guarantee.
type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("engine: archive error at %q: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// FontInitError reports that a required bundled font could not be opened.
// Per spec.md 7, this fails the layout attempt that triggered it and keeps
// failing until the font service is replaced.
type FontInitError struct {
	Kind string
	Err  error
}

func (e *FontInitError) Error() string {
	return fmt.Sprintf("engine: font init error for %q: %v", e.Kind, e.Err)
}

func (e *FontInitError) Unwrap() error { return e.Err }
