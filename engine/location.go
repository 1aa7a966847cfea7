package engine

import "reflow/nav"

// Location re-exports the nav package's tagged variant at the public API
// boundary (spec.md 4.5), so callers never need to import package nav
// directly.
type Location = nav.Location

func Exact(offset int) Location              { return nav.Exact(offset) }
func Previous(offset int) Location           { return nav.Previous(offset) }
func Next(offset int) Location               { return nav.Next(offset) }
func AtUri(uri string) Location              { return nav.AtUri(uri) }
func LocalUri(offset int, rel string) Location { return nav.LocalUri(offset, rel) }
