package engine

import (
	"html"
	"strings"
)

// Metadata is metadata(key): the first text child of the package
// document's <metadata> element matching the given Dublin Core name
// (e.g. "title", "creator", "language"), entity-decoded, per spec.md 6.
func (e *Engine) Metadata(key string) (string, bool) {
	doc, err := readEtree(e.archive, e.pkg.packagePath, e.log)
	if err != nil {
		return "", false
	}
	metaEl := doc.FindElement("//metadata")
	if metaEl == nil {
		return "", false
	}
	key = strings.ToLower(key)
	for _, child := range metaEl.ChildElements() {
		if strings.ToLower(localName(child.Tag)) == key {
			return html.UnescapeString(strings.TrimSpace(child.Text())), true
		}
	}
	return "", false
}
