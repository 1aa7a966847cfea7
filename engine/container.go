package engine

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"reflow/archive"
	"reflow/nav"
)

// manifestItem is one <manifest><item> entry: id, href (archive-relative,
// already percent-decoded), and media type.
type manifestItem struct {
	ID, Href, MediaType string
}

// packageInfo is everything Open extracts from container.xml + the
// package document, per spec.md 6's consumed archive interface.
type packageInfo struct {
	packagePath string // archive path to the .opf, used to resolve manifest hrefs
	manifest    map[string]manifestItem
	spineIDs    []string // spine/itemref/@idref, in order
	tocID       string   // spine/@toc, if present (NCX id)
}

func newEtreeDocument(log *zap.Logger) *etree.Document {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charsetReader(log),
		ValidateInput: false,
		Permissive:    true,
	}
	return doc
}

// readEtree opens name from a and parses it permissively.
func readEtree(a archive.Archive, name string, log *zap.Logger) (*etree.Document, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	doc := newEtreeDocument(log)
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("engine: parse %q: %w", name, err)
	}
	return doc, nil
}

// parseContainer resolves META-INF/container.xml's rootfile/@full-path.
func parseContainer(a archive.Archive, log *zap.Logger) (string, error) {
	const containerPath = "META-INF/container.xml"
	doc, err := readEtree(a, containerPath, log)
	if err != nil {
		return "", &ArchiveError{Path: containerPath, Err: err}
	}
	rootfile := doc.FindElement("//rootfiles/rootfile")
	if rootfile == nil {
		return "", &ArchiveError{Path: containerPath, Err: fmt.Errorf("no rootfile element found")}
	}
	full := rootfile.SelectAttrValue("full-path", "")
	if full == "" {
		return "", &ArchiveError{Path: containerPath, Err: fmt.Errorf("rootfile has no full-path attribute")}
	}
	return decodePath(full), nil
}

// parsePackage parses the package document: manifest items, spine order,
// and the spine's toc reference.
func parsePackage(a archive.Archive, packagePath string, log *zap.Logger) (*packageInfo, error) {
	doc, err := readEtree(a, packagePath, log)
	if err != nil {
		return nil, &ArchiveError{Path: packagePath, Err: err}
	}

	info := &packageInfo{packagePath: packagePath, manifest: map[string]manifestItem{}}

	manifestEl := doc.FindElement("//manifest")
	if manifestEl == nil {
		return nil, &ArchiveError{Path: packagePath, Err: fmt.Errorf("no manifest element")}
	}
	for _, item := range manifestEl.ChildElements() {
		if localName(item.Tag) != "item" {
			continue
		}
		id := item.SelectAttrValue("id", "")
		href := decodePath(item.SelectAttrValue("href", ""))
		if id == "" || href == "" {
			continue
		}
		info.manifest[id] = manifestItem{ID: id, Href: href, MediaType: item.SelectAttrValue("media-type", "")}
	}

	spineEl := doc.FindElement("//spine")
	if spineEl == nil {
		return nil, &ArchiveError{Path: packagePath, Err: fmt.Errorf("no spine element")}
	}
	info.tocID = spineEl.SelectAttrValue("toc", "")
	for _, itemref := range spineEl.ChildElements() {
		if localName(itemref.Tag) != "itemref" {
			continue
		}
		if idref := itemref.SelectAttrValue("idref", ""); idref != "" {
			info.spineIDs = append(info.spineIDs, idref)
		}
	}
	if len(info.spineIDs) == 0 {
		return nil, &ArchiveError{Path: packagePath, Err: fmt.Errorf("spine has no itemref entries")}
	}
	return info, nil
}

func localName(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// decodePath percent-decodes and forward-slash-normalizes a manifest/
// container path, per spec.md 6.
func decodePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if dec, err := url.PathUnescape(p); err == nil {
		p = dec
	}
	return p
}

// resolveHref resolves a manifest item's href (relative to the package
// document's directory) to a full archive path.
func resolveHref(packagePath, href string) string {
	dir := path.Dir(packagePath)
	if dir == "." {
		return href
	}
	return path.Join(dir, href)
}

// buildSpine turns the package info's spine/manifest into a nav.Spine,
// reading each chunk once (purely for its byte size) via a.
func buildSpine(a archive.Archive, info *packageInfo) (*nav.Spine, []string, error) {
	var chunks []nav.Chunk
	var paths []string
	for _, id := range info.spineIDs {
		item, ok := info.manifest[id]
		if !ok {
			continue
		}
		chunkPath := resolveHref(info.packagePath, item.Href)
		size, err := entrySize(a, chunkPath)
		if err != nil {
			return nil, nil, &ArchiveError{Path: chunkPath, Err: err}
		}
		chunks = append(chunks, nav.Chunk{Path: chunkPath, Size: size})
		paths = append(paths, chunkPath)
	}
	if len(chunks) == 0 {
		return nil, nil, &ArchiveError{Path: info.packagePath, Err: fmt.Errorf("no spine chunks resolved from manifest")}
	}
	return nav.NewSpine(chunks), paths, nil
}

func entrySize(a archive.Archive, name string) (int, error) {
	r, err := a.Open(name)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	n, err := io.Copy(io.Discard, r)
	return int(n), err
}

// tocPath resolves the package's NCX reference to an archive path, if any.
func (info *packageInfo) tocPath() (string, bool) {
	if info.tocID == "" {
		return "", false
	}
	item, ok := info.manifest[info.tocID]
	if !ok {
		return "", false
	}
	return resolveHref(info.packagePath, item.Href), true
}
