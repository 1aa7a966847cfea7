package engine

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"reflow/archive"
	"reflow/css"
	"reflow/dom"
	"reflow/layout"
)

// loadChunkDocument reads and parses one spine chunk's XHTML payload.
func loadChunkDocument(a archive.Archive, chunkPath string) (*dom.Document, error) {
	r, err := a.Open(chunkPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	parsed, err := dom.Build(data)
	if err != nil {
		return nil, err
	}
	root := parsed.Root
	if len(root.Children) == 1 && root.Children[0].Kind == dom.KindElement {
		root = root.Children[0]
	}
	return dom.NewDocument(root), nil
}

// documentSheets walks doc for <link rel="stylesheet"> and <style> elements
// and parses each into a LevelDocument stylesheet, per spec.md 6's "<head>
// <link>/<style> for per-document CSS".
func documentSheets(a archive.Archive, chunkPath string, doc *dom.Document, log *zap.Logger) []css.LeveledSheet {
	var sheets []css.LeveledSheet
	parser := css.NewParser(log)
	var walk func(n *dom.Node)
	walk = func(n *dom.Node) {
		if n.Kind == dom.KindElement {
			switch strings.ToLower(n.Name) {
			case "link":
				if rel, _ := n.Attr("rel"); strings.EqualFold(rel, "stylesheet") {
					if href, ok := n.Attr("href"); ok {
						if data, err := readLinkedSheet(a, chunkPath, href); err == nil {
							sheets = append(sheets, css.LeveledSheet{Sheet: parser.Parse(data, href), Level: css.LevelDocument})
						}
					}
				}
			case "style":
				text := collectText(n)
				if strings.TrimSpace(text) != "" {
					sheets = append(sheets, css.LeveledSheet{Sheet: parser.Parse([]byte(text), chunkPath+"#style"), Level: css.LevelDocument})
				}
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(doc.Root)
	return sheets
}

func collectText(n *dom.Node) string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Kind == dom.KindText || c.Kind == dom.KindWhitespace {
			sb.WriteString(c.Text)
		}
	}
	return sb.String()
}

func readLinkedSheet(a archive.Archive, chunkPath, href string) ([]byte, error) {
	target := resolveRelativePath(chunkPath, href)
	r, err := a.Open(target)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// resolveRelativePath resolves href relative to base's directory.
func resolveRelativePath(base, href string) string {
	dir := ""
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		dir = base[:i+1]
	}
	parts := strings.Split(dir+href, "/")
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

// buildSheets assembles the full cascade (viewer < user < document) for one
// chunk, honoring IgnoreDocumentCSS.
func (e *Engine) buildSheets(chunkPath string, doc *dom.Document) []css.LeveledSheet {
	sheets := []css.LeveledSheet{layout.DefaultStylesheet(e.log)}
	if len(e.cfg.ViewerCSS) > 0 {
		sheets = append(sheets, css.LeveledSheet{Sheet: css.NewParser(e.log).Parse(e.cfg.ViewerCSS, "epub.css"), Level: css.LevelViewer})
	}
	if len(e.cfg.UserCSS) > 0 {
		sheets = append(sheets, css.LeveledSheet{Sheet: css.NewParser(e.log).Parse(e.cfg.UserCSS, "user.css"), Level: css.LevelUser})
	}
	if !e.cfg.IgnoreDocumentCSS {
		sheets = append(sheets, documentSheets(e.archive, chunkPath, doc, e.log)...)
	}
	return sheets
}
