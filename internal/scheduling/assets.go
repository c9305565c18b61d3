// Package scheduling embeds the hosted booking widget into rendered pages and builds the
// popup options prefilled from a validated lead record.
package scheduling

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	DefaultScriptSrc      = "https://assets.calendly.com/assets/external/widget.js"
	DefaultStylesheetHref = "https://assets.calendly.com/assets/external/widget.css"
)

// AssetLoader adds the widget script and stylesheet to a document's <head>. Assets are
// injected once per document and never removed; Inject is safe to call from every
// component that may open the widget.
type AssetLoader struct {
	ScriptSrc      string
	StylesheetHref string
}

func DefaultAssetLoader() AssetLoader {
	return AssetLoader{ScriptSrc: DefaultScriptSrc, StylesheetHref: DefaultStylesheetHref}
}

// Inject reports whether it added anything.
func (l AssetLoader) Inject(doc *html.Node) bool {
	head := findFirst(doc, atom.Head)
	if head == nil {
		return false
	}

	added := false
	if findAttr(doc, atom.Script, "src", l.ScriptSrc) == nil {
		head.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Script,
			Data:     "script",
			Attr: []html.Attribute{
				{Key: "src", Val: l.ScriptSrc},
				{Key: "async"},
			},
		})
		added = true
	}
	if findAttr(doc, atom.Link, "href", l.StylesheetHref) == nil {
		head.AppendChild(&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Link,
			Data:     "link",
			Attr: []html.Attribute{
				{Key: "href", Val: l.StylesheetHref},
				{Key: "rel", Val: "stylesheet"},
			},
		})
		added = true
	}
	return added
}

// Loaded reports whether both assets are present.
func (l AssetLoader) Loaded(doc *html.Node) bool {
	if doc == nil {
		return false
	}
	return findAttr(doc, atom.Script, "src", l.ScriptSrc) != nil &&
		findAttr(doc, atom.Link, "href", l.StylesheetHref) != nil
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func findAttr(n *html.Node, a atom.Atom, key, val string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == a {
		for _, attr := range n.Attr {
			if attr.Key == key && attr.Val == val {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAttr(c, a, key, val); found != nil {
			return found
		}
	}
	return nil
}
