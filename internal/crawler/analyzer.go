package crawler

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// semanticElements are HTML5 sectioning elements used to describe where on
// a page an image sits.
var semanticElements = map[string]bool{
	"header":  true,
	"nav":     true,
	"main":    true,
	"section": true,
	"article": true,
	"aside":   true,
	"footer":  true,
}

// locationKeywords mark id/class values that indicate a recognizable page
// region even without semantic markup.
var locationKeywords = []string{
	"header", "nav", "menu", "sidebar", "footer",
	"content", "main", "banner", "hero", "gallery",
}

// maxAncestorDepth bounds the upward DOM walk when deriving a location.
const maxAncestorDepth = 10

// ImageElement is one <img> occurrence on a page.
type ImageElement struct {
	// Src is the raw src attribute value, unresolved.
	Src string

	// Alt is the alt attribute value.
	Alt string

	// Context describes the image's location on the page, derived from
	// semantic ancestors or a nearby heading.
	Context string
}

// Document is a parsed HTML page.
// It exposes only what the crawl needs: the title, anchor hrefs, and image
// elements. Hrefs and srcs are returned raw; the Resolver owns resolution.
type Document struct {
	doc *goquery.Document
}

// ParseHTML parses HTML bytes into a Document.
// Parsing is lenient: malformed markup yields a best-effort tree, never an
// error, matching browser tolerance. Non-UTF-8 content is transcoded using
// the charset from the Content-Type header or an in-document declaration;
// if transcoding fails the raw bytes are parsed as-is rather than failing
// the page.
func ParseHTML(data []byte, contentType string) (*Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		reader = bytes.NewReader(data)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		// html.Parse only fails on reader errors; retry from the raw bytes
		// so a broken charset stream still produces a tree.
		doc, err = goquery.NewDocumentFromReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	}

	return &Document{doc: doc}, nil
}

// Title returns the text of the first <title> element.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// Anchors returns the href attribute of every <a href> element in document
// order, unresolved and undeduplicated.
func (d *Document) Anchors() []string {
	hrefs := make([]string, 0)
	d.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
			hrefs = append(hrefs, strings.TrimSpace(href))
		}
	})
	return hrefs
}

// Images returns every <img src> element in document order with its alt
// text and derived location context.
func (d *Document) Images() []ImageElement {
	images := make([]ImageElement, 0)
	d.doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		src = strings.TrimSpace(src)
		if !ok || src == "" {
			return
		}
		images = append(images, ImageElement{
			Src:     src,
			Alt:     strings.TrimSpace(sel.AttrOr("alt", "")),
			Context: locationOf(sel),
		})
	})
	return images
}

// locationOf derives a human-readable location for an element by walking up
// its ancestors, collecting semantic element names and meaningful id/class
// values, outermost first. When nothing meaningful is found it falls back
// to the nearest preceding heading.
func locationOf(sel *goquery.Selection) string {
	indicators := make([]string, 0, 4)

	parent := sel.Parent()
	for depth := 0; depth < maxAncestorDepth && parent.Length() > 0; depth++ {
		name := goquery.NodeName(parent)
		if semanticElements[name] {
			indicators = append(indicators, name)
		}
		if id, ok := parent.Attr("id"); ok && id != "" {
			indicators = append(indicators, "#"+id)
		}
		if class, ok := parent.Attr("class"); ok {
			if kw := keywordClass(class); kw != "" {
				indicators = append(indicators, "."+kw)
			}
		}
		parent = parent.Parent()
	}

	if len(indicators) == 0 {
		if heading := precedingHeading(sel); heading != "" {
			return "Near heading: " + heading
		}
		return ""
	}

	// Outermost ancestor first reads naturally: "header > nav"
	reversed := make([]string, 0, len(indicators))
	for i := len(indicators) - 1; i >= 0; i-- {
		reversed = append(reversed, indicators[i])
	}
	return strings.Join(reversed, " > ")
}

// keywordClass returns the first class value containing a location keyword.
func keywordClass(classAttr string) string {
	for _, cls := range strings.Fields(classAttr) {
		lower := strings.ToLower(cls)
		for _, kw := range locationKeywords {
			if strings.Contains(lower, kw) {
				return cls
			}
		}
	}
	return ""
}

// headingTag reports whether a node is h1..h6.
func headingTag(n *html.Node) bool {
	if n.Type != html.ElementNode || len(n.Data) != 2 {
		return false
	}
	return n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6'
}

// precedingHeading returns the text of the closest heading before the
// element in document order, truncated to a label-sized snippet.
func precedingHeading(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}

	for n := previousInDocument(sel.Nodes[0]); n != nil; n = previousInDocument(n) {
		if headingTag(n) {
			text := strings.TrimSpace(nodeText(n))
			if text == "" {
				continue
			}
			return truncateRunes(text, 50)
		}
	}
	return ""
}

// truncateRunes shortens a snippet to at most max runes. Cutting on a
// byte index could split a multi-byte rune and leave invalid UTF-8.
func truncateRunes(s string, max int) string {
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// previousInDocument steps one node backwards in document order: the
// deepest last descendant of the previous sibling, or the parent.
func previousInDocument(n *html.Node) *html.Node {
	if n.PrevSibling != nil {
		n = n.PrevSibling
		for n.LastChild != nil {
			n = n.LastChild
		}
		return n
	}
	return n.Parent
}

// nodeText collects the text content of a node subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
