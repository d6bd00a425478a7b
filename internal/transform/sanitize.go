package transform

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var allowedTags = map[string]bool{
	"p": true, "br": true, "em": true, "strong": true, "a": true,
}

var allowedAttrs = map[string]map[string]bool{
	"a": {"href": true, "target": true},
}

// SanitizeHTML reduces markup to a small safe subset: p, br, em, strong and
// a (href/target only). Script and style content is dropped entirely; other
// disallowed elements are unwrapped, keeping their text.
func SanitizeHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}

	body := doc.Find("body")
	if len(body.Nodes) == 0 {
		return ""
	}

	var b strings.Builder
	for c := body.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		renderSafe(&b, c)
	}
	return strings.TrimSpace(b.String())
}

func renderSafe(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if name == "script" || name == "style" {
			return
		}
		if !allowedTags[name] {
			renderChildren(b, n)
			return
		}
		b.WriteString("<" + name)
		for _, attr := range n.Attr {
			key := strings.ToLower(attr.Key)
			if allowedAttrs[name][key] {
				b.WriteString(" " + key + `="` + html.EscapeString(attr.Val) + `"`)
			}
		}
		if name == "br" {
			b.WriteString("/>")
			return
		}
		b.WriteString(">")
		renderChildren(b, n)
		b.WriteString("</" + name + ">")
	}
}

func renderChildren(b *strings.Builder, n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderSafe(b, c)
	}
}
