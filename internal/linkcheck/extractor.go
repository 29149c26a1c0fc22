package linkcheck

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// Link is a reference found in rendered HTML.
type Link struct {
	URL       string
	Text      string
	Tag       string
	Attribute string
}

// linkAttrs maps elements to the attribute carrying their reference.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"video":  "src",
	"audio":  "src",
	"source": "src",
	"iframe": "src",
}

// ExtractLinks returns the references of r in document order. Fragments of
// HTML are accepted.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	var links []Link
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				if v := getAttr(n, attr); v != "" {
					text := extractText(n)
					if n.Data == "img" {
						text = getAttr(n, "alt")
					}
					links = append(links, Link{URL: v, Text: text, Tag: n.Data, Attribute: attr})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return links, nil
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}
	return strings.TrimSpace(text.String())
}

// IsInternal reports whether link addresses a node of the output tree rather
// than an external resource.
func IsInternal(link string) bool {
	if link == "" {
		return false
	}
	for _, prefix := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(link, prefix) {
			return false
		}
	}
	u, err := url.Parse(link)
	if err != nil {
		// Malformed references are reported by the lookup.
		return true
	}
	return u.Scheme == "" && u.Host == ""
}
