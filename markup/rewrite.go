package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// linkAttrs are the attributes Rewrite inspects.
var linkAttrs = map[string]bool{"src": true, "href": true}

// Rewrite replaces every src and href attribute value that is a key of
// mapping with the mapped value, and returns the document as XHTML. It is
// used to point image references in source markup at the paths the images
// were given in the package.
func Rewrite(markup string, mapping map[string]string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}
	rewriteLinks(doc, mapping)
	return Serialize(doc), nil
}

func rewriteLinks(n *html.Node, mapping map[string]string) {
	if n.Type == html.ElementNode {
		for i, a := range n.Attr {
			if !linkAttrs[a.Key] {
				continue
			}
			if to, ok := mapping[a.Val]; ok {
				n.Attr[i].Val = to
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteLinks(c, mapping)
	}
}

// Links returns the distinct src and href attribute values of markup in
// document order.
func Links(markup string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	var links []string
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if linkAttrs[a.Key] && a.Val != "" && !seen[a.Val] {
					seen[a.Val] = true
					links = append(links, a.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}
