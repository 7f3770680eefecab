package inspect

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// navDocument holds what was read from the navigation document.
type navDocument struct {
	toc       []TOCEntry
	landmarks []Landmark
}

// parseNavigation reads the table of contents and landmarks from an EPUB 3
// navigation document.
func parseNavigation(content []byte) (*navDocument, error) {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	nav := &navDocument{}
	if n := findNav(doc, "toc"); n != nil {
		if ol := findElement(n, "ol"); ol != nil {
			nav.toc = parseOLEntries(ol)
		}
	}
	if n := findNav(doc, "landmarks"); n != nil {
		if ol := findElement(n, "ol"); ol != nil {
			nav.landmarks = parseLandmarks(ol)
		}
	}
	return nav, nil
}

// findNav finds the <nav> element whose epub:type contains kind.
func findNav(n *html.Node, kind string) *html.Node {
	if n.Type == html.ElementNode && n.Data == "nav" {
		for _, t := range strings.Fields(attr(n, "epub:type")) {
			if t == kind {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNav(c, kind); found != nil {
			return found
		}
	}
	return nil
}

// findElement returns the first descendant element with the given tag.
func findElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// parseOLEntries parses TOC entries from an <ol> element.
func parseOLEntries(ol *html.Node) []TOCEntry {
	var entries []TOCEntry
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		entry := TOCEntry{}
		for el := c.FirstChild; el != nil; el = el.NextSibling {
			if el.Type != html.ElementNode {
				continue
			}
			switch el.Data {
			case "a":
				entry.Title = extractText(el)
				entry.Href = attr(el, "href")
			case "span":
				if entry.Title == "" {
					entry.Title = extractText(el)
				}
			case "ol":
				entry.Children = parseOLEntries(el)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseLandmarks(ol *html.Node) []Landmark {
	var out []Landmark
	for c := ol.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		if a := findElement(c, "a"); a != nil {
			out = append(out, Landmark{
				Type:  attr(a, "epub:type"),
				Title: extractText(a),
				Href:  attr(a, "href"),
			})
		}
	}
	return out
}

// extractText extracts all text content from an HTML node.
func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(extractText(c))
	}
	return strings.TrimSpace(text.String())
}
