package markup

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const (
	xhtmlNamespace = "http://www.w3.org/1999/xhtml"
	svgNamespace   = "http://www.w3.org/2000/svg"
	mathNamespace  = "http://www.w3.org/1998/Math/MathML"
	epubNamespace  = "http://www.idpf.org/2007/ops"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

// knownPrefixes are declared on the element that first uses them when the
// markup does not declare them itself.
var knownPrefixes = map[string]string{
	"epub":  epubNamespace,
	"xlink": xlinkNamespace,
}

// voidElements never have content and are written as empty-element tags.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Normalize parses markup as HTML, the way a browser would, and serializes
// the resulting document as well-formed XHTML with an XML declaration.
// Missing html, head and body elements are added, unclosed elements are
// closed, and text is NFC normalized. Characters XML cannot carry are
// dropped, invalid UTF-8 becomes U+FFFD, and elements whose names XML
// rejects or whose prefix is undeclared are replaced by their children.
func Normalize(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}
	return Serialize(doc), nil
}

// Serialize writes a parsed HTML document as XHTML.
func Serialize(doc *html.Node) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	writeNode(&b, doc)
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

func writeNode(b *strings.Builder, n *html.Node) {
	writeScoped(b, n, map[string]bool{"xml": true})
}

// writeScoped writes n with the set of namespace prefixes declared by its
// ancestors.
func writeScoped(b *strings.Builder, n *html.Node, declared map[string]bool) {
	switch n.Type {
	case html.DocumentNode:
		writeChildren(b, n, declared)
	case html.DoctypeNode:
		b.WriteString("<!DOCTYPE html>\n")
	case html.CommentNode:
		// The XML declaration of the input is parsed as a bogus comment.
		if strings.HasPrefix(n.Data, "?") {
			return
		}
		b.WriteString("<!--")
		b.WriteString(commentText(n.Data))
		b.WriteString("-->")
	case html.TextNode:
		b.WriteString(escapeText(norm.NFC.String(xmlChars(n.Data))))
	case html.ElementNode:
		writeElement(b, n, declared)
	case html.RawNode:
		b.WriteString(n.Data)
	}
}

func writeChildren(b *strings.Builder, n *html.Node, declared map[string]bool) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeScoped(b, c, declared)
	}
}

func writeElement(b *strings.Builder, n *html.Node, declared map[string]bool) {
	scope := declared
	declare := func(prefix string) {
		next := make(map[string]bool, len(scope)+1)
		for k := range scope {
			next[k] = true
		}
		next[prefix] = true
		scope = next
	}
	for _, a := range n.Attr {
		if prefix, ok := strings.CutPrefix(attrName(a), "xmlns:"); ok && a.Val != "" {
			declare(prefix)
		}
	}

	if !validName(n.Data) || !inScope(n.Data, scope) {
		writeChildren(b, n, declared)
		return
	}

	b.WriteByte('<')
	b.WriteString(n.Data)

	seen := make(map[string]bool, len(n.Attr)+1)
	if ns := rootNamespace(n); ns != "" && !hasAttr(n, "xmlns") {
		writeAttr(b, "xmlns", ns)
		seen["xmlns"] = true
	}
	for _, a := range n.Attr {
		name := attrName(a)
		if seen[name] || !validName(name) {
			continue
		}
		if strings.HasPrefix(name, "xmlns:") {
			if a.Val == "" {
				continue
			}
			seen[name] = true
			writeAttr(b, name, a.Val)
			continue
		}
		if !inScope(name, scope) {
			prefix, _, _ := strings.Cut(name, ":")
			ns, known := knownPrefixes[prefix]
			if !known {
				continue
			}
			decl := "xmlns:" + prefix
			if !seen[decl] {
				seen[decl] = true
				writeAttr(b, decl, ns)
			}
			declare(prefix)
		}
		seen[name] = true
		writeAttr(b, name, a.Val)
	}

	if n.FirstChild == nil && (voidElements[n.Data] || n.Namespace != "") {
		b.WriteString("/>")
		return
	}
	b.WriteByte('>')
	writeChildren(b, n, scope)
	b.WriteString("</")
	b.WriteString(n.Data)
	b.WriteByte('>')
}

func attrName(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}

// inScope reports whether the prefix of a qualified name, if any, has been
// declared.
func inScope(name string, declared map[string]bool) bool {
	prefix, _, ok := strings.Cut(name, ":")
	return !ok || prefix == "xmlns" || declared[prefix]
}

// rootNamespace returns the namespace an element must declare: the XHTML
// namespace on html and the foreign namespace on svg and math roots.
func rootNamespace(n *html.Node) string {
	switch {
	case n.Namespace == "" && n.Data == "html":
		return xhtmlNamespace
	case n.Namespace == "svg" && n.Data == "svg":
		return svgNamespace
	case n.Namespace == "math" && n.Data == "math":
		return mathNamespace
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func writeAttr(b *strings.Builder, name, val string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(escapeAttr(xmlChars(val)))
	b.WriteByte('"')
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

// xmlChars replaces invalid UTF-8 with U+FFFD and drops characters outside
// the XML 1.0 Char production.
func xmlChars(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r',
			r >= 0x20 && r <= 0xD7FF,
			r >= 0xE000 && r <= 0xFFFD,
			r >= 0x10000 && r <= unicode.MaxRune:
			return r
		}
		return -1
	}, s)
}

// commentText makes s safe inside <!-- -->: no "--" and no trailing "-".
func commentText(s string) string {
	s = xmlChars(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "- -")
	}
	if strings.HasSuffix(s, "-") {
		s += " "
	}
	return s
}

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// validName reports whether s can be written as an XML element or attribute
// name with at most one prefix. Loose HTML allows names such as `"foo"` that
// XML rejects.
func validName(s string) bool {
	if s == "" || s[0] == ':' || s[len(s)-1] == ':' || strings.Count(s, ":") > 1 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == ':':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
