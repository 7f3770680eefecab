// Package markup renders the XHTML documents of a book.
//
// A Renderer executes named templates. The default set, embedded in the
// binary, covers the navigation document (nav.xhtml), the cover title page
// (titlepage.xhtml), chapter pages (chapter.xhtml) and the table of contents
// page (toc.xhtml). RenderXHTML passes the output through Normalize, which
// turns loosely formed HTML into well-formed XHTML, so content scraped from
// the web can be embedded in a template without further cleanup.
package markup

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Template names in the default set.
const (
	NavTemplate       = "nav.xhtml"
	TitlePageTemplate = "titlepage.xhtml"
	ChapterTemplate   = "chapter.xhtml"
	TOCTemplate       = "toc.xhtml"
)

// ErrNoTemplate is returned when rendering a template that does not exist.
var ErrNoTemplate = errors.New("markup: no such template")

//go:embed templates/*
var templateFS embed.FS

// Renderer executes named text templates. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer returns a Renderer holding the default templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

var defaultRenderer = sync.OnceValue(func() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns a shared Renderer holding the default templates.
func Default() *Renderer {
	return defaultRenderer()
}

// With returns a copy of r in which the template name is defined by text,
// replacing any template of the same name. r itself is not modified.
func (r *Renderer) With(name, text string) (*Renderer, error) {
	clone, err := r.tmpl.Clone()
	if err != nil {
		return nil, err
	}
	if _, err := clone.New(name).Parse(text); err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return &Renderer{tmpl: clone}, nil
}

// Render executes the named template.
func (r *Renderer) Render(name string, data any) (string, error) {
	t := r.tmpl.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrNoTemplate, name)
	}

	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return b.String(), nil
}

// RenderXHTML executes the named template and normalizes the result into
// well-formed XHTML.
func (r *Renderer) RenderXHTML(name string, data any) (string, error) {
	out, err := r.Render(name, data)
	if err != nil {
		return "", err
	}
	return Normalize(out)
}

// TitlePage is the data of the cover title page template.
type TitlePage struct {
	Title  string
	Alt    string
	Image  string // path of the cover image
	Width  int
	Height int
}

// ChapterPage is the data of the chapter template.
type ChapterPage struct {
	Title       string
	Author      string
	Language    string
	Stylesheets []string
	Body        string // raw markup, normalized with the rest of the page
}

// TOCPage is the data of the table of contents page template.
type TOCPage struct {
	Title       string
	Language    string
	Stylesheets []string
	Sections    []TOCSection
}

// TOCSection groups table of contents entries under an optional heading.
type TOCSection struct {
	Title   string
	Entries []TOCEntry
}

// TOCEntry is one line of the table of contents page.
type TOCEntry struct {
	Title  string
	Author string
	Href   string
}
