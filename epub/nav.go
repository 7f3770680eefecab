package epub

import (
	"sync"
)

// NavTemplate is the template name used to render the navigation document.
const NavTemplate = "nav.xhtml"

// LandmarkKind names a structural location a reader can jump to.
type LandmarkKind string

// Landmark kinds, in the order they are rendered.
const (
	LandmarkTOC        LandmarkKind = "toc"
	LandmarkBodymatter LandmarkKind = "bodymatter"
	LandmarkCover      LandmarkKind = "cover"
)

var landmarkOrder = []LandmarkKind{LandmarkTOC, LandmarkBodymatter, LandmarkCover}

// Anchor is a labelled link to a file in the package.
type Anchor struct {
	Label string
	Href  string
}

// Landmark is an Anchor tagged with its kind.
type Landmark struct {
	Kind LandmarkKind
	Anchor
}

// NavNode is one entry of the table of contents.
type NavNode struct {
	Label    string
	Href     string
	Children []*NavNode

	nav *Nav
}

// AddEntry appends a child entry pointing at h and returns it, so that
// further entries can be nested below it.
func (n *NavNode) AddEntry(label string, h Handle) *NavNode {
	n.nav.mu.Lock()
	defer n.nav.mu.Unlock()

	child := &NavNode{Label: label, Href: h.File().Path, nav: n.nav}
	n.Children = append(n.Children, child)
	return child
}

// Nav is the navigation tree of a book: an unlabeled root whose children are
// the top-level table of contents, plus at most one landmark per kind.
type Nav struct {
	mu        sync.Mutex
	root      NavNode
	landmarks map[LandmarkKind]Anchor
}

func newNav() *Nav {
	nav := &Nav{landmarks: make(map[LandmarkKind]Anchor)}
	nav.root.nav = nav
	return nav
}

// AddEntry appends a top-level entry.
func (nav *Nav) AddEntry(label string, h Handle) *NavNode {
	return nav.root.AddEntry(label, h)
}

// IsEmpty reports whether the tree has no top-level entries.
func (nav *Nav) IsEmpty() bool {
	nav.mu.Lock()
	defer nav.mu.Unlock()

	return len(nav.root.Children) == 0
}

// Entries returns the top-level entries.
func (nav *Nav) Entries() []*NavNode {
	nav.mu.Lock()
	defer nav.mu.Unlock()

	return append([]*NavNode(nil), nav.root.Children...)
}

// SetLandmark points the landmark of the given kind at h, replacing any
// previous value.
func (nav *Nav) SetLandmark(kind LandmarkKind, label string, h Handle) {
	nav.mu.Lock()
	defer nav.mu.Unlock()

	nav.landmarks[kind] = Anchor{Label: label, Href: h.File().Path}
}

// Landmarks returns the landmarks that have been set, always in the order
// toc, bodymatter, cover.
func (nav *Nav) Landmarks() []Landmark {
	nav.mu.Lock()
	defer nav.mu.Unlock()

	var out []Landmark
	for _, kind := range landmarkOrder {
		if a, ok := nav.landmarks[kind]; ok {
			out = append(out, Landmark{Kind: kind, Anchor: a})
		}
	}
	return out
}

// navDocument is the data passed to the navigation template.
type navDocument struct {
	Title     string
	Entries   []*NavNode
	Landmarks []Landmark
}

// Render produces the navigation document. The tree must not be modified
// while it renders.
func (nav *Nav) Render(r Renderer) (string, error) {
	return r.RenderXHTML(NavTemplate, navDocument{
		Title:     "Table of Contents",
		Entries:   nav.Entries(),
		Landmarks: nav.Landmarks(),
	})
}
