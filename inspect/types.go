// Package inspect reads EPUB 3 archives back into their structure: the
// mimetype entry, the package document (metadata, manifest, spine) and the
// navigation document (table of contents and landmarks).
//
// It is the reading counterpart of the epub package and is used to check
// what a build produced.
package inspect

import (
	"time"
)

// Package represents the parsed package document.
type Package struct {
	Path     string // archive path of the package document
	Version  string
	Metadata Metadata
	Manifest []ManifestItem // in document order
	Spine    []string       // manifest ids in reading order
}

// Item returns the manifest item with the given id.
func (p *Package) Item(id string) (ManifestItem, bool) {
	for _, item := range p.Manifest {
		if item.ID == id {
			return item, true
		}
	}
	return ManifestItem{}, false
}

// SpinePaths returns the hrefs of the spine items in reading order.
func (p *Package) SpinePaths() []string {
	paths := make([]string, 0, len(p.Spine))
	for _, id := range p.Spine {
		if item, ok := p.Item(id); ok {
			paths = append(paths, item.Href)
		}
	}
	return paths
}

// Metadata contains the Dublin Core and EPUB 3 metadata of a package.
type Metadata struct {
	Title       string
	Creator     []string
	Language    string
	Identifier  string
	Date        string
	Modified    time.Time
	Series      string
	SeriesIndex string
	Cover       string // manifest id named by <meta name="cover">
}

// ManifestItem represents a file in the EPUB.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
}

// HasProperty reports whether the item carries the given property.
func (m ManifestItem) HasProperty(prop string) bool {
	for _, p := range m.Properties {
		if p == prop {
			return true
		}
	}
	return false
}

// TOCEntry represents a single navigation entry.
type TOCEntry struct {
	Title    string
	Href     string
	Children []TOCEntry
}

// Landmark is one entry of the landmarks navigation.
type Landmark struct {
	Type  string
	Title string
	Href  string
}

// Entry describes one file of the archive in physical order.
type Entry struct {
	Name   string
	Stored bool // written without compression
	Size   uint64
}
