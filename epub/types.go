// Package epub assembles EPUB 3 containers incrementally.
//
// An Epub owns the manifest, the spine and the navigation tree of one book.
// Files are registered either with their content (AddFile) or as reserved
// slots whose content is supplied later (ReserveFile). Reserved slots let a
// caller hand out paths and ids for documents, such as a table of contents,
// whose content depends on files registered after them.
//
// Basic usage:
//
//	e, err := epub.New()
//	if err != nil {
//	    // handle error
//	}
//	toc, _ := e.ReserveFile("toc.xhtml", epub.FileOptions{MediaType: epub.MediaTypeXHTML, Spine: true})
//	ch, _ := e.AddFile("ch1.xhtml", page, epub.FileOptions{MediaType: epub.MediaTypeXHTML, Spine: true})
//	e.Nav().AddEntry("Chapter 1", ch)
//	_ = toc.Fill(tocPage)
//	data, err := e.Finalize(epub.Metadata{Title: "Book", Language: "en"})
package epub

import (
	"time"
)

// Fixed archive paths.
const (
	MimetypePath  = "mimetype"
	ContainerPath = "META-INF/container.xml"
	PackagePath   = "metadata.opf"
	NavPath       = "nav.xhtml"
)

// Media types used by the package itself.
const (
	MediaTypeEPUB    = "application/epub+zip"
	MediaTypeXHTML   = "application/xhtml+xml"
	MediaTypeCSS     = "text/css"
	MediaTypePackage = "application/oebps-package+xml"
)

// Manifest item properties.
const (
	PropertyNav        = "nav"
	PropertyCoverImage = "cover-image"
	PropertySVG        = "svg"
	PropertyTitlePage  = "calibre:title-page"
)

// FileHandle identifies a registered file. It is a value and never changes
// after registration.
type FileHandle struct {
	ID      string
	Path    string
	InSpine bool
}

// File returns the handle itself.
func (h FileHandle) File() FileHandle {
	return h
}

// Handle is implemented by FileHandle and *PendingFile. Navigation entries
// and landmarks accept either.
type Handle interface {
	File() FileHandle
}

// FileOptions describes how a file is registered.
type FileOptions struct {
	MediaType  string
	Binary     bool     // stored without compression
	Spine      bool     // appended to the reading order
	Properties []string // "nav", "cover-image", ...
}

// ManifestEntry is one item of the package manifest.
type ManifestEntry struct {
	ID         string
	Path       string
	MediaType  string
	Properties []string
}

// Metadata is rendered into the package document by Finalize.
type Metadata struct {
	Title       string
	Language    string
	Authors     []string
	PublishDate time.Time
	Series      *Series
}

// Series places the book in a numbered collection.
type Series struct {
	Name   string
	Number int
}
