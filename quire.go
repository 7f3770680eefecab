// Package quire builds EPUB 3 books from pages that may still be in the
// making.
//
// A Book wraps the package ledger of the epub package and applies the usual
// reading order conventions: the first page appended is preceded by a cover
// title page, the cover, toc and bodymatter landmarks are set for you, and
// stylesheets, images and pages get generated file names.
//
// Basic usage:
//
//	book, err := quire.New(quire.Metadata{
//	    Metadata: epub.Metadata{Title: "Issue 12", Language: "en", Authors: []string{"Ed Itor"}},
//	    Cover:    coverJPEG,
//	})
//	if err != nil {
//	    // handle error
//	}
//	toc, _ := book.ReserveToc(quire.TextOptions{Title: "Table of Contents"})
//	ch, _ := book.AppendText(chapterXHTML, quire.TextOptions{Title: "Chapter 1"})
//	_ = toc.FillString(renderTOC(ch.Path))
//	data, err := book.Finalize()
//
// The table of contents page is reserved before the chapters so that it
// comes first in the reading order, and filled once the chapter paths are
// known.
//
// For finer control, including nested navigation entries, use the epub
// package directly.
package quire

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	h := quire.Must(book.AddStyleSheet(css))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
