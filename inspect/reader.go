package inspect

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
)

// Reader-related errors.
var (
	ErrInvalidArchive   = errors.New("inspect: invalid or corrupted archive")
	ErrInvalidMimetype  = errors.New("inspect: mimetype entry is not application/epub+zip")
	ErrMimetypeNotFirst = errors.New("inspect: mimetype is not the first, stored entry")
	ErrMissingContent   = errors.New("inspect: referenced content file not found")
)

const epubMimetype = "application/epub+zip"

// Reader provides access to the structure of an EPUB archive.
type Reader struct {
	zr        *zip.ReadCloser
	zrReader  *zip.Reader // For when opened from io.ReaderAt
	entries   []Entry
	pkg       *Package
	toc       []TOCEntry
	landmarks []Landmark
}

// Open opens an EPUB file from a path.
func Open(filePath string) (*Reader, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, ErrInvalidArchive
	}

	r := &Reader{zr: zr}
	if err := r.init(&zr.Reader); err != nil {
		zr.Close()
		return nil, err
	}
	return r, nil
}

// OpenReader opens an EPUB from an io.ReaderAt.
func OpenReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, ErrInvalidArchive
	}

	r := &Reader{zrReader: zr}
	if err := r.init(zr); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenBytes opens an EPUB held in memory.
func OpenBytes(data []byte) (*Reader, error) {
	return OpenReader(bytes.NewReader(data), int64(len(data)))
}

func (r *Reader) init(zr *zip.Reader) error {
	for _, f := range zr.File {
		r.entries = append(r.entries, Entry{
			Name:   f.Name,
			Stored: f.Method == zip.Store,
			Size:   f.UncompressedSize64,
		})
	}

	if err := checkMimetype(zr); err != nil {
		return err
	}

	opfPath, err := packagePath(zr)
	if err != nil {
		return err
	}
	pkg, err := parsePackage(zr, opfPath)
	if err != nil {
		return err
	}
	r.pkg = pkg

	for _, item := range pkg.Manifest {
		if !item.HasProperty("nav") {
			continue
		}
		content, err := readFile(zr, r.resolve(item.Href))
		if err != nil {
			return fmt.Errorf("reading navigation document: %w", err)
		}
		nav, err := parseNavigation(content)
		if err != nil {
			return fmt.Errorf("parsing navigation document: %w", err)
		}
		r.toc = nav.toc
		r.landmarks = nav.landmarks
		break
	}

	return nil
}

// checkMimetype verifies that the archive starts with a stored mimetype
// entry holding exactly application/epub+zip.
func checkMimetype(zr *zip.Reader) error {
	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" || zr.File[0].Method != zip.Store {
		return ErrMimetypeNotFirst
	}
	data, err := readZipFile(zr.File[0])
	if err != nil {
		return err
	}
	if string(data) != epubMimetype {
		return ErrInvalidMimetype
	}
	return nil
}

// resolve resolves an href relative to the package document.
func (r *Reader) resolve(href string) string {
	dir := path.Dir(r.pkg.Path)
	if dir == "." {
		return href
	}
	return path.Join(dir, href)
}

// Close closes the reader and releases resources.
func (r *Reader) Close() error {
	if r.zr != nil {
		return r.zr.Close()
	}
	return nil
}

// Package returns the parsed package document.
func (r *Reader) Package() *Package {
	return r.pkg
}

// Metadata returns the package metadata.
func (r *Reader) Metadata() Metadata {
	return r.pkg.Metadata
}

// Entries returns the archive entries in physical order.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// TableOfContents returns the entries of the toc navigation.
func (r *Reader) TableOfContents() []TOCEntry {
	return r.toc
}

// Landmarks returns the entries of the landmarks navigation in document
// order.
func (r *Reader) Landmarks() []Landmark {
	return r.landmarks
}

// ReadFile returns the content of a file given by its manifest href.
func (r *Reader) ReadFile(href string) ([]byte, error) {
	return readFile(r.getZipReader(), r.resolve(href))
}

// getZipReader returns the appropriate zip.Reader.
func (r *Reader) getZipReader() *zip.Reader {
	if r.zr != nil {
		return &r.zr.Reader
	}
	return r.zrReader
}

// readFile reads a file from the ZIP archive.
func readFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return readZipFile(f)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingContent, name)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
