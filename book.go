package quire

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tsawler/quire/epub"
	"github.com/tsawler/quire/markup"
	"github.com/tsawler/quire/media"
)

// Book errors.
var (
	ErrMissingCover  = errors.New("quire: metadata has no cover image")
	ErrCoverNotFirst = errors.New("quire: title page must be first in spine")
	ErrNoContent     = errors.New("quire: book has no text pages")
	ErrUnknownImage  = errors.New("quire: unrecognized image format")
)

// Fixed paths of generated pages.
const (
	TitlePagePath = "titlepage.xhtml"
	TOCPath       = "toc.xhtml"
)

// Labels used for generated navigation entries and landmarks.
const (
	CoverLabel     = "Cover"
	TOCLabel       = "Table of Contents"
	BodyStartLabel = "Start of Content"
)

// Metadata describes the book. Cover holds the cover image and is required.
type Metadata struct {
	epub.Metadata
	Cover []byte
}

// TextOptions configures a text or table of contents page.
type TextOptions struct {
	Title      string // navigation label
	Properties []string
}

// ImageOptions configures an image. The format is detected from the image
// content when Format is media.Unknown.
type ImageOptions struct {
	Format     media.Format
	Properties []string
}

// Recognizer extracts text from an image. *ocr.Client implements it.
type Recognizer interface {
	RecognizeImage(imageData []byte) (string, error)
}

// Option configures a Book.
type Option func(*Book)

// WithRenderer sets the renderer for the title page and the navigation
// document.
func WithRenderer(r epub.Renderer) Option {
	return func(b *Book) { b.renderer = r }
}

// WithCoverRecognizer makes the title page describe the cover with the text
// recognized in the cover image instead of the book title.
func WithCoverRecognizer(r Recognizer) Option {
	return func(b *Book) { b.recognizer = r }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(b *Book) { b.logger = l }
}

// WithEpubOptions passes options to the underlying epub.Epub.
func WithEpubOptions(opts ...epub.Option) Option {
	return func(b *Book) { b.epubOpts = append(b.epubOpts, opts...) }
}

// Book builds an EPUB following reading order conventions: the cover title
// page is always the first page and the first navigation entry, and the
// cover, toc and bodymatter landmarks are assigned automatically.
//
// A Book serializes its own calls, but the reading order is the order in
// which calls are made, so pages should be appended from one goroutine.
type Book struct {
	mu sync.Mutex

	epub       *epub.Epub
	meta       Metadata
	renderer   epub.Renderer
	recognizer Recognizer
	logger     *log.Logger
	epubOpts   []epub.Option

	seq        int
	hasText    bool
	coverImage *epub.FileHandle // registered cover image, kept if the title page failed
}

// New starts a book.
func New(meta Metadata, opts ...Option) (*Book, error) {
	if len(meta.Cover) == 0 {
		return nil, ErrMissingCover
	}

	b := &Book{meta: meta}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderer == nil {
		b.renderer = markup.Default()
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}

	e, err := epub.New(append([]epub.Option{
		epub.WithRenderer(b.renderer),
		epub.WithLogger(b.logger),
	}, b.epubOpts...)...)
	if err != nil {
		return nil, err
	}
	b.epub = e

	return b, nil
}

// Epub returns the underlying package ledger.
func (b *Book) Epub() *epub.Epub {
	return b.epub
}

// AddStyleSheet adds a stylesheet. It is not part of the reading order.
func (b *Book) AddStyleSheet(content string) (epub.FileHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.epub.AddFile("stylesheet-"+b.nextID()+".css", []byte(content), epub.FileOptions{
		MediaType: epub.MediaTypeCSS,
	})
}

// AddImage adds an image. It is not part of the reading order.
func (b *Book) AddImage(content []byte, opts ImageOptions) (epub.FileHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.addImage(content, opts)
}

// AppendText appends a text page with known content.
func (b *Book) AppendText(content string, opts TextOptions) (epub.FileHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureCover(); err != nil {
		return epub.FileHandle{}, err
	}
	h, err := b.addPage("text-"+b.nextID()+".xhtml", content, opts)
	if err != nil {
		return epub.FileHandle{}, err
	}
	b.markBodyStart(h)
	return h, nil
}

// ReserveText appends a text page whose content is supplied later.
func (b *Book) ReserveText(opts TextOptions) (*epub.PendingFile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureCover(); err != nil {
		return nil, err
	}
	p, err := b.reservePage("text-"+b.nextID()+".xhtml", opts)
	if err != nil {
		return nil, err
	}
	b.markBodyStart(p)
	return p, nil
}

// AppendToc appends the table of contents page with known content.
func (b *Book) AppendToc(content string, opts TextOptions) (epub.FileHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureCover(); err != nil {
		return epub.FileHandle{}, err
	}
	h, err := b.addPage(TOCPath, content, opts)
	if err != nil {
		return epub.FileHandle{}, err
	}
	b.epub.Nav().SetLandmark(epub.LandmarkTOC, TOCLabel, h)
	return h, nil
}

// ReserveToc appends the table of contents page, to be filled once the
// pages it lists have been appended.
func (b *Book) ReserveToc(opts TextOptions) (*epub.PendingFile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureCover(); err != nil {
		return nil, err
	}
	p, err := b.reservePage(TOCPath, opts)
	if err != nil {
		return nil, err
	}
	b.epub.Nav().SetLandmark(epub.LandmarkTOC, TOCLabel, p)
	return p, nil
}

// Finalize produces the archive. It fails with ErrNoContent if no text page
// was appended. The book cannot be used afterwards.
func (b *Book) Finalize() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.hasText {
		return nil, ErrNoContent
	}
	return b.epub.Finalize(b.meta.Metadata)
}

func (b *Book) nextID() string {
	id := strconv.Itoa(b.seq)
	b.seq++
	return id
}

// imageFile returns the path and options an image would be registered
// with. The sequence number is taken only when the file is added.
func (b *Book) imageFile(content []byte, opts ImageOptions) (string, epub.FileOptions, error) {
	format := opts.Format
	if format == media.Unknown {
		format = media.DetectFromMagic(content)
	}
	if !format.IsImage() {
		return "", epub.FileOptions{}, ErrUnknownImage
	}

	path := "image-" + strconv.Itoa(b.seq) + "." + format.Extension()
	return path, epub.FileOptions{
		MediaType:  format.MediaType(),
		Binary:     true,
		Properties: opts.Properties,
	}, nil
}

func (b *Book) addImage(content []byte, opts ImageOptions) (epub.FileHandle, error) {
	path, fileOpts, err := b.imageFile(content, opts)
	if err != nil {
		return epub.FileHandle{}, err
	}
	h, err := b.epub.AddFile(path, content, fileOpts)
	if err != nil {
		return epub.FileHandle{}, err
	}
	b.seq++
	return h, nil
}

func pageOptions(opts TextOptions) epub.FileOptions {
	return epub.FileOptions{
		MediaType:  epub.MediaTypeXHTML,
		Spine:      true,
		Properties: opts.Properties,
	}
}

func (b *Book) addPage(path, content string, opts TextOptions) (epub.FileHandle, error) {
	h, err := b.epub.AddFile(path, []byte(content), pageOptions(opts))
	if err != nil {
		return epub.FileHandle{}, err
	}
	b.epub.Nav().AddEntry(opts.Title, h)
	return h, nil
}

func (b *Book) reservePage(path string, opts TextOptions) (*epub.PendingFile, error) {
	p, err := b.epub.ReserveFile(path, pageOptions(opts))
	if err != nil {
		return nil, err
	}
	b.epub.Nav().AddEntry(opts.Title, p)
	return p, nil
}

// markBodyStart points the bodymatter landmark at the first text page.
func (b *Book) markBodyStart(h epub.Handle) {
	if b.hasText {
		return
	}
	b.epub.Nav().SetLandmark(epub.LandmarkBodymatter, BodyStartLabel, h)
	b.hasText = true
}

func (b *Book) ensureCover() error {
	if !b.epub.Nav().IsEmpty() {
		return nil
	}
	_, err := b.appendCover()
	return err
}

// appendCover adds the cover image and the title page showing it.
func (b *Book) appendCover() (epub.FileHandle, error) {
	if !b.epub.Nav().IsEmpty() {
		return epub.FileHandle{}, ErrCoverNotFirst
	}

	width, height, err := media.Dimensions(b.meta.Cover)
	if err != nil {
		return epub.FileHandle{}, fmt.Errorf("cover image: %w", err)
	}

	alt := b.meta.Title
	if b.recognizer != nil {
		text, err := b.recognizer.RecognizeImage(b.meta.Cover)
		if err != nil {
			return epub.FileHandle{}, fmt.Errorf("recognizing cover text: %w", err)
		}
		if text = strings.Join(strings.Fields(text), " "); text != "" {
			alt = text
		}
	}

	// A failed render must leave the package untouched.
	var imagePath string
	if b.coverImage != nil {
		imagePath = b.coverImage.Path
	} else {
		path, _, err := b.imageFile(b.meta.Cover, ImageOptions{})
		if err != nil {
			return epub.FileHandle{}, fmt.Errorf("cover image: %w", err)
		}
		imagePath = path
	}

	page, err := b.renderer.RenderXHTML(markup.TitlePageTemplate, markup.TitlePage{
		Title:  CoverLabel,
		Alt:    alt,
		Image:  imagePath,
		Width:  width,
		Height: height,
	})
	if err != nil {
		return epub.FileHandle{}, fmt.Errorf("rendering title page: %w", err)
	}

	if b.coverImage == nil {
		img, err := b.addImage(b.meta.Cover, ImageOptions{Properties: []string{epub.PropertyCoverImage}})
		if err != nil {
			return epub.FileHandle{}, fmt.Errorf("cover image: %w", err)
		}
		b.coverImage = &img
	}

	h, err := b.addPage(TitlePagePath, page, TextOptions{
		Title:      CoverLabel,
		Properties: []string{epub.PropertyTitlePage, epub.PropertySVG},
	})
	if err != nil {
		return epub.FileHandle{}, err
	}
	b.epub.Nav().SetLandmark(epub.LandmarkCover, CoverLabel, h)

	b.logger.Debug("inserted cover", "image", imagePath, "width", width, "height", height)
	return h, nil
}
