package epub

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tsawler/quire/markup"
)

// Ledger errors.
var (
	ErrEmptyPath     = errors.New("epub: empty file path")
	ErrReservedPath  = errors.New("epub: path is reserved for the package")
	ErrDuplicatePath = errors.New("epub: path already registered")
	ErrAlreadyFilled = errors.New("epub: pending file already filled")
	ErrUnfilled      = errors.New("epub: pending file was never filled")
	ErrFinalized     = errors.New("epub: package already finalized")
)

// Renderer renders a named template into well-formed XHTML.
type Renderer interface {
	RenderXHTML(name string, data any) (string, error)
}

// Epub is one package-build session. It is safe for concurrent use, but the
// spine follows the order in which registrations complete, so callers that
// care about reading order must register sequentially.
type Epub struct {
	mu sync.Mutex

	sink     Sink
	renderer Renderer
	now      func() time.Time
	newID    func() string
	logger   *log.Logger

	nav       *Nav
	manifest  []ManifestEntry
	spine     []string
	paths     map[string]bool
	slots     map[string]*slot
	lastID    int
	finalized bool
}

// slot tracks a reserved file until it is filled.
type slot struct {
	path   string
	binary bool
	filled bool
}

// Option configures an Epub.
type Option func(*Epub)

// WithSink sets the archive the package is written to. The default is a new
// ZipSink.
func WithSink(s Sink) Option {
	return func(e *Epub) { e.sink = s }
}

// WithRenderer sets the template renderer for the navigation document.
func WithRenderer(r Renderer) Option {
	return func(e *Epub) { e.renderer = r }
}

// WithClock sets the source of the modification timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Epub) { e.now = now }
}

// WithIdentifier sets the generator of the package unique identifier.
func WithIdentifier(newID func() string) Option {
	return func(e *Epub) { e.newID = newID }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Epub) { e.logger = l }
}

// New starts a package-build session. The mimetype entry is written to the
// sink before New returns, so it is always the first entry of the archive.
func New(opts ...Option) (*Epub, error) {
	e := &Epub{
		now:   time.Now,
		newID: func() string { return "urn:uuid:" + uuid.NewString() },
		nav:   newNav(),
		paths: make(map[string]bool),
		slots: make(map[string]*slot),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = NewZipSink()
	}
	if e.renderer == nil {
		e.renderer = markup.Default()
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}

	if err := e.sink.Put(MimetypePath, []byte(MediaTypeEPUB), true); err != nil {
		return nil, fmt.Errorf("writing mimetype: %w", err)
	}

	return e, nil
}

// Nav returns the navigation tree of the book.
func (e *Epub) Nav() *Nav {
	return e.nav
}

// AddFile registers a file whose content is known now and writes it to the
// sink.
func (e *Epub) AddFile(path string, content []byte, opts FileOptions) (FileHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized {
		return FileHandle{}, ErrFinalized
	}
	return e.addFile(path, content, opts)
}

// ReserveFile registers a file whose content is supplied later through
// PendingFile.Fill. The file takes its manifest and spine position now.
func (e *Epub) ReserveFile(path string, opts FileOptions) (*PendingFile, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized {
		return nil, ErrFinalized
	}
	h, err := e.register(path, opts)
	if err != nil {
		return nil, err
	}
	e.slots[h.ID] = &slot{path: path, binary: opts.Binary}

	e.logger.Debug("reserved file", "id", h.ID, "path", path, "spine", h.InSpine)
	return &PendingFile{FileHandle: h, epub: e}, nil
}

// Manifest returns a copy of the manifest in registration order.
func (e *Epub) Manifest() []ManifestEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ManifestEntry, len(e.manifest))
	for i, m := range e.manifest {
		m.Properties = append([]string(nil), m.Properties...)
		out[i] = m
	}
	return out
}

// Spine returns a copy of the spine: manifest ids in reading order.
func (e *Epub) Spine() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.spine...)
}

// Pending returns the paths of reserved files that have not been filled, in
// registration order.
func (e *Epub) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.unfilled()
}

// Finalize renders the navigation document, the package document and the
// container file, then serializes the archive. It may be called once; the
// session cannot be used afterwards, whether or not Finalize succeeded.
func (e *Epub) Finalize(meta Metadata) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized {
		return nil, ErrFinalized
	}
	e.finalized = true

	if pending := e.unfilled(); len(pending) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnfilled, strings.Join(pending, ", "))
	}

	navDoc, err := e.nav.Render(e.renderer)
	if err != nil {
		return nil, fmt.Errorf("rendering navigation document: %w", err)
	}
	if _, err := e.addFile(NavPath, []byte(navDoc), FileOptions{
		MediaType:  MediaTypeXHTML,
		Properties: []string{PropertyNav},
	}); err != nil {
		return nil, err
	}

	opf, err := e.packageDocument(meta)
	if err != nil {
		return nil, fmt.Errorf("rendering package document: %w", err)
	}
	if err := e.sink.Put(PackagePath, opf, false); err != nil {
		return nil, fmt.Errorf("writing %s: %w", PackagePath, err)
	}

	container, err := containerDocument(PackagePath)
	if err != nil {
		return nil, fmt.Errorf("rendering container: %w", err)
	}
	if err := e.sink.Put(ContainerPath, container, false); err != nil {
		return nil, fmt.Errorf("writing %s: %w", ContainerPath, err)
	}

	data, err := e.sink.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serializing archive: %w", err)
	}

	e.logger.Debug("finalized package", "files", len(e.manifest), "spine", len(e.spine), "bytes", len(data))
	return data, nil
}

// addFile registers a file and writes its content. The caller holds e.mu.
func (e *Epub) addFile(path string, content []byte, opts FileOptions) (FileHandle, error) {
	h, err := e.register(path, opts)
	if err != nil {
		return FileHandle{}, err
	}
	if err := e.sink.Put(path, content, opts.Binary); err != nil {
		e.unregister(h)
		return FileHandle{}, fmt.Errorf("writing %s: %w", path, err)
	}

	e.logger.Debug("added file", "id", h.ID, "path", path, "spine", h.InSpine, "bytes", len(content))
	return h, nil
}

// register assigns the next id and records the manifest and spine entries.
// The caller holds e.mu.
func (e *Epub) register(path string, opts FileOptions) (FileHandle, error) {
	if err := e.checkPath(path); err != nil {
		return FileHandle{}, err
	}

	id := "id" + strconv.Itoa(e.lastID)
	e.lastID++

	e.paths[path] = true
	e.manifest = append(e.manifest, ManifestEntry{
		ID:         id,
		Path:       path,
		MediaType:  opts.MediaType,
		Properties: append([]string(nil), opts.Properties...),
	})
	if opts.Spine {
		e.spine = append(e.spine, id)
	}

	return FileHandle{ID: id, Path: path, InSpine: opts.Spine}, nil
}

// unregister drops the manifest and spine entries of the most recent
// registration after its content could not be written. The id stays
// consumed. The caller holds e.mu.
func (e *Epub) unregister(h FileHandle) {
	delete(e.paths, h.Path)
	if n := len(e.manifest); n > 0 && e.manifest[n-1].ID == h.ID {
		e.manifest = e.manifest[:n-1]
	}
	if n := len(e.spine); h.InSpine && n > 0 && e.spine[n-1] == h.ID {
		e.spine = e.spine[:n-1]
	}
}

func (e *Epub) checkPath(path string) error {
	switch {
	case path == "":
		return ErrEmptyPath
	case path == MimetypePath, path == PackagePath, path == ContainerPath:
		return fmt.Errorf("%w: %s", ErrReservedPath, path)
	case path == NavPath && !e.finalized:
		return fmt.Errorf("%w: %s", ErrReservedPath, path)
	case e.paths[path]:
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	return nil
}

// fill writes the content of a reserved slot.
func (e *Epub) fill(id string, content []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.slots[id]
	if !ok {
		return fmt.Errorf("epub: unknown pending file %s", id)
	}
	if s.filled {
		return fmt.Errorf("%w: %s", ErrAlreadyFilled, s.path)
	}
	if e.finalized {
		return ErrFinalized
	}
	if err := e.sink.Put(s.path, content, s.binary); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	s.filled = true

	e.logger.Debug("filled file", "id", id, "path", s.path, "bytes", len(content))
	return nil
}

// unfilled lists reserved paths still waiting for content. The caller holds
// e.mu.
func (e *Epub) unfilled() []string {
	var out []string
	for _, m := range e.manifest {
		if s, ok := e.slots[m.ID]; ok && !s.filled {
			out = append(out, s.path)
		}
	}
	return out
}
