package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// Sink errors.
var (
	ErrSinkClosed        = errors.New("epub: archive already serialized")
	ErrMimetypeNotFirst  = errors.New("epub: mimetype must be the first archive entry")
	ErrMimetypeDuplicate = errors.New("epub: mimetype written twice")
)

// Sink is the archive a package is written to. Entries are keyed by path;
// binary entries are written as-is.
type Sink interface {
	Put(path string, content []byte, binary bool) error
	Serialize() ([]byte, error)
}

// ZipSink writes entries into an in-memory zip archive in call order. The
// mimetype entry and binary payloads are stored; text is deflated.
type ZipSink struct {
	buf     bytes.Buffer
	zw      *zip.Writer
	entries int
	closed  bool
}

// NewZipSink returns an empty zip archive.
func NewZipSink() *ZipSink {
	s := &ZipSink{}
	s.zw = zip.NewWriter(&s.buf)
	s.zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})
	return s
}

// Put adds an entry. The first entry must be the mimetype file.
func (s *ZipSink) Put(path string, content []byte, binary bool) error {
	if s.closed {
		return ErrSinkClosed
	}
	isMimetype := path == MimetypePath
	if s.entries == 0 && !isMimetype {
		return ErrMimetypeNotFirst
	}
	if s.entries > 0 && isMimetype {
		return ErrMimetypeDuplicate
	}

	var err error
	if binary || isMimetype {
		err = s.store(path, content)
	} else {
		err = s.deflate(path, content)
	}
	if err != nil {
		return fmt.Errorf("zip entry %s: %w", path, err)
	}
	s.entries++
	return nil
}

// store writes an uncompressed entry with precomputed sizes, so the entry
// has no data descriptor.
func (s *ZipSink) store(path string, content []byte) error {
	w, err := s.zw.CreateRaw(&zip.FileHeader{
		Name:               path,
		Method:             zip.Store,
		CRC32:              crc32.ChecksumIEEE(content),
		CompressedSize64:   uint64(len(content)),
		UncompressedSize64: uint64(len(content)),
	})
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

func (s *ZipSink) deflate(path string, content []byte) error {
	w, err := s.zw.CreateHeader(&zip.FileHeader{
		Name:   path,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

// Serialize finishes the archive and returns its bytes. It may be called
// once.
func (s *ZipSink) Serialize() ([]byte, error) {
	if s.closed {
		return nil, ErrSinkClosed
	}
	s.closed = true
	if err := s.zw.Close(); err != nil {
		return nil, fmt.Errorf("closing zip: %w", err)
	}
	return s.buf.Bytes(), nil
}
