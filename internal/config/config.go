package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultFileName is the project file looked up when no path is given.
const DefaultFileName = "quire.toml"

// ErrExists is returned by CreateSample when the target file already exists.
var ErrExists = errors.New("config: file already exists")

// Book contains the book metadata and the cover image.
type Book struct {
	Title        string   `toml:"title"`
	Language     string   `toml:"language"`
	Authors      []string `toml:"authors"`
	PublishDate  string   `toml:"publish_date"` // YYYY-MM-DD
	Series       string   `toml:"series"`
	SeriesNumber int      `toml:"series_number"`
	Cover        string   `toml:"cover"`
}

// TOC contains configuration for the table of contents page.
type TOC struct {
	Enabled   bool   `toml:"enabled"`
	Title     string `toml:"title"`
	TitleCase bool   `toml:"title_case"` // title-case section headings
}

// OCR contains configuration for recognizing the cover text used as the
// title page alternative text. It needs a binary built with -tags ocr.
type OCR struct {
	Enabled   bool     `toml:"enabled"`
	Languages []string `toml:"languages"`
}

// Chapter is one text page of the book. Chapters are appended in the order
// they appear in the project file.
type Chapter struct {
	Title   string `toml:"title"`
	Author  string `toml:"author"`
	File    string `toml:"file"`    // XHTML or HTML fragment holding the chapter body
	Section string `toml:"section"` // heading the chapter is listed under in the table of contents
}

// Config encapsulates a quire project.
//
// Configuration sections:
//   - Output: path of the archive to write
//   - Stylesheets, Images: files embedded outside the reading order
//   - Book: metadata and cover
//   - TOC: table of contents page
//   - OCR: cover text recognition
//   - Chapters: text pages in reading order
type Config struct {
	Output      string    `toml:"output"`
	Stylesheets []string  `toml:"stylesheets"`
	Images      []string  `toml:"images"`
	Book        Book      `toml:"book"`
	TOC         TOC       `toml:"toc"`
	OCR         OCR       `toml:"ocr"`
	Chapters    []Chapter `toml:"chapters"`

	// Dir is the directory relative paths were resolved against.
	Dir string `toml:"-"`
}

// Load parses, normalizes, and validates the project file at path. An empty
// path means DefaultFileName in the working directory. Unknown keys are
// rejected so typos do not go unnoticed.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}
	resolved, err := expandPath(path, "")
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	cfg := Default()
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse config: %s", strict.String())
		}
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.normalize(filepath.Dir(resolved)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Sample returns the sample project file.
func Sample() string {
	return sampleConfig
}

// CreateSample writes the sample project file to path. It refuses to
// overwrite an existing file.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
		return fmt.Errorf("create sample config: %w", err)
	}
	if _, err := file.WriteString(sampleConfig); err != nil {
		file.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return file.Close()
}
