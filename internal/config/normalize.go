package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize(dir string) error {
	c.Dir = dir
	if err := c.normalizeFiles(); err != nil {
		return err
	}
	c.normalizeBook()
	c.normalizeTOC()
	c.normalizeOCR()
	return c.normalizeChapters()
}

func (c *Config) normalizeFiles() error {
	var err error
	c.Output = strings.TrimSpace(c.Output)
	if c.Output == "" {
		c.Output = defaultOutput
	}
	if c.Output != "-" {
		if c.Output, err = expandPath(c.Output, c.Dir); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}
	if c.Book.Cover = strings.TrimSpace(c.Book.Cover); c.Book.Cover != "" {
		if c.Book.Cover, err = expandPath(c.Book.Cover, c.Dir); err != nil {
			return fmt.Errorf("book.cover: %w", err)
		}
	}
	if c.Stylesheets, err = expandPaths(c.Stylesheets, c.Dir); err != nil {
		return fmt.Errorf("stylesheets: %w", err)
	}
	if c.Images, err = expandPaths(c.Images, c.Dir); err != nil {
		return fmt.Errorf("images: %w", err)
	}
	return nil
}

func (c *Config) normalizeBook() {
	c.Book.Title = strings.TrimSpace(c.Book.Title)
	c.Book.Language = strings.TrimSpace(c.Book.Language)
	if c.Book.Language == "" {
		c.Book.Language = defaultLanguage
	}
	c.Book.PublishDate = strings.TrimSpace(c.Book.PublishDate)
	c.Book.Series = strings.TrimSpace(c.Book.Series)
	c.Book.Authors = trimAll(c.Book.Authors)
}

func (c *Config) normalizeTOC() {
	c.TOC.Title = strings.TrimSpace(c.TOC.Title)
	if c.TOC.Title == "" {
		c.TOC.Title = defaultTOCTitle
	}
}

func (c *Config) normalizeOCR() {
	c.OCR.Languages = trimAll(c.OCR.Languages)
}

func (c *Config) normalizeChapters() error {
	for i := range c.Chapters {
		ch := &c.Chapters[i]
		ch.Title = strings.TrimSpace(ch.Title)
		ch.Author = strings.TrimSpace(ch.Author)
		ch.Section = strings.TrimSpace(ch.Section)
		ch.File = strings.TrimSpace(ch.File)
		if ch.File == "" {
			continue
		}
		var err error
		if ch.File, err = expandPath(ch.File, c.Dir); err != nil {
			return fmt.Errorf("chapters[%d].file: %w", i, err)
		}
	}
	return nil
}

// trimAll trims every value and drops the empty ones.
func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func expandPaths(values []string, dir string) ([]string, error) {
	var out []string
	for _, v := range trimAll(values) {
		p, err := expandPath(v, dir)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// expandPath expands a leading ~ and makes pathValue absolute, resolving a
// relative path against dir (or the working directory when dir is empty).
func expandPath(pathValue, dir string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	if !filepath.IsAbs(pathValue) && dir != "" {
		pathValue = filepath.Join(dir, pathValue)
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
