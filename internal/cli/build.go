package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsawler/quire"
	"github.com/tsawler/quire/epub"
	"github.com/tsawler/quire/internal/config"
	"github.com/tsawler/quire/markup"
	"github.com/tsawler/quire/media"
	"github.com/tsawler/quire/ocr"
)

func (c *CLI) buildCommand() *cobra.Command {
	var (
		configPath string
		output     string
		ocrCover   bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build an EPUB from a project file",
		Long: `Build an EPUB from a project file.

The cover becomes the first page, followed by the table of contents (when
enabled) and the chapters in the order the project file lists them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Output = output
			}

			logger := loggerFromContext(cmd.Context())

			var recognizer quire.Recognizer
			if ocrCover || cfg.OCR.Enabled {
				client, err := ocr.New(cfg.OCR.Languages...)
				if err != nil {
					logger.Warn("Cover text recognition unavailable, using the title", "err", err)
				} else {
					defer client.Close()
					recognizer = client
				}
			}

			prog := newProgress(logger)
			data, err := buildBook(cmd.Context(), cfg, recognizer)
			if err != nil {
				return err
			}
			if err := writeOutput(cfg.Output, data, cmd.OutOrStdout()); err != nil {
				return err
			}
			prog.done("Built book", "output", cfg.Output, "bytes", len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "project file (default "+config.DefaultFileName+")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the archive here instead of the project's output (- for stdout)")
	cmd.Flags().BoolVar(&ocrCover, "ocr-cover", false, "describe the cover with its recognized text (needs -tags ocr)")

	return cmd
}

// buildBook assembles the book a project describes and returns the archive.
// The logger is taken from ctx.
func buildBook(ctx context.Context, cfg *config.Config, recognizer quire.Recognizer) ([]byte, error) {
	logger := loggerFromContext(ctx)

	cover, err := os.ReadFile(cfg.Book.Cover)
	if err != nil {
		return nil, fmt.Errorf("read cover: %w", err)
	}

	meta := quire.Metadata{
		Metadata: epub.Metadata{
			Title:       cfg.Book.Title,
			Language:    cfg.Book.Language,
			Authors:     cfg.Book.Authors,
			PublishDate: cfg.PublishTime(),
		},
		Cover: cover,
	}
	if cfg.Book.Series != "" {
		meta.Series = &epub.Series{Name: cfg.Book.Series, Number: cfg.Book.SeriesNumber}
	}

	opts := []quire.Option{quire.WithLogger(logger)}
	if recognizer != nil {
		opts = append(opts, quire.WithCoverRecognizer(recognizer))
	}
	book, err := quire.New(meta, opts...)
	if err != nil {
		return nil, err
	}

	links, err := addImages(book, cfg)
	if err != nil {
		return nil, err
	}

	var sheets []string
	for _, path := range cfg.Stylesheets {
		css, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read stylesheet: %w", err)
		}
		h, err := book.AddStyleSheet(string(css))
		if err != nil {
			return nil, fmt.Errorf("add stylesheet %s: %w", path, err)
		}
		sheets = append(sheets, h.Path)
	}

	var toc *epub.PendingFile
	if cfg.TOC.Enabled {
		if toc, err = book.ReserveToc(quire.TextOptions{Title: cfg.TOC.Title}); err != nil {
			return nil, err
		}
	}

	renderer := markup.Default()
	listed := make([]listedChapter, 0, len(cfg.Chapters))
	for _, ch := range cfg.Chapters {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := os.ReadFile(ch.File)
		if err != nil {
			return nil, fmt.Errorf("read chapter %q: %w", ch.Title, err)
		}
		page, err := renderer.Render(markup.ChapterTemplate, markup.ChapterPage{
			Title:       ch.Title,
			Author:      ch.Author,
			Language:    cfg.Book.Language,
			Stylesheets: sheets,
			Body:        string(body),
		})
		if err != nil {
			return nil, fmt.Errorf("render chapter %q: %w", ch.Title, err)
		}
		if page, err = markup.Rewrite(page, links); err != nil {
			return nil, fmt.Errorf("rewrite chapter %q: %w", ch.Title, err)
		}

		h, err := book.AppendText(page, quire.TextOptions{Title: ch.Title})
		if err != nil {
			return nil, fmt.Errorf("append chapter %q: %w", ch.Title, err)
		}
		listed = append(listed, listedChapter{
			section: ch.Section,
			entry:   markup.TOCEntry{Title: ch.Title, Author: ch.Author, Href: h.Path},
		})
	}

	if toc != nil {
		page, err := renderer.RenderXHTML(markup.TOCTemplate, markup.TOCPage{
			Title:       cfg.TOC.Title,
			Language:    cfg.Book.Language,
			Stylesheets: sheets,
			Sections:    groupSections(listed, cfg.TOC.TitleCase, cfg.Book.Language),
		})
		if err != nil {
			return nil, fmt.Errorf("render table of contents: %w", err)
		}
		if err := toc.FillString(page); err != nil {
			return nil, err
		}
	}

	return book.Finalize()
}

// addImages adds the project images and returns the mapping from the names
// chapters use for them to their paths in the book.
func addImages(book *quire.Book, cfg *config.Config) (map[string]string, error) {
	links := make(map[string]string, len(cfg.Images))
	for _, path := range cfg.Images {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		h, err := book.AddImage(data, quire.ImageOptions{Format: media.Sniff(path, data)})
		if err != nil {
			return nil, fmt.Errorf("add image %s: %w", path, err)
		}
		if rel, err := filepath.Rel(cfg.Dir, path); err == nil {
			links[filepath.ToSlash(rel)] = h.Path
		}
	}
	return links, nil
}

type listedChapter struct {
	section string
	entry   markup.TOCEntry
}

// groupSections groups chapters by section in order of first appearance.
// Chapters without a section form an untitled group.
func groupSections(chapters []listedChapter, titleCase bool, lang string) []markup.TOCSection {
	var sections []markup.TOCSection
	index := make(map[string]int)
	for _, ch := range chapters {
		i, ok := index[ch.section]
		if !ok {
			title := ch.section
			if titleCase {
				title = markup.TitleCase(title, lang)
			}
			i = len(sections)
			index[ch.section] = i
			sections = append(sections, markup.TOCSection{Title: title})
		}
		sections[i].Entries = append(sections[i].Entries, ch.entry)
	}
	return sections
}
