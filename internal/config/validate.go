package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// DateLayout is the layout of book.publish_date.
const DateLayout = "2006-01-02"

// Validate ensures the configuration describes a buildable book.
func (c *Config) Validate() error {
	if err := c.validateBook(); err != nil {
		return err
	}
	if err := c.validateChapters(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBook() error {
	if c.Book.Title == "" {
		return errors.New("book.title must be set")
	}
	if _, err := language.Parse(c.Book.Language); err != nil {
		return fmt.Errorf("book.language %q is not a valid language tag", c.Book.Language)
	}
	if c.Book.Cover == "" {
		return errors.New("book.cover must be set; every book starts with a cover page")
	}
	if c.Book.PublishDate != "" {
		if _, err := time.Parse(DateLayout, c.Book.PublishDate); err != nil {
			return fmt.Errorf("book.publish_date must use YYYY-MM-DD, got %q", c.Book.PublishDate)
		}
	}
	if c.Book.SeriesNumber < 0 {
		return errors.New("book.series_number must be zero or positive")
	}
	if c.Book.SeriesNumber > 0 && c.Book.Series == "" {
		return errors.New("book.series_number requires book.series")
	}
	return nil
}

func (c *Config) validateChapters() error {
	if len(c.Chapters) == 0 {
		return errors.New("at least one [[chapters]] entry is required")
	}
	for i, ch := range c.Chapters {
		if ch.Title == "" {
			return fmt.Errorf("chapters[%d].title must be set", i)
		}
		if ch.File == "" {
			return fmt.Errorf("chapters[%d].file must be set", i)
		}
	}
	return nil
}

// PublishTime returns book.publish_date as a time, or the zero time when it
// is unset.
func (c *Config) PublishTime() time.Time {
	t, err := time.Parse(DateLayout, c.Book.PublishDate)
	if err != nil {
		return time.Time{}
	}
	return t
}
