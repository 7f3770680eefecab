// Package config loads, normalizes, and validates quire project files.
//
// A project file is a TOML document describing one book: its metadata and
// cover, the stylesheets and images to embed, the chapters in reading order
// and how the table of contents page is laid out. File references are
// resolved relative to the directory holding the project file, so a project
// can be built from any working directory.
//
// Always obtain settings through Load so the builder receives absolute
// paths, trimmed values, and clear validation errors.
package config
