package config

const (
	defaultOutput   = "book.epub"
	defaultLanguage = "en"
	defaultTOCTitle = "Table of Contents"
)

// Default returns the configuration used for keys a project file omits.
func Default() Config {
	return Config{
		Output: defaultOutput,
		Book: Book{
			Language: defaultLanguage,
		},
		TOC: TOC{
			Enabled: true,
			Title:   defaultTOCTitle,
		},
		OCR: OCR{
			Languages: []string{"eng"},
		},
	}
}
