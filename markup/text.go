package markup

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase capitalizes the first letter of every word of s and lowers the
// rest, following the casing rules of lang (a BCP 47 tag such as "en").
// Section headings scraped in all caps read better this way.
func TitleCase(s, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return cases.Title(tag).String(s)
}
