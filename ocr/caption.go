package ocr

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// MaxCaptionLength bounds the length, in runes, of a recognized caption.
const MaxCaptionLength = 160

// Caption folds recognized text into a single line suitable for an alt
// attribute. Runs of whitespace collapse to one space and the result is cut
// at a word boundary so it holds at most max runes. A max of zero or less
// disables the limit.
func Caption(text string, max int) string {
	s := strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:max])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut
}
