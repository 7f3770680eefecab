//go:build !ocr

package ocr

import (
	"errors"
	"testing"
)

func TestStubDisabled(t *testing.T) {
	client, err := New("eng", "deu")
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Fatalf("New error = %v, want ErrOCRNotEnabled", err)
	}
	if client != nil {
		t.Fatalf("New returned a client without OCR support")
	}

	// Callers defer Close before checking the error.
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client = %v", err)
	}

	var zero Client
	caption, err := zero.RecognizeImage([]byte("\x89PNG\r\n\x1a\n"))
	if !errors.Is(err, ErrOCRNotEnabled) || caption != "" {
		t.Errorf("RecognizeImage = %q, %v; want empty caption and ErrOCRNotEnabled", caption, err)
	}
}
