package course

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("file is not a PDF document")

// ExtractPDF returns the plain text and page count of a PDF document.
// The reader panics on some malformed inputs, so panics are returned as errors.
func ExtractPDF(data []byte) (text string, pages int, err error) {
	if !isPDF(data) {
		return "", 0, ErrNotPDF
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parse: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("pdf reader: %w", err)
	}
	pages = r.NumPage()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", pages, fmt.Errorf("pdf plaintext: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", pages, fmt.Errorf("pdf read: %w", err)
	}
	return collapseWhitespace(string(b)), pages, nil
}

func isPDF(b []byte) bool {
	return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
