package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText is the extracted text of a single page.
type PageText struct {
	Page int
	Text string
}

// ExtractPDF extracts plain text from a PDF body, one entry per page.
// Pages with no extractable text are skipped.
func ExtractPDF(data []byte) ([]PageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyDocument, err)
	}

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, ErrEmptyDocument
	}

	var pages []PageText
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page does not invalidate the document.
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		pages = append(pages, PageText{Page: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, ErrEmptyDocument
	}

	return pages, nil
}
