// Package resume turns an uploaded résumé PDF into plain text.
package resume

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// PDFMIME is the only content type accepted for résumés.
const PDFMIME = "application/pdf"

// DetectPDF sniffs the content of an upload and rejects anything that is not a PDF.
// The file name is not trusted.
func DetectPDF(data []byte) error {
	if len(data) == 0 {
		return &ExtractError{Message: "file is empty"}
	}
	mime := mimetype.Detect(data)
	if !mime.Is(PDFMIME) {
		return &UnsupportedTypeError{MIME: mime.String()}
	}
	return nil
}

// ExtractText concatenates the plain text of every page in page order.
// Pages without a page object are skipped.
func ExtractText(data []byte) (text string, err error) {
	if err := DetectPDF(data); err != nil {
		return "", err
	}

	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractError{Message: fmt.Sprintf("malformed PDF: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractError{Message: "failed to open PDF", Cause: err}
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractError{Message: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		sb.WriteString(pageText)
	}

	return sb.String(), nil
}

// ReadFile reads a PDF from disk and extracts its text.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resume file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read resume file: %w", err)
	}
	return ExtractText(data)
}
