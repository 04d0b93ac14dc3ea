// Package pdf extracts text from PDF documents page by page.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
	"github.com/grounder-ai/grounder/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PDF documents.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// Extract pulls text from every page. A page that fails to extract is
// logged and skipped; the document degrades rather than failing whole.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &domain.ExtractionError{Filename: "pdf", Err: err}
	}

	var parts []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := extractPage(reader, pageNum)
		if err != nil {
			logger.Warn("skipping pdf page %d: %v", pageNum, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n"), nil
}

// extractPage reads a single page's plain text. The parser panics on some
// malformed content streams, so the panic is converted to a per-page error.
func extractPage(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page parser panic: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is null", pageNum)
	}

	return page.GetPlainText(nil)
}
