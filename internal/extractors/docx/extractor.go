// Package docx extracts text from Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/grounder-ai/grounder/internal/core/domain"
	"github.com/grounder-ai/grounder/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// cellSeparator joins table cells on a row.
const cellSeparator = " | "

// Extractor handles DOCX (and legacy .doc uploads saved in the same
// container format) documents.
type Extractor struct{}

// New creates a new Word extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx", ".doc"}
}

// Extract reads paragraph text followed by table text in document order.
// Blank paragraphs, blank cells, and blank rows are skipped.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &domain.ExtractionError{Filename: "docx", Err: err}
	}

	content, err := readDocumentXML(reader)
	if err != nil {
		return "", &domain.ExtractionError{Filename: "docx", Err: err}
	}

	doc, err := parseDocumentXML(content)
	if err != nil {
		return "", &domain.ExtractionError{Filename: "docx", Err: err}
	}

	var parts []string

	for _, para := range doc.Body.Paragraphs {
		if text := para.text(); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			var cells []string
			for _, cell := range row.Cells {
				if text := strings.TrimSpace(cell.text()); text != "" {
					cells = append(cells, text)
				}
			}
			if len(cells) > 0 {
				parts = append(parts, strings.Join(cells, cellSeparator))
			}
		}
	}

	return strings.Join(parts, "\n"), nil
}

// readDocumentXML locates word/document.xml inside the archive.
func readDocumentXML(reader *zip.Reader) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		return io.ReadAll(rc)
	}
	return nil, nil
}

// documentXML mirrors the parts of word/document.xml we consume.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

// parseDocumentXML unmarshals the document body.
func parseDocumentXML(content []byte) (*documentXML, error) {
	var doc documentXML
	if len(content) == 0 {
		return &doc, nil
	}
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// text concatenates all runs of a paragraph.
func (p paragraph) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			sb.WriteString(t.Content)
		}
	}
	return sb.String()
}

// text joins a cell's paragraphs with spaces.
func (c tableCell) text() string {
	var lines []string
	for _, p := range c.Paragraphs {
		if text := p.text(); strings.TrimSpace(text) != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, " ")
}
