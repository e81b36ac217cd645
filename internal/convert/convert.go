// Package convert turns rich documents into markdown text, the
// opaque document-converter collaborator the document index flow
// depends on.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Converter turns a file at path into markdown.
type Converter interface {
	Convert(path string) (string, error)
}

// converter dispatches by file extension to a concrete extractor.
type converter struct{}

// New returns the default converter, wired for every document
// extension the index-docs flow accepts.
func New() Converter {
	return &converter{}
}

func (c *converter) Convert(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return convertPDF(path)
	case ".docx":
		return convertOOXML(path, docxTextFromPart)
	case ".pptx":
		return convertOOXML(path, pptxText)
	case ".xlsx":
		return convertOOXML(path, xlsxText)
	case ".html", ".htm":
		return convertHTML(path)
	default:
		return "", fmt.Errorf("convert: unsupported document extension %q", ext)
	}
}

func readFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, nil
}
