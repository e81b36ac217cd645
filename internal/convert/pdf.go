package convert

import (
	"bytes"
	"fmt"

	"github.com/dslipak/pdf"
)

// convertPDF extracts the document's plain text with the library's
// whole-document reader (GetPlainText); this function adds no
// separator between pages. dslipak/pdf has no markdown concept, so the "markdown"
// the converter interface promises is, for PDFs, its plain text —
// acceptable since the flow only needs chunkable prose, not formatting.
func convertPDF(path string) (string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var out bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	if _, err := out.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("draining pdf text: %w", err)
	}

	return out.String(), nil
}
