package convert

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// OOXML containers (DOCX/PPTX/XLSX) are all zip archives holding XML
// parts. This file generalizes the DOCX zip+XML extraction technique
// to the other two container formats instead of pulling in a
// dedicated library for each — none exists anywhere in the retrieved
// reference set for PPTX or XLSX specifically.

func convertOOXML(path string, extract func(*zip.Reader) (string, error)) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening %s as zip: %w", path, err)
	}
	defer r.Close()

	return extract(&r.Reader)
}

func findZipFile(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

var slideOrSheetNumber = regexp.MustCompile(`(\d+)\.xml$`)

// numberedParts returns zip entries under prefix matching the
// "<prefix><N>.xml" naming OOXML uses for slides/worksheets, sorted
// by that numeric suffix.
func numberedParts(r *zip.Reader, prefix string) []*zip.File {
	var parts []*zip.File
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, ".xml") {
			parts = append(parts, f)
		}
	}
	sort.Slice(parts, func(i, j int) bool {
		return partNumber(parts[i].Name) < partNumber(parts[j].Name)
	})
	return parts
}

func partNumber(name string) int {
	m := slideOrSheetNumber.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// streamParagraphText decodes an OOXML XML part, treating any start
// element named paragraphTag as a paragraph break and accumulating
// character data in between. tabTag is only honored as a literal tab
// while the decoder is inside a runTag element: DOCX also uses an
// element named "tab" for paragraph-level tab-stop definitions
// (<w:pPr><w:tabs><w:tab .../></w:tabs></w:pPr>), which are formatting
// metadata, not run content, so runTag scoping keeps those out of the
// extracted text. Pass "" for runTag when tabTag is unused.
func streamParagraphText(rc io.Reader, paragraphTag, runTag, tabTag string) (string, error) {
	decoder := xml.NewDecoder(rc)
	var b strings.Builder
	runDepth := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decoding xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == paragraphTag {
				b.WriteString("\n")
			}
			if runTag != "" && t.Name.Local == runTag {
				runDepth++
			}
			if tabTag != "" && t.Name.Local == tabTag && runDepth > 0 {
				b.WriteString("\t")
			}
		case xml.EndElement:
			if runTag != "" && t.Name.Local == runTag {
				runDepth--
			}
		case xml.CharData:
			b.Write(t)
		}
	}

	return b.String(), nil
}

// docxTextFromPart extracts word/document.xml, the DOCX main body.
func docxTextFromPart(r *zip.Reader) (string, error) {
	part := findZipFile(r, "word/document.xml")
	if part == nil {
		return "", fmt.Errorf("invalid docx: missing word/document.xml")
	}
	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("opening word/document.xml: %w", err)
	}
	defer rc.Close()

	return streamParagraphText(rc, "p", "r", "tab")
}

// pptxText extracts every ppt/slides/slideN.xml part in slide order,
// joining slides with a blank line.
func pptxText(r *zip.Reader) (string, error) {
	slides := numberedParts(r, "ppt/slides/slide")
	if len(slides) == 0 {
		return "", fmt.Errorf("invalid pptx: no slides found")
	}

	var texts []string
	for _, slide := range slides {
		rc, err := slide.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", slide.Name, err)
		}
		text, err := streamParagraphText(rc, "p", "", "")
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", slide.Name, err)
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	return strings.Join(texts, "\n\n"), nil
}

// sharedStrings parses xl/sharedStrings.xml into an ordered slice of
// strings referenced by index from worksheet cells.
func sharedStrings(r *zip.Reader) ([]string, error) {
	part := findZipFile(r, "xl/sharedStrings.xml")
	if part == nil {
		return nil, nil
	}
	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("opening xl/sharedStrings.xml: %w", err)
	}
	defer rc.Close()

	var doc struct {
		Items []struct {
			Text string `xml:"t"`
		} `xml:"si"`
	}
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding shared strings: %w", err)
	}

	out := make([]string, len(doc.Items))
	for i, item := range doc.Items {
		out[i] = item.Text
	}
	return out, nil
}

type xlsxCell struct {
	Ref   string `xml:"r,attr"`
	Type  string `xml:"t,attr"`
	Value string `xml:"v"`
}

type xlsxRow struct {
	Cells []xlsxCell `xml:"c"`
}

type xlsxSheetData struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

// xlsxText resolves shared-string references against each worksheet's
// cells, joins cells in a row with a tab and rows with a newline, and
// joins sheets with a blank line.
func xlsxText(r *zip.Reader) (string, error) {
	strs, err := sharedStrings(r)
	if err != nil {
		return "", err
	}

	sheets := numberedParts(r, "xl/worksheets/sheet")
	if len(sheets) == 0 {
		return "", fmt.Errorf("invalid xlsx: no worksheets found")
	}

	var sheetTexts []string
	for _, sheet := range sheets {
		rc, err := sheet.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", sheet.Name, err)
		}

		var data xlsxSheetData
		err = xml.NewDecoder(rc).Decode(&data)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("decoding %s: %w", sheet.Name, err)
		}

		var rowTexts []string
		for _, row := range data.Rows {
			cellTexts := make([]string, len(row.Cells))
			for i, cell := range row.Cells {
				cellTexts[i] = resolveCellValue(cell, strs)
			}
			rowTexts = append(rowTexts, strings.Join(cellTexts, "\t"))
		}
		sheetTexts = append(sheetTexts, strings.Join(rowTexts, "\n"))
	}

	return strings.Join(sheetTexts, "\n\n"), nil
}

func resolveCellValue(cell xlsxCell, strs []string) string {
	if cell.Type == "s" {
		idx, err := strconv.Atoi(cell.Value)
		if err != nil || idx < 0 || idx >= len(strs) {
			return ""
		}
		return strs[idx]
	}
	return cell.Value
}
