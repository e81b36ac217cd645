package convert

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestConvertDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	writeZip(t, path, map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="ns">
  <w:body>
    <w:p><w:r><w:t>Hello</w:t><w:tab/></w:r><w:r><w:t>World</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
  </w:body>
</w:document>`,
	})

	out, err := New().Convert(path)
	require.NoError(t, err)
	require.Contains(t, out, "Hello")
	require.Contains(t, out, "World")
	require.Contains(t, out, "Second paragraph")
	require.Contains(t, out, "\t")
}

func TestConvertDOCXIgnoresTabStopDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	writeZip(t, path, map[string]string{
		"word/document.xml": `<?xml version="1.0"?>
<w:document xmlns:w="ns">
  <w:body>
    <w:p>
      <w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/><w:tab w:val="left" w:pos="1440"/></w:tabs></w:pPr>
      <w:r><w:t>NoTabsHere</w:t></w:r>
    </w:p>
  </w:body>
</w:document>`,
	})

	out, err := New().Convert(path)
	require.NoError(t, err)
	require.Contains(t, out, "NoTabsHere")
	require.NotContains(t, out, "\t", "paragraph-property tab-stop definitions must not be read as literal tab characters")
}

func TestConvertDOCXMissingDocumentXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.docx")
	writeZip(t, path, map[string]string{"word/other.xml": "<x/>"})

	_, err := New().Convert(path)
	require.Error(t, err)
}

func TestConvertPPTX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.pptx")
	writeZip(t, path, map[string]string{
		"ppt/slides/slide1.xml": `<p:sld xmlns:a="ns"><a:p><a:r><a:t>Title slide</a:t></a:r></a:p></p:sld>`,
		"ppt/slides/slide2.xml": `<p:sld xmlns:a="ns"><a:p><a:r><a:t>Second slide</a:t></a:r></a:p></p:sld>`,
	})

	out, err := New().Convert(path)
	require.NoError(t, err)
	require.Contains(t, out, "Title slide")
	require.Contains(t, out, "Second slide")
}

func TestConvertXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeZip(t, path, map[string]string{
		"xl/sharedStrings.xml": `<sst><si><t>Name</t></si><si><t>Age</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData>
			<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
			<row r="2"><c r="A2"><v>Ada</v></c><c r="B2"><v>30</v></c></row>
		</sheetData></worksheet>`,
	})

	out, err := New().Convert(path)
	require.NoError(t, err)
	require.Contains(t, out, "Name\tAge")
	require.Contains(t, out, "Ada\t30")
}

func TestConvertHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<h1>Title</h1><p>Body <strong>text</strong></p>"), 0o644))

	out, err := New().Convert(path)
	require.NoError(t, err)
	require.Contains(t, out, "Title")
	require.Contains(t, out, "Body")
}

func TestConvertUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := New().Convert(path)
	require.Error(t, err)
}
