package docx

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// CreateResult reports creation of a new document.
type CreateResult struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Create writes a new blank .docx at path, creating parent directories.
func Create(path string) (*CreateResult, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, fmt.Errorf("create dir %s: %w", dir, err))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, fmt.Errorf("create %s: %w", path, err))
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	parts := map[string]string{
		"[Content_Types].xml": blankContentTypesXML,
		"_rels/.rels":         blankRelsXML,
		"word/document.xml":   blankDocumentXML,
		"word/styles.xml":     blankStylesXML,
	}

	// Deterministic entry order keeps output byte-stable.
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		w, createErr := zw.Create(name)
		if createErr != nil {
			return nil, errfmt.Wrap(errfmt.IOError, fmt.Errorf("zip entry %s: %w", name, createErr))
		}

		if _, writeErr := w.Write([]byte(parts[name])); writeErr != nil {
			return nil, errfmt.Wrap(errfmt.IOError, fmt.Errorf("zip write %s: %w", name, writeErr))
		}
	}

	if err := zw.Close(); err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, fmt.Errorf("finalize %s: %w", path, err))
	}

	return &CreateResult{
		Status:  "success",
		Path:    path,
		Message: "New blank document created",
	}, nil
}

const blankContentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const blankRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const blankDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p/>
    <w:sectPr/>
  </w:body>
</w:document>`

const blankStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:styleId="Normal" w:default="1">
    <w:name w:val="Normal"/>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Title">
    <w:name w:val="Title"/>
  </w:style>
  <w:style w:type="paragraph" w:styleId="Heading1">
    <w:name w:val="heading 1"/>
  </w:style>
</w:styles>`
