// Package officetext extracts plain text from Office Open XML files
// (DOCX, PPTX, XLSX) with streaming XML parsing, no DOM. It is the fast
// path for piping document text into other tools; the format packages
// own structured reads and edits.
package officetext

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

const (
	nsWordproc = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsDrawing  = "http://schemas.openxmlformats.org/drawingml/2006/main"
)

// zip bombs: cap what a single entry may decompress to.
const maxEntrySize = 100 * 1024 * 1024

// Extract reads an Office file from disk and returns its plain text,
// dispatching on the file extension.
func Extract(path string) (string, error) {
	data, err := readFile(path)
	if err != nil {
		return "", err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".docx":
		return extractDocx(data)
	case ".pptx":
		return extractPptx(data)
	case ".xlsx":
		return extractXlsx(data)
	default:
		return "", errfmt.New(errfmt.ValidationError,
			"unsupported extension %q: expected .docx, .pptx, or .xlsx", ext)
	}
}

func openArchive(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "opening archive")
	}

	return zr, nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "opening archive entry")
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
		if err != nil {
			return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "reading archive entry")
		}

		if int64(len(content)) > maxEntrySize {
			return nil, errfmt.New(errfmt.InvalidFormat,
				"archive entry %s exceeds %d byte decompressed limit", name, maxEntrySize)
		}

		return content, nil
	}

	return nil, errfmt.New(errfmt.InvalidFormat, "archive has no %s entry", name)
}

// entriesWithPrefix lists matching archive entries sorted by their trailing
// number, so slide10 follows slide9 rather than slide1.
func entriesWithPrefix(zr *zip.Reader, prefix, suffix string) []string {
	var names []string

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, prefix) && strings.HasSuffix(f.Name, suffix) {
			names = append(names, f.Name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := trailingNumber(names[i]), trailingNumber(names[j])
		if a != b {
			return a < b
		}

		return names[i] < names[j]
	})

	return names
}

func trailingNumber(name string) int {
	base := strings.TrimSuffix(name[strings.LastIndex(name, "/")+1:], filepath.Ext(name))

	i := len(base)
	for i > 0 && base[i-1] >= '0' && base[i-1] <= '9' {
		i--
	}

	n, err := strconv.Atoi(base[i:])
	if err != nil {
		return 0
	}

	return n
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening file")
	}

	return data, nil
}

func extractDocx(data []byte) (string, error) {
	zr, err := openArchive(data)
	if err != nil {
		return "", err
	}

	content, err := readEntry(zr, "word/document.xml")
	if err != nil {
		return "", err
	}

	paras, err := paragraphTexts(content, nsWordproc, false)
	if err != nil {
		return "", err
	}

	return strings.Join(paras, "\n"), nil
}

func extractPptx(data []byte) (string, error) {
	zr, err := openArchive(data)
	if err != nil {
		return "", err
	}

	slides := entriesWithPrefix(zr, "ppt/slides/slide", ".xml")
	if len(slides) == 0 {
		return "", errfmt.New(errfmt.InvalidFormat, "presentation has no slides")
	}

	var sb strings.Builder

	for i, name := range slides {
		content, err := readEntry(zr, name)
		if err != nil {
			return "", err
		}

		paras, err := paragraphTexts(content, nsDrawing, true)
		if err != nil {
			return "", err
		}

		if i > 0 {
			sb.WriteString("\n")
		}

		fmt.Fprintf(&sb, "--- Slide %d ---\n", i+1)
		sb.WriteString(strings.Join(paras, "\n"))
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
