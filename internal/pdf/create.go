package pdf

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/soffice"
)

// Create builds a new PDF from plain text, images, or both. Text pages are
// rendered by staging a text file and converting it with LibreOffice, which
// handles pagination and fonts; image pages are appended with pdfcpu, one
// page per image.
func Create(ctx context.Context, outputPath, text string, images []string) (*OpResult, error) {
	if text == "" && len(images) == 0 {
		return nil, errfmt.New(errfmt.ValidationError, "nothing to create: pass text, images, or both")
	}

	for _, img := range images {
		if _, err := os.Stat(img); err != nil {
			return nil, errfmt.Wrap(errfmt.NotFound, err, "opening image")
		}
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errfmt.Wrap(errfmt.IOError, err, "creating output directory")
		}
	}

	if text != "" {
		if err := createTextPDF(ctx, outputPath, text); err != nil {
			return nil, err
		}
	}

	if len(images) > 0 {
		// ImportImagesFile appends to an existing output, so text pages
		// written above come first.
		if err := api.ImportImagesFile(images, outputPath, nil, nil); err != nil {
			return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "adding image pages")
		}
	}

	return pageCountResult(outputPath)
}

func createTextPDF(ctx context.Context, outputPath, text string) error {
	tmpDir, err := os.MkdirTemp("", "docsmith-pdf-")
	if err != nil {
		return errfmt.Wrap(errfmt.IOError, err, "creating work directory")
	}
	defer os.RemoveAll(tmpDir)

	// The staged file's basename drives the converted name.
	base := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	if base == "" {
		base = "document"
	}

	staged := filepath.Join(tmpDir, base+".txt")

	if err := os.WriteFile(staged, []byte(text), 0o644); err != nil {
		return errfmt.Wrap(errfmt.IOError, err, "staging text")
	}

	converted, err := soffice.Convert(ctx, staged, "pdf", tmpDir)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(converted)
	if err != nil {
		return errfmt.Wrap(errfmt.IOError, err, "reading converted PDF")
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return errfmt.Wrap(errfmt.IOError, err, "writing PDF")
	}

	return nil
}
