package docx

import (
	"context"
	"os"
	"path/filepath"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/soffice"
)

// ConvertResult reports a PDF conversion.
type ConvertResult struct {
	Status string `json:"status"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ToPDF converts a document to PDF via LibreOffice. When outputPath is
// empty the PDF lands next to the input with a .pdf extension.
func ToPDF(ctx context.Context, inputPath, outputPath string) (*ConvertResult, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening document")
	}

	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = inputPath[:len(inputPath)-len(ext)] + ".pdf"
	}

	outDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "creating output directory")
	}

	converted, err := soffice.Convert(ctx, inputPath, "pdf", outDir)
	if err != nil {
		return nil, err
	}

	if converted != outputPath {
		if err := os.Rename(converted, outputPath); err != nil {
			return nil, errfmt.Wrap(errfmt.IOError, err, "moving converted PDF")
		}
	}

	return &ConvertResult{Status: "success", Input: inputPath, Output: outputPath}, nil
}
