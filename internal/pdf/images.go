package pdf

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// PdftoppmBinary is the rasterizer executable, overridable for tests.
var PdftoppmBinary = "pdftoppm"

// ToImages rasterizes each page to a PNG under outputDir at the given DPI
// using poppler's pdftoppm. Files are named page-N.png with pdftoppm's
// zero-padded numbering.
func ToImages(ctx context.Context, inputPath, outputDir string, dpi int) (*FilesResult, error) {
	if dpi <= 0 {
		return nil, errfmt.New(errfmt.ValidationError, "dpi must be positive, got %d", dpi)
	}

	if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	bin, err := exec.LookPath(PdftoppmBinary)
	if err != nil {
		return nil, errfmt.New(errfmt.DependencyUnavailable,
			"pdftoppm not found: install poppler-utils to render PDF pages")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "creating output directory")
	}

	prefix := filepath.Join(outputDir, "page")

	cmd := exec.CommandContext(ctx, bin, "-png", "-r", strconv.Itoa(dpi), inputPath, prefix)

	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errfmt.New(errfmt.IOError, "pdftoppm failed: %v: %s", err, firstLine(out))
	}

	files, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "listing rendered pages")
	}

	if len(files) == 0 {
		return nil, errfmt.New(errfmt.IOError, "pdftoppm produced no pages")
	}

	sort.Strings(files)

	return &FilesResult{Status: "success", FileCount: len(files), Files: files}, nil
}

func firstLine(out []byte) string {
	for i, b := range out {
		if b == '\n' {
			return string(out[:i])
		}
	}

	if len(out) == 0 {
		return "no output"
	}

	return string(out)
}
