package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// OpResult reports an operation that produced one output file.
type OpResult struct {
	Status    string `json:"status"`
	Path      string `json:"path"`
	PageCount int    `json:"page_count,omitempty"`
}

// FilesResult reports an operation that produced several files.
type FilesResult struct {
	Status    string   `json:"status"`
	FileCount int      `json:"file_count"`
	Files     []string `json:"files"`
}

// Merge concatenates the inputs, in order, into outputPath.
func Merge(inputPaths []string, outputPath string) (*OpResult, error) {
	if len(inputPaths) < 2 {
		return nil, errfmt.New(errfmt.ValidationError, "merge needs at least two input files")
	}

	for _, p := range inputPaths {
		if _, err := os.Stat(p); err != nil {
			return nil, errfmt.Wrap(errfmt.NotFound, err, "opening input PDF")
		}
	}

	if err := api.MergeCreateFile(inputPaths, outputPath, false, nil); err != nil {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "merging PDFs")
	}

	return pageCountResult(outputPath)
}

// Split writes each page of inputPath (or only the pages in rangeExpr) as
// its own file under outputDir and returns the generated paths.
func Split(inputPath, outputDir, rangeExpr string) (*FilesResult, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "creating output directory")
	}

	if rangeExpr != "" {
		pages, err := selectPages(inputPath, rangeExpr)
		if err != nil {
			return nil, err
		}

		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

		files := make([]string, 0, len(pages))

		for _, n := range pages {
			out := filepath.Join(outputDir, fmt.Sprintf("%s_page_%d.pdf", base, n))

			if err := api.TrimFile(inputPath, out, pageStrings([]int{n}), nil); err != nil {
				return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "splitting PDF")
			}

			files = append(files, out)
		}

		return &FilesResult{Status: "success", FileCount: len(files), Files: files}, nil
	}

	if err := api.SplitFile(inputPath, outputDir, 1, nil); err != nil {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "splitting PDF")
	}

	files, err := filepath.Glob(filepath.Join(outputDir, "*.pdf"))
	if err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "listing split files")
	}

	// pdfcpu names pieces name_page.pdf; sort for stable output.
	sort.Strings(files)

	return &FilesResult{Status: "success", FileCount: len(files), Files: files}, nil
}

// ExtractPages copies the selected pages into a new document, preserving
// their order in the source.
func ExtractPages(inputPath, outputPath, rangeExpr string) (*OpResult, error) {
	pages, err := selectPages(inputPath, rangeExpr)
	if err != nil {
		return nil, err
	}

	if err := api.TrimFile(inputPath, outputPath, pageStrings(pages), nil); err != nil {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "extracting pages")
	}

	return pageCountResult(outputPath)
}

// Rotate turns the selected pages (all pages when rangeExpr is empty) by the
// given clockwise degrees, which must be a multiple of 90.
func Rotate(inputPath, outputPath string, degrees int, rangeExpr string) (*OpResult, error) {
	if degrees%90 != 0 {
		return nil, errfmt.New(errfmt.ValidationError, "rotation must be a multiple of 90 degrees, got %d", degrees)
	}

	var selection []string

	if rangeExpr != "" {
		pages, err := selectPages(inputPath, rangeExpr)
		if err != nil {
			return nil, err
		}

		selection = pageStrings(pages)
	} else if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	if err := api.RotateFile(inputPath, outputPath, degrees, selection, nil); err != nil {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "rotating pages")
	}

	return pageCountResult(outputPath)
}

// Watermark stamps text across every page. Position is one of diagonal,
// center, or bottom; opacity 0 means the 0.3 default.
func Watermark(inputPath, outputPath, text string, opacity float64, position string) (*OpResult, error) {
	if text == "" {
		return nil, errfmt.New(errfmt.ValidationError, "watermark text must not be empty")
	}

	if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	desc, err := watermarkDesc(opacity, position)
	if err != nil {
		return nil, err
	}

	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		return nil, errfmt.Wrap(errfmt.ValidationError, err, "building watermark")
	}

	if err := api.AddWatermarksFile(inputPath, outputPath, nil, wm, nil); err != nil {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "applying watermark")
	}

	return pageCountResult(outputPath)
}

// watermarkDesc builds the pdfcpu watermark description string.
func watermarkDesc(opacity float64, position string) (string, error) {
	if opacity == 0 {
		opacity = 0.3
	}

	if opacity < 0 || opacity > 1 {
		return "", errfmt.New(errfmt.ValidationError, "opacity must be between 0 and 1, got %g", opacity)
	}

	switch position {
	case "", "diagonal":
		return fmt.Sprintf("scale:0.6, op:%g, rot:45", opacity), nil
	case "center":
		return fmt.Sprintf("scale:0.6, op:%g, rot:0", opacity), nil
	case "bottom":
		return fmt.Sprintf("scale:0.4, op:%g, rot:0, pos:bc", opacity), nil
	default:
		return "", errfmt.New(errfmt.ValidationError,
			"unknown watermark position %q: use diagonal, center, or bottom", position)
	}
}

// ExtractImages pulls embedded images from the selected pages (all pages
// when rangeExpr is empty) into outputDir.
func ExtractImages(inputPath, outputDir, rangeExpr string) (*FilesResult, error) {
	var selection []string

	if rangeExpr != "" {
		pages, err := selectPages(inputPath, rangeExpr)
		if err != nil {
			return nil, err
		}

		selection = pageStrings(pages)
	} else if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "creating output directory")
	}

	if err := api.ExtractImagesFile(inputPath, outputDir, selection, nil); err != nil {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "extracting images")
	}

	files, err := filepath.Glob(filepath.Join(outputDir, "*"))
	if err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "listing extracted images")
	}

	sort.Strings(files)

	return &FilesResult{Status: "success", FileCount: len(files), Files: files}, nil
}

// Encrypt protects the document with a password used as both user and
// owner password.
func Encrypt(inputPath, outputPath, password string) (*OpResult, error) {
	if password == "" {
		return nil, errfmt.New(errfmt.ValidationError, "password must not be empty")
	}

	if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	if err := api.EncryptFile(inputPath, outputPath, conf); err != nil {
		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "encrypting PDF")
	}

	return &OpResult{Status: "success", Path: outputPath}, nil
}

// Decrypt removes password protection.
func Decrypt(inputPath, outputPath, password string) (*OpResult, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password

	if err := api.DecryptFile(inputPath, outputPath, conf); err != nil {
		return nil, errfmt.Wrap(errfmt.ValidationError, err, "decrypting PDF (wrong password?)")
	}

	return pageCountResult(outputPath)
}

// selectPages validates the input and expands the range against its actual
// page count.
func selectPages(inputPath, rangeExpr string) ([]int, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	count, err := api.PageCountFile(inputPath)
	if err != nil {
		if isEncryptionErr(err) {
			return nil, errfmt.Wrap(errfmt.ValidationError, err, "PDF is encrypted; decrypt it first")
		}

		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "reading PDF")
	}

	return ParsePageRange(rangeExpr, count)
}

func pageCountResult(path string) (*OpResult, error) {
	result := &OpResult{Status: "success", Path: path}

	if count, err := api.PageCountFile(path); err == nil {
		result.PageCount = count
	}

	return result, nil
}
