package pptx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// ExtractedImage is one image written to disk.
type ExtractedImage struct {
	Slide int    `json:"slide_number"`
	Path  string `json:"path"`
}

// ExtractImagesResult reports image extraction.
type ExtractImagesResult struct {
	Status     string           `json:"status"`
	ImageCount int              `json:"image_count"`
	Images     []ExtractedImage `json:"images"`
}

// ExtractImages copies the media referenced by slide image relationships
// into outputDir, named slideN_imageM with the source extension.
// slideNumber 0 means all slides. A media target shared by several slides
// is written once per referencing slide.
func ExtractImages(session *ooxml.Session, slideNumber int, outputDir string) (*ExtractImagesResult, error) {
	parts, err := slideParts(session)
	if err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(parts))

	if slideNumber > 0 {
		if _, err := slidePart(parts, slideNumber); err != nil {
			return nil, err
		}

		numbers = append(numbers, slideNumber)
	} else {
		for i := range parts {
			numbers = append(numbers, i+1)
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "creating output directory")
	}

	result := &ExtractImagesResult{Status: "success", Images: []ExtractedImage{}}

	for _, n := range numbers {
		part := parts[n-1]

		targets := relsByType(session, slideRelsPart(part), "ppt/slides", "/image")

		for i, target := range targets {
			data, err := session.RawPart(target)
			if err != nil {
				return nil, err
			}

			ext := strings.ToLower(filepath.Ext(target))
			if ext == "" {
				ext = ".bin"
			}

			out := filepath.Join(outputDir, fmt.Sprintf("slide%d_image%d%s", n, i+1, ext))

			if err := os.WriteFile(out, data, 0o644); err != nil {
				return nil, errfmt.Wrap(errfmt.IOError, err, "writing image file")
			}

			result.Images = append(result.Images, ExtractedImage{Slide: n, Path: out})
		}
	}

	result.ImageCount = len(result.Images)

	return result, nil
}
