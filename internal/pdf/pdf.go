// Package pdf wraps pdfcpu for structural operations (merge, split, rotate,
// watermark, encryption) and ledongthuc/pdf for text and metadata, which
// pdfcpu does not extract.
package pdf

import (
	"strconv"
	"strings"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// ParsePageRange expands a 1-based range expression like "1,3-5" into page
// numbers. Pages beyond pageCount are silently dropped rather than erroring:
// "extract what exists" is the useful behavior when callers guess at length.
// Malformed syntax is still rejected.
func ParsePageRange(expr string, pageCount int) ([]int, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, errfmt.New(errfmt.ValidationError, "empty page range")
	}

	var pages []int

	seen := make(map[int]bool)

	add := func(n int) {
		if n >= 1 && n <= pageCount && !seen[n] {
			seen[n] = true

			pages = append(pages, n)
		}
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err1 := strconv.Atoi(strings.TrimSpace(lo))
			end, err2 := strconv.Atoi(strings.TrimSpace(hi))

			if err1 != nil || err2 != nil || start < 1 || end < start {
				return nil, errfmt.New(errfmt.ValidationError, "invalid page range %q", part)
			}

			for n := start; n <= end; n++ {
				add(n)
			}

			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, errfmt.New(errfmt.ValidationError, "invalid page number %q", part)
		}

		add(n)
	}

	if len(pages) == 0 {
		return nil, errfmt.New(errfmt.OutOfRange,
			"page range %q selects no pages: document has %d pages", expr, pageCount)
	}

	return pages, nil
}

// pageStrings renders a page list in the string form pdfcpu's page
// selection expects.
func pageStrings(pages []int) []string {
	out := make([]string, len(pages))

	for i, n := range pages {
		out[i] = strconv.Itoa(n)
	}

	return out
}
