package pdf

import (
	"os"

	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// PageText is one page's extracted text.
type PageText struct {
	Page int    `json:"page_number"`
	Text string `json:"text"`
}

// Document is the result of a text read.
type Document struct {
	PageCount int        `json:"page_count"`
	Pages     []PageText `json:"pages"`
}

// ReadText extracts text from the selected pages, or every page when
// rangeExpr is empty. Pages without a text layer (scanned documents)
// come back empty, not as errors.
func ReadText(path, rangeExpr string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening PDF")
	}

	f, r, err := ledongthuc.Open(path)
	if err != nil {
		if isEncryptionErr(err) {
			return nil, errfmt.Wrap(errfmt.ValidationError, err, "PDF is encrypted; decrypt it first")
		}

		return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "reading PDF")
	}
	defer f.Close()

	total := r.NumPage()

	var pages []int

	if rangeExpr == "" {
		for n := 1; n <= total; n++ {
			pages = append(pages, n)
		}
	} else {
		pages, err = ParsePageRange(rangeExpr, total)
		if err != nil {
			return nil, err
		}
	}

	doc := &Document{PageCount: total}

	for _, n := range pages {
		page := r.Page(n)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, PageText{Page: n})

			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}

		doc.Pages = append(doc.Pages, PageText{Page: n, Text: text})
	}

	return doc, nil
}
