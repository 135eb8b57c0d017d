package officetext

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// paragraphTexts walks one part's XML and collects the text of each
// paragraph element in the given namespace. DOCX and PPTX share the same
// p/t nesting shape, differing only in namespace and whether empty
// paragraphs matter (slides skip them, documents keep them as blank lines).
func paragraphTexts(data []byte, namespace string, skipEmpty bool) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var paragraphs []string

	var current strings.Builder

	inParagraph := false
	inText := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, errfmt.Wrap(errfmt.InvalidFormat, err, "parsing XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != namespace {
				continue
			}

			switch t.Name.Local {
			case "p":
				inParagraph = true

				current.Reset()
			case "t":
				inText = inParagraph
			}
		case xml.EndElement:
			if t.Name.Space != namespace {
				continue
			}

			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					if text := current.String(); text != "" || !skipEmpty {
						paragraphs = append(paragraphs, text)
					}

					inParagraph = false
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
