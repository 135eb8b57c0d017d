package officetext

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// extractXlsx renders each worksheet as tab-separated rows, resolving
// shared string references. Multi-sheet workbooks get "Sheet N:" headers.
func extractXlsx(data []byte) (string, error) {
	zr, err := openArchive(data)
	if err != nil {
		return "", err
	}

	var shared []string

	if ssData, err := readEntry(zr, "xl/sharedStrings.xml"); err == nil {
		shared = parseSharedStrings(ssData)
	}

	sheets := entriesWithPrefix(zr, "xl/worksheets/sheet", ".xml")
	if len(sheets) == 0 {
		return "", errfmt.New(errfmt.InvalidFormat, "workbook has no worksheets")
	}

	var sb strings.Builder

	for i, name := range sheets {
		content, err := readEntry(zr, name)
		if err != nil {
			return "", err
		}

		if len(sheets) > 1 {
			if i > 0 {
				sb.WriteString("\n")
			}

			fmt.Fprintf(&sb, "Sheet %d:\n", i+1)
		}

		for _, row := range parseWorksheet(content, shared) {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

// parseSharedStrings builds the shared string table from xl/sharedStrings.xml.
// Rich-text items concatenate their runs into one entry.
func parseSharedStrings(data []byte) []string {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var table []string

	var current strings.Builder

	inItem := false
	inText := false

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				inItem = true

				current.Reset()
			case "t":
				inText = inItem
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "si":
				if inItem {
					table = append(table, current.String())
					inItem = false
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return table
}

// parseWorksheet walks a worksheet part and returns rows of rendered cell
// values. Cells of type "s" index the shared string table; everything else
// uses the raw cached value.
func parseWorksheet(data []byte, shared []string) [][]string {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var rows [][]string

	var currentRow []string

	var currentVal strings.Builder

	inRow := false
	inCell := false
	inValue := false
	cellType := ""

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				inRow = true
				currentRow = nil
			case "c":
				inCell = inRow
				cellType = ""

				for _, a := range t.Attr {
					if a.Name.Local == "t" {
						cellType = a.Value
					}
				}
			case "v", "t":
				if inCell {
					inValue = true

					currentVal.Reset()
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				if inValue {
					currentRow = append(currentRow, renderCell(currentVal.String(), cellType, shared))
					inValue = false
				}
			case "c":
				inCell = false
			case "row":
				if inRow {
					rows = append(rows, currentRow)
					inRow = false
				}
			}
		case xml.CharData:
			if inValue {
				currentVal.Write(t)
			}
		}
	}

	return rows
}

func renderCell(raw, cellType string, shared []string) string {
	if cellType != "s" {
		return raw
	}

	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= len(shared) {
		return ""
	}

	return shared[idx]
}
