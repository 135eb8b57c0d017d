package docx

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// Document is the structured representation of a document's content.
type Document struct {
	ParagraphCount int             `json:"paragraph_count"`
	TableCount     int             `json:"table_count"`
	Paragraphs     []ParagraphInfo `json:"paragraphs"`
	Tables         []TableDetail   `json:"tables,omitempty"`
}

// ParagraphInfo describes a single top-level paragraph.
type ParagraphInfo struct {
	Index int    `json:"index"`
	Style string `json:"style,omitempty"`
	Text  string `json:"text"`
}

// Read extracts the document structure. Table data is included only when
// includeTables is set.
func Read(session *ooxml.Session, includeTables bool) (*Document, error) {
	b, err := body(session)
	if err != nil {
		return nil, err
	}

	ps := paragraphs(b)
	ts := tables(b)

	doc := &Document{
		ParagraphCount: len(ps),
		TableCount:     len(ts),
		Paragraphs:     make([]ParagraphInfo, 0, len(ps)),
	}

	for i, p := range ps {
		doc.Paragraphs = append(doc.Paragraphs, ParagraphInfo{
			Index: i,
			Style: paragraphStyle(p),
			Text:  paragraphText(p),
		})
	}

	if includeTables {
		for i, tbl := range ts {
			doc.Tables = append(doc.Tables, tableDetail(tbl, i))
		}
	}

	return doc, nil
}

// ReadAsMarkdown renders the document body as markdown: headings become
// #-prefixed lines based on style, tables become pipe tables.
func ReadAsMarkdown(session *ooxml.Session) (string, error) {
	b, err := body(session)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	for _, child := range b.ChildElements() {
		switch child.Tag {
		case tagP:
			md := formatParagraphMarkdown(paragraphText(child), paragraphStyle(child))
			if md != "" {
				sb.WriteString(md)
				sb.WriteString("\n\n")
			}
		case tagTbl:
			md := formatTableMarkdown(child)
			if md != "" {
				sb.WriteString(md)
				sb.WriteString("\n")
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

func formatParagraphMarkdown(text, style string) string {
	if text == "" {
		return ""
	}

	switch strings.ToLower(style) {
	case "title":
		return "# " + text
	case "heading1":
		return "## " + text
	case "heading2":
		return "### " + text
	case "heading3":
		return "#### " + text
	case "heading4":
		return "##### " + text
	case "heading5", "heading6":
		return "###### " + text
	default:
		return text
	}
}

func formatTableMarkdown(tbl *etree.Element) string {
	var rows [][]string

	for _, tr := range tbl.ChildElements() {
		if tr.Tag != tagTr {
			continue
		}

		var cells []string

		for _, tc := range tr.ChildElements() {
			if tc.Tag != tagTc {
				continue
			}

			cells = append(cells, cellText(tc))
		}

		rows = append(rows, cells)
	}

	if len(rows) == 0 {
		return ""
	}

	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	for i := range rows {
		for len(rows[i]) < maxCols {
			rows[i] = append(rows[i], "")
		}
	}

	var sb strings.Builder

	sb.WriteString("| ")
	sb.WriteString(strings.Join(rows[0], " | "))
	sb.WriteString(" |\n")

	sep := make([]string, maxCols)
	for i := range sep {
		sep[i] = "---"
	}

	sb.WriteString("| ")
	sb.WriteString(strings.Join(sep, " | "))
	sb.WriteString(" |\n")

	for _, row := range rows[1:] {
		sb.WriteString("| ")
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString(" |\n")
	}

	return sb.String()
}

// cellText joins a cell's paragraph texts with spaces.
func cellText(tc *etree.Element) string {
	var parts []string

	for _, p := range tc.ChildElements() {
		if p.Tag != tagP {
			continue
		}

		if t := paragraphText(p); t != "" {
			parts = append(parts, t)
		}
	}

	return strings.Join(parts, " ")
}
