package cmd

import (
	"context"
	"fmt"

	"github.com/docsmith-dev/docsmith/internal/docx"
	"github.com/docsmith-dev/docsmith/internal/input"
)

// DocxCmd is the top-level command for Word document operations.
type DocxCmd struct {
	Read            DocxReadCmd            `cmd:"" help:"Read document content as structured JSON or markdown"`
	Info            DocxInfoCmd            `cmd:"" help:"Show document metadata and statistics"`
	Replace         DocxReplaceCmd         `cmd:"" help:"Find and replace text across the document"`
	EditText        DocxEditTextCmd        `cmd:"edit-text" help:"Replace the text of one paragraph"`
	InsertParagraph DocxInsertParagraphCmd `cmd:"insert-paragraph" help:"Insert a paragraph at a position"`
	Tables          DocxTablesCmd          `cmd:"" help:"List tables with their cell contents"`
	EditCell        DocxEditCellCmd        `cmd:"edit-cell" help:"Set the text of one table cell"`
	AddTable        DocxAddTableCmd        `cmd:"add-table" help:"Insert a new table at a position"`
	Create          DocxCreateCmd          `cmd:"" help:"Create a blank document"`
	ToPDF           DocxToPDFCmd           `cmd:"to-pdf" help:"Convert the document to PDF via LibreOffice"`
}

// DocxReadCmd reads paragraphs, optionally tables, or renders markdown.
type DocxReadCmd struct {
	File     string `arg:"" help:"DOCX file path"`
	Tables   bool   `help:"Include table contents" short:"t"`
	Markdown bool   `help:"Output markdown instead of JSON" short:"m"`
}

func (c *DocxReadCmd) Run(out *Output) error {
	session, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	if c.Markdown {
		md, err := docx.ReadAsMarkdown(session)
		if err != nil {
			return err
		}

		fmt.Print(md)

		return nil
	}

	doc, err := docx.Read(session, c.Tables)
	if err != nil {
		return err
	}

	return out.Emit(doc)
}

// DocxInfoCmd shows metadata and structure statistics.
type DocxInfoCmd struct {
	File string `arg:"" help:"DOCX file path"`
}

func (c *DocxInfoCmd) Run(out *Output) error {
	session, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	info, err := docx.ReadInfo(session)
	if err != nil {
		return err
	}

	return out.Emit(info)
}

// DocxReplaceCmd substitutes text document-wide, formatting preserved.
type DocxReplaceCmd struct {
	File    string `arg:"" help:"DOCX file path"`
	Find    string `help:"Text to find" required:""`
	Replace string `help:"Replacement text" required:""`
}

func (c *DocxReplaceCmd) Run(out *Output) error {
	session, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := docx.Replace(session, c.Find, c.Replace)
	if err != nil {
		return err
	}

	if result.Replacements > 0 {
		if err := session.SaveInPlace(); err != nil {
			return err
		}
	}

	return out.Emit(result)
}

// DocxEditTextCmd rewrites one paragraph's text.
type DocxEditTextCmd struct {
	File      string `arg:"" help:"DOCX file path"`
	Paragraph int    `help:"0-based paragraph index" required:""`
	Text      string `help:"New text (@file or - for stdin)" required:""`
}

func (c *DocxEditTextCmd) Run(out *Output) error {
	text, err := input.Resolve(c.Text)
	if err != nil {
		return err
	}

	session, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := docx.EditParagraphText(session, c.Paragraph, text)
	if err != nil {
		return err
	}

	if err := session.SaveInPlace(); err != nil {
		return err
	}

	return out.Emit(result)
}

// DocxInsertParagraphCmd inserts a paragraph at an index, "end", or beyond.
type DocxInsertParagraphCmd struct {
	File     string `arg:"" help:"DOCX file path"`
	Text     string `help:"Paragraph text (@file or - for stdin)" required:""`
	Position string `help:"Block index, or 'end' (default)" default:"end"`
	Style    string `help:"Paragraph style name (Title, Heading1, ...)"`
}

func (c *DocxInsertParagraphCmd) Run(out *Output) error {
	text, err := input.Resolve(c.Text)
	if err != nil {
		return err
	}

	session, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := docx.InsertParagraph(session, c.Position, text, c.Style)
	if err != nil {
		return err
	}

	if err := session.SaveInPlace(); err != nil {
		return err
	}

	return out.Emit(result)
}

// DocxTablesCmd lists tables.
type DocxTablesCmd struct {
	File  string `arg:"" help:"DOCX file path"`
	Index int    `help:"0-based table index; -1 for all" default:"-1"`
}

func (c *DocxTablesCmd) Run(out *Output) error {
	session, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := docx.ReadTables(session, c.Index)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// DocxEditCellCmd sets one table cell's text.
type DocxEditCellCmd struct {
	File  string `arg:"" help:"DOCX file path"`
	Table int    `help:"0-based table index" required:""`
	Row   int    `help:"0-based row index" required:""`
	Col   int    `help:"0-based column index" required:""`
	Text  string `help:"New cell text (@file or - for stdin)" required:""`
}

func (c *DocxEditCellCmd) Run(out *Output) error {
	text, err := input.Resolve(c.Text)
	if err != nil {
		return err
	}

	session, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := docx.EditTableCell(session, c.Table, c.Row, c.Col, text)
	if err != nil {
		return err
	}

	if err := session.SaveInPlace(); err != nil {
		return err
	}

	return out.Emit(result)
}

// DocxAddTableCmd inserts a table, optionally pre-filled from JSON data.
type DocxAddTableCmd struct {
	File     string `arg:"" help:"DOCX file path"`
	Rows     int    `help:"Row count" required:""`
	Cols     int    `help:"Column count" required:""`
	Position string `help:"Block index, or 'end' (default)" default:"end"`
	Data     string `help:"JSON array of rows to fill cells (@file or - for stdin)"`
}

func (c *DocxAddTableCmd) Run(out *Output) error {
	data := c.Data

	if data != "" {
		resolved, err := input.Resolve(data)
		if err != nil {
			return err
		}

		data = resolved
	}

	session, err := docx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := docx.AddTable(session, c.Rows, c.Cols, c.Position, data)
	if err != nil {
		return err
	}

	if err := session.SaveInPlace(); err != nil {
		return err
	}

	return out.Emit(result)
}

// DocxCreateCmd creates a minimal blank document.
type DocxCreateCmd struct {
	File string `arg:"" help:"Path for the new DOCX file"`
}

func (c *DocxCreateCmd) Run(out *Output) error {
	result, err := docx.Create(c.File)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// DocxToPDFCmd converts to PDF with LibreOffice.
type DocxToPDFCmd struct {
	File   string `arg:"" help:"DOCX file path"`
	Output string `help:"Output PDF path (default: next to input)" short:"o"`
}

func (c *DocxToPDFCmd) Run(ctx context.Context, out *Output) error {
	result, err := docx.ToPDF(ctx, c.File, c.Output)
	if err != nil {
		return err
	}

	return out.Emit(result)
}
