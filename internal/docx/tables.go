package docx

import (
	"encoding/json"
	"fmt"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
	"github.com/docsmith-dev/docsmith/internal/runs"
)

// TableDetail describes a table's structure and content.
type TableDetail struct {
	Index int        `json:"index"`
	Rows  int        `json:"rows"`
	Cols  int        `json:"cols"`
	Data  [][]string `json:"data"`
}

// TablesResult is the read-tables payload.
type TablesResult struct {
	TableCount int           `json:"table_count"`
	Tables     []TableDetail `json:"tables"`
}

// ReadTables returns table structure and content. index selects one table
// (0-based, strict); a negative index returns all tables.
func ReadTables(session *ooxml.Session, index int) (*TablesResult, error) {
	b, err := body(session)
	if err != nil {
		return nil, err
	}

	ts := tables(b)

	result := &TablesResult{TableCount: len(ts), Tables: []TableDetail{}}

	if index >= 0 {
		if index >= len(ts) {
			return nil, tableRangeErr(index, len(ts))
		}

		result.Tables = append(result.Tables, tableDetail(ts[index], index))

		return result, nil
	}

	for i, tbl := range ts {
		result.Tables = append(result.Tables, tableDetail(tbl, i))
	}

	return result, nil
}

func tableRangeErr(index, count int) error {
	return errfmt.New(errfmt.OutOfRange,
		"table index %d out of range: document has %d tables", index, count)
}

// tableDetail extracts structure and content from a w:tbl element.
func tableDetail(tbl *etree.Element, index int) TableDetail {
	td := TableDetail{Index: index, Data: [][]string{}}

	for _, tr := range tbl.ChildElements() {
		if tr.Tag != tagTr {
			continue
		}

		var row []string

		for _, tc := range tr.ChildElements() {
			if tc.Tag != tagTc {
				continue
			}

			row = append(row, cellText(tc))
		}

		td.Data = append(td.Data, row)
		td.Rows++

		if len(row) > td.Cols {
			td.Cols = len(row)
		}
	}

	return td
}

// CellEditResult reports a table-cell edit.
type CellEditResult struct {
	Status     string `json:"status"`
	TableIndex int    `json:"table_index"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Text       string `json:"text"`
}

// EditTableCell rewrites one cell's text. All indices are 0-based and
// strict: anything outside [0, count) is OutOfRange, never clamped.
// The cell's first paragraph is rewritten as a single run keeping its first
// run's formatting; a cell with no paragraph gets one.
func EditTableCell(session *ooxml.Session, tableIdx, row, col int, text string) (*CellEditResult, error) {
	b, err := body(session)
	if err != nil {
		return nil, err
	}

	ts := tables(b)
	if tableIdx < 0 || tableIdx >= len(ts) {
		return nil, tableRangeErr(tableIdx, len(ts))
	}

	tbl := ts[tableIdx]

	trs := childrenWithTag(tbl, tagTr)
	if row < 0 || row >= len(trs) {
		return nil, errfmt.New(errfmt.OutOfRange,
			"row index %d out of range: table %d has %d rows", row, tableIdx, len(trs))
	}

	tcs := childrenWithTag(trs[row], tagTc)
	if col < 0 || col >= len(tcs) {
		return nil, errfmt.New(errfmt.OutOfRange,
			"col index %d out of range: row %d has %d cells", col, row, len(tcs))
	}

	setCellText(tcs[col], text)

	session.MarkDirty(documentPart)

	return &CellEditResult{
		Status:     "success",
		TableIndex: tableIdx,
		Row:        row,
		Col:        col,
		Text:       text,
	}, nil
}

func childrenWithTag(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element

	for _, child := range e.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
	}

	return out
}

// setCellText rewrites the cell's first paragraph via the runs engine,
// creating the paragraph when the cell has none.
func setCellText(tc *etree.Element, text string) {
	ps := childrenWithTag(tc, tagP)

	if len(ps) == 0 {
		tc.AddChild(buildParagraph(text))

		return
	}

	block := blockFromParagraph(ps[0])
	runs.SetText(block, text)
	applyBlock(ps[0], block)
}

// AddTableResult reports a table insertion.
type AddTableResult struct {
	Status     string   `json:"status"`
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	TableIndex int      `json:"table_index"`
	Position   int      `json:"position"`
	Warnings   []string `json:"warnings,omitempty"`
}

// AddTable builds a rows×cols table and splices it into the top-level block
// sequence at position ("end" or a clamped index). data, when non-empty, is a
// JSON array of row arrays used to prefill cells; fill problems (bad JSON,
// surplus rows or columns) degrade to warnings, never failures.
func AddTable(session *ooxml.Session, rowCount, colCount int, position, data string) (*AddTableResult, error) {
	if rowCount < 1 || colCount < 1 {
		return nil, errfmt.New(errfmt.ValidationError,
			"rows and cols must be at least 1, got %dx%d", rowCount, colCount)
	}

	target, err := runs.ParseTarget(position)
	if err != nil {
		return nil, errfmt.Wrap(errfmt.ValidationError, err)
	}

	b, err := body(session)
	if err != nil {
		return nil, err
	}

	cells, warnings := parseTableData(data, rowCount, colCount)
	tbl := buildTable(rowCount, colCount, cells)

	seq := blocks(b)
	plan := runs.PlanInsert(len(seq), target)
	pos := splice(b, seq, plan, tbl)

	session.MarkDirty(documentPart)

	return &AddTableResult{
		Status:     "success",
		Rows:       rowCount,
		Cols:       colCount,
		TableIndex: len(tables(b)) - 1,
		Position:   pos,
		Warnings:   warnings,
	}, nil
}

// parseTableData decodes the optional fill payload. The returned grid is
// always rowCount×colCount; anything that does not fit is reported as a
// warning and dropped.
func parseTableData(data string, rowCount, colCount int) ([][]string, []string) {
	if data == "" {
		return nil, nil
	}

	var raw [][]any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, []string{fmt.Sprintf("table data ignored: not a JSON array of rows: %v", err)}
	}

	var warnings []string

	cells := make([][]string, rowCount)
	for i := range cells {
		cells[i] = make([]string, colCount)
	}

	for r, rowData := range raw {
		if r >= rowCount {
			warnings = append(warnings, fmt.Sprintf("table data has %d rows, table has %d; extra rows dropped", len(raw), rowCount))

			break
		}

		for c, v := range rowData {
			if c >= colCount {
				warnings = append(warnings, fmt.Sprintf("row %d has %d values, table has %d columns; extra values dropped", r, len(rowData), colCount))

				break
			}

			cells[r][c] = fmt.Sprint(v)
		}
	}

	return cells, warnings
}

// buildTable creates a w:tbl with a grid and bordered single-width columns,
// prefilled from cells when provided.
func buildTable(rowCount, colCount int, cells [][]string) *etree.Element {
	tbl := etree.NewElement("w:tbl")

	tblPr := tbl.CreateElement("w:tblPr")
	style := tblPr.CreateElement("w:tblStyle")
	style.CreateAttr("w:val", "TableGrid")
	width := tblPr.CreateElement("w:tblW")
	width.CreateAttr("w:w", "0")
	width.CreateAttr("w:type", "auto")

	grid := tbl.CreateElement("w:tblGrid")
	for c := 0; c < colCount; c++ {
		grid.CreateElement("w:gridCol")
	}

	for r := 0; r < rowCount; r++ {
		tr := tbl.CreateElement("w:tr")

		for c := 0; c < colCount; c++ {
			tc := tr.CreateElement("w:tc")

			text := ""
			if cells != nil {
				text = cells[r][c]
			}

			tc.AddChild(buildParagraph(text))
		}
	}

	return tbl
}
