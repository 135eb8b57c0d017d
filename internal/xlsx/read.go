package xlsx

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// Cell is one populated cell.
type Cell struct {
	Ref     string `json:"cell"`
	Value   string `json:"value"`
	Formula string `json:"formula,omitempty"`
}

// SheetData is one worksheet's populated cells in document order.
type SheetData struct {
	Name      string `json:"name"`
	CellCount int    `json:"cell_count"`
	Cells     []Cell `json:"cells"`
}

// Workbook is the result of a read.
type Workbook struct {
	SheetCount int         `json:"sheet_count"`
	SheetNames []string    `json:"sheet_names"`
	Sheets     []SheetData `json:"sheets"`
}

// Read lists populated cells. sheetName "" reads every sheet; otherwise only
// the named sheet is loaded.
func Read(session *ooxml.Session, sheetName string) (*Workbook, error) {
	all, err := sheets(session)
	if err != nil {
		return nil, err
	}

	shared, err := sharedStrings(session)
	if err != nil {
		return nil, err
	}

	wb := &Workbook{SheetCount: len(all)}

	for _, s := range all {
		wb.SheetNames = append(wb.SheetNames, s.Name)
	}

	selected := all

	if sheetName != "" {
		ref, err := resolveSheet(session, sheetName)
		if err != nil {
			return nil, err
		}

		selected = []SheetRef{ref}
	}

	for _, ref := range selected {
		data, err := readSheet(session, ref, shared)
		if err != nil {
			return nil, err
		}

		wb.Sheets = append(wb.Sheets, *data)
	}

	return wb, nil
}

func readSheet(session *ooxml.Session, ref SheetRef, shared []string) (*SheetData, error) {
	doc, err := session.Part(ref.Part)
	if err != nil {
		return nil, err
	}

	data := &SheetData{Name: ref.Name, Cells: []Cell{}}

	sd := sheetData(doc)
	if sd == nil {
		return data, nil
	}

	for _, row := range sd.ChildElements() {
		if row.Tag != "row" {
			continue
		}

		for _, c := range row.ChildElements() {
			if c.Tag != "c" {
				continue
			}

			cell := Cell{
				Ref:     attrValue(c, "r"),
				Value:   cellValue(c, shared),
				Formula: cellFormula(c),
			}

			if cell.Value == "" && cell.Formula == "" {
				continue
			}

			data.Cells = append(data.Cells, cell)
		}
	}

	data.CellCount = len(data.Cells)

	return data, nil
}

// GetCell returns one cell by reference, with empty value when the cell is
// not populated.
func GetCell(session *ooxml.Session, sheetName, cellRef string) (*Cell, error) {
	col, row, err := parseRef(cellRef)
	if err != nil {
		return nil, err
	}

	cellRef = colName(col) + strconv.Itoa(row)

	ref, err := resolveSheet(session, sheetName)
	if err != nil {
		return nil, err
	}

	shared, err := sharedStrings(session)
	if err != nil {
		return nil, err
	}

	doc, err := session.Part(ref.Part)
	if err != nil {
		return nil, err
	}

	if c := findCell(doc, cellRef); c != nil {
		return &Cell{Ref: cellRef, Value: cellValue(c, shared), Formula: cellFormula(c)}, nil
	}

	return &Cell{Ref: cellRef}, nil
}

func findCell(doc *etree.Document, cellRef string) *etree.Element {
	sd := sheetData(doc)
	if sd == nil {
		return nil
	}

	for _, row := range sd.ChildElements() {
		for _, c := range row.ChildElements() {
			if c.Tag == "c" && attrValue(c, "r") == cellRef {
				return c
			}
		}
	}

	return nil
}
