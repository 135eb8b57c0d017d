package xlsx

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

const bookContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
  <Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
  <Override PartName="/xl/worksheets/sheet2.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
  <Override PartName="/xl/sharedStrings.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"/>
</Types>`

const bookWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="Data" sheetId="1" r:id="rId1"/>
    <sheet name="Summary" sheetId="2" r:id="rId2"/>
  </sheets>
</workbook>`

const bookWorkbookRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet2.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings" Target="sharedStrings.xml"/>
</Relationships>`

// The second item is split into rich-text runs; readers must flatten it.
const bookSharedStrings = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="2" uniqueCount="2">
  <si><t>Name</t></si>
  <si><r><t>Wid</t></r><r><t>get</t></r></si>
</sst>`

const bookSheet1 = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1">
      <c r="A1" t="s"><v>0</v></c>
      <c r="B1" t="inlineStr"><is><t>Qty</t></is></c>
    </row>
    <row r="2">
      <c r="A2" t="s"><v>1</v></c>
      <c r="B2"><v>42</v></c>
    </row>
    <row r="4">
      <c r="C4" t="b"><v>1</v></c>
    </row>
  </sheetData>
</worksheet>`

const bookSheet2 = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
  <sheetData>
    <row r="1">
      <c r="A1" t="e"><f>B1/C1</f><v>#DIV/0!</v></c>
      <c r="B1"><v>7</v></c>
    </row>
  </sheetData>
</worksheet>`

func newTestWorkbook(t *testing.T) *ooxml.Session {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.xlsx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	parts := map[string]string{
		"[Content_Types].xml":        bookContentTypes,
		"xl/workbook.xml":            bookWorkbook,
		"xl/_rels/workbook.xml.rels": bookWorkbookRels,
		"xl/sharedStrings.xml":       bookSharedStrings,
		"xl/worksheets/sheet1.xml":   bookSheet1,
		"xl/worksheets/sheet2.xml":   bookSheet2,
	}

	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry %s: %v", name, err)
		}

		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	session, err := Open(path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}

	return session
}

func TestReadWorkbook(t *testing.T) {
	session := newTestWorkbook(t)

	wb, err := Read(session, "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if wb.SheetCount != 2 {
		t.Fatalf("sheet count = %d, want 2", wb.SheetCount)
	}

	if wb.SheetNames[0] != "Data" || wb.SheetNames[1] != "Summary" {
		t.Errorf("sheet names = %v", wb.SheetNames)
	}

	data := wb.Sheets[0]
	if data.CellCount != 5 {
		t.Fatalf("Data cell count = %d, want 5", data.CellCount)
	}

	want := map[string]string{
		"A1": "Name",
		"B1": "Qty",
		"A2": "Widget",
		"B2": "42",
		"C4": "TRUE",
	}

	for _, cell := range data.Cells {
		if cell.Value != want[cell.Ref] {
			t.Errorf("%s = %q, want %q", cell.Ref, cell.Value, want[cell.Ref])
		}
	}
}

func TestReadSingleSheet(t *testing.T) {
	session := newTestWorkbook(t)

	wb, err := Read(session, "Summary")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(wb.Sheets) != 1 || wb.Sheets[0].Name != "Summary" {
		t.Fatalf("sheets = %+v, want just Summary", wb.Sheets)
	}

	a1 := wb.Sheets[0].Cells[0]
	if a1.Formula != "=B1/C1" || a1.Value != "#DIV/0!" {
		t.Errorf("A1 = %+v, want the cached error with its formula", a1)
	}
}

func TestGetCell(t *testing.T) {
	session := newTestWorkbook(t)

	cell, err := GetCell(session, "Data", "B1")
	if err != nil {
		t.Fatalf("GetCell: %v", err)
	}

	if cell.Value != "Qty" {
		t.Errorf("B1 = %q, want Qty", cell.Value)
	}

	// Lowercase refs resolve to the same cell.
	cell, err = GetCell(session, "Data", "b2")
	if err != nil {
		t.Fatalf("GetCell lowercase: %v", err)
	}

	if cell.Ref != "B2" || cell.Value != "42" {
		t.Errorf("b2 = %+v, want normalized B2 = 42", cell)
	}

	// An unpopulated cell reads back empty, not as an error.
	cell, err = GetCell(session, "Data", "D9")
	if err != nil {
		t.Fatalf("GetCell empty: %v", err)
	}

	if cell.Value != "" || cell.Formula != "" {
		t.Errorf("D9 = %+v, want empty", cell)
	}
}

func TestResolveSheetNames(t *testing.T) {
	session := newTestWorkbook(t)

	ref, err := resolveSheet(session, "")
	if err != nil || ref.Name != "Data" {
		t.Errorf("default sheet = %+v, %v; want first sheet Data", ref, err)
	}

	ref, err = resolveSheet(session, "summary")
	if err != nil || ref.Name != "Summary" {
		t.Errorf("case-insensitive = %+v, %v", ref, err)
	}

	if _, err := resolveSheet(session, "Nope"); errfmt.KindOf(err) != errfmt.NotFoundSemantic {
		t.Errorf("unknown sheet: kind = %v, want NotFoundSemantic", errfmt.KindOf(err))
	}
}

func TestSetCellKinds(t *testing.T) {
	session := newTestWorkbook(t)

	cases := []struct {
		ref   string
		value string
		wantF string
		wantV string
	}{
		{"D1", "hello", "", "hello"},
		{"D2", "3.14", "", "3.14"},
		{"D3", "=SUM(B2:B4)", "=SUM(B2:B4)", ""},
		{"d4", "mixed case ref", "", "mixed case ref"},
	}

	for _, tc := range cases {
		result, err := SetCell(session, "Data", tc.ref, tc.value)
		if err != nil {
			t.Fatalf("SetCell %s: %v", tc.ref, err)
		}

		if result.Formula != tc.wantF || result.Value != tc.wantV {
			t.Errorf("SetCell %s = %+v", tc.ref, result)
		}
	}

	for ref, want := range map[string]string{"D1": "hello", "D2": "3.14", "D4": "mixed case ref"} {
		cell, err := GetCell(session, "Data", ref)
		if err != nil {
			t.Fatalf("GetCell %s: %v", ref, err)
		}

		if cell.Value != want {
			t.Errorf("%s = %q, want %q", ref, cell.Value, want)
		}
	}

	cell, err := GetCell(session, "Data", "D3")
	if err != nil {
		t.Fatalf("GetCell D3: %v", err)
	}

	if cell.Formula != "=SUM(B2:B4)" {
		t.Errorf("D3 formula = %q", cell.Formula)
	}
}

func TestSetCellOverwritesType(t *testing.T) {
	session := newTestWorkbook(t)

	// A2 starts as a shared string; writing a number must drop the old
	// type attribute, not leave a numeric v behind a t="s".
	if _, err := SetCell(session, "Data", "A2", "99"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}

	cell, err := GetCell(session, "Data", "A2")
	if err != nil {
		t.Fatalf("GetCell: %v", err)
	}

	if cell.Value != "99" {
		t.Errorf("A2 = %q, want 99", cell.Value)
	}
}

func TestSetCellKeepsRowAndCellOrder(t *testing.T) {
	session := newTestWorkbook(t)

	// Row 3 lands between existing rows 2 and 4; A4 lands before C4.
	if _, err := SetCell(session, "Data", "B3", "between"); err != nil {
		t.Fatalf("SetCell B3: %v", err)
	}

	if _, err := SetCell(session, "Data", "A4", "first"); err != nil {
		t.Fatalf("SetCell A4: %v", err)
	}

	if err := session.SaveInPlace(); err != nil {
		t.Fatalf("SaveInPlace: %v", err)
	}

	reopened, err := Open(session.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	wb, err := Read(reopened, "Data")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var refs []string
	for _, cell := range wb.Sheets[0].Cells {
		refs = append(refs, cell.Ref)
	}

	want := []string{"A1", "B1", "A2", "B2", "B3", "A4", "C4"}
	if len(refs) != len(want) {
		t.Fatalf("refs = %v, want %v", refs, want)
	}

	for i := range want {
		if refs[i] != want[i] {
			t.Fatalf("refs = %v, want %v (document order)", refs, want)
		}
	}
}

func TestSetCellPreservesPadding(t *testing.T) {
	session := newTestWorkbook(t)

	if _, err := SetCell(session, "Data", "E1", "  padded  "); err != nil {
		t.Fatalf("SetCell: %v", err)
	}

	if err := session.SaveInPlace(); err != nil {
		t.Fatalf("SaveInPlace: %v", err)
	}

	reopened, err := Open(session.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	cell, err := GetCell(reopened, "Data", "E1")
	if err != nil {
		t.Fatalf("GetCell: %v", err)
	}

	if cell.Value != "  padded  " {
		t.Errorf("E1 = %q, leading and trailing spaces must survive the save", cell.Value)
	}
}

func TestSetCellBadRef(t *testing.T) {
	session := newTestWorkbook(t)

	for _, ref := range []string{"", "12", "ABC", "A0", "A1.5"} {
		if _, err := SetCell(session, "Data", ref, "x"); errfmt.KindOf(err) != errfmt.ValidationError {
			t.Errorf("ref %q: kind = %v, want ValidationError", ref, errfmt.KindOf(err))
		}
	}
}

func TestApplyUpdates(t *testing.T) {
	session := newTestWorkbook(t)

	updates := `[
		{"cell": "D1", "value": 100},
		{"cell": "d2", "value": "=D1*2"},
		{"cell": "D3", "value": "note"},
		{"cell": "D4", "value": true}
	]`

	result, err := ApplyUpdates(session, "Data", updates)
	if err != nil {
		t.Fatalf("ApplyUpdates: %v", err)
	}

	if result.Count != 4 {
		t.Fatalf("count = %d, want 4", result.Count)
	}

	if result.UpdatedCells[1] != "D2" {
		t.Errorf("updated cells = %v, refs must be normalized", result.UpdatedCells)
	}

	for ref, want := range map[string]string{"D1": "100", "D3": "note", "D4": "TRUE"} {
		cell, err := GetCell(session, "Data", ref)
		if err != nil {
			t.Fatalf("GetCell %s: %v", ref, err)
		}

		if cell.Value != want {
			t.Errorf("%s = %q, want %q", ref, cell.Value, want)
		}
	}

	cell, err := GetCell(session, "Data", "D2")
	if err != nil {
		t.Fatalf("GetCell D2: %v", err)
	}

	if cell.Formula != "=D1*2" {
		t.Errorf("D2 formula = %q", cell.Formula)
	}
}

func TestApplyUpdatesValidation(t *testing.T) {
	session := newTestWorkbook(t)

	cases := map[string]string{
		"missing cell key": `[{"value": 1}]`,
		"empty list":       `[]`,
		"not json":         `slide 1`,
	}

	for name, updates := range cases {
		if _, err := ApplyUpdates(session, "Data", updates); errfmt.KindOf(err) != errfmt.ValidationError {
			t.Errorf("%s: kind = %v, want ValidationError", name, errfmt.KindOf(err))
		}
	}
}

func TestCheckErrors(t *testing.T) {
	session := newTestWorkbook(t)

	result, err := CheckErrors(session)
	if err != nil {
		t.Fatalf("CheckErrors: %v", err)
	}

	if result.ErrorCount != 1 {
		t.Fatalf("error count = %d, want 1: %+v", result.ErrorCount, result.Errors)
	}

	e := result.Errors[0]
	if e.Sheet != "Summary" || e.Ref != "A1" || e.Error != "#DIV/0!" || e.Formula != "=B1/C1" {
		t.Errorf("error = %+v", e)
	}
}

func TestCheckErrorsFindsPastedLiteral(t *testing.T) {
	session := newTestWorkbook(t)

	// A literal typed into a plain string cell counts too.
	if _, err := SetCell(session, "Data", "F1", "#REF!"); err != nil {
		t.Fatalf("SetCell: %v", err)
	}

	result, err := CheckErrors(session)
	if err != nil {
		t.Fatalf("CheckErrors: %v", err)
	}

	if result.ErrorCount != 2 {
		t.Errorf("error count = %d, want 2", result.ErrorCount)
	}
}

func TestParseRef(t *testing.T) {
	cases := []struct {
		ref string
		col int
		row int
		ok  bool
	}{
		{"A1", 1, 1, true},
		{"Z99", 26, 99, true},
		{"AA10", 27, 10, true},
		{"b12", 2, 12, true},
		{" C3 ", 3, 3, true},
		{"", 0, 0, false},
		{"12", 0, 0, false},
		{"ABC", 0, 0, false},
		{"A0", 0, 0, false},
		{"A-1", 0, 0, false},
	}

	for _, tc := range cases {
		col, row, err := parseRef(tc.ref)

		if tc.ok {
			if err != nil || col != tc.col || row != tc.row {
				t.Errorf("parseRef(%q) = (%d, %d, %v), want (%d, %d)", tc.ref, col, row, err, tc.col, tc.row)
			}

			continue
		}

		if errfmt.KindOf(err) != errfmt.ValidationError {
			t.Errorf("parseRef(%q): kind = %v, want ValidationError", tc.ref, errfmt.KindOf(err))
		}
	}
}

func TestColName(t *testing.T) {
	cases := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA"}

	for col, want := range cases {
		if got := colName(col); got != want {
			t.Errorf("colName(%d) = %q, want %q", col, got, want)
		}
	}
}
