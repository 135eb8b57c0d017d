package docx

import (
	"testing"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

func TestReadTablesAll(t *testing.T) {
	session := newTestDocx(t)

	result, err := ReadTables(session, -1)
	if err != nil {
		t.Fatalf("ReadTables: %v", err)
	}

	if result.TableCount != 1 || len(result.Tables) != 1 {
		t.Fatalf("table count = %d, want 1", result.TableCount)
	}

	tbl := result.Tables[0]
	if tbl.Rows != 2 || tbl.Cols != 2 {
		t.Errorf("dimensions = %dx%d, want 2x2", tbl.Rows, tbl.Cols)
	}

	if tbl.Data[0][0] != "A1" || tbl.Data[1][1] != "B2" {
		t.Errorf("data = %v", tbl.Data)
	}
}

func TestReadTablesStrictIndex(t *testing.T) {
	session := newTestDocx(t)

	if _, err := ReadTables(session, 1); errfmt.KindOf(err) != errfmt.OutOfRange {
		t.Errorf("kind = %v, want OutOfRange", errfmt.KindOf(err))
	}
}

func TestEditTableCell(t *testing.T) {
	session := newTestDocx(t)

	result, err := EditTableCell(session, 0, 1, 0, "updated")
	if err != nil {
		t.Fatalf("EditTableCell: %v", err)
	}

	if result.Row != 1 || result.Col != 0 {
		t.Errorf("result coords = (%d,%d), want (1,0)", result.Row, result.Col)
	}

	tbls, err := ReadTables(session, 0)
	if err != nil {
		t.Fatalf("ReadTables: %v", err)
	}

	if got := tbls.Tables[0].Data[1][0]; got != "updated" {
		t.Errorf("cell = %q, want %q", got, "updated")
	}
}

func TestEditTableCellStrictBounds(t *testing.T) {
	session := newTestDocx(t)

	cases := []struct {
		name            string
		table, row, col int
	}{
		{"table out of range", 1, 0, 0},
		{"row out of range", 0, 2, 0},
		{"col out of range", 0, 0, 2},
		{"negative row", 0, -1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EditTableCell(session, tc.table, tc.row, tc.col, "x")
			if errfmt.KindOf(err) != errfmt.OutOfRange {
				t.Errorf("kind = %v, want OutOfRange", errfmt.KindOf(err))
			}
		})
	}
}

func TestAddTableAppend(t *testing.T) {
	session := newTestDocx(t)

	result, err := AddTable(session, 2, 3, "end", "")
	if err != nil {
		t.Fatalf("AddTable: %v", err)
	}

	if result.Rows != 2 || result.Cols != 3 {
		t.Errorf("dimensions = %dx%d, want 2x3", result.Rows, result.Cols)
	}

	tbls, err := ReadTables(session, -1)
	if err != nil {
		t.Fatalf("ReadTables: %v", err)
	}

	if tbls.TableCount != 2 {
		t.Errorf("table count = %d, want 2", tbls.TableCount)
	}
}

func TestAddTableWithData(t *testing.T) {
	session := newTestDocx(t)

	result, err := AddTable(session, 2, 2, "end", `[["a","b"],["c","d"]]`)
	if err != nil {
		t.Fatalf("AddTable: %v", err)
	}

	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	tbls, err := ReadTables(session, 1)
	if err != nil {
		t.Fatalf("ReadTables: %v", err)
	}

	if got := tbls.Tables[0].Data[1][1]; got != "d" {
		t.Errorf("cell [1][1] = %q, want %q", got, "d")
	}
}

func TestAddTableOversizedDataWarns(t *testing.T) {
	session := newTestDocx(t)

	// 1x1 table, 2x2 data: the extra cells are dropped with a warning.
	result, err := AddTable(session, 1, 1, "end", `[["a","b"],["c","d"]]`)
	if err != nil {
		t.Fatalf("AddTable: %v", err)
	}

	if len(result.Warnings) == 0 {
		t.Error("expected a data-truncation warning")
	}
}

func TestAddTableBadDimensions(t *testing.T) {
	session := newTestDocx(t)

	for _, dims := range [][2]int{{0, 2}, {2, 0}, {-1, 3}} {
		_, err := AddTable(session, dims[0], dims[1], "end", "")
		if errfmt.KindOf(err) != errfmt.ValidationError {
			t.Errorf("%v: kind = %v, want ValidationError", dims, errfmt.KindOf(err))
		}
	}
}
