package xlsx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// EditResult reports a cell write.
type EditResult struct {
	Status  string `json:"status"`
	Sheet   string `json:"sheet"`
	Ref     string `json:"cell"`
	Value   string `json:"value,omitempty"`
	Formula string `json:"formula,omitempty"`
}

// SetCell writes one cell. A value starting with "=" becomes a formula,
// a value that parses as a number is stored as one, and anything else is
// written as an inline string. Missing rows and cells are created in
// reference order so the sheet stays well-formed.
func SetCell(session *ooxml.Session, sheetName, cellRef, value string) (*EditResult, error) {
	col, rowNum, err := parseRef(cellRef)
	if err != nil {
		return nil, err
	}

	// Normalize "b12" to "B12" so lookups and stored refs agree.
	cellRef = colName(col) + strconv.Itoa(rowNum)

	ref, err := resolveSheet(session, sheetName)
	if err != nil {
		return nil, err
	}

	doc, err := session.Part(ref.Part)
	if err != nil {
		return nil, err
	}

	sd := sheetData(doc)
	if sd == nil {
		return nil, errfmt.New(errfmt.InvalidFormat, "worksheet %q has no sheetData element", ref.Name)
	}

	c := ensureCell(sd, cellRef, col, rowNum)

	result := &EditResult{Status: "success", Sheet: ref.Name, Ref: cellRef}

	switch {
	case strings.HasPrefix(value, "="):
		setFormula(c, strings.TrimPrefix(value, "="))

		result.Formula = value
	case isNumeric(value):
		setNumber(c, value)

		result.Value = value
	default:
		setInlineString(c, value)

		result.Value = value
	}

	session.MarkDirty(ref.Part)

	return result, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}

	_, err := strconv.ParseFloat(s, 64)

	return err == nil
}

// ensureCell finds or creates the cell, keeping rows sorted by number and
// cells sorted by column within their row.
func ensureCell(sd *etree.Element, cellRef string, col, rowNum int) *etree.Element {
	row := ensureRow(sd, rowNum)

	for _, c := range row.ChildElements() {
		if c.Tag == "c" && attrValue(c, "r") == cellRef {
			return c
		}
	}

	c := etree.NewElement("c")
	c.CreateAttr("r", cellRef)

	insertOrdered(row, c, func(sibling *etree.Element) bool {
		sc, _, err := parseRef(attrValue(sibling, "r"))

		return err == nil && sc > col
	})

	return c
}

func ensureRow(sd *etree.Element, rowNum int) *etree.Element {
	for _, row := range sd.ChildElements() {
		if row.Tag != "row" {
			continue
		}

		if n, err := strconv.Atoi(attrValue(row, "r")); err == nil && n == rowNum {
			return row
		}
	}

	row := etree.NewElement("row")
	row.CreateAttr("r", strconv.Itoa(rowNum))

	insertOrdered(sd, row, func(sibling *etree.Element) bool {
		n, err := strconv.Atoi(attrValue(sibling, "r"))

		return err == nil && n > rowNum
	})

	return row
}

// insertOrdered places child before the first sibling for which after
// reports true, appending otherwise.
func insertOrdered(parent, child *etree.Element, after func(*etree.Element) bool) {
	for _, sibling := range parent.ChildElements() {
		if after(sibling) {
			parent.InsertChildAt(sibling.Index(), child)

			return
		}
	}

	parent.AddChild(child)
}

// clearCell strips value, formula, inline string, and the type attribute,
// leaving styling intact.
func clearCell(c *etree.Element) {
	var toRemove []*etree.Element

	for _, child := range c.ChildElements() {
		switch child.Tag {
		case "v", "f", "is":
			toRemove = append(toRemove, child)
		}
	}

	for _, child := range toRemove {
		c.RemoveChild(child)
	}

	c.RemoveAttr("t")
}

func setFormula(c *etree.Element, formula string) {
	clearCell(c)

	f := c.CreateElement("f")
	f.SetText(formula)
}

func setNumber(c *etree.Element, value string) {
	clearCell(c)

	v := c.CreateElement("v")
	v.SetText(value)
}

func setInlineString(c *etree.Element, value string) {
	clearCell(c)

	c.CreateAttr("t", "inlineStr")

	t := c.CreateElement("is").CreateElement("t")
	t.SetText(value)

	if value != strings.TrimSpace(value) {
		t.CreateAttr("xml:space", "preserve")
	}
}
