// Package xlsx reads and edits Excel workbooks. Sheets are addressed by
// name and resolved through xl/workbook.xml and its relationships; cells
// use A1-style references.
package xlsx

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

const (
	workbookPart      = "xl/workbook.xml"
	workbookRels      = "xl/_rels/workbook.xml.rels"
	sharedStringsPart = "xl/sharedStrings.xml"
)

// SheetRef is one worksheet as named in the workbook.
type SheetRef struct {
	Name string
	Part string
}

// Open opens a .xlsx file.
func Open(path string) (*ooxml.Session, error) {
	return ooxml.Open(path)
}

// sheets lists worksheets in workbook order, with part names resolved
// through the workbook relationships.
func sheets(session *ooxml.Session) ([]SheetRef, error) {
	rels, err := relTargets(session)
	if err != nil {
		return nil, err
	}

	doc, err := session.Part(workbookPart)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, errfmt.New(errfmt.InvalidFormat, "workbook.xml has no root element")
	}

	var out []SheetRef

	for _, child := range root.ChildElements() {
		if child.Tag != "sheets" {
			continue
		}

		for _, sheet := range child.ChildElements() {
			if sheet.Tag != "sheet" {
				continue
			}

			name := attrValue(sheet, "name")
			rid := attrPreferred(sheet, "id", "r")

			if target, ok := rels[rid]; ok {
				out = append(out, SheetRef{Name: name, Part: target})
			}
		}
	}

	if len(out) == 0 {
		return nil, errfmt.New(errfmt.InvalidFormat, "workbook has no worksheets")
	}

	return out, nil
}

// resolveSheet finds a worksheet by name, or the first sheet when name is
// empty. Name matching is exact first, then case-insensitive.
func resolveSheet(session *ooxml.Session, name string) (SheetRef, error) {
	all, err := sheets(session)
	if err != nil {
		return SheetRef{}, err
	}

	if name == "" {
		return all[0], nil
	}

	for _, s := range all {
		if s.Name == name {
			return s, nil
		}
	}

	for _, s := range all {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}

	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}

	return SheetRef{}, errfmt.New(errfmt.NotFoundSemantic,
		"no sheet named %q (sheets: %s)", name, strings.Join(names, ", "))
}

func relTargets(session *ooxml.Session) (map[string]string, error) {
	doc, err := session.Part(workbookRels)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, errfmt.New(errfmt.InvalidFormat, "workbook rels part has no root element")
	}

	out := make(map[string]string)

	for _, rel := range root.ChildElements() {
		if rel.Tag != "Relationship" {
			continue
		}

		id := attrValue(rel, "Id")
		target := attrValue(rel, "Target")

		if id == "" || target == "" {
			continue
		}

		// Workbook-relative targets resolve under xl/.
		if !strings.HasPrefix(target, "/") {
			target = "xl/" + strings.TrimPrefix(target, "./")
		} else {
			target = strings.TrimPrefix(target, "/")
		}

		out[id] = target
	}

	return out, nil
}

func attrValue(e *etree.Element, name string) string {
	if a := e.SelectAttr(name); a != nil {
		return a.Value
	}

	return ""
}

func attrPreferred(e *etree.Element, local, prefix string) string {
	if a := e.SelectAttr(prefix + ":" + local); a != nil {
		return a.Value
	}

	return attrValue(e, local)
}

// sharedStrings loads xl/sharedStrings.xml as an index table. Workbooks
// without string cells have no such part; that is not an error.
func sharedStrings(session *ooxml.Session) ([]string, error) {
	if !session.HasPart(sharedStringsPart) {
		return nil, nil
	}

	doc, err := session.Part(sharedStringsPart)
	if err != nil {
		return nil, err
	}

	root := doc.Root()
	if root == nil {
		return nil, nil
	}

	var out []string

	for _, si := range root.ChildElements() {
		if si.Tag != "si" {
			continue
		}

		out = append(out, itemText(si))
	}

	return out, nil
}

// itemText flattens an si or is element, which holds either a single t or
// rich-text runs each with their own t.
func itemText(item *etree.Element) string {
	var sb strings.Builder

	var walk func(e *etree.Element)

	walk = func(e *etree.Element) {
		for _, child := range e.ChildElements() {
			if child.Tag == "t" {
				sb.WriteString(child.Text())

				continue
			}

			walk(child)
		}
	}

	walk(item)

	return sb.String()
}

// parseRef splits an A1-style reference into a 1-based column and row.
func parseRef(ref string) (col, row int, err error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))

	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A') + 1
		i++
	}

	if i == 0 || i == len(ref) {
		return 0, 0, errfmt.New(errfmt.ValidationError, "invalid cell reference %q", ref)
	}

	row, aerr := strconv.Atoi(ref[i:])
	if aerr != nil || row < 1 {
		return 0, 0, errfmt.New(errfmt.ValidationError, "invalid cell reference %q", ref)
	}

	return col, row, nil
}

// colName converts a 1-based column index to its letter form (1 → A).
func colName(col int) string {
	var sb []byte

	for col > 0 {
		col--
		sb = append([]byte{byte('A' + col%26)}, sb...)
		col /= 26
	}

	return string(sb)
}

// sheetData locates the sheetData element of a worksheet.
func sheetData(doc *etree.Document) *etree.Element {
	root := doc.Root()
	if root == nil {
		return nil
	}

	for _, child := range root.ChildElements() {
		if child.Tag == "sheetData" {
			return child
		}
	}

	return nil
}

// cellValue renders a cell's display value using the workbook's shared
// strings. The t attribute picks the interpretation of v.
func cellValue(c *etree.Element, shared []string) string {
	t := attrValue(c, "t")

	if t == "inlineStr" {
		for _, is := range c.ChildElements() {
			if is.Tag == "is" {
				return itemText(is)
			}
		}

		return ""
	}

	var v string

	for _, child := range c.ChildElements() {
		if child.Tag == "v" {
			v = child.Text()
		}
	}

	if t == "s" {
		idx, err := strconv.Atoi(v)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}

		return shared[idx]
	}

	if t == "b" {
		if v == "1" {
			return "TRUE"
		}

		return "FALSE"
	}

	return v
}

// cellFormula returns the cell's formula with a leading "=", or "".
func cellFormula(c *etree.Element) string {
	for _, child := range c.ChildElements() {
		if child.Tag == "f" {
			return "=" + child.Text()
		}
	}

	return ""
}
