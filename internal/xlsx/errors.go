package xlsx

import (
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// CellError is one cell evaluating to an error literal.
type CellError struct {
	Sheet   string `json:"sheet"`
	Ref     string `json:"cell"`
	Error   string `json:"error"`
	Formula string `json:"formula,omitempty"`
}

// CheckResult reports the workbook's formula errors.
type CheckResult struct {
	Status     string      `json:"status"`
	ErrorCount int         `json:"error_count"`
	Errors     []CellError `json:"errors"`
}

var errorLiterals = map[string]bool{
	"#DIV/0!": true,
	"#N/A":    true,
	"#NAME?":  true,
	"#NULL!":  true,
	"#NUM!":   true,
	"#REF!":   true,
	"#VALUE!": true,
}

// CheckErrors scans every sheet for cells whose cached value is an error
// literal. Formulas whose results were never calculated carry no error
// value; a recalculation pass surfaces those.
func CheckErrors(session *ooxml.Session) (*CheckResult, error) {
	all, err := sheets(session)
	if err != nil {
		return nil, err
	}

	shared, err := sharedStrings(session)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{Status: "success", Errors: []CellError{}}

	for _, ref := range all {
		doc, err := session.Part(ref.Part)
		if err != nil {
			return nil, err
		}

		sd := sheetData(doc)
		if sd == nil {
			continue
		}

		for _, row := range sd.ChildElements() {
			if row.Tag != "row" {
				continue
			}

			for _, c := range row.ChildElements() {
				if c.Tag != "c" {
					continue
				}

				value := cellValue(c, shared)

				// Cells of type "e" hold error literals in v; string cells
				// can also carry a pasted literal like "#REF!".
				if attrValue(c, "t") == "e" || errorLiterals[value] {
					result.Errors = append(result.Errors, CellError{
						Sheet:   ref.Name,
						Ref:     attrValue(c, "r"),
						Error:   value,
						Formula: cellFormula(c),
					})
				}
			}
		}
	}

	result.ErrorCount = len(result.Errors)

	return result, nil
}
