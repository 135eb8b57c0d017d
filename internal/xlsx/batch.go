package xlsx

import (
	"encoding/json"
	"strconv"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// BatchResult reports a batch of cell updates.
type BatchResult struct {
	Status       string   `json:"status"`
	UpdatedCells []string `json:"updated_cells"`
	Count        int      `json:"count"`
}

type cellUpdate struct {
	Cell  *string `json:"cell"`
	Value any     `json:"value"`
}

// ApplyUpdates writes a JSON batch of cell updates to one sheet, in order:
// [{"cell": "A1", "value": 100}, {"cell": "B1", "value": "=A1*2"}].
// Every update needs a "cell" key. Earlier updates stay applied when a later
// one fails; the caller decides whether to save.
func ApplyUpdates(session *ooxml.Session, sheetName, updatesJSON string) (*BatchResult, error) {
	var updates []cellUpdate

	if err := json.Unmarshal([]byte(updatesJSON), &updates); err != nil {
		return nil, errfmt.Wrap(errfmt.ValidationError, err, "parsing updates")
	}

	if len(updates) == 0 {
		return nil, errfmt.New(errfmt.ValidationError, "updates list is empty")
	}

	result := &BatchResult{Status: "success", UpdatedCells: []string{}}

	for i, u := range updates {
		if u.Cell == nil || *u.Cell == "" {
			return nil, errfmt.New(errfmt.ValidationError, "update %d has no \"cell\" key", i)
		}

		set, err := SetCell(session, sheetName, *u.Cell, renderValue(u.Value))
		if err != nil {
			return nil, err
		}

		result.UpdatedCells = append(result.UpdatedCells, set.Ref)
	}

	result.Count = len(result.UpdatedCells)

	return result, nil
}

// renderValue flattens a decoded JSON value into the string form SetCell
// classifies (formula, number, or inline string).
func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "TRUE"
		}

		return "FALSE"
	default:
		b, _ := json.Marshal(t)

		return string(b)
	}
}
