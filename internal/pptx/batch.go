package pptx

import (
	"encoding/json"
	"fmt"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// BatchResult reports a batch of slide edits.
type BatchResult struct {
	Status       string   `json:"status"`
	UpdatedItems []string `json:"updated_items"`
	Count        int      `json:"count"`
}

// slideUpdate is one entry of an edit batch. Exactly one of title, notes,
// or a shape selector (shape/name/match, with text) applies per entry:
//
//	{"slide": 1, "shape": 0, "text": "New text"}
//	{"slide": 1, "name": "Subtitle", "text": "New text"}
//	{"slide": 2, "title": "New Title"}
//	{"slide": 2, "notes": "Speaker notes"}
type slideUpdate struct {
	Slide int     `json:"slide"`
	Shape *int    `json:"shape"`
	Name  string  `json:"name"`
	Match string  `json:"match"`
	Text  *string `json:"text"`
	Title *string `json:"title"`
	Notes *string `json:"notes"`
}

// ApplyUpdates runs a JSON batch of edits in order. Earlier updates stay
// applied when a later one fails; the caller decides whether to save.
func ApplyUpdates(session *ooxml.Session, updatesJSON string) (*BatchResult, error) {
	var updates []slideUpdate

	if err := json.Unmarshal([]byte(updatesJSON), &updates); err != nil {
		return nil, errfmt.Wrap(errfmt.ValidationError, err, "parsing updates")
	}

	if len(updates) == 0 {
		return nil, errfmt.New(errfmt.ValidationError, "updates list is empty")
	}

	result := &BatchResult{Status: "success", UpdatedItems: []string{}}

	for i, u := range updates {
		item, err := applyUpdate(session, u)
		if err != nil {
			return nil, errfmt.Wrap(errfmt.KindOf(err), err, fmt.Sprintf("update %d", i))
		}

		result.UpdatedItems = append(result.UpdatedItems, item)
	}

	result.Count = len(result.UpdatedItems)

	return result, nil
}

func applyUpdate(session *ooxml.Session, u slideUpdate) (string, error) {
	switch {
	case u.Notes != nil:
		if _, err := EditNotes(session, u.Slide, *u.Notes); err != nil {
			return "", err
		}

		return fmt.Sprintf("slide %d notes", u.Slide), nil
	case u.Title != nil:
		r, err := EditTitle(session, u.Slide, *u.Title)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("slide %d title (%s)", u.Slide, r.Shape), nil
	default:
		if u.Text == nil {
			return "", errfmt.New(errfmt.ValidationError,
				"update must include \"text\" when addressing a shape")
		}

		sel := Selector{Index: -1, Name: u.Name, Match: u.Match}
		if u.Shape != nil {
			sel.Index = *u.Shape
		}

		r, err := EditShape(session, u.Slide, sel, *u.Text)
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("slide %d shape %s", u.Slide, r.Shape), nil
	}
}
