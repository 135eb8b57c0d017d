package pptx

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
	"github.com/docsmith-dev/docsmith/internal/runs"
)

// Selector picks one shape on a slide. Exactly one addressing mode must be
// set: Index (0-based ordinal, -1 when unused), Name (case-insensitive name
// substring), or Match (case-insensitive text substring).
type Selector struct {
	Index int
	Name  string
	Match string
}

func (s Selector) modes() int {
	n := 0

	if s.Index >= 0 {
		n++
	}

	if s.Name != "" {
		n++
	}

	if s.Match != "" {
		n++
	}

	return n
}

// resolveShape applies the selector against a slide's current shapes.
func resolveShape(shapes []Shape, sel Selector) (*Shape, error) {
	switch n := sel.modes(); {
	case n == 0:
		return nil, errfmt.New(errfmt.ValidationError,
			"no shape selector: use an index, a name, or a text match")
	case n > 1:
		return nil, errfmt.New(errfmt.ValidationError,
			"ambiguous shape selector: use only one of index, name, or text match")
	}

	if sel.Index >= 0 {
		if sel.Index >= len(shapes) {
			return nil, errfmt.New(errfmt.OutOfRange,
				"shape index %d out of range: slide has %d shapes", sel.Index, len(shapes))
		}

		return &shapes[sel.Index], nil
	}

	if sel.Name != "" {
		needle := strings.ToLower(sel.Name)

		for i := range shapes {
			if strings.Contains(strings.ToLower(shapes[i].Name), needle) {
				return &shapes[i], nil
			}
		}

		return nil, errfmt.New(errfmt.NotFoundSemantic, "no shape with name containing %q", sel.Name)
	}

	needle := strings.ToLower(sel.Match)

	for i := range shapes {
		if shapes[i].Kind != KindText {
			continue
		}

		if strings.Contains(strings.ToLower(shapes[i].Text), needle) {
			return &shapes[i], nil
		}
	}

	return nil, errfmt.New(errfmt.NotFoundSemantic, "no shape with text containing %q", sel.Match)
}

// resolveTitle finds a slide's title shape. In precedence order: a text
// shape whose name contains "title" (but not "subtitle"), then a title or
// ctrTitle placeholder, then the top-most text shape. Decks exported by
// other tools often lose the placeholder marking, which is why name goes
// first.
func resolveTitle(shapes []Shape) (*Shape, error) {
	for i := range shapes {
		if shapes[i].Kind != KindText {
			continue
		}

		name := strings.ToLower(shapes[i].Name)

		if strings.Contains(name, "title") && !strings.Contains(name, "subtitle") {
			return &shapes[i], nil
		}
	}

	for i := range shapes {
		if shapes[i].Kind != KindText {
			continue
		}

		if shapes[i].Placeholder == "title" || shapes[i].Placeholder == "ctrTitle" {
			return &shapes[i], nil
		}
	}

	var top *Shape

	for i := range shapes {
		if shapes[i].Kind != KindText {
			continue
		}

		if top == nil || shapes[i].Top < top.Top {
			top = &shapes[i]
		}
	}

	if top == nil {
		return nil, errfmt.New(errfmt.NotFoundSemantic, "slide has no text shapes to use as a title")
	}

	return top, nil
}

// EditResult reports a shape or title edit.
type EditResult struct {
	Status string `json:"status"`
	Slide  int    `json:"slide_number"`
	Shape  string `json:"shape,omitempty"`
	Text   string `json:"text"`
}

// EditShape sets the full text of one shape, addressed by selector.
func EditShape(session *ooxml.Session, slideNumber int, sel Selector, text string) (*EditResult, error) {
	parts, err := slideParts(session)
	if err != nil {
		return nil, err
	}

	part, err := slidePart(parts, slideNumber)
	if err != nil {
		return nil, err
	}

	doc, err := session.Part(part)
	if err != nil {
		return nil, err
	}

	shape, err := resolveShape(shapesOf(doc), sel)
	if err != nil {
		return nil, err
	}

	if err := setShapeText(shape, text); err != nil {
		return nil, err
	}

	session.MarkDirty(part)

	return &EditResult{
		Status: "success",
		Slide:  slideNumber,
		Shape:  shape.Name,
		Text:   text,
	}, nil
}

// EditTitle sets the slide title's text, resolving the title shape by the
// documented precedence.
func EditTitle(session *ooxml.Session, slideNumber int, text string) (*EditResult, error) {
	parts, err := slideParts(session)
	if err != nil {
		return nil, err
	}

	part, err := slidePart(parts, slideNumber)
	if err != nil {
		return nil, err
	}

	doc, err := session.Part(part)
	if err != nil {
		return nil, err
	}

	shape, err := resolveTitle(shapesOf(doc))
	if err != nil {
		return nil, err
	}

	if err := setShapeText(shape, text); err != nil {
		return nil, err
	}

	session.MarkDirty(part)

	return &EditResult{
		Status: "success",
		Slide:  slideNumber,
		Shape:  shape.Name,
		Text:   text,
	}, nil
}

func setShapeText(shape *Shape, text string) error {
	if shape.Kind != KindText {
		return errfmt.New(errfmt.ValidationError,
			"shape %q has no text frame (type %s)", shape.Name, shape.Kind)
	}

	tb := textBody(shape.elem)
	if tb == nil {
		return errfmt.New(errfmt.InvalidFormat, "text shape %q is missing its text body", shape.Name)
	}

	setFrameText(tb, text)

	return nil
}

// NotesResult reports a speaker-notes edit.
type NotesResult struct {
	Status string `json:"status"`
	Slide  int    `json:"slide_number"`
	Notes  string `json:"notes"`
}

// EditNotes sets a slide's speaker notes, creating the notes part when the
// slide has none yet.
func EditNotes(session *ooxml.Session, slideNumber int, text string) (*NotesResult, error) {
	parts, err := slideParts(session)
	if err != nil {
		return nil, err
	}

	part, err := slidePart(parts, slideNumber)
	if err != nil {
		return nil, err
	}

	notesPart := notesPartFor(session, part)
	if notesPart == "" || !session.HasPart(notesPart) {
		created, err := createNotesPart(session, part, slideNumber)
		if err != nil {
			return nil, err
		}

		notesPart = created
	}

	doc, err := session.Part(notesPart)
	if err != nil {
		return nil, err
	}

	if err := setNotesText(doc, text); err != nil {
		return nil, err
	}

	session.MarkDirty(notesPart)

	return &NotesResult{Status: "success", Slide: slideNumber, Notes: text}, nil
}

func setNotesText(doc *etree.Document, text string) error {
	for _, shape := range shapesOf(doc) {
		if shape.Kind == KindText && shape.Placeholder == "body" {
			return setShapeText(&shape, text)
		}
	}

	return errfmt.New(errfmt.InvalidFormat, "notes slide has no body placeholder")
}

// ReplaceResult reports text replacement across slides.
type ReplaceResult struct {
	Status       string `json:"status"`
	Replacements int    `json:"replacements"`
	Find         string `json:"find"`
	Replace      string `json:"replace"`
}

// Replace substitutes text across every text frame, one frame paragraph at a
// time, keeping each paragraph's leading run formatting. slideNumber 0 means
// all slides.
func Replace(session *ooxml.Session, slideNumber int, find, replace string) (*ReplaceResult, error) {
	if find == "" {
		return nil, errfmt.New(errfmt.ValidationError, "find text must not be empty")
	}

	parts, err := slideParts(session)
	if err != nil {
		return nil, err
	}

	if slideNumber > 0 {
		part, err := slidePart(parts, slideNumber)
		if err != nil {
			return nil, err
		}

		parts = []string{part}
	}

	total := 0

	for _, part := range parts {
		doc, err := session.Part(part)
		if err != nil {
			return nil, err
		}

		count := replaceInSlide(doc, find, replace)
		if count > 0 {
			session.MarkDirty(part)
			total += count
		}
	}

	return &ReplaceResult{
		Status:       "success",
		Replacements: total,
		Find:         find,
		Replace:      replace,
	}, nil
}

func replaceInSlide(doc *etree.Document, find, replace string) int {
	tree := spTree(doc)
	if tree == nil {
		return 0
	}

	count := 0

	for _, shape := range tree.ChildElements() {
		tb := textBody(shape)
		if tb == nil {
			continue
		}

		for _, p := range tb.ChildElements() {
			if p.Tag != "p" {
				continue
			}

			block := blockFromFrameParagraph(p)

			outcome, err := runs.Replace(block, find, replace)
			if err != nil || !outcome.Matched {
				continue
			}

			applyFrameBlock(p, block)

			count += outcome.Count
		}
	}

	return count
}
