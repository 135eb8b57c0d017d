package pptx

import (
	"strings"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
)

// SlideInfo is one slide's inventory.
type SlideInfo struct {
	Number int     `json:"slide_number"`
	Shapes []Shape `json:"shapes"`
	Notes  string  `json:"notes,omitempty"`
}

// Presentation is the result of a read.
type Presentation struct {
	SlideCount int         `json:"slide_count"`
	Slides     []SlideInfo `json:"slides"`
}

// Read enumerates slides and their shapes. When slideNumber > 0 only that
// slide is returned; 0 means all slides.
func Read(session *ooxml.Session, slideNumber int) (*Presentation, error) {
	parts, err := slideParts(session)
	if err != nil {
		return nil, err
	}

	result := &Presentation{SlideCount: len(parts)}

	if slideNumber > 0 {
		part, err := slidePart(parts, slideNumber)
		if err != nil {
			return nil, err
		}

		info, err := readSlide(session, part, slideNumber)
		if err != nil {
			return nil, err
		}

		result.Slides = []SlideInfo{*info}

		return result, nil
	}

	for i, part := range parts {
		info, err := readSlide(session, part, i+1)
		if err != nil {
			return nil, err
		}

		result.Slides = append(result.Slides, *info)
	}

	return result, nil
}

// slidePart resolves a 1-based slide number. Out of range is a hard error,
// never a clamp: editing the wrong slide is worse than failing.
func slidePart(parts []string, number int) (string, error) {
	if number < 1 || number > len(parts) {
		return "", errfmt.New(errfmt.OutOfRange,
			"slide %d out of range: presentation has %d slides", number, len(parts))
	}

	return parts[number-1], nil
}

func readSlide(session *ooxml.Session, part string, number int) (*SlideInfo, error) {
	doc, err := session.Part(part)
	if err != nil {
		return nil, err
	}

	info := &SlideInfo{
		Number: number,
		Shapes: shapesOf(doc),
	}

	if notes, err := readNotes(session, part); err == nil {
		info.Notes = notes
	}

	return info, nil
}

// notesPartFor resolves a slide's notes part through its relationships.
// Returns "" when the slide has no notes.
func notesPartFor(session *ooxml.Session, slidePartName string) string {
	targets := relsByType(session, slideRelsPart(slidePartName), "ppt/slides", "/notesSlide")
	if len(targets) == 0 {
		return ""
	}

	return targets[0]
}

func slideRelsPart(slidePartName string) string {
	base := slidePartName[strings.LastIndex(slidePartName, "/")+1:]

	return "ppt/slides/_rels/" + base + ".rels"
}

// readNotes extracts the speaker notes text for a slide, "" when absent.
func readNotes(session *ooxml.Session, slidePartName string) (string, error) {
	notesPart := notesPartFor(session, slidePartName)
	if notesPart == "" || !session.HasPart(notesPart) {
		return "", nil
	}

	doc, err := session.Part(notesPart)
	if err != nil {
		return "", err
	}

	// The notes text lives in the body placeholder; other shapes on a notes
	// slide mirror the slide thumbnail and the page number.
	for _, shape := range shapesOf(doc) {
		if shape.Kind == KindText && shape.Placeholder == "body" {
			return shape.Text, nil
		}
	}

	return "", nil
}
