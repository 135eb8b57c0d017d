package docx

import (
	"github.com/beevik/etree"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/ooxml"
	"github.com/docsmith-dev/docsmith/internal/runs"
)

// ReplaceResult reports a whole-document find/replace.
type ReplaceResult struct {
	Status       string `json:"status"`
	Replacements int    `json:"replacements"`
	Find         string `json:"find"`
	Replace      string `json:"replace"`
}

// Replace finds all occurrences of find in the document and substitutes repl,
// visiting in document order: every top-level paragraph, then every table,
// rows top-to-bottom, cells left-to-right, cell paragraphs in order. Matches
// spanning run boundaries are detected because each paragraph is collapsed to
// its full text before scanning. Each touched paragraph is rewritten as a
// single run carrying its first run's formatting.
//
// Mutation happens paragraph by paragraph with no rollback: an error partway
// leaves earlier paragraphs replaced.
func Replace(session *ooxml.Session, find, repl string) (*ReplaceResult, error) {
	if find == "" {
		return nil, errfmt.Wrap(errfmt.ValidationError, runs.ErrEmptyFind)
	}

	b, err := body(session)
	if err != nil {
		return nil, err
	}

	count := 0

	for _, p := range paragraphs(b) {
		n, err := replaceParagraph(p, find, repl)
		if err != nil {
			return nil, err
		}

		count += n
	}

	for _, tbl := range tables(b) {
		n, err := replaceInTable(tbl, find, repl)
		if err != nil {
			return nil, err
		}

		count += n
	}

	if count > 0 {
		session.MarkDirty(documentPart)
	}

	return &ReplaceResult{
		Status:       "success",
		Replacements: count,
		Find:         find,
		Replace:      repl,
	}, nil
}

// replaceInTable walks rows top-to-bottom and cells left-to-right.
func replaceInTable(tbl *etree.Element, find, repl string) (int, error) {
	count := 0

	for _, tr := range tbl.ChildElements() {
		if tr.Tag != tagTr {
			continue
		}

		for _, tc := range tr.ChildElements() {
			if tc.Tag != tagTc {
				continue
			}

			for _, p := range tc.ChildElements() {
				if p.Tag != tagP {
					continue
				}

				n, err := replaceParagraph(p, find, repl)
				if err != nil {
					return count, err
				}

				count += n
			}
		}
	}

	return count, nil
}

// replaceParagraph applies the runs engine to one paragraph.
func replaceParagraph(p *etree.Element, find, repl string) (int, error) {
	block := blockFromParagraph(p)

	outcome, err := runs.Replace(block, find, repl)
	if err != nil {
		return 0, errfmt.Wrap(errfmt.ValidationError, err)
	}

	if !outcome.Matched {
		return 0, nil
	}

	applyBlock(p, block)

	return outcome.Count, nil
}

// EditResult reports a single-paragraph text edit.
type EditResult struct {
	Status         string `json:"status"`
	ParagraphIndex int    `json:"paragraph_index"`
	NewText        string `json:"new_text"`
}

// EditParagraphText replaces the text of the paragraph at the given 0-based
// index with a single run keeping the first run's formatting. The index is
// strict: out of range fails, it never clamps.
func EditParagraphText(session *ooxml.Session, index int, newText string) (*EditResult, error) {
	b, err := body(session)
	if err != nil {
		return nil, err
	}

	ps := paragraphs(b)
	if index < 0 || index >= len(ps) {
		return nil, errfmt.New(errfmt.OutOfRange,
			"paragraph index %d out of range: document has %d paragraphs", index, len(ps))
	}

	block := blockFromParagraph(ps[index])
	runs.SetText(block, newText)
	applyBlock(ps[index], block)

	session.MarkDirty(documentPart)

	return &EditResult{Status: "success", ParagraphIndex: index, NewText: newText}, nil
}

// InsertResult reports a paragraph insertion.
type InsertResult struct {
	Status   string   `json:"status"`
	Position int      `json:"position"`
	Text     string   `json:"text"`
	Style    string   `json:"style,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// InsertParagraph splices a new paragraph into the top-level block sequence
// at the target position ("end" or a clamped 0-based index). Style
// application is best-effort: an unknown style is still written to the
// paragraph properties (Word resolves unknown styles to Normal) and the
// request is recorded as a warning rather than failing the insert.
func InsertParagraph(session *ooxml.Session, position, text, style string) (*InsertResult, error) {
	target, err := runs.ParseTarget(position)
	if err != nil {
		return nil, errfmt.Wrap(errfmt.ValidationError, err)
	}

	b, err := body(session)
	if err != nil {
		return nil, err
	}

	newPara := buildParagraph(text)

	var warnings []string

	if style != "" {
		if styleDefined(session, style) {
			setParagraphStyle(newPara, style)
		} else {
			setParagraphStyle(newPara, style)
			warnings = append(warnings, "style "+style+" not defined in styles.xml; applied anyway")
		}
	}

	seq := blocks(b)
	plan := runs.PlanInsert(len(seq), target)
	pos := splice(b, seq, plan, newPara)

	session.MarkDirty(documentPart)

	return &InsertResult{
		Status:   "success",
		Position: pos,
		Text:     text,
		Style:    style,
		Warnings: warnings,
	}, nil
}

// splice applies an insertion plan against the current block sequence and
// returns the payload's resulting 0-based position. An Append into an empty
// body adds the payload directly; no sentinel paragraph is synthesized, so
// the resulting sequence is just [payload].
func splice(body *etree.Element, seq []*etree.Element, plan runs.Plan, payload *etree.Element) int {
	switch plan.Relation {
	case runs.Before:
		insertBefore(body, seq[plan.Anchor], payload)

		return plan.Anchor
	case runs.After:
		insertAfter(body, seq[plan.Anchor], payload)

		return plan.Anchor + 1
	default:
		appendBlock(body, payload)

		return len(seq)
	}
}

// styleDefined checks word/styles.xml for a paragraph style with the given
// styleId. A missing styles part means nothing is defined.
func styleDefined(session *ooxml.Session, styleID string) bool {
	doc, err := session.Part("word/styles.xml")
	if err != nil {
		return false
	}

	root := doc.Root()
	if root == nil {
		return false
	}

	for _, style := range root.ChildElements() {
		if style.Tag != "style" {
			continue
		}

		if selectAttr(style, "styleId") == styleID {
			return true
		}
	}

	return false
}
