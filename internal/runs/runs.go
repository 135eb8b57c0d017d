// Package runs implements the run-preserving text mutation engine shared by
// the docx and pptx engines.
//
// Rich text in OOXML is stored as an ordered sequence of runs, each carrying
// its own formatting. Editing history routinely splits a single visible phrase
// across several runs, so a per-run substring search silently misses matches
// that cross a run boundary. Replace therefore concatenates all run text,
// performs the substitution on the full string, and rebuilds the block as a
// single run carrying the first run's formatting. Interior formatting
// boundaries inside the rewritten block are lost; that trade-off is accepted.
package runs

import (
	"errors"
	"strings"
)

// ErrEmptyFind is returned when the search string is empty.
var ErrEmptyFind = errors.New("find text must not be empty")

// Format describes a run's character formatting. A nil field means the value
// is not set explicitly and inherits from the paragraph or named style.
type Format struct {
	Bold      *bool    `json:"bold,omitempty"`
	Italic    *bool    `json:"italic,omitempty"`
	Underline *bool    `json:"underline,omitempty"`
	FontName  *string  `json:"font_name,omitempty"`
	FontSize  *float64 `json:"font_size,omitempty"`
}

// Run is a span of text with uniform formatting.
type Run struct {
	Text   string `json:"text"`
	Format Format `json:"format"`
}

// Block is an ordered run sequence owned by one structural container
// (a paragraph, a table cell's paragraph, or a slide shape's text frame).
type Block struct {
	Runs []Run
}

// Text returns the block's visible text: the concatenation of all run text.
func (b *Block) Text() string {
	var sb strings.Builder

	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}

	return sb.String()
}

// Outcome reports what a Replace call did to one block.
type Outcome struct {
	Count   int  // occurrences replaced
	Matched bool // Count > 0
}

// Replace substitutes every occurrence of find in the block's concatenated
// text with repl, then rewrites the block as a single run carrying the first
// original run's Format (zero Format if the block had no runs).
//
// The scan is a single left-to-right pass over the original text; replaced
// output is never re-scanned, so replacing "a" with "aa" in "a" yields "aa",
// not an expansion loop.
//
// When find does not occur, the block is left untouched and a zero Outcome is
// returned.
func Replace(b *Block, find, repl string) (Outcome, error) {
	if find == "" {
		return Outcome{}, ErrEmptyFind
	}

	full := b.Text()

	count := strings.Count(full, find)
	if count == 0 {
		return Outcome{}, nil
	}

	var format Format
	if len(b.Runs) > 0 {
		format = b.Runs[0].Format
	}

	b.Runs = []Run{{
		Text:   strings.Replace(full, find, repl, -1),
		Format: format,
	}}

	return Outcome{Count: count, Matched: true}, nil
}

// SetText rewrites the block as a single run holding text, keeping the first
// original run's formatting. Used by the paragraph/cell/shape set-text
// operations, which share the single-run rewrite policy with Replace.
func SetText(b *Block, text string) {
	var format Format
	if len(b.Runs) > 0 {
		format = b.Runs[0].Format
	}

	b.Runs = []Run{{Text: text, Format: format}}
}
