// Package outfmt writes command results as JSON to stdout.
package outfmt

import (
	"encoding/json"
	"io"
	"os"

	"golang.org/x/term"
)

// WriteJSON encodes v to w. Output is indented when stdout is a terminal and
// compact when piped, so scripts get one-line objects without flags.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if Interactive() {
		enc.SetIndent("", "  ")
	}

	return enc.Encode(v)
}

// Interactive reports whether stdout is attached to a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
