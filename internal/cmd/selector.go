package cmd

import (
	"strconv"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/pptx"
)

// parseSelector builds a shape selector from the CLI's three addressing
// flags. The ordinal arrives as a string so an absent flag is
// distinguishable from shape 0.
func parseSelector(shape, name, match string) (pptx.Selector, error) {
	sel := pptx.Selector{Index: -1, Name: name, Match: match}

	if shape != "" {
		idx, err := strconv.Atoi(shape)
		if err != nil || idx < 0 {
			return sel, errfmt.New(errfmt.ValidationError, "invalid shape ordinal %q", shape)
		}

		sel.Index = idx
	}

	return sel, nil
}
