package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/docsmith-dev/docsmith/internal/config"
	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/outfmt"
)

// Output writes command results to stdout, applying the root --jq filter
// when one was given.
type Output struct {
	jq string
}

// Emit writes v as JSON. With a jq expression the filtered output is printed
// raw, one result per line, matching what jq itself would produce.
func (o *Output) Emit(v any) error {
	if o.jq == "" {
		return outfmt.WriteJSON(os.Stdout, v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errfmt.Wrap(errfmt.IOError, err, "encoding result")
	}

	filtered, err := outfmt.ApplyJQ(data, o.jq)
	if err != nil {
		return errfmt.Wrap(errfmt.ValidationError, err)
	}

	_, err = fmt.Fprintln(os.Stdout, string(filtered))

	return err
}

// outputDir picks the directory for generated files: the flag when given,
// the configured default otherwise, the working directory as a last resort.
func outputDir(flag string, settings *config.Settings) string {
	if flag != "" {
		return flag
	}

	if settings.OutputDir != "" {
		return settings.OutputDir
	}

	return "."
}
