package cmd

import (
	"fmt"

	"github.com/docsmith-dev/docsmith/internal/officetext"
)

// ExtractCmd prints an Office file's plain text to stdout, no JSON wrapper.
// It is the pipe-friendly counterpart of the structured read commands.
type ExtractCmd struct {
	File string `arg:"" help:"DOCX, PPTX, or XLSX file path"`
}

func (c *ExtractCmd) Run() error {
	text, err := officetext.Extract(c.File)
	if err != nil {
		return err
	}

	fmt.Print(text)

	if len(text) > 0 && text[len(text)-1] != '\n' {
		fmt.Println()
	}

	return nil
}
