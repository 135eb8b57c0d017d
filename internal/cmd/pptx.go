package cmd

import (
	"github.com/docsmith-dev/docsmith/internal/config"
	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/input"
	"github.com/docsmith-dev/docsmith/internal/pptx"
)

// PptxCmd is the top-level command for presentation operations.
type PptxCmd struct {
	Read          PptxReadCmd          `cmd:"" help:"List slides and shapes as structured JSON"`
	Edit          PptxEditCmd          `cmd:"" help:"Set the text of a shape, title, or speaker notes"`
	Replace       PptxReplaceCmd       `cmd:"" help:"Find and replace text across slides"`
	AddSlide      PptxAddSlideCmd      `cmd:"add-slide" help:"Append a new slide from a layout"`
	Layouts       PptxLayoutsCmd       `cmd:"" help:"List available slide layouts"`
	ExtractImages PptxExtractImagesCmd `cmd:"extract-images" help:"Save slide images to a directory"`
}

// PptxReadCmd inventories slides, shapes, and notes.
type PptxReadCmd struct {
	File  string `arg:"" help:"PPTX file path"`
	Slide int    `help:"1-based slide number; 0 for all" default:"0"`
}

func (c *PptxReadCmd) Run(out *Output) error {
	session, err := pptx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := pptx.Read(session, c.Slide)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PptxEditCmd edits one shape's text, the slide title, or the notes, or
// applies a JSON batch of such edits. Shape addressing modes are mutually
// exclusive.
type PptxEditCmd struct {
	File  string `arg:"" help:"PPTX file path"`
	Slide int    `help:"1-based slide number"`
	Text  string `help:"New text (@file or - for stdin)"`

	Shape string `help:"Shape ordinal (0-based) to edit"`
	Name  string `help:"Edit the shape whose name contains this text"`
	Match string `help:"Edit the shape whose text contains this text"`
	Title bool   `help:"Edit the slide title"`
	Notes bool   `help:"Edit the speaker notes"`

	Updates string `help:"JSON list of edits (@file or - for stdin); replaces the single-edit flags"`
}

func (c *PptxEditCmd) Run(out *Output) error {
	session, err := pptx.Open(c.File)
	if err != nil {
		return err
	}

	if c.Updates != "" {
		updates, err := input.Resolve(c.Updates)
		if err != nil {
			return err
		}

		result, err := pptx.ApplyUpdates(session, updates)
		if err != nil {
			return err
		}

		if err := session.SaveInPlace(); err != nil {
			return err
		}

		return out.Emit(result)
	}

	if c.Slide < 1 {
		return errfmt.New(errfmt.ValidationError, "pass --slide (or a batch via --updates)")
	}

	text, err := input.Resolve(c.Text)
	if err != nil {
		return err
	}

	switch {
	case c.Notes:
		result, err := pptx.EditNotes(session, c.Slide, text)
		if err != nil {
			return err
		}

		if err := session.SaveInPlace(); err != nil {
			return err
		}

		return out.Emit(result)
	case c.Title:
		result, err := pptx.EditTitle(session, c.Slide, text)
		if err != nil {
			return err
		}

		if err := session.SaveInPlace(); err != nil {
			return err
		}

		return out.Emit(result)
	default:
		sel, err := parseSelector(c.Shape, c.Name, c.Match)
		if err != nil {
			return err
		}

		result, err := pptx.EditShape(session, c.Slide, sel, text)
		if err != nil {
			return err
		}

		if err := session.SaveInPlace(); err != nil {
			return err
		}

		return out.Emit(result)
	}
}

// PptxReplaceCmd substitutes text in every text frame, formatting preserved.
type PptxReplaceCmd struct {
	File    string `arg:"" help:"PPTX file path"`
	Find    string `help:"Text to find" required:""`
	Replace string `help:"Replacement text" required:""`
	Slide   int    `help:"Limit to a 1-based slide number; 0 for all" default:"0"`
}

func (c *PptxReplaceCmd) Run(out *Output) error {
	session, err := pptx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := pptx.Replace(session, c.Slide, c.Find, c.Replace)
	if err != nil {
		return err
	}

	if result.Replacements > 0 {
		if err := session.SaveInPlace(); err != nil {
			return err
		}
	}

	return out.Emit(result)
}

// PptxAddSlideCmd appends a slide.
type PptxAddSlideCmd struct {
	File    string `arg:"" help:"PPTX file path"`
	Layout  int    `help:"0-based layout index (see 'pptx layouts')" default:"0"`
	Title   string `help:"Title placeholder text"`
	Content string `help:"Body placeholder text (@file or - for stdin)"`
}

func (c *PptxAddSlideCmd) Run(out *Output) error {
	content := c.Content

	if content != "" {
		resolved, err := input.Resolve(content)
		if err != nil {
			return err
		}

		content = resolved
	}

	session, err := pptx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := pptx.AddSlide(session, c.Layout, c.Title, content)
	if err != nil {
		return err
	}

	if err := session.SaveInPlace(); err != nil {
		return err
	}

	return out.Emit(result)
}

// PptxLayoutsCmd lists layouts.
type PptxLayoutsCmd struct {
	File string `arg:"" help:"PPTX file path"`
}

func (c *PptxLayoutsCmd) Run(out *Output) error {
	session, err := pptx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := pptx.Layouts(session)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PptxExtractImagesCmd saves embedded slide images.
type PptxExtractImagesCmd struct {
	File      string `arg:"" help:"PPTX file path"`
	OutputDir string `help:"Directory for extracted images (default from config, else '.')" short:"o"`
	Slide     int    `help:"Limit to a 1-based slide number; 0 for all" default:"0"`
}

func (c *PptxExtractImagesCmd) Run(out *Output, settings *config.Settings) error {
	session, err := pptx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := pptx.ExtractImages(session, c.Slide, outputDir(c.OutputDir, settings))
	if err != nil {
		return err
	}

	return out.Emit(result)
}
