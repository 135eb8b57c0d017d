package cmd

import (
	"context"

	"github.com/docsmith-dev/docsmith/internal/config"
	"github.com/docsmith-dev/docsmith/internal/input"
	"github.com/docsmith-dev/docsmith/internal/pdf"
)

// PDFCmd is the top-level command for PDF operations.
type PDFCmd struct {
	Info          PDFInfoCmd          `cmd:"" help:"Show page count, encryption state, and metadata"`
	Read          PDFReadCmd          `cmd:"" help:"Extract text, optionally from a page range"`
	Merge         PDFMergeCmd         `cmd:"" help:"Merge PDFs into one file"`
	Split         PDFSplitCmd         `cmd:"" help:"Split into one file per page"`
	ExtractPages  PDFExtractPagesCmd  `cmd:"extract-pages" help:"Copy selected pages into a new PDF"`
	Rotate        PDFRotateCmd        `cmd:"" help:"Rotate pages by a multiple of 90 degrees"`
	Watermark     PDFWatermarkCmd     `cmd:"" help:"Stamp text across every page"`
	ExtractImages PDFExtractImagesCmd `cmd:"extract-images" help:"Save embedded images to a directory"`
	Encrypt       PDFEncryptCmd       `cmd:"" help:"Password-protect a PDF"`
	Decrypt       PDFDecryptCmd       `cmd:"" help:"Remove password protection"`
	Create        PDFCreateCmd        `cmd:"" help:"Create a PDF from text and/or images"`
	ToImages      PDFToImagesCmd      `cmd:"to-images" help:"Render pages to PNG via pdftoppm"`
}

// PDFInfoCmd shows document metadata.
type PDFInfoCmd struct {
	File string `arg:"" help:"PDF file path"`
}

func (c *PDFInfoCmd) Run(out *Output) error {
	info, err := pdf.ReadInfo(c.File)
	if err != nil {
		return err
	}

	return out.Emit(info)
}

// PDFReadCmd extracts page text.
type PDFReadCmd struct {
	File  string `arg:"" help:"PDF file path"`
	Pages string `help:"1-based page range, e.g. '1,3-5' (default: all)"`
}

func (c *PDFReadCmd) Run(out *Output) error {
	doc, err := pdf.ReadText(c.File, c.Pages)
	if err != nil {
		return err
	}

	return out.Emit(doc)
}

// PDFMergeCmd concatenates inputs in argument order.
type PDFMergeCmd struct {
	Files  []string `arg:"" help:"Input PDF files, in order"`
	Output string   `help:"Merged output path" required:"" short:"o"`
}

func (c *PDFMergeCmd) Run(out *Output) error {
	result, err := pdf.Merge(c.Files, c.Output)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFSplitCmd writes one file per page.
type PDFSplitCmd struct {
	File      string `arg:"" help:"PDF file path"`
	OutputDir string `help:"Directory for page files (default from config, else '.')" short:"o"`
	Pages     string `help:"Only split these pages, e.g. '1,3-5' (default: all)"`
}

func (c *PDFSplitCmd) Run(out *Output, settings *config.Settings) error {
	result, err := pdf.Split(c.File, outputDir(c.OutputDir, settings), c.Pages)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFExtractPagesCmd copies a page selection into a new document.
type PDFExtractPagesCmd struct {
	File   string `arg:"" help:"PDF file path"`
	Pages  string `help:"1-based page range, e.g. '1,3-5'" required:""`
	Output string `help:"Output PDF path" required:"" short:"o"`
}

func (c *PDFExtractPagesCmd) Run(out *Output) error {
	result, err := pdf.ExtractPages(c.File, c.Output, c.Pages)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFRotateCmd rotates pages clockwise.
type PDFRotateCmd struct {
	File    string `arg:"" help:"PDF file path"`
	Degrees int    `help:"Clockwise rotation, multiple of 90" required:""`
	Pages   string `help:"1-based page range (default: all pages)"`
	Output  string `help:"Output PDF path" required:"" short:"o"`
}

func (c *PDFRotateCmd) Run(out *Output) error {
	result, err := pdf.Rotate(c.File, c.Output, c.Degrees, c.Pages)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFWatermarkCmd stamps text on every page.
type PDFWatermarkCmd struct {
	File     string  `arg:"" help:"PDF file path"`
	Text     string  `help:"Watermark text" required:""`
	Output   string  `help:"Output PDF path" required:"" short:"o"`
	Opacity  float64 `help:"Watermark opacity, 0-1" default:"0.3"`
	Position string  `help:"Placement: diagonal, center, or bottom" default:"diagonal"`
}

func (c *PDFWatermarkCmd) Run(out *Output) error {
	result, err := pdf.Watermark(c.File, c.Output, c.Text, c.Opacity, c.Position)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFExtractImagesCmd saves embedded images.
type PDFExtractImagesCmd struct {
	File      string `arg:"" help:"PDF file path"`
	OutputDir string `help:"Directory for extracted images (default from config, else '.')" short:"o"`
	Pages     string `help:"1-based page range (default: all pages)"`
}

func (c *PDFExtractImagesCmd) Run(out *Output, settings *config.Settings) error {
	result, err := pdf.ExtractImages(c.File, outputDir(c.OutputDir, settings), c.Pages)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFEncryptCmd password-protects a document.
type PDFEncryptCmd struct {
	File     string `arg:"" help:"PDF file path"`
	Password string `help:"Password (used as user and owner password)" required:""`
	Output   string `help:"Output PDF path" required:"" short:"o"`
}

func (c *PDFEncryptCmd) Run(out *Output) error {
	result, err := pdf.Encrypt(c.File, c.Output, c.Password)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFDecryptCmd removes password protection.
type PDFDecryptCmd struct {
	File     string `arg:"" help:"PDF file path"`
	Password string `help:"Current password" required:""`
	Output   string `help:"Output PDF path" required:"" short:"o"`
}

func (c *PDFDecryptCmd) Run(out *Output) error {
	result, err := pdf.Decrypt(c.File, c.Output, c.Password)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFCreateCmd builds a new PDF from text and/or image pages.
type PDFCreateCmd struct {
	File   string   `arg:"" help:"Path for the new PDF"`
	Text   string   `help:"Document text (@file or - for stdin)"`
	Images []string `help:"Image files to append, one page each"`
}

func (c *PDFCreateCmd) Run(ctx context.Context, out *Output) error {
	text := c.Text

	if text != "" {
		resolved, err := input.Resolve(text)
		if err != nil {
			return err
		}

		text = resolved
	}

	result, err := pdf.Create(ctx, c.File, text, c.Images)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// PDFToImagesCmd rasterizes pages to PNG.
type PDFToImagesCmd struct {
	File      string `arg:"" help:"PDF file path"`
	OutputDir string `help:"Directory for rendered pages (default from config, else '.')" short:"o"`
	DPI       int    `help:"Render resolution (default from config)" default:"0"`
}

func (c *PDFToImagesCmd) Run(ctx context.Context, out *Output, settings *config.Settings) error {
	dpi := c.DPI
	if dpi == 0 {
		dpi = settings.RenderDPI
	}

	result, err := pdf.ToImages(ctx, c.File, outputDir(c.OutputDir, settings), dpi)
	if err != nil {
		return err
	}

	return out.Emit(result)
}
