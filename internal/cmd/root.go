// Package cmd wires the docsmith CLI: command definitions, output plumbing,
// and the error envelope printed when anything fails.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/docsmith-dev/docsmith/internal/config"
	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/outfmt"
	"github.com/docsmith-dev/docsmith/internal/soffice"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

type RootFlags struct {
	JQ      string `name:"jq" help:"Apply a jq expression to the JSON output"`
	Verbose bool   `help:"Enable debug logging on stderr" short:"v"`
}

type CLI struct {
	RootFlags `embed:""`

	Version kong.VersionFlag `help:"Print version and exit"`

	Docx    DocxCmd    `cmd:"" help:"Word document operations"`
	Pptx    PptxCmd    `cmd:"" help:"PowerPoint presentation operations"`
	Xlsx    XlsxCmd    `cmd:"" help:"Excel workbook operations"`
	PDF     PDFCmd     `cmd:"" name:"pdf" help:"PDF operations"`
	Extract ExtractCmd `cmd:"" help:"Extract plain text from an Office file"`

	VersionCmd VersionCmd `cmd:"" name:"version" help:"Print version information"`
}

// Execute parses args and runs the selected command. Every failure, parse
// errors included, lands on stdout as a JSON error envelope; the returned
// error only drives the exit code.
func Execute(args []string) error {
	var cli CLI

	parser, err := kong.New(&cli,
		kong.Name("docsmith"),
		kong.Description("Inspect and edit DOCX, PPTX, XLSX, and PDF files with JSON output."),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	)
	if err != nil {
		return emitError(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return emitError(errfmt.Wrap(errfmt.ValidationError, err))
	}

	setupLogging(cli.Verbose)

	settings, err := config.Load()
	if err != nil {
		slog.Warn("config load failed, using defaults", "error", err)

		settings = config.Defaults()
	}

	if settings.SofficePath != "" {
		soffice.Binary = settings.SofficePath
	}

	ctx := context.Background()
	out := &Output{jq: cli.JQ}

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(out)
	kctx.Bind(&settings)

	if err := kctx.Run(); err != nil {
		return emitError(err)
	}

	return nil
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// emitError prints the envelope and passes the error through for the exit
// code. Stdout stays machine-readable even on failure.
func emitError(err error) error {
	if writeErr := outfmt.WriteJSON(os.Stdout, errfmt.ToEnvelope(err)); writeErr != nil {
		fmt.Fprintln(os.Stderr, writeErr)
	}

	return err
}

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch errfmt.KindOf(err) {
	case errfmt.ValidationError:
		return 2
	case errfmt.DependencyUnavailable:
		return 3
	default:
		return 1
	}
}
