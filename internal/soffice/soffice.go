// Package soffice runs LibreOffice headless for the conversions and
// recalculations the in-process engines delegate: DOCX→PDF rendering and
// spreadsheet formula evaluation. LibreOffice is an optional collaborator;
// its absence is reported as DependencyUnavailable, never a crash.
package soffice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
)

// Binary is the LibreOffice executable name looked up on PATH.
// Overridable for tests and nonstandard installs.
var Binary = "soffice"

// LookPath locates the soffice binary, reporting DependencyUnavailable when
// it is not installed.
func LookPath() (string, error) {
	path, err := exec.LookPath(Binary)
	if err != nil {
		return "", errfmt.New(errfmt.DependencyUnavailable,
			"LibreOffice not found: install with 'apt install libreoffice' or 'brew install libreoffice'")
	}

	return path, nil
}

// Convert converts inputPath to the given format ("pdf", "xlsx", ...) using
// LibreOffice headless, writing into outDir. Returns the generated file path.
// LibreOffice names the output after the input with the new extension.
func Convert(ctx context.Context, inputPath, format, outDir string) (string, error) {
	bin, err := LookPath()
	if err != nil {
		return "", err
	}

	if mkdirErr := os.MkdirAll(outDir, 0o750); mkdirErr != nil {
		return "", errfmt.Wrap(errfmt.IOError, fmt.Errorf("create output dir %s: %w", outDir, mkdirErr))
	}

	// soffice --headless --convert-to FORMAT --outdir DIR INPUT
	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", format, "--outdir", outDir, inputPath) //nolint:gosec // bin from LookPath

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", errfmt.New(errfmt.IOError, "libreoffice conversion failed: %s: %v", output, err)
	}

	base := filepath.Base(inputPath)
	name := base[:len(base)-len(filepath.Ext(base))] + "." + format
	generated := filepath.Join(outDir, name)

	if _, statErr := os.Stat(generated); statErr != nil {
		return "", errfmt.New(errfmt.IOError, "libreoffice did not produce %s: %v", generated, statErr)
	}

	return generated, nil
}

// Version returns the LibreOffice version string, or DependencyUnavailable
// if soffice is not installed.
func Version(ctx context.Context) (string, error) {
	bin, err := LookPath()
	if err != nil {
		return "", err
	}

	out, err := exec.CommandContext(ctx, bin, "--version").CombinedOutput() //nolint:gosec // bin from LookPath
	if err != nil {
		return "", errfmt.New(errfmt.IOError, "soffice --version failed: %v", err)
	}

	return string(out), nil
}
