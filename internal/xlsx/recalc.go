package xlsx

import (
	"context"
	"os"
	"path/filepath"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/soffice"
)

// RecalcResult reports a formula recalculation pass.
type RecalcResult struct {
	Status     string      `json:"status"`
	Path       string      `json:"path"`
	ErrorCount int         `json:"error_count"`
	Errors     []CellError `json:"errors"`
}

// Recalculate refreshes cached formula results by round-tripping the
// workbook through LibreOffice, which evaluates every formula on save.
// The recalculated file replaces the original in place, then a scan
// reports any cells that now hold error literals.
func Recalculate(ctx context.Context, path string) (*RecalcResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errfmt.Wrap(errfmt.NotFound, err, "opening workbook")
	}

	tmpDir, err := os.MkdirTemp("", "docsmith-recalc-")
	if err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "creating work directory")
	}
	defer os.RemoveAll(tmpDir)

	converted, err := soffice.Convert(ctx, path, "xlsx", tmpDir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(converted)
	if err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "reading recalculated workbook")
	}

	// Replace atomically next to the original so a crash never leaves a
	// half-written workbook behind.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docsmith-recalc-*.xlsx")
	if err != nil {
		return nil, errfmt.Wrap(errfmt.IOError, err, "staging recalculated workbook")
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return nil, errfmt.Wrap(errfmt.IOError, err, "writing recalculated workbook")
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return nil, errfmt.Wrap(errfmt.IOError, err, "writing recalculated workbook")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)

		return nil, errfmt.Wrap(errfmt.IOError, err, "replacing workbook")
	}

	session, err := Open(path)
	if err != nil {
		return nil, err
	}

	check, err := CheckErrors(session)
	if err != nil {
		return nil, err
	}

	return &RecalcResult{
		Status:     "success",
		Path:       path,
		ErrorCount: check.ErrorCount,
		Errors:     check.Errors,
	}, nil
}
