package cmd

import (
	"context"

	"github.com/docsmith-dev/docsmith/internal/errfmt"
	"github.com/docsmith-dev/docsmith/internal/input"
	"github.com/docsmith-dev/docsmith/internal/xlsx"
)

// XlsxCmd is the top-level command for workbook operations.
type XlsxCmd struct {
	Read        XlsxReadCmd        `cmd:"" help:"List populated cells with values and formulas"`
	Edit        XlsxEditCmd        `cmd:"" help:"Write a cell (value, number, or =formula)"`
	CheckErrors XlsxCheckErrorsCmd `cmd:"check-errors" help:"Scan for formula error values (#REF!, #DIV/0!, ...)"`
	Recalculate XlsxRecalculateCmd `cmd:"" help:"Recalculate formulas via LibreOffice"`
}

// XlsxReadCmd reads one sheet or the whole workbook.
type XlsxReadCmd struct {
	File  string `arg:"" help:"XLSX file path"`
	Sheet string `help:"Sheet name (default: all sheets)"`
	Cell  string `help:"Read a single cell (A1-style reference)"`
}

func (c *XlsxReadCmd) Run(out *Output) error {
	session, err := xlsx.Open(c.File)
	if err != nil {
		return err
	}

	if c.Cell != "" {
		cell, err := xlsx.GetCell(session, c.Sheet, c.Cell)
		if err != nil {
			return err
		}

		return out.Emit(cell)
	}

	wb, err := xlsx.Read(session, c.Sheet)
	if err != nil {
		return err
	}

	return out.Emit(wb)
}

// XlsxEditCmd writes one cell, or applies a JSON batch of cell updates.
type XlsxEditCmd struct {
	File  string `arg:"" help:"XLSX file path"`
	Cell  string `help:"A1-style cell reference"`
	Value string `help:"Cell value; prefix with = for a formula (@file or - for stdin)"`
	Sheet string `help:"Sheet name (default: first sheet)"`

	Updates string `help:"JSON list of {cell, value} updates (@file or - for stdin)"`
}

func (c *XlsxEditCmd) Run(out *Output) error {
	session, err := xlsx.Open(c.File)
	if err != nil {
		return err
	}

	if c.Updates != "" {
		updates, err := input.Resolve(c.Updates)
		if err != nil {
			return err
		}

		result, err := xlsx.ApplyUpdates(session, c.Sheet, updates)
		if err != nil {
			return err
		}

		if err := session.SaveInPlace(); err != nil {
			return err
		}

		return out.Emit(result)
	}

	if c.Cell == "" {
		return errfmt.New(errfmt.ValidationError, "pass --cell with --value (or a batch via --updates)")
	}

	value, err := input.Resolve(c.Value)
	if err != nil {
		return err
	}

	result, err := xlsx.SetCell(session, c.Sheet, c.Cell, value)
	if err != nil {
		return err
	}

	if err := session.SaveInPlace(); err != nil {
		return err
	}

	return out.Emit(result)
}

// XlsxCheckErrorsCmd reports cells holding error literals.
type XlsxCheckErrorsCmd struct {
	File string `arg:"" help:"XLSX file path"`
}

func (c *XlsxCheckErrorsCmd) Run(out *Output) error {
	session, err := xlsx.Open(c.File)
	if err != nil {
		return err
	}

	result, err := xlsx.CheckErrors(session)
	if err != nil {
		return err
	}

	return out.Emit(result)
}

// XlsxRecalculateCmd refreshes cached formula results in place.
type XlsxRecalculateCmd struct {
	File string `arg:"" help:"XLSX file path"`
}

func (c *XlsxRecalculateCmd) Run(ctx context.Context, out *Output) error {
	result, err := xlsx.Recalculate(ctx, c.File)
	if err != nil {
		return err
	}

	return out.Emit(result)
}
