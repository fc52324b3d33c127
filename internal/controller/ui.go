// Package controller renders mapping results for the terminal.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// UI defines how workflow results are shown to the user.
type UI interface {
	DisplayLayout(ctx context.Context, layout m.Layout, info m.RunInfo) error
	DisplayConversionPlan(ctx context.Context, plan m.ConversionPlan) error
	DisplaySubset(ctx context.Context, summary m.SubsetSummary) error
	DisplayReport(ctx context.Context, path m.Path, rows int) error
	DisplayEstimate(ctx context.Context, estimate m.Estimate) error
}

// NewUI returns the UI for cmd. Headings are styled when styled is true.
func NewUI(cmd *cobra.Command, styled bool) UI {
	return NewSimpleUI(cmd, styled)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	fd := f.Fd()

	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
