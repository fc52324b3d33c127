package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

const bytesPerMB = 1000 * 1000

// SimpleUI implements UI using the cobra command's output writer.
type SimpleUI struct {
	cmd     *cobra.Command
	heading lipgloss.Style
	styled  bool
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command, styled bool) *SimpleUI {
	return &SimpleUI{
		cmd:     cmd,
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		styled:  styled,
	}
}

type bucketStat struct {
	series  int
	done    int
	missing int
}

// DisplayLayout prints per-bucket presence counts for a mapping run.
func (s *SimpleUI) DisplayLayout(ctx context.Context, layout m.Layout, info m.RunInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.title("Presence")

	if info.ID != "" {
		s.printf("run %s (rawdata %s)\n", info.ID, info.Rawdata)
	}

	s.printf("\n%s", renderPresenceTable(buildBucketStats(layout.Presence)))
	s.printf("malformed identifiers: %d\n", len(layout.Errors))
	s.printf("unknown series-types:  %d\n", len(layout.Unknown))

	return nil
}

func buildBucketStats(report m.PresenceReport) map[m.Bucket]bucketStat {
	stats := make(map[m.Bucket]bucketStat)

	for _, p := range report.Series {
		stat := stats[p.Bucket]
		stat.series++
		stat.missing += p.Missing

		if p.Done {
			stat.done++
		}

		stats[p.Bucket] = stat
	}

	return stats
}

func renderPresenceTable(stats map[m.Bucket]bucketStat) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Bucket", "Series", "Done", "Missing files"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	var total bucketStat

	for _, bucket := range m.AllBuckets() {
		stat, ok := stats[bucket]
		if !ok {
			continue
		}

		table.Append([]string{
			string(bucket),
			fmt.Sprintf("%d", stat.series),
			fmt.Sprintf("%d", stat.done),
			fmt.Sprintf("%d", stat.missing),
		})

		total.series += stat.series
		total.done += stat.done
		total.missing += stat.missing
	}

	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d", total.series),
		fmt.Sprintf("%d", total.done),
		fmt.Sprintf("%d", total.missing),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayConversionPlan prints what must happen before conversion.
func (s *SimpleUI) DisplayConversionPlan(ctx context.Context, plan m.ConversionPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.title("Conversion plan")
	s.printf("session directories to remove: %d\n", len(plan.RemoveDirs))
	s.printf("rows pending conversion:       %d\n", plan.PendingRows)
	s.printf("subjects pending conversion:   %d\n", len(plan.Subjects))

	return nil
}

// DisplaySubset prints the outcome of a subset run.
func (s *SimpleUI) DisplaySubset(ctx context.Context, summary m.SubsetSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.title("Subset")
	s.printf("series-types: %v\n", summary.Types)
	s.printf("selected series: %d\n", summary.Selected)
	s.printf("subset QC file: %s\n", summary.QCFile)

	if summary.Linked > 0 || summary.Skipped > 0 {
		s.printf("linked files: %d (skipped %d not found)\n", summary.Linked, summary.Skipped)
	}

	return nil
}

// DisplayReport prints where a QC report was written.
func (s *SimpleUI) DisplayReport(ctx context.Context, path m.Path, rows int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("wrote %d rows to %s\n", rows, path)

	return nil
}

// DisplayEstimate prints subject/session counts and the estimated size.
func (s *SimpleUI) DisplayEstimate(ctx context.Context, estimate m.Estimate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.title("Estimate")
	s.printf("%d unique subjects\n", estimate.Subjects)
	s.printf("%d unique sessions\n", estimate.Sessions)
	s.printf("\n%s", renderSessionTable(estimate.PerLabel))

	size := humanize.Bytes(uint64(estimate.TotalMB * bytesPerMB))
	s.printf("%s of space required for %d series\n", size, estimate.Series)

	if estimate.Unsized > 0 {
		s.printf("%d series have no size estimate\n", estimate.Unsized)
	}

	if estimate.Malformed > 0 {
		s.printf("%d malformed identifiers skipped\n", estimate.Malformed)
	}

	return nil
}

func renderSessionTable(counts []m.SessionCount) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Session", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, c := range counts {
		table.Append([]string{c.Label, fmt.Sprintf("%d", c.Count)})
	}

	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) title(text string) {
	if s.styled {
		text = s.heading.Render(text)
	}

	s.printf("%s\n", text)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
