// Package domain maps QC manifest series to their expected BIDS layout and
// drives the commands built on that mapping.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ftqmap.dev/pkg/ftqmap/internal/adapter"
	"ftqmap.dev/pkg/ftqmap/internal/controller"
	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// Files written next to the artifacts of a mapping run.
const (
	RemovalListFile       = "remove_before_conversion.txt"
	PreConversionFile     = "abcd_fastqc01_pre_conversion.txt"
	SubjectListFile       = "full_sublist.txt"
	DefaultQCReportFile   = "abcd_fastqc01_qc.tsv"
	outputFilePermissions = 0o600
)

// MapArgs contains the arguments for a mapping run.
type MapArgs struct {
	Manifest m.Path
	Rawdata  m.Path
	Output   m.Path
}

// SubsetArgs contains the arguments for building a subset.
type SubsetArgs struct {
	Manifest   m.Path
	Artifacts  m.Path
	OutputDir  m.Path
	InputDir   m.Path
	Types      []string
	GoodQCOnly bool

	// IntendedForOnly drops field maps whose sidecar lists no IntendedFor
	// targets. It needs InputDir.
	IntendedForOnly bool
}

// ReportArgs contains the arguments for writing a QC report.
type ReportArgs struct {
	Manifest   m.Path
	Artifacts  m.Path
	ReportFile m.Path
}

// EstimateArgs contains the arguments for a space estimate.
type EstimateArgs struct {
	Manifest m.Path
}

// ViewArgs contains the arguments for viewing a previous run.
type ViewArgs struct {
	Artifacts m.Path
}

// Workflow defines the operations exposed by the CLI.
type Workflow interface {
	Map(ctx context.Context, args MapArgs) error
	Subset(ctx context.Context, args SubsetArgs) error
	Report(ctx context.Context, args ReportArgs) error
	Estimate(ctx context.Context, args EstimateArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.LayoutFSAdapter
	adapter.ManifestAdapter
	adapter.ArtifactStore
	controller.UI

	table    m.NamingTable
	resolver *Resolver
	now      func() time.Time
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.LayoutFSAdapter,
	manifestAdapter adapter.ManifestAdapter,
	store adapter.ArtifactStore,
	ui controller.UI,
	table m.NamingTable,
) Workflow {
	return &workflow{
		LayoutFSAdapter: fsAdapter,
		ManifestAdapter: manifestAdapter,
		ArtifactStore:   store,
		UI:              ui,
		table:           table,
		resolver:        NewResolver(table, fsAdapter),
		now:             time.Now,
	}
}

// Map resolves the active manifest rows against the rawdata directory,
// persists the artifacts and writes the conversion plan.
func (w *workflow) Map(ctx context.Context, args MapArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	manifest, err := w.ReadManifest(args.Manifest)
	if err != nil {
		slog.Error("Failed to read manifest", "path", args.Manifest, "error", err)
		return fmt.Errorf("read manifest: %w", err)
	}

	rows := manifest.Active()

	info := m.RunInfo{
		ID:        uuid.NewString(),
		CreatedAt: w.now().UTC(),
		Rawdata:   args.Rawdata,
		Manifest:  args.Manifest,
	}

	unlock, err := w.Lock(args.Output)
	if err != nil {
		slog.Error("Failed to lock artifacts", "dir", args.Output, "error", err)
		return fmt.Errorf("lock artifacts: %w", err)
	}
	defer unlock()

	slog.Info("starting mapping run", "run", info.ID, "rows", len(rows), "rawdata", args.Rawdata)

	layout := w.resolver.Map(m.SeriesIDs(rows), args.Rawdata)

	slog.Info("finished mapping run",
		"run", info.ID,
		"mapped", len(layout.Mapping),
		"errors", len(layout.Errors),
		"unknown", len(layout.Unknown),
		"missing", len(layout.Presence.Missing),
	)

	if err := w.SaveLayout(args.Output, layout, info); err != nil {
		slog.Error("Failed to save artifacts", "dir", args.Output, "error", err)
		return fmt.Errorf("save artifacts: %w", err)
	}

	plan, err := w.writeConversionPlan(manifest, rows, layout, args)
	if err != nil {
		slog.Error("Failed to write conversion plan", "dir", args.Output, "error", err)
		return fmt.Errorf("write conversion plan: %w", err)
	}

	if err := w.DisplayLayout(ctx, layout, info); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	if err := w.DisplayConversionPlan(ctx, plan); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

func (w *workflow) writeConversionPlan(manifest *m.Manifest, rows []m.ManifestRow, layout m.Layout, args MapArgs) (m.ConversionPlan, error) {
	plan := m.ConversionPlan{
		RemoveDirs: RemovalDirs(layout.Presence, args.Rawdata, w),
	}

	removals := make([]string, 0, len(plan.RemoveDirs))
	for _, dir := range plan.RemoveDirs {
		removals = append(removals, string(dir))
	}

	if err := w.writeLines(w.JoinPath(string(args.Output), RemovalListFile), removals); err != nil {
		return plan, err
	}

	pending := PendingRows(rows, args.Rawdata, w)
	plan.PendingRows = len(pending)
	plan.Subjects = SubjectList(pending)

	preConversion := w.JoinPath(string(args.Output), PreConversionFile)
	if err := w.WriteManifest(preConversion, manifest.Header, manifest.Description, pending); err != nil {
		return plan, err
	}

	if err := w.writeLines(w.JoinPath(string(args.Output), SubjectListFile), plan.Subjects); err != nil {
		return plan, err
	}

	return plan, nil
}

func (w *workflow) writeLines(path m.Path, lines []string) error {
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}

	if err := w.WriteFile(path, []byte(content), outputFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(string(path)), err)
	}

	return nil
}

// Subset selects the series of the requested datatypes, writes the subset QC
// file and, when an input directory is given, links their files into the
// output directory.
func (w *workflow) Subset(ctx context.Context, args SubsetArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seriesTypes, err := ExpandDatatypes(args.Types)
	if err != nil {
		return err
	}

	if args.IntendedForOnly && args.InputDir == "" {
		return fmt.Errorf("IntendedFor filter: %w", ErrInputDirRequired)
	}

	mapping, err := w.LoadMapping(args.Artifacts)
	if err != nil {
		slog.Error("Failed to load mapping", "dir", args.Artifacts, "error", err)
		return fmt.Errorf("load mapping: %w", err)
	}

	manifest, err := w.ReadManifest(args.Manifest)
	if err != nil {
		slog.Error("Failed to read manifest", "path", args.Manifest, "error", err)
		return fmt.Errorf("read manifest: %w", err)
	}

	known := make(map[m.SeriesID]struct{}, len(manifest.Rows))
	for _, row := range manifest.Rows {
		known[m.SeriesID(row.Record.SeriesID)] = struct{}{}
	}

	slog.Info("matching series to subsets", "types", seriesTypes)

	candidates := SelectSeries(mapping, seriesTypes, known)

	if args.IntendedForOnly {
		before := len(candidates)

		candidates, err = FilterIntendedFor(mapping, candidates, w.table, args.InputDir, w)
		if err != nil {
			slog.Error("Failed to read field map sidecars", "dir", args.InputDir, "error", err)
			return fmt.Errorf("filter IntendedFor: %w", err)
		}

		slog.Info("filtered field maps by IntendedFor", "dropped", before-len(candidates))
	}

	rows := SubsetRows(manifest.Rows, candidates, args.GoodQCOnly)

	selected := make([]m.SeriesID, 0, len(rows))
	for _, row := range rows {
		selected = append(selected, m.SeriesID(row.Record.SeriesID))
	}

	summary := m.SubsetSummary{
		Types:     seriesTypes,
		Selected:  len(selected),
		QCFile:    SubsetQCFile(args.OutputDir),
		OutputDir: args.OutputDir,
	}

	if err := w.MkdirAll(args.OutputDir); err != nil {
		return fmt.Errorf("create subset dir: %w", err)
	}

	if err := w.WriteManifest(summary.QCFile, manifest.Header, manifest.Description, rows); err != nil {
		slog.Error("Failed to write subset QC file", "path", summary.QCFile, "error", err)
		return fmt.Errorf("write subset QC file: %w", err)
	}

	if args.InputDir != "" {
		for _, link := range PlanLinks(mapping, selected, w.table, args.InputDir, args.OutputDir) {
			if !w.IsFile(link.Source) {
				slog.Debug("subset source not found", "path", link.Source)

				summary.Skipped++

				continue
			}

			if err := w.Symlink(link.Source, link.Target); err != nil {
				slog.Error("Failed to link subset file", "source", link.Source, "target", link.Target, "error", err)
				return fmt.Errorf("link %s: %w", link.Target, err)
			}

			summary.Linked++
		}
	}

	slog.Info("subset complete", "selected", summary.Selected, "linked", summary.Linked, "skipped", summary.Skipped)

	return w.DisplaySubset(ctx, summary)
}

// Report writes the per-series QC report.
func (w *workflow) Report(ctx context.Context, args ReportArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mapping, err := w.LoadMapping(args.Artifacts)
	if err != nil {
		slog.Error("Failed to load mapping", "dir", args.Artifacts, "error", err)
		return fmt.Errorf("load mapping: %w", err)
	}

	manifest, err := w.ReadManifest(args.Manifest)
	if err != nil {
		slog.Error("Failed to read manifest", "path", args.Manifest, "error", err)
		return fmt.Errorf("read manifest: %w", err)
	}

	reportFile := args.ReportFile
	if reportFile == "" {
		reportFile = w.JoinPath(string(args.Artifacts), DefaultQCReportFile)
	}

	unlock, err := w.Lock(args.Artifacts)
	if err != nil {
		slog.Error("Failed to lock artifacts", "dir", args.Artifacts, "error", err)
		return fmt.Errorf("lock artifacts: %w", err)
	}
	defer unlock()

	rows := BuildQCReport(manifest.Active(), mapping)
	if err := w.WriteReport(reportFile, rows); err != nil {
		slog.Error("Failed to write QC report", "path", reportFile, "error", err)
		return fmt.Errorf("write report: %w", err)
	}

	return w.DisplayReport(ctx, reportFile, len(rows))
}

// Estimate prints subject and session counts and the estimated size of the
// active manifest rows.
func (w *workflow) Estimate(ctx context.Context, args EstimateArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	manifest, err := w.ReadManifest(args.Manifest)
	if err != nil {
		slog.Error("Failed to read manifest", "path", args.Manifest, "error", err)
		return fmt.Errorf("read manifest: %w", err)
	}

	return w.DisplayEstimate(ctx, EstimateManifest(m.SeriesIDs(manifest.Active())))
}

// View displays the presence summary of a persisted mapping run.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	layout, info, err := w.LoadLayout(args.Artifacts)
	if err != nil {
		slog.Error("Failed to load artifacts", "dir", args.Artifacts, "error", err)
		return fmt.Errorf("load artifacts: %w", err)
	}

	return w.DisplayLayout(ctx, layout, info)
}
