package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftqmap.dev/pkg/ftqmap/internal/adapter"
	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// recordingUI captures what the workflow displays.
type recordingUI struct {
	layouts    []m.Layout
	infos      []m.RunInfo
	plans      []m.ConversionPlan
	subsets    []m.SubsetSummary
	reports    []m.Path
	reportRows []int
	estimates  []m.Estimate
}

func (u *recordingUI) DisplayLayout(_ context.Context, layout m.Layout, info m.RunInfo) error {
	u.layouts = append(u.layouts, layout)
	u.infos = append(u.infos, info)

	return nil
}

func (u *recordingUI) DisplayConversionPlan(_ context.Context, plan m.ConversionPlan) error {
	u.plans = append(u.plans, plan)
	return nil
}

func (u *recordingUI) DisplaySubset(_ context.Context, summary m.SubsetSummary) error {
	u.subsets = append(u.subsets, summary)
	return nil
}

func (u *recordingUI) DisplayReport(_ context.Context, path m.Path, rows int) error {
	u.reports = append(u.reports, path)
	u.reportRows = append(u.reportRows, rows)

	return nil
}

func (u *recordingUI) DisplayEstimate(_ context.Context, estimate m.Estimate) error {
	u.estimates = append(u.estimates, estimate)
	return nil
}

const testManifestHeader = "subjectkey\tsrc_subject_id\tvisit\tftq_series_id\tftq_recalled\tftq_usable\tftq_quality"

const testManifestDescription = "The NDAR Global Unique Identifier (GUID) for research subject\tSubject ID\tVisit name\tSeries identifier\tRecalled\tUsable\tQuality"

var testManifestRows = []string{
	"A\tA\tbaseline\tA_1_ABCD-T1_1\t0\t1\tgood",
	"A\tA\tbaseline\tA_1_ABCD-T2_1\t0\t0\tpoor",
	"B\tB\tbaseline\tB_1_ABCD-DTI_1\t0\t1\tgood",
	"C\tC\tbaseline\tC_1_ABCD-T1_1\t1\t1\tgood",
	"B\tB\tbaseline\tbad\t0\t1\tgood",
}

type workflowFixture struct {
	wf        *workflow
	ui        *recordingUI
	rawdata   m.Path
	manifest  m.Path
	artifacts m.Path
	root      string
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()

	root := t.TempDir()

	rawdata := filepath.Join(root, "rawdata")
	anat := filepath.Join(rawdata, "sub-A", "ses-1", "anat")
	require.NoError(t, os.MkdirAll(anat, 0o750))

	for _, name := range []string{"sub-A_ses-1_T1w.nii.gz", "sub-A_ses-1_T1w.json", "sub-A_ses-1_T2w.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(anat, name), []byte("x"), 0o600))
	}

	manifest := filepath.Join(root, "abcd_fastqc01.txt")
	content := strings.Join(append([]string{testManifestHeader, testManifestDescription}, testManifestRows...), "\n") + "\n"
	require.NoError(t, os.WriteFile(manifest, []byte(content), 0o600))

	ui := &recordingUI{}
	wf, ok := NewWorkflow(
		adapter.NewLocalLayoutFSAdapter(),
		adapter.NewLocalManifestAdapter(),
		adapter.NewArtifactStore(),
		ui,
		DefaultNamingTable(),
	).(*workflow)
	require.True(t, ok)

	wf.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	return &workflowFixture{
		wf:        wf,
		ui:        ui,
		rawdata:   m.Path(rawdata),
		manifest:  m.Path(manifest),
		artifacts: m.Path(filepath.Join(root, "artifacts")),
		root:      root,
	}
}

func (f *workflowFixture) runMap(t *testing.T) {
	t.Helper()

	require.NoError(t, f.wf.Map(context.Background(), MapArgs{
		Manifest: f.manifest,
		Rawdata:  f.rawdata,
		Output:   f.artifacts,
	}))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestWorkflow_Map(t *testing.T) {
	f := newWorkflowFixture(t)
	f.runMap(t)

	require.Len(t, f.ui.layouts, 1)
	layout := f.ui.layouts[0]

	assert.Equal(t, []string{"bad"}, layout.Errors)
	assert.Len(t, layout.Mapping, 3)
	assert.NotContains(t, layout.Mapping, m.SeriesID("C_1_ABCD-T1_1"))
	assert.ElementsMatch(t, []m.SeriesID{"A_1_ABCD-T2_1", "B_1_ABCD-DTI_1"}, layout.Presence.NotDone())

	info := f.ui.infos[0]
	assert.NotEmpty(t, info.ID)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), info.CreatedAt)
	assert.Equal(t, f.rawdata, info.Rawdata)

	stored, err := adapter.NewArtifactStore().LoadMapping(f.artifacts)
	require.NoError(t, err)
	assert.Equal(t, layout.Mapping, stored)

	removals := readLines(t, filepath.Join(string(f.artifacts), RemovalListFile))
	assert.Equal(t, []string{filepath.Join(string(f.rawdata), "sub-A", "ses-1")}, removals)

	preConversion := readLines(t, filepath.Join(string(f.artifacts), PreConversionFile))
	assert.Equal(t, []string{testManifestHeader, testManifestDescription, testManifestRows[2]}, preConversion)

	assert.Equal(t, []string{"sub-B"}, readLines(t, filepath.Join(string(f.artifacts), SubjectListFile)))

	require.Len(t, f.ui.plans, 1)
	assert.Equal(t, 1, f.ui.plans[0].PendingRows)
	assert.Equal(t, []string{"sub-B"}, f.ui.plans[0].Subjects)
}

func TestWorkflow_MapMissingManifest(t *testing.T) {
	f := newWorkflowFixture(t)

	err := f.wf.Map(context.Background(), MapArgs{
		Manifest: m.Path(filepath.Join(f.root, "missing.txt")),
		Rawdata:  f.rawdata,
		Output:   f.artifacts,
	})
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, f.ui.layouts)
}

func TestWorkflow_MapLockedArtifacts(t *testing.T) {
	f := newWorkflowFixture(t)
	require.NoError(t, os.MkdirAll(string(f.artifacts), 0o750))

	held := flock.New(filepath.Join(string(f.artifacts), ".ftqmap.lock"))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	t.Cleanup(func() { _ = held.Unlock() })

	err = f.wf.Map(context.Background(), MapArgs{Manifest: f.manifest, Rawdata: f.rawdata, Output: f.artifacts})
	require.ErrorIs(t, err, adapter.ErrArtifactsLocked)

	for _, name := range []string{adapter.MappingFile, RemovalListFile, PreConversionFile, SubjectListFile} {
		assert.NoFileExists(t, filepath.Join(string(f.artifacts), name))
	}

	assert.Empty(t, f.ui.layouts)
}

func TestWorkflow_CanceledContext(t *testing.T) {
	f := newWorkflowFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, f.wf.Map(ctx, MapArgs{Manifest: f.manifest, Rawdata: f.rawdata, Output: f.artifacts}), context.Canceled)
	require.ErrorIs(t, f.wf.View(ctx, ViewArgs{Artifacts: f.artifacts}), context.Canceled)
}

func TestWorkflow_View(t *testing.T) {
	f := newWorkflowFixture(t)
	f.runMap(t)

	require.NoError(t, f.wf.View(context.Background(), ViewArgs{Artifacts: f.artifacts}))

	require.Len(t, f.ui.layouts, 2)
	assert.Equal(t, f.ui.layouts[0].Mapping, f.ui.layouts[1].Mapping)
	assert.Equal(t, f.ui.layouts[0].Presence, f.ui.layouts[1].Presence)
	assert.Equal(t, f.ui.infos[0].ID, f.ui.infos[1].ID)
}

func TestWorkflow_Subset(t *testing.T) {
	f := newWorkflowFixture(t)
	f.runMap(t)

	outputDir := filepath.Join(f.root, "subset")

	require.NoError(t, f.wf.Subset(context.Background(), SubsetArgs{
		Manifest:  f.manifest,
		Artifacts: f.artifacts,
		OutputDir: m.Path(outputDir),
		InputDir:  f.rawdata,
		Types:     []string{"anat"},
	}))

	require.Len(t, f.ui.subsets, 1)
	summary := f.ui.subsets[0]
	assert.Equal(t, 2, summary.Selected)
	assert.Equal(t, 3, summary.Linked)
	assert.Equal(t, 1, summary.Skipped)

	qcFile := readLines(t, outputDir+".abcd_fastqc01.txt")
	assert.Equal(t, []string{testManifestHeader, testManifestDescription, testManifestRows[0], testManifestRows[1]}, qcFile)

	link := filepath.Join(outputDir, "sub-A", "ses-1", "anat", "sub-A_ses-1_T1w.nii.gz")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(string(f.rawdata), "sub-A", "ses-1", "anat", "sub-A_ses-1_T1w.nii.gz"), target)

	_, err = os.Lstat(filepath.Join(outputDir, "sub-A", "ses-1", "anat", "sub-A_ses-1_T2w.nii.gz"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWorkflow_SubsetGoodQCOnly(t *testing.T) {
	f := newWorkflowFixture(t)
	f.runMap(t)

	outputDir := filepath.Join(f.root, "good")

	require.NoError(t, f.wf.Subset(context.Background(), SubsetArgs{
		Manifest:   f.manifest,
		Artifacts:  f.artifacts,
		OutputDir:  m.Path(outputDir),
		Types:      []string{"T1w-asacquired", "T2w-asacquired"},
		GoodQCOnly: true,
	}))

	assert.Equal(t, 1, f.ui.subsets[0].Selected)
	assert.Zero(t, f.ui.subsets[0].Linked)

	qcFile := readLines(t, outputDir+".abcd_fastqc01.txt")
	assert.Equal(t, []string{testManifestHeader, testManifestDescription, testManifestRows[0]}, qcFile)
}

func TestWorkflow_SubsetIntendedForOnly(t *testing.T) {
	f := newWorkflowFixture(t)

	table := DefaultNamingTable().With(fieldMapTemplates...)
	f.wf.table = table
	f.wf.resolver = NewResolver(table, f.wf.LayoutFSAdapter)

	fieldMapRows := []string{
		"A\tA\tbaseline\tA_1_ABCD-fMRI-FM-AP_1\t0\t1\tgood",
		"B\tB\tbaseline\tB_1_ABCD-fMRI-FM-AP_1\t0\t1\tgood",
	}
	lines := append([]string{testManifestHeader, testManifestDescription}, testManifestRows...)
	lines = append(lines, fieldMapRows...)
	require.NoError(t, os.WriteFile(string(f.manifest), []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	sidecars := map[string]string{
		filepath.Join("sub-A", "ses-1", "fmap", "sub-A_ses-1_dir-AP_epi.json"): `{"IntendedFor": ["ses-1/func/sub-A_ses-1_task-rest_bold.nii.gz"]}`,
		filepath.Join("sub-B", "ses-1", "fmap", "sub-B_ses-1_dir-AP_epi.json"): `{"IntendedFor": []}`,
	}
	for rel, content := range sidecars {
		path := filepath.Join(string(f.rawdata), rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	f.runMap(t)

	outputDir := filepath.Join(f.root, "fmap")

	require.NoError(t, f.wf.Subset(context.Background(), SubsetArgs{
		Manifest:        f.manifest,
		Artifacts:       f.artifacts,
		OutputDir:       m.Path(outputDir),
		InputDir:        f.rawdata,
		Types:           []string{"fmap", "T1w-asacquired"},
		IntendedForOnly: true,
	}))

	require.Len(t, f.ui.subsets, 1)
	assert.Equal(t, 2, f.ui.subsets[0].Selected)

	qcFile := readLines(t, outputDir+".abcd_fastqc01.txt")
	assert.Equal(t, []string{testManifestHeader, testManifestDescription, testManifestRows[0], fieldMapRows[0]}, qcFile)

	assert.FileExists(t, filepath.Join(outputDir, "sub-A", "ses-1", "fmap", "sub-A_ses-1_dir-AP_epi.json"))
	assert.NoDirExists(t, filepath.Join(outputDir, "sub-B"))
}

func TestWorkflow_SubsetIntendedForOnlyNeedsInputDir(t *testing.T) {
	f := newWorkflowFixture(t)

	err := f.wf.Subset(context.Background(), SubsetArgs{
		Manifest:        f.manifest,
		Artifacts:       f.artifacts,
		OutputDir:       m.Path(filepath.Join(f.root, "subset")),
		Types:           []string{"fmap"},
		IntendedForOnly: true,
	})
	require.ErrorIs(t, err, ErrInputDirRequired)
	assert.Empty(t, f.ui.subsets)
}

func TestWorkflow_SubsetUnknownDatatype(t *testing.T) {
	f := newWorkflowFixture(t)

	err := f.wf.Subset(context.Background(), SubsetArgs{
		Manifest:  f.manifest,
		Artifacts: f.artifacts,
		OutputDir: m.Path(filepath.Join(f.root, "subset")),
		Types:     []string{"pet"},
	})
	require.ErrorIs(t, err, ErrUnknownDatatype)
}

func TestWorkflow_SubsetWithoutArtifacts(t *testing.T) {
	f := newWorkflowFixture(t)

	err := f.wf.Subset(context.Background(), SubsetArgs{
		Manifest:  f.manifest,
		Artifacts: f.artifacts,
		OutputDir: m.Path(filepath.Join(f.root, "subset")),
		Types:     []string{"anat"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load mapping")
}

func TestWorkflow_Report(t *testing.T) {
	f := newWorkflowFixture(t)
	f.runMap(t)

	require.NoError(t, f.wf.Report(context.Background(), ReportArgs{Manifest: f.manifest, Artifacts: f.artifacts}))

	reportFile := filepath.Join(string(f.artifacts), DefaultQCReportFile)
	assert.Equal(t, []m.Path{m.Path(reportFile)}, f.ui.reports)
	assert.Equal(t, []int{4}, f.ui.reportRows)

	lines := readLines(t, reportFile)
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "participant_id\tsession_id\tmodality\ttask\trun\tfile_prefix"))
	assert.True(t, strings.HasPrefix(lines[1], "sub-A\tses-1\tT1w\tn/a\tn/a\tsub-A_ses-1_T1w\t"))
}

func TestWorkflow_ReportCustomFile(t *testing.T) {
	f := newWorkflowFixture(t)
	f.runMap(t)

	reportFile := m.Path(filepath.Join(f.root, "reports", "qc.tsv"))
	require.NoError(t, f.wf.Report(context.Background(), ReportArgs{
		Manifest:   f.manifest,
		Artifacts:  f.artifacts,
		ReportFile: reportFile,
	}))

	assert.FileExists(t, string(reportFile))
}

func TestWorkflow_Estimate(t *testing.T) {
	f := newWorkflowFixture(t)

	require.NoError(t, f.wf.Estimate(context.Background(), EstimateArgs{Manifest: f.manifest}))

	require.Len(t, f.ui.estimates, 1)
	estimate := f.ui.estimates[0]
	assert.Equal(t, 3, estimate.Series)
	assert.Equal(t, 2, estimate.Subjects)
	assert.Equal(t, 2, estimate.Sessions)
	assert.Equal(t, 1, estimate.Malformed)
	assert.InDelta(t, 15+13+114, estimate.TotalMB, 1e-9)
}
