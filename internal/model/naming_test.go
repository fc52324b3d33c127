package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesTemplate_Filenames(t *testing.T) {
	series := ParsedSeries{Subject: "NDARINV01", Session: "baselineYear1Arm1"}

	tests := []struct {
		name     string
		tmpl     SeriesTemplate
		run      int
		multiRun bool
		want     ExpectedFileSet
	}{
		{
			name: "single anatomical",
			tmpl: SeriesTemplate{Suffix: "T1w", Extensions: []string{".nii.gz", ".json"}},
			run:  1,
			want: ExpectedFileSet{
				"sub-NDARINV01_ses-baselineYear1Arm1_T1w.nii.gz",
				"sub-NDARINV01_ses-baselineYear1Arm1_T1w.json",
			},
		},
		{
			name:     "repeated task",
			tmpl:     SeriesTemplate{Entity: "task-nback", Suffix: "bold", Extensions: []string{".nii.gz"}},
			run:      3,
			multiRun: true,
			want:     ExpectedFileSet{"sub-NDARINV01_ses-baselineYear1Arm1_task-nback_run-03_bold.nii.gz"},
		},
		{
			name:     "run ignored without multiRun",
			tmpl:     SeriesTemplate{Entity: "rec-normalized", Suffix: "T2w", Extensions: []string{".json"}},
			run:      2,
			multiRun: false,
			want:     ExpectedFileSet{"sub-NDARINV01_ses-baselineYear1Arm1_rec-normalized_T2w.json"},
		},
		{
			name:     "two digit run",
			tmpl:     SeriesTemplate{Suffix: "dwi", Extensions: []string{".bval"}},
			run:      12,
			multiRun: true,
			want:     ExpectedFileSet{"sub-NDARINV01_ses-baselineYear1Arm1_run-12_dwi.bval"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tmpl.Filenames(series, tt.run, tt.multiRun))
		})
	}
}

func TestSeriesTemplate_Task(t *testing.T) {
	assert.Equal(t, "task-MID", SeriesTemplate{Entity: "task-MID"}.Task())
	assert.Empty(t, SeriesTemplate{Entity: "rec-normalized"}.Task())
}

func TestSeriesTemplate_Validate(t *testing.T) {
	valid := SeriesTemplate{SeriesType: "ABCD-T1", Bucket: BucketAnat, Suffix: "T1w", Extensions: []string{".nii.gz"}}
	require.NoError(t, valid.Validate())

	noType := valid
	noType.SeriesType = ""
	assert.Error(t, noType.Validate())

	badBucket := valid
	badBucket.Bucket = "perf"
	assert.ErrorContains(t, badBucket.Validate(), "unknown bucket")

	noSuffix := valid
	noSuffix.Suffix = ""
	assert.Error(t, noSuffix.Validate())

	noExt := valid
	noExt.Extensions = nil
	assert.Error(t, noExt.Validate())
}

func TestNamingTable_WithReturnsNewTable(t *testing.T) {
	base := NewNamingTable(
		SeriesTemplate{SeriesType: "A", Suffix: "a", Extensions: []string{".x"}},
		SeriesTemplate{SeriesType: "B", Suffix: "b", Extensions: []string{".x"}},
	)

	extended := base.With(
		SeriesTemplate{SeriesType: "C", Suffix: "c", Extensions: []string{".x"}},
		SeriesTemplate{SeriesType: "A", Suffix: "a2", Extensions: []string{".y"}},
	)

	assert.Equal(t, 2, base.Len())
	assert.Equal(t, 3, extended.Len())

	a, ok := base.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "a", a.Suffix)

	a, ok = extended.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, "a2", a.Suffix)

	types := make([]string, 0, extended.Len())
	for _, tmpl := range extended.Templates() {
		types = append(types, tmpl.SeriesType)
	}

	assert.Equal(t, []string{"A", "B", "C"}, types)

	_, ok = extended.Lookup("D")
	assert.False(t, ok)
}

func TestNamingTable_ZeroValue(t *testing.T) {
	var table NamingTable

	_, ok := table.Lookup("ABCD-T1")
	assert.False(t, ok)
	assert.Zero(t, table.Len())
	assert.Empty(t, table.Templates())
}
