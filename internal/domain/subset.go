package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// ErrUnknownDatatype is returned for a datatype group that does not exist.
var ErrUnknownDatatype = errors.New("unknown datatype")

var fieldMapTypes = []string{"fMRI-FM", "fMRI-FM-AP", "fMRI-FM-PA"}

var diffusionFieldMapTypes = []string{"Diffusion-FM", "Diffusion-FM-AP", "Diffusion-FM-PA"}

// DefaultDatatypes returns the datatype groups a subset can be requested by,
// each expanding to series-type names without the "ABCD-" prefix.
func DefaultDatatypes() map[string][]string {
	withFieldMaps := func(types ...string) []string {
		return append(append([]string(nil), fieldMapTypes...), types...)
	}

	return map[string][]string{
		"anat":           {"T1", "T1-NORM", "T2", "T2-NORM"},
		"dwi":            append(append([]string(nil), diffusionFieldMapTypes...), "DTI"),
		"fmap":           append(append([]string(nil), diffusionFieldMapTypes...), fieldMapTypes...),
		"func":           withFieldMaps("MID-fMRI", "nBack-fMRI", "rsfMRI", "SST-fMRI"),
		"task-MID":       withFieldMaps("MID-fMRI"),
		"task-nback":     withFieldMaps("nBack-fMRI"),
		"task-rest":      withFieldMaps("rsfMRI"),
		"task-SST":       withFieldMaps("SST-fMRI"),
		"T1w-asacquired": {"T1"},
		"T2w-asacquired": {"T2"},
		"T1w-normalized": {"T1-NORM"},
		"T2w-normalized": {"T2-NORM"},
	}
}

// DatatypeNames returns the datatype group names in sorted order.
func DatatypeNames() []string {
	return sortedKeys(DefaultDatatypes())
}

// ExpandDatatypes resolves datatype groups into the sorted, unique set of
// series-type names they cover.
func ExpandDatatypes(types []string) ([]string, error) {
	groups := DefaultDatatypes()
	seen := make(map[string]struct{})

	for _, t := range types {
		members, ok := groups[t]
		if !ok {
			return nil, fmt.Errorf("%w: %q (choose from %s)", ErrUnknownDatatype, t, strings.Join(DatatypeNames(), ", "))
		}

		for _, member := range members {
			seen[member] = struct{}{}
		}
	}

	return sortedKeys(seen), nil
}

// SelectSeries returns the mapping identifiers that contain "_ABCD-{type}_"
// for one of seriesTypes and that are also listed in known.
func SelectSeries(mapping m.Mapping, seriesTypes []string, known map[m.SeriesID]struct{}) []m.SeriesID {
	var selected []m.SeriesID

	for _, id := range mapping.IDs() {
		if _, ok := known[id]; !ok {
			continue
		}

		for _, seriesType := range seriesTypes {
			if strings.Contains(string(id), "_ABCD-"+seriesType+"_") {
				selected = append(selected, id)
				break
			}
		}
	}

	return selected
}

// SubsetQCFile returns the path of the subset QC file written next to outputDir.
func SubsetQCFile(outputDir m.Path) m.Path {
	return m.Path(filepath.Clean(string(outputDir)) + ".abcd_fastqc01.txt")
}

// SubsetRows returns the manifest rows of the selected identifiers, in
// manifest order, one row per identifier.
func SubsetRows(rows []m.ManifestRow, selected []m.SeriesID, goodQCOnly bool) []m.ManifestRow {
	want := make(map[m.SeriesID]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}

	var out []m.ManifestRow

	for _, row := range rows {
		id := m.SeriesID(row.Record.SeriesID)
		if _, ok := want[id]; !ok {
			continue
		}

		if goodQCOnly && row.Record.Usable != "1" {
			continue
		}

		delete(want, id)
		out = append(out, row)
	}

	return out
}

// LinkPlan is one file to link into a subset tree.
type LinkPlan struct {
	Source m.Path
	Target m.Path
}

// PlanLinks maps every file of the selected series from inputDir to the same
// relative location under outputDir. Series whose type has no template are
// skipped.
func PlanLinks(mapping m.Mapping, selected []m.SeriesID, table m.NamingTable, inputDir, outputDir m.Path) []LinkPlan {
	var plans []LinkPlan

	for _, id := range selected {
		series, ok := ParseIdentifier(string(id))
		if !ok {
			continue
		}

		tmpl, ok := table.Lookup(series.SeriesType)
		if !ok {
			continue
		}

		rel := filepath.Join(series.SubjectDir(), series.SessionDir(), string(tmpl.Bucket))
		for _, f := range mapping[id] {
			plans = append(plans, LinkPlan{
				Source: m.Path(filepath.Join(string(inputDir), rel, f)),
				Target: m.Path(filepath.Join(string(outputDir), rel, f)),
			})
		}
	}

	sort.SliceStable(plans, func(i, j int) bool { return plans[i].Target < plans[j].Target })

	return plans
}
