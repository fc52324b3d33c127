package domain

import (
	"strings"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

const notApplicable = "n/a"

// reportExcludedTypes are dropped from QC reports; field maps are not
// converted into their own series.
var reportExcludedTypes = []string{"Diffusion-FM", "fMRI-FM"}

// BuildQCReport joins manifest rows with the mapping on ftq_series_id. Rows
// without a mapping keep empty layout columns; mapping entries without a row
// are appended after the manifest rows with empty QC columns. Field-map series
// are dropped.
func BuildQCReport(rows []m.ManifestRow, mapping m.Mapping) []m.QCReportRow {
	var out []m.QCReportRow

	seen := make(map[m.SeriesID]struct{}, len(rows))

	for _, row := range rows {
		id := m.SeriesID(row.Record.SeriesID)
		seen[id] = struct{}{}

		if isFieldMap(id) {
			continue
		}

		report := layoutColumns(mapping[id])
		fillQCColumns(&report, row.Record)
		out = append(out, report)
	}

	for _, id := range mapping.IDs() {
		if _, ok := seen[id]; ok || isFieldMap(id) {
			continue
		}

		report := layoutColumns(mapping[id])
		report.SeriesID = string(id)
		out = append(out, report)
	}

	return out
}

func layoutColumns(files m.ExpectedFileSet) m.QCReportRow {
	if len(files) == 0 {
		return m.QCReportRow{}
	}

	name := m.ParseBIDSName(files[0])

	row := m.QCReportRow{
		ParticipantID: name.Subject,
		SessionID:     name.Session,
		Modality:      name.Suffix,
		Task:          name.Task,
		Run:           name.Run,
		FilePrefix:    name.Stem,
	}

	if row.Task == "" {
		row.Task = notApplicable
	}

	if row.Run == "" {
		row.Run = notApplicable
	}

	return row
}

func fillQCColumns(row *m.QCReportRow, record m.QCRecord) {
	row.ABCDCompliant = record.ABCDCompliant
	row.Complete = record.Complete
	row.Quality = record.Quality
	row.Recalled = record.Recalled
	row.RecallReason = record.RecallReason
	row.Usable = record.Usable
	row.Notes = record.Notes
	row.SeriesID = record.SeriesID
	row.FileSource = record.FileSource
}

func isFieldMap(id m.SeriesID) bool {
	for _, t := range reportExcludedTypes {
		if strings.Contains(string(id), t) {
			return true
		}
	}

	return false
}
