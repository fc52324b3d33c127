package model

import "time"

// SeriesIDColumn is the manifest column holding the series identifier.
const SeriesIDColumn = "ftq_series_id"

// QCRecord is one row of an abcd_fastqc01 manifest. Columns not listed here
// are carried only in the raw line.
type QCRecord struct {
	SubjectKey    string `csv:"subjectkey"`
	SrcSubjectID  string `csv:"src_subject_id"`
	InterviewAge  string `csv:"interview_age"`
	Sex           string `csv:"sex"`
	Visit         string `csv:"visit"`
	FileSource    string `csv:"file_source"`
	SeriesID      string `csv:"ftq_series_id"`
	ABCDCompliant string `csv:"abcd_compliant"`
	Complete      string `csv:"ftq_complete"`
	Quality       string `csv:"ftq_quality"`
	Recalled      string `csv:"ftq_recalled"`
	RecallReason  string `csv:"ftq_recall_reason"`
	Usable        string `csv:"ftq_usable"`
	Notes         string `csv:"ftq_notes"`
}

// ManifestRow pairs a decoded record with its raw line.
type ManifestRow struct {
	Record QCRecord
	Line   string
}

// Manifest is a parsed QC manifest. Header and Description are the first two
// raw lines of the file; NDA manifests carry a human readable description of
// every column on the second line.
type Manifest struct {
	Path        Path
	Header      string
	Description string
	Rows        []ManifestRow
}

// Active returns the rows that have not been recalled.
func (mf *Manifest) Active() []ManifestRow {
	rows := make([]ManifestRow, 0, len(mf.Rows))
	for _, row := range mf.Rows {
		if row.Record.Recalled == "1" {
			continue
		}

		rows = append(rows, row)
	}

	return rows
}

// SeriesIDs returns the identifier column of rows, in order.
func SeriesIDs(rows []ManifestRow) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Record.SeriesID)
	}

	return ids
}

// QCReportRow is one line of the per-series QC report.
type QCReportRow struct {
	ParticipantID string `csv:"participant_id"`
	SessionID     string `csv:"session_id"`
	Modality      string `csv:"modality"`
	Task          string `csv:"task"`
	Run           string `csv:"run"`
	FilePrefix    string `csv:"file_prefix"`
	ABCDCompliant string `csv:"abcd_compliant"`
	Complete      string `csv:"ftq_complete"`
	Quality       string `csv:"ftq_quality"`
	Recalled      string `csv:"ftq_recalled"`
	RecallReason  string `csv:"ftq_recall_reason"`
	Usable        string `csv:"ftq_usable"`
	Notes         string `csv:"ftq_notes"`
	SeriesID      string `csv:"ftq_series_id"`
	FileSource    string `csv:"file_source"`
}

// RunInfo is the provenance stored next to the artifacts of a mapping run.
type RunInfo struct {
	ID        string    `yaml:"id"`
	CreatedAt time.Time `yaml:"created_at"`
	Rawdata   Path      `yaml:"rawdata"`
	Manifest  Path      `yaml:"manifest"`
}
