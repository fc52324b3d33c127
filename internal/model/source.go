// Package model defines the data structures for mapping QC manifest series to
// their expected BIDS layout.
package model

// Path represents a file system path.
type Path string

// Bucket is the BIDS datatype directory a series is filed under.
type Bucket string

const (
	// BucketAnat holds structural (T1w/T2w) images.
	BucketAnat Bucket = "anat"
	// BucketDWI holds diffusion images and their gradient tables.
	BucketDWI Bucket = "dwi"
	// BucketFmap holds field maps.
	BucketFmap Bucket = "fmap"
	// BucketFunc holds task and resting-state BOLD images.
	BucketFunc Bucket = "func"
)

// AllBuckets returns every modality bucket in directory order.
func AllBuckets() []Bucket {
	return []Bucket{BucketAnat, BucketDWI, BucketFmap, BucketFunc}
}

// SeriesID is an ftq_series_id as it appears in the QC manifest. It is kept
// verbatim so substring matching such as "_ABCD-T1_" keeps working on it.
type SeriesID string

// ParsedSeries is a series identifier split into its four fields.
type ParsedSeries struct {
	Subject    string
	Session    string
	SeriesType string
	Timestamp  string
	ID         SeriesID
}

// SubjectDir returns the BIDS subject directory name, e.g. "sub-NDARINV0001".
func (p ParsedSeries) SubjectDir() string {
	return "sub-" + p.Subject
}

// SessionDir returns the BIDS session directory name, e.g. "ses-baselineYear1Arm1".
func (p ParsedSeries) SessionDir() string {
	return "ses-" + p.Session
}

// FilePrefix is the leading "sub-{subject}_ses-{session}" part shared by every
// file generated for the series.
func (p ParsedSeries) FilePrefix() string {
	return p.SubjectDir() + "_" + p.SessionDir()
}
