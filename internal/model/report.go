package model

import "sort"

// ExpectedFileSet lists the files one series should produce, image first.
type ExpectedFileSet []string

// Mapping is the series identifier to expected files mapping consumed by
// subsetting and reporting.
type Mapping map[SeriesID]ExpectedFileSet

// IDs returns the mapping keys in sorted order.
func (mp Mapping) IDs() []SeriesID {
	ids := make([]SeriesID, 0, len(mp))
	for id := range mp {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// DirectoryTree is the expected layout: subject dir -> session dir -> bucket -> files.
type DirectoryTree map[string]map[string]map[Bucket][]string

// Add records files under subject/session/bucket, creating nodes as needed.
func (t DirectoryTree) Add(subject, session string, bucket Bucket, files ...string) {
	sessions, ok := t[subject]
	if !ok {
		sessions = make(map[string]map[Bucket][]string)
		t[subject] = sessions
	}

	buckets, ok := sessions[session]
	if !ok {
		buckets = make(map[Bucket][]string)
		sessions[session] = buckets
	}

	buckets[bucket] = append(buckets[bucket], files...)
}

// Presence records whether every expected file of one series was found.
type Presence struct {
	ID      SeriesID `yaml:"ftq"`
	Bucket  Bucket   `yaml:"bucket"`
	Done    bool     `yaml:"done"`
	Missing int      `yaml:"missing,omitempty"`
}

// PresenceReport is the per-series completeness flag plus every missing file.
type PresenceReport struct {
	Series  []Presence `yaml:"series"`
	Missing []string   `yaml:"missing"`
}

// NotDone returns the identifiers of series with at least one missing file.
func (r PresenceReport) NotDone() []SeriesID {
	var ids []SeriesID

	for _, p := range r.Series {
		if !p.Done {
			ids = append(ids, p.ID)
		}
	}

	return ids
}

// Layout is the full result of one mapping run.
type Layout struct {
	Tree     DirectoryTree
	Mapping  Mapping
	Presence PresenceReport
	// Errors holds identifiers that did not split into exactly four fields.
	Errors []string
	// Unknown holds well-formed identifiers whose series-type has no template.
	Unknown []SeriesID
}
