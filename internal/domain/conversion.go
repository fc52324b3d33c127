package domain

import (
	"path/filepath"
	"sort"
	"strings"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// DirChecker reports whether a directory exists at path.
type DirChecker interface {
	IsDir(path m.Path) bool
}

// RemovalDirs returns the existing session directories under root that hold
// at least one incomplete series. Such sessions have to be removed and
// converted again.
func RemovalDirs(report m.PresenceReport, root m.Path, dirs DirChecker) []m.Path {
	seen := make(map[m.Path]struct{})

	for _, id := range report.NotDone() {
		series, ok := ParseIdentifier(string(id))
		if !ok {
			continue
		}

		dir := sessionDir(root, series)
		if _, dup := seen[dir]; dup {
			continue
		}

		if dirs.IsDir(dir) {
			seen[dir] = struct{}{}
		}
	}

	out := make([]m.Path, 0, len(seen))
	for dir := range seen {
		out = append(out, dir)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// PendingRows returns the rows whose identifier parses and whose session
// directory does not exist under root yet.
func PendingRows(rows []m.ManifestRow, root m.Path, dirs DirChecker) []m.ManifestRow {
	var pending []m.ManifestRow

	for _, row := range rows {
		series, ok := ParseIdentifier(row.Record.SeriesID)
		if !ok {
			continue
		}

		if dirs.IsDir(sessionDir(root, series)) {
			continue
		}

		pending = append(pending, row)
	}

	return pending
}

// SubjectList returns the sorted, unique "sub-" labels of rows. The label is
// the subjectkey with underscores removed.
func SubjectList(rows []m.ManifestRow) []string {
	seen := make(map[string]struct{})

	for _, row := range rows {
		seen["sub-"+strings.ReplaceAll(row.Record.SubjectKey, "_", "")] = struct{}{}
	}

	return sortedKeys(seen)
}

func sessionDir(root m.Path, series m.ParsedSeries) m.Path {
	return m.Path(filepath.Join(string(root), series.SubjectDir(), series.SessionDir()))
}
