package domain

import (
	"log/slog"
	"path/filepath"
	"sort"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// FileChecker reports whether a regular file exists at path.
type FileChecker interface {
	IsFile(path m.Path) bool
}

// Resolver derives the expected BIDS layout of parsed series and checks it
// against a rawdata directory.
type Resolver struct {
	table m.NamingTable
	files FileChecker
}

// NewResolver creates a Resolver using the given naming table.
func NewResolver(table m.NamingTable, files FileChecker) *Resolver {
	return &Resolver{table: table, files: files}
}

// Map parses ids and resolves the valid ones under root.
func (r *Resolver) Map(ids []string, root m.Path) m.Layout {
	parsed, errs := ParseIdentifiers(ids)

	layout := r.Resolve(parsed, root)
	layout.Errors = errs

	return layout
}

// Resolve groups series by subject, session and series-type, assigns runs in
// timestamp order and checks every expected file under root. Subjects,
// sessions and series-types are visited in sorted order so repeated runs
// produce identical output.
func (r *Resolver) Resolve(series []m.ParsedSeries, root m.Path) m.Layout {
	layout := m.Layout{
		Tree:    m.DirectoryTree{},
		Mapping: m.Mapping{},
	}

	groups := groupSeries(series)

	for _, subject := range sortedKeys(groups) {
		sessions := groups[subject]

		for _, session := range sortedKeys(sessions) {
			types := sessions[session]

			for _, seriesType := range sortedKeys(types) {
				group := types[seriesType]

				tmpl, ok := r.table.Lookup(seriesType)
				if !ok {
					for _, s := range group {
						layout.Unknown = append(layout.Unknown, s.ID)
					}

					slog.Debug("skipping unknown series-type", "type", seriesType, "count", len(group))

					continue
				}

				r.resolveGroup(&layout, tmpl, group, root)
			}
		}
	}

	return layout
}

func (r *Resolver) resolveGroup(layout *m.Layout, tmpl m.SeriesTemplate, group []m.ParsedSeries, root m.Path) {
	sort.SliceStable(group, func(i, j int) bool {
		return group[i].Timestamp < group[j].Timestamp
	})

	multiRun := len(group) > 1

	for i, s := range group {
		files := tmpl.Filenames(s, i+1, multiRun)

		layout.Mapping[s.ID] = files
		layout.Tree.Add(s.SubjectDir(), s.SessionDir(), tmpl.Bucket, files...)

		dir := filepath.Join(string(root), s.SubjectDir(), s.SessionDir(), string(tmpl.Bucket))
		presence := m.Presence{ID: s.ID, Bucket: tmpl.Bucket, Done: true}

		for _, f := range files {
			if r.files.IsFile(m.Path(filepath.Join(dir, f))) {
				continue
			}

			presence.Done = false
			presence.Missing++
			layout.Presence.Missing = append(layout.Presence.Missing, f)
		}

		layout.Presence.Series = append(layout.Presence.Series, presence)
	}
}

func groupSeries(series []m.ParsedSeries) map[string]map[string]map[string][]m.ParsedSeries {
	groups := make(map[string]map[string]map[string][]m.ParsedSeries)

	for _, s := range series {
		sessions, ok := groups[s.Subject]
		if !ok {
			sessions = make(map[string]map[string][]m.ParsedSeries)
			groups[s.Subject] = sessions
		}

		types, ok := sessions[s.Session]
		if !ok {
			types = make(map[string][]m.ParsedSeries)
			sessions[s.Session] = types
		}

		types[s.SeriesType] = append(types[s.SeriesType], s)
	}

	return groups
}

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
