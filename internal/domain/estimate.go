package domain

import (
	"sort"
	"strings"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// seriesSizesMB is the typical converted size of one series, keyed by the
// distinguishing token of its series-type.
var seriesSizesMB = map[string]float64{
	"MID":    227,
	"nBack":  208,
	"SST":    240,
	"rsfMRI": 150,
	"T1":     15,
	"T2":     13,
	"AP":     0.640,
	"PA":     0.640,
	"DTI":    114,
}

// EstimateManifest counts the subjects and sessions of ids and estimates the
// disk space their conversion needs.
func EstimateManifest(ids []string) m.Estimate {
	parsed, errs := ParseIdentifiers(ids)

	estimate := m.Estimate{Series: len(parsed), Malformed: len(errs)}

	subjects := make(map[string]struct{})
	sessions := make(map[[2]string]struct{})

	for _, s := range parsed {
		subjects[s.Subject] = struct{}{}
		sessions[[2]string{s.Subject, s.Session}] = struct{}{}

		size, ok := seriesSizeMB(s.SeriesType)
		if !ok {
			estimate.Unsized++
			continue
		}

		estimate.TotalMB += size
	}

	estimate.Subjects = len(subjects)
	estimate.Sessions = len(sessions)
	estimate.PerLabel = countSessionLabels(sessions)

	return estimate
}

// seriesSizeMB looks a series-type up by its second "-" token (e.g. "T1" in
// "ABCD-T1-NORM"), then by its last token (the phase-encoding direction of a
// field map).
func seriesSizeMB(seriesType string) (float64, bool) {
	tokens := strings.Split(seriesType, "-")
	if len(tokens) < 2 {
		return 0, false
	}

	if size, ok := seriesSizesMB[tokens[1]]; ok {
		return size, true
	}

	size, ok := seriesSizesMB[tokens[len(tokens)-1]]

	return size, ok
}

func countSessionLabels(sessions map[[2]string]struct{}) []m.SessionCount {
	counts := make(map[string]int)
	for key := range sessions {
		counts[key[1]]++
	}

	out := make([]m.SessionCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, m.SessionCount{Label: label, Count: count})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}

		return out[i].Label < out[j].Label
	})

	return out
}
