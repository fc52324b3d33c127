package domain

import (
	"strings"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

const seriesIDFields = 4

// ParseIdentifiers splits each identifier into subject, session, series-type
// and timestamp. Identifiers that do not split into exactly four fields on "_"
// are returned verbatim in errs. Field contents are not validated.
func ParseIdentifiers(ids []string) (parsed []m.ParsedSeries, errs []string) {
	for _, id := range ids {
		series, ok := ParseIdentifier(id)
		if !ok {
			errs = append(errs, id)
			continue
		}

		parsed = append(parsed, series)
	}

	return parsed, errs
}

// ParseIdentifier parses a single identifier.
func ParseIdentifier(id string) (m.ParsedSeries, bool) {
	fields := strings.Split(id, "_")
	if len(fields) != seriesIDFields {
		return m.ParsedSeries{}, false
	}

	return m.ParsedSeries{
		Subject:    fields[0],
		Session:    fields[1],
		SeriesType: fields[2],
		Timestamp:  fields[3],
		ID:         m.SeriesID(id),
	}, true
}
