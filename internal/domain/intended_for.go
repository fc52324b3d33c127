package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// ErrInputDirRequired is returned when a filter has to read files from the
// input tree but no input directory was given.
var ErrInputDirRequired = errors.New("input directory required")

// SidecarReader reads the JSON sidecars of a converted tree.
type SidecarReader interface {
	ReadFile(path m.Path) ([]byte, error)
}

type fieldMapSidecar struct {
	IntendedFor any `json:"IntendedFor"`
}

// FilterIntendedFor keeps the selected field-map series whose JSON sidecar
// under inputDir lists at least one IntendedFor target. Series filed outside
// the fmap bucket, and series without a template, are kept unchanged.
func FilterIntendedFor(mapping m.Mapping, selected []m.SeriesID, table m.NamingTable, inputDir m.Path, files SidecarReader) ([]m.SeriesID, error) {
	kept := make([]m.SeriesID, 0, len(selected))

	for _, id := range selected {
		series, ok := ParseIdentifier(string(id))
		if !ok {
			kept = append(kept, id)
			continue
		}

		tmpl, ok := table.Lookup(series.SeriesType)
		if !ok || tmpl.Bucket != m.BucketFmap {
			kept = append(kept, id)
			continue
		}

		dir := filepath.Join(string(inputDir), series.SubjectDir(), series.SessionDir(), string(m.BucketFmap))

		intended, err := sidecarsIntendFor(dir, mapping[id], files)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}

		if !intended {
			slog.Debug("dropping field map without IntendedFor", "series", id)
			continue
		}

		kept = append(kept, id)
	}

	return kept, nil
}

func sidecarsIntendFor(dir string, files m.ExpectedFileSet, reader SidecarReader) (bool, error) {
	for _, name := range files {
		if !strings.HasSuffix(name, ".json") {
			continue
		}

		path := m.Path(filepath.Join(dir, name))

		data, err := reader.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return false, fmt.Errorf("read sidecar: %w", err)
		}

		var sidecar fieldMapSidecar
		if err := json.Unmarshal(data, &sidecar); err != nil {
			return false, fmt.Errorf("decode %s: %w", path, err)
		}

		if hasTargets(sidecar.IntendedFor) {
			return true, nil
		}
	}

	return false, nil
}

// hasTargets accepts both forms BIDS allows: a list of paths or a single path.
func hasTargets(value any) bool {
	switch v := value.(type) {
	case []any:
		return len(v) > 0
	case string:
		return v != ""
	default:
		return false
	}
}
