package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

// Artifact file names written for every mapping run.
const (
	OutputsFile = "ftq_map_outputs.yaml"
	MappingFile = "ftq_map_mapping.yaml"
	ErrorsFile  = "ftq_map_errors.yaml"
	UnknownFile = "ftq_map_unknown.yaml"
	HaveFile    = "ftq_map_have.yaml"
	MissingFile = "ftq_map_missing.yaml"
	RunFile     = "ftq_map_run.yaml"

	lockFile = ".ftqmap.lock"
)

// ErrArtifactsLocked is returned when another process is writing the same
// artifact directory.
var ErrArtifactsLocked = errors.New("artifact directory is locked by another run")

// ArtifactStore persists the outputs of a mapping run.
type ArtifactStore interface {
	Lock(dir m.Path) (unlock func(), err error)
	SaveLayout(dir m.Path, layout m.Layout, info m.RunInfo) error
	LoadMapping(dir m.Path) (m.Mapping, error)
	LoadLayout(dir m.Path) (m.Layout, m.RunInfo, error)
}

// YAMLArtifactStore stores each artifact as a YAML document.
type YAMLArtifactStore struct{}

// NewArtifactStore creates a YAMLArtifactStore.
func NewArtifactStore() *YAMLArtifactStore {
	return &YAMLArtifactStore{}
}

// Lock creates dir and takes its exclusive lock. Every file a run writes into
// dir is written between Lock and the returned unlock.
func (s *YAMLArtifactStore) Lock(dir m.Path) (func(), error) {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}

	lock := flock.New(filepath.Join(string(dir), lockFile))

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock artifact dir: %w", err)
	}

	if !locked {
		return nil, fmt.Errorf("%s: %w", dir, ErrArtifactsLocked)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release artifact lock", "path", lock.Path(), "error", err)
		}
	}, nil
}

// SaveLayout writes every artifact of layout into dir. The caller holds the
// lock of dir.
func (s *YAMLArtifactStore) SaveLayout(dir m.Path, layout m.Layout, info m.RunInfo) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	documents := []struct {
		name  string
		value any
	}{
		{OutputsFile, layout.Tree},
		{MappingFile, layout.Mapping},
		{ErrorsFile, nonNil(layout.Errors)},
		{UnknownFile, nonNil(layout.Unknown)},
		{HaveFile, nonNil(layout.Presence.Series)},
		{MissingFile, nonNil(layout.Presence.Missing)},
		{RunFile, info},
	}

	for _, doc := range documents {
		if err := writeYAML(filepath.Join(string(dir), doc.name), doc.value); err != nil {
			return err
		}
	}

	slog.Info("saved artifacts", "dir", dir, "run", info.ID, "series", len(layout.Mapping))

	return nil
}

// LoadMapping reads the mapping artifact from dir.
func (s *YAMLArtifactStore) LoadMapping(dir m.Path) (m.Mapping, error) {
	mapping := m.Mapping{}
	if err := readYAML(filepath.Join(string(dir), MappingFile), &mapping); err != nil {
		return nil, err
	}

	return mapping, nil
}

// LoadLayout reads every artifact from dir.
func (s *YAMLArtifactStore) LoadLayout(dir m.Path) (m.Layout, m.RunInfo, error) {
	var (
		layout = m.Layout{Tree: m.DirectoryTree{}, Mapping: m.Mapping{}}
		info   m.RunInfo
	)

	targets := []struct {
		name  string
		value any
	}{
		{OutputsFile, &layout.Tree},
		{MappingFile, &layout.Mapping},
		{ErrorsFile, &layout.Errors},
		{UnknownFile, &layout.Unknown},
		{HaveFile, &layout.Presence.Series},
		{MissingFile, &layout.Presence.Missing},
		{RunFile, &info},
	}

	for _, target := range targets {
		if err := readYAML(filepath.Join(string(dir), target.name), target.value); err != nil {
			return m.Layout{}, m.RunInfo{}, err
		}
	}

	return layout, info, nil
}

func writeYAML(path string, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}

	return nil
}

func readYAML(path string, out any) error {
	// #nosec G304 - path is built from the artifact directory and fixed names
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
