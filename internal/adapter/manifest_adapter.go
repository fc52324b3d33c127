package adapter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/csimplestring/go-csv/detector"
	"github.com/gocarina/gocsv"

	m "ftqmap.dev/pkg/ftqmap/internal/model"
)

var (
	// ErrEmptyManifest is returned when a manifest has no header line.
	ErrEmptyManifest = errors.New("manifest is empty")
	// ErrMissingColumn is returned when a manifest has no ftq_series_id column.
	ErrMissingColumn = errors.New("manifest is missing the " + m.SeriesIDColumn + " column")
)

// ManifestAdapter reads and writes abcd_fastqc01 style QC files.
type ManifestAdapter interface {
	// ReadManifest loads a manifest. The first line is the column header and
	// the second line the column description row.
	ReadManifest(path m.Path) (*m.Manifest, error)

	// WriteManifest writes header, description and the raw lines of rows.
	WriteManifest(path m.Path, header, description string, rows []m.ManifestRow) error

	// WriteReport writes a tab separated QC report.
	WriteReport(path m.Path, rows []m.QCReportRow) error
}

// LocalManifestAdapter implements ManifestAdapter on local files.
type LocalManifestAdapter struct{}

// NewLocalManifestAdapter constructs a LocalManifestAdapter.
func NewLocalManifestAdapter() *LocalManifestAdapter {
	return &LocalManifestAdapter{}
}

// ReadManifest loads and decodes the manifest at path.
func (a *LocalManifestAdapter) ReadManifest(path m.Path) (*m.Manifest, error) {
	content, err := os.ReadFile(string(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	lines := splitLines(string(content))
	if len(lines) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyManifest)
	}

	delimiter := determineDelimiter(strings.NewReader(string(content)))

	header, err := newManifestReader(strings.NewReader(lines[0]), delimiter).Read()
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}

	if !slices.Contains(header, m.SeriesIDColumn) {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingColumn)
	}

	manifest := &m.Manifest{Path: path, Header: lines[0]}

	var body []string

	if len(lines) > 1 {
		manifest.Description = lines[1]
		body = lines[2:]
	}

	body = slices.DeleteFunc(body, func(line string) bool {
		return strings.TrimSpace(line) == ""
	})

	if len(body) == 0 {
		slog.Warn("manifest has no rows", "path", path)
		return manifest, nil
	}

	records := []*m.QCRecord{}
	input := strings.Join(append([]string{lines[0]}, body...), "\n")

	if err := gocsv.UnmarshalCSV(newManifestReader(strings.NewReader(input), delimiter), &records); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if len(records) != len(body) {
		return nil, fmt.Errorf("decode manifest: %d records from %d lines (quoted line breaks are not supported)", len(records), len(body))
	}

	manifest.Rows = make([]m.ManifestRow, 0, len(records))
	for i, record := range records {
		manifest.Rows = append(manifest.Rows, m.ManifestRow{Record: *record, Line: body[i]})
	}

	slog.Debug("read manifest", "path", path, "rows", len(manifest.Rows), "delimiter", string(delimiter))

	return manifest, nil
}

// WriteManifest writes a manifest built from raw lines.
func (a *LocalManifestAdapter) WriteManifest(path m.Path, header, description string, rows []m.ManifestRow) error {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(description)
	b.WriteString("\n")

	for _, row := range rows {
		b.WriteString(row.Line)
		b.WriteString("\n")
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create manifest dir: %w", err)
	}

	if err := os.WriteFile(string(path), []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// WriteReport writes rows as a tab separated file with a header line.
func (a *LocalManifestAdapter) WriteReport(path m.Path, rows []m.QCReportRow) error {
	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	// #nosec G304 - path is the report destination chosen by the user
	f, err := os.Create(string(path))
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	writer := csv.NewWriter(f)
	writer.Comma = '\t'

	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	return f.Close()
}

// manifestDelimiters are the separators a manifest may use.
const manifestDelimiters = "\t,;|"

// determineDelimiter returns the most likely delimiter of a CSV-like input,
// defaulting to tab.
func determineDelimiter(r io.Reader) rune {
	d := detector.New()

	for _, candidate := range d.DetectDelimiter(r, '"') {
		if len(candidate) == 1 && strings.Contains(manifestDelimiters, candidate) {
			return rune(candidate[0])
		}
	}

	return '\t'
}

func newManifestReader(r io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	return reader
}

func splitLines(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
