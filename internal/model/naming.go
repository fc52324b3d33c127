package model

import (
	"fmt"
	"strings"
)

// SeriesTemplate describes how one series-type is named on disk.
//
// A generated filename has the shape
//
//	sub-{subject}_ses-{session}[_{Entity}][_run-XX]_{Suffix}{ext}
//
// with one file per entry in Extensions.
type SeriesTemplate struct {
	SeriesType string   `yaml:"type" mapstructure:"type"`
	Bucket     Bucket   `yaml:"bucket" mapstructure:"bucket"`
	Entity     string   `yaml:"entity,omitempty" mapstructure:"entity"`
	Suffix     string   `yaml:"suffix" mapstructure:"suffix"`
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
}

// Task returns the task entity (e.g. "task-MID") or "" when the template has none.
func (t SeriesTemplate) Task() string {
	if strings.HasPrefix(t.Entity, "task-") {
		return t.Entity
	}

	return ""
}

// Filenames renders the expected files for one member of an acquisition group.
// run is ignored when multiRun is false.
func (t SeriesTemplate) Filenames(series ParsedSeries, run int, multiRun bool) ExpectedFileSet {
	var b strings.Builder

	b.WriteString(series.FilePrefix())

	if t.Entity != "" {
		b.WriteString("_")
		b.WriteString(t.Entity)
	}

	if multiRun {
		b.WriteString(fmt.Sprintf("_run-%02d", run))
	}

	b.WriteString("_")
	b.WriteString(t.Suffix)

	stem := b.String()

	files := make(ExpectedFileSet, 0, len(t.Extensions))
	for _, ext := range t.Extensions {
		files = append(files, stem+ext)
	}

	return files
}

// Validate reports whether the template can produce filenames.
func (t SeriesTemplate) Validate() error {
	if t.SeriesType == "" {
		return fmt.Errorf("series template: empty type")
	}

	switch t.Bucket {
	case BucketAnat, BucketDWI, BucketFmap, BucketFunc:
	default:
		return fmt.Errorf("series template %s: unknown bucket %q", t.SeriesType, t.Bucket)
	}

	if t.Suffix == "" {
		return fmt.Errorf("series template %s: empty suffix", t.SeriesType)
	}

	if len(t.Extensions) == 0 {
		return fmt.Errorf("series template %s: no extensions", t.SeriesType)
	}

	return nil
}

// NamingTable maps series-types to templates. The zero value is an empty
// table. Tables are never modified in place; With returns a new table.
type NamingTable struct {
	order     []string
	templates map[string]SeriesTemplate
}

// NewNamingTable builds a table from templates. Later templates replace
// earlier ones with the same series-type.
func NewNamingTable(templates ...SeriesTemplate) NamingTable {
	return NamingTable{}.With(templates...)
}

// With returns a copy of the table with templates added or replaced.
func (t NamingTable) With(templates ...SeriesTemplate) NamingTable {
	next := NamingTable{
		order:     make([]string, 0, len(t.order)+len(templates)),
		templates: make(map[string]SeriesTemplate, len(t.templates)+len(templates)),
	}

	next.order = append(next.order, t.order...)
	for k, v := range t.templates {
		next.templates[k] = v
	}

	for _, tmpl := range templates {
		if _, exists := next.templates[tmpl.SeriesType]; !exists {
			next.order = append(next.order, tmpl.SeriesType)
		}

		tmpl.Extensions = append([]string(nil), tmpl.Extensions...)
		next.templates[tmpl.SeriesType] = tmpl
	}

	return next
}

// Lookup returns the template for a series-type.
func (t NamingTable) Lookup(seriesType string) (SeriesTemplate, bool) {
	tmpl, ok := t.templates[seriesType]
	if !ok {
		return SeriesTemplate{}, false
	}

	tmpl.Extensions = append([]string(nil), tmpl.Extensions...)

	return tmpl, true
}

// Templates returns the templates in insertion order.
func (t NamingTable) Templates() []SeriesTemplate {
	out := make([]SeriesTemplate, 0, len(t.order))
	for _, seriesType := range t.order {
		tmpl, _ := t.Lookup(seriesType)
		out = append(out, tmpl)
	}

	return out
}

// Len returns the number of series-types in the table.
func (t NamingTable) Len() int {
	return len(t.order)
}
