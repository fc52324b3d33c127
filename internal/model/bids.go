package model

import "strings"

// BIDSName is a generated filename broken into its entities.
type BIDSName struct {
	Subject string // "sub-..."
	Session string // "ses-..."
	Task    string // "task-..." or ""
	Run     string // "run-..." or ""
	Rec     string // "rec-..." or ""
	Suffix  string // "T1w", "dwi", "bold", ...
	Stem    string // filename without extension
}

// ParseBIDSName splits a filename such as
// "sub-A_ses-B_task-MID_run-01_bold.nii.gz" into its entities.
func ParseBIDSName(filename string) BIDSName {
	stem := filename
	if i := strings.Index(stem, "."); i >= 0 {
		stem = stem[:i]
	}

	name := BIDSName{Stem: stem}

	parts := strings.Split(stem, "_")
	for i, part := range parts {
		if i == len(parts)-1 && !strings.Contains(part, "-") {
			name.Suffix = part
			continue
		}

		switch {
		case strings.HasPrefix(part, "sub-"):
			name.Subject = part
		case strings.HasPrefix(part, "ses-"):
			name.Session = part
		case strings.HasPrefix(part, "task-"):
			name.Task = part
		case strings.HasPrefix(part, "run-"):
			name.Run = part
		case strings.HasPrefix(part, "rec-"):
			name.Rec = part
		}
	}

	return name
}
