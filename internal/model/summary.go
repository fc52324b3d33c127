package model

// ConversionPlan describes what has to happen before a conversion run.
type ConversionPlan struct {
	// RemoveDirs are existing session directories holding incomplete series.
	RemoveDirs []Path
	// PendingRows are manifest rows whose session has not been converted yet.
	PendingRows int
	// Subjects are the "sub-" labels of the pending rows.
	Subjects []string
}

// SessionCount is the number of sessions sharing one session label.
type SessionCount struct {
	Label string
	Count int
}

// Estimate summarises the size of a manifest.
type Estimate struct {
	Series    int
	Subjects  int
	Sessions  int
	PerLabel  []SessionCount
	TotalMB   float64
	Unsized   int
	Malformed int
}

// SubsetSummary reports the outcome of a subset run.
type SubsetSummary struct {
	Types     []string
	Selected  int
	QCFile    Path
	OutputDir Path
	Linked    int
	Skipped   int
}
