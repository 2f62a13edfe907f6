// Package ingest holds types shared by training-history importers.
package ingest

// Result holds the outcome of a history import.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	SessionsImported int `json:"sessions_imported"`
	// SessionsSkipped counts sessions already present, matched by start time.
	SessionsSkipped int `json:"sessions_skipped"`

	SetsImported    int `json:"sets_imported"`
	RecordsDetected int `json:"records_detected"`

	// UnmatchedExercises lists export names with no catalog exercise. Their
	// sets are not imported.
	UnmatchedExercises []string `json:"unmatched_exercises,omitempty"`

	DryRun bool `json:"dry_run,omitempty"`
}
