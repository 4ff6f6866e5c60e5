package pipeline

import "time"

// Stats accumulates the outcome of one batch run for the end-of-run summary.
type Stats struct {
	Candidates int // files the scan queued for classification
	Converted  int
	Skipped    int
	Failed     int
	Stale      int // stale artifacts the scan encountered

	BytesSaved int64 // original minus final sizes, successful entries only
	Elapsed    time.Duration
}
