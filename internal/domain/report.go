package domain

import "time"

// Report summarises a single crawl
type Report struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	RootPath       string
	OutputPath     string
	Variant        Variant
	ProjectsFound  int
	ProjectsFailed int
	Maps           int
	Records        int
	LayersSkipped  int
}

// ProjectsProcessed returns the number of projects that were opened and read
func (r *Report) ProjectsProcessed() int {
	return r.ProjectsFound - r.ProjectsFailed
}

// HasFailures returns true if any project or layer was skipped
func (r *Report) HasFailures() bool {
	return r.ProjectsFailed > 0 || r.LayersSkipped > 0
}

// Elapsed returns the wall time of the run
func (r *Report) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
