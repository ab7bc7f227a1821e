package types

import "time"

// JobStatus is the lifecycle state of a classification worker job.
type JobStatus string

const (
	JobRunning   JobStatus = "RUNNING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed    JobStatus = "FAILED"
)

// WorkerJob is a point-in-time view of one classification invocation.
type WorkerJob struct {
	ID         string    `json:"id"`
	Directory  string    `json:"directory"`
	Status     JobStatus `json:"status"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
	ExitCode   int       `json:"exit_code"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// Finished reports whether the job has left the RUNNING state.
func (j WorkerJob) Finished() bool {
	return j.Status != JobRunning
}

// Duration returns the elapsed run time, up to now for running jobs.
func (j WorkerJob) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}
