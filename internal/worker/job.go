package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	serr "autotag/internal/errors"
	log "autotag/internal/log"
	"autotag/pkg/types"
)

// Job is the handle of one worker run. It is safe for concurrent use; the
// captured output grows while the process runs and can be read at any time.
type Job struct {
	id      string
	dir     string
	started time.Time
	cancel  context.CancelFunc
	done    chan struct{}

	mu       sync.Mutex
	stdout   bytes.Buffer
	stderr   bytes.Buffer
	status   types.JobStatus
	exitCode int
	err      error
	finished time.Time
}

func newJob(dir string, cancel context.CancelFunc) *Job {
	return &Job{
		id:      uuid.NewString(),
		dir:     dir,
		started: time.Now(),
		cancel:  cancel,
		done:    make(chan struct{}),
		status:  types.JobRunning,
	}
}

// ID returns the job identifier.
func (j *Job) ID() string { return j.id }

// Directory returns the directory being classified.
func (j *Job) Directory() string { return j.dir }

// Done is closed when the worker has exited.
func (j *Job) Done() <-chan struct{} { return j.done }

// Cancel stops the worker process if it is still running.
func (j *Job) Cancel() {
	if j.cancel != nil {
		j.cancel()
	}
}

// Wait blocks until the job finishes or ctx is done. The job keeps running
// when ctx ends first.
func (j *Job) Wait(ctx context.Context) (types.WorkerJob, error) {
	select {
	case <-j.done:
		return j.Snapshot(), j.Err()
	case <-ctx.Done():
		return j.Snapshot(), ctx.Err()
	}
}

// Err returns the failure of a finished job, nil while running or on success.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Snapshot returns the current state of the job.
func (j *Job) Snapshot() types.WorkerJob {
	j.mu.Lock()
	defer j.mu.Unlock()
	wj := types.WorkerJob{
		ID:         j.id,
		Directory:  j.dir,
		Status:     j.status,
		Stdout:     j.stdout.String(),
		Stderr:     j.stderr.String(),
		ExitCode:   j.exitCode,
		StartedAt:  j.started,
		FinishedAt: j.finished,
	}
	if j.err != nil {
		wj.Error = failureMessage(j.err)
	}
	return wj
}

// Result maps the job to the process-directory outcome.
func (j *Job) Result() types.ProcessResult {
	s := j.Snapshot()
	return types.ProcessResult{
		Success:  s.Status == types.JobSucceeded,
		JobID:    s.ID,
		Output:   s.Stdout,
		Details:  s.Stderr,
		Error:    s.Error,
		ExitCode: s.ExitCode,
	}
}

// finish records the process outcome. The caller closes done afterwards.
func (j *Job) finish(code int, launchErr error) {
	j.mu.Lock()
	j.exitCode = code
	j.finished = time.Now()
	stderr := j.stderr.String()

	switch {
	case launchErr == nil && code == 0:
		j.status = types.JobSucceeded
	case launchErr == nil:
		j.status = types.JobFailed
		j.err = serr.NewWorkerError(code, stderr)
	case errors.Is(launchErr, context.DeadlineExceeded):
		j.status = types.JobFailed
		j.err = serr.NewKind(serr.WorkerProcessFailure, "worker timed out", launchErr)
	case errors.Is(launchErr, context.Canceled):
		j.status = types.JobFailed
		j.err = serr.NewKind(serr.WorkerProcessFailure, "worker cancelled", launchErr)
	default:
		j.status = types.JobFailed
		j.exitCode = -1
		j.err = serr.NewSpawnError(launchErr, stderr)
	}
	j.mu.Unlock()
}

// failureMessage is the caller-facing error text. Nonzero exits keep the
// bare "Process exited with code N" form, stderr travels separately.
func failureMessage(err error) string {
	if we, ok := serr.AsWorkerError(err); ok && we.ExitCode() >= 0 {
		return we.Message()
	}
	return log.Redact(err.Error())
}

// streamWriter captures one output stream of a job and logs it line by line
// at debug level.
type streamWriter struct {
	job     *Job
	buf     *bytes.Buffer
	logger  log.Logging
	pending []byte
}

func (j *Job) writers(logger log.Logging) (stdout, stderr *streamWriter) {
	stdout = &streamWriter{job: j, buf: &j.stdout, logger: logger.With(log.F("stream", "stdout"))}
	stderr = &streamWriter{job: j, buf: &j.stderr, logger: logger.With(log.F("stream", "stderr"))}
	return stdout, stderr
}

func (w *streamWriter) Write(p []byte) (int, error) {
	w.job.mu.Lock()
	w.buf.Write(p)
	w.pending = append(w.pending, p...)
	var lines []string
	for {
		i := bytes.IndexByte(w.pending, '\n')
		if i < 0 {
			break
		}
		if line := strings.TrimRight(string(w.pending[:i]), "\r"); line != "" {
			lines = append(lines, line)
		}
		w.pending = w.pending[i+1:]
	}
	w.job.mu.Unlock()

	for _, line := range lines {
		w.logger.Debug(line)
	}
	return len(p), nil
}

// flush logs a trailing partial line.
func (w *streamWriter) flush() {
	w.job.mu.Lock()
	line := strings.TrimSpace(string(w.pending))
	w.pending = nil
	w.job.mu.Unlock()
	if line != "" {
		w.logger.Debug(line)
	}
}
