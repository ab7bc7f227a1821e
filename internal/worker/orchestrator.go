// Package worker supervises the external classification process that
// writes tags for a directory.
package worker

import (
	"context"
	"sync"
	"time"

	"autotag/internal/analysis"
	"autotag/internal/config"
	serr "autotag/internal/errors"
	log "autotag/internal/log"
	"autotag/pkg/types"
)

// CredentialSource resolves the API credential passed to the worker.
type CredentialSource interface {
	Credential() (string, error)
}

// CredentialSourceFunc adapts a function to CredentialSource.
type CredentialSourceFunc func() (string, error)

// Credential calls f.
func (f CredentialSourceFunc) Credential() (string, error) { return f() }

// Orchestrator starts classification jobs and allows at most one running
// job per directory.
type Orchestrator struct {
	config   *config.Config
	launcher Launcher
	creds    CredentialSource

	mu      sync.Mutex
	running map[string]*Job
	last    map[string]*Job
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLauncher replaces the child process launcher.
func WithLauncher(l Launcher) Option {
	return func(o *Orchestrator) { o.launcher = l }
}

// WithCredentialSource replaces the configured credential lookup.
func WithCredentialSource(c CredentialSource) Option {
	return func(o *Orchestrator) { o.creds = c }
}

// New creates an orchestrator for cfg.
func New(cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = config.New()
	}
	o := &Orchestrator{
		config:  cfg,
		running: make(map[string]*Job),
		last:    make(map[string]*Job),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.launcher == nil {
		o.launcher = NewCommandLauncher(cfg)
	}
	if o.creds == nil {
		o.creds = CredentialSourceFunc(cfg.ResolveCredential)
	}
	return o
}

// Start launches the worker for dir and returns immediately. Preconditions
// are checked in order: credential, worker script, directory, running job.
// Nothing is spawned when any of them fails.
func (o *Orchestrator) Start(ctx context.Context, dir string) (*Job, error) {
	cred, err := o.creds.Credential()
	if err != nil || cred == "" {
		if !serr.IsCredentialMissing(err) {
			err = serr.NewConfigError("no API credential configured", o.config.Credential.EnvVar, serr.CredentialMissing, err)
		}
		return nil, err
	}
	log.RegisterSecret(cred)

	if err := o.launcher.Check(); err != nil {
		if serr.KindOf(err) == serr.Unknown {
			err = serr.NewKind(serr.ScriptNotFound, "worker unavailable", err)
		}
		return nil, err
	}

	abs, err := analysis.ResolveDirectory(dir)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	if _, busy := o.running[abs]; busy {
		o.mu.Unlock()
		return nil, serr.NewFileError("a classification job is already running for this directory", abs, serr.JobAlreadyRunning, nil)
	}

	// The job outlives the caller's context; only Cancel or the configured
	// timeout stop it.
	jobCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc
	if t := o.config.Worker.Timeout; t > 0 {
		jobCtx, cancel = context.WithTimeout(jobCtx, t)
	} else {
		jobCtx, cancel = context.WithCancel(jobCtx)
	}
	job := newJob(abs, cancel)
	o.running[abs] = job
	o.mu.Unlock()

	inv := Invocation{
		Directory:   abs,
		Credential:  cred,
		DetailLevel: o.config.Worker.DetailLevel,
	}
	go o.run(jobCtx, job, inv)
	return job, nil
}

func (o *Orchestrator) run(ctx context.Context, job *Job, inv Invocation) {
	logger := log.LogWithContext(ctx).With(log.F("job", job.ID()), log.F("directory", job.Directory()))
	logger.Infof("Starting classification worker (detail=%s)", inv.DetailLevel)

	stdout, stderr := job.writers(logger)
	code, err := o.launcher.Launch(ctx, inv, stdout, stderr)
	stdout.flush()
	stderr.flush()
	job.cancel()
	job.finish(code, err)

	o.mu.Lock()
	delete(o.running, job.Directory())
	o.last[job.Directory()] = job
	o.mu.Unlock()
	close(job.done)

	snap := job.Snapshot()
	if jobErr := job.Err(); jobErr != nil {
		logger.WithError(jobErr).Warnf("Classification worker failed after %s", snap.Duration().Round(time.Millisecond))
		return
	}
	logger.Infof("Classification worker finished in %s", snap.Duration().Round(time.Millisecond))
}

// Process runs the worker for dir and waits for it. Every outcome, including
// precondition failures, is reported in the result rather than as an error.
func (o *Orchestrator) Process(ctx context.Context, dir string) types.ProcessResult {
	job, err := o.Start(ctx, dir)
	if err != nil {
		log.LogWithError(err).Warn("Classification not started")
		return startFailure(err)
	}
	return waitResult(ctx, job)
}

// waitResult waits for job and maps it to a result. When ctx ends first the
// result carries the context error, unless the job finished meanwhile.
func waitResult(ctx context.Context, job *Job) types.ProcessResult {
	if _, err := job.Wait(ctx); err != nil && job.Err() == nil {
		select {
		case <-job.Done():
			// finished while the caller gave up
		default:
			// The caller stopped waiting; the job continues in the background.
			res := job.Result()
			res.Error = err.Error()
			return res
		}
	}
	return job.Result()
}

func startFailure(err error) types.ProcessResult {
	res := types.ProcessResult{ExitCode: -1, Error: serr.KindOf(err).String()}
	var appErr interface{ Message() string }
	if serr.As(err, &appErr) {
		res.Details = log.Redact(appErr.Message())
	} else {
		res.Details = log.Redact(err.Error())
	}
	return res
}

// Running returns the in-flight job for dir, if any.
func (o *Orchestrator) Running(dir string) (*Job, bool) {
	abs, err := analysis.ResolveDirectory(dir)
	if err != nil {
		return nil, false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.running[abs]
	return job, ok
}

// Last returns the most recently finished job for dir.
func (o *Orchestrator) Last(dir string) (*Job, bool) {
	abs, err := analysis.ResolveDirectory(dir)
	if err != nil {
		return nil, false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	job, ok := o.last[abs]
	return job, ok
}

// Jobs returns a snapshot of every running job.
func (o *Orchestrator) Jobs() []types.WorkerJob {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]types.WorkerJob, 0, len(o.running))
	for _, job := range o.running {
		out = append(out, job.Snapshot())
	}
	return out
}
