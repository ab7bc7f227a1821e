package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"autotag/internal/config"
	serr "autotag/internal/errors"
)

// DetailLevelEnv carries the requested detail level to the worker process.
const DetailLevelEnv = "AUTOTAG_DETAIL_LEVEL"

// Invocation is everything one worker run needs.
type Invocation struct {
	Directory   string
	Credential  string
	DetailLevel string
}

// Launcher starts the external classification worker. Launch blocks until
// the process exits and returns its exit code. A non-nil error means the
// process could not be started or was cancelled; a nonzero exit is not an
// error at this level.
type Launcher interface {
	Check() error
	Launch(ctx context.Context, inv Invocation, stdout, stderr io.Writer) (int, error)
}

// CommandLauncher runs the worker as a child process.
type CommandLauncher struct {
	Interpreter string
	Script      string
	Args        []string
	EnvVar      string
	// WaitDelay bounds how long Launch waits for output pipes after the
	// process is killed.
	WaitDelay time.Duration
}

// NewCommandLauncher builds a launcher from the worker configuration.
func NewCommandLauncher(cfg *config.Config) *CommandLauncher {
	return &CommandLauncher{
		Interpreter: cfg.Worker.Interpreter,
		Script:      config.ExpandHome(cfg.Worker.Script),
		Args:        append([]string{}, cfg.Worker.Args...),
		EnvVar:      cfg.Credential.EnvVar,
		WaitDelay:   5 * time.Second,
	}
}

// Check verifies the worker script exists. A missing interpreter is left to
// Launch, where it surfaces as a spawn failure.
func (l *CommandLauncher) Check() error {
	info, err := os.Stat(l.Script)
	if err != nil {
		return serr.NewFileError("worker script not found", l.Script, serr.ScriptNotFound, err)
	}
	if info.IsDir() {
		return serr.NewFileError("worker script is a directory", l.Script, serr.ScriptNotFound, nil)
	}
	return nil
}

// commandLine returns the program and arguments for inv. The credential is
// never part of the command line.
func (l *CommandLauncher) commandLine(inv Invocation) (string, []string) {
	args := l.Args
	if len(args) == 0 {
		args = []string{"{dir}"}
	}
	r := strings.NewReplacer("{dir}", inv.Directory, "{detail}", inv.DetailLevel)
	expanded := make([]string, 0, len(args)+1)
	for _, a := range args {
		expanded = append(expanded, r.Replace(a))
	}
	if l.Interpreter == "" {
		return l.Script, expanded
	}
	return l.Interpreter, append([]string{l.Script}, expanded...)
}

// Launch runs the worker with the credential in its environment.
func (l *CommandLauncher) Launch(ctx context.Context, inv Invocation, stdout, stderr io.Writer) (int, error) {
	name, args := l.commandLine(inv)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(),
		l.EnvVar+"="+inv.Credential,
		DetailLevelEnv+"="+inv.DetailLevel,
	)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = l.WaitDelay

	if err := cmd.Start(); err != nil {
		return -1, err
	}

	err := cmd.Wait()
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		code := -1
		if cmd.ProcessState != nil {
			code = cmd.ProcessState.ExitCode()
		}
		return code, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
