// Package errors provides standardized error handling for autotag.
// It defines the error taxonomy shared by discovery, tag resolution and the
// classification worker, plus helpers for creating, wrapping and checking them.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// Directory and file error kinds
	DirectoryNotFound
	PermissionDenied
	InvalidPath
	FileOperationFailed
	// Credential and worker error kinds
	CredentialMissing
	ScriptNotFound
	JobAlreadyRunning
	WorkerProcessFailure
	// Per-file tag resolution
	ExtractionFailure
	// Config error kinds
	InvalidConfig
	ConfigNotFound
)

var kindNames = map[ErrorKind]string{
	Unknown:              "Unknown",
	DirectoryNotFound:    "DirectoryNotFound",
	PermissionDenied:     "PermissionDenied",
	InvalidPath:          "InvalidPath",
	FileOperationFailed:  "FileOperationFailed",
	CredentialMissing:    "CredentialMissing",
	ScriptNotFound:       "ScriptNotFound",
	JobAlreadyRunning:    "JobAlreadyRunning",
	WorkerProcessFailure: "WorkerProcessFailure",
	ExtractionFailure:    "ExtractionFailure",
	InvalidConfig:        "InvalidConfig",
	ConfigNotFound:       "ConfigNotFound",
}

// String returns the taxonomy name of the kind
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Common error constants for frequently occurring errors
var (
	ErrDirectoryNotFound = NewFileError("directory not found", "", DirectoryNotFound, nil)
	ErrPermissionDenied  = NewFileError("permission denied", "", PermissionDenied, nil)
	ErrCredentialMissing = NewConfigError("no API credential configured", "", CredentialMissing, nil)
	ErrInvalidConfig     = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// Message returns the message without the wrapped cause
func (e *ApplicationError) Message() string {
	return e.msg
}

// Is matches another application error of the same kind, so the
// Err* sentinels work with errors.Is.
func (e *ApplicationError) Is(target error) bool {
	var k kinded
	if !errors.As(target, &k) {
		return false
	}
	return k.Kind() != Unknown && k.Kind() == e.kind
}

type kinded interface {
	Kind() ErrorKind
}

// FileError represents errors related to a file or directory path
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration and credentials
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// WorkerError is a failed classification worker run. It keeps the exit
// code and the full captured stderr.
type WorkerError struct {
	ApplicationError
	exitCode int
	stderr   string
}

// NewWorkerError creates a worker failure for a process that exited with exitCode.
func NewWorkerError(exitCode int, stderr string) *WorkerError {
	return &WorkerError{
		ApplicationError: ApplicationError{
			msg:  fmt.Sprintf("Process exited with code %d", exitCode),
			kind: WorkerProcessFailure,
		},
		exitCode: exitCode,
		stderr:   stderr,
	}
}

// NewSpawnError creates a worker failure for a process that never started.
func NewSpawnError(err error, stderr string) *WorkerError {
	return &WorkerError{
		ApplicationError: ApplicationError{
			msg:  "failed to start worker",
			err:  err,
			kind: WorkerProcessFailure,
		},
		exitCode: -1,
		stderr:   stderr,
	}
}

// ExitCode returns the worker exit code, -1 when it never ran
func (e *WorkerError) ExitCode() int {
	return e.exitCode
}

// Stderr returns everything the worker wrote to standard error
func (e *WorkerError) Stderr() string {
	return e.stderr
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// NewKind creates a new error of the given kind
func NewKind(kind ErrorKind, msg string, err error) error {
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: kind,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: KindOf(err),
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: KindOf(err),
	}
}

// KindOf returns the kind of the first application error in err's chain
func KindOf(err error) ErrorKind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return Unknown
}

// IsKind checks if err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsDirectoryNotFound checks if the error is a directory not found error
func IsDirectoryNotFound(err error) bool {
	return IsKind(err, DirectoryNotFound)
}

// IsPermissionDenied checks if the error is a permission error
func IsPermissionDenied(err error) bool {
	return IsKind(err, PermissionDenied)
}

// IsCredentialMissing checks if the error is a missing credential error
func IsCredentialMissing(err error) bool {
	return IsKind(err, CredentialMissing)
}

// IsScriptNotFound checks if the error is a missing worker script error
func IsScriptNotFound(err error) bool {
	return IsKind(err, ScriptNotFound)
}

// IsJobAlreadyRunning checks if the error rejects a duplicate worker job
func IsJobAlreadyRunning(err error) bool {
	return IsKind(err, JobAlreadyRunning)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// AsWorkerError extracts a worker failure from err's chain
func AsWorkerError(err error) (*WorkerError, bool) {
	var workerErr *WorkerError
	if errors.As(err, &workerErr) {
		return workerErr, true
	}
	return nil, false
}
