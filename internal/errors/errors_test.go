package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())
	assert.Equal(t, origErr, Unwrap(wrappedErr))

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())
	assert.True(t, Is(deepWrapped, origErr))
}

func TestWrapKeepsKind(t *testing.T) {
	dirErr := NewFileError("directory not found", "/photos", DirectoryNotFound, nil)
	wrapped := Wrap(dirErr, "loading images")

	assert.Equal(t, DirectoryNotFound, KindOf(wrapped))
	assert.True(t, IsDirectoryNotFound(wrapped))
	assert.True(t, Is(wrapped, ErrDirectoryNotFound))
	assert.False(t, Is(wrapped, ErrPermissionDenied))
}

func TestFileError(t *testing.T) {
	fileErr := NewFileError("cannot list directory", "/photos", PermissionDenied, nil)
	assert.Equal(t, "cannot list directory: /photos", fileErr.Error())
	assert.Equal(t, "/photos", fileErr.Path())
	assert.Equal(t, PermissionDenied, fileErr.Kind())

	origErr := fmt.Errorf("permission denied")
	fileErr = NewFileError("cannot list directory", "/photos", PermissionDenied, origErr)
	assert.Equal(t, "cannot list directory: /photos: permission denied", fileErr.Error())
	assert.Equal(t, origErr, Unwrap(fileErr))

	assert.True(t, IsPermissionDenied(fileErr))
	assert.False(t, IsDirectoryNotFound(fileErr))
}

func TestConfigError(t *testing.T) {
	cfgErr := NewConfigError("no API credential configured", "OPENAI_API_KEY", CredentialMissing, nil)
	assert.Equal(t, "no API credential configured: OPENAI_API_KEY", cfgErr.Error())
	assert.Equal(t, "OPENAI_API_KEY", cfgErr.Param())
	assert.True(t, IsCredentialMissing(cfgErr))
	assert.True(t, errors.Is(cfgErr, ErrCredentialMissing))

	invalid := NewConfigError("invalid value", "index.top_limit", InvalidConfig, nil)
	assert.True(t, IsInvalidConfig(invalid))
	assert.False(t, IsInvalidConfig(cfgErr))
}

func TestWorkerError(t *testing.T) {
	t.Run("exit code", func(t *testing.T) {
		err := NewWorkerError(1, "rate limit exceeded")
		assert.Equal(t, "Process exited with code 1", err.Error())
		assert.Equal(t, 1, err.ExitCode())
		assert.Equal(t, "rate limit exceeded", err.Stderr())
		assert.Equal(t, WorkerProcessFailure, err.Kind())
	})

	t.Run("spawn failure", func(t *testing.T) {
		err := NewSpawnError(fmt.Errorf("exec: \"python3\": executable file not found in $PATH"), "")
		assert.Equal(t, -1, err.ExitCode())
		assert.Contains(t, err.Error(), "executable file not found")
	})

	t.Run("extract from chain", func(t *testing.T) {
		wrapped := fmt.Errorf("job 42: %w", NewWorkerError(2, "boom"))
		workerErr, ok := AsWorkerError(wrapped)
		require.True(t, ok)
		assert.Equal(t, 2, workerErr.ExitCode())

		_, ok = AsWorkerError(New("plain"))
		assert.False(t, ok)
	})
}

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{DirectoryNotFound, "DirectoryNotFound"},
		{PermissionDenied, "PermissionDenied"},
		{CredentialMissing, "CredentialMissing"},
		{ScriptNotFound, "ScriptNotFound"},
		{JobAlreadyRunning, "JobAlreadyRunning"},
		{ExtractionFailure, "ExtractionFailure"},
		{WorkerProcessFailure, "WorkerProcessFailure"},
		{ErrorKind(99), "ErrorKind(99)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Unknown, KindOf(fmt.Errorf("plain")))
	assert.Equal(t, Unknown, KindOf(nil))
	assert.False(t, IsKind(nil, Unknown))
}
