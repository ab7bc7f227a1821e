package analysis

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/xattr"
)

// CommandRunner runs an external metadata tool and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// AttributeReader reads and removes extended file attributes.
type AttributeReader interface {
	Get(path, name string) ([]byte, error)
	Remove(path, name string) error
}

type execRunner struct {
	timeout time.Duration
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stdout.Bytes(), nil
}

func isDefaultRunner(r CommandRunner) bool {
	_, ok := r.(execRunner)
	return ok
}

type xattrReader struct{}

func (xattrReader) Get(path, name string) ([]byte, error) {
	return xattr.Get(path, name)
}

func (xattrReader) Remove(path, name string) error {
	return xattr.Remove(path, name)
}
