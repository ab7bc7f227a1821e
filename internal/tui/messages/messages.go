// Package messages holds the tea.Msg types exchanged by the browser commands.
package messages

import (
	"autotag/internal/gallery"
	"autotag/internal/worker"
	"autotag/pkg/types"
)

// DirectoryLoadedMsg carries the result of selecting a directory.
type DirectoryLoadedMsg struct {
	Path  string
	State *gallery.State
	Error error
}

// ProcessStartedMsg is sent once the worker was launched, or refused.
type ProcessStartedMsg struct {
	Path  string
	Job   *worker.Job
	Error error
}

// ProcessDoneMsg is sent when the worker exits.
type ProcessDoneMsg struct {
	Path   string
	Result types.ProcessResult
}
