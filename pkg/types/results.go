package types

// ImageView is the shape of an image handed to the presentation layer.
type ImageView struct {
	Name string   `json:"name"`
	Path string   `json:"path"`
	URL  string   `json:"url"`
	Tags []string `json:"tags"`
}

// ImagesResult is returned by the get-images operation.
type ImagesResult struct {
	Success   bool        `json:"success"`
	Directory string      `json:"directory,omitempty"`
	Images    []ImageView `json:"images"`
	Error     string      `json:"error,omitempty"`
	Details   string      `json:"details,omitempty"`
}

// ProcessResult is returned by the process-directory operation.
type ProcessResult struct {
	Success  bool   `json:"success"`
	JobID    string `json:"job_id,omitempty"`
	Output   string `json:"output"`
	Details  string `json:"details"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// RemoveOutcome describes what remove-tags did to one file.
type RemoveOutcome string

const (
	RemoveRemoved RemoveOutcome = "removed"
	RemoveNone    RemoveOutcome = "none"
	RemoveError   RemoveOutcome = "error"
)

// RemoveResult is the per-file result of removing tags.
type RemoveResult struct {
	Path    string        `json:"path"`
	Outcome RemoveOutcome `json:"outcome"`
	Tags    []string      `json:"tags,omitempty"`
	Error   string        `json:"error,omitempty"`
}
