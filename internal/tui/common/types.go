package common

import "autotag/pkg/types"

type Mode int

const (
	Normal Mode = iota
	Search
	Picker
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	CurrentDir() string
	Images() []types.ImageRecord
	Total() int
	Cursor() int
	TopTags() []types.TagCount
	IsTagSelected(tag string) bool
	SearchView() string
	SearchText() string
	Status() Status
	PickerView() string
	HelpView() string
	ShowHelp() bool
	Mode() Mode
	ListHeight() int
}

// StatusKind selects how the status line is rendered.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusBusy
	StatusSuccess
	StatusError
)

// Status is the line shown under the image list.
type Status struct {
	Kind    StatusKind
	Text    string
	Spinner string
}
