package types

import (
	"time"
)

// DirectorySnapshot is the complete set of resolved images for one
// directory at one point in time. It is never modified after construction.
type DirectorySnapshot struct {
	directory string
	images    []ImageRecord
	takenAt   time.Time
}

// NewDirectorySnapshot copies images into a new snapshot.
func NewDirectorySnapshot(directory string, images []ImageRecord) *DirectorySnapshot {
	owned := make([]ImageRecord, len(images))
	for i, img := range images {
		owned[i] = img.Clone()
	}
	return &DirectorySnapshot{
		directory: directory,
		images:    owned,
		takenAt:   time.Now(),
	}
}

// Directory returns the snapshot's directory path.
func (s *DirectorySnapshot) Directory() string {
	if s == nil {
		return ""
	}
	return s.directory
}

// TakenAt returns when the snapshot was built.
func (s *DirectorySnapshot) TakenAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.takenAt
}

// Len returns the number of images.
func (s *DirectorySnapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.images)
}

// Images returns a copy of the snapshot's records in order.
func (s *DirectorySnapshot) Images() []ImageRecord {
	if s == nil {
		return nil
	}
	out := make([]ImageRecord, len(s.images))
	for i, img := range s.images {
		out[i] = img.Clone()
	}
	return out
}

// Each calls fn for every record in order without copying. fn must not
// retain or modify the record's tag slice.
func (s *DirectorySnapshot) Each(fn func(ImageRecord)) {
	if s == nil {
		return
	}
	for _, img := range s.images {
		fn(img)
	}
}

// Lookup finds a record by path.
func (s *DirectorySnapshot) Lookup(path string) (ImageRecord, bool) {
	if s == nil {
		return ImageRecord{}, false
	}
	for _, img := range s.images {
		if img.Path == path {
			return img.Clone(), true
		}
	}
	return ImageRecord{}, false
}
