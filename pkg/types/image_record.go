package types

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// TagSource records where an image's tags came from.
type TagSource string

const (
	// TagSourceNone means no strategy produced tags.
	TagSourceNone TagSource = "NONE"
	// TagSourceOSMetadata means tags were read from the OS metadata store.
	TagSourceOSMetadata TagSource = "OS_METADATA"
	// TagSourceEmbedded means tags were read from keywords embedded in the image.
	TagSourceEmbedded TagSource = "EMBEDDED"
	// TagSourceError means resolution itself failed for this file.
	TagSourceError TagSource = "ERROR"
)

// ImageURLScheme is the scheme of the locator handed to image renderers.
const ImageURLScheme = "local-image://"

// ImageRecord is one discovered image and its resolved tags.
// Records are treated as values: a new resolution produces new records.
type ImageRecord struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Extension   string    `json:"extension"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	Tags        []string  `json:"tags"`
	TagSource   TagSource `json:"tag_source"`
}

// HasTag reports whether the record carries the exact tag.
func (r ImageRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// URL returns the directory-scoped locator for the image.
func (r ImageRecord) URL() string {
	return ImageURL(r.Path)
}

// Clone returns a copy that shares no slices with r.
func (r ImageRecord) Clone() ImageRecord {
	c := r
	c.Tags = append([]string{}, r.Tags...)
	return c
}

// View converts the record to its external shape.
func (r ImageRecord) View() ImageView {
	return ImageView{
		Name: r.Name,
		Path: r.Path,
		URL:  r.URL(),
		Tags: append([]string{}, r.Tags...),
	}
}

// ToJSON converts the record to a JSON string
func (r ImageRecord) ToJSON() string {
	jsonBytes, _ := json.Marshal(r)
	return string(jsonBytes)
}

// String returns a human-readable representation
func (r ImageRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Image: %s\n", r.Path))
	if r.ContentType != "" {
		sb.WriteString(fmt.Sprintf("Type: %s\n", r.ContentType))
	}
	sb.WriteString(fmt.Sprintf("Size: %d bytes\n", r.Size))
	sb.WriteString(fmt.Sprintf("Source: %s\n", r.TagSource))
	if len(r.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags: %s\n", strings.Join(r.Tags, ", ")))
	}
	return sb.String()
}

// ImageURL builds the local-image locator for an absolute path. The path is
// escaped as a single URI component, so separators are encoded too.
func ImageURL(path string) string {
	return ImageURLScheme + strings.ReplaceAll(url.QueryEscape(path), "+", "%20")
}

// ImagePathFromURL reverses ImageURL.
func ImagePathFromURL(locator string) (string, error) {
	if !strings.HasPrefix(locator, ImageURLScheme) {
		return "", fmt.Errorf("not a %s locator: %s", ImageURLScheme, locator)
	}
	return url.PathUnescape(strings.TrimPrefix(locator, ImageURLScheme))
}
