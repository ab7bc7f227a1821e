package analysis

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	serr "autotag/internal/errors"
	log "autotag/internal/log"
	"autotag/pkg/types"
)

// ScanDirectory lists the regular image files directly inside dir, ordered
// by name. Tags are left empty for the resolution chain to fill in.
func (e *Engine) ScanDirectory(dir string) ([]types.ImageRecord, error) {
	abs, err := ResolveDirectory(dir)
	if err != nil {
		return nil, err
	}
	logger := log.LogWithFields(log.F("directory", abs))

	// os.ReadDir returns entries sorted by filename.
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, serr.NewFileError("cannot list directory", abs, serr.PermissionDenied, err)
	}

	records := make([]types.ImageRecord, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !e.matcher.Match(strings.ToLower(name)) || !hasStem(name) {
			continue
		}
		path := filepath.Join(abs, name)

		fi, ok := regularFile(path, entry)
		if !ok {
			continue
		}

		rec := types.ImageRecord{
			Name:      name,
			Path:      path,
			Extension: strings.ToLower(filepath.Ext(name)),
			Size:      fi.Size(),
			Tags:      []string{},
			TagSource: types.TagSourceNone,
		}
		if !e.config.Discovery.SkipContentType {
			if mt, err := mimetype.DetectFile(path); err == nil {
				rec.ContentType = mt.String()
			}
		}
		records = append(records, rec)
	}

	logger.Debugf("Discovered %d images out of %d entries", len(records), len(entries))
	return records, nil
}

// ResolveDirectory returns the absolute, cleaned form of dir after checking
// that it exists and is a directory.
func ResolveDirectory(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", serr.NewFileError("invalid directory path", dir, serr.InvalidPath, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsPermission(err) {
			return "", serr.NewFileError("cannot access directory", abs, serr.PermissionDenied, err)
		}
		return "", serr.NewFileError("directory not found", abs, serr.DirectoryNotFound, err)
	}
	if !info.IsDir() {
		return "", serr.NewFileError("not a directory", abs, serr.DirectoryNotFound, nil)
	}
	return abs, nil
}

// regularFile resolves symlinks and reports whether path ends at a regular
// file. Loops and dangling links fail to stat and are excluded.
func regularFile(path string, entry os.DirEntry) (os.FileInfo, bool) {
	if entry.IsDir() {
		return nil, false
	}
	var (
		fi  os.FileInfo
		err error
	)
	if entry.Type()&os.ModeSymlink != 0 {
		fi, err = os.Stat(path)
	} else {
		fi, err = entry.Info()
	}
	if err != nil || !fi.Mode().IsRegular() {
		return nil, false
	}
	return fi, true
}

// hasStem reports whether name has something before its extension, so a
// file named just ".jpg" has no image extension.
func hasStem(name string) bool {
	return strings.Contains(strings.TrimPrefix(name, "."), ".")
}
