// Package media discovers input video files for a batch run.
package media

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	apperrors "video-transcriber/internal/app/errors"
	"video-transcriber/internal/app/model"
)

// videoExtensions is the allow-list of supported container formats.
var videoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".webm", ".wmv", ".flv"}

// Locator resolves an input path into an ordered list of MediaFiles.
type Locator struct {
	// Recursive walks subdirectories when the input is a directory.
	Recursive bool
}

// NewLocator creates a Locator.
func NewLocator(recursive bool) *Locator {
	return &Locator{Recursive: recursive}
}

// Supported reports whether path has a supported video extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return lo.Contains(videoExtensions, ext)
}

// Locate returns the media files under inputPath in lexicographic path
// order, so repeated runs process files identically. A single file is
// returned as a one-element list; an unsupported single file is an
// UnsupportedFormat error; a missing path is NotFound.
func (l *Locator) Locate(inputPath string) ([]model.MediaFile, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.NotFound, "input path %s does not exist", inputPath)
	}

	abs, err := filepath.Abs(inputPath)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.NotFound, "resolve %s", inputPath)
	}

	if !info.IsDir() {
		if !Supported(abs) {
			return nil, apperrors.Newf(apperrors.UnsupportedFormat,
				"%s is not a supported video format (want one of %s)",
				inputPath, strings.Join(videoExtensions, ", "))
		}
		return []model.MediaFile{model.NewMediaFile(abs)}, nil
	}

	var paths []string
	if l.Recursive {
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && Supported(path) {
				paths = append(paths, path)
			}
			return nil
		})
	} else {
		var entries []fs.DirEntry
		entries, err = os.ReadDir(abs)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				path := filepath.Join(abs, entry.Name())
				if Supported(path) {
					paths = append(paths, path)
				}
			}
		}
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.NotFound, "scan directory %s", inputPath)
	}

	sort.Strings(paths)
	return lo.Map(paths, func(path string, _ int) model.MediaFile {
		return model.NewMediaFile(path)
	}), nil
}
