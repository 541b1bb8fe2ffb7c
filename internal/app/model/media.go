package model

import (
	"path/filepath"
	"strings"
)

// MediaFile is one discovered input video. It is created by the locator and
// never mutated afterwards; downstream stages only read it.
type MediaFile struct {
	// Path is the absolute path to the video file.
	Path string
	// Ext is the lowercased extension including the dot, e.g. ".mp4".
	Ext string
	// Base is the file name without its extension, used to name outputs.
	Base string
}

// NewMediaFile derives Ext and Base from path.
func NewMediaFile(path string) MediaFile {
	ext := strings.ToLower(filepath.Ext(path))
	return MediaFile{
		Path: path,
		Ext:  ext,
		Base: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
}

// AudioStream is the normalized mono PCM file extracted from one MediaFile.
// It lives in the batch temp directory and must be released exactly once,
// unless ownership is transferred to the output directory via Retain.
type AudioStream struct {
	Path       string
	SampleRate int
	Source     MediaFile
}
