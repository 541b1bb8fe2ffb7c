// Package export serializes transcription results into the plain-text and
// SRT subtitle artifacts.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "video-transcriber/internal/app/errors"
	"video-transcriber/internal/app/model"
)

// Writer materializes one .txt and one .srt per result, named after the
// source file's base name.
type Writer struct {
	outputDir string
	logger    *zap.Logger
}

// NewWriter creates the output directory if needed.
func NewWriter(outputDir string, logger *zap.Logger) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.OutputWriteFailed, "create output directory %s", outputDir)
	}
	return &Writer{outputDir: outputDir, logger: logger}, nil
}

// OutputDir returns the directory outputs are written into.
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// Write persists both artifacts for result. Both are first written under
// temporary names and then renamed into place, so a crash mid-write never
// leaves a partial transcript that looks complete; reruns overwrite prior
// outputs.
func (w *Writer) Write(result *model.TranscriptionResult) (txtPath, srtPath string, err error) {
	txtPath = filepath.Join(w.outputDir, result.Media.Base+".txt")
	srtPath = filepath.Join(w.outputDir, result.Media.Base+".srt")

	txtTmp := txtPath + ".tmp"
	srtTmp := srtPath + ".tmp"

	if err := os.WriteFile(txtTmp, []byte(TranscriptContent(result.Segments)), 0644); err != nil {
		return "", "", apperrors.Wrapf(err, apperrors.OutputWriteFailed, "write %s", txtTmp)
	}
	if err := os.WriteFile(srtTmp, []byte(SRTContent(result.Segments)), 0644); err != nil {
		os.Remove(txtTmp)
		return "", "", apperrors.Wrapf(err, apperrors.OutputWriteFailed, "write %s", srtTmp)
	}

	if err := os.Rename(txtTmp, txtPath); err != nil {
		os.Remove(txtTmp)
		os.Remove(srtTmp)
		return "", "", apperrors.Wrapf(err, apperrors.OutputWriteFailed, "rename %s", txtPath)
	}
	if err := os.Rename(srtTmp, srtPath); err != nil {
		os.Remove(srtTmp)
		os.Remove(txtPath)
		return "", "", apperrors.Wrapf(err, apperrors.OutputWriteFailed, "rename %s", srtPath)
	}

	w.logger.Debug("outputs written",
		zap.String("txt", txtPath),
		zap.String("srt", srtPath),
		zap.Int("segments", len(result.Segments)))
	return txtPath, srtPath, nil
}

// TranscriptContent joins segment texts, one per line, with a trailing
// newline when there is any text at all.
func TranscriptContent(segments []model.Segment) string {
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, segment := range segments {
		b.WriteString(segment.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// SRTContent renders segments as numbered subtitle cues separated by blank
// lines, indices starting at 1.
func SRTContent(segments []model.Segment) string {
	var b strings.Builder
	for i, segment := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(segment.Start), FormatTimestamp(segment.End))
		b.WriteString(segment.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatTimestamp converts seconds to the SRT time form HH:MM:SS,mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3600000
	millis %= 3600000
	minutes := millis / 60000
	millis %= 60000
	secs := millis / 1000
	millis %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
