// Package audio turns input videos into the normalized WAV streams the
// recognizer expects, using the external ffmpeg toolchain.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "video-transcriber/internal/app/errors"
	"video-transcriber/internal/app/model"
)

// SampleRate is the rate whisper models are trained on.
const SampleRate = 16000

const ffmpegBinary = "ffmpeg"

// CheckToolchain verifies ffmpeg is resolvable. Called once at batch setup;
// a missing toolchain would fail every file identically, so it is fatal.
func CheckToolchain() error {
	if _, err := exec.LookPath(ffmpegBinary); err != nil {
		return apperrors.Wrap(err, apperrors.ToolchainMissing, "ffmpeg not available")
	}
	return nil
}

// Extractor demuxes one video at a time into mono 16 kHz PCM WAV files
// inside a batch-scoped temp directory. Output names embed a uuid so a
// pipelined extraction never collides with the file being recognized.
type Extractor struct {
	tempDir string
	logger  *zap.Logger
}

// NewExtractor creates the batch temp directory and the extractor owning it.
func NewExtractor(logger *zap.Logger) (*Extractor, error) {
	tempDir, err := os.MkdirTemp("", "video-transcriber-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	return &Extractor{tempDir: tempDir, logger: logger}, nil
}

// TempDir returns the batch-scoped temp directory.
func (e *Extractor) TempDir() string {
	return e.tempDir
}

// Close removes the temp directory and anything left inside it.
func (e *Extractor) Close() error {
	return os.RemoveAll(e.tempDir)
}

// Extract converts file into a normalized AudioStream. The stream must be
// released with Release, or handed to Retain, on every exit path.
func (e *Extractor) Extract(ctx context.Context, file model.MediaFile) (*model.AudioStream, error) {
	outPath := filepath.Join(e.tempDir, fmt.Sprintf("%s-%s.wav", file.Base, uuid.NewString()))

	// -vn drops the video stream; pcm_s16le mono at 16 kHz is what the
	// model was trained on, regardless of the input container/codec.
	args := []string{
		"-y",
		"-i", file.Path,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(SampleRate),
		"-acodec", "pcm_s16le",
		outPath,
	}

	cmd := exec.CommandContext(ctx, ffmpegBinary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.logger.Debug("extracting audio", zap.String("file", file.Path), zap.String("wav", outPath))

	if err := cmd.Run(); err != nil {
		// ffmpeg may leave a partial output behind on failure.
		os.Remove(outPath)
		return nil, apperrors.Wrapf(err, apperrors.ExtractionFailed,
			"ffmpeg failed for %s: %s", file.Path, tail(stderr.String(), 300))
	}

	return &model.AudioStream{
		Path:       outPath,
		SampleRate: SampleRate,
		Source:     file,
	}, nil
}

// Release deletes the stream's temp file. Safe to call on a nil stream.
func (e *Extractor) Release(stream *model.AudioStream) {
	if stream == nil {
		return
	}
	if err := os.Remove(stream.Path); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("failed to remove temp audio", zap.String("path", stream.Path), zap.Error(err))
	}
}

// Retain transfers ownership of the stream's WAV into outputDir as
// <base>.wav instead of deleting it.
func (e *Extractor) Retain(stream *model.AudioStream, outputDir string) error {
	dest := filepath.Join(outputDir, stream.Source.Base+".wav")
	if err := os.Rename(stream.Path, dest); err != nil {
		// Rename fails across devices; fall back to copy+remove.
		if copyErr := copyFile(stream.Path, dest); copyErr != nil {
			return fmt.Errorf("retain audio %s: %w", stream.Path, copyErr)
		}
		os.Remove(stream.Path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// tail truncates s to its last n bytes, keeping ffmpeg's error summary
// without its full banner.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
