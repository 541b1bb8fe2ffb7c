// Package whisper wraps the whisper.cpp executable as the batch's
// speech-recognition model.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "video-transcriber/internal/app/errors"
	"video-transcriber/internal/app/model"
)

const defaultBinary = "whisper-cli"

// Recognizer runs whisper.cpp inference over extracted audio. The model
// (binary + ggml weights) is resolved once per batch; reloading per file
// would dominate runtime for the larger sizes.
type Recognizer struct {
	binaryPath string
	modelPath  string
	modelName  string
	device     string
	logger     *zap.Logger
}

// NewRecognizer resolves the binary, the model weights for the requested
// size and the compute device. All three checks happen here so a broken
// setup aborts the batch before any per-file work.
func NewRecognizer(binaryPath, modelDir, modelSize, device string, logger *zap.Logger) (*Recognizer, error) {
	if binaryPath == "" {
		resolved, err := exec.LookPath(defaultBinary)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.ModelUnavailable,
				"whisper.cpp binary %q not found; set %s or --config whisper.binary_path", defaultBinary, "WHISPER_CPP_BINARY")
		}
		binaryPath = resolved
	} else if _, err := os.Stat(binaryPath); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ModelUnavailable, "whisper.cpp binary %s", binaryPath)
	}

	if device == "cuda" {
		// Fail fast instead of letting whisper.cpp silently fall back to
		// CPU with surprising latency.
		if _, err := exec.LookPath("nvidia-smi"); err != nil {
			return nil, apperrors.Newf(apperrors.AcceleratorUnavailable,
				"cuda requested but no NVIDIA driver found")
		}
	}

	modelName := "ggml-" + modelSize
	modelPath := filepath.Join(modelDir, modelName+".bin")
	if _, err := os.Stat(modelPath); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ModelUnavailable,
			"model weights for size %q not found at %s", modelSize, modelPath)
	}

	logger.Info("model ready",
		zap.String("model", modelName),
		zap.String("device", device),
		zap.String("binary", binaryPath))

	return &Recognizer{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		modelName:  modelName,
		device:     device,
		logger:     logger,
	}, nil
}

// ModelID identifies the loaded model, e.g. "ggml-medium".
func (r *Recognizer) ModelID() string {
	return r.modelName
}

// Transcribe runs inference on one audio stream. An empty languageHint lets
// the model detect the language from a leading sample and fix it for the
// rest of the file.
func (r *Recognizer) Transcribe(ctx context.Context, stream *model.AudioStream, languageHint string) (*model.TranscriptionResult, error) {
	language := languageHint
	if language == "" {
		language = "auto"
	}

	outPrefix := strings.TrimSuffix(stream.Path, filepath.Ext(stream.Path))
	args := []string{
		"-m", r.modelPath,
		"-f", stream.Path,
		"-l", language,
		"-oj",
		"-of", outPrefix,
		"-np",
	}
	if r.device == "cpu" {
		args = append(args, "-ng")
	}

	cmd := exec.CommandContext(ctx, r.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug("running inference",
		zap.String("audio", stream.Path),
		zap.String("language", language))

	if err := cmd.Run(); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.InferenceFailed,
			"whisper.cpp failed for %s: %s", stream.Source.Path, strings.TrimSpace(stderr.String()))
	}

	jsonPath := outPrefix + ".json"
	defer os.Remove(jsonPath)

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.InferenceFailed,
			"whisper.cpp produced no output for %s", stream.Source.Path)
	}

	segments, detected, err := parseTranscription(data)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.InferenceFailed,
			"parse whisper.cpp output for %s", stream.Source.Path)
	}
	if languageHint != "" {
		detected = languageHint
	}

	return &model.TranscriptionResult{
		Media:    stream.Source,
		Segments: segments,
		Language: detected,
		Model:    r.modelName,
	}, nil
}

// transcriptionOutput mirrors the fields of whisper.cpp's -oj JSON we need.
// Offsets are milliseconds from the start of the audio.
type transcriptionOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// parseTranscription converts whisper.cpp JSON into ordered segments with
// second offsets. Blank segments are dropped; an empty transcription (silent
// audio) is valid and yields no segments.
func parseTranscription(data []byte) ([]model.Segment, string, error) {
	var out transcriptionOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, "", fmt.Errorf("unmarshal transcription: %w", err)
	}

	segments := make([]model.Segment, 0, len(out.Transcription))
	for _, entry := range out.Transcription {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		start := float64(entry.Offsets.From) / 1000.0
		end := float64(entry.Offsets.To) / 1000.0
		if end < start {
			end = start
		}
		segments = append(segments, model.Segment{Start: start, End: end, Text: text})
	}
	return segments, out.Result.Language, nil
}
