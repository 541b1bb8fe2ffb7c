// Package testutil provides hand-rolled mocks for the pipeline stage
// interfaces consumed by the batch orchestrator.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"video-transcriber/internal/app/model"
)

// MockExtractor fabricates audio streams without running ffmpeg and records
// every release so tests can assert temp cleanup.
type MockExtractor struct {
	mu sync.Mutex

	// ExtractErr, when set for a base name, fails extraction of that file.
	ExtractErr map[string]error
	// RetainErr fails every Retain call.
	RetainErr error

	Extracted []string
	Released  []string
	Retained  []string
}

func NewMockExtractor() *MockExtractor {
	return &MockExtractor{ExtractErr: map[string]error{}}
}

func (m *MockExtractor) Extract(_ context.Context, file model.MediaFile) (*model.AudioStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ExtractErr[file.Base]; err != nil {
		return nil, err
	}
	path := filepath.Join("/tmp/mock", file.Base+".wav")
	m.Extracted = append(m.Extracted, path)
	return &model.AudioStream{Path: path, SampleRate: 16000, Source: file}, nil
}

func (m *MockExtractor) Release(stream *model.AudioStream) {
	if stream == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Released = append(m.Released, stream.Path)
}

func (m *MockExtractor) Retain(stream *model.AudioStream, outputDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RetainErr != nil {
		return m.RetainErr
	}
	m.Retained = append(m.Retained, filepath.Join(outputDir, stream.Source.Base+".wav"))
	return nil
}

// MockRecognizer returns canned segments, or an error for selected files.
type MockRecognizer struct {
	mu sync.Mutex

	Segments      []model.Segment
	TranscribeErr map[string]error
	Calls         []string
	// OnTranscribe, when set, runs inside each call (used to trigger
	// cancellation mid-batch).
	OnTranscribe func(base string)
}

func NewMockRecognizer(segments ...model.Segment) *MockRecognizer {
	return &MockRecognizer{Segments: segments, TranscribeErr: map[string]error{}}
}

func (m *MockRecognizer) Transcribe(_ context.Context, stream *model.AudioStream, languageHint string) (*model.TranscriptionResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, stream.Source.Base)
	callback := m.OnTranscribe
	err := m.TranscribeErr[stream.Source.Base]
	m.mu.Unlock()

	if callback != nil {
		callback(stream.Source.Base)
	}
	if err != nil {
		return nil, err
	}

	language := languageHint
	if language == "" {
		language = "en"
	}
	return &model.TranscriptionResult{
		Media:    stream.Source,
		Segments: m.Segments,
		Language: language,
		Model:    m.ModelID(),
	}, nil
}

func (m *MockRecognizer) ModelID() string {
	return "ggml-mock"
}

// MockWriter records written results instead of touching the filesystem.
type MockWriter struct {
	mu sync.Mutex

	Dir      string
	WriteErr map[string]error
	Written  []*model.TranscriptionResult
}

func NewMockWriter(dir string) *MockWriter {
	return &MockWriter{Dir: dir, WriteErr: map[string]error{}}
}

func (m *MockWriter) Write(result *model.TranscriptionResult) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.WriteErr[result.Media.Base]; err != nil {
		return "", "", err
	}
	m.Written = append(m.Written, result)
	base := filepath.Join(m.Dir, result.Media.Base)
	return base + ".txt", base + ".srt", nil
}

func (m *MockWriter) OutputDir() string {
	return m.Dir
}

// MediaFiles builds MediaFiles for the given base names, all .mp4.
func MediaFiles(bases ...string) []model.MediaFile {
	files := make([]model.MediaFile, len(bases))
	for i, base := range bases {
		files[i] = model.NewMediaFile(fmt.Sprintf("/videos/%s.mp4", base))
	}
	return files
}
