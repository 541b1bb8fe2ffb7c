package batch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "video-transcriber/internal/app/errors"
	"video-transcriber/internal/app/export"
	"video-transcriber/internal/app/model"
	"video-transcriber/internal/app/testutil"
)

type fixture struct {
	extractor  *testutil.MockExtractor
	recognizer *testutil.MockRecognizer
	writer     *testutil.MockWriter
}

func newFixture() *fixture {
	return &fixture{
		extractor:  testutil.NewMockExtractor(),
		recognizer: testutil.NewMockRecognizer(model.Segment{Start: 0, End: 1.5, Text: "hello"}),
		writer:     testutil.NewMockWriter("/out"),
	}
}

func (f *fixture) orchestrator(opts Options) *Orchestrator {
	return NewOrchestrator(f.extractor, f.recognizer, f.writer, opts, zap.NewNop())
}

func TestRunAllSucceed(t *testing.T) {
	f := newFixture()
	o := f.orchestrator(Options{})
	files := testutil.MediaFiles("a", "b", "c")

	report := o.Run(context.Background(), files)

	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.Skipped)
	assert.True(t, report.Clean())
	assert.Equal(t, StateCompleted, o.State())

	// Recognition order matches discovery order.
	assert.Equal(t, []string{"a", "b", "c"}, f.recognizer.Calls)
	// Every temp stream was released.
	assert.ElementsMatch(t, f.extractor.Extracted, f.extractor.Released)
}

func TestRunIsolatesPerFileFailures(t *testing.T) {
	f := newFixture()
	f.extractor.ExtractErr["b"] = apperrors.New(apperrors.ExtractionFailed, "corrupt container")
	o := f.orchestrator(Options{})
	files := testutil.MediaFiles("a", "b", "c", "d", "e")

	report := o.Run(context.Background(), files)

	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "b", report.Failures[0].Media.Base)
	assert.Equal(t, apperrors.ExtractionFailed, report.Failures[0].Kind)

	// The failing file never reached recognition; the rest did.
	assert.Equal(t, []string{"a", "c", "d", "e"}, f.recognizer.Calls)
}

func TestRunRecordsInferenceAndWriteFailures(t *testing.T) {
	f := newFixture()
	f.recognizer.TranscribeErr["b"] = apperrors.New(apperrors.InferenceFailed, "model choked")
	f.writer.WriteErr["c"] = apperrors.New(apperrors.OutputWriteFailed, "disk full")
	o := f.orchestrator(Options{})

	report := o.Run(context.Background(), testutil.MediaFiles("a", "b", "c"))

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	kinds := []apperrors.Kind{report.Failures[0].Kind, report.Failures[1].Kind}
	assert.Equal(t, []apperrors.Kind{apperrors.InferenceFailed, apperrors.OutputWriteFailed}, kinds)

	// Temp audio was released for failed files too.
	assert.ElementsMatch(t, f.extractor.Extracted, f.extractor.Released)
}

func TestRunKeepAudioRetainsInsteadOfReleasing(t *testing.T) {
	f := newFixture()
	o := f.orchestrator(Options{KeepAudio: true})

	report := o.Run(context.Background(), testutil.MediaFiles("a"))

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, []string{"/out/a.wav"}, f.extractor.Retained)
	assert.Empty(t, f.extractor.Released)
}

func TestRunKeepAudioFallsBackToReleaseOnRetainError(t *testing.T) {
	f := newFixture()
	f.extractor.RetainErr = assert.AnError
	o := f.orchestrator(Options{KeepAudio: true})

	report := o.Run(context.Background(), testutil.MediaFiles("a"))

	// Retain failure does not fail the file, but the temp WAV is released.
	assert.Equal(t, 1, report.Succeeded)
	assert.Len(t, f.extractor.Released, 1)
}

func TestRunForcedLanguagePassedThrough(t *testing.T) {
	f := newFixture()
	o := f.orchestrator(Options{Language: "de"})

	o.Run(context.Background(), testutil.MediaFiles("a"))

	require.Len(t, f.writer.Written, 1)
	assert.Equal(t, "de", f.writer.Written[0].Language)
}

func TestRunCancellationSkipsRemainingFiles(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	// Cancel while the second file is being recognized; it still completes,
	// the rest are skipped at the file boundary.
	f.recognizer.OnTranscribe = func(base string) {
		if base == "b" {
			cancel()
		}
	}
	o := f.orchestrator(Options{})

	report := o.Run(ctx, testutil.MediaFiles("a", "b", "c", "d"))

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 4, report.Total())
	assert.False(t, report.Clean())

	// No temp audio outlives the batch.
	assert.ElementsMatch(t, f.extractor.Extracted, f.extractor.Released)
}

func TestRunPipelinedMatchesSequentialOutcome(t *testing.T) {
	f := newFixture()
	f.extractor.ExtractErr["c"] = apperrors.New(apperrors.ExtractionFailed, "corrupt")
	o := f.orchestrator(Options{PipelineAhead: true})
	files := testutil.MediaFiles("a", "b", "c", "d")

	report := o.Run(context.Background(), files)

	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, []string{"a", "b", "d"}, f.recognizer.Calls)
	assert.ElementsMatch(t, f.extractor.Extracted, f.extractor.Released)
}

func TestRunPipelinedCancellationReleasesPrefetchedAudio(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.recognizer.OnTranscribe = func(base string) {
		if base == "a" {
			cancel()
		}
	}
	o := f.orchestrator(Options{PipelineAhead: true})

	report := o.Run(ctx, testutil.MediaFiles("a", "b", "c"))

	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Skipped)
	assert.ElementsMatch(t, f.extractor.Extracted, f.extractor.Released)
}

func TestRunEmptyBatch(t *testing.T) {
	f := newFixture()
	o := f.orchestrator(Options{})

	report := o.Run(context.Background(), nil)

	assert.Equal(t, 0, report.Total())
	assert.True(t, report.Clean())
	assert.Equal(t, StateCompleted, o.State())
}

func TestRunWritesOutputPairsOnDisk(t *testing.T) {
	f := newFixture()
	f.extractor.ExtractErr["c"] = apperrors.New(apperrors.ExtractionFailed, "unreadable")

	outDir := t.TempDir()
	writer, err := export.NewWriter(outDir, zap.NewNop())
	require.NoError(t, err)

	o := NewOrchestrator(f.extractor, f.recognizer, writer, Options{}, zap.NewNop())
	report := o.Run(context.Background(), testutil.MediaFiles("a", "b", "c", "d", "e"))

	assert.Equal(t, 4, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	for _, base := range []string{"a", "b", "d", "e"} {
		assert.FileExists(t, filepath.Join(outDir, base+".txt"))
		assert.FileExists(t, filepath.Join(outDir, base+".srt"))
	}
	assert.NoFileExists(t, filepath.Join(outDir, "c.txt"))
	assert.NoFileExists(t, filepath.Join(outDir, "c.srt"))
}

func TestReportSummary(t *testing.T) {
	report := &Report{}
	report.recordSuccess()
	report.recordFailure(model.NewMediaFile("/videos/bad.mp4"),
		apperrors.New(apperrors.ExtractionFailed, "ffmpeg exited with status 1"))
	report.recordSkipped(1)

	summary := report.Summary()
	assert.Contains(t, summary, "processed 3 file(s): 1 succeeded, 1 failed, 1 skipped")
	assert.Contains(t, summary, "bad.mp4")
	assert.Contains(t, summary, "extraction_failed")
	assert.Contains(t, summary, "ffmpeg exited with status 1")
}
