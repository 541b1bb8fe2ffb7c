// Package batch drives the locate → extract → recognize → write pipeline
// over every discovered file, isolating per-file failures so one bad input
// never aborts the run.
package batch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"video-transcriber/internal/app/model"
)

// Per-file pipeline stages. A file advances through them in order; any
// stage may instead move it to StageFailed, which short-circuits the rest
// of that file only.
type Stage string

const (
	StageDiscovered     Stage = "discovered"
	StageAudioExtracted Stage = "audio_extracted"
	StageRecognized     Stage = "recognized"
	StageWritten        Stage = "written"
	StageDone           Stage = "done"
	StageFailed         Stage = "failed"
)

// Batch-level states.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateAborted   State = "aborted"
)

// Extractor produces and owns temporary audio streams.
type Extractor interface {
	Extract(ctx context.Context, file model.MediaFile) (*model.AudioStream, error)
	Release(stream *model.AudioStream)
	Retain(stream *model.AudioStream, outputDir string) error
}

// Recognizer runs model inference over one audio stream.
type Recognizer interface {
	Transcribe(ctx context.Context, stream *model.AudioStream, languageHint string) (*model.TranscriptionResult, error)
}

// Writer persists one result's artifacts.
type Writer interface {
	Write(result *model.TranscriptionResult) (txtPath, srtPath string, err error)
	OutputDir() string
}

// Options tune one batch run.
type Options struct {
	// Language forces the transcription language; empty means auto-detect
	// per file.
	Language string
	// KeepAudio moves each extracted WAV into the output directory instead
	// of deleting it.
	KeepAudio bool
	// PipelineAhead extracts the next file's audio while the current file
	// is being recognized. Recognition itself stays strictly sequential:
	// the model instance is not reentrant and the accelerator is the
	// binding constraint.
	PipelineAhead bool
	// ShowProgress enables the progress bar.
	ShowProgress bool
}

// Orchestrator runs one batch. The recognizer it holds was loaded once at
// construction time and is reused across files.
type Orchestrator struct {
	extractor  Extractor
	recognizer Recognizer
	writer     Writer
	opts       Options
	logger     *zap.Logger
	state      State
}

// NewOrchestrator assembles a batch runner from already-validated stages.
func NewOrchestrator(extractor Extractor, recognizer Recognizer, writer Writer, opts Options, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		extractor:  extractor,
		recognizer: recognizer,
		writer:     writer,
		opts:       opts,
		logger:     logger,
		state:      StateIdle,
	}
}

// State returns the batch state.
func (o *Orchestrator) State() State {
	return o.state
}

// extraction carries one file's audio (or the extraction error) from the
// prefetch goroutine to the sequential recognition loop.
type extraction struct {
	file   model.MediaFile
	stream *model.AudioStream
	err    error
}

// Run processes files in discovery order and always returns a finalized
// report. Cancellation is observed at file boundaries; an in-flight
// inference runs to completion first.
func (o *Orchestrator) Run(ctx context.Context, files []model.MediaFile) *Report {
	o.state = StateRunning
	report := &Report{}

	progress := NewProgress(len(files), o.opts.ShowProgress, nil)
	defer progress.Wait()

	var processed int
	if o.opts.PipelineAhead {
		processed = o.runPipelined(ctx, files, report, progress)
	} else {
		processed = o.runSequential(ctx, files, report, progress)
	}
	report.recordSkipped(len(files) - processed)

	o.state = StateCompleted
	o.logger.Info("batch finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))
	return report
}

// runSequential extracts and recognizes strictly one file at a time.
func (o *Orchestrator) runSequential(ctx context.Context, files []model.MediaFile, report *Report, progress *Progress) int {
	processed := 0
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		stream, err := o.extractor.Extract(ctx, file)
		o.processOne(ctx, extraction{file: file, stream: stream, err: err}, report)
		processed++
		progress.Increment()
	}
	return processed
}

// runPipelined overlaps I/O-bound extraction of the next file with
// compute-bound inference of the current one. The channel is unbuffered so
// extraction never runs more than one file ahead; per-file unique temp
// names make the overlap collision-free.
func (o *Orchestrator) runPipelined(ctx context.Context, files []model.MediaFile, report *Report, progress *Progress) int {
	extractions := make(chan extraction)
	go func() {
		defer close(extractions)
		for _, file := range files {
			if ctx.Err() != nil {
				return
			}
			stream, err := o.extractor.Extract(ctx, file)
			select {
			case extractions <- extraction{file: file, stream: stream, err: err}:
			case <-ctx.Done():
				o.extractor.Release(stream)
				return
			}
		}
	}()

	processed := 0
	for ext := range extractions {
		if ctx.Err() != nil {
			// Cancelled between files: release the prefetched audio and
			// count this and everything after it as skipped.
			o.extractor.Release(ext.stream)
			break
		}
		o.processOne(ctx, ext, report)
		processed++
		progress.Increment()
	}

	// Drain anything the prefetcher handed off after cancellation.
	for ext := range extractions {
		o.extractor.Release(ext.stream)
	}
	return processed
}

// processOne takes a file through recognition and writing, recording the
// outcome. The temp audio is released on every path unless retained.
func (o *Orchestrator) processOne(ctx context.Context, ext extraction, report *Report) {
	file := ext.file
	started := time.Now()

	if ext.err != nil {
		o.fail(file, StageDiscovered, ext.err, report)
		return
	}
	stream := ext.stream
	retained := false
	defer func() {
		if !retained {
			o.extractor.Release(stream)
		}
	}()

	o.logger.Debug("stage complete", zap.String("file", file.Base+file.Ext), zap.String("stage", string(StageAudioExtracted)))

	result, err := o.recognizer.Transcribe(ctx, stream, o.opts.Language)
	if err != nil {
		o.fail(file, StageAudioExtracted, err, report)
		return
	}
	o.logger.Debug("stage complete", zap.String("file", file.Base+file.Ext), zap.String("stage", string(StageRecognized)))

	txtPath, srtPath, err := o.writer.Write(result)
	if err != nil {
		o.fail(file, StageRecognized, err, report)
		return
	}
	o.logger.Debug("stage complete", zap.String("file", file.Base+file.Ext), zap.String("stage", string(StageWritten)))

	if o.opts.KeepAudio {
		if err := o.extractor.Retain(stream, o.writer.OutputDir()); err != nil {
			o.logger.Warn("failed to retain audio", zap.String("file", file.Path), zap.Error(err))
		} else {
			retained = true
		}
	}

	report.recordSuccess()
	o.logger.Debug("stage complete", zap.String("file", file.Base+file.Ext), zap.String("stage", string(StageDone)))
	o.logger.Info("transcribed",
		zap.String("file", file.Base+file.Ext),
		zap.String("language", result.Language),
		zap.Int("segments", len(result.Segments)),
		zap.String("txt", txtPath),
		zap.String("srt", srtPath),
		zap.Duration("took", time.Since(started).Round(10*time.Millisecond)))
}

func (o *Orchestrator) fail(file model.MediaFile, after Stage, err error, report *Report) {
	report.recordFailure(file, err)
	o.logger.Warn("file failed",
		zap.String("file", file.Base+file.Ext),
		zap.String("after_stage", string(after)),
		zap.Error(err))
}
