//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"video-transcriber/internal/app/audio"
	"video-transcriber/internal/app/batch"
	"video-transcriber/internal/app/export"
	"video-transcriber/internal/app/whisper"
	"video-transcriber/internal/config"
)

// InitializeOrchestrator assembles the batch pipeline from a validated
// config. The returned cleanup releases the batch temp directory.
func InitializeOrchestrator(cfg *config.Config, outputDir OutputDir, opts batch.Options, logger *zap.Logger) (*batch.Orchestrator, func(), error) {
	wire.Build(
		provideExtractor,
		provideRecognizer,
		provideWriter,
		batch.NewOrchestrator,
		wire.Bind(new(batch.Extractor), new(*audio.Extractor)),
		wire.Bind(new(batch.Recognizer), new(*whisper.Recognizer)),
		wire.Bind(new(batch.Writer), new(*export.Writer)),
	)
	return nil, nil, nil
}
