package app

import (
	"go.uber.org/zap"

	"video-transcriber/internal/app/audio"
	"video-transcriber/internal/app/export"
	"video-transcriber/internal/app/whisper"
	"video-transcriber/internal/config"
)

// OutputDir is the directory the batch writes its artifacts into.
type OutputDir string

// provideExtractor owns the batch temp directory; the cleanup removes it
// together with any leftover audio.
func provideExtractor(logger *zap.Logger) (*audio.Extractor, func(), error) {
	extractor, err := audio.NewExtractor(logger)
	if err != nil {
		return nil, nil, err
	}
	return extractor, func() { extractor.Close() }, nil
}

// provideRecognizer loads the model once for the whole batch.
func provideRecognizer(cfg *config.Config, logger *zap.Logger) (*whisper.Recognizer, error) {
	return whisper.NewRecognizer(
		cfg.Whisper.BinaryPath,
		cfg.Whisper.ModelDir,
		cfg.Whisper.Model,
		cfg.Whisper.Device,
		logger,
	)
}

func provideWriter(dir OutputDir, logger *zap.Logger) (*export.Writer, error) {
	return export.NewWriter(string(dir), logger)
}
