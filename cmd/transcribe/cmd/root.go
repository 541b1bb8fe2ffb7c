package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"video-transcriber/cmd/transcribe/cmd/version"
	"video-transcriber/internal/app"
	"video-transcriber/internal/app/audio"
	"video-transcriber/internal/app/batch"
	"video-transcriber/internal/app/logging"
	"video-transcriber/internal/app/media"
	"video-transcriber/internal/config"
)

// Exit codes: automated callers branch on partial failure vs fatal abort.
const (
	ExitOK             = 0
	ExitPartialFailure = 1
	ExitFatal          = 2
)

var (
	outputDir     string
	modelSize     string
	language      string
	device        string
	keepAudio     bool
	recursive     bool
	pipelineAhead bool
	configFile    string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "transcribe <input-path>",
	Short: "Batch-transcribe video files into text and SRT subtitles",
	Long: `Batch-transcribe video files into text and SRT subtitles.

- <input-path> can be a single video file or a directory of videos
- Audio is extracted with ffmpeg and recognized with whisper.cpp
- Each input produces <basename>.txt and <basename>.srt in the output
  directory; one failing file never aborts the rest of the batch`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(version.Cmd)

	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "",
		"output directory for transcripts (default: next to the input)")
	rootCmd.Flags().StringVarP(&modelSize, "model", "m", "medium",
		"whisper model size: tiny|base|small|medium|large")
	rootCmd.Flags().StringVarP(&language, "language", "l", "",
		"language code, e.g. en (default: auto-detect per file)")
	rootCmd.Flags().StringVarP(&device, "device", "d", "",
		"compute device: cpu|cuda (default: cpu, or $VT_DEVICE when set)")
	rootCmd.Flags().BoolVarP(&keepAudio, "keep-audio", "k", false,
		"keep the extracted WAV files next to the transcripts")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false,
		"recurse into subdirectories when the input is a directory")
	rootCmd.Flags().BoolVar(&pipelineAhead, "pipeline-ahead", false,
		"extract the next file's audio while the current one is recognized")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "",
		"YAML config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "verbose output")
}

// fatalError marks an error that aborts the batch before per-file work.
type fatalError struct{ err error }

func (e fatalError) Error() string { return e.err.Error() }

// partialError signals that some files failed or were skipped.
type partialError struct{ report *batch.Report }

func (e partialError) Error() string {
	return fmt.Sprintf("%d file(s) failed, %d skipped", e.report.Failed, e.report.Skipped)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitOK
	}
	if _, ok := err.(partialError); ok {
		return ExitPartialFailure
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return ExitFatal
}

func run(cmd *cobra.Command, inputPath string) error {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return fatalError{err}
	}

	logger := logging.MustNewLogger(verbose)
	defer logger.Sync()

	// The codec toolchain is checked once up front: without it every file
	// would fail identically, so the batch aborts before per-file work.
	if err := audio.CheckToolchain(); err != nil {
		return fatalError{err}
	}

	files, err := media.NewLocator(cfg.Batch.Recursive).Locate(inputPath)
	if err != nil {
		return fatalError{err}
	}
	if len(files) == 0 {
		logger.Info("no video files found", zap.String("input", inputPath))
		return nil
	}
	logger.Info("discovered input files", zap.Int("count", len(files)))

	outDir := cfg.Batch.OutputDir
	if outDir == "" {
		outDir = defaultOutputDir(inputPath)
	}

	opts := batch.Options{
		Language:      cfg.Whisper.Language,
		KeepAudio:     cfg.Batch.KeepAudio,
		PipelineAhead: cfg.Batch.PipelineAhead,
		ShowProgress:  !verbose && batch.IsTTY(os.Stderr),
	}

	orchestrator, cleanup, err := app.InitializeOrchestrator(cfg, app.OutputDir(outDir), opts, logger)
	if err != nil {
		return fatalError{err}
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := orchestrator.Run(ctx, files)
	fmt.Print(report.Summary())

	if !report.Clean() {
		return partialError{report}
	}
	return nil
}

// resolveConfig layers defaults, the optional YAML file, environment
// variables and flags, flags winning.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("model") || cfg.Whisper.Model == "" {
		cfg.Whisper.Model = modelSize
	}
	if flags.Changed("language") {
		cfg.Whisper.Language = language
	}
	if flags.Changed("output") {
		cfg.Batch.OutputDir = outputDir
	}
	if flags.Changed("recursive") {
		cfg.Batch.Recursive = recursive
	}
	if flags.Changed("keep-audio") {
		cfg.Batch.KeepAudio = keepAudio
	}
	if flags.Changed("pipeline-ahead") {
		cfg.Batch.PipelineAhead = pipelineAhead
	}

	// Device precedence: flag, then VT_DEVICE, then file/default.
	if flags.Changed("device") {
		cfg.Whisper.Device = device
	} else if override, ok := config.DeviceOverride(); ok {
		cfg.Whisper.Device = override
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultOutputDir mirrors the input location: the file's directory for a
// single file, the directory itself otherwise.
func defaultOutputDir(inputPath string) string {
	if info, err := os.Stat(inputPath); err == nil && !info.IsDir() {
		return filepath.Dir(inputPath)
	}
	return inputPath
}
