// Package config resolves the batch configuration from an optional YAML
// file, environment variables (including a .env file) and CLI flags, in
// that order of increasing precedence.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Model sizes accepted by --model, ordered from fastest to most accurate.
var ModelSizes = []string{"tiny", "base", "small", "medium", "large"}

// Devices accepted by --device.
var Devices = []string{"cpu", "cuda"}

type Config struct {
	Whisper WhisperConfig `yaml:"whisper"`
	Batch   BatchConfig   `yaml:"batch"`
}

type WhisperConfig struct {
	// BinaryPath is the whisper.cpp executable. Empty means look up
	// "whisper-cli" on PATH.
	BinaryPath string `yaml:"binary_path"`
	// ModelDir holds the ggml model files, one per size.
	ModelDir string `yaml:"model_dir"`
	// Model is the size name: tiny, base, small, medium or large.
	Model string `yaml:"model"`
	// Language is the ISO 639-1 hint; empty means auto-detect.
	Language string `yaml:"language"`
	// Device is "cpu" or "cuda".
	Device string `yaml:"device"`
}

type BatchConfig struct {
	// OutputDir receives the .txt/.srt pairs. Empty means next to the input.
	OutputDir string `yaml:"output_dir"`
	// Recursive enables recursive directory discovery.
	Recursive bool `yaml:"recursive"`
	// KeepAudio retains extracted WAV files in the output directory.
	KeepAudio bool `yaml:"keep_audio"`
	// PipelineAhead extracts the next file's audio while the current one
	// is being recognized. Recognition stays strictly sequential.
	PipelineAhead bool `yaml:"pipeline_ahead"`
}

// Default returns the configuration used when no file and no flags are given.
func Default() *Config {
	return &Config{
		Whisper: WhisperConfig{
			ModelDir: "models",
			Model:    "medium",
			Device:   "cpu",
		},
	}
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if !contains(ModelSizes, c.Whisper.Model) {
		return fmt.Errorf("unknown model size %q (want one of tiny|base|small|medium|large)", c.Whisper.Model)
	}
	if !contains(Devices, c.Whisper.Device) {
		return fmt.Errorf("unknown device %q (want cpu or cuda)", c.Whisper.Device)
	}
	if c.Whisper.ModelDir == "" {
		return fmt.Errorf("whisper.model_dir is required")
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
