package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables honored when the matching flag or config key is
// unset. VT_DEVICE mirrors the --device flag for automation that cannot
// pass flags.
const (
	EnvDevice        = "VT_DEVICE"
	EnvWhisperBinary = "WHISPER_CPP_BINARY"
	EnvModelDir      = "WHISPER_CPP_MODEL_DIR"
)

// LoadEnv loads variables from a .env file when one exists next to the
// working directory. A missing file is not an error; variables may be set
// system-wide instead.
func LoadEnv() error {
	envPaths := []string{".env", ".env.local"}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. Only keys the file/flag
// layers left empty are filled in, except VT_DEVICE which the caller applies
// only when --device was not given.
func (c *Config) ApplyEnv() {
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = strings.TrimSpace(os.Getenv(EnvWhisperBinary))
	}
	if dir := strings.TrimSpace(os.Getenv(EnvModelDir)); dir != "" && c.Whisper.ModelDir == "models" {
		c.Whisper.ModelDir = dir
	}
}

// DeviceOverride returns the VT_DEVICE value, if set.
func DeviceOverride() (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvDevice))
	return v, v != ""
}
