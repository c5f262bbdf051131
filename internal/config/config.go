package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// Tools contains external binary locations.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Gemini contains configuration for the commentary-generation API.
type Gemini struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxAttempts    int    `toml:"max_attempts"`
}

// Analysis contains feature-extraction parameters.
type Analysis struct {
	SampleRate         int     `toml:"sample_rate"`
	FrameLength        int     `toml:"frame_length"`
	HopLength          int     `toml:"hop_length"`
	MelBands           int     `toml:"mel_bands"`
	MFCCCount          int     `toml:"mfcc_count"`
	CommentaryInterval float64 `toml:"commentary_interval_seconds"`
}

// Video contains the rendering surface configuration consumed by the
// compositor and pipeline.
type Video struct {
	Width              int     `toml:"width"`
	Height             int     `toml:"height"`
	FrameRate          int     `toml:"frame_rate"`
	HoldSeconds        float64 `toml:"commentary_hold_seconds"`
	LookbackSeconds    float64 `toml:"spectrogram_lookback_seconds"`
	WrapWidth          int     `toml:"text_wrap_width"`
	VUBars             int     `toml:"vu_bars"`
	SpectrogramFloorDB float64 `toml:"spectrogram_floor_db"`
	VUMinDB            float64 `toml:"vu_min_db"`
	VUMaxDB            float64 `toml:"vu_max_db"`
	Workers            int     `toml:"workers"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration consumed by the CLI and pipeline.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Tools    Tools    `toml:"tools"`
	Gemini   Gemini   `toml:"gemini"`
	Analysis Analysis `toml:"analysis"`
	Video    Video    `toml:"video"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/savo/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves a leading ~ against the current user's home directory
// and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("savo.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the renderer writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for decoding and encoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFmpeg); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFprobe); bin != "" {
		return bin
	}
	return "ffprobe"
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}
