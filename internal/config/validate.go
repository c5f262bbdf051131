package config

import (
	"errors"
	"fmt"

	"savo/internal/services"
)

// Validate ensures the configuration is usable. Invalid values are rejected,
// never clamped.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "analysis", "", err)
	}
	if err := c.validateVideo(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "video", "", err)
	}
	if err := c.validateLogging(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "logging", "", err)
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.SampleRate <= 0 {
		return errors.New("analysis.sample_rate must be positive")
	}
	if c.Analysis.FrameLength <= 0 {
		return errors.New("analysis.frame_length must be positive")
	}
	if c.Analysis.HopLength <= 0 {
		return errors.New("analysis.hop_length must be positive")
	}
	if c.Analysis.HopLength > c.Analysis.FrameLength {
		return errors.New("analysis.hop_length must not exceed analysis.frame_length")
	}
	if c.Analysis.MelBands <= 0 {
		return errors.New("analysis.mel_bands must be positive")
	}
	if c.Analysis.MFCCCount <= 0 || c.Analysis.MFCCCount > c.Analysis.MelBands {
		return fmt.Errorf("analysis.mfcc_count must be in [1, %d]", c.Analysis.MelBands)
	}
	if c.Analysis.CommentaryInterval <= 0 {
		return errors.New("analysis.commentary_interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return errors.New("video.width and video.height must be positive")
	}
	if c.Video.FrameRate <= 0 {
		return errors.New("video.frame_rate must be positive")
	}
	if c.Video.HoldSeconds <= 0 {
		return errors.New("video.commentary_hold_seconds must be positive")
	}
	if c.Video.LookbackSeconds <= 0 {
		return errors.New("video.spectrogram_lookback_seconds must be positive")
	}
	if c.Video.WrapWidth <= 0 || c.Video.WrapWidth > c.Video.Width {
		return errors.New("video.text_wrap_width must be positive and fit the canvas")
	}
	if c.Video.VUBars <= 0 {
		return errors.New("video.vu_bars must be positive")
	}
	if c.Video.VUMaxDB <= c.Video.VUMinDB {
		return errors.New("video.vu_max_db must exceed video.vu_min_db")
	}
	if c.Video.SpectrogramFloorDB >= 0 {
		return errors.New("video.spectrogram_floor_db must be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
