package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeVideo()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGemini() {
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
	if c.Gemini.MaxAttempts <= 0 {
		c.Gemini.MaxAttempts = defaultGeminiMaxAttempts
	}
}

func (c *Config) normalizeVideo() {
	if c.Video.WrapWidth == 0 {
		c.Video.WrapWidth = c.Video.Width - 20
	}
	if c.Video.Workers < 0 {
		c.Video.Workers = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
