package config

const (
	defaultOutputDir = "."
	defaultStateDir  = "~/.local/share/savo"
	defaultLogDir    = "~/.local/share/savo/logs"

	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel          = "gemini-2.5-flash"
	defaultGeminiTimeoutSeconds = 60
	defaultGeminiMaxAttempts    = 3

	defaultSampleRate         = 22050
	defaultFrameLength        = 2048
	defaultHopLength          = 512
	defaultMelBands           = 128
	defaultMFCCCount          = 13
	defaultCommentaryInterval = 10.0

	defaultCanvasWidth        = 1000
	defaultCanvasHeight       = 700
	defaultFrameRate          = 30
	defaultHoldSeconds        = 10.0
	defaultLookbackSeconds    = 8.0
	defaultVUBars             = 20
	defaultSpectrogramFloorDB = -80.0
	defaultVUMinDB            = -60.0
	defaultVUMaxDB            = 0.0

	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
			MaxAttempts:    defaultGeminiMaxAttempts,
		},
		Analysis: Analysis{
			SampleRate:         defaultSampleRate,
			FrameLength:        defaultFrameLength,
			HopLength:          defaultHopLength,
			MelBands:           defaultMelBands,
			MFCCCount:          defaultMFCCCount,
			CommentaryInterval: defaultCommentaryInterval,
		},
		Video: Video{
			Width:              defaultCanvasWidth,
			Height:             defaultCanvasHeight,
			FrameRate:          defaultFrameRate,
			HoldSeconds:        defaultHoldSeconds,
			LookbackSeconds:    defaultLookbackSeconds,
			VUBars:             defaultVUBars,
			SpectrogramFloorDB: defaultSpectrogramFloorDB,
			VUMinDB:            defaultVUMinDB,
			VUMaxDB:            defaultVUMaxDB,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
