package compose

import (
	"errors"
	"fmt"

	"savo/internal/config"
	"savo/internal/services"
)

// Rect is an integer placement rectangle on the canvas.
type Rect struct {
	X, Y, W, H int
}

// Layout is the immutable per-run rendering configuration: canvas size,
// layer placement, color scale parameters, and text wrap width. One Layout
// is constructed per pipeline run and shared read-only across workers.
type Layout struct {
	Width              int
	Height             int
	FrameRate          int
	HoldSeconds        float64
	LookbackSeconds    float64
	WrapWidth          int
	VUBars             int
	SpectrogramFloorDB float64
	VUMinDB            float64
	VUMaxDB            float64

	Spectrogram Rect
	VUMeter     Rect
	ChromaBand  Rect
	Timeline    Rect
	Commentary  Rect
}

// NewLayout derives a validated layout from the video configuration. The
// vertical split mirrors the classic 1000x700 stack: three equal feature
// bands, a slim timeline, and the remaining strip for commentary.
func NewLayout(video config.Video) (Layout, error) {
	l := Layout{
		Width:              video.Width,
		Height:             video.Height,
		FrameRate:          video.FrameRate,
		HoldSeconds:        video.HoldSeconds,
		LookbackSeconds:    video.LookbackSeconds,
		WrapWidth:          video.WrapWidth,
		VUBars:             video.VUBars,
		SpectrogramFloorDB: video.SpectrogramFloorDB,
		VUMinDB:            video.VUMinDB,
		VUMaxDB:            video.VUMaxDB,
	}
	if err := l.validate(); err != nil {
		return Layout{}, services.Wrap(services.ErrConfiguration, "compose", "layout", "", err)
	}

	band := l.Height / 4
	timelineH := l.Height / 28
	l.Spectrogram = Rect{X: 0, Y: 0, W: l.Width, H: band}
	l.VUMeter = Rect{X: 0, Y: band, W: l.Width, H: band}
	l.ChromaBand = Rect{X: 0, Y: 2 * band, W: l.Width, H: band}
	l.Timeline = Rect{X: 0, Y: 3 * band, W: l.Width, H: timelineH}
	l.Commentary = Rect{X: 0, Y: 3*band + timelineH, W: l.Width, H: l.Height - 3*band - timelineH}
	return l, nil
}

func (l Layout) validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("canvas %dx%d has non-positive dimensions", l.Width, l.Height)
	}
	if l.Height < 28 {
		return errors.New("canvas height must be at least 28 pixels")
	}
	if l.FrameRate <= 0 {
		return errors.New("frame rate must be positive")
	}
	if l.HoldSeconds <= 0 {
		return errors.New("commentary hold duration must be positive")
	}
	if l.LookbackSeconds <= 0 {
		return errors.New("spectrogram lookback must be positive")
	}
	if l.WrapWidth <= 0 || l.WrapWidth > l.Width {
		return errors.New("text wrap width must be positive and fit the canvas")
	}
	if l.VUBars <= 0 {
		return errors.New("vu bar count must be positive")
	}
	if l.VUMaxDB <= l.VUMinDB {
		return errors.New("vu meter range is inverted")
	}
	if l.SpectrogramFloorDB >= 0 {
		return errors.New("spectrogram floor must be below 0 dB")
	}
	return nil
}

// FrameInterval returns the duration of one output frame in seconds.
func (l Layout) FrameInterval() float64 {
	return 1.0 / float64(l.FrameRate)
}
