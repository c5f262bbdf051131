package compose

import (
	"fmt"
	"image"
	"math"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"savo/internal/commentary"
	"savo/internal/features"
	"savo/internal/services"
	"savo/internal/timefmt"
)

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var freqLabels = [8]string{"125 Hz", "250 Hz", "500 Hz", "1k Hz", "2k Hz", "4k Hz", "8k Hz", "16k Hz"}

var vuLabels = [3]string{"-6 dB", "-12 dB", "-24 dB"}

const (
	lineSpacing = 5.0
	labelInset  = 5.0
	rmsEpsilon  = 1e-10
)

// Compositor turns a render instant into one composited frame. It carries no
// mutable state across calls and is safe to use from many goroutines.
type Compositor struct {
	layout Layout
}

// New constructs a compositor for the given layout.
func New(layout Layout) *Compositor {
	return &Compositor{layout: layout}
}

// Layout returns the immutable layout the compositor draws with.
func (c *Compositor) Layout() Layout { return c.layout }

// Frame composites the frame with the given index. The feature timeline
// provides both the instantaneous snapshot and the bounded lookback window
// for the spectrogram strip. Commentary text that is not valid UTF-8 fails
// with a composition error so the pipeline can degrade just this frame.
func (c *Compositor) Frame(index int, timeline *features.Timeline, cue commentary.Cue) (*Frame, error) {
	if cue.Displayed && !utf8.ValidString(cue.Event.Text) {
		return nil, services.Wrap(services.ErrFrameComposition, "compose", "overlay",
			fmt.Sprintf("frame %d: commentary text is not valid UTF-8", index), nil)
	}
	return c.render(index, timeline, cue, false), nil
}

// Degraded composites the fail-soft substitute for a frame whose full
// composition failed: the overlay layers are suppressed, everything else is
// drawn as usual.
func (c *Compositor) Degraded(index int, timeline *features.Timeline) *Frame {
	return c.render(index, timeline, commentary.Cue{}, true)
}

func (c *Compositor) render(index int, timeline *features.Timeline, cue commentary.Cue, degraded bool) *Frame {
	t := float64(index) * c.layout.FrameInterval()
	snapshot := timeline.SampleAt(t)

	dc := gg.NewContext(c.layout.Width, c.layout.Height)
	dc.SetFontFace(basicfont.Face7x13)

	c.drawBackground(dc)
	c.drawSpectrogram(dc, t, timeline)
	c.drawVUMeter(dc, snapshot)
	c.drawChroma(dc, snapshot)
	c.drawTimeline(dc, t, timeline.Duration())
	if cue.Displayed {
		c.drawCommentary(dc, cue)
	}
	c.drawSeparators(dc)

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		// gg always backs its context with *image.RGBA.
		bounds := dc.Image().Bounds()
		img = image.NewRGBA(bounds)
	}
	return &Frame{Index: index, Time: t, Degraded: degraded, Image: img}
}

func (c *Compositor) drawBackground(dc *gg.Context) {
	dc.SetRGB255(0, 0, 0)
	dc.Clear()
}

// drawSpectrogram paints the bounded lookback window of mel history as
// grayscale columns, newest at the playhead on the right edge. The gray
// level is a fixed linear map of the column's dB value between the
// configured floor and 0 dB.
func (c *Compositor) drawSpectrogram(dc *gg.Context, t float64, timeline *features.Timeline) {
	rect := c.layout.Spectrogram
	lookback := c.layout.LookbackSeconds
	window := timeline.Window(t-lookback, t)
	floor := c.layout.SpectrogramFloorDB

	for i, frame := range window {
		mel := frame.Vector(features.Mel)
		if len(mel) == 0 {
			continue
		}
		x0 := columnX(rect, frame.Time, t, lookback)
		var x1 float64
		if i+1 < len(window) {
			x1 = columnX(rect, window[i+1].Time, t, lookback)
		} else {
			x1 = float64(rect.X + rect.W)
		}
		if x1 <= x0 {
			x1 = x0 + 1
		}
		binH := float64(rect.H) / float64(len(mel))
		for bin, db := range mel {
			gray := int(clamp01((db-floor)/(-floor)) * 255)
			y := float64(rect.Y) + float64(len(mel)-1-bin)*binH
			dc.SetRGB255(gray, gray, gray)
			dc.DrawRectangle(x0, y, x1-x0, binH)
			dc.Fill()
		}
	}

	dc.SetRGB255(200, 200, 200)
	step := float64(rect.H) / float64(len(freqLabels))
	for i, label := range freqLabels {
		y := float64(rect.Y) + step*float64(len(freqLabels)-1-i) + step/2
		dc.DrawStringAnchored(label, float64(rect.X)+labelInset, y, 0, 0.4)
	}
}

// drawVUMeter lights bars bottom-up from the loudness snapshot using a fixed
// dB map clamped to the configured range. The lowest half of the ladder is
// green, the next three tenths yellow, the top red.
func (c *Compositor) drawVUMeter(dc *gg.Context, snapshot features.Frame) {
	rect := c.layout.VUMeter
	bars := c.layout.VUBars
	level := loudnessFraction(snapshot.Scalar(features.Loudness), c.layout.VUMinDB, c.layout.VUMaxDB)
	lit := int(level * float64(bars))
	if lit > bars {
		lit = bars
	}

	barH := float64(rect.H) / float64(bars)
	barX := float64(rect.X) + 60
	barW := float64(rect.W) - 120
	for i := 0; i < lit; i++ {
		switch {
		case i*2 < bars:
			dc.SetRGB255(0, 255, 0)
		case i*5 < bars*4:
			dc.SetRGB255(255, 255, 0)
		default:
			dc.SetRGB255(255, 0, 0)
		}
		y := float64(rect.Y+rect.H) - float64(i+1)*barH
		dc.DrawRectangle(barX, y+1, barW, barH-2)
		dc.Fill()
	}

	dc.SetRGB255(200, 200, 200)
	for i, label := range vuLabels {
		y := float64(rect.Y) + float64(rect.H)*float64(i+1)/float64(len(vuLabels)+1)
		dc.DrawStringAnchored(label, float64(rect.X)+labelInset, y, 0, 0.4)
	}
}

// drawChroma paints one magenta intensity band per pitch class, C at the
// top, with the class label in the left gutter.
func (c *Compositor) drawChroma(dc *gg.Context, snapshot features.Frame) {
	rect := c.layout.ChromaBand
	chroma := snapshot.Vector(features.Chroma)
	if len(chroma) == 0 {
		return
	}
	bandH := float64(rect.H) / float64(len(chroma))
	for i, intensity := range chroma {
		value := int(clamp01(intensity) * 255)
		dc.SetRGB255(value, 0, value)
		dc.DrawRectangle(float64(rect.X)+60, float64(rect.Y)+float64(i)*bandH, float64(rect.W)-60, bandH)
		dc.Fill()
	}
	dc.SetRGB255(200, 200, 200)
	for i := 0; i < len(chroma) && i < len(pitchClasses); i++ {
		y := float64(rect.Y) + float64(i)*bandH + bandH/2
		dc.DrawStringAnchored(pitchClasses[i], float64(rect.X)+labelInset, y, 0, 0.4)
	}
}

// drawTimeline renders the progress bar with a playhead marker and the
// "MM:SS / MM:SS" position readout.
func (c *Compositor) drawTimeline(dc *gg.Context, t, duration float64) {
	rect := c.layout.Timeline
	centerY := float64(rect.Y) + float64(rect.H)/2

	dc.SetRGB255(150, 150, 150)
	dc.DrawRectangle(float64(rect.X), centerY-1, float64(rect.W), 2)
	dc.Fill()

	progress := 0.0
	if duration > 0 {
		progress = clamp01(t / duration)
	}
	playheadX := float64(rect.X) + progress*float64(rect.W)
	dc.SetRGB255(255, 255, 255)
	dc.DrawRectangle(playheadX-1, float64(rect.Y)+2, 2, float64(rect.H)-4)
	dc.Fill()

	dc.SetRGB255(200, 200, 200)
	label := timefmt.Span(t, duration)
	dc.DrawStringAnchored(label, float64(rect.X+rect.W)-labelInset, centerY, 1, 0.4)
}

// drawCommentary word-wraps the displayed annotation into the commentary
// strip, centering the block. Text overflowing the strip height is truncated
// with an ellipsis, never resized. The entry frame renders brighter as a
// one-shot flash.
func (c *Compositor) drawCommentary(dc *gg.Context, cue commentary.Cue) {
	rect := c.layout.Commentary
	lines := wrapText(cue.Event.Text, float64(c.layout.WrapWidth), func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	})
	if len(lines) == 0 {
		return
	}
	lineHeight := basicfont.Face7x13.Metrics().Height.Ceil()
	advance := float64(lineHeight) + lineSpacing
	maxLines := int(float64(rect.H) / advance)
	lines = truncateLines(lines, maxLines)

	if cue.Entered {
		dc.SetRGB255(255, 255, 255)
	} else {
		dc.SetRGB255(200, 200, 200)
	}
	blockH := float64(len(lines)) * advance
	y := float64(rect.Y) + (float64(rect.H)-blockH)/2 + advance/2
	centerX := float64(rect.X) + float64(rect.W)/2
	for _, line := range lines {
		dc.DrawStringAnchored(line, centerX, y, 0.5, 0.4)
		y += advance
	}
}

func (c *Compositor) drawSeparators(dc *gg.Context) {
	dc.SetRGB255(200, 200, 200)
	for _, rect := range []Rect{c.layout.VUMeter, c.layout.ChromaBand, c.layout.Timeline, c.layout.Commentary} {
		dc.DrawRectangle(float64(rect.X), float64(rect.Y), float64(c.layout.Width), 1)
		dc.Fill()
	}
}

func columnX(rect Rect, frameTime, now, lookback float64) float64 {
	frac := clamp01((frameTime - (now - lookback)) / lookback)
	return float64(rect.X) + frac*float64(rect.W)
}

// loudnessFraction maps an RMS value onto [0, 1] through a fixed dB scale
// clamped to the configured range.
func loudnessFraction(rms, minDB, maxDB float64) float64 {
	if rms < rmsEpsilon {
		rms = rmsEpsilon
	}
	db := 20 * math.Log10(rms)
	return clamp01((db - minDB) / (maxDB - minDB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
