package report

import (
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"savo/internal/features"
	"savo/internal/services"
)

type plotSpec struct {
	title  string
	ylabel string
	scalar string
	color  color.RGBA
}

var plotSpecs = []plotSpec{
	{"RMS Energy (Loudness Profile)", "RMS (Normalized)", features.Loudness, color.RGBA{R: 0x00, G: 0x00, B: 0x8b, A: 0xff}},
	{"Novelty Curve (Onset Strength Function)", "Novelty Value", features.Novelty, color.RGBA{R: 0x00, G: 0x64, B: 0x00, A: 0xff}},
	{"Spectral Centroid (Brightness)", "Frequency (Hz)", features.Brightness, color.RGBA{R: 0x8b, G: 0x00, B: 0x00, A: 0xff}},
	{"Zero-Crossing Rate (Noisiness/Percussiveness)", "ZCR", features.Noisiness, color.RGBA{R: 0x80, G: 0x00, B: 0x80, A: 0xff}},
}

// WritePlots renders the four scalar features as vertically stacked
// time-series plots in one PNG.
func WritePlots(path, piece string, tl *features.Timeline) error {
	frames := tl.Window(0, tl.Duration())

	plots := make([][]*plot.Plot, len(plotSpecs))
	for i, spec := range plotSpecs {
		points := make(plotter.XYs, len(frames))
		for j, frame := range frames {
			points[j].X = frame.Time
			points[j].Y = frame.Scalar(spec.scalar)
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return services.Wrap(services.ErrValidation, "report", "write-plots", "", err)
		}
		line.Color = spec.color

		p := plot.New()
		p.Title.Text = spec.title
		if i == 0 {
			p.Title.Text = fmt.Sprintf("Quantitative Analysis of %s\n%s", piece, spec.title)
		}
		p.Y.Label.Text = spec.ylabel
		if i == len(plotSpecs)-1 {
			p.X.Label.Text = "Time (Seconds)"
		}
		p.Add(plotter.NewGrid(), line)
		plots[i] = []*plot.Plot{p}
	}

	img := vgimg.New(16*vg.Inch/2, 12*vg.Inch/2)
	canvases := plot.Align(plots, draw.Tiles{
		Rows: len(plotSpecs),
		Cols: 1,
		PadY: vg.Millimeter * 2,
	}, draw.New(img))
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	file, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "report", "write-plots", "", err)
	}
	defer file.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(file); err != nil {
		return services.Wrap(services.ErrValidation, "report", "write-plots", "", err)
	}
	return file.Close()
}
