package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"savo/internal/analysis"
	"savo/internal/features"
	"savo/internal/services"
)

// Inputs carries everything the report artifacts are built from.
type Inputs struct {
	Piece       string
	Timeline    *features.Timeline
	Summary     analysis.Summary
	Narrative   string
	GeneratedAt time.Time
}

// Files names the artifacts one WriteAll call produced.
type Files struct {
	Report string
	CSV    string
	Plots  string
}

// WriteAll writes the textual report, the CSV feature dump, and the feature
// plots into dir, deriving file names from base.
func WriteAll(dir, base string, in Inputs) (Files, error) {
	if in.Timeline == nil {
		return Files{}, services.Wrap(services.ErrValidation, "report", "write", "nil timeline", nil)
	}
	files := Files{
		Report: filepath.Join(dir, base+"_Analysis_Report.txt"),
		CSV:    filepath.Join(dir, base+"_Feature_Data.csv"),
		Plots:  filepath.Join(dir, base+"_Feature_Plots.png"),
	}
	if err := WriteText(files.Report, in); err != nil {
		return Files{}, err
	}
	if err := WriteCSV(files.CSV, in.Timeline); err != nil {
		return Files{}, err
	}
	if err := WritePlots(files.Plots, in.Piece, in.Timeline); err != nil {
		return Files{}, err
	}
	return files, nil
}

// WriteText renders the human-readable analysis report.
func WriteText(path string, in Inputs) error {
	var b strings.Builder
	b.WriteString("Quantitative Musicological Analysis Report\n")
	fmt.Fprintf(&b, "Piece: %s\n", in.Piece)
	fmt.Fprintf(&b, "Duration: %.2f seconds\n", in.Summary.Duration)
	fmt.Fprintf(&b, "Date of Analysis: %s\n\n", in.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("--- Global Feature Analysis (AI Interpreted) ---\n")
	b.WriteString("This report is based on an analysis of audio features including RMS (loudness), Spectral Centroid (brightness), ZCR (noisiness), and MFCCs (timbral qualities).\n\n")

	narrative := strings.TrimSpace(in.Narrative)
	if narrative == "" {
		narrative = "No narrative was generated for this piece."
	}
	b.WriteString(narrative)
	b.WriteString("\n\n")

	b.WriteString("--- Global Statistics ---\n")
	for _, row := range []struct {
		label string
		name  string
	}{
		{"RMS_Energy", features.Loudness},
		{"Spectral_Centroid", features.Brightness},
		{"ZCR", features.Noisiness},
		{"Novelty_Curve", features.Novelty},
	} {
		stats := in.Summary.Scalars[row.name]
		fmt.Fprintf(&b, "  %s:\n", row.label)
		fmt.Fprintf(&b, "    Mean: %.4f\n", stats.Mean)
		fmt.Fprintf(&b, "    Standard Deviation: %.4f\n", stats.Std)
	}
	b.WriteString("\n")

	b.WriteString("--- Indications of Formal Boundaries ---\n")
	b.WriteString("### Potential Major Onsets/Changes (Novelty Curve Peaks)\n")
	if len(in.Summary.NoveltyPeaks) > 0 {
		b.WriteString("  Moments of significant spectral change or 'newness' are indicated at:\n")
		for _, at := range in.Summary.NoveltyPeaks {
			fmt.Fprintf(&b, "  - %.2f seconds\n", at)
		}
	} else {
		b.WriteString("  No significant peaks found above the current threshold, indicating a continuously evolving or highly homogeneous texture.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return services.Wrap(services.ErrValidation, "report", "write-text", "", err)
	}
	return nil
}
