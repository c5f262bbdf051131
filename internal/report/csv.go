package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"savo/internal/features"
	"savo/internal/services"
)

// WriteCSV dumps the scalar features and MFCC coefficients of every frame,
// one row per analysis hop.
func WriteCSV(path string, tl *features.Timeline) error {
	file, err := os.Create(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "report", "write-csv", "", err)
	}
	defer file.Close()

	mfccDim := tl.VectorDim(features.Timbre)
	header := []string{"Time_Seconds", "RMS_Energy", "Spectral_Centroid", "ZCR", "Novelty_Curve"}
	for i := 1; i <= mfccDim; i++ {
		header = append(header, fmt.Sprintf("MFCC_%d", i))
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return services.Wrap(services.ErrValidation, "report", "write-csv", "", err)
	}
	row := make([]string, len(header))
	for _, frame := range tl.Window(0, tl.Duration()) {
		row[0] = formatValue(frame.Time)
		row[1] = formatValue(frame.Scalar(features.Loudness))
		row[2] = formatValue(frame.Scalar(features.Brightness))
		row[3] = formatValue(frame.Scalar(features.Noisiness))
		row[4] = formatValue(frame.Scalar(features.Novelty))
		for i, coeff := range frame.Vector(features.Timbre) {
			row[5+i] = formatValue(coeff)
		}
		if err := w.Write(row); err != nil {
			return services.Wrap(services.ErrValidation, "report", "write-csv", "", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return services.Wrap(services.ErrValidation, "report", "write-csv", "", err)
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrValidation, "report", "write-csv", "", err)
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
