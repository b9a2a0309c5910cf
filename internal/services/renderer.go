package services

import "github.com/dcastanera/hrvision/internal/models"

// Renderer draws the analysis charts. Each method returns a base64-encoded
// PNG. Rendering failures are reported per chart so one broken plot does not
// sink the whole analysis.
type Renderer interface {
	ECGPlot(signal []float64, rate float64) (string, error)
	PoincarePlot(rr []float64, idx models.PoincareIndices) (string, error)
	RRHistogram(rr []float64) (string, error)
	FrequencyPlot(spectrum models.Spectrum) (string, error)
}
