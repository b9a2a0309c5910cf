package services

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/utils"
)

// SignalNormalizer turns the per-row pixel sequences into the canonical
// reconstructed signal: concatenated, flipped to amplitude-up, mean-centered,
// scaled to [-1,1], denoised, and resampled onto the uniform time axis of
// the configured chart duration and target rate.
type SignalNormalizer struct {
	chart  config.ChartConfig
	sigma  float64
	logger *logrus.Logger
}

// NewSignalNormalizer creates a new normalizer for the given chart layout.
func NewSignalNormalizer(chart config.ChartConfig, analysis config.AnalysisConfig, logger *logrus.Logger) *SignalNormalizer {
	return &SignalNormalizer{
		chart:  chart,
		sigma:  analysis.SmoothingSigma,
		logger: logger,
	}
}

// Normalize produces the reconstructed signal from the traced row sequences.
// The result always has exactly DurationSeconds*TargetRate samples.
func (n *SignalNormalizer) Normalize(rows [][]float64) ([]float64, error) {
	var signal []float64
	for _, row := range rows {
		signal = append(signal, row...)
	}
	if len(signal) < 2 {
		return nil, utils.NewExtractionError("extracted signal is empty")
	}

	// Image Y grows downward; amplitude grows upward.
	for i := range signal {
		signal[i] = -signal[i]
	}

	mean := stat.Mean(signal, nil)
	maxAbs := 0.0
	for i := range signal {
		signal[i] -= mean
		if a := math.Abs(signal[i]); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > 0 {
		for i := range signal {
			signal[i] /= maxAbs
		}
	}

	signal = gaussianSmooth(signal, n.sigma)

	resampled, err := n.resample(signal)
	if err != nil {
		return nil, err
	}

	n.logger.WithFields(logrus.Fields{
		"raw_samples": len(signal),
		"samples":     len(resampled),
		"rate_hz":     n.chart.TargetRate,
	}).Debug("Signal normalized")

	return resampled, nil
}

// resample interpolates the column-indexed signal onto a uniform time axis
// spanning the chart duration at the target rate, using a cubic spline.
func (n *SignalNormalizer) resample(signal []float64) ([]float64, error) {
	duration := n.chart.DurationSeconds()
	numSamples := int(duration * n.chart.TargetRate)

	xs := make([]float64, len(signal))
	floats.Span(xs, 0, duration)

	var predictor interp.FittablePredictor
	if len(signal) >= 4 {
		predictor = &interp.NaturalCubic{}
	} else {
		predictor = &interp.PiecewiseLinear{}
	}
	if err := predictor.Fit(xs, signal); err != nil {
		return nil, utils.NewExtractionErrorf("resampling failed: %v", err)
	}

	xNew := make([]float64, numSamples)
	floats.Span(xNew, 0, duration)

	out := make([]float64, numSamples)
	for i, x := range xNew {
		out[i] = predictor.Predict(x)
	}
	return out, nil
}
