package services

import (
	"errors"
	"math"

	"github.com/jfcg/butter"
	"github.com/sirupsen/logrus"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/utils"
)

// PeakDetector locates dominant upward deflections in a cleaned signal and
// returns their strictly increasing sample indices. Implementations may fail
// on input that violates their assumptions; the caller moves on to the next
// detector in priority order.
type PeakDetector interface {
	Name() string
	DetectPeaks(signal []float64, rate float64) ([]int, error)
}

// BeatDetector cleans the reconstructed signal and runs the configured
// detectors in priority order until one yields the minimum beat count.
type BeatDetector struct {
	cfg       config.DetectorConfig
	detectors []PeakDetector
	logger    *logrus.Logger
}

// NewBeatDetector creates a detector with the default priority order:
// the QRS energy detector first, the generic prominence detector as
// fallback for signals that violate the specialized detector's assumptions.
func NewBeatDetector(cfg config.DetectorConfig, logger *logrus.Logger) *BeatDetector {
	return &BeatDetector{
		cfg: cfg,
		detectors: []PeakDetector{
			&QRSEnergyDetector{cfg: cfg},
			&ProminenceDetector{cfg: cfg},
		},
		logger: logger,
	}
}

// Detect returns the R-peak sample indices of the signal. It fails with
// InsufficientBeatsError when no detector finds the minimum beat count.
func (b *BeatDetector) Detect(signal []float64, rate float64) ([]int, error) {
	cleaned := cleanECG(signal, rate, b.cfg)

	best := 0
	for _, d := range b.detectors {
		peaks, err := d.DetectPeaks(cleaned, rate)
		if err != nil {
			b.logger.WithFields(logrus.Fields{
				"detector": d.Name(),
				"error":    err.Error(),
			}).Warn("Peak detector failed, trying next")
			continue
		}
		if len(peaks) >= b.cfg.MinBeats {
			b.logger.WithFields(logrus.Fields{
				"detector": d.Name(),
				"beats":    len(peaks),
			}).Debug("R peaks detected")
			return peaks, nil
		}
		if len(peaks) > best {
			best = len(peaks)
		}
	}

	return nil, utils.NewInsufficientBeatsError(best, b.cfg.MinBeats)
}

// cleanECG removes baseline wander and high-frequency noise with a
// first-order Butterworth high/low-pass cascade. When the corner frequencies
// fall outside the filter's valid range for this sampling rate, the signal
// is returned unchanged.
func cleanECG(signal []float64, rate float64, cfg config.DetectorConfig) []float64 {
	wcBase := 2 * math.Pi / rate

	hp := butter.NewHighPass1(cfg.HighPassHz * wcBase)
	lp := butter.NewLowPass1(cfg.LowPassHz * wcBase)

	out := make([]float64, len(signal))
	if hp == nil || lp == nil {
		copy(out, signal)
		return out
	}
	for i, v := range signal {
		out[i] = hp.Next(lp.Next(v))
	}
	return out
}

// QRSEnergyDetector finds R peaks by locating bursts of high-frequency
// energy: differentiate, square, integrate over a short moving window, and
// take the maximum of the cleaned signal inside each burst.
type QRSEnergyDetector struct {
	cfg config.DetectorConfig
}

// Name identifies the detector in logs.
func (d *QRSEnergyDetector) Name() string { return "qrs_energy" }

// DetectPeaks implements PeakDetector.
func (d *QRSEnergyDetector) DetectPeaks(signal []float64, rate float64) ([]int, error) {
	window := int(d.cfg.IntegrationSeconds * rate)
	if window < 1 {
		window = 1
	}
	if len(signal) < 3*window {
		return nil, errors.New("signal too short for QRS energy detection")
	}

	energy := make([]float64, len(signal))
	for i := 1; i < len(signal)-1; i++ {
		dv := (signal[i+1] - signal[i-1]) / 2
		energy[i] = dv * dv
	}

	integrated := movingAverage(energy, window)

	mean := 0.0
	for _, v := range integrated {
		mean += v
	}
	mean /= float64(len(integrated))
	std := popStd(integrated)
	if std == 0 {
		return nil, errors.New("flat signal, no QRS energy")
	}
	threshold := mean + 0.5*std

	refractory := int(0.25 * rate)
	if refractory < 1 {
		refractory = 1
	}

	var peaks []int
	inBurst := false
	burstStart := 0
	for i := 0; i <= len(integrated); i++ {
		above := i < len(integrated) && integrated[i] > threshold
		switch {
		case above && !inBurst:
			inBurst = true
			burstStart = i
		case !above && inBurst:
			inBurst = false
			peak := argmaxRange(signal, burstStart, i)
			if len(peaks) == 0 || peak-peaks[len(peaks)-1] >= refractory {
				peaks = append(peaks, peak)
			}
		}
	}
	return peaks, nil
}

// ProminenceDetector is the generic fallback: local maxima separated by a
// minimum distance, with prominence relative to the signal's spread. It
// makes no assumptions about ECG morphology.
type ProminenceDetector struct {
	cfg config.DetectorConfig
}

// Name identifies the detector in logs.
func (d *ProminenceDetector) Name() string { return "prominence" }

// DetectPeaks implements PeakDetector.
func (d *ProminenceDetector) DetectPeaks(signal []float64, rate float64) ([]int, error) {
	if len(signal) < 3 {
		return nil, errors.New("signal too short for peak finding")
	}
	minDistance := int(d.cfg.MinDistanceFactor * rate)
	minProminence := d.cfg.ProminenceFactor * popStd(signal)
	return findPeaks(signal, minDistance, minProminence), nil
}

func movingAverage(x []float64, window int) []float64 {
	out := make([]float64, len(x))
	var sum float64
	for i := range x {
		sum += x[i]
		if i >= window {
			sum -= x[i-window]
		}
		n := window
		if i+1 < window {
			n = i + 1
		}
		out[i] = sum / float64(n)
	}
	return out
}

func argmaxRange(x []float64, start, end int) int {
	best := start
	for i := start + 1; i < end && i < len(x); i++ {
		if x[i] > x[best] {
			best = i
		}
	}
	return best
}
