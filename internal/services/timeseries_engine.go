package services

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/models"
)

// TimeSeriesEngine recomputes a subset of the HRV metrics over sliding
// windows across the recording, producing metric trajectories for
// visualization. It never mutates the RR series and feeds nothing back
// into the analysis.
type TimeSeriesEngine struct {
	cfg    config.AnalysisConfig
	logger *logrus.Logger
}

// NewTimeSeriesEngine creates a new time-series engine.
func NewTimeSeriesEngine(cfg config.AnalysisConfig, logger *logrus.Logger) *TimeSeriesEngine {
	return &TimeSeriesEngine{cfg: cfg, logger: logger}
}

// Trajectories returns the named metric trajectories of the RR series:
// instantaneous heart rate and RR per beat, windowed SDNN/RMSSD/pNN50, and
// segmented frequency metrics when the recording is long enough.
func (e *TimeSeriesEngine) Trajectories(rr []float64) map[string]models.MetricTrajectory {
	beatTimes := cumulativeBeatTimes(rr)

	out := make(map[string]models.MetricTrajectory)

	hr := make([]float64, len(rr))
	for i, v := range rr {
		hr[i] = safeFloat(60000 / v)
	}
	out["hr"] = models.MetricTrajectory{
		Timestamps: beatTimes,
		Values:     hr,
		Label:      "Frecuencia Cardiaca",
		Unit:       "bpm",
		Color:      "#EF4444",
	}
	out["rr"] = models.MetricTrajectory{
		Timestamps: beatTimes,
		Values:     append([]float64(nil), rr...),
		Label:      "Intervalo R-R",
		Unit:       "ms",
		Color:      "#3B82F6",
	}

	e.windowedTrajectories(rr, beatTimes, out)
	e.segmentedFrequencyTrajectories(rr, beatTimes, out)

	e.logger.WithFields(logrus.Fields{
		"series": len(out),
		"beats":  len(rr),
	}).Debug("Metric trajectories computed")

	return out
}

// windowedTrajectories computes SDNN, RMSSD and pNN50 over an adaptive
// sliding window (roughly a fifth of the recording, two-thirds overlap),
// stamping each value at the time of the window's center beat.
func (e *TimeSeriesEngine) windowedTrajectories(rr, beatTimes []float64, out map[string]models.MetricTrajectory) {
	window := len(rr) / 5
	if window < 8 {
		window = 8
	}
	step := window / 3
	if step < 1 {
		step = 1
	}

	times := make([]float64, 0)
	sdnn := make([]float64, 0)
	rmssd := make([]float64, 0)
	pnn50 := make([]float64, 0)

	for i := 0; i+window <= len(rr); i += step {
		w := rr[i : i+window]
		d := diff(w)

		times = append(times, beatTimes[i+window/2])
		sdnn = append(sdnn, safeFloat(stat.StdDev(w, nil)))

		var sumSq float64
		var nn50 int
		for _, v := range d {
			sumSq += v * v
			if math.Abs(v) > 50 {
				nn50++
			}
		}
		rmssd = append(rmssd, math.Sqrt(sumSq/float64(len(d))))
		pnn50 = append(pnn50, float64(nn50)/float64(len(d))*100)
	}

	out["sdnn"] = models.MetricTrajectory{
		Timestamps: times, Values: sdnn,
		Label: "SDNN", Unit: "ms", Color: "#10B981",
	}
	out["rmssd"] = models.MetricTrajectory{
		Timestamps: times, Values: rmssd,
		Label: "RMSSD", Unit: "ms", Color: "#8B5CF6",
	}
	out["pnn50"] = models.MetricTrajectory{
		Timestamps: times, Values: pnn50,
		Label: "pNN50", Unit: "%", Color: "#F59E0B",
	}
}

// segmentedFrequencyTrajectories recomputes LF/HF metrics over overlapping
// segments of the recording. Recordings under 12 seconds are too short to
// segment; segments with fewer than 8 beats are skipped, not zero-filled.
func (e *TimeSeriesEngine) segmentedFrequencyTrajectories(rr, beatTimes []float64, out map[string]models.MetricTrajectory) {
	totalDuration := beatTimes[len(beatTimes)-1]
	if totalDuration < 12 {
		return
	}
	segmentDuration := math.Min(10, totalDuration/3)
	step := segmentDuration / 2

	var times, lfs, hfs, ratios, lfNus, hfNus []float64

	for current := 0.0; current+segmentDuration <= totalDuration; current += step {
		var segment []float64
		for i, t := range beatTimes {
			if t >= current && t < current+segmentDuration {
				segment = append(segment, rr[i])
			}
		}
		if len(segment) < 8 {
			continue
		}

		_, lf, hf, _ := analyzeSpectrum(segment, e.cfg.InterpolationRate, welchSegmentWindowed)

		ratio := 0.0
		if hf > 0 {
			ratio = lf / hf
		}
		lfNu, hfNu := 0.0, 0.0
		if lf+hf > 0 {
			lfNu = lf / (lf + hf) * 100
			hfNu = hf / (lf + hf) * 100
		}

		times = append(times, current+segmentDuration/2)
		lfs = append(lfs, round2(lf))
		hfs = append(hfs, round2(hf))
		ratios = append(ratios, round2(ratio))
		lfNus = append(lfNus, round1(lfNu))
		hfNus = append(hfNus, round1(hfNu))
	}

	if len(times) == 0 {
		return
	}

	out["lf"] = models.MetricTrajectory{
		Timestamps: times, Values: lfs,
		Label: "LF Power", Unit: "ms²", Color: "#EF4444",
	}
	out["hf"] = models.MetricTrajectory{
		Timestamps: times, Values: hfs,
		Label: "HF Power", Unit: "ms²", Color: "#10B981",
	}
	out["lfhf"] = models.MetricTrajectory{
		Timestamps: times, Values: ratios,
		Label: "LF/HF Ratio", Unit: "", Color: "#F59E0B",
	}
	out["lfnu"] = models.MetricTrajectory{
		Timestamps: times, Values: lfNus,
		Label: "LF Normalizado", Unit: "%", Color: "#EF4444",
	}
	out["hfnu"] = models.MetricTrajectory{
		Timestamps: times, Values: hfNus,
		Label: "HF Normalizado", Unit: "%", Color: "#10B981",
	}
}

// cumulativeBeatTimes builds the zero-based beat-time axis in seconds.
func cumulativeBeatTimes(rr []float64) []float64 {
	times := make([]float64, len(rr))
	cum := 0.0
	for i, v := range rr {
		cum += v
		times[i] = cum / 1000
	}
	t0 := times[0]
	for i := range times {
		times[i] -= t0
	}
	return times
}
