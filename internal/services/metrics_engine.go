package services

import (
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/models"
)

// Stress levels in ascending order of severity.
const (
	StressLow      = "bajo"
	StressNormal   = "normal"
	StressModerate = "moderado"
	StressHigh     = "alto"
)

// Spectral bands of the RR spectrum, in Hz.
const (
	vlfLow = 0.003
	lfLow  = 0.04
	hfLow  = 0.15
	hfHigh = 0.4
)

// minFrequencySamples is the shortest RR series worth a spectral estimate.
const minFrequencySamples = 10

// welchSegmentFull is the spectral segment cap for the whole recording;
// welchSegmentWindowed is the smaller cap used on short time-series segments.
const (
	welchSegmentFull     = 256
	welchSegmentWindowed = 64
)

// MetricsEngine computes HRV metrics, the stress index, and the textual
// interpretation from a filtered RR series. It is a pure function of its
// input: no I/O, no state shared across invocations.
type MetricsEngine struct {
	cfg    config.AnalysisConfig
	logger *logrus.Logger
}

// NewMetricsEngine creates a new metrics engine.
func NewMetricsEngine(cfg config.AnalysisConfig, logger *logrus.Logger) *MetricsEngine {
	return &MetricsEngine{cfg: cfg, logger: logger}
}

// Compute derives the full metrics report for one analysis.
func (m *MetricsEngine) Compute(rr []float64, totalBeats int) (models.MetricsReport, models.StressIndex, []string, models.PoincareIndices, models.Spectrum) {
	td := m.TimeDomain(rr, totalBeats)
	fd, spectrum := m.FrequencyDomain(rr)
	stress := m.StressIndex(td, fd)
	interpretation := m.Interpret(td, fd, stress)
	poincare := m.Poincare(rr)

	m.logger.WithFields(logrus.Fields{
		"hr_mean":      td.HRMean,
		"sdnn":         td.SDNN,
		"rmssd":        td.RMSSD,
		"stress_score": stress.Score,
		"stress_level": stress.Level,
	}).Info("HRV metrics computed")

	return models.MetricsReport{TimeDomain: td, FrequencyDomain: fd}, stress, interpretation, poincare, spectrum
}

// TimeDomain computes the statistics of the RR series and its successive
// differences.
func (m *MetricsEngine) TimeDomain(rr []float64, totalBeats int) models.TimeDomainMetrics {
	d := diff(rr)

	var rmssd float64
	if len(d) > 0 {
		var sumSq float64
		for _, v := range d {
			sumSq += v * v
		}
		rmssd = math.Sqrt(sumSq / float64(len(d)))
	}

	var pnn50, pnn20 float64
	if len(d) > 0 {
		var nn50, nn20 int
		for _, v := range d {
			if math.Abs(v) > 50 {
				nn50++
			}
			if math.Abs(v) > 20 {
				nn20++
			}
		}
		pnn50 = float64(nn50) / float64(len(d)) * 100
		pnn20 = float64(nn20) / float64(len(d)) * 100
	}

	min, max := rr[0], rr[0]
	for _, v := range rr {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	mean := stat.Mean(rr, nil)
	return models.TimeDomainMetrics{
		HRMean:     round1(60000 / mean),
		SDNN:       round2(stat.StdDev(rr, nil)),
		RMSSD:      round2(rmssd),
		PNN50:      round2(pnn50),
		PNN20:      round2(pnn20),
		RRMean:     round2(mean),
		RRRange:    round2(max - min),
		TotalBeats: totalBeats,
	}
}

// FrequencyDomain estimates band powers of the RR spectrum. Series shorter
// than minFrequencySamples yield all-zero metrics rather than an error:
// sparse data is insufficient evidence, not invalid input.
func (m *MetricsEngine) FrequencyDomain(rr []float64) (models.FrequencyDomainMetrics, models.Spectrum) {
	if len(rr) < minFrequencySamples {
		return models.FrequencyDomainMetrics{}, models.Spectrum{}
	}

	vlf, lf, hf, spectrum := m.analyzeSpectrum(rr, welchSegmentFull)

	total := vlf + lf + hf
	ratio := 0.0
	if hf > 0 {
		ratio = lf / hf
	}
	lfNu, hfNu := 0.0, 0.0
	if lf+hf > 0 {
		lfNu = lf / (lf + hf) * 100
		hfNu = hf / (lf + hf) * 100
	}

	return models.FrequencyDomainMetrics{
		VLFPower:   round2(vlf),
		LFPower:    round2(lf),
		HFPower:    round2(hf),
		TotalPower: round2(total),
		LFHFRatio:  round2(ratio),
		LFNu:       round1(lfNu),
		HFNu:       round1(hfNu),
	}, spectrum
}

// analyzeSpectrum interpolates the RR series onto a uniform grid, removes
// the linear trend, and integrates the Welch PSD over the VLF/LF/HF bands.
func (m *MetricsEngine) analyzeSpectrum(rr []float64, maxSegment int) (vlf, lf, hf float64, spectrum models.Spectrum) {
	return analyzeSpectrum(rr, m.cfg.InterpolationRate, maxSegment)
}

// analyzeSpectrum is shared by the whole-recording metrics and the windowed
// time-series segments, which only differ in their Welch segment cap.
func analyzeSpectrum(rr []float64, fs float64, maxSegment int) (vlf, lf, hf float64, spectrum models.Spectrum) {
	// Cumulative beat-time axis, zero-based, in seconds.
	beatTimes := make([]float64, len(rr))
	cum := 0.0
	for i, v := range rr {
		cum += v
		beatTimes[i] = cum / 1000
	}
	t0 := beatTimes[0]
	for i := range beatTimes {
		beatTimes[i] -= t0
	}
	tEnd := beatTimes[len(beatTimes)-1]

	var ts []float64
	for i := 0; ; i++ {
		t := float64(i) / fs
		if t >= tEnd {
			break
		}
		ts = append(ts, t)
	}
	if len(ts) < 4 {
		return 0, 0, 0, models.Spectrum{}
	}

	var lin interp.PiecewiseLinear
	if err := lin.Fit(beatTimes, rr); err != nil {
		return 0, 0, 0, models.Spectrum{}
	}
	uniform := make([]float64, len(ts))
	for i, t := range ts {
		uniform[i] = lin.Predict(t)
	}

	// Remove the best-fit linear trend.
	alpha, beta := stat.LinearRegression(ts, uniform, nil, false)
	for i := range uniform {
		uniform[i] -= alpha + beta*ts[i]
	}

	freqs, psd := welchPSD(uniform, fs, maxSegment)
	if freqs == nil {
		return 0, 0, 0, models.Spectrum{}
	}

	vlf = bandPower(freqs, psd, vlfLow, lfLow)
	lf = bandPower(freqs, psd, lfLow, hfLow)
	hf = bandPower(freqs, psd, hfLow, hfHigh)
	return vlf, lf, hf, models.Spectrum{Frequencies: freqs, PSD: psd}
}

// StressIndex combines four clamped component scores into the 0-100 stress
// estimate. Low RMSSD and SDNN, a high LF/HF ratio, and a high heart rate
// all push the score up.
func (m *MetricsEngine) StressIndex(td models.TimeDomainMetrics, fd models.FrequencyDomainMetrics) models.StressIndex {
	rmssdScore := clamp((100-td.RMSSD)*1.5, 0, 100)
	lfHfScore := clamp(fd.LFHFRatio*25, 0, 100)
	hrScore := clamp((td.HRMean-50)*2, 0, 100)
	sdnnScore := clamp((100-td.SDNN)*1.2, 0, 100)

	score := rmssdScore*0.35 + lfHfScore*0.25 + hrScore*0.20 + sdnnScore*0.20

	var level, color, description string
	switch {
	case score < 30:
		level, color, description = StressLow, "green", "Estas relajado/a"
	case score < 50:
		level, color, description = StressNormal, "blue", "Nivel de estres normal"
	case score < 70:
		level, color, description = StressModerate, "orange", "Estres moderado detectado"
	default:
		level, color, description = StressHigh, "red", "Nivel de estres elevado"
	}

	return models.StressIndex{
		Score:       round1(score),
		Level:       level,
		Color:       color,
		Description: description,
		Components: models.StressComponents{
			RMSSDContribution: round1(rmssdScore * 0.35),
			LFHFContribution:  round1(lfHfScore * 0.25),
			HRContribution:    round1(hrScore * 0.20),
			SDNNContribution:  round1(sdnnScore * 0.20),
		},
	}
}

// Interpret generates the user-facing reading of the metrics. The text is
// template-driven and deterministic.
func (m *MetricsEngine) Interpret(td models.TimeDomainMetrics, fd models.FrequencyDomainMetrics, stress models.StressIndex) []string {
	var out []string

	switch {
	case td.HRMean < 60:
		out = append(out, fmt.Sprintf("Tu frecuencia cardiaca (%g bpm) es bradicardica (baja), lo cual puede indicar buena forma fisica.", td.HRMean))
	case td.HRMean > 100:
		out = append(out, fmt.Sprintf("Tu frecuencia cardiaca (%g bpm) es taquicardica (alta). Considera relajarte.", td.HRMean))
	default:
		out = append(out, fmt.Sprintf("Tu frecuencia cardiaca (%g bpm) esta en rango normal.", td.HRMean))
	}

	switch {
	case td.RMSSD > 50:
		out = append(out, fmt.Sprintf("Tu RMSSD (%g ms) indica buena actividad parasimpatica y capacidad de recuperacion.", td.RMSSD))
	case td.RMSSD > 20:
		out = append(out, fmt.Sprintf("Tu RMSSD (%g ms) esta en rango normal.", td.RMSSD))
	default:
		out = append(out, fmt.Sprintf("Tu RMSSD (%g ms) es bajo, indicando posible fatiga o estres.", td.RMSSD))
	}

	switch {
	case td.SDNN > 100:
		out = append(out, fmt.Sprintf("Tu SDNN (%g ms) indica excelente variabilidad cardiaca general.", td.SDNN))
	case td.SDNN > 50:
		out = append(out, fmt.Sprintf("Tu SDNN (%g ms) indica variabilidad cardiaca saludable.", td.SDNN))
	default:
		out = append(out, fmt.Sprintf("Tu SDNN (%g ms) sugiere variabilidad reducida.", td.SDNN))
	}

	switch {
	case fd.LFHFRatio < 1:
		out = append(out, fmt.Sprintf("El ratio LF/HF (%g) indica predominancia parasimpatica (relajacion).", fd.LFHFRatio))
	case fd.LFHFRatio < 2:
		out = append(out, fmt.Sprintf("El ratio LF/HF (%g) indica buen balance autonomico.", fd.LFHFRatio))
	default:
		out = append(out, fmt.Sprintf("El ratio LF/HF (%g) indica predominancia simpatica (activacion/estres).", fd.LFHFRatio))
	}

	out = append(out, fmt.Sprintf("\n**Nivel de Estres: %s** (puntuacion: %g/100)", strings.ToUpper(stress.Level), stress.Score))
	out = append(out, stress.Description)

	return out
}

// Poincare computes the SD1/SD2 indices of the Poincare plot using
// population variance. A negative SD2 radicand is clamped to zero to keep
// the finite-output contract.
func (m *MetricsEngine) Poincare(rr []float64) models.PoincareIndices {
	d := diff(rr)
	sd1 := popStd(d) / math.Sqrt2
	sd2Sq := 2*popVariance(rr) - 0.5*popVariance(d)
	if sd2Sq < 0 {
		sd2Sq = 0
	}
	return models.PoincareIndices{
		SD1: safeFloat(sd1),
		SD2: safeFloat(math.Sqrt(sd2Sq)),
	}
}
