package services

import (
	"image"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/models"
)

// Analyzer runs the full pipeline on one chart image: trace extraction,
// signal reconstruction, beat detection, interval filtering, metrics, time
// series, and chart rendering. Every call builds its result from scratch;
// nothing is shared between requests.
type Analyzer struct {
	tracer     *CurveTracer
	normalizer *SignalNormalizer
	detector   *BeatDetector
	filter     *IntervalFilter
	metrics    *MetricsEngine
	timeseries *TimeSeriesEngine
	renderer   Renderer
	cfg        *config.Config
	logger     *logrus.Logger
}

// NewAnalyzer wires the pipeline stages together. The renderer may be nil,
// in which case no plots are produced.
func NewAnalyzer(cfg *config.Config, renderer Renderer, logger *logrus.Logger) *Analyzer {
	return &Analyzer{
		tracer:     NewCurveTracer(cfg.Chart, cfg.Trace, logger),
		normalizer: NewSignalNormalizer(cfg.Chart, cfg.Analysis, logger),
		detector:   NewBeatDetector(cfg.Detector, logger),
		filter:     NewIntervalFilter(cfg.Analysis, logger),
		metrics:    NewMetricsEngine(cfg.Analysis, logger),
		timeseries: NewTimeSeriesEngine(cfg.Analysis, logger),
		renderer:   renderer,
		cfg:        cfg,
		logger:     logger,
	}
}

// Analyze runs the pipeline on img. Stage errors propagate unchanged so the
// caller can map them to the transport layer; rendering failures only cost
// the affected plot.
func (a *Analyzer) Analyze(img image.Image) (*models.AnalysisResult, error) {
	analysisID := uuid.New().String()
	log := a.logger.WithField("analysis_id", analysisID)

	rows, err := a.tracer.Trace(img)
	if err != nil {
		return nil, err
	}

	signal, err := a.normalizer.Normalize(rows)
	if err != nil {
		return nil, err
	}
	rate := a.cfg.Chart.TargetRate

	peaks, err := a.detector.Detect(signal, rate)
	if err != nil {
		return nil, err
	}

	rr, err := a.filter.Filter(peaks, rate)
	if err != nil {
		return nil, err
	}

	report, stress, interpretation, poincare, spectrum := a.metrics.Compute(rr, len(peaks))
	series := a.timeseries.Trajectories(rr)

	result := &models.AnalysisResult{
		Success:        true,
		AnalysisID:     analysisID,
		Metrics:        report,
		Stress:         stress,
		Interpretation: interpretation,
		TimeSeries:     series,
		Poincare:       poincare,
		Plots:          a.renderPlots(signal, rate, rr, poincare, spectrum, log),
	}

	log.WithFields(logrus.Fields{
		"beats":        len(peaks),
		"rr_intervals": len(rr),
		"stress_score": stress.Score,
	}).Info("Analysis completed")

	return result, nil
}

// renderPlots draws the four charts, tolerating per-chart failures.
func (a *Analyzer) renderPlots(signal []float64, rate float64, rr []float64, poincare models.PoincareIndices, spectrum models.Spectrum, log *logrus.Entry) models.Plots {
	var plots models.Plots
	if a.renderer == nil {
		return plots
	}

	var err error
	if plots.ECG, err = a.renderer.ECGPlot(signal, rate); err != nil {
		log.WithField("error", err.Error()).Warn("ECG plot rendering failed")
	}
	if plots.Poincare, err = a.renderer.PoincarePlot(rr, poincare); err != nil {
		log.WithField("error", err.Error()).Warn("Poincare plot rendering failed")
	}
	if plots.Histogram, err = a.renderer.RRHistogram(rr); err != nil {
		log.WithField("error", err.Error()).Warn("RR histogram rendering failed")
	}
	if len(spectrum.Frequencies) > 0 {
		if plots.Frequency, err = a.renderer.FrequencyPlot(spectrum); err != nil {
			log.WithField("error", err.Error()).Warn("Frequency plot rendering failed")
		}
	}
	return plots
}
