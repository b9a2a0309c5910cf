package services

import (
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/dcastanera/hrvision/internal/config"
	"github.com/dcastanera/hrvision/internal/utils"
)

// IntervalFilter converts R-peak indices to inter-beat intervals and rejects
// artifacts: values outside the physiological range and statistical outliers
// beyond the Tukey fence.
type IntervalFilter struct {
	cfg    config.AnalysisConfig
	logger *logrus.Logger
}

// NewIntervalFilter creates a new interval filter.
func NewIntervalFilter(cfg config.AnalysisConfig, logger *logrus.Logger) *IntervalFilter {
	return &IntervalFilter{cfg: cfg, logger: logger}
}

// Filter returns the RR series in milliseconds. The physiological bound and
// the IQR fence are combined with a logical AND; the fence is computed once
// over the full unfiltered population, so a single extreme artifact can
// widen it and mask smaller outliers.
func (f *IntervalFilter) Filter(peaks []int, rate float64) ([]float64, error) {
	rr := make([]float64, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		rr = append(rr, float64(peaks[i]-peaks[i-1])/rate*1000)
	}

	lower, upper := tukeyFence(rr, f.cfg.IQRFactor)

	filtered := make([]float64, 0, len(rr))
	for _, v := range rr {
		if v > f.cfg.RRMinMs && v < f.cfg.RRMaxMs && v >= lower && v <= upper {
			filtered = append(filtered, v)
		}
	}

	if len(filtered) < f.cfg.MinIntervals {
		return nil, utils.NewInsufficientIntervalsError(len(filtered), f.cfg.MinIntervals)
	}

	if removed := len(rr) - len(filtered); removed > 0 {
		f.logger.WithFields(logrus.Fields{
			"total":   len(rr),
			"removed": removed,
		}).Debug("RR intervals filtered")
	}

	return filtered, nil
}

// tukeyFence returns the [Q1-k*IQR, Q3+k*IQR] bounds of x.
func tukeyFence(x []float64, k float64) (lower, upper float64) {
	if len(x) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	q1 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	q3 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}
