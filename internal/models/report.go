package models

// TimeDomainMetrics are HRV statistics computed directly on the filtered RR
// series and its successive differences.
type TimeDomainMetrics struct {
	HRMean     float64 `json:"hr_mean"`
	SDNN       float64 `json:"sdnn"`
	RMSSD      float64 `json:"rmssd"`
	PNN50      float64 `json:"pnn50"`
	PNN20      float64 `json:"pnn20"`
	RRMean     float64 `json:"rr_mean"`
	RRRange    float64 `json:"rr_range"`
	TotalBeats int     `json:"total_beats"`
}

// FrequencyDomainMetrics are band powers of the RR spectrum estimated with
// Welch's method, in ms^2, plus derived ratios. All fields are zero when the
// series is too short for spectral analysis.
type FrequencyDomainMetrics struct {
	VLFPower   float64 `json:"vlf_power"`
	LFPower    float64 `json:"lf_power"`
	HFPower    float64 `json:"hf_power"`
	TotalPower float64 `json:"total_power"`
	LFHFRatio  float64 `json:"lf_hf_ratio"`
	LFNu       float64 `json:"lf_nu"`
	HFNu       float64 `json:"hf_nu"`
}

// MetricsReport groups the computed HRV metrics for one analysis.
type MetricsReport struct {
	TimeDomain      TimeDomainMetrics      `json:"time_domain"`
	FrequencyDomain FrequencyDomainMetrics `json:"frequency_domain"`
}

// StressComponents breaks the stress score into its weighted contributions.
// The four contributions sum to the reported score.
type StressComponents struct {
	RMSSDContribution float64 `json:"rmssd_contribution"`
	LFHFContribution  float64 `json:"lf_hf_contribution"`
	HRContribution    float64 `json:"hr_contribution"`
	SDNNContribution  float64 `json:"sdnn_contribution"`
}

// StressIndex is the composite 0-100 stress estimate with its ordinal level.
type StressIndex struct {
	Score       float64          `json:"score"`
	Level       string           `json:"level"`
	Color       string           `json:"color"`
	Description string           `json:"description"`
	Components  StressComponents `json:"components"`
}

// MetricTrajectory is a time-localized series of one metric, used only for
// visualization and never fed back into the analysis.
type MetricTrajectory struct {
	Timestamps []float64 `json:"timestamps"`
	Values     []float64 `json:"values"`
	Label      string    `json:"label"`
	Unit       string    `json:"unit"`
	Color      string    `json:"color"`
}

// PoincareIndices summarize short- and long-term variability geometrically.
type PoincareIndices struct {
	SD1 float64 `json:"sd1"`
	SD2 float64 `json:"sd2"`
}

// Spectrum carries the Welch PSD estimate so the renderer can draw it.
type Spectrum struct {
	Frequencies []float64 `json:"frequencies"`
	PSD         []float64 `json:"psd"`
}

// Plots holds the rendered charts as base64-encoded PNGs.
type Plots struct {
	ECG       string `json:"ecg"`
	Poincare  string `json:"poincare"`
	Histogram string `json:"histogram"`
	Frequency string `json:"frequency"`
}

// AnalysisResult is the complete outcome of one chart analysis. It is built
// fresh per request and never shared across invocations.
type AnalysisResult struct {
	Success        bool                        `json:"success"`
	AnalysisID     string                      `json:"analysis_id"`
	Metrics        MetricsReport               `json:"metrics"`
	Stress         StressIndex                 `json:"stress"`
	Interpretation []string                    `json:"interpretation"`
	TimeSeries     map[string]MetricTrajectory `json:"time_series"`
	Poincare       PoincareIndices             `json:"poincare"`
	Plots          Plots                       `json:"plots"`
}
