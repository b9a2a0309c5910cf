package services

import (
	"github.com/sirupsen/logrus"

	"github.com/dcastanera/hrvision/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testChartConfig() config.ChartConfig {
	return config.ChartConfig{
		Rows:                 3,
		SecondsPerRow:        10,
		TargetRate:           500,
		HeaderFraction:       0.15,
		FooterFraction:       0.15,
		RowSmoothingSigma:    10,
		RowThresholdFraction: 0.1,
		MinBandFraction:      0.05,
	}
}

func testTraceConfig() config.TraceConfig {
	return config.TraceConfig{
		Primary:  config.HSVRange{HueMin: 10, HueMax: 50, SatMin: 0.39, ValMin: 0.39},
		Fallback: config.HSVRange{HueMin: 0, HueMax: 60, SatMin: 0.31, ValMin: 0.31},
	}
}

func testDetectorConfig() config.DetectorConfig {
	return config.DetectorConfig{
		MinBeats:           3,
		HighPassHz:         0.5,
		LowPassHz:          40,
		IntegrationSeconds: 0.15,
		MinDistanceFactor:  0.3,
		ProminenceFactor:   0.3,
	}
}

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		SmoothingSigma:    2,
		MinIntervals:      2,
		RRMinMs:           300,
		RRMaxMs:           2000,
		IQRFactor:         1.5,
		InterpolationRate: 4,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		LogLevel:    "panic",
		Chart:       testChartConfig(),
		Trace:       testTraceConfig(),
		Detector:    testDetectorConfig(),
		Analysis:    testAnalysisConfig(),
	}
}
