package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Chart       ChartConfig    `mapstructure:"chart"`
	Trace       TraceConfig    `mapstructure:"trace"`
	Detector    DetectorConfig `mapstructure:"detector"`
	Analysis    AnalysisConfig `mapstructure:"analysis"`
}

type ServerConfig struct {
	Port              int      `mapstructure:"port"`
	MaxUploadBytes    int64    `mapstructure:"max_upload_bytes"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// ChartConfig describes the exported chart layout the tracer expects. The
// defaults match the Samsung Health Monitor report (3 rows of 10 seconds);
// other vendors only need a different configuration, not different code.
type ChartConfig struct {
	Rows                 int     `mapstructure:"rows"`
	SecondsPerRow        float64 `mapstructure:"seconds_per_row"`
	TargetRate           float64 `mapstructure:"target_rate"`
	HeaderFraction       float64 `mapstructure:"header_fraction"`
	FooterFraction       float64 `mapstructure:"footer_fraction"`
	RowSmoothingSigma    float64 `mapstructure:"row_smoothing_sigma"`
	RowThresholdFraction float64 `mapstructure:"row_threshold_fraction"`
	MinBandFraction      float64 `mapstructure:"min_band_fraction"`
}

// DurationSeconds is the assumed total recording length for this layout.
func (c ChartConfig) DurationSeconds() float64 {
	return float64(c.Rows) * c.SecondsPerRow
}

// HSVRange selects trace pixels by hue interval and minimum saturation/value.
// Hue is in degrees [0,360), saturation and value in [0,1].
type HSVRange struct {
	HueMin float64 `mapstructure:"hue_min"`
	HueMax float64 `mapstructure:"hue_max"`
	SatMin float64 `mapstructure:"sat_min"`
	ValMin float64 `mapstructure:"val_min"`
}

// TraceConfig holds the two hue bands used to isolate the plotted curve: a
// narrow orange band for the expected trace color and a wider red-orange
// fallback that tolerates compression artifacts and lighting variation.
type TraceConfig struct {
	Primary  HSVRange `mapstructure:"primary"`
	Fallback HSVRange `mapstructure:"fallback"`
}

type DetectorConfig struct {
	MinBeats           int     `mapstructure:"min_beats"`
	HighPassHz         float64 `mapstructure:"high_pass_hz"`
	LowPassHz          float64 `mapstructure:"low_pass_hz"`
	IntegrationSeconds float64 `mapstructure:"integration_seconds"`
	MinDistanceFactor  float64 `mapstructure:"min_distance_factor"`
	ProminenceFactor   float64 `mapstructure:"prominence_factor"`
}

type AnalysisConfig struct {
	SmoothingSigma    float64 `mapstructure:"smoothing_sigma"`
	MinIntervals      int     `mapstructure:"min_intervals"`
	RRMinMs           float64 `mapstructure:"rr_min_ms"`
	RRMaxMs           float64 `mapstructure:"rr_max_ms"`
	IQRFactor         float64 `mapstructure:"iqr_factor"`
	InterpolationRate float64 `mapstructure:"interpolation_rate"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Chart.Rows < 1 {
		return fmt.Errorf("chart.rows must be at least 1, got %d", c.Chart.Rows)
	}
	if c.Chart.SecondsPerRow <= 0 {
		return fmt.Errorf("chart.seconds_per_row must be positive, got %f", c.Chart.SecondsPerRow)
	}
	if c.Chart.TargetRate <= 0 {
		return fmt.Errorf("chart.target_rate must be positive, got %f", c.Chart.TargetRate)
	}
	if c.Analysis.RRMinMs >= c.Analysis.RRMaxMs {
		return fmt.Errorf("analysis.rr_min_ms (%f) must be below analysis.rr_max_ms (%f)",
			c.Analysis.RRMinMs, c.Analysis.RRMaxMs)
	}
	if c.Detector.HighPassHz >= c.Detector.LowPassHz {
		return fmt.Errorf("detector.high_pass_hz (%f) must be below detector.low_pass_hz (%f)",
			c.Detector.HighPassHz, c.Detector.LowPassHz)
	}
	return nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.max_upload_bytes", 16*1024*1024)
	viper.SetDefault("server.allowed_extensions", []string{".png", ".jpg", ".jpeg"})

	// Chart layout (Samsung Health Monitor export: 3 rows x 10 s at 500 Hz)
	viper.SetDefault("chart.rows", 3)
	viper.SetDefault("chart.seconds_per_row", 10.0)
	viper.SetDefault("chart.target_rate", 500.0)
	viper.SetDefault("chart.header_fraction", 0.15)
	viper.SetDefault("chart.footer_fraction", 0.15)
	viper.SetDefault("chart.row_smoothing_sigma", 10.0)
	viper.SetDefault("chart.row_threshold_fraction", 0.1)
	viper.SetDefault("chart.min_band_fraction", 0.05)

	// Trace color: narrow orange band plus a wider red-orange fallback
	viper.SetDefault("trace.primary.hue_min", 10.0)
	viper.SetDefault("trace.primary.hue_max", 50.0)
	viper.SetDefault("trace.primary.sat_min", 0.39)
	viper.SetDefault("trace.primary.val_min", 0.39)
	viper.SetDefault("trace.fallback.hue_min", 0.0)
	viper.SetDefault("trace.fallback.hue_max", 60.0)
	viper.SetDefault("trace.fallback.sat_min", 0.31)
	viper.SetDefault("trace.fallback.val_min", 0.31)

	// Beat detection
	viper.SetDefault("detector.min_beats", 3)
	viper.SetDefault("detector.high_pass_hz", 0.5)
	viper.SetDefault("detector.low_pass_hz", 40.0)
	viper.SetDefault("detector.integration_seconds", 0.15)
	viper.SetDefault("detector.min_distance_factor", 0.3)
	viper.SetDefault("detector.prominence_factor", 0.3)

	// HRV analysis
	viper.SetDefault("analysis.smoothing_sigma", 2.0)
	viper.SetDefault("analysis.min_intervals", 2)
	viper.SetDefault("analysis.rr_min_ms", 300.0)
	viper.SetDefault("analysis.rr_max_ms", 2000.0)
	viper.SetDefault("analysis.iqr_factor", 1.5)
	viper.SetDefault("analysis.interpolation_rate", 4.0)
}
