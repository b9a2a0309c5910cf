package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(16*1024*1024), cfg.Server.MaxUploadBytes)

	assert.Equal(t, 3, cfg.Chart.Rows)
	assert.Equal(t, 10.0, cfg.Chart.SecondsPerRow)
	assert.Equal(t, 500.0, cfg.Chart.TargetRate)
	assert.Equal(t, 30.0, cfg.Chart.DurationSeconds())

	assert.Equal(t, 3, cfg.Detector.MinBeats)
	assert.Equal(t, 300.0, cfg.Analysis.RRMinMs)
	assert.Equal(t, 2000.0, cfg.Analysis.RRMaxMs)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("CHART_TARGET_RATE", "250")
	t.Setenv("ENVIRONMENT", "Production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250.0, cfg.Chart.TargetRate)
	assert.Equal(t, "production", cfg.Environment)
}

func TestValidateRejectsBadLayout(t *testing.T) {
	viper.Reset()
	t.Setenv("CHART_ROWS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateRejectsInvertedRRBounds(t *testing.T) {
	viper.Reset()
	t.Setenv("ANALYSIS_RR_MIN_MS", "2500")

	_, err := Load()
	assert.Error(t, err)
}
