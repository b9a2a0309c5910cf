package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastanera/hrvision/internal/utils"
)

func sineRow(n int, cycles float64) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = 50 + 20*math.Sin(2*math.Pi*cycles*float64(i)/float64(n))
	}
	return row
}

func TestNormalizeOutputLength(t *testing.T) {
	chart := testChartConfig()
	normalizer := NewSignalNormalizer(chart, testAnalysisConfig(), testLogger())

	rows := [][]float64{sineRow(600, 10), sineRow(600, 10), sineRow(600, 10)}
	signal, err := normalizer.Normalize(rows)
	require.NoError(t, err)

	want := int(chart.DurationSeconds() * chart.TargetRate)
	assert.Len(t, signal, want)
}

func TestNormalizeRangeAndCentering(t *testing.T) {
	normalizer := NewSignalNormalizer(testChartConfig(), testAnalysisConfig(), testLogger())

	signal, err := normalizer.Normalize([][]float64{sineRow(900, 15)})
	require.NoError(t, err)

	var sum float64
	for _, v := range signal {
		// Cubic resampling may overshoot the unit range slightly.
		assert.LessOrEqual(t, math.Abs(v), 1.1)
		sum += v
	}
	assert.InDelta(t, 0, sum/float64(len(signal)), 0.05)
}

func TestNormalizeInvertsImageAxis(t *testing.T) {
	normalizer := NewSignalNormalizer(testChartConfig(), testAnalysisConfig(), testLogger())

	// A dip in pixel coordinates (smaller y) is an upward deflection.
	row := make([]float64, 600)
	for i := range row {
		row[i] = 50
		if i >= 290 && i < 310 {
			row[i] = 20
		}
	}

	signal, err := normalizer.Normalize([][]float64{row})
	require.NoError(t, err)

	max := signal[0]
	argmax := 0
	for i, v := range signal {
		if v > max {
			max, argmax = v, i
		}
	}
	assert.Greater(t, max, 0.5)
	// The spike sits at the middle of the row.
	assert.InDelta(t, len(signal)/2, argmax, float64(len(signal))/20)
}

func TestNormalizeEmptyInput(t *testing.T) {
	normalizer := NewSignalNormalizer(testChartConfig(), testAnalysisConfig(), testLogger())

	var extractionErr *utils.ExtractionError

	_, err := normalizer.Normalize(nil)
	require.Error(t, err)
	assert.ErrorAs(t, err, &extractionErr)

	_, err = normalizer.Normalize([][]float64{{1}})
	require.Error(t, err)
	assert.ErrorAs(t, err, &extractionErr)
}

func TestNormalizeFlatSignal(t *testing.T) {
	normalizer := NewSignalNormalizer(testChartConfig(), testAnalysisConfig(), testLogger())

	row := make([]float64, 600)
	for i := range row {
		row[i] = 42
	}

	signal, err := normalizer.Normalize([][]float64{row})
	require.NoError(t, err)
	for _, v := range signal {
		assert.InDelta(t, 0, v, 1e-9)
	}
}
