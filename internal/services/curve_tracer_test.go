package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastanera/hrvision/internal/testutil"
	"github.com/dcastanera/hrvision/internal/utils"
)

func TestCurveTracerSyntheticChart(t *testing.T) {
	tracer := NewCurveTracer(testChartConfig(), testTraceConfig(), testLogger())

	img := testutil.ChartImage(600, 300, 3, 10)
	rows, err := tracer.Trace(img)
	require.NoError(t, err)

	assert.Len(t, rows, 3)
	for i, row := range rows {
		assert.GreaterOrEqual(t, len(row), 500, "row %d too short", i)
	}
}

func TestCurveTracerBlankImage(t *testing.T) {
	tracer := NewCurveTracer(testChartConfig(), testTraceConfig(), testLogger())

	_, err := tracer.Trace(testutil.BlankImage(400, 200))
	require.Error(t, err)

	var extractionErr *utils.ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		hue     float64
		sat     float64
		val     float64
	}{
		{"white", 1, 1, 1, 0, 0, 1},
		{"black", 0, 0, 0, 0, 0, 0},
		{"red", 1, 0, 0, 0, 1, 1},
		{"green", 0, 1, 0, 120, 1, 1},
		{"blue", 0, 0, 1, 240, 1, 1},
		{"orange", 1, 140.0 / 255, 0, 32.9, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hue, sat, val := rgbToHSV(tt.r, tt.g, tt.b)
			assert.InDelta(t, tt.hue, hue, 0.1)
			assert.InDelta(t, tt.sat, sat, 0.001)
			assert.InDelta(t, tt.val, val, 0.001)
		})
	}
}

func TestMorphOpenRemovesSpeckle(t *testing.T) {
	mask := newTraceMask(20, 20)
	// Single isolated pixel
	mask.set(10, 10, true)

	cleaned := morphOpen(mask)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			assert.False(t, cleaned.at(x, y))
		}
	}
}

func TestMorphCloseBridgesGap(t *testing.T) {
	mask := newTraceMask(20, 7)
	// Thick horizontal line with a one-column gap at x=10
	for x := 5; x < 15; x++ {
		if x == 10 {
			continue
		}
		for y := 2; y <= 4; y++ {
			mask.set(x, y, true)
		}
	}

	closed := morphClose(mask)
	assert.True(t, closed.at(10, 3))
}

func TestExtractRowSignalHoldsLastOnGap(t *testing.T) {
	mask := newTraceMask(5, 10)
	mask.set(0, 4, true)
	mask.set(1, 6, true)
	// Column 2 empty
	mask.set(3, 2, true)
	mask.set(4, 2, true)

	signal := extractRowSignal(mask, rowBand{Start: 0, End: 10})
	assert.Equal(t, []float64{4, 6, 6, 2, 2}, signal)
}
