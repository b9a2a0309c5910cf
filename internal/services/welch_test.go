package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWelchPSDLocatesTone(t *testing.T) {
	fs := 4.0
	n := 512
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 0.1 * float64(i) / fs)
	}

	freqs, psd := welchPSD(x, fs, 256)
	require.NotNil(t, freqs)
	require.Len(t, psd, len(freqs))

	argmax := 1
	for i := 2; i < len(psd); i++ {
		if psd[i] > psd[argmax] {
			argmax = i
		}
	}
	assert.InDelta(t, 0.1, freqs[argmax], 0.02)
}

func TestWelchPSDZeroInput(t *testing.T) {
	x := make([]float64, 300)
	freqs, psd := welchPSD(x, 4, 256)
	require.NotNil(t, freqs)
	for _, v := range psd {
		assert.Equal(t, 0.0, v)
	}
}

func TestWelchPSDTooShort(t *testing.T) {
	freqs, psd := welchPSD([]float64{1}, 4, 256)
	assert.Nil(t, freqs)
	assert.Nil(t, psd)
}

func TestWelchPSDParsevalScale(t *testing.T) {
	// The integrated density of a tone approximates its variance (0.5 for a
	// unit sine), split across leakage bins.
	fs := 4.0
	n := 1024
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * 0.25 * float64(i) / fs)
	}

	freqs, psd := welchPSD(x, fs, 256)
	require.NotNil(t, freqs)

	var total float64
	for i := 1; i < len(freqs); i++ {
		total += 0.5 * (psd[i] + psd[i-1]) * (freqs[i] - freqs[i-1])
	}
	assert.InDelta(t, 0.5, total, 0.1)
}

func TestBandPower(t *testing.T) {
	freqs := []float64{0, 0.1, 0.2, 0.3, 0.4}
	psd := []float64{0, 2, 2, 2, 0}

	assert.InDelta(t, 0.4, bandPower(freqs, psd, 0.1, 0.4), 1e-9)
	assert.Equal(t, 0.0, bandPower(freqs, psd, 0.35, 0.39), "single-bin band")
	assert.Equal(t, 0.0, bandPower(freqs, psd, 1, 2), "empty band")
}
